package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// WriteEvent captures one register write for post-mortem analysis
type WriteEvent struct {
	Seq    uint32 // Monotonic write counter for the device
	Word   uint16 // Command word as sent
	Failed bool   // Transport returned an error
}

// Register reports the destination encoded in the word's address bits
func (e WriteEvent) Register() string {
	return RegisterName(e.Word)
}

// RegisterName decodes the destination register of a command word
func RegisterName(word uint16) string {
	switch {
	case word&0xE000 == AD9833_PHASE1:
		return "PHASE1"
	case word&0xE000 == AD9833_PHASE0:
		return "PHASE0"
	case word&0xC000 == AD9833_FREQ1:
		return "FREQ1"
	case word&0xC000 == AD9833_FREQ0:
		return "FREQ0"
	default:
		return "CONTROL"
	}
}

const (
	WriteRingSize = 16 // Keep last 16 writes per device
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, a logger, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// writeRing is a fixed ring of the most recent writes of one device
type writeRing struct {
	events [WriteRingSize]WriteEvent
	head   uint8
	seq    uint32
}

// record stores a write, overwriting the oldest entry
func (r *writeRing) record(word uint16, failed bool) {
	r.seq++
	r.events[r.head] = WriteEvent{Seq: r.seq, Word: word, Failed: failed}
	r.head = (r.head + 1) % WriteRingSize
}

// snapshot returns the recorded writes, oldest first
func (r *writeRing) snapshot() []WriteEvent {
	out := make([]WriteEvent, 0, WriteRingSize)
	for i := uint8(0); i < WriteRingSize; i++ {
		evt := r.events[(r.head+i)%WriteRingSize]
		if evt.Seq == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// dump writes the ring through w, oldest first
func (r *writeRing) dump(name string, w DebugWriter) {
	if w == nil {
		return
	}

	w("[WRITES] === " + name + " ===")
	for _, evt := range r.snapshot() {
		line := "[WRITES] #" + utoa(evt.Seq) + " " + evt.Register() + " " + hex16(evt.Word)
		if evt.Failed {
			line += " FAILED"
		}
		w(line)
	}
	w("[WRITES] === End Dump ===")
}
