// AD9833 programmable waveform generator
// Frequency and phase are double buffered on the chip: new values are loaded
// into the inactive slot and then selected through the control register, so
// the output never runs from a half-written tuning word.
package core

import (
	"math"
	"sync"
)

// Register selects one of the two on-chip slots of a double-buffered register
type Register uint8

const (
	Reg0 Register = 0
	Reg1 Register = 1
)

// Toggle returns the other slot
func (r Register) Toggle() Register {
	return r ^ 1
}

// freqTag returns the address bits of frequency slot r
func freqTag(r Register) uint16 {
	if r == Reg1 {
		return AD9833_FREQ1
	}
	return AD9833_FREQ0
}

// phaseTag returns the address bits of phase slot r
func phaseTag(r Register) uint16 {
	if r == Reg1 {
		return AD9833_PHASE1
	}
	return AD9833_PHASE0
}

// AD9833Config holds the construction parameters of a generator
type AD9833Config struct {
	Name        string   // Used in debug output only
	MasterClock uint32   // Reference clock in Hz, fixed for the device lifetime
	Frequency   float64  // Initial output frequency in Hz
	Phase       int      // Initial phase offset in 2pi/4096 units
	Waveform    Waveform // Initial output shape
}

// DefaultAD9833Config returns the power-on defaults: 440 Hz sine, phase 0,
// 25 MHz master clock.
func DefaultAD9833Config() AD9833Config {
	return AD9833Config{
		Name:        "ad9833",
		MasterClock: AD9833_DEFAULT_CLK,
		Frequency:   AD9833_DEFAULT_HZ,
		Waveform:    Sine,
	}
}

// State is a snapshot of the controller's view of the chip
type State struct {
	Frequency     float64   // Hz, within [0, MasterClock/2]
	Phase         uint16    // 0-4095
	Waveform      Waveform  // Output shape
	MasterClock   uint32    // Reference clock in Hz
	FreqRegister  Register  // Active frequency slot
	PhaseRegister Register  // Active phase slot
	Reset         bool      // DDS core held in reset
	Paused        bool      // Internal clock disabled
	FreqWords     [2]uint32 // Last tuning word loaded into each slot
	PhaseWords    [2]uint16 // Last phase value loaded into each slot
}

// ControlWord builds the full control register contents for s
func (s State) ControlWord() uint16 {
	word := uint16(AD9833_CTRL_B28)

	if s.Reset {
		word |= AD9833_CTRL_RESET
	}
	if s.Paused {
		word |= AD9833_CTRL_SLEEP1
	}

	word |= uint16(s.FreqRegister&1) << AD9833_CTRL_FSELECT
	word |= uint16(s.PhaseRegister&1) << AD9833_CTRL_PSELECT

	switch s.Waveform {
	case Triangle:
		word |= AD9833_CTRL_MODE
	case Square:
		word |= AD9833_CTRL_SQUARE
	}

	return word
}

// MaxFrequency is the Nyquist limit of the master clock
func (s State) MaxFrequency() float64 {
	return float64(s.MasterClock / 2)
}

// TuningWord computes the 28-bit frequency register value for hz
func TuningWord(hz float64, masterClock uint32) uint32 {
	return uint32(math.Round(hz * (1 << AD9833_FREQ_BITS) / float64(masterClock)))
}

// SplitTuningWord splits a tuning word into its 14-bit MSB and LSB halves
func SplitTuningWord(word uint32) (msb, lsb uint16) {
	msb = uint16((word >> AD9833_FREQ_HALF) & AD9833_FREQ_MASK)
	lsb = uint16(word & AD9833_FREQ_MASK)
	return msb, lsb
}

// AD9833 drives one waveform generator chip. Public operations are
// serialized per device; every operation returns after its last word has
// been written.
type AD9833 struct {
	mu     sync.Mutex
	w      WordWriter
	name   string
	state  State
	inSync bool
	trace  writeRing
}

// NewAD9833 resets the chip behind w and loads the initial frequency, phase
// and waveform from cfg. The generator is left paused; call Start to run it.
func NewAD9833(w WordWriter, cfg AD9833Config) (*AD9833, error) {
	if w == nil {
		return nil, &ConfigurationError{Field: "transport", Value: nil, Err: ErrNoTransport}
	}
	if cfg.MasterClock == 0 {
		return nil, &ConfigurationError{Field: "master clock", Value: cfg.MasterClock, Err: ErrZeroMasterClock}
	}

	d := &AD9833{
		w:    w,
		name: cfg.Name,
		state: State{
			MasterClock: cfg.MasterClock,
			Waveform:    Sine,
			Reset:       true,
			Paused:      true,
		},
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.reset(); err != nil {
		return nil, err
	}
	if _, err := d.setFrequency("init", cfg.Frequency); err != nil {
		return nil, err
	}
	if _, err := d.setPhase("init", cfg.Phase); err != nil {
		return nil, err
	}
	if _, err := d.setWaveform("init", cfg.Waveform); err != nil {
		return nil, err
	}

	return d, nil
}

// send writes one word and records it
func (d *AD9833) send(op string, word uint16) error {
	err := d.w.WriteWord(word)
	d.trace.record(word, err != nil)

	if debugEnabled {
		DebugPrintln("[ad9833] " + d.name + " " + op + " " + RegisterName(word) + " " + hex16(word))
	}

	if err != nil {
		d.inSync = false
		return &TransportError{Op: op, Word: word, Err: err}
	}
	return nil
}

// writeControl rebuilds the control word from the current state and sends it
func (d *AD9833) writeControl(op string) error {
	return d.send(op, d.state.ControlWord())
}

// loadFrequency writes a tuning word into slot r, LSB half first.
// The active selection is not changed.
func (d *AD9833) loadFrequency(op string, word uint32, r Register) error {
	msb, lsb := SplitTuningWord(word)
	tag := freqTag(r)

	d.state.FreqWords[r] = word
	if err := d.send(op, lsb|tag); err != nil {
		return err
	}
	return d.send(op, msb|tag)
}

// loadPhase writes a phase value into slot r.
// The active selection is not changed.
func (d *AD9833) loadPhase(op string, ticks uint16, r Register) error {
	d.state.PhaseWords[r] = ticks
	return d.send(op, (ticks&AD9833_PHASE_MAX)|phaseTag(r))
}

// clampFrequency limits hz to [0, MasterClock/2]. NaN maps to 0.
func (d *AD9833) clampFrequency(hz float64) float64 {
	if math.IsNaN(hz) || hz < 0 {
		return 0
	}
	if limit := d.state.MaxFrequency(); hz > limit {
		return limit
	}
	return hz
}

// clampPhase limits ticks to [0, 4095]
func clampPhase(ticks int) uint16 {
	if ticks < 0 {
		return 0
	}
	if ticks > AD9833_PHASE_MAX {
		return AD9833_PHASE_MAX
	}
	return uint16(ticks)
}

// SetFrequency loads hz into the inactive frequency register and switches
// the output to it. Out-of-range values are clamped to [0, MasterClock/2];
// the applied frequency is returned.
func (d *AD9833) SetFrequency(hz float64) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setFrequency("set_frequency", hz)
}

func (d *AD9833) setFrequency(op string, hz float64) (float64, error) {
	hz = d.clampFrequency(hz)
	target := d.state.FreqRegister.Toggle()

	if err := d.loadFrequency(op, TuningWord(hz, d.state.MasterClock), target); err != nil {
		return hz, err
	}

	d.state.Frequency = hz
	d.state.FreqRegister = target
	return hz, d.writeControl(op)
}

// SetPhase loads ticks into the inactive phase register and switches the
// output to it. Values are clamped to [0, 4095]; the applied value is
// returned.
func (d *AD9833) SetPhase(ticks int) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setPhase("set_phase", ticks)
}

func (d *AD9833) setPhase(op string, ticks int) (uint16, error) {
	phase := clampPhase(ticks)
	target := d.state.PhaseRegister.Toggle()

	if err := d.loadPhase(op, phase, target); err != nil {
		return phase, err
	}

	d.state.Phase = phase
	d.state.PhaseRegister = target
	return phase, d.writeControl(op)
}

// SetWaveform selects the output shape. Undefined shapes select Sine; the
// applied shape is returned. Only the control register is written.
func (d *AD9833) SetWaveform(w Waveform) (Waveform, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setWaveform("set_waveform", w)
}

func (d *AD9833) setWaveform(op string, w Waveform) (Waveform, error) {
	w = w.Normalize()
	d.state.Waveform = w
	return w, d.writeControl(op)
}

// Pause stops the internal clock. The output holds its last level and the
// registers keep their contents.
func (d *AD9833) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state.Paused = true
	return d.writeControl("pause")
}

// Start runs the generator from the current register contents and
// selections.
func (d *AD9833) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state.Reset = false
	d.state.Paused = false
	return d.writeControl("start")
}

// Stop holds the generator in reset with the clock stopped. The output
// returns to midscale; register contents are kept, so Start resumes with
// the same frequency and phase.
func (d *AD9833) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state.Reset = true
	d.state.Paused = true
	return d.writeControl("stop")
}

// Reset zeroes both frequency and both phase registers, selects sine and
// slot 0, and leaves the generator out of reset with the clock stopped.
func (d *AD9833) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reset()
}

func (d *AD9833) reset() error {
	const op = "reset"

	d.state.Reset = true
	d.state.Paused = true
	d.state.FreqRegister = Reg0
	d.state.PhaseRegister = Reg0
	d.state.Waveform = Sine
	d.state.Frequency = 0
	d.state.Phase = 0
	if err := d.writeControl(op); err != nil {
		return err
	}

	// Zero every slot explicitly while the core is held in reset
	if err := d.loadFrequency(op, 0, Reg0); err != nil {
		return err
	}
	if err := d.loadFrequency(op, 0, Reg1); err != nil {
		return err
	}
	if err := d.loadPhase(op, 0, Reg0); err != nil {
		return err
	}
	if err := d.loadPhase(op, 0, Reg1); err != nil {
		return err
	}

	// Out of reset, master clock still paused
	d.state.Reset = false
	if err := d.writeControl(op); err != nil {
		return err
	}

	d.inSync = true
	return nil
}

// Name returns the name given at construction
func (d *AD9833) Name() string {
	return d.name
}

// Frequency returns the applied output frequency in Hz
func (d *AD9833) Frequency() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Frequency
}

// Phase returns the applied phase offset in 2pi/4096 units
func (d *AD9833) Phase() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Phase
}

// Waveform returns the selected output shape
func (d *AD9833) Waveform() Waveform {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Waveform
}

// MasterClock returns the reference clock in Hz
func (d *AD9833) MasterClock() uint32 {
	return d.state.MasterClock
}

// State returns a snapshot of the register model
func (d *AD9833) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// InSync reports whether every write since the last successful Reset
// reached the transport without error.
func (d *AD9833) InSync() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inSync
}

// Writes returns the most recent register writes, oldest first
func (d *AD9833) Writes() []WriteEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trace.snapshot()
}

// DumpWrites prints the recent register writes through the debug writer,
// regardless of whether debug output is enabled.
func (d *AD9833) DumpWrites() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.trace.dump(d.name, debugPrintln)
}
