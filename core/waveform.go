package core

import "strings"

// Waveform selects the output shape.
type Waveform uint8

const (
	Sine Waveform = iota
	Triangle
	Square
)

var waveformNames = [...]string{
	Sine:     "sine",
	Triangle: "triangle",
	Square:   "square",
}

// Valid reports whether w is one of the defined shapes.
func (w Waveform) Valid() bool {
	return w <= Square
}

// Normalize returns w, or Sine if w is not a defined shape.
func (w Waveform) Normalize() Waveform {
	if !w.Valid() {
		return Sine
	}
	return w
}

func (w Waveform) String() string {
	return waveformNames[w.Normalize()]
}

// ParseWaveform maps "sine", "triangle" or "square" (any case) to a
// Waveform. Anything else is Sine.
func ParseWaveform(s string) Waveform {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range waveformNames {
		if name == s {
			return Waveform(i)
		}
	}
	return Sine
}

// MarshalText implements encoding.TextMarshaler.
func (w Waveform) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode
// as Sine.
func (w *Waveform) UnmarshalText(text []byte) error {
	*w = ParseWaveform(string(text))
	return nil
}
