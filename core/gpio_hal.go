package core

import (
	"fmt"
	"strings"
)

// OutputPin is a digital output line, typically a chip select.
// Platform-specific implementations handle actual hardware control.
type OutputPin interface {
	// Set drives the pin high (true) or low (false)
	Set(value bool) error
}

// PinFunc adapts a setter without an error return, such as TinyGo's
// machine.Pin.Set, to OutputPin.
type PinFunc func(value bool)

// Set calls f(value).
func (f PinFunc) Set(value bool) error {
	f(value)
	return nil
}

// PinResolver maps a logical pin identifier (for example "D6" or "GPIO8")
// to an output line. It is consulted once, when a device is built.
type PinResolver interface {
	ResolvePin(name string) (OutputPin, error)
}

// PinMap is a PinResolver backed by a fixed table. Lookups ignore case.
type PinMap map[string]OutputPin

// ResolvePin returns the pin registered under name.
func (m PinMap) ResolvePin(name string) (OutputPin, error) {
	if pin, ok := m[name]; ok {
		return pin, nil
	}
	for k, pin := range m {
		if strings.EqualFold(k, name) {
			return pin, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPin, name)
}
