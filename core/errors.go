package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPin      = errors.New("unknown pin")
	ErrZeroMasterClock = errors.New("master clock must be greater than 0")
	ErrNoTransport     = errors.New("no transport")
)

// ConfigurationError reports an invalid construction parameter. Nothing has
// been sent to the device when it is returned.
type ConfigurationError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// TransportError reports a failed register write. After it is returned the
// controller's view of the chip can no longer be trusted; call Reset before
// continuing.
type TransportError struct {
	Op   string // controller operation that issued the write
	Word uint16 // command word that failed
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: write 0x%04X: %v", e.Op, e.Word, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
