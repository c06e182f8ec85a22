// SPI device framing
// Every write is a single chip-select framed transfer: assert CS, clock the
// bytes out, deassert CS.
package core

import (
	"sync"

	"tinygo.org/x/drivers"
)

// SPI device flags
const (
	SF_CS_ACTIVE_HIGH = 0x02 // Chip select active high (default is active low)
	SF_HAVE_PIN       = 0x04 // Has chip select pin
)

// SPIDevice is one chip on an SPI bus, optionally with its own chip select.
type SPIDevice struct {
	Flags uint8  // Device flags (CS polarity, CS present)
	Name  string // Chip select identifier as given at construction
	bus   drivers.SPI
	cs    OutputPin
	tx    [2]byte
	rx    [2]byte
}

// NewSPIDevice resolves the chip select named sel and returns a device that
// frames every transfer with it. An empty sel builds a device without CS.
func NewSPIDevice(bus drivers.SPI, pins PinResolver, sel string, flags uint8) (*SPIDevice, error) {
	if bus == nil {
		return nil, &ConfigurationError{Field: "bus", Value: nil, Err: ErrNoTransport}
	}

	dev := &SPIDevice{
		Flags: flags &^ SF_HAVE_PIN,
		Name:  sel,
		bus:   bus,
	}
	if sel == "" {
		return dev, nil
	}
	if pins == nil {
		return nil, &ConfigurationError{Field: "select", Value: sel, Err: ErrUnknownPin}
	}

	cs, err := pins.ResolvePin(sel)
	if err != nil {
		return nil, &ConfigurationError{Field: "select", Value: sel, Err: err}
	}
	dev.cs = cs
	dev.Flags |= SF_HAVE_PIN

	// Park CS in the deasserted state
	if err := cs.Set(dev.csLevel(false)); err != nil {
		return nil, &ConfigurationError{Field: "select", Value: sel, Err: err}
	}

	return dev, nil
}

// csLevel returns the pin level for an asserted or deasserted chip select
func (d *SPIDevice) csLevel(active bool) bool {
	if d.Flags&SF_CS_ACTIVE_HIGH != 0 {
		return active
	}
	return !active
}

// Transfer performs one chip-select framed transfer
func (d *SPIDevice) Transfer(txData []byte, rxData []byte) error {
	if l, ok := d.bus.(sync.Locker); ok {
		l.Lock()
		defer l.Unlock()
	}

	// Assert chip select if device has CS pin
	if d.Flags&SF_HAVE_PIN != 0 {
		if err := d.cs.Set(d.csLevel(true)); err != nil {
			return err
		}
	}

	err := d.bus.Tx(txData, rxData)

	// Deassert chip select even when the transfer failed
	if d.Flags&SF_HAVE_PIN != 0 {
		if csErr := d.cs.Set(d.csLevel(false)); csErr != nil && err == nil {
			err = csErr
		}
	}

	return err
}

// WriteWord sends a 16-bit word MSB first as a single two-byte transfer.
func (d *SPIDevice) WriteWord(word uint16) error {
	d.tx[0] = byte(word >> 8)
	d.tx[1] = byte(word)
	return d.Transfer(d.tx[:], d.rx[:])
}
