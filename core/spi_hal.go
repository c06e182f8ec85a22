package core

import (
	"sync"

	"tinygo.org/x/drivers"
)

// SPIMode represents SPI clock polarity and phase (0-3)
// Mode 0: CPOL=0, CPHA=0 (clock idle low, sample on rising edge)
// Mode 1: CPOL=0, CPHA=1 (clock idle low, sample on falling edge)
// Mode 2: CPOL=1, CPHA=0 (clock idle high, sample on falling edge)
// Mode 3: CPOL=1, CPHA=1 (clock idle high, sample on rising edge)
type SPIMode uint8

const (
	SPIMode0 SPIMode = iota
	SPIMode1
	SPIMode2
	SPIMode3
)

// CPOL reports whether the clock idles high.
func (m SPIMode) CPOL() bool { return m&0x2 != 0 }

// CPHA reports whether data is sampled on the second clock edge.
func (m SPIMode) CPHA() bool { return m&0x1 != 0 }

// SPIConfig holds the configuration for an SPI bus
type SPIConfig struct {
	Mode SPIMode // SPI mode (0-3)
	Rate uint32  // Clock rate in Hz
}

// AD9833 bus defaults: clock idles high, data latched on the falling edge.
const (
	DefaultAD9833Mode = SPIMode2
	DefaultAD9833Rate = 5000000
)

// WordWriter sends one 16-bit command word to a device.
type WordWriter interface {
	WriteWord(word uint16) error
}

// SharedBus wraps a bus used by several devices. SPIDevice holds the lock for
// the duration of a single chip-select framed transfer.
type SharedBus struct {
	drivers.SPI
	sync.Mutex
}

// NewSharedBus returns bus wrapped for sharing between devices.
func NewSharedBus(bus drivers.SPI) *SharedBus {
	return &SharedBus{SPI: bus}
}
