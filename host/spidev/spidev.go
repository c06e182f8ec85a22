// Package spidev connects a chip to a Linux SPI port through periph.io.
//
// The kernel's own chip select is disabled (spi.NoCS) and the select line is
// driven as an ordinary GPIO, so several generators can hang off one port
// with a select line each.
package spidev

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"wavegen/core"
)

// Config holds the port settings
type Config struct {
	Port string // spireg name, e.g. "/dev/spidev0.0" or "SPI0.0"; empty picks the first port
	Mode core.SPIMode
	Rate uint32 // Clock rate in Hz
}

// Bus adapts a periph SPI connection to drivers.SPI
type Bus struct {
	conn   spi.Conn
	closer interface{ Close() error }
}

// Init loads the periph host drivers. It is safe to call more than once.
func Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph init: %w", err)
	}
	return nil
}

// Open opens and connects the SPI port named in cfg
func Open(cfg Config) (*Bus, error) {
	if err := Init(); err != nil {
		return nil, err
	}

	port, err := spireg.Open(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", cfg.Port, err)
	}

	c, err := port.Connect(physic.Frequency(cfg.Rate)*physic.Hertz, periphMode(cfg.Mode), 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect SPI port %q: %w", cfg.Port, err)
	}

	return &Bus{conn: c, closer: port}, nil
}

// NewBus wraps an already connected periph SPI connection
func NewBus(c spi.Conn) *Bus {
	return &Bus{conn: c}
}

// periphMode maps a core SPI mode to periph's, with the kernel CS disabled
func periphMode(m core.SPIMode) spi.Mode {
	var mode spi.Mode
	switch m {
	case core.SPIMode1:
		mode = spi.Mode1
	case core.SPIMode2:
		mode = spi.Mode2
	case core.SPIMode3:
		mode = spi.Mode3
	default:
		mode = spi.Mode0
	}
	return mode | spi.NoCS
}

// Tx performs a full-duplex transfer
func (b *Bus) Tx(w, r []byte) error {
	if r != nil && len(r) != len(w) {
		return fmt.Errorf("tx and rx buffer lengths must match")
	}
	return b.conn.Tx(w, r)
}

// Transfer writes one byte and returns the byte read back
func (b *Bus) Transfer(w byte) (byte, error) {
	var r [1]byte
	err := b.conn.Tx([]byte{w}, r[:])
	return r[0], err
}

// Duplex reports the duplex mode of the underlying connection
func (b *Bus) Duplex() conn.Duplex {
	return b.conn.Duplex()
}

// Close releases the SPI port
func (b *Bus) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}

// Pin adapts a periph output to core.OutputPin
type Pin struct {
	gpio.PinOut
}

// Set drives the pin
func (p Pin) Set(value bool) error {
	return p.Out(gpio.Level(value))
}

// Resolver looks select lines up by GPIO name (e.g. "GPIO8", "CE0")
type Resolver struct {
	// Lookup defaults to gpioreg.ByName
	Lookup func(name string) gpio.PinIO
}

// ResolvePin implements core.PinResolver
func (r Resolver) ResolvePin(name string) (core.OutputPin, error) {
	lookup := r.Lookup
	if lookup == nil {
		lookup = gpioreg.ByName
	}

	p := lookup(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownPin, name)
	}
	return Pin{p}, nil
}
