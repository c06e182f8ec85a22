// Package device opens a configured generator over its transport.
package device

import (
	"fmt"
	"io"

	"tinygo.org/x/drivers"

	"wavegen/config"
	"wavegen/core"
	"wavegen/host/buspirate"
	"wavegen/host/serial"
	"wavegen/host/spidev"
)

// Transport openers, replaced in tests
var (
	openSerial = serial.Open
	openSPIDev = spidev.Open
)

// bus is an SPI transport that owns an OS resource
type bus interface {
	drivers.SPI
	io.Closer
}

// Generator is a connected AD9833
type Generator struct {
	*core.AD9833

	cfg config.Generator
	bus bus
}

// Open builds the transport named by g, resolves its select line and
// brings the chip up paused with the configured frequency, phase and
// waveform loaded.
func Open(g config.Generator) (*Generator, error) {
	b, pins, err := openBus(g)
	if err != nil {
		return nil, err
	}

	var flags uint8
	if g.CSActiveHigh {
		flags |= core.SF_CS_ACTIVE_HIGH
	}

	dev, err := core.NewSPIDevice(b, pins, g.Select, flags)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("%s: %w", g.Name, err)
	}

	chip, err := core.NewAD9833(dev, g.AD9833Config())
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("%s: %w", g.Name, err)
	}

	return &Generator{AD9833: chip, cfg: g, bus: b}, nil
}

func openBus(g config.Generator) (bus, core.PinResolver, error) {
	switch g.Transport {
	case config.TransportSPIDev:
		b, err := openSPIDev(spidev.Config{
			Port: g.Port,
			Mode: g.SPIMode(),
			Rate: g.Rate,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", g.Name, err)
		}
		return b, spidev.Resolver{}, nil

	case config.TransportBusPirate:
		scfg := serial.DefaultConfig(g.Port)
		if g.Baud != 0 {
			scfg.Baud = g.Baud
		}
		port, err := openSerial(scfg)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", g.Name, err)
		}

		b, err := buspirate.Open(port, buspirate.Config{
			Mode:  g.SPIMode(),
			Rate:  g.Rate,
			Power: g.Power,
		})
		if err != nil {
			port.Close()
			return nil, nil, fmt.Errorf("%s: bus pirate on %s: %w", g.Name, g.Port, err)
		}
		return b, b, nil
	}

	return nil, nil, &core.ConfigurationError{Field: "transport", Value: g.Transport, Err: config.ErrUnknownTransport}
}

// Config returns the entry the generator was opened from
func (g *Generator) Config() config.Generator {
	return g.cfg
}

// Close releases the transport. The chip keeps its last output.
func (g *Generator) Close() error {
	return g.bus.Close()
}

// Apply starts output with the parameters loaded at open
func Apply(g config.Generator) error {
	gen, err := Open(g)
	if err != nil {
		return err
	}
	defer gen.Close()

	if err := gen.Start(); err != nil {
		gen.DumpWrites()
		return fmt.Errorf("%s: %w", g.Name, err)
	}
	return nil
}

// Halt opens the generator and leaves its output stopped
func Halt(g config.Generator) error {
	gen, err := Open(g)
	if err != nil {
		return err
	}
	defer gen.Close()

	if err := gen.Stop(); err != nil {
		gen.DumpWrites()
		return fmt.Errorf("%s: %w", g.Name, err)
	}
	return nil
}
