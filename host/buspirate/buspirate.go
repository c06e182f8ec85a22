// Package buspirate drives a chip through a Bus Pirate's binary SPI mode.
//
// The Bus Pirate is attached over USB serial. In binary SPI mode every
// command byte is answered with 0x01.
package buspirate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"wavegen/core"
	"wavegen/host/serial"
)

// Binary mode commands
const (
	cmdBitbang = 0x00 // Enter (or return to) raw bitbang mode, answers BBIO1
	cmdSPI     = 0x01 // From bitbang: enter SPI mode, answers SPI1
	cmdCSLow   = 0x02
	cmdCSHigh  = 0x03
	cmdExit    = 0x0F // From bitbang: back to the user terminal
	cmdBulk    = 0x10 // | (n-1): write and read 1-16 bytes
	cmdPeriph  = 0x40 // | power, pullups, aux, cs
	cmdSpeed   = 0x60 // | speed code
	cmdConfig  = 0x80 // | output type, CKP, CKE, SMP

	periphPower = 0x08
	periphCS    = 0x01

	configOutput3V3 = 0x08 // Push-pull 3.3V instead of open drain
	configCKPIdle   = 0x04 // Clock idles high
	configCKEActive = 0x02 // Output changes on the active-to-idle clock edge

	ack       = 0x01
	maxBulk   = 16
	maxResync = 20

	// SelectLine is the only chip select a Bus Pirate can drive in SPI mode
	SelectLine = "CS"
)

var (
	ErrNotAcknowledged = errors.New("bus pirate did not acknowledge")
	ErrNoResponse      = errors.New("no response from bus pirate")
)

// speeds lists the fixed SPI clock rates, fastest first
var speeds = []struct {
	rate uint32
	code byte
}{
	{8000000, 7},
	{4000000, 6},
	{2600000, 5},
	{2000000, 4},
	{1000000, 3},
	{250000, 2},
	{125000, 1},
	{30000, 0},
}

// SpeedCode returns the code of the fastest rate not above rate, and that
// rate. Anything below 30 kHz runs at 30 kHz.
func SpeedCode(rate uint32) (byte, uint32) {
	for _, s := range speeds {
		if s.rate <= rate {
			return s.code, s.rate
		}
	}
	last := speeds[len(speeds)-1]
	return last.code, last.rate
}

// Config holds the SPI settings applied when the bus is opened
type Config struct {
	Mode  core.SPIMode
	Rate  uint32 // Requested clock; rounded down to a supported rate
	Power bool   // Switch on the Bus Pirate's 3.3V/5V supplies
}

// Bus is a Bus Pirate in binary SPI mode. It implements drivers.SPI and
// resolves the single CS line, so it can back a core.SPIDevice directly.
type Bus struct {
	port serial.Port
	cfg  Config
	rate uint32
	out  [maxBulk + 1]byte
	in   [maxBulk + 1]byte
}

// Open switches the adapter behind port into binary SPI mode and applies cfg.
func Open(port serial.Port, cfg Config) (*Bus, error) {
	b := &Bus{port: port, cfg: cfg}

	if err := b.enterBitbang(); err != nil {
		return nil, err
	}
	if err := b.expect([]byte{cmdSPI}, "SPI1"); err != nil {
		return nil, fmt.Errorf("enter SPI mode: %w", err)
	}

	code, rate := SpeedCode(cfg.Rate)
	b.rate = rate
	if err := b.command(cmdSpeed | code); err != nil {
		return nil, fmt.Errorf("set speed: %w", err)
	}

	conf := byte(cmdConfig | configOutput3V3)
	if cfg.Mode.CPOL() {
		conf |= configCKPIdle
	}
	if !cfg.Mode.CPHA() {
		conf |= configCKEActive
	}
	if err := b.command(conf); err != nil {
		return nil, fmt.Errorf("configure SPI: %w", err)
	}

	periph := byte(cmdPeriph | periphCS)
	if cfg.Power {
		periph |= periphPower
	}
	if err := b.command(periph); err != nil {
		return nil, fmt.Errorf("configure peripherals: %w", err)
	}

	return b, nil
}

// Rate returns the clock rate actually configured
func (b *Bus) Rate() uint32 {
	return b.rate
}

// enterBitbang sends 0x00 until the adapter answers BBIO1
func (b *Bus) enterBitbang() error {
	if err := b.port.Flush(); err != nil {
		return err
	}

	for i := 0; i < maxResync; i++ {
		if _, err := b.port.Write([]byte{cmdBitbang}); err != nil {
			return err
		}
		n, err := b.readFull(b.in[:5])
		if err != nil && !errors.Is(err, ErrNoResponse) {
			return err
		}
		if bytes.Contains(b.in[:n], []byte("BBIO1")) {
			return b.port.Flush()
		}
	}

	return fmt.Errorf("enter binary mode: %w", ErrNoResponse)
}

// readFull reads len(p) bytes. An empty read or EOF means the port's read
// timeout expired.
func (b *Bus) readFull(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := b.port.Read(p[total:])
		total += n
		if err == io.EOF || (err == nil && n == 0) {
			return total, ErrNoResponse
		}
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// expect writes cmd and checks for the literal reply
func (b *Bus) expect(cmd []byte, reply string) error {
	if _, err := b.port.Write(cmd); err != nil {
		return err
	}
	n, err := b.readFull(b.in[:len(reply)])
	if err != nil {
		return err
	}
	if string(b.in[:n]) != reply {
		return fmt.Errorf("%w: got %q, want %q", ErrNotAcknowledged, b.in[:n], reply)
	}
	return nil
}

// command sends a single command byte and waits for 0x01
func (b *Bus) command(cmd byte) error {
	if _, err := b.port.Write([]byte{cmd}); err != nil {
		return err
	}
	if _, err := b.readFull(b.in[:1]); err != nil {
		return err
	}
	if b.in[0] != ack {
		return fmt.Errorf("%w: command 0x%02X answered 0x%02X", ErrNotAcknowledged, cmd, b.in[0])
	}
	return nil
}

// Tx writes w and, if r is not nil, stores the bytes clocked in.
// Transfers longer than 16 bytes are split into several bulk commands.
func (b *Bus) Tx(w, r []byte) error {
	if r != nil && len(r) != len(w) {
		return errors.New("tx and rx buffer lengths must match")
	}

	for off := 0; off < len(w); off += maxBulk {
		n := len(w) - off
		if n > maxBulk {
			n = maxBulk
		}

		b.out[0] = cmdBulk | byte(n-1)
		copy(b.out[1:], w[off:off+n])
		if _, err := b.port.Write(b.out[:n+1]); err != nil {
			return err
		}

		if _, err := b.readFull(b.in[:n+1]); err != nil {
			return err
		}
		if b.in[0] != ack {
			return fmt.Errorf("%w: bulk transfer answered 0x%02X", ErrNotAcknowledged, b.in[0])
		}
		if r != nil {
			copy(r[off:], b.in[1:n+1])
		}
	}

	return nil
}

// Transfer writes one byte and returns the byte read back
func (b *Bus) Transfer(w byte) (byte, error) {
	var r [1]byte
	err := b.Tx([]byte{w}, r[:])
	return r[0], err
}

// ResolvePin returns the Bus Pirate's CS output. It implements
// core.PinResolver.
func (b *Bus) ResolvePin(name string) (core.OutputPin, error) {
	if !strings.EqualFold(name, SelectLine) {
		return nil, fmt.Errorf("%w: %q (bus pirate only drives %s)", core.ErrUnknownPin, name, SelectLine)
	}
	return csPin{b}, nil
}

// Close returns the adapter to its user terminal and closes the port
func (b *Bus) Close() error {
	err := b.expect([]byte{cmdBitbang}, "BBIO1")
	if err == nil {
		err = b.command(cmdExit)
	}
	if cerr := b.port.Close(); err == nil {
		err = cerr
	}
	return err
}

// csPin drives the CS line through binary commands
type csPin struct {
	b *Bus
}

func (p csPin) Set(high bool) error {
	if high {
		return p.b.command(cmdCSHigh)
	}
	return p.b.command(cmdCSLow)
}
