package spidev

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"

	"wavegen/core"
)

// fakeConn is a spi.Conn that logs every write into a shared trace
type fakeConn struct {
	trace *[]string
	err   error
}

func (c *fakeConn) String() string { return "fake" }

func (c *fakeConn) Tx(w, r []byte) error {
	for i := range r {
		r[i] = w[i] ^ 0xFF
	}
	*c.trace = append(*c.trace, "tx "+string(hexBytes(w)))
	return c.err
}

func (c *fakeConn) Duplex() conn.Duplex { return conn.Full }

func (c *fakeConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

// tracedPin logs output level changes into the shared trace
type tracedPin struct {
	*gpiotest.Pin
	trace *[]string
}

func (p *tracedPin) Out(l gpio.Level) error {
	if l {
		*p.trace = append(*p.trace, "cs high")
	} else {
		*p.trace = append(*p.trace, "cs low")
	}
	return p.Pin.Out(l)
}

func hexBytes(b []byte) []byte {
	const digits = "0123456789ABCDEF"
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, digits[c>>4], digits[c&0xF])
	}
	return out
}

func newFakes() (*fakeConn, Resolver, *tracedPin, *[]string) {
	trace := &[]string{}
	pin := &tracedPin{Pin: &gpiotest.Pin{N: "GPIO8", Num: 8}, trace: trace}
	resolver := Resolver{Lookup: func(name string) gpio.PinIO {
		if name == "GPIO8" {
			return pin
		}
		return nil
	}}
	return &fakeConn{trace: trace}, resolver, pin, trace
}

func TestPeriphMode(t *testing.T) {
	testCases := []struct {
		in       core.SPIMode
		expected spi.Mode
	}{
		{core.SPIMode0, spi.Mode0 | spi.NoCS},
		{core.SPIMode1, spi.Mode1 | spi.NoCS},
		{core.SPIMode2, spi.Mode2 | spi.NoCS},
		{core.SPIMode3, spi.Mode3 | spi.NoCS},
	}

	for _, tc := range testCases {
		if got := periphMode(tc.in); got != tc.expected {
			t.Errorf("periphMode(%d): expected %v, got %v", tc.in, tc.expected, got)
		}
	}
}

func TestWordFramedByGPIO(t *testing.T) {
	c, resolver, pin, trace := newFakes()
	bus := NewBus(c)

	dev, err := core.NewSPIDevice(bus, resolver, "GPIO8", 0)
	if err != nil {
		t.Fatalf("NewSPIDevice failed: %v", err)
	}
	if pin.Read() != gpio.High {
		t.Error("Expected select line parked high")
	}

	*trace = (*trace)[:0]
	if err := dev.WriteWord(0x9274); err != nil {
		t.Fatalf("WriteWord failed: %v", err)
	}

	want := []string{"cs low", "tx 9274", "cs high"}
	if len(*trace) != len(want) {
		t.Fatalf("Expected %v, got %v", want, *trace)
	}
	for i := range want {
		if (*trace)[i] != want[i] {
			t.Errorf("Step %d: expected %q, got %q", i, want[i], (*trace)[i])
		}
	}
}

func TestResolverUnknownPin(t *testing.T) {
	c, resolver, _, trace := newFakes()

	_, err := core.NewSPIDevice(NewBus(c), resolver, "GPIO99", 0)
	var cfgErr *core.ConfigurationError
	if !errors.As(err, &cfgErr) || !errors.Is(err, core.ErrUnknownPin) {
		t.Fatalf("Expected ConfigurationError wrapping ErrUnknownPin, got %v", err)
	}
	if len(*trace) != 0 {
		t.Errorf("Expected no activity, got %v", *trace)
	}
}

func TestBusTransfer(t *testing.T) {
	c, _, _, _ := newFakes()
	bus := NewBus(c)

	got, err := bus.Transfer(0x0F)
	if err != nil || got != 0xF0 {
		t.Errorf("Transfer: expected 0xF0, got 0x%02X (%v)", got, err)
	}
	if bus.Duplex() != conn.Full {
		t.Errorf("Expected full duplex, got %v", bus.Duplex())
	}
	if err := bus.Tx([]byte{1, 2}, make([]byte, 1)); err == nil {
		t.Error("Expected error for mismatched buffers")
	}
	if err := bus.Close(); err != nil {
		t.Errorf("Close on a wrapped connection failed: %v", err)
	}
}

func TestTransportErrorThroughPeriph(t *testing.T) {
	c, resolver, pin, _ := newFakes()
	spiDev, err := core.NewSPIDevice(NewBus(c), resolver, "GPIO8", 0)
	if err != nil {
		t.Fatalf("NewSPIDevice failed: %v", err)
	}
	gen, err := core.NewAD9833(spiDev, core.DefaultAD9833Config())
	if err != nil {
		t.Fatalf("NewAD9833 failed: %v", err)
	}

	c.err = errors.New("spidev: transfer failed")
	err = gen.Start()

	var tErr *core.TransportError
	if !errors.As(err, &tErr) || !errors.Is(err, c.err) {
		t.Fatalf("Expected TransportError wrapping the bus error, got %v", err)
	}
	if pin.Read() != gpio.High {
		t.Error("Expected select line released after the failure")
	}
	if gen.InSync() {
		t.Error("Expected generator out of sync")
	}
}
