package core

import (
	"errors"
	"strings"
	"testing"
)

func TestRegisterName(t *testing.T) {
	testCases := []struct {
		word     uint16
		expected string
	}{
		{0x2180, "CONTROL"},
		{0x0000, "CONTROL"},
		{0x4ABC, "FREQ0"},
		{0x8000, "FREQ1"},
		{0xBFFF, "FREQ1"},
		{0xC123, "PHASE0"},
		{0xEFFF, "PHASE1"},
	}

	for _, tc := range testCases {
		if got := RegisterName(tc.word); got != tc.expected {
			t.Errorf("RegisterName(0x%04X): expected %s, got %s", tc.word, tc.expected, got)
		}
	}
}

func TestHex16(t *testing.T) {
	if got := hex16(0x2C0A); got != "0x2C0A" {
		t.Errorf("Expected 0x2C0A, got %s", got)
	}
	if got := utoa(4294967295); got != "4294967295" {
		t.Errorf("Expected 4294967295, got %s", got)
	}
}

func TestWriteRingWraps(t *testing.T) {
	var ring writeRing

	for i := 0; i < WriteRingSize+4; i++ {
		ring.record(uint16(i), i == WriteRingSize+3)
	}

	events := ring.snapshot()
	if len(events) != WriteRingSize {
		t.Fatalf("Expected %d events, got %d", WriteRingSize, len(events))
	}
	if events[0].Word != 4 || events[0].Seq != 5 {
		t.Errorf("Expected oldest word 4 (seq 5), got %+v", events[0])
	}
	last := events[len(events)-1]
	if last.Word != WriteRingSize+3 || !last.Failed {
		t.Errorf("Expected newest word failed, got %+v", last)
	}
}

func TestDebugOutputAndDump(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	SetDebugEnabled(true)
	defer func() {
		SetDebugEnabled(false)
		SetDebugWriter(func(string) {})
	}()

	mock := &MockWordWriter{}
	cfg := DefaultAD9833Config()
	cfg.Name = "ch1"
	dev, err := NewAD9833(mock, cfg)
	if err != nil {
		t.Fatalf("NewAD9833 failed: %v", err)
	}
	if len(lines) != len(mock.words) {
		t.Errorf("Expected one debug line per write, got %d lines for %d words", len(lines), len(mock.words))
	}
	if !strings.Contains(lines[0], "ch1 reset CONTROL 0x2180") {
		t.Errorf("Unexpected debug line: %q", lines[0])
	}

	mock.failAt = len(mock.words) + 1
	mock.err = errors.New("nack")
	dev.Start()

	lines = lines[:0]
	SetDebugEnabled(false)
	dev.DumpWrites()

	// 14 construction writes plus the failed start
	if len(lines) != 15+2 {
		t.Fatalf("Expected %d dump lines, got %d", 15+2, len(lines))
	}
	if !strings.HasSuffix(lines[len(lines)-2], "CONTROL 0x2C00 FAILED") {
		t.Errorf("Expected failed start in dump, got %q", lines[len(lines)-2])
	}

	writes := dev.Writes()
	if !writes[len(writes)-1].Failed {
		t.Error("Expected last write marked failed")
	}
}

func TestWaveformParse(t *testing.T) {
	testCases := []struct {
		in       string
		expected Waveform
	}{
		{"sine", Sine},
		{"Triangle", Triangle},
		{" SQUARE ", Square},
		{"sawtooth", Sine},
		{"", Sine},
	}

	for _, tc := range testCases {
		if got := ParseWaveform(tc.in); got != tc.expected {
			t.Errorf("ParseWaveform(%q): expected %v, got %v", tc.in, tc.expected, got)
		}
	}
}

func TestWaveformText(t *testing.T) {
	if Square.String() != "square" || Waveform(9).String() != "sine" {
		t.Errorf("Unexpected names: %s %s", Square, Waveform(9))
	}

	var w Waveform
	if err := w.UnmarshalText([]byte("triangle")); err != nil || w != Triangle {
		t.Errorf("UnmarshalText: expected triangle, got %v (%v)", w, err)
	}
	if err := w.UnmarshalText([]byte("noise")); err != nil || w != Sine {
		t.Errorf("UnmarshalText: expected sine for unknown name, got %v (%v)", w, err)
	}

	text, _ := Triangle.MarshalText()
	if string(text) != "triangle" {
		t.Errorf("MarshalText: expected triangle, got %s", text)
	}
}
