package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wavegen/core"
)

const sampleConfig = `
generators:
  - name: left
    select: GPIO25
    frequency: 1000
    waveform: Triangle
  - name: right
    transport: BusPirate
    port: /dev/ttyACM0
    mode: 2
    rate: 1000000
    phase: 1024
    waveform: square
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(cfg.Generators) != 2 {
		t.Fatalf("Expected 2 generators, got %d", len(cfg.Generators))
	}

	left := cfg.Generators[0]
	if left.Transport != TransportSPIDev {
		t.Errorf("Expected default transport spidev, got %q", left.Transport)
	}
	if left.SPIMode() != core.SPIMode2 || left.Rate != 5000000 {
		t.Errorf("Expected mode 2 at 5 MHz, got %d at %d", left.SPIMode(), left.Rate)
	}
	if left.MasterClock != 25000000 {
		t.Errorf("Expected 25 MHz master clock, got %d", left.MasterClock)
	}
	if left.Frequency != 1000 || left.Waveform != core.Triangle {
		t.Errorf("Expected 1000 Hz triangle, got %v Hz %v", left.Frequency, left.Waveform)
	}

	right := cfg.Generators[1]
	if right.Transport != TransportBusPirate {
		t.Errorf("Expected transport to be lower-cased, got %q", right.Transport)
	}
	if right.Select != "CS" || right.Baud != 115200 {
		t.Errorf("Expected bus pirate defaults, got select %q baud %d", right.Select, right.Baud)
	}
	if right.Frequency != 440 {
		t.Errorf("Expected default 440 Hz, got %v", right.Frequency)
	}

	chip := right.AD9833Config()
	if chip.Name != "right" || chip.Phase != 1024 || chip.Waveform != core.Square {
		t.Errorf("Unexpected chip config: %+v", chip)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	testCases := []struct {
		name     string
		data     string
		expected error
	}{
		{"unknown transport", "generators:\n  - name: a\n    transport: usb\n", ErrUnknownTransport},
		{"empty name", "generators:\n  - frequency: 10\n", ErrEmptyName},
		{"duplicate", "generators:\n  - name: a\n  - name: a\n", ErrDuplicateName},
		{"bad mode", "generators:\n  - name: a\n    mode: 4\n", ErrBadMode},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig([]byte(tc.data))
			var cfgErr *core.ConfigurationError
			if !errors.As(err, &cfgErr) || !errors.Is(err, tc.expected) {
				t.Errorf("Expected ConfigurationError wrapping %v, got %v", tc.expected, err)
			}
		})
	}

	if _, err := LoadConfig([]byte("generators:\n  - name: a\n    frequncy: 10\n")); err == nil {
		t.Error("Expected unknown field to be rejected")
	}
}

func TestSelect(t *testing.T) {
	cfg, err := LoadConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	all, err := cfg.Select()
	if err != nil || len(all) != 2 {
		t.Errorf("Expected all generators, got %d (%v)", len(all), err)
	}

	some, err := cfg.Select("right", "left")
	if err != nil || len(some) != 2 || some[0].Name != "right" {
		t.Errorf("Expected right then left, got %v (%v)", some, err)
	}

	if _, err := cfg.Select("middle"); !errors.Is(err, ErrUnknownGenerator) {
		t.Errorf("Expected ErrUnknownGenerator, got %v", err)
	}
}

func TestPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigDir, ConfigFile)

	cfg := NewDefaultConfig()
	cfg.SetPath(path)
	cfg.Generators[0].Waveform = core.Square

	if err := cfg.Persist(false); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	var exists ErrConfigFileExists
	if err := cfg.Persist(false); !errors.As(err, &exists) || exists.Path != path {
		t.Errorf("Expected ErrConfigFileExists, got %v", err)
	}
	if err := cfg.Persist(true); err != nil {
		t.Errorf("Persist with overwrite failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Path() != path {
		t.Errorf("Expected path %s, got %s", path, loaded.Path())
	}
	g, ok := loaded.Lookup(DefaultName)
	if !ok {
		t.Fatalf("Expected generator %q", DefaultName)
	}
	if g.Waveform != core.Square || g.Select != DefaultSelect || g.SPIMode() != core.SPIMode2 {
		t.Errorf("Unexpected generator after round trip: %+v", g)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}
