// Package config loads and stores the generator configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"wavegen/core"
)

var (
	ErrUnknownTransport = errors.New("unknown transport")
	ErrUnknownGenerator = errors.New("no such generator")
	ErrDuplicateName    = errors.New("duplicate generator name")
	ErrEmptyName        = errors.New("generator name is empty")
	ErrBadMode          = errors.New("SPI mode must be 0-3")
)

type ErrConfigFileExists struct {
	Path string
}

func (e ErrConfigFileExists) Error() string {
	return fmt.Sprintf("config file %s already exists", e.Path)
}

// Generator describes one AD9833 and how it is attached
type Generator struct {
	Name      string `json:"name"`
	Transport string `json:"transport"` // spidev or buspirate

	// Port is the spireg port name for spidev ("" picks the first port) or
	// the serial device of the Bus Pirate.
	Port   string `json:"port,omitempty"`
	Baud   int    `json:"baud,omitempty"`
	Select string `json:"select,omitempty"`

	CSActiveHigh bool          `json:"csActiveHigh,omitempty"`
	Mode         *core.SPIMode `json:"mode,omitempty"`
	Rate         uint32        `json:"rate,omitempty"`
	Power        bool          `json:"power,omitempty"` // Bus Pirate only

	MasterClock uint32        `json:"masterClock,omitempty"`
	Frequency   float64       `json:"frequency,omitempty"`
	Phase       int           `json:"phase,omitempty"`
	Waveform    core.Waveform `json:"waveform"`
}

type Config struct {
	Generators []Generator `json:"generators"`
	filepath   string
}

// LoadConfig parses YAML configuration data, fills in defaults and
// validates the result
func LoadConfig(data []byte) (*Config, error) {
	var config Config

	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads the configuration at path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	config.filepath = path
	return config, nil
}

// applyDefaults fills in missing values with the AD9833 breakout defaults
func applyDefaults(config *Config) {
	for i := range config.Generators {
		g := &config.Generators[i]

		if g.Transport == "" {
			g.Transport = DefaultTransport
		}
		g.Transport = strings.ToLower(g.Transport)

		if g.Select == "" {
			switch g.Transport {
			case TransportBusPirate:
				g.Select = DefaultBusPirateSelect
			default:
				g.Select = DefaultSelect
			}
		}
		if g.Transport == TransportBusPirate {
			if g.Port == "" {
				g.Port = DefaultSerialPort
			}
			if g.Baud == 0 {
				g.Baud = DefaultBaud
			}
		}

		if g.Mode == nil {
			mode := DefaultSPIMode
			g.Mode = &mode
		}
		if g.Rate == 0 {
			g.Rate = DefaultSPIRate
		}
		if g.MasterClock == 0 {
			g.MasterClock = DefaultMasterClock
		}
		if g.Frequency == 0 {
			g.Frequency = DefaultFrequency
		}
	}
}

// Validate checks every generator entry
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Generators))

	for i, g := range c.Generators {
		field := func(name string) string {
			return fmt.Sprintf("generators[%d].%s", i, name)
		}

		if g.Name == "" {
			return &core.ConfigurationError{Field: field("name"), Value: g.Name, Err: ErrEmptyName}
		}
		if seen[g.Name] {
			return &core.ConfigurationError{Field: field("name"), Value: g.Name, Err: ErrDuplicateName}
		}
		seen[g.Name] = true

		switch g.Transport {
		case TransportSPIDev, TransportBusPirate:
		default:
			return &core.ConfigurationError{Field: field("transport"), Value: g.Transport, Err: ErrUnknownTransport}
		}

		if g.Mode != nil && *g.Mode > core.SPIMode3 {
			return &core.ConfigurationError{Field: field("mode"), Value: *g.Mode, Err: ErrBadMode}
		}
	}

	return nil
}

// Select returns the named generators in the order given, or all of them
// when no names are given
func (c *Config) Select(names ...string) ([]Generator, error) {
	if len(names) == 0 {
		return c.Generators, nil
	}

	out := make([]Generator, 0, len(names))
	for _, name := range names {
		g, ok := c.Lookup(name)
		if !ok {
			return nil, &core.ConfigurationError{Field: "generator", Value: name, Err: ErrUnknownGenerator}
		}
		out = append(out, g)
	}
	return out, nil
}

// Lookup finds a generator by name
func (c *Config) Lookup(name string) (Generator, bool) {
	for _, g := range c.Generators {
		if g.Name == name {
			return g, true
		}
	}
	return Generator{}, false
}

// Path returns the file the config was loaded from or will be persisted to
func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

// Persist writes the config as YAML. An existing file is only replaced
// when overwrite is set.
func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.filepath), 0755); err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// SPIMode returns the configured bus mode
func (g Generator) SPIMode() core.SPIMode {
	if g.Mode == nil {
		return DefaultSPIMode
	}
	return *g.Mode
}

// AD9833Config returns the chip parameters of the entry
func (g Generator) AD9833Config() core.AD9833Config {
	return core.AD9833Config{
		Name:        g.Name,
		MasterClock: g.MasterClock,
		Frequency:   g.Frequency,
		Phase:       g.Phase,
		Waveform:    g.Waveform,
	}
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

// NewDefaultConfig returns a single spidev generator at 440 Hz sine
func NewDefaultConfig() *Config {
	mode := DefaultSPIMode
	return &Config{
		Generators: []Generator{
			{
				Name:        DefaultName,
				Transport:   DefaultTransport,
				Select:      DefaultSelect,
				Mode:        &mode,
				Rate:        DefaultSPIRate,
				MasterClock: DefaultMasterClock,
				Frequency:   DefaultFrequency,
				Waveform:    core.Sine,
			},
		},
		filepath: DefaultConfigPath(),
	}
}
