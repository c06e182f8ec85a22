package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wavegen/config"
	"wavegen/core"
	"wavegen/host/device"
)

const (
	ForceOptionName     = "force"
	FrequencyOptionName = "frequency"
	PhaseOptionName     = "phase"
	WaveformOptionName  = "waveform"
)

func newInitCommand(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewDefaultConfig()
			cfg.SetPath(opts.configPath)
			if err := cfg.Persist(force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, ForceOptionName, false, "Overwrite an existing config file")
	return cmd
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured generators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range cfg.Generators {
				fmt.Fprintf(out, "%-12s %-9s %-14s %-6s mode %d %9d Hz  %g Hz %s phase %d\n",
					g.Name, g.Transport, portName(g), g.Select, g.SPIMode(), g.Rate,
					g.Frequency, g.Waveform, g.Phase)
			}
			return nil
		},
	}
}

func portName(g config.Generator) string {
	if g.Port == "" {
		return "(first)"
	}
	return g.Port
}

// overrides holds the apply flags that replace configured values
type overrides struct {
	frequency float64
	phase     int
	waveform  string
}

func (o overrides) apply(cmd *cobra.Command, g *config.Generator) {
	flags := cmd.Flags()
	if flags.Changed(FrequencyOptionName) {
		g.Frequency = o.frequency
	}
	if flags.Changed(PhaseOptionName) {
		g.Phase = o.phase
	}
	if flags.Changed(WaveformOptionName) {
		g.Waveform = core.ParseWaveform(o.waveform)
	}
}

func newApplyCommand(opts *options) *cobra.Command {
	var ov overrides
	cmd := &cobra.Command{
		Use:   "apply [names...]",
		Short: "Load the configured output and start the named generators (all by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			gens, err := selectGenerators(opts, args)
			if err != nil {
				return err
			}
			for _, g := range gens {
				ov.apply(cmd, &g)
				if err := device.Apply(g); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %g Hz %s phase %d started\n",
					g.Name, g.Frequency, g.Waveform, g.Phase)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&ov.frequency, FrequencyOptionName, 0, "Output frequency in Hz")
	cmd.Flags().IntVar(&ov.phase, PhaseOptionName, 0, "Phase offset in 2pi/4096 units (0-4095)")
	cmd.Flags().StringVar(&ov.waveform, WaveformOptionName, "", "sine, triangle or square")
	return cmd
}

func newStopCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [names...]",
		Short: "Stop the output of the named generators (all by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			gens, err := selectGenerators(opts, args)
			if err != nil {
				return err
			}
			for _, g := range gens {
				if err := device.Halt(g); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: stopped\n", g.Name)
			}
			return nil
		},
	}
}

func selectGenerators(opts *options, names []string) ([]config.Generator, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}
	return cfg.Select(names...)
}
