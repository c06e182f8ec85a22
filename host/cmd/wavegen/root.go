package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"wavegen/config"
	"wavegen/core"
)

const (
	ConfigOptionName  = "config"
	VerboseOptionName = "verbose"
)

// options are shared by every subcommand
type options struct {
	configPath string
	verbose    bool
}

func (o *options) load() (*config.Config, error) {
	return config.LoadFile(o.configPath)
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "wavegen",
		Short:         "Bring up AD9833 waveform generators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !opts.verbose {
				return
			}
			logger := log.New(cmd.ErrOrStderr(), "", log.Ltime|log.Lmicroseconds)
			core.SetDebugWriter(func(msg string) { logger.Println(msg) })
			core.SetDebugEnabled(true)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, ConfigOptionName, config.DefaultConfigPath(),
		fmt.Sprintf("Config file. E.g. %s", config.DefaultConfigPath()))
	cmd.PersistentFlags().BoolVarP(&opts.verbose, VerboseOptionName, "v", false, "Log every register write")

	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newApplyCommand(opts))
	cmd.AddCommand(newStopCommand(opts))
	return cmd
}
