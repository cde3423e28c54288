// Command lattice runs the box-drop demo in a window or headless, and
// stress tests the ECS runtime.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCommand(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *Config) *cobra.Command {
	var logger zerolog.Logger

	cmd := &cobra.Command{
		Use:   "lattice",
		Short: "Lattice ECS runtime demos and tooling",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			l, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	cmd.PersistentFlags().IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "ticks per second")

	cmd.AddCommand(newInteropCommand(cfg, &logger))
	cmd.AddCommand(newSimulateCommand(cfg, &logger))
	cmd.AddCommand(newStressCommand(cfg, &logger))

	return cmd
}
