package main

import (
	"io"
	"os"

	"github.com/plus3/lattice/ecs"
	"github.com/plus3/lattice/internal/demo"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newSimulateCommand(cfg *Config, logger *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the box drop without a window and write a JSON trace",
		Long: `Run the box drop headless for a fixed amount of simulated time.

Mesh positions are sampled at a fixed interval and written as JSON.

Examples:
  lattice simulate --duration 5s
  lattice simulate --boxes 10 --seed 3 --out trace.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cfg.TraceOut != "" && cfg.TraceOut != "-" {
				f, err := os.Create(cfg.TraceOut)
				if err != nil {
					return eris.Wrap(err, "create trace file")
				}
				defer f.Close()
				out = f
			}
			return simulate(cfg, *logger, out)
		},
	}

	cmd.Flags().IntVar(&cfg.Boxes, "boxes", cfg.Boxes, "number of boxes to drop")
	cmd.Flags().StringVar(&cfg.Duration, "duration", cfg.Duration, "simulated time to run")
	cmd.Flags().StringVar(&cfg.TraceEvery, "every", cfg.TraceEvery, "interval between trace samples")
	cmd.Flags().StringVarP(&cfg.TraceOut, "out", "o", cfg.TraceOut, "trace file (stdout when empty)")

	return cmd
}

func simulate(cfg *Config, logger zerolog.Logger, out io.Writer) error {
	duration, err := cfg.duration()
	if err != nil {
		return err
	}
	every, err := cfg.traceEvery()
	if err != nil {
		return err
	}

	world := ecs.NewWorld(ecs.WithLogger(logger), ecs.WithInitialCapacity(cfg.Boxes+1))

	opts := demo.DefaultOptions()
	opts.Boxes = cfg.Boxes
	opts.Seed = cfg.Seed
	demo.New(opts).Install(world)

	trace := demo.NewTrace(every)
	world.AddSystem("trace", trace.System)

	ticks := int(duration / cfg.tick())
	if err := demo.Simulate(world, ticks, cfg.tick()); err != nil {
		return err
	}

	stats := world.Stats()
	logger.Info().
		Int("ticks", ticks).
		Int("frames", len(trace.Frames)).
		Int64("executions", stats.TotalExecutions).
		Msg("simulation finished")

	return trace.Encode(out)
}
