package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/lattice/ecs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newStressCommand(cfg *Config, logger *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Stress test the ECS runtime and print a report",
		Long: `Populate a world with random entities over many schemas and step it
with many systems for a wall-clock duration, then print a markdown report.

Examples:
  lattice stress --duration 30s --entities 50000
  lattice stress --profile cpu`,
		RunE: func(cmd *cobra.Command, args []string) error {
			duration, err := cfg.duration()
			if err != nil {
				return err
			}

			if cfg.Profile != "" {
				p := profile.Start(profileMode(cfg.Profile), profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet)
				defer p.Stop()
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), duration)
			defer cancel()

			report, err := runStress(ctx, cfg, *logger)
			if err != nil {
				return err
			}
			return report.Generate(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cfg.Duration, "duration", cfg.Duration, "wall-clock time the test runs for")
	cmd.Flags().IntVar(&cfg.Entities, "entities", cfg.Entities, "initial number of entities")
	cmd.Flags().IntVar(&cfg.Schemas, "schemas", cfg.Schemas, "number of component schemas")
	cmd.Flags().IntVar(&cfg.Systems, "systems", cfg.Systems, "number of query systems")
	cmd.Flags().StringVar(&cfg.Profile, "profile", cfg.Profile, "write a profile to the working directory (cpu|mem|trace)")
	cmd.Flags().BoolVar(&cfg.GCPauseMetrics, "gc-pause-metrics", cfg.GCPauseMetrics, "include GC pause metrics in the report")

	return cmd
}

func profileMode(mode string) func(*profile.Profile) {
	switch mode {
	case "mem":
		return profile.MemProfileAllocs
	case "trace":
		return profile.TraceProfile
	}
	return profile.CPUProfile
}

// stressSchemas defines n schemas of two numeric fields each.
func stressSchemas(n int) []*ecs.Schema {
	schemas := make([]*ecs.Schema, n)
	for i := range schemas {
		schemas[i] = ecs.DefineSchema(fmt.Sprintf("stress.C%03d", i), ecs.Number("a"), ecs.Number("b"))
	}
	return schemas
}

// spawnRandom creates an entity with 1 to 5 distinct random schemas.
func spawnRandom(rng *rand.Rand, schemas []*ecs.Schema) []ecs.Component {
	count := min(rng.IntN(5)+1, len(schemas))
	components := make([]ecs.Component, 0, count)
	for _, i := range rng.Perm(len(schemas))[:count] {
		components = append(components, schemas[i].Of(ecs.Record{"a": rng.Float64(), "b": 0}))
	}
	return components
}

// querySystem accumulates a into b on the first schema of a random one or two
// schema query.
func querySystem(q *ecs.Query) ecs.SystemFunc {
	schema := q.Schemas()[0]
	return func(ctx *ecs.Context) error {
		return ctx.Each(q, func(e ecs.Entity, data []any) error {
			a, err := schema.Number(data[0], "a")
			if err != nil {
				return err
			}
			b, err := schema.Number(data[0], "b")
			if err != nil {
				return err
			}
			return schema.SetNumber(data[0], "b", a+b)
		})
	}
}

// churnSystem destroys and respawns a few entities per tick through the
// command buffer, tracking arrivals with a monitor.
func churnSystem(rng *rand.Rand, schemas []*ecs.Schema) ecs.SystemFunc {
	tracked := ecs.NewQuery(schemas[0])
	return func(ctx *ecs.Context) error {
		arrivals := ecs.UseRef(ctx, 0)
		err := ctx.UseMonitor(tracked, func(ecs.Entity, []any) error {
			*arrivals++
			return nil
		})
		if err != nil {
			return err
		}
		logNow := ctx.UseInterval(time.Second)

		store := ctx.Store()
		n := store.Len()
		if n == 0 {
			return nil
		}
		for range max(n/1000, 1) {
			var victim ecs.Entity
			skip := rng.IntN(n)
			for e := range store.Entities() {
				if skip == 0 {
					victim = e
					break
				}
				skip--
			}
			ctx.Commands().Destroy(victim)
			ctx.Commands().Create(spawnRandom(rng, schemas)...)
		}

		if logNow {
			ctx.Logger().Debug().Int("entities", n).Int("arrivals", *arrivals).Msg("churn")
		}
		return nil
	}
}

func runStress(ctx context.Context, cfg *Config, logger zerolog.Logger) (*Report, error) {
	logger.Info().Msg("starting ECS stress test")

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	registry := ecs.NewComponentRegistry()
	schemas := stressSchemas(cfg.Schemas)
	registry.Register(schemas...)

	world := ecs.NewWorld(
		ecs.WithLogger(logger),
		ecs.WithRegistry(registry),
		ecs.WithInitialCapacity(cfg.Entities),
	)

	for range cfg.Systems {
		picked := []*ecs.Schema{schemas[rng.IntN(len(schemas))]}
		if rng.IntN(2) == 0 {
			picked = append(picked, schemas[rng.IntN(len(schemas))])
		}
		q := ecs.NewQuery(picked...)
		world.AddSystem(fmt.Sprintf("query.%s", q.Schemas()[0].Name()), querySystem(q))
	}
	world.AddSystem("churn", churnSystem(rng, schemas))

	logger.Info().Int("entities", cfg.Entities).Msg("populating store")
	for range cfg.Entities {
		if _, err := world.Store().Create(spawnRandom(rng, schemas)...); err != nil {
			return nil, err
		}
	}

	report := &Report{
		Entities:       cfg.Entities,
		Schemas:        cfg.Schemas,
		Systems:        cfg.Systems,
		GCPauseMetrics: cfg.GCPauseMetrics,
	}
	if deadline, ok := ctx.Deadline(); ok {
		report.Duration = time.Until(deadline).Round(time.Millisecond)
	}
	runtime.ReadMemStats(&report.MemStart)

	logger.Info().Dur("duration", report.Duration).Msg("running simulation")
	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := world.Step(deltaTime); err != nil {
				return nil, err
			}
			report.Frames.Add(time.Since(updateStart))
		}
	}

	report.Elapsed = time.Since(startTime)
	runtime.ReadMemStats(&report.MemEnd)
	report.Storage = world.Store().CollectStats()
	report.Scheduler = world.Stats()

	logger.Info().Int("ticks", report.Frames.Count()).Msg("stress test complete")
	return report, nil
}
