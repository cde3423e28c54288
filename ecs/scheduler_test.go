package ecs_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/plus3/lattice/ecs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var movementQuery = ecs.NewQuery(positionSchema, velocitySchema)

func movementSystem(ctx *ecs.Context) error {
	dt := float32(ctx.Tick().Elapsed.Seconds())
	return ecs.Each2(ctx, movementQuery, func(_ ecs.Entity, p *Position, v *Velocity) error {
		p.X += v.DX * dt
		p.Y += v.DY * dt
		return nil
	})
}

func countingSystem(counter *int) ecs.SystemFunc {
	return func(*ecs.Context) error {
		*counter++
		return nil
	}
}

func TestWorld(t *testing.T) {
	t.Run("systems run in registration order", func(t *testing.T) {
		world := ecs.NewWorld()

		var order []string
		for _, name := range []string{"first", "second", "third"} {
			world.AddSystem(name, func(ctx *ecs.Context) error {
				order = append(order, ctx.System())
				return nil
			})
		}

		require.NoError(t, world.Step(time.Second))
		require.NoError(t, world.Step(time.Second))

		assert.Equal(t, []string{"first", "second", "third", "first", "second", "third"}, order)
		assert.Equal(t, []string{"first", "second", "third"}, world.Systems())
	})

	t.Run("tick data", func(t *testing.T) {
		world := ecs.NewWorld()

		var ticks []ecs.TickData
		world.AddSystem("recorder", func(ctx *ecs.Context) error {
			ticks = append(ticks, ctx.Tick())
			return nil
		})

		require.NoError(t, world.Step(100*time.Millisecond))
		require.NoError(t, world.Step(250*time.Millisecond))

		assert.Equal(t, []ecs.TickData{
			{Number: 1, Elapsed: 100 * time.Millisecond, Total: 100 * time.Millisecond},
			{Number: 2, Elapsed: 250 * time.Millisecond, Total: 350 * time.Millisecond},
		}, ticks)
		assert.Equal(t, uint64(2), world.Tick())
	})

	t.Run("elapsed time drives movement", func(t *testing.T) {
		world := ecs.NewWorld()
		e, err := world.Store().Create(pos(0, 0), vel(10, 20))
		require.NoError(t, err)

		world.AddSystem("movement", movementSystem)
		require.NoError(t, world.Step(500*time.Millisecond))

		data, _ := world.Store().Get(e, positionSchema)
		assert.Equal(t, &Position{X: 5, Y: 10}, data)
	})

	t.Run("mutations are visible to later systems in the same tick", func(t *testing.T) {
		world := ecs.NewWorld()

		var created ecs.Entity
		world.AddSystem("spawner", func(ctx *ecs.Context) error {
			var err error
			created, err = ctx.Create(pos(1, 1))
			return err
		})

		var seen []ecs.Entity
		world.AddSystem("reader", func(ctx *ecs.Context) error {
			return ctx.Each(ecs.NewQuery(positionSchema), func(e ecs.Entity, _ []any) error {
				seen = append(seen, e)
				return nil
			})
		})

		require.NoError(t, world.Step(0))
		assert.Equal(t, []ecs.Entity{created}, seen)
	})

	t.Run("context cancellation in run", func(t *testing.T) {
		world := ecs.NewWorld()

		executions := 0
		world.AddSystem("counter", countingSystem(&executions))

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error)
		go func() {
			done <- world.Run(ctx, 1*time.Millisecond)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(100 * time.Millisecond):
			t.Fatal("world did not stop after context cancellation")
		}

		assert.NotZero(t, executions)
	})

	t.Run("run stops on system error", func(t *testing.T) {
		world := ecs.NewWorld()
		boom := errors.New("boom")
		world.AddSystem("broken", func(*ecs.Context) error { return boom })

		err := world.Run(context.Background(), time.Millisecond)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, uint64(1), world.Tick())
	})
}

func TestSystemErrorAbortsTick(t *testing.T) {
	world := ecs.NewWorld()
	boom := errors.New("boom")

	before, after := 0, 0
	fail := true

	world.AddSystem("before", countingSystem(&before))
	world.AddSystem("flaky", func(ctx *ecs.Context) error {
		ctx.Commands().Create(pos(1, 1))
		if fail {
			return boom
		}
		return nil
	})
	world.AddSystem("after", countingSystem(&after))

	err := world.Step(time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `system "flaky"`)
	assert.Equal(t, 1, before)
	assert.Equal(t, 0, after)

	// commands queued by the failed tick are discarded
	assert.Equal(t, 0, world.Store().Len())

	fail = false
	require.NoError(t, world.Step(time.Second))
	assert.Equal(t, 2, before)
	assert.Equal(t, 1, after)
	assert.Equal(t, 1, world.Store().Len())
}

func TestRemoveSystem(t *testing.T) {
	world := ecs.NewWorld()

	a, b := 0, 0
	idA := world.AddSystem("a", countingSystem(&a))
	world.AddSystem("b", countingSystem(&b))

	require.NoError(t, world.Step(0))
	require.NoError(t, world.RemoveSystem(idA))
	require.NoError(t, world.Step(0))

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, []string{"b"}, world.Systems())

	assert.ErrorIs(t, world.RemoveSystem(idA), ecs.ErrUnknownSystem)
}

func TestSystemChangesDuringStep(t *testing.T) {
	world := ecs.NewWorld()

	late := 0
	victim := 0
	var victimID ecs.SystemID

	world.AddSystem("manager", func(ctx *ecs.Context) error {
		if !ctx.UseInit() {
			return nil
		}
		world.AddSystem("late", countingSystem(&late))
		return world.RemoveSystem(victimID)
	})
	victimID = world.AddSystem("victim", countingSystem(&victim))

	require.NoError(t, world.Step(0))
	assert.Equal(t, 0, late, "systems added during a tick start on the next tick")
	assert.Equal(t, 0, victim, "systems removed during a tick do not run")

	require.NoError(t, world.Step(0))
	assert.Equal(t, 1, late)
	assert.Equal(t, 0, victim)
}

func TestHooks(t *testing.T) {
	t.Run("UseInit returns true exactly once", func(t *testing.T) {
		world := ecs.NewWorld()

		var results []bool
		world.AddSystem("init", func(ctx *ecs.Context) error {
			results = append(results, ctx.UseInit())
			return nil
		})

		for range 4 {
			require.NoError(t, world.Step(0))
		}
		assert.Equal(t, []bool{true, false, false, false}, results)
	})

	t.Run("UseInit is per registration", func(t *testing.T) {
		world := ecs.NewWorld()

		inits := 0
		system := func(ctx *ecs.Context) error {
			if ctx.UseInit() {
				inits++
			}
			return nil
		}

		id := world.AddSystem("one", system)
		world.AddSystem("two", system)
		require.NoError(t, world.Step(0))
		require.NoError(t, world.Step(0))
		assert.Equal(t, 2, inits)

		require.NoError(t, world.RemoveSystem(id))
		world.AddSystem("one", system)
		require.NoError(t, world.Step(0))
		assert.Equal(t, 3, inits)
	})

	t.Run("UseRef persists between ticks", func(t *testing.T) {
		world := ecs.NewWorld()

		var totals []int
		world.AddSystem("refs", func(ctx *ecs.Context) error {
			count := ecs.UseRef(ctx, 10)
			label := ecs.UseRef(ctx, "x")
			*count++
			*label += "x"
			totals = append(totals, *count+len(*label))
			return nil
		})

		for range 3 {
			require.NoError(t, world.Step(0))
		}
		assert.Equal(t, []int{13, 15, 17}, totals)
	})

	t.Run("UseInterval accumulates elapsed time", func(t *testing.T) {
		world := ecs.NewWorld()

		var fired []uint64
		world.AddSystem("interval", func(ctx *ecs.Context) error {
			if ctx.UseInterval(time.Second) {
				fired = append(fired, ctx.Tick().Number)
			}
			return nil
		})

		for range 10 {
			require.NoError(t, world.Step(400*time.Millisecond))
		}
		// 0.4 0.8 1.2 | 0.6 1.0 | 0.4 0.8 1.2 | 0.6 1.0
		assert.Equal(t, []uint64{3, 5, 8, 10}, fired)
	})

	t.Run("changing hook order panics", func(t *testing.T) {
		world := ecs.NewWorld()

		world.AddSystem("unstable", func(ctx *ecs.Context) error {
			if ctx.Tick().Number == 1 {
				ctx.UseInit()
				return nil
			}
			ecs.UseRef(ctx, 0)
			return nil
		})

		require.NoError(t, world.Step(0))
		assert.PanicsWithValue(t,
			`system "unstable": hook slot 0 was UseInit and is now UseRef; hooks must be called in the same order every tick`,
			func() { _ = world.Step(0) })
	})

	t.Run("UseMonitor reports each arrival once", func(t *testing.T) {
		world := ecs.NewWorld()
		query := ecs.NewQuery(positionSchema, velocitySchema)

		var arrivals []ecs.Entity
		world.AddSystem("watcher", func(ctx *ecs.Context) error {
			return ctx.UseMonitor(query, func(e ecs.Entity, _ []any) error {
				arrivals = append(arrivals, e)
				return nil
			})
		})

		a, _ := world.Store().Create(pos(0, 0), vel(1, 1))
		require.NoError(t, world.Step(0))
		require.NoError(t, world.Step(0))
		assert.Equal(t, []ecs.Entity{a}, arrivals)

		b, _ := world.Store().Create(pos(0, 0), vel(1, 1))
		require.NoError(t, world.Store().Detach(a, velocitySchema))
		require.NoError(t, world.Step(0))
		assert.Equal(t, []ecs.Entity{a, b}, arrivals)

		require.NoError(t, world.Store().Attach(a, vel(1, 1)))
		require.NoError(t, world.Step(0))
		assert.Equal(t, []ecs.Entity{a, b, a}, arrivals)
	})

	t.Run("separate UseMonitor call sites keep separate state", func(t *testing.T) {
		world := ecs.NewWorld()
		positions := ecs.NewQuery(positionSchema)
		velocities := ecs.NewQuery(velocitySchema)

		var seenPositions, seenVelocities int
		world.AddSystem("watcher", func(ctx *ecs.Context) error {
			if err := ctx.UseMonitor(positions, func(ecs.Entity, []any) error {
				seenPositions++
				return nil
			}); err != nil {
				return err
			}
			return ctx.UseMonitor(velocities, func(ecs.Entity, []any) error {
				seenVelocities++
				return nil
			})
		})

		_, _ = world.Store().Create(pos(0, 0), vel(1, 1))
		_, _ = world.Store().Create(vel(1, 1))
		require.NoError(t, world.Step(0))
		require.NoError(t, world.Step(0))

		assert.Equal(t, 1, seenPositions)
		assert.Equal(t, 2, seenVelocities)
	})
}

// A system creates an entity during its first tick and a later system monitors
// for it: the monitor fires in the same tick and never again.
func TestSpawnAndMonitor(t *testing.T) {
	world := ecs.NewWorld()
	query := ecs.NewQuery(positionSchema)

	var spawned ecs.Entity
	world.AddSystem("spawn", func(ctx *ecs.Context) error {
		if !ctx.UseInit() {
			return nil
		}
		var err error
		spawned, err = ctx.Create(pos(1, 2))
		return err
	})

	var matches []uint64
	world.AddSystem("monitor", func(ctx *ecs.Context) error {
		return ctx.UseMonitor(query, func(e ecs.Entity, data []any) error {
			assert.Equal(t, spawned, e)
			assert.Equal(t, &Position{X: 1, Y: 2}, data[0])
			matches = append(matches, ctx.Tick().Number)
			return nil
		})
	})

	for range 5 {
		require.NoError(t, world.Step(16*time.Millisecond))
	}
	assert.Equal(t, []uint64{1}, matches)
}

func TestWorldLogging(t *testing.T) {
	var buf bytes.Buffer
	id := uuid.MustParse("6f1f6a34-9d55-4c3c-8f0e-0d3c2c3f4a10")
	world := ecs.NewWorld(ecs.WithLogger(zerolog.New(&buf)), ecs.WithID(id))
	assert.Equal(t, id, world.ID())

	world.AddSystem("chatty", func(ctx *ecs.Context) error {
		ctx.Logger().Info().Msg("hello")
		return nil
	})
	world.AddSystem("broken", func(*ecs.Context) error {
		return errors.New("boom")
	})

	require.Error(t, world.Step(0))

	out := buf.String()
	assert.Contains(t, out, `"world_id":"6f1f6a34-9d55-4c3c-8f0e-0d3c2c3f4a10"`)
	assert.Contains(t, out, `"system":"chatty","tick":1,"message":"hello"`)
	assert.Contains(t, out, `"error":"boom","system":"broken","tick":1,"message":"system failed"`)
}

func TestWorldOptions(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	world := ecs.NewWorld(ecs.WithRegistry(registry), ecs.WithInitialCapacity(1024))
	assert.Same(t, registry, world.Store().Registry())
	assert.NotEqual(t, uuid.Nil, world.ID())

	for range 2000 {
		_, err := world.Store().Create(pos(0, 0))
		require.NoError(t, err)
	}
	assert.Equal(t, 2000, world.Store().Len())
}

func TestAddNilSystemPanics(t *testing.T) {
	world := ecs.NewWorld()
	assert.Panics(t, func() {
		world.AddSystem("nil", nil)
	})
}
