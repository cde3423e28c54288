package demo

import (
	"math/rand/v2"
	"time"

	"github.com/plus3/lattice/ecs"
	"github.com/plus3/lattice/internal/physics"
	"github.com/plus3/lattice/internal/scene"
)

type Options struct {
	// Boxes is the number of boxes dropped on the first tick.
	Boxes int
	// Seed drives the random drop positions.
	Seed uint64
	// Positions, when set, replaces the random drop positions.
	Positions []physics.Vec3
	Gravity   physics.Vec3
}

func DefaultOptions() Options {
	return Options{
		Boxes:   100,
		Seed:    1,
		Gravity: physics.Vec3{Y: -9.81},
	}
}

// App owns the foreign libraries and the systems bridging them through a
// world.
type App struct {
	Physics *physics.World
	Scene   *scene.Scene

	opts Options
	rng  *rand.Rand
}

func New(opts Options) *App {
	return &App{
		Physics: physics.NewWorld(opts.Gravity),
		Scene:   scene.New(),
		opts:    opts,
		rng:     rand.New(rand.NewPCG(opts.Seed, opts.Seed)),
	}
}

// Install registers the spawn, physics and render systems in that order.
func (a *App) Install(world *ecs.World) {
	world.AddSystem("spawn", a.spawnSystem)
	world.AddSystem("physics", a.physicsSystem)
	world.AddSystem("render", a.renderSystem)
}

func (a *App) random(scale float64) float64 {
	return (0.5 - a.rng.Float64()) * scale
}

func (a *App) dropPositions() []physics.Vec3 {
	if a.opts.Positions != nil {
		return a.opts.Positions
	}
	positions := make([]physics.Vec3, a.opts.Boxes)
	for i := range positions {
		positions[i] = physics.Vec3{X: a.random(20), Y: 20, Z: a.random(20)}
	}
	return positions
}

func (a *App) spawnSystem(ctx *ecs.Context) error {
	if !ctx.UseInit() {
		return nil
	}

	ground, err := CreateGround()
	if err != nil {
		return err
	}
	if _, err := ctx.Create(ground...); err != nil {
		return err
	}

	positions := a.dropPositions()
	for _, p := range positions {
		box, err := CreateBox(p, physics.Dynamic, BoxColor, 1)
		if err != nil {
			return err
		}
		if _, err := ctx.Create(box...); err != nil {
			return err
		}
	}

	ctx.Logger().Info().Int("boxes", len(positions)).Msg("spawned")
	return nil
}

func (a *App) physicsSystem(ctx *ecs.Context) error {
	err := ctx.UseMonitor(bodies, func(e ecs.Entity, components []any) error {
		body, err := ecs.As[*physics.Body](components[0])
		if err != nil {
			return err
		}
		return a.Physics.AddBody(body)
	}, ecs.OnUnmatch(func(e ecs.Entity) {
		ctx.Logger().Debug().Stringer("entity", e).Msg("body left the simulation")
	}))
	if err != nil {
		return err
	}

	a.Physics.Step(ctx.Tick().Elapsed.Seconds())
	return nil
}

func (a *App) renderSystem(ctx *ecs.Context) error {
	if ctx.UseInit() {
		a.Scene.Camera.Position = scene.Vec3{X: 50, Y: 50, Z: 50}
	}

	err := ctx.UseMonitor(bodies, func(e ecs.Entity, components []any) error {
		mesh, err := ecs.As[*scene.Mesh](components[1])
		if err != nil {
			return err
		}
		a.Scene.Add(mesh)
		return nil
	})
	if err != nil {
		return err
	}

	return ctx.Each(bodies, func(e ecs.Entity, components []any) error {
		return MeshSchema.CopyNumbers(components[1], components[0])
	})
}

// Simulate runs ticks fixed steps of dt without a window.
func Simulate(world *ecs.World, ticks int, dt time.Duration) error {
	for range ticks {
		if err := world.Step(dt); err != nil {
			return err
		}
	}
	return nil
}
