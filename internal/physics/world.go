// Package physics is a small rigid-body simulation of axis-aligned boxes.
// Bodies are allocated by the caller and mutated in place by World.Step, so
// other code may hold pointers to them and observe the simulation.
package physics

import (
	"math"

	"github.com/rotisserie/eris"
)

var (
	ErrBodyInWorld    = eris.New("body already belongs to a world")
	ErrBodyNotInWorld = eris.New("body does not belong to this world")
)

type BodyType uint8

const (
	Dynamic BodyType = iota
	Static
)

func (t BodyType) String() string {
	if t == Static {
		return "static"
	}
	return "dynamic"
}

// Body is a box. Dynamic bodies with zero mass behave as static ones.
type Body struct {
	Position        Vec3
	Quaternion      Quaternion
	Velocity        Vec3
	AngularVelocity Vec3
	HalfExtents     Vec3
	Mass            float64
	Type            BodyType

	world *World
}

type BodyOptions struct {
	Position    Vec3
	HalfExtents Vec3
	Mass        float64
	Type        BodyType
}

func NewBody(opts BodyOptions) *Body {
	return &Body{
		Position:    opts.Position,
		Quaternion:  Identity(),
		HalfExtents: opts.HalfExtents,
		Mass:        opts.Mass,
		Type:        opts.Type,
	}
}

func (b *Body) static() bool {
	return b.Type == Static || b.Mass <= 0
}

// World integrates its bodies under gravity and resolves overlaps between
// them.
type World struct {
	Gravity Vec3
	// Restitution scales the velocity a body keeps after a collision.
	Restitution float64
	// Friction is the fraction of tangential velocity lost per contact step.
	Friction float64
	// MaxStep clamps the dt of a single Step.
	MaxStep float64

	bodies []*Body
	time   float64
}

func NewWorld(gravity Vec3) *World {
	return &World{
		Gravity:     gravity,
		Restitution: 0.2,
		Friction:    0.1,
		MaxStep:     0.1,
	}
}

func (w *World) AddBody(b *Body) error {
	if b.world != nil {
		return ErrBodyInWorld
	}
	b.world = w
	w.bodies = append(w.bodies, b)
	return nil
}

func (w *World) RemoveBody(b *Body) error {
	if b.world != w {
		return ErrBodyNotInWorld
	}
	for i, candidate := range w.bodies {
		if candidate == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	b.world = nil
	return nil
}

func (w *World) Bodies() []*Body {
	return w.bodies
}

// Time is the simulated time in seconds.
func (w *World) Time() float64 {
	return w.time
}

// Step advances the simulation by dt seconds. Non-positive steps are ignored.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	if w.MaxStep > 0 && dt > w.MaxStep {
		dt = w.MaxStep
	}

	for _, b := range w.bodies {
		if b.static() {
			continue
		}
		b.Velocity = b.Velocity.Add(w.Gravity.Scale(dt))
		b.Position = b.Position.Add(b.Velocity.Scale(dt))
		b.Quaternion = b.Quaternion.Integrate(b.AngularVelocity, dt)
	}

	for i, a := range w.bodies {
		for _, b := range w.bodies[i+1:] {
			w.resolve(a, b)
		}
	}

	w.time += dt
}

// resolve separates two overlapping boxes along the axis of least
// penetration.
func (w *World) resolve(a, b *Body) {
	if a.static() && b.static() {
		return
	}

	d := b.Position.Sub(a.Position)
	overlap := [3]float64{
		a.HalfExtents.X + b.HalfExtents.X - math.Abs(d.X),
		a.HalfExtents.Y + b.HalfExtents.Y - math.Abs(d.Y),
		a.HalfExtents.Z + b.HalfExtents.Z - math.Abs(d.Z),
	}
	axis := 0
	for i, o := range overlap {
		if o <= 0 {
			return
		}
		if o < overlap[axis] {
			axis = i
		}
	}

	dir := [3]float64{d.X, d.Y, d.Z}[axis]
	sign := 1.0
	if dir < 0 {
		sign = -1
	}
	push := overlap[axis] * sign

	// share of the correction taken by each body
	var shareA, shareB float64
	switch {
	case a.static():
		shareA, shareB = 0, 1
	case b.static():
		shareA, shareB = 1, 0
	default:
		total := a.Mass + b.Mass
		shareA, shareB = b.Mass/total, a.Mass/total
	}

	translate(&a.Position, axis, -push*shareA)
	translate(&b.Position, axis, push*shareB)

	// a is pushed towards -sign, b towards +sign
	contacts := [2]struct {
		body *Body
		side float64
	}{{a, -sign}, {b, sign}}
	for _, c := range contacts {
		body, side := c.body, c.side
		if body.static() {
			continue
		}
		v := component(body.Velocity, axis)
		if v*side < 0 {
			setComponent(&body.Velocity, axis, -v*w.Restitution)
		}
		keep := 1 - w.Friction
		for other := range 3 {
			if other != axis {
				setComponent(&body.Velocity, other, component(body.Velocity, other)*keep)
			}
		}
		body.AngularVelocity = body.AngularVelocity.Scale(keep)
	}
}

func component(v Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func setComponent(v *Vec3, axis int, n float64) {
	switch axis {
	case 0:
		v.X = n
	case 1:
		v.Y = n
	default:
		v.Z = n
	}
}

func translate(v *Vec3, axis int, delta float64) {
	setComponent(v, axis, component(*v, axis)+delta)
}
