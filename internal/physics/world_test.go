package physics_test

import (
	"math"
	"testing"

	"github.com/plus3/lattice/internal/physics"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

const step = 1.0 / 60

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func newGround() *physics.Body {
	return physics.NewBody(physics.BodyOptions{
		HalfExtents: physics.Vec3{X: 10, Y: 0.5, Z: 10},
		Type:        physics.Static,
	})
}

func newBox(x, y, z float64) *physics.Body {
	return physics.NewBody(physics.BodyOptions{
		Position:    physics.Vec3{X: x, Y: y, Z: z},
		HalfExtents: physics.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
		Mass:        1,
	})
}

func TestFreeFall(t *testing.T) {
	w := physics.NewWorld(physics.Vec3{Y: -10})
	box := newBox(0, 100, 0)
	assert.NilError(t, w.AddBody(box))

	w.Step(0.1)

	assert.Assert(t, near(box.Velocity.Y, -1))
	assert.Assert(t, near(box.Position.Y, 99.9))
	assert.Assert(t, near(w.Time(), 0.1))
}

func TestBoxComesToRestOnGround(t *testing.T) {
	w := physics.NewWorld(physics.Vec3{Y: -9.81})
	ground := newGround()
	box := newBox(1, 5, -2)
	assert.NilError(t, w.AddBody(ground))
	assert.NilError(t, w.AddBody(box))

	for range 600 {
		w.Step(step)
	}

	assert.Assert(t, near(box.Position.Y, 1), "box y = %v", box.Position.Y)
	assert.Assert(t, near(box.Position.X, 1))
	assert.Assert(t, near(box.Position.Z, -2))
	assert.Assert(t, math.Abs(box.Velocity.Y) < 0.2)
	assert.Equal(t, ground.Position, physics.Vec3{})
}

func TestBoxesStack(t *testing.T) {
	w := physics.NewWorld(physics.Vec3{Y: -9.81})
	lower := newBox(0, 2, 0)
	upper := newBox(0, 4, 0)
	for _, b := range []*physics.Body{newGround(), lower, upper} {
		assert.NilError(t, w.AddBody(b))
	}

	for range 600 {
		w.Step(step)
	}

	assert.Assert(t, upper.Position.Y > lower.Position.Y+0.9, "upper %v lower %v", upper.Position.Y, lower.Position.Y)
	assert.Assert(t, lower.Position.Y > 0.9)
}

func TestBoxOffTheEdgeKeepsFalling(t *testing.T) {
	w := physics.NewWorld(physics.Vec3{Y: -9.81})
	box := newBox(20, 5, 0)
	assert.NilError(t, w.AddBody(newGround()))
	assert.NilError(t, w.AddBody(box))

	for range 120 {
		w.Step(step)
	}
	assert.Assert(t, box.Position.Y < 0)
}

func TestStaticAndMasslessBodiesDoNotMove(t *testing.T) {
	w := physics.NewWorld(physics.Vec3{Y: -9.81})
	ground := newGround()
	massless := physics.NewBody(physics.BodyOptions{
		Position:    physics.Vec3{Y: 30},
		HalfExtents: physics.Vec3{X: 1, Y: 1, Z: 1},
	})
	assert.NilError(t, w.AddBody(ground))
	assert.NilError(t, w.AddBody(massless))

	w.Step(step)

	assert.Equal(t, ground.Position, physics.Vec3{})
	assert.Equal(t, massless.Position, physics.Vec3{Y: 30})
}

func TestStepIgnoresNonPositiveAndClampsLargeSteps(t *testing.T) {
	w := physics.NewWorld(physics.Vec3{Y: -10})
	box := newBox(0, 100, 0)
	assert.NilError(t, w.AddBody(box))

	w.Step(0)
	w.Step(-1)
	assert.Equal(t, box.Position.Y, 100.0)
	assert.Equal(t, w.Time(), 0.0)

	w.Step(5)
	assert.Assert(t, near(w.Time(), w.MaxStep))
}

func TestAddRemoveBody(t *testing.T) {
	w := physics.NewWorld(physics.Vec3{})
	other := physics.NewWorld(physics.Vec3{})
	box := newBox(0, 0, 0)

	assert.NilError(t, w.AddBody(box))
	assert.ErrorIs(t, w.AddBody(box), physics.ErrBodyInWorld)
	assert.ErrorIs(t, other.AddBody(box), physics.ErrBodyInWorld)
	assert.Assert(t, is.Len(w.Bodies(), 1))

	assert.ErrorIs(t, other.RemoveBody(box), physics.ErrBodyNotInWorld)
	assert.NilError(t, w.RemoveBody(box))
	assert.Assert(t, is.Len(w.Bodies(), 0))
	assert.NilError(t, other.AddBody(box))
}

func TestRotationStaysNormalized(t *testing.T) {
	w := physics.NewWorld(physics.Vec3{})
	box := newBox(0, 0, 0)
	box.AngularVelocity = physics.Vec3{X: 1, Y: 2, Z: 3}
	assert.NilError(t, w.AddBody(box))

	for range 100 {
		w.Step(step)
	}

	q := box.Quaternion
	assert.Assert(t, near(q.X*q.X+q.Y*q.Y+q.Z*q.Z+q.W*q.W, 1))
	assert.Assert(t, q != physics.Identity())
}

func TestQuaternionIntegrateAboutY(t *testing.T) {
	q := physics.Identity()
	for range 1000 {
		q = q.Integrate(physics.Vec3{Y: math.Pi / 2}, 0.001)
	}
	// a quarter turn about Y
	assert.Assert(t, math.Abs(q.Y-math.Sin(math.Pi/4)) < 1e-3, "q = %+v", q)
	assert.Assert(t, math.Abs(q.W-math.Cos(math.Pi/4)) < 1e-3, "q = %+v", q)
}
