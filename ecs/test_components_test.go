package ecs_test

import (
	"testing"

	"github.com/plus3/lattice/ecs"
	"github.com/stretchr/testify/require"
)

// Common test schemas
var (
	positionSchema = ecs.DefineSchema("Position", ecs.Number("x"), ecs.Number("y"))
	velocitySchema = ecs.DefineSchema("Velocity", ecs.Number("dx"), ecs.Number("dy"))
	healthSchema   = ecs.DefineSchema("Health", ecs.Number("current"), ecs.Number("max"))
	tagSchema      = ecs.DefineSchema("Tag", ecs.Number("value"))

	transformSchema = ecs.DefineSchema("Transform",
		ecs.Nested("position", ecs.Number("x"), ecs.Number("y"), ecs.Number("z")),
		ecs.Nested("rotation", ecs.Number("x"), ecs.Number("y"), ecs.Number("z"), ecs.Number("w")),
	)
)

// Go types satisfying the schemas above
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Health struct {
	Current int
	Max     int
}

type vec3 struct {
	X, Y, Z float64
}

type quat struct {
	X, Y, Z, W float64
}

// rigidBody stands in for an object owned by a third-party library.
type rigidBody struct {
	Pos  vec3  `ecs:"position"`
	Rot  *quat `ecs:"rotation"`
	Mass float64

	sleeping bool
}

func (b *rigidBody) Sleep() { b.sleeping = true }

func newRigidBody(x, y, z float64) *rigidBody {
	return &rigidBody{
		Pos:  vec3{X: x, Y: y, Z: z},
		Rot:  &quat{W: 1},
		Mass: 1,
	}
}

func wrapBody(t testing.TB, b *rigidBody) ecs.Component {
	t.Helper()
	c, err := ecs.WrapForeign(b, transformSchema)
	require.NoError(t, err)
	return c
}

func pos(x, y float32) ecs.Component {
	return positionSchema.Of(Position{X: x, Y: y})
}

func vel(dx, dy float32) ecs.Component {
	return velocitySchema.Of(Velocity{DX: dx, DY: dy})
}

func health(current, maximum int) ecs.Component {
	return healthSchema.Of(Health{Current: current, Max: maximum})
}
