package ecs_test

import (
	"testing"

	"github.com/plus3/lattice/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineSchema(t *testing.T) {
	first := ecs.DefineSchema("Point", ecs.Number("x"), ecs.Number("y"))
	second := ecs.DefineSchema("Point", ecs.Number("x"), ecs.Number("y"))

	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, "Point", first.Name())
	assert.Len(t, first.Fields(), 2)
	assert.True(t, first.Fields()[0].IsNumber())
}

func TestSchemaPaths(t *testing.T) {
	assert.Equal(t, []string{
		"position.x", "position.y", "position.z",
		"rotation.x", "rotation.y", "rotation.z", "rotation.w",
	}, transformSchema.Paths())

	assert.Equal(t, []string{"x", "y"}, positionSchema.Paths())
}

func TestSchemaZero(t *testing.T) {
	zero := transformSchema.Zero()

	assert.Equal(t, ecs.Record{
		"position": ecs.Record{"x": 0.0, "y": 0.0, "z": 0.0},
		"rotation": ecs.Record{"x": 0.0, "y": 0.0, "z": 0.0, "w": 0.0},
	}, zero)

	store := ecs.NewStore(nil)
	_, err := store.Create(transformSchema.Of(zero))
	assert.NoError(t, err)
}

func TestDefineSchemaPanicsOnBadFields(t *testing.T) {
	assert.Panics(t, func() {
		ecs.DefineSchema("Empty", ecs.Number(""))
	})
	assert.Panics(t, func() {
		ecs.DefineSchema("Twice", ecs.Number("x"), ecs.Number("x"))
	})
	assert.Panics(t, func() {
		ecs.DefineSchema("Dotted", ecs.Number("a.b"))
	})
	assert.Panics(t, func() {
		ecs.DefineSchema("NestedTwice", ecs.Nested("inner", ecs.Number("x"), ecs.Number("x")))
	})
	assert.Panics(t, func() {
		ecs.Nested("leaf")
	})
}

func TestWrapForeign(t *testing.T) {
	body := newRigidBody(1, 2, 3)

	c, err := ecs.WrapForeign(body, transformSchema)
	require.NoError(t, err)
	assert.True(t, c.Foreign())
	assert.Same(t, transformSchema, c.Schema())
	assert.Same(t, body, c.Data())
}

func TestWrapForeignRejectsInvalidObjects(t *testing.T) {
	type missingRotation struct {
		Position vec3
	}
	type scalarPosition struct {
		Position float64
		Rotation quat
	}

	tests := []struct {
		name string
		obj  any
	}{
		{"nil", nil},
		{"nil pointer", (*rigidBody)(nil)},
		{"struct value", *newRigidBody(0, 0, 0)},
		{"pointer to scalar", new(float64)},
		{"missing field", &missingRotation{}},
		{"leaf where record expected", &scalarPosition{}},
		{"nil nested record", &rigidBody{Pos: vec3{}, Rot: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ecs.WrapForeign(tt.obj, transformSchema)
			assert.ErrorIs(t, err, ecs.ErrSchemaMismatch)
		})
	}
}

func TestFieldLookup(t *testing.T) {
	schema := ecs.DefineSchema("Lookup", ecs.Number("speed"), ecs.Number("Heading"), ecs.Number("range"))

	type target struct {
		Velocity float32 `ecs:"speed"`
		Heading  int
		RANGE    uint16
	}

	obj := &target{Velocity: 2, Heading: 90, RANGE: 7}
	_, err := ecs.WrapForeign(obj, schema)
	require.NoError(t, err)

	speed, err := schema.Number(obj, "speed")
	require.NoError(t, err)
	assert.Equal(t, float64(2), speed)

	heading, err := schema.Number(obj, "Heading")
	require.NoError(t, err)
	assert.Equal(t, float64(90), heading)

	require.NoError(t, schema.SetNumber(obj, "range", 12))
	assert.Equal(t, uint16(12), obj.RANGE)
}

func TestUnexportedFieldsDoNotSatisfySchema(t *testing.T) {
	schema := ecs.DefineSchema("Hidden", ecs.Number("x"))

	type hidden struct {
		x float64
	}

	_, err := ecs.WrapForeign(&hidden{x: 1}, schema)
	assert.ErrorIs(t, err, ecs.ErrSchemaMismatch)
}

func TestNumberAccessors(t *testing.T) {
	t.Run("record", func(t *testing.T) {
		data := transformSchema.Zero()

		require.NoError(t, transformSchema.SetNumber(data, "rotation.w", 1))
		w, err := transformSchema.Number(data, "rotation.w")
		require.NoError(t, err)
		assert.Equal(t, float64(1), w)

		_, err = transformSchema.Number(data, "rotation.v")
		assert.ErrorIs(t, err, ecs.ErrSchemaMismatch)
		assert.ErrorIs(t, transformSchema.SetNumber(data, "scale.x", 1), ecs.ErrSchemaMismatch)
	})

	t.Run("struct", func(t *testing.T) {
		h := &Health{Current: 10, Max: 20}

		current, err := healthSchema.Number(h, "current")
		require.NoError(t, err)
		assert.Equal(t, float64(10), current)

		require.NoError(t, healthSchema.SetNumber(h, "max", 25))
		assert.Equal(t, 25, h.Max)

		_, err = healthSchema.Number(h, "armor")
		assert.ErrorIs(t, err, ecs.ErrSchemaMismatch)
	})

	t.Run("struct value is read only", func(t *testing.T) {
		h := Health{Current: 10, Max: 20}

		current, err := healthSchema.Number(h, "current")
		require.NoError(t, err)
		assert.Equal(t, float64(10), current)

		assert.ErrorIs(t, healthSchema.SetNumber(h, "current", 1), ecs.ErrSchemaMismatch)
	})
}

func TestCopyNumbers(t *testing.T) {
	body := newRigidBody(1, 2, 3)
	body.Rot = &quat{X: 0.5, W: 0.5}

	mirror := transformSchema.Zero()
	require.NoError(t, transformSchema.CopyNumbers(mirror, body))

	for _, path := range transformSchema.Paths() {
		want, err := transformSchema.Number(body, path)
		require.NoError(t, err)
		got, err := transformSchema.Number(mirror, path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}

	other := newRigidBody(0, 0, 0)
	require.NoError(t, transformSchema.CopyNumbers(other, mirror))
	assert.Equal(t, body.Pos, other.Pos)
	assert.Equal(t, *body.Rot, *other.Rot)
}

func TestAs(t *testing.T) {
	var data any = &Position{X: 1}

	p, err := ecs.As[*Position](data)
	require.NoError(t, err)
	assert.Equal(t, float32(1), p.X)

	_, err = ecs.As[*Velocity](data)
	assert.ErrorIs(t, err, ecs.ErrTypeAssertion)
}
