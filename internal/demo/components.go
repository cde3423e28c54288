// Package demo drops boxes onto a ground plane. Bodies belong to the physics
// package and meshes to the scene package; the ECS only references them.
package demo

import (
	"image/color"

	"github.com/plus3/lattice/ecs"
	"github.com/plus3/lattice/internal/physics"
	"github.com/plus3/lattice/internal/scene"
)

var (
	vec3       = []ecs.Field{ecs.Number("x"), ecs.Number("y"), ecs.Number("z")}
	quaternion = []ecs.Field{ecs.Number("x"), ecs.Number("y"), ecs.Number("z"), ecs.Number("w")}

	BodySchema = ecs.DefineSchema("Body", ecs.Nested("position", vec3...), ecs.Nested("quaternion", quaternion...))
	MeshSchema = ecs.DefineSchema("Mesh", ecs.Nested("position", vec3...), ecs.Nested("quaternion", quaternion...))

	bodies = ecs.NewQuery(BodySchema, MeshSchema)
)

var (
	boxHalfExtents    = physics.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	groundHalfExtents = physics.Vec3{X: 10, Y: 0.5, Z: 10}

	BoxColor    = color.RGBA{R: 0xff, A: 0xff}
	GroundColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// CreateBox returns the components of a unit box: a physics body and the mesh
// that draws it.
func CreateBox(position physics.Vec3, typ physics.BodyType, c color.RGBA, mass float64) ([]ecs.Component, error) {
	body := physics.NewBody(physics.BodyOptions{
		Position:    position,
		HalfExtents: boxHalfExtents,
		Mass:        mass,
		Type:        typ,
	})
	mesh := scene.NewMesh(scene.Vec3{X: 1, Y: 1, Z: 1}, c)
	return wrap(body, mesh)
}

// CreateGround returns the components of the static 20x1x20 ground slab.
func CreateGround() ([]ecs.Component, error) {
	body := physics.NewBody(physics.BodyOptions{
		HalfExtents: groundHalfExtents,
		Type:        physics.Static,
	})
	mesh := scene.NewMesh(scene.Vec3{X: 20, Y: 1, Z: 20}, GroundColor)
	return wrap(body, mesh)
}

func wrap(body *physics.Body, mesh *scene.Mesh) ([]ecs.Component, error) {
	// the mesh starts where the body is
	mesh.Position = scene.Vec3(body.Position)

	b, err := ecs.WrapForeign(body, BodySchema)
	if err != nil {
		return nil, err
	}
	m, err := ecs.WrapForeign(mesh, MeshSchema)
	if err != nil {
		return nil, err
	}
	return []ecs.Component{b, m}, nil
}
