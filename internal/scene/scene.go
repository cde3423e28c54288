// Package scene holds renderable meshes and a camera. Meshes are plain
// structs owned by the scene's caller; the renderer reads their pose every
// frame.
package scene

import (
	"cmp"
	"image/color"
	"math"
	"slices"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

func (v Vec3) normalize() Vec3 {
	n := math.Sqrt(v.dot(v))
	if n == 0 {
		return v
	}
	return Vec3{v.X / n, v.Y / n, v.Z / n}
}

type Quaternion struct {
	X, Y, Z, W float64
}

// Mesh is a box of the given size.
type Mesh struct {
	Position   Vec3
	Quaternion Quaternion
	Size       Vec3
	Color      color.RGBA

	added bool
}

func NewMesh(size Vec3, c color.RGBA) *Mesh {
	return &Mesh{Quaternion: Quaternion{W: 1}, Size: size, Color: c}
}

// Camera is an orthographic camera looking at Target.
type Camera struct {
	Position Vec3
	Target   Vec3
	// Zoom is the number of pixels per world unit.
	Zoom float64
}

type Scene struct {
	Camera Camera

	meshes []*Mesh
}

func New() *Scene {
	return &Scene{Camera: Camera{Zoom: 8}}
}

// Add puts a mesh in the scene. Adding a mesh twice is a no-op.
func (s *Scene) Add(m *Mesh) {
	if m.added {
		return
	}
	m.added = true
	s.meshes = append(s.meshes, m)
}

func (s *Scene) Remove(m *Mesh) {
	if i := slices.Index(s.meshes, m); i >= 0 {
		s.meshes = slices.Delete(s.meshes, i, i+1)
		m.added = false
	}
}

func (s *Scene) Meshes() []*Mesh {
	return s.meshes
}

// Projected is a mesh mapped to screen space.
type Projected struct {
	Mesh          *Mesh
	X, Y          float64
	Width, Height float64
	Depth         float64
}

// Project maps every mesh onto a width x height screen, sorted back to front.
func (s *Scene) Project(width, height int) []Projected {
	c := s.Camera
	forward := c.Target.sub(c.Position).normalize()
	right := forward.cross(Vec3{Y: 1}).normalize()
	if right == (Vec3{}) {
		right = Vec3{X: 1}
	}
	up := right.cross(forward)

	out := make([]Projected, 0, len(s.meshes))
	for _, m := range s.meshes {
		rel := m.Position.sub(c.Position)
		w := m.Size.X * c.Zoom
		h := m.Size.Y * c.Zoom
		out = append(out, Projected{
			Mesh:   m,
			X:      float64(width)/2 + rel.dot(right)*c.Zoom - w/2,
			Y:      float64(height)/2 - rel.dot(up)*c.Zoom - h/2,
			Width:  w,
			Height: h,
			Depth:  rel.dot(forward),
		})
	}
	slices.SortStableFunc(out, func(a, b Projected) int {
		return cmp.Compare(b.Depth, a.Depth)
	})
	return out
}
