package physics

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Quaternion is a rotation stored as (X, Y, Z, W).
type Quaternion struct {
	X, Y, Z, W float64
}

func Identity() Quaternion {
	return Quaternion{W: 1}
}

func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n == 0 {
		return Identity()
	}
	return Quaternion{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

// Integrate advances q by the angular velocity w (radians per second) over dt.
func (q Quaternion) Integrate(w Vec3, dt float64) Quaternion {
	h := dt / 2
	return Quaternion{
		X: q.X + h*(w.X*q.W+w.Y*q.Z-w.Z*q.Y),
		Y: q.Y + h*(w.Y*q.W+w.Z*q.X-w.X*q.Z),
		Z: q.Z + h*(w.Z*q.W+w.X*q.Y-w.Y*q.X),
		W: q.W - h*(w.X*q.X+w.Y*q.Y+w.Z*q.Z),
	}.Normalize()
}
