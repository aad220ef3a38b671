// Package geo implements the 2D vector and shape primitives used by the
// ocean simulator and its quadtree: points, oriented rectangles, circles,
// and the overlap predicates the collision passes rely on.
package geo

import "math"

// Vec2 is a 2D vector or point.
type Vec2 struct {
	X float64
	Y float64
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

func Distance(a, b Vec2) float64 {
	return a.Sub(b).Length()
}

func DistanceSquared(a, b Vec2) float64 {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func LerpVec2(a, b Vec2, t float64) Vec2 {
	return Vec2{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
