package geo

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rect is an axis-aligned world boundary, e.g. the ocean or the quadtree root.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// IntersectsCircle reports whether a circle centred at c with radius rad
// overlaps this rect, expanded by rad on every side.
func (r Rect) IntersectsCircle(c Vec2, rad float64) bool {
	return c.X+rad >= r.X && c.X-rad <= r.X+r.W &&
		c.Y+rad >= r.Y && c.Y-rad <= r.Y+r.H
}

// Circle is a bounding circle used for food, powerups, and a fish's mouth.
type Circle struct {
	Center Vec2
	Radius float64
}

// OBB is an oriented bounding box used for a fish's body.
type OBB struct {
	Center      Vec2
	HalfExtents Vec2 // half-width, half-height before rotation
	Rotation    float64
}

// CircleCircleOverlap reports whether two circles overlap: distance² < (r1+r2)².
func CircleCircleOverlap(a, b Circle) bool {
	rs := a.Radius + b.Radius
	return DistanceSquared(a.Center, b.Center) < rs*rs
}

// rotate rotates v by angle radians using an explicit 2x2 rotation matrix
// rather than hand-rolled trig composition.
func rotate(v Vec2, angle float64) Vec2 {
	cos, sin := math.Cos(angle), math.Sin(angle)
	rot := mat.NewDense(2, 2, []float64{cos, -sin, sin, cos})
	in := mat.NewVecDense(2, []float64{v.X, v.Y})
	var out mat.VecDense
	out.MulVec(rot, in)
	return Vec2{X: out.AtVec(0), Y: out.AtVec(1)}
}

// CircleOBBOverlap transforms the circle centre into the OBB's local space
// by rotating by -theta, clamps to the half-extents, and re-measures the
// distance against the radius.
func CircleOBBOverlap(c Circle, b OBB) bool {
	local := rotate(c.Center.Sub(b.Center), -b.Rotation)
	clamped := Vec2{
		X: Clamp(local.X, -b.HalfExtents.X, b.HalfExtents.X),
		Y: Clamp(local.Y, -b.HalfExtents.Y, b.HalfExtents.Y),
	}
	d := local.Sub(clamped)
	return d.X*d.X+d.Y*d.Y < c.Radius*c.Radius
}

// OBBOBBOverlap is a deliberately simplified predicate: it treats the pair
// as circles of radius (w1+w2)/2 around their centres rather than running
// full separating-axis tests. Returns whether they collide and the unit
// separation vector pointing from a towards b (the direction b should be
// pushed to separate).
func OBBOBBOverlap(a, b OBB) (bool, Vec2) {
	combined := (a.HalfExtents.X + b.HalfExtents.X)
	d := b.Center.Sub(a.Center)
	dist := d.Length()
	if dist < 1e-9 {
		return combined > 0, Vec2{X: 1, Y: 0}
	}
	sep := d.Normalize()
	return dist < combined, sep
}
