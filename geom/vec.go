// Package geom provides the 2D vector, rectangle and arc primitives shared by
// the simulation, the camera and the renderers.
package geom

import "math"

// Vec is a 2D vector. It is used for positions, velocities and offsets alike.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns v+o.
func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

// Sub returns v-o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

// Mul returns the component-wise product of v and o.
func (v Vec) Mul(o Vec) Vec {
	return Vec{v.X * o.X, v.Y * o.Y}
}

// Div returns the component-wise quotient of v and o.
func (v Vec) Div(o Vec) Vec {
	return Vec{v.X / o.X, v.Y / o.Y}
}

// Scale returns v multiplied by s.
func (v Vec) Scale(s float64) Vec {
	return Vec{v.X * s, v.Y * s}
}

// AddScalar adds s to both components.
func (v Vec) AddScalar(s float64) Vec {
	return Vec{v.X + s, v.Y + s}
}

// Neg returns -v.
func (v Vec) Neg() Vec {
	return Vec{-v.X, -v.Y}
}

// Len returns the euclidean length of v.
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// LenSq returns the squared length of v.
func (v Vec) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns v scaled to unit length. The zero vector stays zero.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// Moved returns v moved by dist in the direction of angle (radians).
func (v Vec) Moved(angle, dist float64) Vec {
	return Vec{v.X + math.Cos(angle)*dist, v.Y + math.Sin(angle)*dist}
}

// IsNaN reports whether either component is NaN.
func (v Vec) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y)
}

// Distance returns the distance between a and b.
func Distance(a, b Vec) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Angle returns the angle of the vector pointing from a to b.
func Angle(a, b Vec) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// Cross returns the z component of the cross product of a and b.
func Cross(a, b Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

// LerpVec interpolates between a and b.
func LerpVec(a, b Vec, t float64) Vec {
	return Vec{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

// ExpDecayVec is ExpDecay applied per component.
func ExpDecayVec(a, b Vec, decay, dt float64) Vec {
	return Vec{ExpDecay(a.X, b.X, decay, dt), ExpDecay(a.Y, b.Y, decay, dt)}
}

// ClampVec clamps both components of v to [lo, hi]. NaN components become lo.
func ClampVec(v Vec, lo, hi float64) Vec {
	return Vec{clampFinite(v.X, lo, hi), clampFinite(v.Y, lo, hi)}
}

func clampFinite(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return Clamp(v, lo, hi)
}
