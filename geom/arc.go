package geom

import "math"

// Circle is a circle with center C and radius R.
type Circle struct {
	C Vec
	R float64
}

// Arc is the part of a circle between Start and End, measured clockwise in
// screen space (y down) in radians.
type Arc struct {
	Circle
	Start float64
	End   float64
}

// Circumference returns the circumference of a circle of the given radius.
func Circumference(radius float64) float64 {
	return Tau * radius
}

// NormalizeAngle maps angle into [0, Tau).
func NormalizeAngle(angle float64) float64 {
	return Remainder(angle, Tau)
}

// AngleInRange reports whether angle lies on the arc going from start to end.
// Ranges that wrap past zero are supported.
func AngleInRange(angle, start, end float64) bool {
	angle = NormalizeAngle(angle)
	start = NormalizeAngle(start)
	end = NormalizeAngle(end)
	if start < end {
		return start <= angle && angle <= end
	}
	return start <= angle || angle <= end
}

// SegmentsIntersecting reports whether segment p1-p2 properly crosses p3-p4.
// Touching or collinear segments do not count.
func SegmentsIntersecting(p1, p2, p3, p4 Vec) bool {
	d1 := Cross(p1.Sub(p3), p4.Sub(p3))
	d2 := Cross(p2.Sub(p3), p4.Sub(p3))
	d3 := Cross(p3.Sub(p1), p2.Sub(p1))
	d4 := Cross(p4.Sub(p1), p2.Sub(p1))
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// segmentParams returns the parameters along start-end where the segment's
// line meets the circle, or ok=false when it misses.
func segmentParams(c Circle, start, end Vec) (u1, u2 float64, ok bool) {
	v1 := end.Sub(start)
	v2 := start.Sub(c.C)
	b := -2 * (v1.X*v2.X + v1.Y*v2.Y)
	cc := 2 * v1.LenSq()
	if cc == 0 {
		return 0, 0, false
	}
	disc := b*b - 2*cc*(v2.LenSq()-c.R*c.R)
	if disc < 0 {
		return 0, 0, false
	}
	d := math.Sqrt(disc)
	return (b - d) / cc, (b + d) / cc, true
}

// CircleSegmentIntersections returns zero, one or two points where the
// segment start-end crosses the circle, nearest to start first.
func CircleSegmentIntersections(c Circle, start, end Vec) []Vec {
	u1, u2, ok := segmentParams(c, start, end)
	if !ok {
		return nil
	}
	v := end.Sub(start)
	var points []Vec
	if u1 >= 0 && u1 <= 1 {
		points = append(points, start.Add(v.Scale(u1)))
	}
	if u2 >= 0 && u2 <= 1 && u2 != u1 {
		points = append(points, start.Add(v.Scale(u2)))
	}
	return points
}

// ArcSegmentIntersection returns the first point where the segment crosses
// the arc.
func ArcSegmentIntersection(a Arc, start, end Vec) (Vec, bool) {
	for _, p := range CircleSegmentIntersections(a.Circle, start, end) {
		if AngleInRange(Angle(a.C, p), a.Start, a.End) {
			return p, true
		}
	}
	return Vec{}, false
}

// CircleCircleIntersections returns the two points where a and b cross.
// ok is false when the circles are apart, nested or concentric.
func CircleCircleIntersections(a, b Circle) (p1, p2 Vec, ok bool) {
	delta := b.C.Sub(a.C)
	d := delta.Len()
	if d == 0 || d > a.R+b.R || d < math.Abs(a.R-b.R) {
		return Vec{}, Vec{}, false
	}
	// distance from a.C to the chord through both intersections
	c := (a.R*a.R - b.R*b.R + d*d) / (2 * d)
	mid := a.C.Add(delta.Scale(c / d))
	h := math.Sqrt(math.Max(0, a.R*a.R-c*c))
	off := Vec{-delta.Y * (h / d), delta.X * (h / d)}
	return mid.Add(off), mid.Sub(off), true
}

// ArcArcIntersection returns a point lying on both arcs.
func ArcArcIntersection(a, b Arc) (Vec, bool) {
	p1, p2, ok := CircleCircleIntersections(a.Circle, b.Circle)
	if !ok {
		return Vec{}, false
	}
	for _, p := range [2]Vec{p1, p2} {
		if AngleInRange(Angle(a.C, p), a.Start, a.End) && AngleInRange(Angle(b.C, p), b.Start, b.End) {
			return p, true
		}
	}
	return Vec{}, false
}

// ArcRectIntersection returns the first point where the arc crosses the
// outline of r, testing sides in N, E, S, W order.
func ArcRectIntersection(a Arc, r Rect) (Vec, bool) {
	for _, e := range r.Edges() {
		if p, ok := ArcSegmentIntersection(a, e[0], e[1]); ok {
			return p, true
		}
	}
	return Vec{}, false
}

// ArcBetween returns an arc passing through a and b whose center sits dist
// away from the midpoint of a-b. A zero dist yields the half circle with a-b as
// its diameter; a negative dist bends the other way.
func ArcBetween(a, b Vec, dist float64) Arc {
	if dist == 0 {
		start := Angle(a, b)
		return Arc{
			Circle: Circle{C: LerpVec(a, b, 0.5), R: Distance(a, b) / 2},
			Start:  start,
			End:    start + math.Pi,
		}
	}
	if dist < 0 {
		a, b = b, a
		dist = -dist
	}
	l := Distance(a, b)
	angle := Angle(a, b)
	center := LerpVec(a, b, 0.5).Moved(angle-math.Pi/2, dist)
	r := Distance(a, center)
	sweep := math.Asin(l / (2 * r))
	return Arc{
		Circle: Circle{C: center, R: r},
		Start:  angle + math.Pi/2 - sweep,
		End:    angle + math.Pi/2 + sweep,
	}
}
