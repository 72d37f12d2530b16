package geom

// Rect is an axis aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Pos returns the top left corner.
func (r Rect) Pos() Vec { return Vec{r.X, r.Y} }

// Size returns the width and height as a vector.
func (r Rect) Size() Vec { return Vec{r.W, r.H} }

// Center returns the center of the rectangle.
func (r Rect) Center() Vec { return Vec{r.X + r.W/2, r.Y + r.H/2} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Relative converts p to a position relative to r, where (0,0) is the top
// left corner and (1,1) the bottom right.
func (r Rect) Relative(p Vec) Vec {
	return Vec{(p.X - r.X) / r.W, (p.Y - r.Y) / r.H}
}

// Edges returns the four sides in N, E, S, W order.
func (r Rect) Edges() [4][2]Vec {
	nw, ne := Vec{r.X, r.Y}, Vec{r.X + r.W, r.Y}
	se, sw := Vec{r.X + r.W, r.Y + r.H}, Vec{r.X, r.Y + r.H}
	return [4][2]Vec{{nw, ne}, {ne, se}, {se, sw}, {sw, nw}}
}
