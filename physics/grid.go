package physics

import (
	"math"

	"github.com/TFMV/forcegraph/graph"
)

// GridBackend computes exact repulsion within the repel distance using the
// graph's x-sorted grid. Every pair closer than the repel distance is
// visited exactly once.
type GridBackend struct{}

// Name returns the backend name.
func (*GridBackend) Name() string { return BackendGrid }

// Build is a no-op: the grid is maintained incrementally by the graph.
func (*GridBackend) Build(*graph.Graph) {}

// Apply accumulates repulsion on every node.
//
// A node only pushes against nodes to its right (or directly below it at the
// same x) in its own column, one row up and down, and against the column to
// its right. The other half of each pair is handled from the other node.
func (*GridBackend) Apply(g *graph.Graph, alpha float64) {
	o := g.Options()
	cols := g.Cols()
	cells := g.CellCount()
	rd := o.RepelDistance

	for _, id := range g.Nodes() {
		a := g.Node(id)
		idx := g.CellIndex(a.Pos)

		dyMin, dyMax := 0, 0
		if idx >= cols {
			dyMin = -1
		}
		if idx < cells-cols {
			dyMax = 1
		}
		rightEdge := idx%cols == cols-1

		for dy := dyMin; dy <= dyMax; dy++ {
			c := idx + dy*cols

			cell := g.Cell(c)
			for i := len(cell) - 1; i >= 0; i-- {
				b := g.Node(cell[i])
				dx := a.Pos.X - b.Pos.X
				if dx > 0 {
					break
				}
				ddy := a.Pos.Y - b.Pos.Y
				if dx == 0 && ddy >= 0 {
					continue
				}
				pushApart(a, b, dx, ddy, rd, o.RepelStrength, alpha)
			}

			if rightEdge {
				continue
			}
			for _, bid := range g.Cell(c + 1) {
				b := g.Node(bid)
				dx := a.Pos.X - b.Pos.X
				if dx <= -rd {
					break
				}
				pushApart(a, b, dx, a.Pos.Y-b.Pos.Y, rd, o.RepelStrength, alpha)
			}
		}
	}
}

// pushApart applies the linear falloff repulsion between a and b, where
// (dx, dy) points from b to a. Coincident nodes exert no force.
func pushApart(a, b *graph.Node, dx, dy, rd, strength, alpha float64) {
	d := math.Sqrt(dx*dx + dy*dy)
	if d >= rd || d == 0 {
		return
	}
	f := strength * (1 - d/rd) * alpha
	mx, my := dx/d*f, dy/d*f

	a.Vel.X += mx / a.Mass * b.Mass
	a.Vel.Y += my / a.Mass * b.Mass
	b.Vel.X -= mx / b.Mass * a.Mass
	b.Vel.Y -= my / b.Mass * a.Mass
}
