package graph

import (
	"fmt"

	"github.com/TFMV/forcegraph/geom"
)

// CellIndex maps an in-bounds position to the index of its grid cell.
func (g *Graph) CellIndex(pos geom.Vec) int {
	return cellIndex(g.opts.RepelDistance, g.cols, pos)
}

// cellOf is CellIndex for positions that may sit on the upper bound.
func (g *Graph) cellOf(pos geom.Vec) int {
	return g.CellIndex(g.clamp(pos))
}

// CellCount returns cols*cols.
func (g *Graph) CellCount() int { return len(g.cells) }

// Cell returns the nodes of cell i sorted by ascending x. The slice is owned
// by the graph.
func (g *Graph) Cell(i int) []NodeID { return g.cells[i] }

// insert places id into its cell, keeping the cell sorted by x.
func (g *Graph) insert(id NodeID, n *Node) {
	idx := g.CellIndex(n.Pos)
	cell := g.cells[idx]

	i := 0
	for i < len(cell) && g.slots[cell[i].index].node.Pos.X < n.Pos.X {
		i++
	}
	cell = append(cell, NoNode)
	copy(cell[i+1:], cell[i:])
	cell[i] = id
	g.cells[idx] = cell
}

// SetPosition moves a node to pos, clamped into bounds, marks it moved and
// restores the grid invariant. Stale handles are ignored.
func (g *Graph) SetPosition(id NodeID, pos geom.Vec) bool {
	n := g.Node(id)
	if n == nil {
		return false
	}

	prevIdx := g.CellIndex(n.Pos)
	prevX := n.Pos.X

	n.Pos = g.clamp(pos)
	n.Moved = true

	idx := g.CellIndex(n.Pos)
	cell := g.cells[prevIdx]
	i := indexOf(cell, id)

	if idx != prevIdx {
		g.cells[prevIdx] = append(cell[:i], cell[i+1:]...)
		g.insert(id, n)
		return true
	}

	// same cell: only x changed, bubble the node back into order
	x := n.Pos.X
	switch {
	case x < prevX:
		for i > 0 && g.x(cell[i-1]) > x {
			cell[i-1], cell[i] = cell[i], cell[i-1]
			i--
		}
	case x > prevX:
		for i < len(cell)-1 && g.x(cell[i+1]) < x {
			cell[i+1], cell[i] = cell[i], cell[i+1]
			i++
		}
	}
	return true
}

func (g *Graph) x(id NodeID) float64 {
	return g.slots[id.index].node.Pos.X
}

func indexOf(ids []NodeID, id NodeID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// CheckInvariant verifies that every cell is sorted by x and that every node
// sits in the cell its position maps to.
func (g *Graph) CheckInvariant() error {
	seen := 0
	for idx, cell := range g.cells {
		for i, id := range cell {
			n := g.Node(id)
			if n == nil {
				return fmt.Errorf("cell %d: %v: %w", idx, id, ErrStaleNode)
			}
			if want := g.CellIndex(n.Pos); want != idx {
				return fmt.Errorf("cell %d: %v at (%g, %g) belongs in cell %d", idx, id, n.Pos.X, n.Pos.Y, want)
			}
			if i > 0 && g.x(cell[i-1]) > n.Pos.X {
				return fmt.Errorf("cell %d: not sorted at slot %d", idx, i)
			}
			seen++
		}
	}
	if seen != len(g.order) {
		return fmt.Errorf("grid holds %d nodes, graph has %d", seen, len(g.order))
	}
	return nil
}
