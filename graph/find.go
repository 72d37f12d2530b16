package graph

import (
	"math"

	"github.com/TFMV/forcegraph/geom"
)

// FindClosestNodeLinear returns the node nearest to pos that is strictly
// closer than maxDist, checking every node. Ties go to the earliest node.
func (g *Graph) FindClosestNodeLinear(pos geom.Vec, maxDist float64) (NodeID, bool) {
	closest, found := NoNode, false
	for _, id := range g.order {
		d := geom.Distance(pos, g.slots[id.index].node.Pos)
		if d < maxDist {
			maxDist, closest, found = d, id, true
		}
	}
	return closest, found
}

// FindClosestNode is the grid accelerated FindClosestNodeLinear. maxDist is
// capped at the repel distance. Positions outside [0, GridSize] never match.
//
// For maxDist up to half the repel distance only the containing cell and the
// three neighbours on the side of pos's sub-cell quadrant are scanned; larger
// radii scan the full 3x3 block.
func (g *Graph) FindClosestNode(pos geom.Vec, maxDist float64) (NodeID, bool) {
	gs := g.opts.GridSize
	if !(pos.X >= 0 && pos.X <= gs && pos.Y >= 0 && pos.Y <= gs) {
		return NoNode, false
	}
	rd := g.opts.RepelDistance
	maxDist = math.Min(maxDist, rd)

	p := g.clamp(pos)
	xi := cellCoord(p.X, rd, g.cols)
	yi := cellCoord(p.Y, rd, g.cols)

	var xs, ys []int
	if maxDist > rd/2 {
		xs, ys = []int{-1, 0, 1}, []int{-1, 0, 1}
	} else {
		xs = []int{0, side(p.X, rd)}
		ys = []int{0, side(p.Y, rd)}
	}

	closest, found := NoNode, false
	for _, dy := range ys {
		row := yi + dy
		if row < 0 || row >= g.cols {
			continue
		}
		for _, dx := range xs {
			col := xi + dx
			if col < 0 || col >= g.cols {
				continue
			}
			cell := g.cells[col+row*g.cols]
			if dx < 0 {
				// left neighbour: walk from the right end towards pos
				for i := len(cell) - 1; i >= 0; i-- {
					n := &g.slots[cell[i].index].node
					if pos.X-n.Pos.X > maxDist {
						break
					}
					if d := geom.Distance(pos, n.Pos); d < maxDist {
						maxDist, closest, found = d, cell[i], true
					}
				}
				continue
			}
			for _, id := range cell {
				n := &g.slots[id.index].node
				if pos.X-n.Pos.X > maxDist {
					continue
				}
				if n.Pos.X-pos.X > maxDist {
					break
				}
				if d := geom.Distance(pos, n.Pos); d < maxDist {
					maxDist, closest, found = d, id, true
				}
			}
		}
	}
	return closest, found
}

// side returns -1 when v lies in the lower half of its cell and 1 otherwise.
func side(v, cellSize float64) int {
	return int(math.Floor(geom.Remainder(v/cellSize, 1)+0.5))*2 - 1
}
