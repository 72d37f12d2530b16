package physics

import (
	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
)

// Barnes-Hut defaults.
const (
	DefaultTheta    = 0.6
	DefaultEpsilon  = 0.1
	DefaultMaxDepth = 24
)

// quad is one square of the tree. Children are stored as four consecutive
// entries of QuadTree.quads in NW, NE, SW, SE order.
type quad struct {
	x, y, size float64
	mass       float64
	// weighted is the sum of mass*position over the subtree
	weighted geom.Vec
	count    int
	children int32
	node     graph.NodeID
	// bucket holds extra occupants of a leaf at MaxDepth, where coincident
	// nodes would otherwise split forever
	bucket []graph.NodeID
}

// QuadTree is a Barnes-Hut repulsion backend. The tree is rebuilt from
// scratch every tick; its storage is reused between ticks.
type QuadTree struct {
	// Theta is the size/distance ratio below which a region is treated as a
	// single point mass.
	Theta float64
	// Epsilon is added to every distance to avoid the singularity at zero.
	Epsilon  float64
	MaxDepth int

	quads []quad
	g     *graph.Graph
}

// NewQuadTree returns a quadtree backend with the default parameters.
func NewQuadTree() *QuadTree {
	return &QuadTree{Theta: DefaultTheta, Epsilon: DefaultEpsilon, MaxDepth: DefaultMaxDepth}
}

// Name returns the backend name.
func (*QuadTree) Name() string { return BackendQuadTree }

// Build indexes the current node positions.
func (t *QuadTree) Build(g *graph.Graph) {
	t.g = g
	t.quads = t.quads[:0]
	t.quads = append(t.quads, quad{size: g.Options().GridSize, children: -1, node: graph.NoNode})

	for _, id := range g.Nodes() {
		n := g.Node(id)
		t.insert(0, id, n.Pos, n.Mass, 0)
	}
}

func (t *QuadTree) insert(qi int32, id graph.NodeID, pos geom.Vec, mass float64, depth int) {
	q := &t.quads[qi]
	q.mass += mass
	q.weighted = q.weighted.Add(pos.Scale(mass))
	q.count++

	if q.children < 0 {
		switch {
		case q.count == 1:
			q.node = id
			return
		case depth >= t.MaxDepth:
			q.bucket = append(q.bucket, id)
			return
		}
		evicted := q.node
		q.node = graph.NoNode
		t.split(qi)
		e := t.g.Node(evicted)
		t.insert(t.childFor(qi, e.Pos), evicted, e.Pos, e.Mass, depth+1)
	}
	t.insert(t.childFor(qi, pos), id, pos, mass, depth+1)
}

func (t *QuadTree) split(qi int32) {
	q := t.quads[qi]
	half := q.size / 2
	first := int32(len(t.quads))
	for i := 0; i < 4; i++ {
		t.quads = append(t.quads, quad{
			x:        q.x + float64(i%2)*half,
			y:        q.y + float64(i/2)*half,
			size:     half,
			children: -1,
			node:     graph.NoNode,
		})
	}
	t.quads[qi].children = first
}

// childFor picks the child square for pos. Ties on the midlines go west
// and north.
func (t *QuadTree) childFor(qi int32, pos geom.Vec) int32 {
	q := &t.quads[qi]
	half := q.size / 2
	c := q.children
	if pos.X > q.x+half {
		c++
	}
	if pos.Y > q.y+half {
		c += 2
	}
	return c
}

// Apply adds the approximate repulsion to every node.
func (t *QuadTree) Apply(g *graph.Graph, alpha float64) {
	for _, id := range g.Nodes() {
		n := g.Node(id)
		n.Vel = n.Vel.Add(t.Force(g, id, alpha))
	}
}

// Force returns the velocity delta the tree exerts on node id. Build must
// have been called with the same graph state.
func (t *QuadTree) Force(g *graph.Graph, id graph.NodeID, alpha float64) geom.Vec {
	n := g.Node(id)
	if n == nil || len(t.quads) == 0 {
		return geom.Vec{}
	}
	var acc geom.Vec
	t.force(0, id, n, g.Options().RepelStrength*alpha, &acc)
	return acc
}

func (t *QuadTree) force(qi int32, id graph.NodeID, n *graph.Node, strength float64, acc *geom.Vec) {
	q := &t.quads[qi]
	if q.count == 0 {
		return
	}

	if q.children < 0 {
		t.pointForce(n, q.node, id, strength, acc)
		for _, other := range q.bucket {
			t.pointForce(n, other, id, strength, acc)
		}
		return
	}

	center := q.weighted.Scale(1 / q.mass)
	dist := geom.Distance(n.Pos, center) + t.Epsilon
	// regions holding the node itself are always opened
	inside := n.Pos.X >= q.x && n.Pos.X <= q.x+q.size && n.Pos.Y >= q.y && n.Pos.Y <= q.y+q.size
	if !inside && q.size/dist < t.Theta {
		*acc = acc.Add(repulse(n.Pos, center, n.Mass, q.mass, dist, strength))
		return
	}
	for c := q.children; c < q.children+4; c++ {
		t.force(c, id, n, strength, acc)
	}
}

func (t *QuadTree) pointForce(n *graph.Node, other, self graph.NodeID, strength float64, acc *geom.Vec) {
	if other == self || !other.Valid() {
		return
	}
	o := t.g.Node(other)
	dist := geom.Distance(n.Pos, o.Pos) + t.Epsilon
	*acc = acc.Add(repulse(n.Pos, o.Pos, n.Mass, o.Mass, dist, strength))
}

// repulse is the inverse square push on a node at pos from a mass at from.
func repulse(pos, from geom.Vec, m1, m2, dist, strength float64) geom.Vec {
	if dist <= 0 {
		return geom.Vec{}
	}
	f := strength * m1 * m2 / (dist * dist)
	return from.Sub(pos).Scale(-f / dist / m1)
}
