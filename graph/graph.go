// Package graph holds the simulated nodes and edges together with the
// uniform grid index that keeps repulsion and hit testing sub-quadratic.
package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/TFMV/forcegraph/geom"
)

// ErrStaleNode is returned when a handle refers to a removed node.
var ErrStaleNode = errors.New("stale node handle")

// NodeID is a handle into the node arena. A handle stays valid until the
// node it points to is removed or the graph is cleared; after that every
// lookup through it fails instead of reaching a different node.
type NodeID struct {
	index int32
	gen   uint32
}

// NoNode is the zero-value "no node" handle.
var NoNode = NodeID{index: -1}

// Valid reports whether id was ever issued. It does not check liveness,
// use Graph.Has for that.
func (id NodeID) Valid() bool {
	return id.index >= 0
}

// Slot returns the arena slot of id. Slots are dense and reused after
// removal, so renderers may use them to index per-node side tables.
func (id NodeID) Slot() int {
	return int(id.index)
}

func (id NodeID) String() string {
	if !id.Valid() {
		return "node(none)"
	}
	return fmt.Sprintf("node(%d/%d)", id.index, id.gen)
}

// Node is a simulated point mass.
//
// Pos must only be changed through Graph.SetPosition, which keeps the grid
// index in sync. Vel, Mass and Anchor may be written directly.
type Node struct {
	Key    any
	Label  string
	Pos    geom.Vec
	Vel    geom.Vec
	Mass   float64
	Anchor bool
	// Moved is set on every committed move and never cleared by the graph.
	Moved bool
}

// Edge is a spring between two nodes. Strength scales the link force.
type Edge struct {
	A        NodeID
	B        NodeID
	Strength float64
}

type slot struct {
	node Node
	gen  uint32
	live bool
}

// Graph owns nodes, edges and the grid index built over node positions.
// It is not safe for concurrent use; one goroutine drives the simulation.
type Graph struct {
	opts   Options
	cols   int
	maxPos float64

	slots []slot
	free  []int32
	order []NodeID
	edges []Edge

	// cells[i] holds the nodes of cell i sorted by ascending x.
	cells [][]NodeID
}

// New creates an empty graph. The options are not validated; see the config
// package for that.
func New(opts Options) *Graph {
	cols := opts.Cols()
	return &Graph{
		opts:   opts,
		cols:   cols,
		maxPos: geom.OpenUpperBound(opts.GridSize),
		cells:  make([][]NodeID, cols*cols),
	}
}

// Options returns the graph's options.
func (g *Graph) Options() Options { return g.opts }

// Cols returns the number of grid cells per axis.
func (g *Graph) Cols() int { return g.cols }

// MaxPos returns the largest coordinate a node may have.
func (g *Graph) MaxPos() float64 { return g.maxPos }

// Len returns the number of live nodes.
func (g *Graph) Len() int { return len(g.order) }

// Nodes returns the live nodes in insertion order. The slice is owned by the
// graph and must not be modified or retained across mutations.
func (g *Graph) Nodes() []NodeID { return g.order }

// Edges returns all edges. The slice is owned by the graph.
func (g *Graph) Edges() []Edge { return g.edges }

// Has reports whether id refers to a live node.
func (g *Graph) Has(id NodeID) bool {
	return g.Node(id) != nil
}

// Node resolves a handle. It returns nil for stale or invalid handles. The
// pointer is only valid until the next AddNode.
func (g *Graph) Node(id NodeID) *Node {
	if id.index < 0 || int(id.index) >= len(g.slots) {
		return nil
	}
	s := &g.slots[id.index]
	if !s.live || s.gen != id.gen {
		return nil
	}
	return &s.node
}

// AddNode inserts n and returns its handle. The position is clamped into the
// simulation bounds and a mass below 1 is raised to 1.
func (g *Graph) AddNode(n Node) NodeID {
	n.Pos = g.clamp(n.Pos)
	if !(n.Mass >= 1) {
		n.Mass = 1
	}

	var id NodeID
	if k := len(g.free); k > 0 {
		idx := g.free[k-1]
		g.free = g.free[:k-1]
		s := &g.slots[idx]
		s.node, s.live = n, true
		id = NodeID{index: idx, gen: s.gen}
	} else {
		g.slots = append(g.slots, slot{node: n, live: true})
		id = NodeID{index: int32(len(g.slots) - 1)}
	}

	g.order = append(g.order, id)
	g.insert(id, &g.slots[id.index].node)
	return id
}

// RemoveNode deletes a node and every edge touching it. All handles to the
// node become stale.
func (g *Graph) RemoveNode(id NodeID) bool {
	n := g.Node(id)
	if n == nil {
		return false
	}

	idx := g.cellOf(n.Pos)
	g.cells[idx] = removeID(g.cells[idx], id)
	g.order = removeID(g.order, id)

	edges := g.edges[:0]
	for _, e := range g.edges {
		if e.A != id && e.B != id {
			edges = append(edges, e)
		}
	}
	g.edges = edges

	s := &g.slots[id.index]
	s.node, s.live = Node{}, false
	s.gen++
	g.free = append(g.free, id.index)
	return true
}

// Clear removes every node and edge and empties the grid. Handles issued
// before the call become stale.
func (g *Graph) Clear() {
	for i := range g.slots {
		if g.slots[i].live {
			g.slots[i].gen++
		}
		g.slots[i].node, g.slots[i].live = Node{}, false
	}
	g.free = g.free[:0]
	for i := len(g.slots) - 1; i >= 0; i-- {
		g.free = append(g.free, int32(i))
	}
	g.order = g.order[:0]
	g.edges = g.edges[:0]
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// SetMass sets a node's mass, raising values below 1 to 1.
func (g *Graph) SetMass(id NodeID, mass float64) bool {
	n := g.Node(id)
	if n == nil {
		return false
	}
	if !(mass >= 1) {
		mass = 1
	}
	n.Mass = mass
	return true
}

// MassFromEdges is the mass of a node with n edges: log2(n+2). It is 1 for
// an unconnected node and grows strictly with n.
func MassFromEdges(n int) float64 {
	return math.Log2(float64(n) + 2)
}

// AssignMasses sets every node's mass from its edge count.
func (g *Graph) AssignMasses() {
	counts := make(map[NodeID]int, len(g.order))
	for _, e := range g.edges {
		counts[e.A]++
		counts[e.B]++
	}
	for _, id := range g.order {
		g.slots[id.index].node.Mass = MassFromEdges(counts[id])
	}
}

func (g *Graph) clamp(p geom.Vec) geom.Vec {
	return geom.ClampVec(p, 0, g.maxPos)
}

// Clamp limits p to the simulation bounds [0, MaxPos].
func (g *Graph) Clamp(p geom.Vec) geom.Vec {
	return g.clamp(p)
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
