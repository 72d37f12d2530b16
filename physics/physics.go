// Package physics advances a graph.Graph one integration tick at a time:
// origin pull, pairwise repulsion through a pluggable spatial backend, link
// attraction, commit and inertia decay.
package physics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TFMV/forcegraph/graph"
)

// ErrUnknownBackend is returned by NewBackend for unsupported names.
var ErrUnknownBackend = errors.New("unknown repulsion backend")

// Backend computes node-node repulsion. Build is called once per tick
// before Apply; Apply adds the repulsion velocity deltas to every node.
type Backend interface {
	Build(g *graph.Graph)
	Apply(g *graph.Graph, alpha float64)
	Name() string
}

// Backend names accepted by NewBackend.
const (
	BackendGrid     = "grid"
	BackendQuadTree = "quadtree"
)

// NewBackend returns a repulsion backend by name.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", BackendGrid:
		return &GridBackend{}, nil
	case BackendQuadTree, "barnes-hut":
		return NewQuadTree(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Simulator runs ticks against a graph with a fixed backend.
type Simulator struct {
	backend Backend
}

// NewSimulator creates a simulator. A nil backend means the grid backend.
func NewSimulator(b Backend) *Simulator {
	if b == nil {
		b = &GridBackend{}
	}
	return &Simulator{backend: b}
}

// Backend returns the repulsion backend in use.
func (s *Simulator) Backend() Backend { return s.backend }

var defaultSimulator = NewSimulator(nil)

// Simulate runs one tick with the grid backend.
func Simulate(g *graph.Graph, alpha float64) int {
	return defaultSimulator.Step(g, alpha)
}

// Step runs one integration tick and returns how many nodes moved. Given the
// same graph state and alpha the result is bit-identical.
func (s *Simulator) Step(g *graph.Graph, alpha float64) int {
	o := g.Options()
	nodes := g.Nodes()
	center := o.GridSize / 2

	// origin pull, slower for heavy nodes
	for _, id := range nodes {
		n := g.Node(id)
		k := o.OriginStrength * alpha / n.Mass
		n.Vel.X += (center - n.Pos.X) * k
		n.Vel.Y += (center - n.Pos.Y) * k
	}

	s.backend.Build(g)
	s.backend.Apply(g, alpha)

	applyLinks(g, alpha)

	moved := 0
	for _, id := range nodes {
		n := g.Node(id)
		if n.Anchor || n.Vel.LenSq() <= o.MinMove {
			continue
		}
		g.SetPosition(id, n.Pos.Add(n.Vel))
		moved++
	}

	decay := o.InertiaStrength * alpha
	for _, id := range nodes {
		n := g.Node(id)
		n.Vel = n.Vel.Scale(decay)
	}
	return moved
}

// applyLinks pulls the ends of every edge together. Each side is divided by
// its squared mass.
func applyLinks(g *graph.Graph, alpha float64) {
	k := g.Options().LinkStrength * alpha
	for _, e := range g.Edges() {
		a, b := g.Node(e.A), g.Node(e.B)
		if a == nil || b == nil || e.A == e.B {
			continue
		}
		d := b.Pos.Sub(a.Pos).Scale(k * e.Strength)
		a.Vel = a.Vel.Add(d.Scale(1 / (a.Mass * a.Mass)))
		b.Vel = b.Vel.Sub(d.Scale(1 / (b.Mass * b.Mass)))
	}
}
