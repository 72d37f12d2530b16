package models

import (
	"fmt"

	"github.com/TFMV/forcegraph/graph"
)

// Index maps dataset keys to the graph handles Build created for them.
type Index map[string]graph.NodeID

// Build turns a dataset into a graph. Nodes are added in dataset order,
// edges whose ends are both known become springs, masses follow the edge
// count unless a node sets its own. Nodes without a position start at the
// grid center; seed the graph afterwards to spread them out.
func (d *Dataset) Build(opts graph.Options) (*graph.Graph, Index, error) {
	g := graph.New(opts)
	idx := make(Index, len(d.Nodes))
	center := opts.GridSize / 2

	for _, n := range d.Nodes {
		if n.Key == "" {
			return nil, nil, ErrEmptyKey
		}
		if _, ok := idx[n.Key]; ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateNode, n.Key)
		}
		node := graph.Node{Key: n.Key, Label: n.Label}
		if node.Label == "" {
			node.Label = n.Key
		}
		node.Pos.X, node.Pos.Y = center, center
		if n.Pos != nil {
			node.Pos = *n.Pos
		}
		idx[n.Key] = g.AddNode(node)
	}

	for _, e := range d.Edges {
		a, okA := idx[e.Source]
		b, okB := idx[e.Target]
		if !okA || !okB {
			continue
		}
		g.Connect(a, b, e.Weight)
	}

	g.AssignMasses()
	for _, n := range d.Nodes {
		if n.Mass >= 1 {
			g.SetMass(idx[n.Key], n.Mass)
		}
	}
	return g, idx, nil
}

// FromGraph exports the nodes and edges of g, including current positions,
// as a dataset.
func FromGraph(name string, g *graph.Graph) *Dataset {
	d := NewDataset(name, "layout")
	keys := make(map[graph.NodeID]string, g.Len())

	for _, id := range g.Nodes() {
		n := g.Node(id)
		key, ok := n.Key.(string)
		if !ok || key == "" {
			key = id.String()
		}
		pos := n.Pos
		keys[id] = key
		d.Nodes = append(d.Nodes, Node{Key: key, Label: n.Label, Mass: n.Mass, Pos: &pos})
	}
	for _, e := range g.Edges() {
		d.Edges = append(d.Edges, NewEdge(keys[e.A], keys[e.B], "", e.Strength))
	}
	d.reindex()
	return d
}
