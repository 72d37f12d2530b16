package render

import (
	"bytes"
	"fmt"
	"strconv"
)

// DOTRenderer outputs Graphviz DOT format with pinned positions, for
// neato -n style tools.
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer
func (r *DOTRenderer) Description() string {
	return "Renders the layout in Graphviz DOT format with fixed node positions"
}

// Render creates a DOT representation of the scene. Positions are in graph
// units with y flipped, since DOT's origin is bottom left.
func (r *DOTRenderer) Render(s *Scene) ([]byte, error) {
	var buf bytes.Buffer
	g := s.Graph
	gs := g.Options().GridSize

	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=%s];\n", strconv.Quote(s.Theme.Background))
	buf.WriteString("  node [shape=circle, fontname=\"sans-serif\", fixedsize=true];\n")
	fmt.Fprintf(&buf, "  edge [color=%s];\n", strconv.Quote(s.Theme.Edge))

	for _, id := range g.Nodes() {
		n := g.Node(id)
		color := s.Theme.Node
		if s.Highlighted(id) {
			color = s.Theme.Highlight
		}
		fmt.Fprintf(&buf, "  n%d [label=%s, color=%s, width=%.3f, pos=\"%.3f,%.3f!\"];\n",
			id.Slot(), strconv.Quote(n.Label), strconv.Quote(color), n.Mass/10, n.Pos.X, gs-n.Pos.Y)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  n%d -- n%d [weight=%g];\n", e.A.Slot(), e.B.Slot(), e.Strength)
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
