package render

import (
	"encoding/json"

	"github.com/TFMV/forcegraph/geom"
)

// FrameNode is one node of a Frame.
type FrameNode struct {
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Mass   float64 `json:"mass"`
	Anchor bool    `json:"anchor,omitempty"`
	Hover  bool    `json:"hover,omitempty"`
}

// Frame is the read-only per-frame state a remote client needs to draw the
// view: node positions in graph units, edge endpoints as indexes into
// Nodes and the camera transform.
type Frame struct {
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	GridSize  float64     `json:"grid_size"`
	Scale     float64     `json:"scale"`
	ScaleMax  float64     `json:"scale_max"`
	Translate geom.Vec    `json:"translate"`
	Theme     Theme       `json:"theme"`
	Nodes     []FrameNode `json:"nodes"`
	Edges     [][2]int    `json:"edges"`
}

// NewFrame captures the scene.
func NewFrame(s *Scene) *Frame {
	g := s.Graph
	f := &Frame{
		Width:     s.Width,
		Height:    s.Height,
		GridSize:  g.Options().GridSize,
		Scale:     s.Scale,
		ScaleMax:  s.ScaleMax,
		Translate: s.Translate,
		Theme:     s.Theme,
		Nodes:     make([]FrameNode, 0, g.Len()),
		Edges:     make([][2]int, 0, len(g.Edges())),
	}

	index := make(map[int]int, g.Len())
	for i, id := range g.Nodes() {
		n := g.Node(id)
		index[id.Slot()] = i
		f.Nodes = append(f.Nodes, FrameNode{
			Label:  n.Label,
			X:      n.Pos.X,
			Y:      n.Pos.Y,
			Mass:   n.Mass,
			Anchor: n.Anchor,
			Hover:  id == s.Hover,
		})
	}
	for _, e := range g.Edges() {
		a, okA := index[e.A.Slot()]
		b, okB := index[e.B.Slot()]
		if okA && okB {
			f.Edges = append(f.Edges, [2]int{a, b})
		}
	}
	return f
}

// JSONRenderer outputs raw JSON format
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Renders the view as JSON frame data for custom clients"
}

// Render creates a JSON representation of the scene
func (r *JSONRenderer) Render(s *Scene) ([]byte, error) {
	return json.MarshalIndent(NewFrame(s), "", "  ")
}
