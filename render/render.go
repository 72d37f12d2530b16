// Package render draws a graph as seen through a camera. Renderers only
// read the scene; they never touch simulation or gesture state.
package render

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/TFMV/forcegraph/camera"
	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
)

// ErrUnknownFormat is returned by GetRenderer for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render draws the scene
	Render(s *Scene) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string
}

// Theme is a color scheme. Colors are CSS color strings.
type Theme struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Edge       string `json:"edge"`
	Node       string `json:"node"`
	Highlight  string `json:"highlight"`
}

// DefaultTheme returns the light theme.
func DefaultTheme() Theme {
	return Theme{
		Name:       "default",
		Background: "#f8f8f8",
		Edge:       "rgb(150, 150, 150)",
		Node:       "rgb(248, 113, 113)",
		Highlight:  "rgb(129, 140, 248)",
	}
}

// SurrealTheme returns a dark, saturated theme.
func SurrealTheme() Theme {
	return Theme{
		Name:       "surreal",
		Background: "#212121",
		Edge:       "#9C27B0",
		Node:       "#FF6D00",
		Highlight:  "#00E676",
	}
}

var themes = map[string]func() Theme{
	"default": DefaultTheme,
	"surreal": SurrealTheme,
}

// ThemeByName looks up a theme. The empty name selects the default.
func ThemeByName(name string) (Theme, error) {
	if name == "" {
		return DefaultTheme(), nil
	}
	fn, ok := themes[strings.ToLower(name)]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
	return fn(), nil
}

// Scene is everything a renderer needs for one picture: the graph, the
// canvas size in device pixels and the camera transform. A graph point p is
// drawn at p/GridSize*max(Width, Height)*Scale + Translate.
type Scene struct {
	Graph     *graph.Graph
	Width     float64
	Height    float64
	Scale     float64
	ScaleMax  float64
	Translate geom.Vec
	Hover     graph.NodeID
	Theme     Theme
	// Labels draws every label instead of only the highlighted ones.
	Labels bool
	// Caption is drawn in the top left corner when set.
	Caption string
}

// FromCamera builds a scene from the controller's current state.
func FromCamera(cam *camera.Controller, theme Theme) *Scene {
	w, h := cam.Viewport().CanvasSize()
	scale, t := cam.Transform()
	return &Scene{
		Graph:     cam.Graph(),
		Width:     w,
		Height:    h,
		Scale:     scale,
		ScaleMax:  cam.Config().ScaleMax,
		Translate: t,
		Hover:     cam.Hover(),
		Theme:     theme,
	}
}

func (s *Scene) maxSize() float64 {
	return math.Max(s.Width, s.Height)
}

// local maps a graph point to untransformed canvas units.
func (s *Scene) local(p geom.Vec) geom.Vec {
	return p.Scale(s.maxSize() / s.Graph.Options().GridSize)
}

// Project maps a graph point to device pixels.
func (s *Scene) Project(p geom.Vec) geom.Vec {
	return s.local(p).Scale(s.Scale).Add(s.Translate)
}

// Highlighted reports whether a node is drawn as a label in the highlight
// color: anchored (dragged) nodes and the hovered node.
func (s *Scene) Highlighted(id graph.NodeID) bool {
	n := s.Graph.Node(id)
	return n != nil && (n.Anchor || id == s.Hover)
}

// nodeSize is the size factor of a node in canvas units. Heavier nodes
// grow, and the growth shrinks while zooming in.
func (s *Scene) nodeSize(n *graph.Node) float64 {
	m := s.maxSize()
	return m/200 + ((n.Mass-1)/5*(m/100))/s.Scale
}

// labelSize is the font size of a highlighted node in canvas units.
func (s *Scene) labelSize(n *graph.Node) float64 {
	size := s.nodeSize(n)
	if s.ScaleMax > 0 {
		size += (1 - s.Scale/s.ScaleMax) * 10
	}
	return size
}

// nodeRadius is the radius multiplier applied to nodeSize.
func (s *Scene) nodeRadius() float64 {
	return 1 / s.Scale / 2
}

// edgeWidth is the stroke width in canvas units; at least half a device
// pixel.
func (s *Scene) edgeWidth() float64 {
	return math.Max(s.maxSize()/8000, 0.5) / s.Scale
}

// edgeOpacity grows with the mass of the endpoints and the zoom.
func (s *Scene) edgeOpacity(a, b *graph.Node) float64 {
	return geom.Clamp(0.2+((a.Mass+b.Mass-2)/100)*2*s.Scale, 0, 1)
}

// clip is the visible area in device pixels, widened by a margin so labels
// and circles near the edge are still drawn.
func (s *Scene) clip() geom.Rect {
	return geom.Rect{X: -100, Y: -20, W: s.Width + 200, H: s.Height + 40}
}

// visible reports whether the device space segment a-b touches r.
func visible(r geom.Rect, a, b geom.Vec) bool {
	if r.Contains(a) || r.Contains(b) {
		return true
	}
	for _, e := range r.Edges() {
		if geom.SegmentsIntersecting(a, b, e[0], e[1]) {
			return true
		}
	}
	return false
}

// edgeSegment returns the canvas unit segment of an edge. Ends at a
// highlighted node stop at the label circle so the label stays readable.
// ok is false when nothing of the edge is left.
func (s *Scene) edgeSegment(e graph.Edge) (a, b geom.Vec, ok bool) {
	na, nb := s.Graph.Node(e.A), s.Graph.Node(e.B)
	if na == nil || nb == nil {
		return a, b, false
	}
	a, b = s.local(na.Pos), s.local(nb.Pos)
	if s.Highlighted(e.A) {
		pts := geom.CircleSegmentIntersections(geom.Circle{C: a, R: s.labelSize(na)}, a, b)
		if len(pts) == 0 {
			return a, b, false
		}
		a = pts[0]
	}
	if s.Highlighted(e.B) {
		pts := geom.CircleSegmentIntersections(geom.Circle{C: b, R: s.labelSize(nb)}, b, a)
		if len(pts) == 0 {
			return a, b, false
		}
		b = pts[0]
	}
	return a, b, true
}

// renderers maps format names to constructors
var renderers = map[string]func() Renderer{
	"svg":   func() Renderer { return &SVGRenderer{} },
	"ascii": func() Renderer { return &ASCIIRenderer{CellWidth: 10, CellHeight: 20, Border: true} },
	"json":  func() Renderer { return &JSONRenderer{} },
	"dot":   func() Renderer { return &DOTRenderer{} },
}

// GetRenderer returns the appropriate renderer for the given format
func GetRenderer(format string) (Renderer, error) {
	fn, ok := renderers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	return fn(), nil
}

// Formats lists the supported output formats.
func Formats() []string {
	out := make([]string, 0, len(renderers))
	for name := range renderers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
