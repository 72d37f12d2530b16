// Package camera turns per-frame pointer and wheel snapshots into pan, zoom
// and node-drag operations against a graph.
//
// Three coordinate spaces are involved: window coordinates (CSS pixels, as
// delivered by the input layer), relative coordinates (0..1 across the
// longer canvas side, aspect corrected) and graph coordinates
// ([0, GridSize) on both axes).
package camera

import (
	"math"

	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
)

// Config tunes the controller.
type Config struct {
	// DragInertia is the share of drag velocity kept per frame and
	// DragStrength the share of the remaining distance added to it. The
	// defaults are critically damped: strength = (1 - sqrt(inertia))^2.
	DragInertia  float64 `json:"drag_inertia" yaml:"drag_inertia" toml:"drag_inertia" validate:"gte=0,lt=1"`
	DragStrength float64 `json:"drag_strength" yaml:"drag_strength" toml:"drag_strength" validate:"gt=0,lte=1"`

	InitialScale float64 `json:"initial_scale" yaml:"initial_scale" toml:"initial_scale" validate:"gte=1,ltefield=ScaleMax"`
	ScaleMax     float64 `json:"scale_max" yaml:"scale_max" toml:"scale_max" validate:"gt=1"`

	// HoverRadius is the hit radius around a node in CSS pixels.
	HoverRadius float64 `json:"hover_radius" yaml:"hover_radius" toml:"hover_radius" validate:"gt=0"`

	// WheelSmoothing is the share of pending wheel delta applied per frame.
	WheelSmoothing float64 `json:"wheel_smoothing" yaml:"wheel_smoothing" toml:"wheel_smoothing" validate:"gt=0,lte=1"`
	WheelSpeed     float64 `json:"wheel_speed" yaml:"wheel_speed" toml:"wheel_speed" validate:"gt=0"`
}

// DefaultConfig returns the default controller settings.
func DefaultConfig() Config {
	return Config{
		DragInertia:    0.36,
		DragStrength:   0.16,
		InitialScale:   2,
		ScaleMax:       7,
		HoverRadius:    12,
		WheelSmoothing: 0.2,
		WheelSpeed:     0.005,
	}
}

// Pointer is one active input contact.
type Pointer struct {
	ID int `json:"id"`
	// Pos is in window coordinates.
	Pos geom.Vec `json:"pos"`
	// Buttons is the pressed-button bitmask; zero for a hovering mouse.
	Buttons int `json:"buttons"`
}

// Pressed reports whether any button is held.
func (p Pointer) Pressed() bool { return p.Buttons != 0 }

// Modifiers is the keyboard modifier state.
type Modifiers struct {
	// Space forces newly pressed pointers to pan instead of grabbing nodes.
	Space bool `json:"space"`
	Shift bool `json:"shift"`
	Ctrl  bool `json:"ctrl"`
	Alt   bool `json:"alt"`
}

// Input is the input snapshot for one frame.
type Input struct {
	Pointers []Pointer `json:"pointers"`
	// Wheel is the wheel delta accumulated since the previous frame.
	Wheel     float64   `json:"wheel"`
	Modifiers Modifiers `json:"modifiers"`
}

// Viewport is where the canvas sits in the window.
type Viewport struct {
	// Rect is the canvas rectangle in window coordinates.
	Rect geom.Rect `json:"rect"`
	// DPR is the device pixel ratio.
	DPR float64 `json:"dpr"`
}

// CanvasSize returns the canvas size in device pixels.
func (v Viewport) CanvasSize() (w, h float64) {
	dpr := v.DPR
	if dpr <= 0 {
		dpr = 1
	}
	return v.Rect.W * dpr, v.Rect.H * dpr
}

// aspect returns width/height, or 1 for an empty viewport.
func (v Viewport) aspect() float64 {
	if v.Rect.W <= 0 || v.Rect.H <= 0 {
		return 1
	}
	return v.Rect.W / v.Rect.H
}

// arMargin is the offset that centers the shorter axis.
func arMargin(ar float64) float64 {
	return (1 - math.Min(1, ar)) / 2
}

// Controller holds the camera and the gesture state of one view. It keeps
// handles into the graph but never owns graph data.
type Controller struct {
	cfg   Config
	graph *graph.Graph

	vp    Viewport
	in    Input
	wheel float64

	// pos is the pan offset in graph units, zero when centered.
	pos   geom.Vec
	scale float64

	drag  dragState
	view  viewState
	hover graph.NodeID
}

// New creates a controller for g.
func New(g *graph.Graph, cfg Config) *Controller {
	return &Controller{
		cfg:   cfg,
		graph: g,
		scale: geom.Clamp(cfg.InitialScale, 1, cfg.ScaleMax),
		hover: graph.NoNode,
		drag:  dragState{node: graph.NoNode},
	}
}

// Config returns the active settings.
func (c *Controller) Config() Config { return c.cfg }

// SetConfig swaps the settings, keeping the current camera.
func (c *Controller) SetConfig(cfg Config) {
	c.cfg = cfg
	c.scale = geom.Clamp(c.scale, 1, cfg.ScaleMax)
	c.setTranslate(c.pos)
}

// Graph returns the graph the controller acts on.
func (c *Controller) Graph() *graph.Graph { return c.graph }

// Scale returns the zoom factor in [1, ScaleMax].
func (c *Controller) Scale() float64 { return c.scale }

// Pan returns the camera offset in graph units.
func (c *Controller) Pan() geom.Vec { return c.pos }

// Viewport returns the viewport of the last fed frame.
func (c *Controller) Viewport() Viewport { return c.vp }

// Hover returns the node under the hovering pointer, if any.
func (c *Controller) Hover() graph.NodeID { return c.hover }

// Dragged returns the node being dragged, if any.
func (c *Controller) Dragged() graph.NodeID {
	if !c.drag.active {
		return graph.NoNode
	}
	return c.drag.node
}

// SetScale zooms around the view center.
func (c *Controller) SetScale(s float64) {
	c.scale = geom.Clamp(s, 1, c.cfg.ScaleMax)
	c.setTranslate(c.pos)
}

// SetPan moves the camera, subject to the usual bounds.
func (c *Controller) SetPan(p geom.Vec) {
	c.setTranslate(p)
}

// Reset recenters the camera and drops every gesture.
func (c *Controller) Reset() {
	c.releaseDrag()
	c.view = viewState{}
	c.wheel = 0
	c.pos = geom.Vec{}
	c.scale = geom.Clamp(c.cfg.InitialScale, 1, c.cfg.ScaleMax)
	c.hover = graph.NoNode
}

// WindowToRel converts window coordinates to aspect corrected relative
// coordinates.
func (c *Controller) WindowToRel(p geom.Vec) geom.Vec {
	r := c.vp.Rect
	rel := geom.Vec{}
	if r.W > 0 && r.H > 0 {
		rel = r.Relative(p)
	}
	ar := c.vp.aspect()
	rel.X = rel.X*math.Min(1, ar) + arMargin(ar)
	rel.Y = rel.Y*math.Min(1, 1/ar) + arMargin(1/ar)
	return rel
}

// RelToGraph converts relative coordinates to graph coordinates.
func (c *Controller) RelToGraph(rel geom.Vec) geom.Vec {
	gs := c.graph.Options().GridSize
	s := c.scale
	off := gs/2 - gs/s/2
	return geom.V(
		rel.X*gs/s+off+c.pos.X,
		rel.Y*gs/s+off+c.pos.Y,
	)
}

// WindowToGraph converts window coordinates to graph coordinates.
func (c *Controller) WindowToGraph(p geom.Vec) geom.Vec {
	return c.RelToGraph(c.WindowToRel(p))
}

// GraphToWindow is the inverse of WindowToGraph.
func (c *Controller) GraphToWindow(p geom.Vec) geom.Vec {
	gs := c.graph.Options().GridSize
	s := c.scale
	off := gs/2 - gs/s/2
	rel := geom.V((p.X-off-c.pos.X)*s/gs, (p.Y-off-c.pos.Y)*s/gs)

	ar := c.vp.aspect()
	rx := (rel.X - arMargin(ar)) / math.Min(1, ar)
	ry := (rel.Y - arMargin(1/ar)) / math.Min(1, 1/ar)
	r := c.vp.Rect
	return geom.V(r.X+rx*r.W, r.Y+ry*r.H)
}

// Transform returns the canvas transform: a graph point p is drawn at
// p/GridSize*max(w,h)*scale + translate device pixels.
func (c *Controller) Transform() (scale float64, translate geom.Vec) {
	w, h := c.vp.CanvasSize()
	maxSize := math.Max(w, h)
	gs := c.graph.Options().GridSize
	ar := c.vp.aspect()

	base := (1 - c.scale) * maxSize / 2
	translate = geom.V(
		base-c.pos.X/gs*maxSize*c.scale-arMargin(ar)*maxSize,
		base-c.pos.Y/gs*maxSize*c.scale-arMargin(1/ar)*maxSize,
	)
	return c.scale, translate
}

// GraphToCanvas maps a graph point to device pixels on the canvas.
func (c *Controller) GraphToCanvas(p geom.Vec) geom.Vec {
	w, h := c.vp.CanvasSize()
	k := math.Max(w, h) / c.graph.Options().GridSize
	s, t := c.Transform()
	return geom.V(p.X*k*s+t.X, p.Y*k*s+t.Y)
}

// HoverRadius returns the hit radius in graph units. It shrinks as the view
// zooms in so the target keeps the same size on screen, and never exceeds
// the repel distance.
func (c *Controller) HoverRadius() float64 {
	w, h := c.vp.CanvasSize()
	maxSize := math.Max(w, h)
	if maxSize <= 0 {
		return 0
	}
	dpr := c.vp.DPR
	if dpr <= 0 {
		dpr = 1
	}
	o := c.graph.Options()
	r := c.cfg.HoverRadius * dpr / (maxSize * c.scale) * o.GridSize
	return math.Min(r, o.RepelDistance)
}

// setTranslate sets the pan offset, keeping the visible area inside the
// simulation bounds plus the aspect margin on the shorter axis.
func (c *Controller) setTranslate(p geom.Vec) {
	gs := c.graph.Options().GridSize
	radius := gs / 2
	ar := c.vp.aspect()
	arX := arMargin(ar) * (gs / c.scale)
	arY := arMargin(1/ar) * (gs / c.scale)
	lo := radius/c.scale - radius
	hi := radius - radius/c.scale
	c.pos = geom.V(
		geom.Clamp(p.X, lo-arX, hi+arX),
		geom.Clamp(p.Y, lo-arY, hi+arY),
	)
}
