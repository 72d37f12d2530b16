package camera

import (
	"math"

	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
)

// Mode is the coarse gesture state of a controller.
type Mode int

const (
	Idle Mode = iota
	Panning
	Dragging
)

func (m Mode) String() string {
	switch m {
	case Panning:
		return "panning"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// dragState is the node-drag sub-machine. It runs alongside the view
// sub-machine so one pointer can drag a node while others pan and pinch.
type dragState struct {
	active  bool
	pointer int
	node    graph.NodeID
	vel     geom.Vec
}

type viewMode int

const (
	viewIdle viewMode = iota
	viewPanning
	viewPinching
)

// viewState is the pan/pinch sub-machine. Pinching always implies a pan
// pointer.
type viewState struct {
	mode viewMode

	pan    int
	anchor geom.Vec // graph position under the pan pointer when it was acquired

	pinch     int
	initRatio float64
	initScale float64
}

// Mode returns the gesture state. A drag takes precedence over panning.
func (c *Controller) Mode() Mode {
	switch {
	case c.drag.active:
		return Dragging
	case c.view.mode != viewIdle:
		return Panning
	default:
		return Idle
	}
}

// Pinching reports whether a two-pointer zoom is in progress.
func (c *Controller) Pinching() bool { return c.view.mode == viewPinching }

// Feed stores the input snapshot and viewport for the coming frame. The
// wheel delta is accumulated and drained smoothly by Step.
func (c *Controller) Feed(in Input, vp Viewport) {
	c.in = in
	c.in.Pointers = append(c.in.Pointers[:0:0], in.Pointers...)
	c.vp = vp
	c.wheel += in.Wheel
}

// Update feeds one input snapshot and runs one gesture step.
func (c *Controller) Update(in Input, vp Viewport) {
	c.Feed(in, vp)
	c.Step()
}

// Step runs one gesture update against the last fed input. The frame loop
// calls it once per simulation tick so drag smoothing and wheel decay keep
// pace with the physics.
func (c *Controller) Step() {
	radius := c.HoverRadius()

	c.stepDrag(radius)

	pan, panning := c.stepPan()
	before := c.focus(panning)

	c.stepWheel()
	c.stepPinch(pan, panning)
	c.scale = geom.Clamp(c.scale, 1, c.cfg.ScaleMax)

	var after geom.Vec
	if panning {
		after = c.WindowToGraph(pan.Pos)
	} else {
		after = c.focus(false)
	}
	c.setTranslate(c.pos.Sub(after.Sub(before)))

	c.stepHover(radius)
}

// pointer returns the pressed pointer with the given id.
func (c *Controller) pointer(id int) (Pointer, bool) {
	for _, p := range c.in.Pointers {
		if p.ID == id {
			return p, p.Pressed()
		}
	}
	return Pointer{}, false
}

// assigned reports whether a pointer already holds a role.
func (c *Controller) assigned(id int) bool {
	if c.drag.active && c.drag.pointer == id {
		return true
	}
	switch c.view.mode {
	case viewPanning:
		return c.view.pan == id
	case viewPinching:
		return c.view.pan == id || c.view.pinch == id
	}
	return false
}

// unassigned returns the first pressed pointer without a role.
func (c *Controller) unassigned() (Pointer, bool) {
	for _, p := range c.in.Pointers {
		if p.Pressed() && !c.assigned(p.ID) {
			return p, true
		}
	}
	return Pointer{}, false
}

func (c *Controller) stepDrag(radius float64) {
	if c.drag.active {
		p, ok := c.pointer(c.drag.pointer)
		n := c.graph.Node(c.drag.node)
		if !ok || n == nil {
			c.releaseDrag()
			return
		}
		target := c.WindowToGraph(p.Pos)
		c.drag.vel = c.drag.vel.Scale(c.cfg.DragInertia).
			Add(target.Sub(n.Pos).Scale(c.cfg.DragStrength))
		c.graph.SetPosition(c.drag.node, n.Pos.Add(c.drag.vel))
		return
	}

	if c.in.Modifiers.Space {
		return
	}
	for _, p := range c.in.Pointers {
		if !p.Pressed() || c.assigned(p.ID) {
			continue
		}
		id, ok := c.graph.FindClosestNode(c.WindowToGraph(p.Pos), radius)
		if !ok {
			continue
		}
		c.graph.Node(id).Anchor = true
		c.drag = dragState{active: true, pointer: p.ID, node: id}
		c.stepDrag(radius)
		return
	}
}

// releaseDrag ends a drag. The node keeps its current position.
func (c *Controller) releaseDrag() {
	if c.drag.active {
		if n := c.graph.Node(c.drag.node); n != nil {
			n.Anchor = false
		}
	}
	c.drag = dragState{node: graph.NoNode}
}

func (c *Controller) stepPan() (Pointer, bool) {
	if c.view.mode != viewIdle {
		if p, ok := c.pointer(c.view.pan); ok {
			return p, true
		}
		c.view = viewState{}
	}

	p, ok := c.unassigned()
	if !ok {
		return Pointer{}, false
	}
	c.view = viewState{
		mode:   viewPanning,
		pan:    p.ID,
		anchor: c.WindowToGraph(p.Pos),
	}
	return p, true
}

// focus returns the graph point that must stay put on screen while the
// camera changes: the pan anchor, the first pointer or the view center.
func (c *Controller) focus(panning bool) geom.Vec {
	if panning {
		return c.view.anchor
	}
	if len(c.in.Pointers) > 0 {
		return c.WindowToGraph(c.in.Pointers[0].Pos)
	}
	return c.WindowToGraph(c.vp.Rect.Center())
}

func (c *Controller) stepWheel() {
	dy := geom.Lerp(0, c.wheel, c.cfg.WheelSmoothing)
	c.wheel -= dy

	// ease the speed out towards both ends of the zoom range; narrow ranges
	// below 2 get no easing so the sine never changes sign
	offset := math.Min(1/((c.cfg.ScaleMax-1)*2), 0.5)
	s := geom.MapRange(c.scale, 1, c.cfg.ScaleMax, offset, 1-offset)
	c.scale += dy * math.Sin(s*math.Pi) * -c.cfg.WheelSpeed
}

func (c *Controller) stepPinch(pan Pointer, panning bool) {
	if !panning {
		return
	}

	var (
		pinch Pointer
		ok    bool
	)
	if c.view.mode == viewPinching {
		pinch, ok = c.pointer(c.view.pinch)
	}
	if !ok {
		pinch, ok = c.unassigned()
	}
	if !ok {
		c.view.mode = viewPanning
		c.view.pinch, c.view.initRatio, c.view.initScale = 0, 0, 0
		return
	}

	if c.view.mode != viewPinching || c.view.pinch != pinch.ID {
		c.view.initRatio, c.view.initScale = 0, 0
	}
	c.view.mode = viewPinching
	c.view.pinch = pinch.ID

	ratio := geom.Distance(c.WindowToRel(pan.Pos), c.WindowToRel(pinch.Pos))
	if c.view.initRatio != 0 {
		c.scale = c.view.initScale * ratio / c.view.initRatio
		return
	}
	c.view.initRatio = ratio
	c.view.initScale = c.scale
}

// stepHover looks up the node under the primary pointer. Nothing is hovered
// while any pointer is pressed.
func (c *Controller) stepHover(radius float64) {
	c.hover = graph.NoNode
	if len(c.in.Pointers) == 0 {
		return
	}
	for _, p := range c.in.Pointers {
		if p.Pressed() {
			return
		}
	}
	if id, ok := c.graph.FindClosestNode(c.WindowToGraph(c.in.Pointers[0].Pos), radius); ok {
		c.hover = id
	}
}
