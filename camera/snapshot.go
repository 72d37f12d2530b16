package camera

import "github.com/TFMV/forcegraph/geom"

// PointerState is a pointer together with its graph position and role.
type PointerState struct {
	Pointer
	Graph geom.Vec `json:"graph"`
	Role  string   `json:"role,omitempty"`
}

// Snapshot is a read-only view of the controller for diagnostics and
// remote clients.
type Snapshot struct {
	Mode      string         `json:"mode"`
	Pinching  bool           `json:"pinching"`
	Scale     float64        `json:"scale"`
	Pan       geom.Vec       `json:"pan"`
	Translate geom.Vec       `json:"translate"`
	Wheel     float64        `json:"wheel"`
	Hover     string         `json:"hover,omitempty"`
	Dragged   string         `json:"dragged,omitempty"`
	Modifiers Modifiers      `json:"modifiers"`
	Pointers  []PointerState `json:"pointers"`
}

// Snapshot captures the current camera and gesture state.
func (c *Controller) Snapshot() Snapshot {
	_, t := c.Transform()
	s := Snapshot{
		Mode:      c.Mode().String(),
		Pinching:  c.Pinching(),
		Scale:     c.scale,
		Pan:       c.pos,
		Translate: t,
		Wheel:     c.wheel,
		Modifiers: c.in.Modifiers,
		Pointers:  make([]PointerState, 0, len(c.in.Pointers)),
	}
	if n := c.graph.Node(c.hover); n != nil {
		s.Hover = n.Label
	}
	if n := c.graph.Node(c.Dragged()); n != nil {
		s.Dragged = n.Label
	}
	for _, p := range c.in.Pointers {
		s.Pointers = append(s.Pointers, PointerState{
			Pointer: p,
			Graph:   c.WindowToGraph(p.Pos),
			Role:    c.role(p.ID),
		})
	}
	return s
}

func (c *Controller) role(id int) string {
	switch {
	case c.drag.active && c.drag.pointer == id:
		return "drag"
	case c.view.mode != viewIdle && c.view.pan == id:
		return "pan"
	case c.view.mode == viewPinching && c.view.pinch == id:
		return "pinch"
	}
	return ""
}
