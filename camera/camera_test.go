package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
	"github.com/TFMV/forcegraph/physics"
)

var testViewport = Viewport{Rect: geom.Rect{W: 800, H: 600}, DPR: 1}

func newTestController(t *testing.T) (*Controller, *graph.Graph) {
	t.Helper()
	g := graph.New(graph.DefaultOptions())
	c := New(g, DefaultConfig())
	c.Feed(Input{}, testViewport)
	return c, g
}

func press(id int, p geom.Vec) Pointer { return Pointer{ID: id, Pos: p, Buttons: 1} }

func hover(id int, p geom.Vec) Pointer { return Pointer{ID: id, Pos: p} }

func frame(pointers ...Pointer) Input { return Input{Pointers: pointers} }

func TestWindowGraphRoundTrip(t *testing.T) {
	c, _ := newTestController(t)
	c.Feed(Input{}, Viewport{Rect: geom.Rect{X: 10, Y: 20, W: 800, H: 600}, DPR: 2})

	for _, s := range []float64{1, 2, 3.3, 7} {
		c.SetScale(s)
		c.SetPan(geom.V(-4, 3))
		for _, p := range []geom.Vec{{X: 10, Y: 20}, {X: 410, Y: 320}, {X: 100, Y: 500}} {
			back := c.GraphToWindow(c.WindowToGraph(p))
			assert.InDelta(t, p.X, back.X, 1e-9)
			assert.InDelta(t, p.Y, back.Y, 1e-9)

			// the canvas transform must agree with the pointer mapping
			cv := c.GraphToCanvas(c.WindowToGraph(p))
			assert.InDelta(t, (p.X-10)*2, cv.X, 1e-6)
			assert.InDelta(t, (p.Y-20)*2, cv.Y, 1e-6)
		}
	}
}

func TestViewCenterMapsToGraphCenter(t *testing.T) {
	c, g := newTestController(t)
	center := c.WindowToGraph(testViewport.Rect.Center())
	half := g.Options().GridSize / 2
	assert.InDelta(t, half, center.X, 1e-9)
	assert.InDelta(t, half, center.Y, 1e-9)
}

func TestDragSetsAnchorAndApproachesPointer(t *testing.T) {
	c, g := newTestController(t)
	a := g.AddNode(graph.Node{Label: "A", Pos: geom.V(100, 100)})
	g.AddNode(graph.Node{Label: "B", Pos: geom.V(160, 160)})

	start := c.GraphToWindow(g.Node(a).Pos).Add(geom.V(3, 0))
	c.Update(frame(press(1, start)), testViewport)

	require.Equal(t, Dragging, c.Mode())
	require.Equal(t, a, c.Dragged())
	assert.True(t, g.Node(a).Anchor)

	target := geom.V(480, 340)
	want := c.WindowToGraph(target)
	last := geom.Distance(g.Node(a).Pos, want)
	for i := 0; i < 60; i++ {
		c.Update(frame(press(1, target)), testViewport)
		physics.Simulate(g, 1)

		d := geom.Distance(g.Node(a).Pos, want)
		assert.LessOrEqual(t, d, last, "frame %d", i)
		assert.True(t, g.Node(a).Anchor)
		last = d
	}
	assert.Less(t, last, 1e-3)
	require.NoError(t, g.CheckInvariant())

	held := g.Node(a).Pos
	c.Update(frame(hover(1, target)), testViewport)
	assert.False(t, g.Node(a).Anchor)
	assert.Equal(t, held, g.Node(a).Pos)
	assert.Equal(t, graph.NoNode, c.Dragged())
	assert.Equal(t, Idle, c.Mode())
}

func TestDragReleasedWhenPointerDisappears(t *testing.T) {
	c, g := newTestController(t)
	a := g.AddNode(graph.Node{Pos: geom.V(100, 100)})

	c.Update(frame(press(7, c.GraphToWindow(g.Node(a).Pos))), testViewport)
	require.Equal(t, Dragging, c.Mode())

	c.Update(frame(), testViewport)
	assert.False(t, g.Node(a).Anchor)
	assert.Equal(t, Idle, c.Mode())
}

func TestDragSurvivesNodeRemoval(t *testing.T) {
	c, g := newTestController(t)
	a := g.AddNode(graph.Node{Pos: geom.V(100, 100)})
	p := c.GraphToWindow(g.Node(a).Pos)

	c.Update(frame(press(1, p)), testViewport)
	require.Equal(t, a, c.Dragged())

	g.RemoveNode(a)
	assert.NotPanics(t, func() { c.Update(frame(press(1, p)), testViewport) })
	assert.Equal(t, graph.NoNode, c.Dragged())
}

func TestSpaceForcesPan(t *testing.T) {
	c, g := newTestController(t)
	a := g.AddNode(graph.Node{Pos: geom.V(100, 100)})

	in := frame(press(1, c.GraphToWindow(g.Node(a).Pos)))
	in.Modifiers.Space = true
	c.Update(in, testViewport)

	assert.Equal(t, Panning, c.Mode())
	assert.False(t, g.Node(a).Anchor)
}

func TestPanKeepsAnchorUnderPointer(t *testing.T) {
	c, g := newTestController(t)
	g.AddNode(graph.Node{Pos: geom.V(20, 20)})

	start := geom.V(400, 300)
	c.Update(frame(press(1, start)), testViewport)
	require.Equal(t, Panning, c.Mode())
	anchor := c.WindowToGraph(start)

	moved := geom.V(500, 300)
	c.Update(frame(press(1, moved)), testViewport)
	got := c.WindowToGraph(moved)
	assert.InDelta(t, anchor.X, got.X, 1e-9)
	assert.InDelta(t, anchor.Y, got.Y, 1e-9)
	assert.InDelta(t, -12.5, c.Pan().X, 1e-9)

	c.Update(frame(hover(1, moved)), testViewport)
	assert.Equal(t, Idle, c.Mode())
}

func TestPanIsClamped(t *testing.T) {
	c, _ := newTestController(t)

	c.Update(frame(press(1, geom.V(400, 300))), testViewport)
	c.Update(frame(press(1, geom.V(40000, 300))), testViewport)

	// radius/scale - radius with a 100 unit radius at scale 2
	assert.Equal(t, -50.0, c.Pan().X)
}

func TestWheelZoomClamps(t *testing.T) {
	c, _ := newTestController(t)
	cfg := c.Config()

	last := c.Scale()
	for i := 0; i < 400; i++ {
		c.Update(Input{Wheel: 100}, testViewport)
		assert.LessOrEqual(t, c.Scale(), last)
		assert.GreaterOrEqual(t, c.Scale(), 1.0)
		last = c.Scale()
	}
	assert.Equal(t, 1.0, c.Scale())

	c.Update(Input{Wheel: -1e9}, testViewport)
	for i := 0; i < 400; i++ {
		c.Update(Input{}, testViewport)
		assert.GreaterOrEqual(t, c.Scale(), last)
		assert.LessOrEqual(t, c.Scale(), cfg.ScaleMax)
		last = c.Scale()
	}
	assert.Equal(t, cfg.ScaleMax, c.Scale())
}

func TestWheelZoomsInOnNarrowRange(t *testing.T) {
	for _, scaleMax := range []float64{1.2, 1.5, 2} {
		cfg := DefaultConfig()
		cfg.InitialScale, cfg.ScaleMax = 1, scaleMax
		c := New(graph.New(graph.DefaultOptions()), cfg)
		c.Feed(Input{}, testViewport)

		last := c.Scale()
		c.Update(Input{Wheel: -400}, testViewport)
		for i := 0; i < 200; i++ {
			c.Update(Input{}, testViewport)
			assert.GreaterOrEqual(t, c.Scale(), last, "scale max %v", scaleMax)
			last = c.Scale()
		}
		assert.Equal(t, scaleMax, c.Scale())

		c.Update(Input{Wheel: 400}, testViewport)
		for i := 0; i < 200; i++ {
			c.Update(Input{}, testViewport)
			assert.LessOrEqual(t, c.Scale(), last, "scale max %v", scaleMax)
			last = c.Scale()
		}
		assert.Equal(t, 1.0, c.Scale())
	}
}

func TestWheelIsSmoothed(t *testing.T) {
	c, _ := newTestController(t)
	before := c.Scale()

	c.Update(Input{Wheel: -100}, testViewport)
	first := c.Scale() - before
	require.Greater(t, first, 0.0)

	c.Update(Input{}, testViewport)
	second := c.Scale() - before - first
	assert.Greater(t, second, 0.0)
	assert.Less(t, second, first)
}

func TestWheelZoomsAroundCursor(t *testing.T) {
	c, _ := newTestController(t)
	cursor := geom.V(200, 150)
	c.Feed(frame(hover(1, cursor)), testViewport)
	before := c.WindowToGraph(cursor)

	for i := 0; i < 5; i++ {
		c.Update(Input{Pointers: []Pointer{hover(1, cursor)}, Wheel: -50}, testViewport)
	}
	require.Greater(t, c.Scale(), 2.0)

	after := c.WindowToGraph(cursor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestPinchScalesByPointerDistance(t *testing.T) {
	c, _ := newTestController(t)

	left := geom.V(300, 300)
	c.Update(frame(press(1, left), press(2, geom.V(500, 300))), testViewport)
	require.True(t, c.Pinching())
	assert.Equal(t, 2.0, c.Scale())
	anchor := c.WindowToGraph(left)

	c.Update(frame(press(1, left), press(2, geom.V(700, 300))), testViewport)
	assert.InDelta(t, 4.0, c.Scale(), 1e-9)
	assert.Equal(t, Panning, c.Mode())

	got := c.WindowToGraph(left)
	assert.InDelta(t, anchor.X, got.X, 1e-9)
	assert.InDelta(t, anchor.Y, got.Y, 1e-9)

	c.Update(frame(press(1, left)), testViewport)
	assert.False(t, c.Pinching())
	assert.InDelta(t, 4.0, c.Scale(), 1e-9)

	// a new second finger starts a fresh baseline
	c.Update(frame(press(1, left), press(3, geom.V(600, 300))), testViewport)
	assert.True(t, c.Pinching())
	assert.InDelta(t, 4.0, c.Scale(), 1e-9)
}

func TestPinchIsClamped(t *testing.T) {
	c, _ := newTestController(t)

	c.Update(frame(press(1, geom.V(390, 300)), press(2, geom.V(410, 300))), testViewport)
	c.Update(frame(press(1, geom.V(0, 300)), press(2, geom.V(800, 300))), testViewport)
	assert.Equal(t, c.Config().ScaleMax, c.Scale())

	c.Update(frame(press(1, geom.V(399, 300)), press(2, geom.V(401, 300))), testViewport)
	assert.Equal(t, 1.0, c.Scale())
}

func TestHoverFindsNode(t *testing.T) {
	c, g := newTestController(t)
	a := g.AddNode(graph.Node{Label: "A", Pos: geom.V(100, 100)})
	p := c.GraphToWindow(g.Node(a).Pos).Add(geom.V(1, 0))

	c.Update(frame(hover(1, p)), testViewport)
	assert.Equal(t, a, c.Hover())
	assert.Equal(t, "A", c.Snapshot().Hover)

	c.Update(frame(hover(1, geom.V(10, 10))), testViewport)
	assert.Equal(t, graph.NoNode, c.Hover())

	c.Update(frame(press(1, p)), testViewport)
	assert.Equal(t, graph.NoNode, c.Hover())
}

func TestHoverClearsWhilePressed(t *testing.T) {
	c, g := newTestController(t)
	a := g.AddNode(graph.Node{Label: "A", Pos: geom.V(100, 100)})
	b := g.AddNode(graph.Node{Label: "B", Pos: geom.V(80, 110)})
	pa := c.GraphToWindow(g.Node(a).Pos)
	pb := c.GraphToWindow(g.Node(b).Pos)

	// a mouse over A while a finger is down elsewhere
	c.Update(frame(hover(1, pa), press(2, geom.V(10, 10))), testViewport)
	assert.Equal(t, graph.NoNode, c.Hover())

	pa = c.GraphToWindow(g.Node(a).Pos)
	pb = c.GraphToWindow(g.Node(b).Pos)
	c.Update(frame(hover(1, pa)), testViewport)
	assert.Equal(t, a, c.Hover())

	// only the first pointer is looked up
	c.Update(frame(hover(1, geom.V(10, 10)), hover(2, pb)), testViewport)
	assert.Equal(t, graph.NoNode, c.Hover())
	c.Update(frame(hover(2, pb), hover(1, pa)), testViewport)
	assert.Equal(t, b, c.Hover())
}

func TestHoverRadiusTracksZoom(t *testing.T) {
	c, g := newTestController(t)

	assert.InDelta(t, 1.5, c.HoverRadius(), 1e-9)
	c.SetScale(4)
	assert.InDelta(t, 0.75, c.HoverRadius(), 1e-9)

	c.Feed(Input{}, Viewport{Rect: geom.Rect{W: 10, H: 10}, DPR: 1})
	assert.Equal(t, g.Options().RepelDistance, c.HoverRadius())

	c.Feed(Input{}, Viewport{})
	assert.Zero(t, c.HoverRadius())
}

func TestSnapshotRoles(t *testing.T) {
	c, g := newTestController(t)
	a := g.AddNode(graph.Node{Label: "A", Pos: geom.V(100, 100)})

	c.Update(frame(
		press(1, c.GraphToWindow(g.Node(a).Pos)),
		press(2, geom.V(100, 100)),
		press(3, geom.V(700, 500)),
	), testViewport)

	s := c.Snapshot()
	require.Len(t, s.Pointers, 3)
	assert.Equal(t, "drag", s.Pointers[0].Role)
	assert.Equal(t, "pan", s.Pointers[1].Role)
	assert.Equal(t, "pinch", s.Pointers[2].Role)
	assert.Equal(t, "A", s.Dragged)
	assert.Equal(t, "dragging", s.Mode)
	assert.True(t, s.Pinching)
}

func TestResetDropsGestures(t *testing.T) {
	c, g := newTestController(t)
	a := g.AddNode(graph.Node{Pos: geom.V(100, 100)})
	c.Update(frame(press(1, c.GraphToWindow(g.Node(a).Pos))), testViewport)
	c.SetScale(5)

	c.Reset()
	assert.Equal(t, Idle, c.Mode())
	assert.False(t, g.Node(a).Anchor)
	assert.Equal(t, 2.0, c.Scale())
	assert.Equal(t, geom.Vec{}, c.Pan())
}
