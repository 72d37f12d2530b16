package render

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/camera"
	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
)

func pairScene(t *testing.T) (*Scene, graph.NodeID, graph.NodeID) {
	t.Helper()
	g := graph.New(graph.DefaultOptions())
	a := g.AddNode(graph.Node{Key: "a", Label: "A", Pos: geom.V(50, 50), Mass: 1})
	b := g.AddNode(graph.Node{Key: "b", Label: "B", Pos: geom.V(150, 150), Mass: 1})
	require.True(t, g.Connect(a, b, 1))

	return &Scene{
		Graph:    g,
		Width:    200,
		Height:   200,
		Scale:    1,
		ScaleMax: 7,
		Hover:    graph.NoNode,
		Theme:    DefaultTheme(),
	}, a, b
}

func TestSVG(t *testing.T) {
	s, _, _ := pairScene(t)
	out, err := (&SVGRenderer{}).Render(s)
	require.NoError(t, err)

	svg := string(out)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Equal(t, 1, strings.Count(svg, "<line"))
	assert.NotContains(t, svg, "<text")
	assert.Contains(t, svg, `fill="#f8f8f8"`)
}

func TestSVGHighlightsHover(t *testing.T) {
	s, a, _ := pairScene(t)
	s.Graph.Node(a).Label = "<a&b>"
	s.Hover = a

	out, err := (&SVGRenderer{}).Render(s)
	require.NoError(t, err)

	svg := string(out)
	assert.Equal(t, 1, strings.Count(svg, "<circle"), "the hovered node is drawn as a label")
	assert.Contains(t, svg, "&lt;a&amp;b&gt;</text>")
	assert.Contains(t, svg, `stroke="rgb(129, 140, 248)"`)
}

func TestSVGCullsOffscreen(t *testing.T) {
	s, _, _ := pairScene(t)
	s.Translate = geom.V(-5000, -5000)
	s.Caption = "2 nodes"

	out, err := (&SVGRenderer{}).Render(s)
	require.NoError(t, err)

	svg := string(out)
	assert.Zero(t, strings.Count(svg, "<circle"))
	assert.Zero(t, strings.Count(svg, "<line"))
	assert.Contains(t, svg, ">2 nodes</text>")
}

func TestEdgeStopsAtHighlightedLabel(t *testing.T) {
	s, a, b := pairScene(t)
	s.Hover = a
	e, ok := s.Graph.Edge(a, b)
	require.True(t, ok)

	start, end, ok := s.edgeSegment(e)
	require.True(t, ok)

	na := s.Graph.Node(a)
	assert.InDelta(t, s.labelSize(na), geom.Distance(start, s.local(na.Pos)), 1e-9)
	assert.Equal(t, s.local(s.Graph.Node(b).Pos), end)

	// a label circle swallowing the whole edge leaves nothing to draw
	s.Graph.SetPosition(b, geom.V(52, 52))
	_, _, ok = s.edgeSegment(e)
	assert.False(t, ok)
}

func TestASCII(t *testing.T) {
	s, a, _ := pairScene(t)
	r := &ASCIIRenderer{CellWidth: 10, CellHeight: 20}

	cols, rows := r.Size(s)
	assert.Equal(t, 20, cols)
	assert.Equal(t, 10, rows)

	lines := r.Lines(s)
	require.Len(t, lines, 10)
	assert.Equal(t, 'o', []rune(lines[2])[5])
	assert.Equal(t, 'o', []rune(lines[7])[15])
	assert.Equal(t, '.', []rune(lines[4])[9], "edge runs between the nodes")

	s.Hover = a
	lines = r.Lines(s)
	assert.Equal(t, "@ A", string([]rune(lines[2])[5:8]))

	out, err := r.Render(s)
	require.NoError(t, err)
	assert.Equal(t, 10, strings.Count(string(out), "\n"))
}

func TestASCIIBorder(t *testing.T) {
	s, _, _ := pairScene(t)
	s.Caption = "hi"
	lines := (&ASCIIRenderer{CellWidth: 10, CellHeight: 20, Border: true}).Lines(s)
	assert.Equal(t, "+"+strings.Repeat("-", 18)+"+", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "| hi"))
}

func TestJSONFrame(t *testing.T) {
	s, a, _ := pairScene(t)
	s.Hover = a
	s.Graph.Node(a).Anchor = true

	out, err := (&JSONRenderer{}).Render(s)
	require.NoError(t, err)

	var f Frame
	require.NoError(t, json.Unmarshal(out, &f))
	assert.Equal(t, 200.0, f.GridSize)
	require.Len(t, f.Nodes, 2)
	assert.True(t, f.Nodes[0].Hover)
	assert.True(t, f.Nodes[0].Anchor)
	assert.False(t, f.Nodes[1].Hover)
	assert.Equal(t, [][2]int{{0, 1}}, f.Edges)
	assert.Equal(t, "default", f.Theme.Name)
}

func TestJSONFrameAfterRemoval(t *testing.T) {
	s, a, b := pairScene(t)
	c := s.Graph.AddNode(graph.Node{Label: "C", Pos: geom.V(10, 10)})
	s.Graph.Connect(b, c, 1)
	s.Graph.RemoveNode(a)

	f := NewFrame(s)
	require.Len(t, f.Nodes, 2)
	assert.Equal(t, [][2]int{{0, 1}}, f.Edges)
	assert.Equal(t, "B", f.Nodes[0].Label)
}

func TestDOT(t *testing.T) {
	s, a, b := pairScene(t)
	out, err := (&DOTRenderer{}).Render(s)
	require.NoError(t, err)

	dot := string(out)
	assert.True(t, strings.HasPrefix(dot, "graph G {"))
	assert.Contains(t, dot, `pos="50.000,150.000!"`)
	assert.Contains(t, dot, "n"+strconv.Itoa(a.Slot())+" -- n"+strconv.Itoa(b.Slot()))
}

func TestGetRenderer(t *testing.T) {
	for _, f := range Formats() {
		r, err := GetRenderer(f)
		require.NoError(t, err)
		assert.NotEmpty(t, r.Name())
		assert.NotEmpty(t, r.Description())
	}
	assert.Equal(t, []string{"ascii", "dot", "json", "svg"}, Formats())

	_, err := GetRenderer("png")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestThemeByName(t *testing.T) {
	th, err := ThemeByName("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme(), th)

	th, err = ThemeByName("Surreal")
	require.NoError(t, err)
	assert.Equal(t, "#212121", th.Background)

	_, err = ThemeByName("neon")
	assert.Error(t, err)
}

func TestFromCamera(t *testing.T) {
	g := graph.New(graph.DefaultOptions())
	g.AddNode(graph.Node{Label: "x", Pos: geom.V(100, 100)})
	cam := camera.New(g, camera.DefaultConfig())
	cam.Feed(camera.Input{}, camera.Viewport{Rect: geom.Rect{W: 800, H: 600}, DPR: 1})

	s := FromCamera(cam, DefaultTheme())
	assert.Equal(t, 800.0, s.Width)
	assert.Equal(t, 600.0, s.Height)
	assert.Equal(t, 2.0, s.Scale)
	assert.Equal(t, 7.0, s.ScaleMax)

	p := s.Project(geom.V(100, 100))
	assert.InDelta(t, 400, p.X, 1e-9)
	assert.InDelta(t, 300, p.Y, 1e-9)
	assert.Equal(t, cam.GraphToCanvas(geom.V(30, 70)), s.Project(geom.V(30, 70)))
}
