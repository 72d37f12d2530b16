package frame

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/camera"
	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/graph"
	"github.com/TFMV/forcegraph/metrics"
	"github.com/TFMV/forcegraph/physics"
)

var vp = camera.Viewport{Rect: geom.Rect{W: 800, H: 600}, DPR: 1}

func newLoop(t *testing.T, opts ...Option) (*Loop, *graph.Graph) {
	t.Helper()
	g := graph.New(graph.DefaultOptions())
	a := g.AddNode(graph.Node{Label: "A", Pos: geom.V(50, 50)})
	b := g.AddNode(graph.Node{Label: "B", Pos: geom.V(150, 150)})
	require.True(t, g.Connect(a, b, 1))

	cam := camera.New(g, camera.DefaultConfig())
	return New(g, physics.NewSimulator(nil), cam, DefaultConfig(), opts...), g
}

func TestTargetFPS(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		idle time.Duration
		want float64
	}{
		{0, 60},
		{4 * time.Second, 60},
		{10 * time.Second, 60},
		{16 * time.Second, 30},
		{64 * time.Second, 6},
		{10 * time.Minute, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, TargetFPS(cfg, tt.idle), 1e-9, "idle %s", tt.idle)
	}
}

func TestFrameRunsOwedTicks(t *testing.T) {
	l, _ := newLoop(t)
	t0 := time.Unix(1000, 0)

	assert.Zero(t, l.Frame(t0, camera.Input{}, vp))
	assert.Equal(t, 3, l.Frame(t0.Add(55*time.Millisecond), camera.Input{}, vp))

	d := l.Diagnostics(t0.Add(55 * time.Millisecond))
	assert.Equal(t, uint64(3), d.Ticks)
	assert.Equal(t, uint64(2), d.Frames)
	assert.InDelta(t, 60, d.TargetFPS, 1e-9)
	assert.InDelta(t, 1000.0/55, d.FPS, 1e-6)
	assert.Equal(t, "grid", d.Backend)
	assert.Equal(t, 2, d.Nodes)
	assert.Equal(t, 1, d.Edges)
}

func TestFrameSlowsDownWhenIdle(t *testing.T) {
	l, _ := newLoop(t)
	t0 := time.Unix(1000, 0)
	l.Frame(t0, camera.Input{}, vp)
	l.Frame(t0.Add(55*time.Millisecond), camera.Input{}, vp)

	// a long stall is capped and then paced at the idle rate with two
	// ticks per interval
	now := t0.Add(16 * time.Second)
	assert.Equal(t, 12, l.Frame(now, camera.Input{}, vp))
	assert.InDelta(t, 30, l.Diagnostics(now).TargetFPS, 1e-9)

	now = now.Add(100 * time.Millisecond)
	assert.Equal(t, 4, l.Frame(now, camera.Input{}, vp))
}

func TestInteractionRestoresRate(t *testing.T) {
	l, _ := newLoop(t)
	t0 := time.Unix(1000, 0)
	l.Frame(t0, camera.Input{}, vp)

	now := t0.Add(30 * time.Second)
	l.Frame(now, camera.Input{}, vp)
	require.Less(t, l.Diagnostics(now).TargetFPS, 60.0)

	now = now.Add(10 * time.Millisecond)
	l.Frame(now, camera.Input{Wheel: 10}, vp)
	d := l.Diagnostics(now)
	assert.InDelta(t, 60, d.TargetFPS, 1e-9)
	assert.Zero(t, d.Idle)
}

func TestHideDropsToMinimumRate(t *testing.T) {
	l, _ := newLoop(t)
	t0 := time.Unix(1000, 0)
	l.Frame(t0, camera.Input{}, vp)

	l.Hide()
	l.Frame(t0.Add(time.Second), camera.Input{}, vp)
	assert.Equal(t, l.Config().MinFPS, l.Diagnostics(t0).TargetFPS)
}

func TestFrameMovesGraph(t *testing.T) {
	l, g := newLoop(t)
	before := g.Node(g.Nodes()[0]).Pos

	t0 := time.Unix(1000, 0)
	for i := 0; i <= 30; i++ {
		l.Frame(t0.Add(time.Duration(i)*20*time.Millisecond), camera.Input{}, vp)
	}
	assert.NotEqual(t, before, g.Node(g.Nodes()[0]).Pos)
	assert.NoError(t, g.CheckInvariant())
}

func TestFrameRecordsMetricsAndGestures(t *testing.T) {
	reg := metrics.NewRegistry()
	l, g := newLoop(t, WithMetrics(reg))
	a := g.Nodes()[0]

	t0 := time.Unix(1000, 0)
	l.Frame(t0, camera.Input{}, vp)

	p := l.Camera().GraphToWindow(g.Node(a).Pos)
	in := camera.Input{Pointers: []camera.Pointer{{ID: 1, Pos: p, Buttons: 1}}}
	l.Frame(t0.Add(20*time.Millisecond), in, vp)
	require.Equal(t, camera.Dragging, l.Camera().Mode())

	var m dto.Metric
	require.NoError(t, reg.GesturesTotal.WithLabelValues("drag").Write(&m))
	assert.Equal(t, 1.0, m.GetCounter().GetValue())

	m.Reset()
	require.NoError(t, reg.FramesTotal.Write(&m))
	assert.Equal(t, 2.0, m.GetCounter().GetValue())

	m.Reset()
	require.NoError(t, reg.GraphNodesTotal.Write(&m))
	assert.Equal(t, 2.0, m.GetGauge().GetValue())
}
