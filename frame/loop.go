// Package frame drives simulation ticks and gesture updates from a host's
// frame callbacks, slowing down while nobody interacts with the view.
package frame

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/TFMV/forcegraph/camera"
	"github.com/TFMV/forcegraph/graph"
	"github.com/TFMV/forcegraph/metrics"
	"github.com/TFMV/forcegraph/physics"
)

// Config tunes the frame loop.
type Config struct {
	// MaxFPS is the target rate while the view is in use.
	MaxFPS float64 `json:"max_fps" yaml:"max_fps" toml:"max_fps" validate:"gt=0"`
	// MinFPS is the floor the idle slow-down stops at.
	MinFPS float64 `json:"min_fps" yaml:"min_fps" toml:"min_fps" validate:"gt=0,ltefield=MaxFPS"`
	// IdleDelay is how long the loop keeps MaxFPS after the last input.
	IdleDelay time.Duration `json:"idle_delay" yaml:"idle_delay" toml:"idle_delay" validate:"gte=0"`
	// IdleRamp is the time over which the rate halves once idle.
	IdleRamp time.Duration `json:"idle_ramp" yaml:"idle_ramp" toml:"idle_ramp" validate:"gt=0"`
	// MaxTicksPerFrame caps the catch-up multiplier at low rates.
	MaxTicksPerFrame int `json:"max_ticks_per_frame" yaml:"max_ticks_per_frame" toml:"max_ticks_per_frame" validate:"gte=1"`
	// MaxOwed caps the intervals made up in one frame; anything beyond is
	// dropped.
	MaxOwed int     `json:"max_owed" yaml:"max_owed" toml:"max_owed" validate:"gte=1"`
	Alpha   float64 `json:"alpha" yaml:"alpha" toml:"alpha" validate:"gt=0,lte=1"`
}

// DefaultConfig returns the default loop settings.
func DefaultConfig() Config {
	return Config{
		MaxFPS:           60,
		MinFPS:           1,
		IdleDelay:        4 * time.Second,
		IdleRamp:         6 * time.Second,
		MaxTicksPerFrame: 3,
		MaxOwed:          6,
		Alpha:            1,
	}
}

// TargetFPS returns the frame rate for a view that has been idle for the
// given time: MaxFPS until IdleDelay+IdleRamp, then
// MaxFPS / ((idle-IdleDelay)/IdleRamp), never below MinFPS.
func TargetFPS(cfg Config, idle time.Duration) float64 {
	ramp := float64(idle-cfg.IdleDelay) / float64(cfg.IdleRamp)
	return math.Max(cfg.MaxFPS/math.Max(ramp, 1), cfg.MinFPS)
}

// Diagnostics is a snapshot of the loop state.
type Diagnostics struct {
	FPS       float64         `json:"fps"`
	TargetFPS float64         `json:"target_fps"`
	Ticks     uint64          `json:"ticks"`
	Frames    uint64          `json:"frames"`
	Moved     int             `json:"moved"`
	Idle      time.Duration   `json:"idle"`
	Backend   string          `json:"backend"`
	Nodes     int             `json:"nodes"`
	Edges     int             `json:"edges"`
	Camera    camera.Snapshot `json:"camera"`
}

// Option configures a Loop.
type Option func(*Loop)

// WithMetrics records ticks, frames and gestures into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(l *Loop) { l.metrics = r }
}

// WithLogger sets the logger used for gesture transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// Loop owns nothing but timing state; the graph, simulator and controller
// are shared with the host, which must call Frame from a single goroutine.
type Loop struct {
	cfg     Config
	g       *graph.Graph
	sim     *physics.Simulator
	cam     *camera.Controller
	metrics *metrics.Registry
	logger  *slog.Logger

	started         bool
	lastFrame       time.Time
	lastLimit       time.Time
	lastInteraction time.Time
	prev            camera.Input

	fps       float64
	targetFPS float64
	ticks     uint64
	frames    uint64
	moved     int

	mode     camera.Mode
	pinching bool
}

// New creates a loop over a graph, a simulator and a camera controller.
func New(g *graph.Graph, sim *physics.Simulator, cam *camera.Controller, cfg Config, opts ...Option) *Loop {
	l := &Loop{
		cfg:       cfg,
		g:         g,
		sim:       sim,
		cam:       cam,
		logger:    slog.Default(),
		targetFPS: cfg.MaxFPS,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the active settings.
func (l *Loop) Config() Config { return l.cfg }

// SetConfig replaces the settings; timing state is kept.
func (l *Loop) SetConfig(cfg Config) { l.cfg = cfg }

// Simulator returns the simulator in use.
func (l *Loop) Simulator() *physics.Simulator { return l.sim }

// SetSimulator swaps the simulator, e.g. to change the repulsion backend.
func (l *Loop) SetSimulator(sim *physics.Simulator) { l.sim = sim }

// Camera returns the camera controller.
func (l *Loop) Camera() *camera.Controller { return l.cam }

// Graph returns the simulated graph.
func (l *Loop) Graph() *graph.Graph { return l.g }

// Interact marks user activity at t, restoring the full frame rate.
func (l *Loop) Interact(t time.Time) {
	if t.After(l.lastInteraction) {
		l.lastInteraction = t
	}
}

// Hide drops the loop to its slowest rate, as when the view is not visible.
func (l *Loop) Hide() {
	l.lastInteraction = time.Time{}
}

// Frame runs the ticks owed at time now and returns how many ran. Each tick
// runs one simulation step followed by one gesture step.
func (l *Loop) Frame(now time.Time, in camera.Input, vp camera.Viewport) int {
	if !l.started {
		l.started = true
		l.lastFrame, l.lastLimit = now, now
		if l.lastInteraction.IsZero() {
			l.lastInteraction = now
		}
	}
	if inputChanged(l.prev, in) {
		l.Interact(now)
	}
	l.prev = in
	l.prev.Pointers = slices.Clone(in.Pointers)

	l.cam.Feed(in, vp)

	idle := now.Sub(l.lastInteraction)
	if l.lastInteraction.IsZero() {
		idle = time.Duration(math.MaxInt64)
	}
	l.targetFPS = TargetFPS(l.cfg, idle)
	interval := time.Duration(float64(time.Second) / l.targetFPS)

	owed := 0
	if interval > 0 {
		owed = int(now.Sub(l.lastLimit) / interval)
	}
	if owed > l.cfg.MaxOwed {
		owed = l.cfg.MaxOwed
		l.lastLimit = now
	} else if owed > 0 {
		l.lastLimit = l.lastLimit.Add(time.Duration(owed) * interval)
	}

	if dt := now.Sub(l.lastFrame); dt > 0 {
		l.fps = float64(time.Second) / float64(dt)
	}
	l.lastFrame = now

	ticks := owed * min(int(l.cfg.MaxFPS/l.targetFPS), l.cfg.MaxTicksPerFrame)
	for range ticks {
		start := time.Now()
		l.moved = l.sim.Step(l.g, l.cfg.Alpha)
		if l.metrics != nil {
			l.metrics.RecordTick(l.sim.Backend().Name(), l.moved, time.Since(start))
		}
		l.cam.Step()
		l.observeGestures()
	}
	l.ticks += uint64(ticks)
	l.frames++

	if l.metrics != nil {
		l.metrics.RecordFrame(ticks, l.fps, l.targetFPS, l.cam.Scale())
		l.metrics.UpdateGraphSize(l.g.Len(), len(l.g.Edges()))
	}
	return ticks
}

// observeGestures logs and counts gesture starts.
func (l *Loop) observeGestures() {
	mode, pinching := l.cam.Mode(), l.cam.Pinching()
	if mode != l.mode {
		l.logger.Debug("gesture changed", "from", l.mode.String(), "to", mode.String())
		if mode != camera.Idle && l.metrics != nil {
			gesture := "pan"
			if mode == camera.Dragging {
				gesture = "drag"
			}
			l.metrics.RecordGesture(gesture)
		}
	}
	if pinching && !l.pinching && l.metrics != nil {
		l.metrics.RecordGesture("pinch")
	}
	l.mode, l.pinching = mode, pinching
}

// Diagnostics returns the current loop state.
func (l *Loop) Diagnostics(now time.Time) Diagnostics {
	idle := now.Sub(l.lastInteraction)
	if l.lastInteraction.IsZero() {
		idle = 0
	}
	return Diagnostics{
		FPS:       l.fps,
		TargetFPS: l.targetFPS,
		Ticks:     l.ticks,
		Frames:    l.frames,
		Moved:     l.moved,
		Idle:      idle,
		Backend:   l.sim.Backend().Name(),
		Nodes:     l.g.Len(),
		Edges:     len(l.g.Edges()),
		Camera:    l.cam.Snapshot(),
	}
}

func inputChanged(prev, in camera.Input) bool {
	return in.Wheel != 0 ||
		prev.Modifiers != in.Modifiers ||
		!slices.Equal(prev.Pointers, in.Pointers)
}
