// Package server hosts a live view of a graph over HTTP. One goroutine runs
// the frame loop and owns the graph; handlers and websocket sessions hand
// it work through a request channel.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/TFMV/forcegraph/camera"
	"github.com/TFMV/forcegraph/config"
	"github.com/TFMV/forcegraph/frame"
	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/metrics"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
	"github.com/TFMV/forcegraph/render"
)

//go:embed static/index.html
var indexHTML []byte

// ErrStopped is returned for work submitted after the frame loop exited.
var ErrStopped = errors.New("frame loop stopped")

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics records HTTP, session and reload metrics into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Server) { s.metrics = r }
}

// WithTheme sets the theme of rendered frames.
func WithTheme(t render.Theme) Option {
	return func(s *Server) { s.theme = t }
}

// WithName sets the dataset name reported by /api/graph.
func WithName(name string) Option {
	return func(s *Server) { s.name = name }
}

// Server is the live viewer host. All viewers share one view of the graph.
type Server struct {
	// cfg is owned by the loop goroutine; srv is fixed at construction.
	cfg     *config.Config
	srv     config.ServerConfig
	loop    *frame.Loop
	logger  *slog.Logger
	metrics *metrics.Registry
	theme   render.Theme
	name    string

	upgrader websocket.Upgrader
	reqs     chan func()
	stopped  chan struct{}

	mu       sync.Mutex
	sessions map[string]*session
	seq      int

	// Owned by the loop goroutine.
	viewport camera.Viewport
	pointers map[string][]camera.Pointer
	wheel    float64
	mods     camera.Modifiers
}

// New creates a server around a frame loop. The loop must not be used by
// anything else once Run has started.
func New(cfg *config.Config, loop *frame.Loop, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		srv:    cfg.Server,
		loop:   loop,
		logger: slog.Default(),
		theme:  render.DefaultTheme(),
		name:   "forcegraph",
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		reqs:     make(chan func()),
		stopped:  make(chan struct{}),
		sessions: make(map[string]*session),
		viewport: camera.Viewport{Rect: geom.Rect{W: 800, H: 800}, DPR: 1},
		pointers: make(map[string][]camera.Pointer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with every route and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/graph", s.handleGraph)
	mux.HandleFunc("GET /api/frame", s.handleFrame)
	mux.HandleFunc("GET /api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("POST /api/reseed", s.handleReseed)
	mux.HandleFunc("POST /api/backend", s.handleBackend)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /ws", s.handleSocket)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var h http.Handler = mux
	h = s.metricsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.recoveryMiddleware(h)
	return h
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.srv.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.srv.ReadTimeout,
		WriteTimeout: s.srv.WriteTimeout,
		IdleTimeout:  s.srv.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeSessions()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Run drives the frame loop until ctx is canceled. It is the only
// goroutine that touches the graph, the camera and the loop.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.stopped)

	ticker := time.NewTicker(s.srv.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-s.reqs:
			fn()
		case now := <-ticker.C:
			s.frame(now)
		}
	}
}

// do runs fn on the loop goroutine and waits for it.
func (s *Server) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case s.reqs <- func() { fn(); close(done) }:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply takes a reloaded configuration. Camera and frame settings change
// live; physics, backend and seed changes are logged and left for a restart.
func (s *Server) Apply(ctx context.Context, next *config.Config) error {
	err := s.do(ctx, func() {
		if s.cfg.RestartRequired(next) {
			s.logger.Warn("physics settings changed, restart to apply them")
		}
		s.loop.SetConfig(next.Frame)
		s.loop.Camera().SetConfig(next.Camera)
		cfg := *next
		cfg.Physics, cfg.Backend, cfg.Seed = s.cfg.Physics, s.cfg.Backend, s.cfg.Seed
		s.cfg = &cfg
	})
	if s.metrics != nil {
		s.metrics.RecordConfigReload(err == nil)
	}
	if err == nil {
		s.logger.Info("config applied")
	}
	return err
}

// input merges the pointers of every session.
func (s *Server) input() camera.Input {
	in := camera.Input{Wheel: s.wheel, Modifiers: s.mods}
	for _, id := range slices.Sorted(maps.Keys(s.pointers)) {
		in.Pointers = append(in.Pointers, s.pointers[id]...)
	}
	return in
}

func (s *Server) frame(now time.Time) {
	ticks := s.loop.Frame(now, s.input(), s.viewport)
	s.wheel = 0
	if ticks == 0 {
		return
	}
	s.broadcast(now)
}

// scene is only valid on the loop goroutine.
func (s *Server) scene() *render.Scene {
	return render.FromCamera(s.loop.Camera(), s.theme)
}

type outMessage struct {
	Type        string             `json:"type"`
	Session     string             `json:"session,omitempty"`
	Frame       *render.Frame      `json:"frame,omitempty"`
	Diagnostics *frame.Diagnostics `json:"diagnostics,omitempty"`
}

func (s *Server) broadcast(now time.Time) {
	s.mu.Lock()
	n := len(s.sessions)
	s.mu.Unlock()
	if n == 0 {
		return
	}

	diag := s.loop.Diagnostics(now)
	data, err := json.Marshal(outMessage{Type: "frame", Frame: render.NewFrame(s.scene()), Diagnostics: &diag})
	if err != nil {
		s.logger.Error("failed to encode frame", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.enqueue(data)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var ds *models.Dataset
	if err := s.do(r.Context(), func() { ds = models.FromGraph(s.name, s.loop.Graph()) }); err != nil {
		s.unavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

var contentTypes = map[string]string{
	"svg":   "image/svg+xml",
	"ascii": "text/plain; charset=utf-8",
	"json":  "application/json",
	"dot":   "text/vnd.graphviz",
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	renderer, err := render.GetRenderer(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	labels := r.URL.Query().Get("labels") == "true"

	var out []byte
	var renderErr error
	if err := s.do(r.Context(), func() {
		scene := s.scene()
		scene.Labels = labels
		out, renderErr = renderer.Render(scene)
	}); err != nil {
		s.unavailable(w, err)
		return
	}
	if renderErr != nil {
		http.Error(w, renderErr.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Write(out)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	var diag frame.Diagnostics
	if err := s.do(r.Context(), func() { diag = s.loop.Diagnostics(time.Now()) }); err != nil {
		s.unavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diag)
}

func (s *Server) handleReseed(w http.ResponseWriter, r *http.Request) {
	policy := r.URL.Query().Get("policy")
	var seedErr error
	if err := s.do(r.Context(), func() {
		if policy == "" {
			policy = s.cfg.Seed.Policy
		}
		seedErr = physics.Seed(policy, s.loop.Graph(), time.Now().UnixNano())
		s.loop.Interact(time.Now())
	}); err != nil {
		s.unavailable(w, err)
		return
	}
	if seedErr != nil {
		http.Error(w, seedErr.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Info("graph reseeded", "policy", policy)
	writeJSON(w, http.StatusOK, map[string]string{"policy": policy})
}

func (s *Server) handleBackend(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	backend, err := physics.NewBackend(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.do(r.Context(), func() {
		s.loop.SetSimulator(physics.NewSimulator(backend))
		s.loop.Interact(time.Now())
	}); err != nil {
		s.unavailable(w, err)
		return
	}
	s.logger.Info("repulsion backend switched", "backend", backend.Name())
	writeJSON(w, http.StatusOK, map[string]string{"backend": backend.Name()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.do(r.Context(), func() { s.loop.Camera().Reset() }); err != nil {
		s.unavailable(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unavailable(w http.ResponseWriter, err error) {
	s.logger.Warn("request not served", "error", err)
	http.Error(w, err.Error(), http.StatusServiceUnavailable)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
