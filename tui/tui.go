// Package tui is a terminal viewer for a live graph. Each character cell
// is one pixel wide and two pixels tall, so mouse cells map straight onto
// the pointer roster the camera expects.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TFMV/forcegraph/camera"
	"github.com/TFMV/forcegraph/frame"
	"github.com/TFMV/forcegraph/geom"
	"github.com/TFMV/forcegraph/physics"
	"github.com/TFMV/forcegraph/render"
)

const (
	cellWidth  = 1
	cellHeight = 2

	// wheelNotch is the wheel delta of one scroll step, as a browser
	// reports it.
	wheelNotch = 100

	mousePointer = 1
)

var policies = []string{
	physics.SeedPolicySmart,
	physics.SeedPolicySpread,
	physics.SeedPolicyRandom,
	physics.SeedPolicyNoise,
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#818CF8")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	modeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F87171"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E676"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

type tickMsg time.Time

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. Terminal hosts should log to a file, never to
// the terminal the viewer draws on.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithTick sets the period of frame callbacks.
func WithTick(d time.Duration) Option {
	return func(m *Model) { m.tick = d }
}

// WithSeedPolicy sets the policy used by the reseed key.
func WithSeedPolicy(policy string) Option {
	return func(m *Model) { m.policy = policy }
}

// WithName sets the title shown in the status bar.
func WithName(name string) Option {
	return func(m *Model) { m.name = name }
}

// Model is the bubbletea model of the viewer. The loop is driven only from
// Update, so it must not be shared with another goroutine.
type Model struct {
	loop     *frame.Loop
	logger   *slog.Logger
	renderer render.ASCIIRenderer
	help     help.Model
	keys     keyMap

	name   string
	policy string
	tick   time.Duration

	width  int
	height int

	pointer *camera.Pointer
	wheel   float64
	panLock bool
	labels  bool

	diag    frame.Diagnostics
	message string
	err     error
}

// New creates a viewer model around a frame loop.
func New(loop *frame.Loop, opts ...Option) Model {
	m := Model{
		loop:     loop,
		logger:   slog.Default(),
		renderer: render.ASCIIRenderer{CellWidth: cellWidth, CellHeight: cellHeight},
		help:     help.New(),
		keys:     keys,
		name:     "forcegraph",
		policy:   physics.SeedPolicySmart,
		tick:     time.Second / 30,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Run starts the viewer on the terminal and blocks until it quits or ctx is
// canceled.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		m.loop.Frame(now, m.input(), m.viewport())
		m.wheel = 0
		m.diag = m.loop.Diagnostics(now)
		return m, m.tickCmd()

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Y >= m.canvasRows() {
		return
	}
	pos := cellCenter(msg.X, msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.wheel -= wheelNotch
		m.movePointer(pos)
		return
	case tea.MouseButtonWheelDown:
		m.wheel += wheelNotch
		m.movePointer(pos)
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.pointer = &camera.Pointer{ID: mousePointer, Pos: pos, Buttons: 1}
		}
	case tea.MouseActionRelease:
		m.pointer = &camera.Pointer{ID: mousePointer, Pos: pos}
	case tea.MouseActionMotion:
		m.movePointer(pos)
	}
}

func (m *Model) movePointer(pos geom.Vec) {
	if m.pointer == nil {
		m.pointer = &camera.Pointer{ID: mousePointer}
	}
	m.pointer.Pos = pos
}

// cellCenter maps a terminal cell to window pixels.
func cellCenter(x, y int) geom.Vec {
	return geom.V((float64(x)+0.5)*cellWidth, (float64(y)+0.5)*cellHeight)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := time.Now()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Reseed):
		m.reseed(now)

	case key.Matches(msg, m.keys.Policy):
		m.policy = nextPolicy(m.policy)
		m.reseed(now)

	case key.Matches(msg, m.keys.Backend):
		m.switchBackend(now)

	case key.Matches(msg, m.keys.ZoomIn):
		m.wheel -= wheelNotch

	case key.Matches(msg, m.keys.ZoomOut):
		m.wheel += wheelNotch

	case key.Matches(msg, m.keys.Reset):
		m.loop.Camera().Reset()
		m.loop.Interact(now)
		m.setMessage("view reset")

	case key.Matches(msg, m.keys.Pan):
		m.panLock = !m.panLock

	case key.Matches(msg, m.keys.Labels):
		m.labels = !m.labels

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) reseed(now time.Time) {
	if err := physics.Seed(m.policy, m.loop.Graph(), now.UnixNano()); err != nil {
		m.setError(err)
		return
	}
	m.loop.Interact(now)
	m.logger.Info("graph reseeded", "policy", m.policy)
	m.setMessage("reseeded (" + m.policy + ")")
}

func (m *Model) switchBackend(now time.Time) {
	name := physics.BackendQuadTree
	if m.loop.Simulator().Backend().Name() == physics.BackendQuadTree {
		name = physics.BackendGrid
	}
	backend, err := physics.NewBackend(name)
	if err != nil {
		m.setError(err)
		return
	}
	m.loop.SetSimulator(physics.NewSimulator(backend))
	m.loop.Interact(now)
	m.logger.Info("repulsion backend switched", "backend", backend.Name())
	m.setMessage("backend " + backend.Name())
}

func (m *Model) setMessage(s string) {
	m.message, m.err = s, nil
}

func (m *Model) setError(err error) {
	m.message, m.err = "", err
	m.logger.Warn("viewer action failed", "error", err)
}

func nextPolicy(current string) string {
	for i, p := range policies {
		if p == current {
			return policies[(i+1)%len(policies)]
		}
	}
	return policies[0]
}

func (m Model) input() camera.Input {
	in := camera.Input{
		Wheel:     m.wheel,
		Modifiers: camera.Modifiers{Space: m.panLock},
	}
	if m.pointer != nil {
		in.Pointers = []camera.Pointer{*m.pointer}
	}
	return in
}

// canvasRows is the number of terminal rows left for the graph.
func (m Model) canvasRows() int {
	return max(m.height-lipgloss.Height(m.footer()), 1)
}

func (m Model) viewport() camera.Viewport {
	return camera.Viewport{
		Rect: geom.Rect{W: float64(m.width) * cellWidth, H: float64(m.canvasRows()) * cellHeight},
		DPR:  1,
	}
}

func (m Model) footer() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.statusBar(), m.help.View(m.keys))
}

func (m Model) statusBar() string {
	d := m.diag
	mode := d.Camera.Mode
	if mode == "" {
		mode = "idle"
	}
	if m.panLock {
		mode += " (pan lock)"
	}

	parts := []string{
		fmt.Sprintf("%d nodes %d edges", d.Nodes, d.Edges),
		d.Backend,
		fmt.Sprintf("%.0f/%.0f fps", d.FPS, d.TargetFPS),
		fmt.Sprintf("x%.2f", d.Camera.Scale),
	}
	if d.Camera.Hover != "" {
		parts = append(parts, "hover "+d.Camera.Hover)
	}

	bar := titleStyle.Render(m.name) + " " + modeStyle.Render(mode) +
		statusStyle.Render(strings.Join(parts, "  "))
	switch {
	case m.err != nil:
		bar += " " + errorStyle.Render(m.err.Error())
	case m.message != "":
		bar += " " + messageStyle.Render(m.message)
	}
	return bar
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "starting..."
	}

	scene := render.FromCamera(m.loop.Camera(), render.DefaultTheme())
	scene.Labels = m.labels
	lines := m.renderer.Lines(scene)

	rows := m.canvasRows()
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines[:rows], "\n") + "\n" + m.footer()
}
