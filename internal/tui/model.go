package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/springbox/internal/interact"
	"github.com/san-kum/springbox/internal/metrics"
	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
	"github.com/san-kum/springbox/internal/viz"
)

const (
	headerRows = 2
	footerRows = 3
	historyLen = 240
	pickCells  = 1.5 // pick slack in terminal cells
)

type Options struct {
	FPS       int
	Theme     string
	Stiffness float64
	Mass      float64
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = 30
	}
	if o.Stiffness == 0 {
		o.Stiffness = 8
	}
	if o.Mass <= 0 {
		o.Mass = physics.DefaultMass
	}
	return o
}

type frameMsg time.Time

// Model is the bubbletea model of the sandbox. The simulation runs on its
// own goroutine; the model only reads snapshots once per frame and turns
// input into controller calls.
type Model struct {
	build sim.Factory
	opts  Options
	ctx   context.Context

	sim    *sim.Simulation
	ctrl   *interact.Controller
	scene  *viz.Scene
	canvas *viz.Canvas
	theme  viz.Theme

	snap    sim.Snapshot
	energy  []float64
	law     physics.Law
	cursor  physics.Vec2
	holding bool

	width, height int
	showHelp      bool
	notice        string
	noticeErr     bool
	lastFrame     time.Time
	fps           float64
	err           error
}

// New builds the first simulation and starts its loop under ctx.
func New(ctx context.Context, build sim.Factory, opts Options) (*Model, error) {
	opts = opts.withDefaults()
	m := &Model{
		build:  build,
		opts:   opts,
		ctx:    ctx,
		scene:  viz.NewScene(viz.NewCamera(opts.FPS)),
		theme:  viz.GetTheme(opts.Theme),
		law:    physics.Linear,
		width:  80,
		height: 24,
	}
	if err := m.start(); err != nil {
		return nil, err
	}
	m.layout()
	m.scene.Camera.Fit(anchorPositions(m.snap))
	return m, nil
}

func (m *Model) start() error {
	s, err := m.build()
	if err != nil {
		return err
	}
	if err := s.Start(m.ctx); err != nil {
		return err
	}
	m.sim = s
	m.ctrl = interact.New(s)
	m.snap = s.Snapshot()
	m.energy = m.energy[:0]
	return nil
}

// Close stops the running simulation and waits for its loop.
func (m *Model) Close() error {
	if m.sim == nil {
		return nil
	}
	m.sim.Stop()
	return m.sim.Wait()
}

// Simulation exposes the running simulation.
func (m *Model) Simulation() *sim.Simulation { return m.sim }

func (m *Model) layout() {
	h := m.height - headerRows - footerRows
	if h < 4 {
		h = 4
	}
	w := m.width
	if w < 10 {
		w = 10
	}
	if m.canvas == nil || m.canvas.Width != w || m.canvas.Height != h {
		m.canvas = viz.NewCanvas(w, h)
	}
	pw, ph := m.canvas.PixelSize()
	m.scene.Camera.Resize(pw, ph)
}

func frame(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *Model) Init() tea.Cmd { return frame(m.opts.FPS) }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case frameMsg:
		m.onFrame(time.Time(msg))
		return m, frame(m.opts.FPS)
	}
	return m, nil
}

func (m *Model) onFrame(now time.Time) {
	if !m.lastFrame.IsZero() {
		if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
			m.fps = 1.0 / dt
		}
	}
	m.lastFrame = now

	m.scene.Camera.Update()
	m.ctrl.SetTolerance(pickCells * 2 / m.scene.Camera.Zoom)
	m.snap = m.sim.Snapshot()
	m.energy = append(m.energy, metrics.Total(m.snap))
	if len(m.energy) > historyLen {
		m.energy = m.energy[len(m.energy)-historyLen:]
	}
}

func (m *Model) say(format string, args ...any) {
	m.notice = fmt.Sprintf(format, args...)
	m.noticeErr = false
}

func (m *Model) fail(err error) {
	m.notice = err.Error()
	m.noticeErr = true
}

func (m *Model) world(col, row int) physics.Vec2 {
	return m.scene.Camera.CellToWorld(col, row-headerRows)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := m.world(msg.X, msg.Y)
	m.cursor = p

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			hit, err := m.ctrl.Press(p, msg.Shift || msg.Ctrl)
			if err != nil {
				m.fail(err)
				return
			}
			m.holding = true
			if hit != nil {
				m.say("selected %s", hit)
			}
		case tea.MouseButtonRight:
			m.place(p)
		case tea.MouseButtonWheelUp:
			m.scene.Camera.ZoomBy(1.2)
		case tea.MouseButtonWheelDown:
			m.scene.Camera.ZoomBy(1 / 1.2)
		}
	case tea.MouseActionMotion:
		if m.holding {
			if err := m.ctrl.Motion(p); err != nil {
				m.fail(err)
			}
		}
	case tea.MouseActionRelease:
		m.holding = false
		if err := m.ctrl.Release(); err != nil {
			m.fail(err)
		}
	}
	m.snap = m.sim.Snapshot()
}

func (m *Model) place(p physics.Vec2) {
	id, err := m.ctrl.Place(p, m.opts.Mass)
	if err != nil {
		m.fail(err)
		return
	}
	m.say("placed %s", id)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cam := m.scene.Camera
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if err := m.Close(); err != nil {
			m.err = err
		}
		return m, tea.Quit
	case " ", "p":
		m.say("%s", m.ctrl.TogglePause())
	case "g":
		if m.sim.ToggleGravity() {
			m.say("gravity on")
		} else {
			m.say("gravity off")
		}
	case "a":
		m.place(m.cursor)
	case "s":
		m.say("toggled %d anchor(s)", m.ctrl.ToggleStatic())
	case "l":
		id, err := m.ctrl.Link(m.law, m.opts.Stiffness)
		if err != nil {
			m.fail(err)
			break
		}
		m.say("linked %s (%s k=%g)", id, m.law, m.opts.Stiffness)
	case "d", "x", "delete", "backspace":
		m.say("deleted %d", m.ctrl.DeleteSelected())
	case "u":
		m.sim.UnselectAll()
	case "1", "2", "3", "4":
		m.law = physics.Laws()[msg.String()[0]-'1']
		if n := m.ctrl.SetLaw(m.law); n > 0 {
			m.say("%d spring(s) now %s", n, m.law)
		} else {
			m.say("law %s", m.law)
		}
	case "]":
		m.opts.Stiffness *= 1.25
		m.ctrl.ScaleStiffness(1.25)
		m.say("stiffness %.3g", m.opts.Stiffness)
	case "[":
		m.opts.Stiffness /= 1.25
		m.ctrl.ScaleStiffness(1 / 1.25)
		m.say("stiffness %.3g", m.opts.Stiffness)
	case "m":
		m.ctrl.ScaleMass(2)
	case "M":
		m.ctrl.ScaleMass(0.5)
	case "+", "=":
		cam.ZoomBy(1.25)
	case "-", "_":
		cam.ZoomBy(1 / 1.25)
	case "up", "k":
		cam.PanCells(0, -2)
	case "down", "j":
		cam.PanCells(0, 2)
	case "left", "h":
		cam.PanCells(-4, 0)
	case "right":
		cam.PanCells(4, 0)
	case "c":
		cam.Fit(anchorPositions(m.sim.Snapshot()))
	case "0":
		cam.Reset()
	case "r":
		if err := m.Close(); err != nil && !errors.Is(err, context.Canceled) {
			m.fail(err)
			break
		}
		if err := m.start(); err != nil {
			m.fail(err)
			break
		}
		m.say("scene reset")
	case "t":
		m.theme = m.theme.Next()
		m.say("theme %s", m.theme.Name)
	case "G":
		m.scene.ShowGrid = !m.scene.ShowGrid
	case "?":
		m.showHelp = !m.showHelp
	}
	m.snap = m.sim.Snapshot()
	return m, nil
}

// Err is the error, if any, from stopping the simulation on quit.
func (m *Model) Err() error { return m.err }

func anchorPositions(snap sim.Snapshot) []physics.Vec2 {
	pts := make([]physics.Vec2, len(snap.Anchors))
	for i, a := range snap.Anchors {
		pts[i] = a.Position
	}
	return pts
}

func (m *Model) View() string {
	var b strings.Builder

	state := m.snap.State.String()
	icon := "●"
	if m.snap.State != sim.Running {
		icon = "○"
	}
	gravity := "off"
	if m.snap.GravityEnabled {
		gravity = "on"
	}
	b.WriteString(fmt.Sprintf(" %s %s  %s  %s %s  %s %s  %s %s  %s %s\n",
		viz.StatusStyle(state).Render(icon),
		viz.GradientText("springbox", m.theme.Primary, m.theme.Secondary),
		viz.StatusStyle(state).Render(state),
		viz.MetricLabel.Render("t"), viz.MetricValue.Render(fmt.Sprintf("%.2fs", m.snap.Time)),
		viz.MetricLabel.Render("anchors"), viz.MetricValue.Render(fmt.Sprint(len(m.snap.Anchors))),
		viz.MetricLabel.Render("springs"), viz.MetricValue.Render(fmt.Sprint(len(m.snap.Springs))),
		viz.MetricLabel.Render("gravity"), viz.MetricValue.Render(gravity),
	))
	b.WriteString(viz.Separator(m.width) + "\n")

	if m.showHelp {
		b.WriteString(m.help())
	} else {
		m.scene.Draw(m.canvas, m.snap)
		b.WriteString(m.canvas.Render(m.theme))
	}
	b.WriteString("\n")

	e := 0.0
	if len(m.energy) > 0 {
		e = m.energy[len(m.energy)-1]
	}
	b.WriteString(fmt.Sprintf(" %s %s %s  %s %s  %s %s  %s %s\n",
		viz.MetricLabel.Render("energy"), viz.MetricValue.Render(fmt.Sprintf("%.3f", e)),
		viz.SparklineChart(m.energy, 24),
		viz.MetricLabel.Render("law"), viz.MetricValue.Render(m.law.String()),
		viz.MetricLabel.Render("k"), viz.MetricValue.Render(fmt.Sprintf("%.3g", m.opts.Stiffness)),
		viz.MetricLabel.Render("zoom"), viz.MetricValue.Render(fmt.Sprintf("%.0f", math.Round(m.scene.Camera.Zoom))),
	))

	notice := viz.Notice.Render(m.notice)
	if m.noticeErr {
		notice = viz.NoticeError.Render(m.notice)
	}
	b.WriteString(" " + notice + "\n")
	b.WriteString(viz.KeyHint.Render(" drag move  rclick/a add  l link  d delete  space pause  g gravity  ? help  q quit"))
	return b.String()
}

var helpRows = [][2]string{
	{"left drag", "select and drag (shift adds to selection)"},
	{"right click, a", "add an anchor"},
	{"l", "link the two selected anchors"},
	{"1 2 3 4", "linear, quadratic, constant, hyperbolic"},
	{"[ ]", "spring stiffness"},
	{"m M", "double or halve selected mass"},
	{"s", "toggle static on selection"},
	{"d x", "delete selection"},
	{"u", "clear selection"},
	{"space", "pause or resume"},
	{"g", "toggle gravity"},
	{"arrows, + -, wheel", "pan and zoom"},
	{"c 0", "fit scene, reset camera"},
	{"r", "reset scene"},
	{"t G", "cycle theme, toggle grid"},
	{"q", "quit"},
}

func (m *Model) help() string {
	var b strings.Builder
	for _, row := range helpRows {
		b.WriteString(fmt.Sprintf("%s  %s\n",
			viz.MetricValue.Render(fmt.Sprintf("%-20s", row[0])),
			viz.MetricLabel.Render(row[1])))
	}
	panel := viz.GlassPanel.Render(strings.TrimRight(b.String(), "\n"))
	lines := strings.Count(panel, "\n") + 1
	if pad := m.canvas.Height - lines; pad > 0 {
		panel += strings.Repeat("\n", pad)
	}
	return panel
}
