package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/springbox/internal/sim"
	"github.com/san-kum/springbox/internal/viz"
)

const (
	liveWidth   = 70
	liveHeight  = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer draws the scene to a plain terminal as the simulation
// steps, for runs that do not take over the screen. It is a sim.Observer
// and drops frames that arrive faster than frameRate.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
	fitted    bool

	scene  *viz.Scene
	canvas *viz.Canvas
	theme  viz.Theme
}

func NewLiveRenderer(out io.Writer, frameRate int, theme string) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		out:       out,
		frameRate: frameRate,
		scene:     viz.NewScene(viz.NewCamera(frameRate)),
		canvas:    viz.NewCanvas(liveWidth, liveHeight),
		theme:     viz.GetTheme(theme),
	}
}

func (r *LiveRenderer) OnStep(snap sim.Snapshot) {
	if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	if !r.fitted {
		w, h := r.canvas.PixelSize()
		r.scene.Camera.Resize(w, h)
		r.scene.Camera.Fit(anchorPositions(snap))
		r.fitted = true
	}
	r.scene.Camera.Update()
	r.scene.Draw(r.canvas, snap)
	r.render(snap)
}

func (r *LiveRenderer) render(snap sim.Snapshot) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  springbox  %s  t=%.2fs  step %d\n", snap.State, snap.Time, snap.Step))
	b.WriteString("  " + strings.Repeat("-", liveWidth) + "\n")

	for _, row := range strings.Split(r.canvas.Render(r.theme), "\n") {
		b.WriteString("  ")
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", liveWidth) + "\n")
	b.WriteString(fmt.Sprintf("  anchors=%d springs=%d\n", len(snap.Anchors), len(snap.Springs)))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
