package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/san-kum/springbox/internal/physics"
)

const (
	DefaultZoom = 24.0
	MinZoom     = 0.5
	MaxZoom     = 2000.0
)

// Camera maps world coordinates (y up) to canvas sub-pixels (y down):
// screen = center + zoom*(p - Pos). Zoom is in sub-pixels per world unit
// and eases toward its target through a critically damped spring.
type Camera struct {
	Pos  physics.Vec2
	Zoom float64

	width, height int
	target        float64
	zoomVel       float64
	spring        harmonica.Spring
}

func NewCamera(fps int) *Camera {
	if fps <= 0 {
		fps = 30
	}
	return &Camera{
		Zoom:   DefaultZoom,
		target: DefaultZoom,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
	}
}

// Resize sets the viewport in sub-pixels.
func (c *Camera) Resize(w, h int) {
	c.width, c.height = w, h
}

func (c *Camera) center() (float64, float64) {
	return float64(c.width) / 2, float64(c.height) / 2
}

func (c *Camera) WorldToScreen(p physics.Vec2) (float64, float64) {
	cx, cy := c.center()
	return cx + c.Zoom*(p.X-c.Pos.X), cy - c.Zoom*(p.Y-c.Pos.Y)
}

func (c *Camera) ScreenToWorld(x, y float64) physics.Vec2 {
	cx, cy := c.center()
	return physics.V(c.Pos.X+(x-cx)/c.Zoom, c.Pos.Y-(y-cy)/c.Zoom)
}

// CellToWorld maps a terminal cell to the world point under its centre.
func (c *Camera) CellToWorld(col, row int) physics.Vec2 {
	return c.ScreenToWorld(float64(col*2)+1, float64(row*4)+2)
}

// Pan moves the camera by a world offset.
func (c *Camera) Pan(d physics.Vec2) {
	c.Pos = c.Pos.Add(d)
}

// PanCells moves the camera by whole terminal cells.
func (c *Camera) PanCells(cols, rows int) {
	c.Pan(physics.V(float64(cols*2)/c.Zoom, -float64(rows*4)/c.Zoom))
}

// ZoomBy scales the target zoom; the visible zoom follows on Update.
func (c *Camera) ZoomBy(f float64) {
	c.target = math.Max(MinZoom, math.Min(MaxZoom, c.target*f))
}

func (c *Camera) Target() float64 { return c.target }

// Update advances the zoom spring by one frame.
func (c *Camera) Update() {
	c.Zoom, c.zoomVel = c.spring.Update(c.Zoom, c.zoomVel, c.target)
	if c.Zoom < MinZoom {
		c.Zoom, c.zoomVel = MinZoom, 0
	}
}

// Settled reports whether the zoom has reached its target.
func (c *Camera) Settled() bool {
	return math.Abs(c.Zoom-c.target) < 1e-3*c.target && math.Abs(c.zoomVel) < 1e-3
}

// Reset recentres on the origin at the default zoom.
func (c *Camera) Reset() {
	c.Pos = physics.Vec2{}
	c.target = DefaultZoom
}

// Fit centres the camera on the points and targets a zoom that shows them
// all with a margin.
func (c *Camera) Fit(points []physics.Vec2) {
	if len(points) == 0 || c.width == 0 || c.height == 0 {
		c.Reset()
		return
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = physics.V(math.Min(lo.X, p.X), math.Min(lo.Y, p.Y))
		hi = physics.V(math.Max(hi.X, p.X), math.Max(hi.Y, p.Y))
	}
	c.Pos = lo.Add(hi).Scale(0.5)
	span := math.Max(hi.X-lo.X, hi.Y-lo.Y) * 1.4
	if span == 0 {
		c.target = DefaultZoom
		return
	}
	z := math.Min(float64(c.width), float64(c.height)) / span
	c.target = math.Max(MinZoom, math.Min(MaxZoom, z))
}
