package viz

import (
	"math"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

// Zigzag returns the polyline of a coiled spring from a to b: straight
// leads at each end with coils of half-width amp between them.
func Zigzag(a, b physics.Vec2, coils int, amp float64) []physics.Vec2 {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 || coils < 1 {
		return []physics.Vec2{a, b}
	}
	dir := d.Scale(1 / l)
	n := dir.Perp().Scale(amp)
	lead := l * 0.1

	pts := make([]physics.Vec2, 0, 2*coils+3)
	pts = append(pts, a, a.Add(dir.Scale(lead)))
	body := l - 2*lead
	for i := 0; i < 2*coils; i++ {
		t := lead + body*(float64(i)+0.5)/float64(2*coils)
		side := n
		if i%2 == 1 {
			side = n.Neg()
		}
		pts = append(pts, a.Add(dir.Scale(t)).Add(side))
	}
	pts = append(pts, b.Sub(dir.Scale(lead)), b)
	return pts
}

// GridSpacing picks the decade spacing whose minor lines are at least
// minPx sub-pixels apart at zoom.
func GridSpacing(zoom, minPx float64) float64 {
	return math.Pow(10, math.Ceil(math.Log10(minPx/zoom)))
}

// Scene rasterizes snapshots onto a canvas through a camera.
type Scene struct {
	Camera   *Camera
	ShowGrid bool
}

func NewScene(cam *Camera) *Scene {
	return &Scene{Camera: cam, ShowGrid: true}
}

// Draw clears c and paints grid, springs, then anchors.
func (s *Scene) Draw(c *Canvas, snap sim.Snapshot) {
	c.Clear()
	w, h := c.PixelSize()
	s.Camera.Resize(w, h)

	if s.ShowGrid {
		s.drawGrid(c)
	}
	for _, sp := range snap.Springs {
		s.drawSpring(c, sp)
	}
	for _, a := range snap.Anchors {
		s.drawAnchor(c, a)
	}
}

func (s *Scene) point(p physics.Vec2) (int, int) {
	x, y := s.Camera.WorldToScreen(p)
	return int(math.Round(x)), int(math.Round(y))
}

func (s *Scene) drawGrid(c *Canvas) {
	w, h := c.PixelSize()
	step := GridSpacing(s.Camera.Zoom, 8)
	lo := s.Camera.ScreenToWorld(0, float64(h))
	hi := s.Camera.ScreenToWorld(float64(w), 0)

	for k := math.Floor(lo.X / step); k*step <= hi.X; k++ {
		x, _ := s.point(physics.V(k*step, 0))
		ink, stride := gridStyle(int64(k))
		for y := 0; y < h; y += stride {
			c.Set(x, y, ink)
		}
	}
	for k := math.Floor(lo.Y / step); k*step <= hi.Y; k++ {
		_, y := s.point(physics.V(0, k*step))
		ink, stride := gridStyle(int64(k))
		for x := 0; x < w; x += stride {
			c.Set(x, y, ink)
		}
	}
}

// gridStyle dims minor lines; every tenth line is a major one and the
// axes are drawn solid.
func gridStyle(k int64) (Ink, int) {
	switch {
	case k == 0:
		return InkAxis, 1
	case k%10 == 0:
		return InkGrid, 2
	}
	return InkGrid, 6
}

func (s *Scene) drawSpring(c *Canvas, sp sim.SpringView) {
	ink := InkSpring
	if sp.Selected {
		ink = InkSelected
	}
	l := sp.EndPos.Dist(sp.StartPos) * s.Camera.Zoom
	coils := int(l / 6)
	if coils > 12 {
		coils = 12
	}
	amp := 1.5 / s.Camera.Zoom
	pts := Zigzag(sp.StartPos, sp.EndPos, coils, amp)
	for i := 1; i < len(pts); i++ {
		x0, y0 := s.point(pts[i-1])
		x1, y1 := s.point(pts[i])
		c.DrawLine(x0, y0, x1, y1, ink)
	}
}

func (s *Scene) drawAnchor(c *Canvas, a sim.AnchorView) {
	x, y := s.point(a.Position)
	r := int(math.Round(a.Radius * s.Camera.Zoom))
	c.FillDisc(x, y, r, AnchorInk(a))
}

// AnchorInk picks the colour class for an anchor.
func AnchorInk(a sim.AnchorView) Ink {
	switch {
	case a.Selected:
		return InkSelected
	case a.Mode == physics.Pinned:
		return InkPinned
	case a.Mode == physics.Static:
		return InkStatic
	}
	return InkAnchor
}
