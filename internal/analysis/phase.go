package analysis

import (
	"math"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/viz"
)

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	Points []physics.Vec2
}

// NewPhasePortrait pairs two series point by point, dropping pairs with a
// NaN in either.
func NewPhasePortrait(xs, ys []float64) *PhasePortrait2D {
	n := min(len(xs), len(ys))
	portrait := &PhasePortrait2D{Points: make([]physics.Vec2, 0, n)}
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		portrait.Points = append(portrait.Points, physics.V(xs[i], ys[i]))
	}
	return portrait
}

// PhasePortraitToASCII plots the portrait on a Braille canvas of width x
// height cells, with axes where they cross the visible area.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}

	lo, hi := portrait.Points[0], portrait.Points[0]
	for _, p := range portrait.Points {
		lo = physics.V(math.Min(lo.X, p.X), math.Min(lo.Y, p.Y))
		hi = physics.V(math.Max(hi.X, p.X), math.Max(hi.Y, p.Y))
	}

	// Add padding
	span := hi.Sub(lo)
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	lo = lo.Sub(span.Scale(0.1))
	hi = hi.Add(span.Scale(0.1))
	span = hi.Sub(lo)

	canvas := viz.NewCanvas(width, height)
	w, h := canvas.PixelSize()
	toPixel := func(p physics.Vec2) (int, int) {
		col := int((p.X - lo.X) / span.X * float64(w-1))
		row := h - 1 - int((p.Y-lo.Y)/span.Y*float64(h-1))
		return col, row
	}

	if lo.X <= 0 && hi.X >= 0 {
		x, _ := toPixel(physics.Vec2{})
		canvas.DrawLine(x, 0, x, h-1, viz.InkAxis)
	}
	if lo.Y <= 0 && hi.Y >= 0 {
		_, y := toPixel(physics.Vec2{})
		canvas.DrawLine(0, y, w-1, y, viz.InkAxis)
	}
	for _, p := range portrait.Points {
		x, y := toPixel(p)
		canvas.Set(x, y, viz.InkSpring)
	}
	return canvas.String()
}

// PoincareSection records points when a trajectory crosses a plane
type PoincareSection struct {
	Points []physics.Vec2
}

// NewPoincareSection records (xs, ys) each time cross passes upward
// through threshold, interpolated to the crossing.
func NewPoincareSection(cross, xs, ys []float64, threshold float64) *PoincareSection {
	section := &PoincareSection{}
	n := min(len(cross), len(xs), len(ys))
	for i := 1; i < n; i++ {
		prev, curr := cross[i-1], cross[i]
		if !(prev < threshold && curr >= threshold) {
			continue
		}
		frac := (threshold - prev) / (curr - prev)
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		x := xs[i-1] + frac*(xs[i]-xs[i-1])
		y := ys[i-1] + frac*(ys[i]-ys[i-1])
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		section.Points = append(section.Points, physics.V(x, y))
	}
	return section
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return PhasePortraitToASCII(&PhasePortrait2D{Points: section.Points}, width, height)
}
