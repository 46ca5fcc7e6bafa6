package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
	"github.com/san-kum/springbox/internal/viz"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`

// CanvasToSVG converts a Braille canvas to SVG, one dot per set sub-pixel,
// coloured by the ink of its cell.
func CanvasToSVG(canvas *viz.Canvas, theme viz.Theme, scale float64) string {
	if canvas == nil {
		return ""
	}
	w, h := canvas.PixelSize()
	width, height := int(float64(w)*scale), int(float64(h)*scale)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(header, width, height, width, height, theme.Background))

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := theme.InkColor(canvas.Ink[row][col])

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// frame maps world points into a width x height image with y up and a
// 10% margin, keeping the aspect ratio.
type frame struct {
	min    physics.Vec2
	scale  float64
	height float64
	offX   float64
	offY   float64
}

func fit(lo, hi physics.Vec2, width, height int) frame {
	span := hi.Sub(lo)
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	lo = lo.Sub(span.Scale(0.1))
	span = span.Scale(1.2)

	scale := math.Min(float64(width)/span.X, float64(height)/span.Y)
	return frame{
		min:    lo,
		scale:  scale,
		height: float64(height),
		offX:   (float64(width) - span.X*scale) / 2,
		offY:   (float64(height) - span.Y*scale) / 2,
	}
}

func (f frame) point(p physics.Vec2) (float64, float64) {
	x := f.offX + (p.X-f.min.X)*f.scale
	y := f.height - f.offY - (p.Y-f.min.Y)*f.scale
	return x, y
}

func bounds(points []physics.Vec2) (physics.Vec2, physics.Vec2) {
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = physics.V(math.Min(lo.X, p.X), math.Min(lo.Y, p.Y))
		hi = physics.V(math.Max(hi.X, p.X), math.Max(hi.Y, p.Y))
	}
	return lo, hi
}

// SnapshotToSVG draws springs as zigzags and anchors as discs sized by
// mass, fitted to the image.
func SnapshotToSVG(snap sim.Snapshot, width, height int, theme viz.Theme) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(header, width, height, width, height, theme.Background))
	if len(snap.Anchors) == 0 {
		sb.WriteString("</svg>")
		return sb.String()
	}

	lo, hi := snap.Anchors[0].Position, snap.Anchors[0].Position
	for _, a := range snap.Anchors {
		r := physics.V(a.Radius, a.Radius)
		lo = physics.V(math.Min(lo.X, a.Position.X-r.X), math.Min(lo.Y, a.Position.Y-r.Y))
		hi = physics.V(math.Max(hi.X, a.Position.X+r.X), math.Max(hi.Y, a.Position.Y+r.Y))
	}
	f := fit(lo, hi, width, height)

	for _, sp := range snap.Springs {
		ink := viz.InkSpring
		if sp.Selected {
			ink = viz.InkSelected
		}
		coils := int(sp.EndPos.Dist(sp.StartPos) * f.scale / 12)
		if coils > 12 {
			coils = 12
		}
		pts := viz.Zigzag(sp.StartPos, sp.EndPos, coils, 5/f.scale)

		sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="1.5" points="`, theme.InkColor(ink)))
		for i, p := range pts {
			x, y := f.point(p)
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		}
		sb.WriteString(`"/>
`)
	}

	for _, a := range snap.Anchors {
		x, y := f.point(a.Position)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, x, y, math.Max(a.Radius*f.scale, 1), theme.InkColor(viz.AnchorInk(a))))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG creates an SVG path through world points.
func TrajectoryToSVG(points []physics.Vec2, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}
	lo, hi := bounds(points)
	f := fit(lo, hi, width, height)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(header, width, height, width, height, "#0a0a0a"))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, p := range points {
		x, y := f.point(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
