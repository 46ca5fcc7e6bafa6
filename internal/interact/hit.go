package interact

import (
	"math"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

// DefaultTolerance is the pick slack in world units.
const DefaultTolerance = 0.05

// HitTest finds the entity under p. The nearest anchor whose radius plus
// tol covers p wins; otherwise the nearest spring within tol of its segment.
func HitTest(snap sim.Snapshot, p physics.Vec2, tol float64) (sim.Entity, bool) {
	best := math.Inf(1)
	var hit sim.Entity
	for _, a := range snap.Anchors {
		d := a.Position.Dist(p)
		if d <= a.Radius+tol && d < best {
			best, hit = d, a.ID
		}
	}
	if hit != nil {
		return hit, true
	}

	for _, sp := range snap.Springs {
		d := segmentDist(p, sp.StartPos, sp.EndPos)
		if d <= tol && d < best {
			best, hit = d, sp.ID
		}
	}
	return hit, hit != nil
}

func segmentDist(p, a, b physics.Vec2) float64 {
	ab := b.Sub(a)
	l := ab.LenSq()
	if l == 0 {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Scale(t)))
}
