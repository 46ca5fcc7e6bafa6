package metrics

import (
	"math"

	"github.com/san-kum/springbox/internal/sim"
)

// Extent is the largest distance from the origin reached by any anchor.
type Extent struct {
	name    string
	maxDist float64
}

func NewExtent() *Extent {
	return &Extent{name: "extent"}
}

func (e *Extent) Name() string {
	return e.name
}

func (e *Extent) OnStep(snap sim.Snapshot) {
	for _, a := range snap.Anchors {
		e.maxDist = math.Max(e.maxDist, a.Position.Len())
	}
}

func (e *Extent) Value() float64 {
	return e.maxDist
}

func (e *Extent) Reset() {
	e.maxDist = 0
}
