package metrics

import "github.com/san-kum/springbox/internal/sim"

// Metric is a step observer that reduces snapshots to one number.
// Metrics are not safe for concurrent use; read Value after the run or
// from the observing goroutine.
type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// Set fans a snapshot out to several metrics.
type Set []Metric

func (s Set) OnStep(snap sim.Snapshot) {
	for _, m := range s {
		m.OnStep(snap)
	}
}

// Values maps each metric's name to its current value.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Default returns energy, energy drift and extent.
func Default() Set {
	return Set{NewEnergy(), NewEnergyDrift(), NewExtent()}
}
