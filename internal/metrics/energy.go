package metrics

import (
	"math"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

// Kinetic is the sum of ½mv² over free anchors.
func Kinetic(snap sim.Snapshot) float64 {
	ke := 0.0
	for _, a := range snap.Anchors {
		if a.Mode != physics.Free {
			continue
		}
		ke += 0.5 * a.Mass * a.Velocity.LenSq()
	}
	return ke
}

// Potential is the spring potential plus, when gravity is on, −m·g·p for
// every free anchor. Spring clamps are ignored.
func Potential(snap sim.Snapshot) float64 {
	pe := 0.0
	for _, sp := range snap.Springs {
		d := sp.EndPos.Dist(sp.StartPos)
		if d == 0 {
			continue
		}
		pe += sp.Law.Potential(sp.Stiffness, d)
	}
	if snap.GravityEnabled {
		for _, a := range snap.Anchors {
			if a.Mode != physics.Free {
				continue
			}
			pe -= a.Mass * snap.Gravity.Dot(a.Position)
		}
	}
	return pe
}

// Total is Kinetic plus Potential.
func Total(snap sim.Snapshot) float64 {
	return Kinetic(snap) + Potential(snap)
}

type Energy struct {
	name    string
	latest  float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) OnStep(snap sim.Snapshot) {
	e.latest = Total(snap)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.latest
}

func (e *Energy) Reset() {
	e.latest = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative deviation from the first energy
// it observed.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) OnStep(snap sim.Snapshot) {
	energy := Total(snap)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
