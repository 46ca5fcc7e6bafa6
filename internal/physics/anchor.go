package physics

import (
	"fmt"
	"math"
)

// RadiusRatio scales sqrt(mass) into the drawn radius of an anchor.
const RadiusRatio = 0.10876

const DefaultMass = 1.0

// Mode selects how an anchor responds to forces.
type Mode uint8

const (
	Free Mode = iota
	Static
	Pinned
)

func (m Mode) String() string {
	switch m {
	case Free:
		return "free"
	case Static:
		return "static"
	case Pinned:
		return "pinned"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Anchor is a point mass. Its coefficient (inverse mass, or zero while
// immovable) is kept in step with mode and mass by SetMode and SetMass.
type Anchor struct {
	pos    Vec2
	vel    Vec2
	mass   float64
	coef   float64
	radius float64
	mode   Mode
	prePin Mode

	Selected bool
}

// NewAnchor creates an anchor at rest. Pinned is not a valid initial mode.
func NewAnchor(pos Vec2, mass float64, mode Mode) (*Anchor, error) {
	if mode != Free && mode != Static {
		return nil, fmt.Errorf("new anchor with mode %s: %w", mode, ErrInvalidArgument)
	}
	if !pos.IsFinite() {
		return nil, fmt.Errorf("new anchor at %v: %w", pos, ErrInvalidArgument)
	}
	a := &Anchor{pos: pos, mode: mode}
	if err := a.SetMass(mass); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Anchor) Position() Vec2  { return a.pos }
func (a *Anchor) Velocity() Vec2  { return a.vel }
func (a *Anchor) Mass() float64   { return a.mass }
func (a *Anchor) Radius() float64 { return a.radius }
func (a *Anchor) Mode() Mode      { return a.mode }

// Coefficient is the factor applied to forces: 1/mass when free, 0 otherwise.
func (a *Anchor) Coefficient() float64 { return a.coef }

// ApplyForce adds dt*coef*f to the velocity.
func (a *Anchor) ApplyForce(f Force, dt float64) {
	if a.coef == 0 {
		return
	}
	a.vel = a.vel.Add(f.Vec.Scale(dt * a.coef))
}

// Integrate advances the position by dt*velocity. Only free anchors move.
func (a *Anchor) Integrate(dt float64) {
	if a.mode != Free {
		return
	}
	a.pos = a.pos.Add(a.vel.Scale(dt))
}

// SetMode transitions the anchor. Entering Static or Pinned zeroes the
// velocity; a released anchor starts from rest.
func (a *Anchor) SetMode(m Mode) {
	if m == a.mode {
		return
	}
	switch m {
	case Static:
		a.vel = Vec2{}
	case Pinned:
		a.prePin = a.mode
		a.vel = Vec2{}
	}
	a.mode = m
	a.recompute()
}

// Pin enters Pinned mode, remembering the mode to return to.
func (a *Anchor) Pin() { a.SetMode(Pinned) }

// Unpin leaves Pinned mode and returns the anchor to its mode before Pin.
func (a *Anchor) Unpin() error {
	if a.mode != Pinned {
		return fmt.Errorf("unpin %s anchor: %w", a.mode, ErrInvalidState)
	}
	a.SetMode(a.prePin)
	return nil
}

// SetMass changes the mass and recomputes the coefficient and radius.
func (a *Anchor) SetMass(m float64) error {
	if !(m > 0) || math.IsInf(m, 0) {
		return fmt.Errorf("mass %v: %w", m, ErrInvalidArgument)
	}
	a.mass = m
	a.radius = math.Sqrt(m) * RadiusRatio
	a.recompute()
	return nil
}

// SetPosition writes the position directly. Callers decide when this is legal.
func (a *Anchor) SetPosition(p Vec2) { a.pos = p }

// Kick sets the velocity of a free anchor.
func (a *Anchor) Kick(v Vec2) error {
	if a.mode != Free {
		return fmt.Errorf("kick %s anchor: %w", a.mode, ErrInvalidState)
	}
	a.vel = v
	return nil
}

func (a *Anchor) recompute() {
	if a.mode == Free {
		a.coef = 1 / a.mass
	} else {
		a.coef = 0
	}
}
