package physics

import (
	"fmt"
	"math"
	"strings"
)

// Law is the closed set of spring force laws.
type Law uint8

const (
	Linear Law = iota
	Quadratic
	Constant
	Hyperbolic
)

var lawNames = [...]string{
	Linear:     "linear",
	Quadratic:  "quadratic",
	Constant:   "constant",
	Hyperbolic: "hyperbolic",
}

// Laws lists every law in declaration order.
func Laws() []Law { return []Law{Linear, Quadratic, Constant, Hyperbolic} }

func (l Law) String() string {
	if int(l) < len(lawNames) {
		return lawNames[l]
	}
	return fmt.Sprintf("law(%d)", uint8(l))
}

// ParseLaw accepts the law names plus the "hooke"/"hookes" aliases for Linear.
func ParseLaw(s string) (Law, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "hooke", "hookes", "":
		return Linear, nil
	case "quadratic":
		return Quadratic, nil
	case "constant":
		return Constant, nil
	case "hyperbolic":
		return Hyperbolic, nil
	}
	return Linear, fmt.Errorf("unknown force law %q: %w", s, ErrInvalidArgument)
}

// Magnitude is the signed tension for separation d > 0. Positive pulls
// the endpoints together.
func (l Law) Magnitude(k, d float64) float64 {
	switch l {
	case Quadratic:
		return k * d * d
	case Constant:
		return k
	case Hyperbolic:
		return k / d
	default:
		return k * d
	}
}

// Potential is the energy stored at separation d, with dU/dd == Magnitude.
func (l Law) Potential(k, d float64) float64 {
	switch l {
	case Quadratic:
		return k * d * d * d / 3
	case Constant:
		return k * d
	case Hyperbolic:
		return k * math.Log(d)
	default:
		return 0.5 * k * d * d
	}
}

// Spring holds the parameters of a connector. Endpoints are owned by the
// simulation that holds the spring.
type Spring struct {
	Law       Law
	Stiffness float64
	// MinForce and MaxForce clamp the magnitude when non-nil.
	MinForce *float64
	MaxForce *float64

	Selected bool
}

// NewSpring validates the parameters and returns a spring.
func NewSpring(law Law, stiffness float64, minF, maxF *float64) (*Spring, error) {
	s := &Spring{}
	if err := s.Configure(law, stiffness, minF, maxF); err != nil {
		return nil, err
	}
	return s, nil
}

// Configure replaces every parameter at once. On error the spring is unchanged.
func (s *Spring) Configure(law Law, stiffness float64, minF, maxF *float64) error {
	if int(law) >= len(lawNames) {
		return fmt.Errorf("spring law %s: %w", law, ErrInvalidArgument)
	}
	if math.IsNaN(stiffness) || math.IsInf(stiffness, 0) {
		return fmt.Errorf("spring stiffness %v: %w", stiffness, ErrInvalidArgument)
	}
	if minF != nil && maxF != nil && *minF > *maxF {
		return fmt.Errorf("spring clamp [%v, %v]: %w", *minF, *maxF, ErrInvalidArgument)
	}
	s.Law = law
	s.Stiffness = stiffness
	s.MinForce = copyBound(minF)
	s.MaxForce = copyBound(maxF)
	return nil
}

// Magnitude returns the clamped tension at separation d > 0.
func (s *Spring) Magnitude(d float64) float64 {
	m := s.Law.Magnitude(s.Stiffness, d)
	if s.MinForce != nil && m < *s.MinForce {
		m = *s.MinForce
	}
	if s.MaxForce != nil && m > *s.MaxForce {
		m = *s.MaxForce
	}
	return m
}

// Force returns the pair applied to the start and end anchors. Coincident
// endpoints yield zero force.
func (s *Spring) Force(start, end Vec2) (Force, Force) {
	delta := end.Sub(start)
	d := delta.Len()
	if d == 0 {
		return Pair(Vec2{})
	}
	return Pair(delta.Scale(s.Magnitude(d) / d))
}

// Bound returns a pointer to v, for use as a clamp.
func Bound(v float64) *float64 { return &v }

func copyBound(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
