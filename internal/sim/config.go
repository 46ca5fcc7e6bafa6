package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/springbox/internal/physics"
)

const (
	DefaultDt              = 0.01
	DefaultSimToReal       = 1.0
	DefaultBoundsThreshold = 2000.0
	DefaultGravityY        = -9.81
)

// Config holds the engine constants. Dt alone governs the numerics;
// SimToReal only scales the wall-clock cadence of the run loop.
type Config struct {
	Dt              float64
	SimToReal       float64
	BoundsThreshold float64
	Gravity         physics.Vec2
	GravityEnabled  bool
}

func DefaultConfig() Config {
	return Config{
		Dt:              DefaultDt,
		SimToReal:       DefaultSimToReal,
		BoundsThreshold: DefaultBoundsThreshold,
		Gravity:         physics.V(0, DefaultGravityY),
		GravityEnabled:  true,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %v: %w", c.Dt, physics.ErrInvalidArgument)
	}
	if !(c.SimToReal > 0) || math.IsInf(c.SimToReal, 0) {
		return fmt.Errorf("sim_to_real must be positive, got %v: %w", c.SimToReal, physics.ErrInvalidArgument)
	}
	if !(c.BoundsThreshold > 0) {
		return fmt.Errorf("bounds threshold must be positive, got %v: %w", c.BoundsThreshold, physics.ErrInvalidArgument)
	}
	if !c.Gravity.IsFinite() {
		return fmt.Errorf("gravity %v: %w", c.Gravity, physics.ErrInvalidArgument)
	}
	return nil
}

// Interval is the wall-clock time between loop ticks.
func (c Config) Interval() time.Duration {
	d := time.Duration(c.SimToReal * c.Dt * float64(time.Second))
	if d <= 0 {
		d = time.Nanosecond
	}
	return d
}
