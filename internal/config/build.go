package config

import (
	"fmt"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

// Build validates cfg and returns a simulation seeded with its scene, along
// with the handle of every named anchor. The run loop is not started.
func Build(cfg *Config, opts ...sim.Option) (*sim.Simulation, map[string]sim.AnchorID, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	s, err := sim.New(cfg.SimConfig(), opts...)
	if err != nil {
		return nil, nil, err
	}

	ids := make(map[string]sim.AnchorID, len(cfg.Scene.Anchors))
	for _, a := range cfg.Scene.Anchors {
		mass := a.Mass
		if mass == 0 {
			mass = physics.DefaultMass
		}
		mode := physics.Free
		if a.Static {
			mode = physics.Static
		}
		id, err := s.AddAnchor(physics.V(a.X, a.Y), mass, mode)
		if err != nil {
			return nil, nil, fmt.Errorf("build anchor %q: %w", a.Name, err)
		}
		if !a.Static && (a.VX != 0 || a.VY != 0) {
			if err := s.Kick(id, physics.V(a.VX, a.VY)); err != nil {
				return nil, nil, fmt.Errorf("build anchor %q: %w", a.Name, err)
			}
		}
		ids[a.Name] = id
	}

	for i, sp := range cfg.Scene.Springs {
		law, _ := physics.ParseLaw(sp.Law)
		if _, err := s.AddSpring(ids[sp.Start], ids[sp.End], law, sp.Stiffness, sp.MinForce, sp.MaxForce); err != nil {
			return nil, nil, fmt.Errorf("build spring %d: %w", i, err)
		}
	}
	return s, ids, nil
}
