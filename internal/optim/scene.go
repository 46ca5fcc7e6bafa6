package optim

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/san-kum/springbox/internal/config"
	"github.com/san-kum/springbox/internal/metrics"
	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

var quiet = log.New(io.Discard, "", 0)

// Apply sets named scene parameters on cfg. Accepted names are dt,
// gravity (the y component), <anchor>.mass and <start>-<end>.k for the
// first spring joining those anchors.
func Apply(cfg *config.Config, params map[string]float64) error {
	for name, v := range params {
		if err := apply(cfg, name, v); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "dt":
		cfg.Dt = v
		return nil
	case "gravity":
		cfg.Gravity.Y = v
		return nil
	}

	if anchor, ok := strings.CutSuffix(name, ".mass"); ok {
		for i := range cfg.Scene.Anchors {
			if cfg.Scene.Anchors[i].Name == anchor {
				cfg.Scene.Anchors[i].Mass = v
				return nil
			}
		}
		return fmt.Errorf("parameter %q: no anchor %q: %w", name, anchor, physics.ErrNotFound)
	}
	if pair, ok := strings.CutSuffix(name, ".k"); ok {
		start, end, ok := strings.Cut(pair, "-")
		if !ok {
			return fmt.Errorf("parameter %q: want <start>-<end>.k: %w", name, physics.ErrInvalidArgument)
		}
		for i := range cfg.Scene.Springs {
			sp := &cfg.Scene.Springs[i]
			if (sp.Start == start && sp.End == end) || (sp.Start == end && sp.End == start) {
				sp.Stiffness = v
				return nil
			}
		}
		return fmt.Errorf("parameter %q: no spring %s-%s: %w", name, start, end, physics.ErrNotFound)
	}
	return fmt.Errorf("unknown parameter %q: %w", name, physics.ErrInvalidArgument)
}

// SceneObjective runs base with the parameters applied for steps ticks
// and scores it by the named metric from metrics.Default.
func SceneObjective(base *config.Config, steps int, metric string) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := base.Clone()
		if err := Apply(cfg, params); err != nil {
			return 0, err
		}
		set := metrics.Default()
		s, _, err := config.Build(cfg, sim.WithLogger(quiet))
		if err != nil {
			return 0, err
		}
		s.AddObserver(set)
		for i := 0; i < steps; i++ {
			if i%100 == 0 {
				if err := ctx.Err(); err != nil {
					return 0, err
				}
			}
			if err := s.Step(); err != nil {
				return 0, err
			}
		}
		v, ok := set.Values()[metric]
		if !ok {
			return 0, fmt.Errorf("unknown metric %q: %w", metric, physics.ErrInvalidArgument)
		}
		return v, nil
	}
}

// ParseRange parses name=from:to:n into n evenly spaced values, or
// name=v into a single value.
func ParseRange(s string) (string, []float64, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("range %q: want name=from:to:n: %w", s, physics.ErrInvalidArgument)
	}
	parts := strings.Split(rng, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", s, physics.ErrInvalidArgument)
		}
		return name, []float64{v}, nil
	case 3:
		from, err1 := strconv.ParseFloat(parts[0], 64)
		to, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return "", nil, fmt.Errorf("range %q: %w", s, physics.ErrInvalidArgument)
		}
		if n == 1 {
			return name, []float64{from}, nil
		}
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = from + (to-from)*float64(i)/float64(n-1)
		}
		return name, vals, nil
	}
	return "", nil, fmt.Errorf("range %q: want name=from:to:n: %w", s, physics.ErrInvalidArgument)
}
