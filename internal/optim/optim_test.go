package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/springbox/internal/config"
	"github.com/san-kum/springbox/internal/physics"
)

func TestGridSearch(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{0, 1, 2, 3}, {-1, 0, 1}})
	params, best, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		return (p["x"]-2)*(p["x"]-2) + p["y"]*p["y"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if params["x"] != 2 || params["y"] != 0 || best != 0 {
		t.Errorf("expected x=2 y=0 score 0, got %v %g", params, best)
	}
}

func TestGridSearch_SkipsFailures(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	params, best, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["x"] == 3 {
			return 0, errors.New("boom")
		}
		if p["x"] == 2 {
			return math.NaN(), nil
		}
		return p["x"], nil
	})
	if err != nil || params["x"] != 1 || best != 1 {
		t.Errorf("expected x=1, got %v %g %v", params, best, err)
	}

	_, _, err = g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, errors.New("boom")
	})
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestGridSearch_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3, 4}})
	_, _, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) {
		calls++
		cancel()
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("expected cancel after one call, got %v after %d", err, calls)
	}
}

func TestApply(t *testing.T) {
	cfg := config.GetPreset("pendulum")
	err := Apply(cfg, map[string]float64{"bob.mass": 2, "arm-bob.k": 5, "gravity": -1, "dt": 0.005})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene.Anchors[1].Mass != 2 || cfg.Scene.Springs[1].Stiffness != 5 || cfg.Gravity.Y != -1 || cfg.Dt != 0.005 {
		t.Errorf("parameters not applied: %+v", cfg)
	}

	tests := []struct {
		params map[string]float64
		want   error
	}{
		{map[string]float64{"ghost.mass": 1}, physics.ErrNotFound},
		{map[string]float64{"root-ghost.k": 1}, physics.ErrNotFound},
		{map[string]float64{"rootbob.k": 1}, physics.ErrInvalidArgument},
		{map[string]float64{"spin": 1}, physics.ErrInvalidArgument},
		{map[string]float64{"dt": -1}, physics.ErrInvalidArgument},
	}
	for _, tt := range tests {
		if err := Apply(config.GetPreset("pendulum"), tt.params); !errors.Is(err, tt.want) {
			t.Errorf("%v: expected %v, got %v", tt.params, tt.want, err)
		}
	}
}

func TestSceneObjective(t *testing.T) {
	obj := SceneObjective(config.GetPreset("oscillator"), 200, "extent")
	v, err := obj(context.Background(), map[string]float64{"root-bob.k": 8})
	if err != nil {
		t.Fatal(err)
	}
	if v < 0.99 || v > 1.1 {
		t.Errorf("oscillator extent should stay near 1, got %f", v)
	}

	if _, err := SceneObjective(config.GetPreset("oscillator"), 10, "nope")(context.Background(), nil); !errors.Is(err, physics.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for an unknown metric, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := obj(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseRange(t *testing.T) {
	name, vals, err := ParseRange("bob.mass=1:2:3")
	if err != nil {
		t.Fatal(err)
	}
	if name != "bob.mass" || len(vals) != 3 || vals[0] != 1 || vals[1] != 1.5 || vals[2] != 2 {
		t.Errorf("unexpected %s %v", name, vals)
	}
	if _, vals, _ := ParseRange("dt=0.01"); len(vals) != 1 || vals[0] != 0.01 {
		t.Errorf("single value: %v", vals)
	}
	for _, bad := range []string{"x", "=1", "x=a", "x=1:2", "x=1:2:0", "x=1:b:2"} {
		if _, _, err := ParseRange(bad); !errors.Is(err, physics.ErrInvalidArgument) {
			t.Errorf("%q: expected ErrInvalidArgument, got %v", bad, err)
		}
	}
}
