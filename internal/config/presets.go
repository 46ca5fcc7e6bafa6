package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

func engine(gravity bool) Config {
	return Config{
		Dt:              sim.DefaultDt,
		SimToReal:       sim.DefaultSimToReal,
		BoundsThreshold: sim.DefaultBoundsThreshold,
		Gravity:         GravityConfig{Y: sim.DefaultGravityY, Enabled: gravity},
		FPS:             DefaultFPS,
	}
}

func withScene(c Config, scene SceneConfig) *Config {
	c.Scene = scene
	return &c
}

var Presets = map[string]*Config{
	"pendulum": withScene(engine(true), SceneConfig{
		Name: "pendulum",
		Anchors: []AnchorConfig{
			{Name: "root", X: 0, Y: 0, Static: true},
			{Name: "bob", X: 0, Y: -1},
			{Name: "arm", X: 1, Y: 0},
		},
		Springs: []SpringConfig{
			{Start: "root", End: "bob", Law: "linear", Stiffness: 8},
			{Start: "bob", End: "arm", Law: "quadratic", Stiffness: 2},
			{Start: "root", End: "arm", Law: "quadratic", Stiffness: 2},
		},
	}),
	"oscillator": withScene(engine(false), SceneConfig{
		Name: "oscillator",
		Anchors: []AnchorConfig{
			{Name: "root", X: 0, Y: 0, Static: true},
			{Name: "bob", X: 0, Y: -1},
		},
		Springs: []SpringConfig{
			{Start: "root", End: "bob", Law: "linear", Stiffness: 8},
		},
	}),
	"chain":   chain(6, 0.5, 40),
	"lattice": lattice(3, 1, 20),
	"thruster": withScene(engine(false), SceneConfig{
		Name: "thruster",
		Anchors: []AnchorConfig{
			{Name: "root", X: 0, Y: 0, Static: true},
			{Name: "probe", X: 2, Y: 0, VY: 1},
			{Name: "drone", X: 0, Y: 2, VX: -1},
		},
		Springs: []SpringConfig{
			{Start: "root", End: "probe", Law: "constant", Stiffness: 3},
			{Start: "root", End: "drone", Law: "hyperbolic", Stiffness: 4, MaxForce: physics.Bound(3)},
			{Start: "probe", End: "drone", Law: "linear", Stiffness: 1},
		},
	}),
}

// chain hangs n links of a rope below a static hook.
func chain(n int, spacing, k float64) *Config {
	scene := SceneConfig{
		Name:    "chain",
		Anchors: []AnchorConfig{{Name: "hook", Static: true}},
	}
	prev := "hook"
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("link%d", i)
		scene.Anchors = append(scene.Anchors, AnchorConfig{Name: name, X: spacing * float64(i), Y: 0})
		scene.Springs = append(scene.Springs, SpringConfig{Start: prev, End: name, Law: "linear", Stiffness: k})
		prev = name
	}
	scene.Anchors[n].Mass = 2
	return withScene(engine(true), scene)
}

// lattice builds a two-row grid: a static top row and a free bottom row,
// braced with diagonals.
func lattice(cols int, spacing, k float64) *Config {
	scene := SceneConfig{Name: "lattice"}
	name := func(row, col int) string { return fmt.Sprintf("n%d%d", row, col) }
	link := func(a, b string) {
		scene.Springs = append(scene.Springs, SpringConfig{Start: a, End: b, Law: "linear", Stiffness: k})
	}
	for row := 0; row < 2; row++ {
		for col := 0; col < cols; col++ {
			scene.Anchors = append(scene.Anchors, AnchorConfig{
				Name:   name(row, col),
				X:      spacing * float64(col),
				Y:      -spacing * float64(row),
				Static: row == 0,
			})
		}
	}
	for col := 0; col < cols; col++ {
		link(name(0, col), name(1, col))
		if col+1 < cols {
			link(name(1, col), name(1, col+1))
			link(name(0, col), name(1, col+1))
			link(name(0, col+1), name(1, col))
		}
	}
	return withScene(engine(true), scene)
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
