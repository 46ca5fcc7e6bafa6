package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

const (
	DefaultFPS    = 30
	DefaultPreset = "pendulum"
)

type Config struct {
	Dt              float64       `yaml:"dt"`
	SimToReal       float64       `yaml:"sim_to_real"`
	BoundsThreshold float64       `yaml:"bounds_threshold"`
	Gravity         GravityConfig `yaml:"gravity"`
	FPS             int           `yaml:"fps"`
	Scene           SceneConfig   `yaml:"scene"`
}

type GravityConfig struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Enabled bool    `yaml:"enabled"`
}

type SceneConfig struct {
	Name    string         `yaml:"name"`
	Anchors []AnchorConfig `yaml:"anchors"`
	Springs []SpringConfig `yaml:"springs"`
}

// AnchorConfig seeds one anchor. A zero mass means physics.DefaultMass.
type AnchorConfig struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VX     float64 `yaml:"vx,omitempty"`
	VY     float64 `yaml:"vy,omitempty"`
	Mass   float64 `yaml:"mass,omitempty"`
	Static bool    `yaml:"static,omitempty"`
}

// SpringConfig links two anchors by name.
type SpringConfig struct {
	Start     string   `yaml:"start"`
	End       string   `yaml:"end"`
	Law       string   `yaml:"law"`
	Stiffness float64  `yaml:"stiffness"`
	MinForce  *float64 `yaml:"min_force,omitempty"`
	MaxForce  *float64 `yaml:"max_force,omitempty"`
}

// DefaultConfig returns the engine defaults seeded with the pendulum scene.
func DefaultConfig() *Config {
	cfg := &Config{
		Dt:              sim.DefaultDt,
		SimToReal:       sim.DefaultSimToReal,
		BoundsThreshold: sim.DefaultBoundsThreshold,
		Gravity: GravityConfig{
			Y:       sim.DefaultGravityY,
			Enabled: true,
		},
		FPS: DefaultFPS,
	}
	cfg.Scene = GetPreset(DefaultPreset).Scene
	return cfg
}

// Load reads a YAML file over the defaults. A file that names no anchors
// keeps the default scene.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	def := cfg.Scene
	cfg.Scene = SceneConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Scene.Anchors) == 0 && len(cfg.Scene.Springs) == 0 {
		name := cfg.Scene.Name
		cfg.Scene = def
		if name != "" {
			cfg.Scene.Name = name
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func (c *Config) Validate() error {
	if err := c.SimConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("config: fps must be positive, got %d: %w", c.FPS, physics.ErrInvalidArgument)
	}

	names := make(map[string]bool, len(c.Scene.Anchors))
	for i, a := range c.Scene.Anchors {
		if a.Name == "" {
			return fmt.Errorf("config: anchor %d has no name: %w", i, physics.ErrInvalidArgument)
		}
		if names[a.Name] {
			return fmt.Errorf("config: duplicate anchor %q: %w", a.Name, physics.ErrInvalidArgument)
		}
		names[a.Name] = true
		if a.Mass < 0 || math.IsNaN(a.Mass) || math.IsInf(a.Mass, 0) {
			return fmt.Errorf("config: anchor %q mass %v: %w", a.Name, a.Mass, physics.ErrInvalidArgument)
		}
	}

	for i, s := range c.Scene.Springs {
		if !names[s.Start] {
			return fmt.Errorf("config: spring %d start %q: unknown anchor: %w", i, s.Start, physics.ErrInvalidArgument)
		}
		if !names[s.End] {
			return fmt.Errorf("config: spring %d end %q: unknown anchor: %w", i, s.End, physics.ErrInvalidArgument)
		}
		law, err := physics.ParseLaw(s.Law)
		if err != nil {
			return fmt.Errorf("config: spring %d: %w", i, err)
		}
		if _, err := physics.NewSpring(law, s.Stiffness, s.MinForce, s.MaxForce); err != nil {
			return fmt.Errorf("config: spring %d: %w", i, err)
		}
	}
	return nil
}

// SimConfig extracts the engine constants.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:              c.Dt,
		SimToReal:       c.SimToReal,
		BoundsThreshold: c.BoundsThreshold,
		Gravity:         physics.V(c.Gravity.X, c.Gravity.Y),
		GravityEnabled:  c.Gravity.Enabled,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Scene.Anchors = append([]AnchorConfig(nil), c.Scene.Anchors...)
	out.Scene.Springs = nil
	for _, s := range c.Scene.Springs {
		s.MinForce = cloneBound(s.MinForce)
		s.MaxForce = cloneBound(s.MaxForce)
		out.Scene.Springs = append(out.Scene.Springs, s)
	}
	return &out
}

func cloneBound(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return physics.Bound(*p)
}
