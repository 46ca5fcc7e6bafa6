package automation

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

const (
	OpAddAnchor = "add_anchor"
	OpAddSpring = "add_spring"
	OpRemove    = "remove"
	OpDrag      = "drag"
	OpMove      = "move"
	OpRelease   = "release"
	OpSelect    = "select"
	OpPause     = "pause"
	OpResume    = "resume"
	OpGravity   = "gravity"
)

// Script is a timed sequence of mutations replayed against a simulation.
type Script struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Steps       int      `yaml:"steps"`
	Actions     []Action `yaml:"actions"`
}

// Action is one scripted mutation, applied before the step of tick At.
// Anchors and springs are referred to by name; names come from the seed
// scene or from earlier add_anchor and add_spring actions. Target is
// on, off or toggle for the gravity op.
type Action struct {
	At        int      `yaml:"at"`
	Op        string   `yaml:"op"`
	Anchor    string   `yaml:"anchor,omitempty"`
	Spring    string   `yaml:"spring,omitempty"`
	Target    string   `yaml:"target,omitempty"`
	Name      string   `yaml:"name,omitempty"`
	X         float64  `yaml:"x,omitempty"`
	Y         float64  `yaml:"y,omitempty"`
	Mass      float64  `yaml:"mass,omitempty"`
	Static    bool     `yaml:"static,omitempty"`
	Start     string   `yaml:"start,omitempty"`
	End       string   `yaml:"end,omitempty"`
	Law       string   `yaml:"law,omitempty"`
	Stiffness float64  `yaml:"stiffness,omitempty"`
	MinForce  *float64 `yaml:"min_force,omitempty"`
	MaxForce  *float64 `yaml:"max_force,omitempty"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate checks the shape of every action. A script with no step count
// runs until one tick past its last action.
func (s *Script) Validate() error {
	if s.Steps < 0 {
		return fmt.Errorf("script: negative steps %d: %w", s.Steps, physics.ErrInvalidArgument)
	}
	for i, a := range s.Actions {
		if a.At < 0 || (s.Steps > 0 && a.At >= s.Steps) {
			return fmt.Errorf("script: action %d at tick %d outside [0, %d): %w", i, a.At, s.Steps, physics.ErrInvalidArgument)
		}
		if err := a.validate(); err != nil {
			return fmt.Errorf("script: action %d: %w", i, err)
		}
	}
	return nil
}

func (a Action) validate() error {
	missing := func(field string) error {
		return fmt.Errorf("%s needs %s: %w", a.Op, field, physics.ErrInvalidArgument)
	}
	switch a.Op {
	case OpAddAnchor:
		if a.Name == "" {
			return missing("name")
		}
	case OpAddSpring:
		if a.Start == "" || a.End == "" {
			return missing("start and end")
		}
		if _, err := physics.ParseLaw(a.Law); err != nil {
			return err
		}
	case OpRemove, OpSelect:
		if (a.Anchor == "") == (a.Spring == "") {
			return missing("exactly one of anchor or spring")
		}
	case OpDrag, OpMove, OpRelease:
		if a.Anchor == "" {
			return missing("anchor")
		}
	case OpGravity:
		switch a.Target {
		case "", "on", "off", "toggle":
		default:
			return fmt.Errorf("gravity target %q: %w", a.Target, physics.ErrInvalidArgument)
		}
	case OpPause, OpResume:
	default:
		return fmt.Errorf("unknown op %q: %w", a.Op, physics.ErrInvalidArgument)
	}
	return nil
}

// Length is the number of ticks the script runs for.
func (s *Script) Length() int {
	if s.Steps > 0 {
		return s.Steps
	}
	n := 0
	for _, a := range s.Actions {
		if a.At+1 > n {
			n = a.At + 1
		}
	}
	return n
}

type Option func(*Player)

func WithLogger(l *log.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// Player applies actions to one simulation, keeping the name to handle
// mapping as entities are added.
type Player struct {
	sim     *sim.Simulation
	anchors map[string]sim.AnchorID
	springs map[string]sim.SpringID
	logger  *log.Logger
}

// NewPlayer wraps s. anchors seeds the names, typically from config.Build.
func NewPlayer(s *sim.Simulation, anchors map[string]sim.AnchorID, opts ...Option) *Player {
	p := &Player{
		sim:     s,
		anchors: make(map[string]sim.AnchorID, len(anchors)),
		springs: make(map[string]sim.SpringID),
		logger:  log.New(io.Discard, "", 0),
	}
	for name, id := range anchors {
		p.anchors[name] = id
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AnchorID resolves a name known to the player.
func (p *Player) AnchorID(name string) (sim.AnchorID, bool) {
	id, ok := p.anchors[name]
	return id, ok
}

func (p *Player) SpringID(name string) (sim.SpringID, bool) {
	id, ok := p.springs[name]
	return id, ok
}

type Result struct {
	Ticks   int
	Steps   int
	Applied int
}

// Replay runs the script tick by tick. Actions scheduled for a tick are
// applied in file order before that tick's step; a tick spent paused
// consumes time without stepping.
func (p *Player) Replay(ctx context.Context, script *Script) (Result, error) {
	if err := script.Validate(); err != nil {
		return Result{}, err
	}
	actions := append([]Action(nil), script.Actions...)
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].At < actions[j].At })

	var res Result
	next := 0
	for tick := 0; tick < script.Length(); tick++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		for next < len(actions) && actions[next].At == tick {
			if err := p.Apply(actions[next]); err != nil {
				return res, fmt.Errorf("tick %d: %w", tick, err)
			}
			res.Applied++
			next++
		}

		if p.sim.State() != sim.Paused {
			if err := p.sim.Step(); err != nil {
				return res, fmt.Errorf("tick %d: %w", tick, err)
			}
			res.Steps++
		}
		res.Ticks++
	}
	return res, nil
}

// Apply performs a single action immediately.
func (p *Player) Apply(a Action) error {
	if err := a.validate(); err != nil {
		return err
	}
	p.logger.Printf("automation: tick %d %s", a.At, a.Op)

	switch a.Op {
	case OpAddAnchor:
		if _, dup := p.anchors[a.Name]; dup {
			return fmt.Errorf("%s: duplicate anchor %q: %w", a.Op, a.Name, physics.ErrInvalidArgument)
		}
		mass := a.Mass
		if mass == 0 {
			mass = physics.DefaultMass
		}
		mode := physics.Free
		if a.Static {
			mode = physics.Static
		}
		id, err := p.sim.AddAnchor(physics.V(a.X, a.Y), mass, mode)
		if err != nil {
			return fmt.Errorf("%s %q: %w", a.Op, a.Name, err)
		}
		p.anchors[a.Name] = id

	case OpAddSpring:
		start, err := p.anchor(a.Start)
		if err != nil {
			return err
		}
		end, err := p.anchor(a.End)
		if err != nil {
			return err
		}
		law, _ := physics.ParseLaw(a.Law)
		id, err := p.sim.AddSpring(start, end, law, a.Stiffness, a.MinForce, a.MaxForce)
		if err != nil {
			return fmt.Errorf("%s: %w", a.Op, err)
		}
		if a.Name != "" {
			p.springs[a.Name] = id
		}

	case OpRemove, OpSelect:
		e, err := p.entity(a)
		if err != nil {
			return err
		}
		if a.Op == OpRemove {
			err = p.sim.Remove(e)
		} else {
			err = p.sim.Select(e)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", a.Op, err)
		}

	case OpDrag, OpMove, OpRelease:
		id, err := p.anchor(a.Anchor)
		if err != nil {
			return err
		}
		switch a.Op {
		case OpDrag:
			err = p.sim.BeginDrag(id)
		case OpMove:
			err = p.sim.SetDragPosition(id, physics.V(a.X, a.Y))
		case OpRelease:
			err = p.sim.EndDrag(id)
		}
		if err != nil {
			return fmt.Errorf("%s %q: %w", a.Op, a.Anchor, err)
		}

	case OpPause:
		p.sim.Pause()
	case OpResume:
		p.sim.Resume()

	case OpGravity:
		switch a.Target {
		case "on":
			p.sim.SetGravityEnabled(true)
		case "off":
			p.sim.SetGravityEnabled(false)
		default:
			p.sim.ToggleGravity()
		}
	}
	return nil
}

func (p *Player) anchor(name string) (sim.AnchorID, error) {
	id, ok := p.anchors[name]
	if !ok {
		return sim.AnchorID{}, fmt.Errorf("anchor %q: %w", name, physics.ErrNotFound)
	}
	return id, nil
}

func (p *Player) entity(a Action) (sim.Entity, error) {
	if a.Anchor != "" {
		id, err := p.anchor(a.Anchor)
		if err != nil {
			return nil, err
		}
		return id, nil
	}
	id, ok := p.springs[a.Spring]
	if !ok {
		return nil, fmt.Errorf("spring %q: %w", a.Spring, physics.ErrNotFound)
	}
	return id, nil
}
