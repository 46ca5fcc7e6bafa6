package automation

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/springbox/internal/config"
	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

func oscillator(t *testing.T) (*sim.Simulation, *Player) {
	t.Helper()
	s, ids, err := config.Build(config.GetPreset("oscillator"), sim.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return s, NewPlayer(s, ids)
}

func TestReplay_Drag(t *testing.T) {
	s, p := oscillator(t)
	script := &Script{
		Name:  "drag",
		Steps: 5,
		Actions: []Action{
			{At: 1, Op: OpMove, Anchor: "bob", X: 0.5, Y: -0.5},
			{At: 0, Op: OpDrag, Anchor: "bob"},
		},
	}

	res, err := p.Replay(context.Background(), script)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Ticks != 5 || res.Steps != 5 || res.Applied != 2 {
		t.Errorf("unexpected result %+v", res)
	}

	bob, _ := p.AnchorID("bob")
	v, _ := s.Anchor(bob)
	if v.Position != physics.V(0.5, -0.5) || v.Velocity != (physics.Vec2{}) {
		t.Errorf("dragged anchor should hold still, got %v %v", v.Position, v.Velocity)
	}

	release := &Script{Steps: 10, Actions: []Action{{At: 0, Op: OpRelease, Anchor: "bob"}}}
	if _, err := p.Replay(context.Background(), release); err != nil {
		t.Fatalf("release: %v", err)
	}
	v, _ = s.Anchor(bob)
	if v.Mode != physics.Free {
		t.Errorf("expected free after release, got %s", v.Mode)
	}
	if v.Position.Len() >= physics.V(0.5, -0.5).Len() {
		t.Errorf("released anchor should fall toward the root, at %v", v.Position)
	}
}

func TestReplay_PausedTicksDoNotStep(t *testing.T) {
	s, p := oscillator(t)
	script := &Script{
		Steps: 10,
		Actions: []Action{
			{At: 2, Op: OpPause},
			{At: 5, Op: OpResume},
		},
	}

	res, err := p.Replay(context.Background(), script)
	if err != nil {
		t.Fatal(err)
	}
	if res.Ticks != 10 || res.Steps != 7 {
		t.Errorf("expected 10 ticks and 7 steps, got %+v", res)
	}
	if s.Steps() != 7 {
		t.Errorf("simulation stepped %d times", s.Steps())
	}
}

func TestReplay_AddSelectRemove(t *testing.T) {
	s, p := oscillator(t)
	script := &Script{
		Actions: []Action{
			{At: 0, Op: OpAddAnchor, Name: "c", X: 1, Y: 0, Mass: 2},
			{At: 0, Op: OpAddSpring, Name: "rc", Start: "root", End: "c", Law: "quadratic", Stiffness: 2},
			{At: 1, Op: OpSelect, Spring: "rc"},
			{At: 1, Op: OpGravity, Target: "on"},
			{At: 3, Op: OpRemove, Anchor: "c"},
		},
	}
	if got := script.Length(); got != 4 {
		t.Errorf("expected length 4, got %d", got)
	}

	rc := sim.SpringID{}
	p.sim.AddObserver(sim.ObserverFunc(func(snap sim.Snapshot) {
		if snap.Step == 2 {
			id, _ := p.SpringID("rc")
			v, ok := snap.Spring(id)
			if !ok || !v.Selected || v.Law != physics.Quadratic {
				t.Errorf("spring not selected at step 2: %+v", v)
			}
			rc = id
		}
	}))

	if _, err := p.Replay(context.Background(), script); err != nil {
		t.Fatal(err)
	}
	if rc.IsZero() {
		t.Fatal("observer never saw step 2")
	}
	if _, err := s.Spring(rc); !errors.Is(err, physics.ErrNotFound) {
		t.Errorf("spring should go with its anchor, got %v", err)
	}
	if !s.Config().GravityEnabled {
		t.Error("gravity should be on")
	}
	anchors, springs := s.Counts()
	if anchors != 2 || springs != 1 {
		t.Errorf("expected the seed scene back, got %d/%d", anchors, springs)
	}
}

func TestReplay_UnknownName(t *testing.T) {
	_, p := oscillator(t)
	script := &Script{Steps: 1, Actions: []Action{{At: 0, Op: OpDrag, Anchor: "ghost"}}}
	if _, err := p.Replay(context.Background(), script); !errors.Is(err, physics.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReplay_Cancelled(t *testing.T) {
	_, p := oscillator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Replay(ctx, &Script{Steps: 10}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		script Script
	}{
		{"negative steps", Script{Steps: -1}},
		{"action past end", Script{Steps: 2, Actions: []Action{{At: 2, Op: OpPause}}}},
		{"negative tick", Script{Actions: []Action{{At: -1, Op: OpPause}}}},
		{"unknown op", Script{Actions: []Action{{Op: "explode"}}}},
		{"unnamed anchor", Script{Actions: []Action{{Op: OpAddAnchor}}}},
		{"spring without ends", Script{Actions: []Action{{Op: OpAddSpring, Start: "a"}}}},
		{"bad law", Script{Actions: []Action{{Op: OpAddSpring, Start: "a", End: "b", Law: "cubic"}}}},
		{"remove both", Script{Actions: []Action{{Op: OpRemove, Anchor: "a", Spring: "s"}}}},
		{"select neither", Script{Actions: []Action{{Op: OpSelect}}}},
		{"move nothing", Script{Actions: []Action{{Op: OpMove}}}},
		{"gravity target", Script{Actions: []Action{{Op: OpGravity, Target: "sideways"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.script.Validate(); !errors.Is(err, physics.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	data := []byte(`
name: pluck
steps: 50
actions:
  - {at: 0, op: drag, anchor: bob}
  - {at: 1, op: move, anchor: bob, x: 0.8, y: -0.2}
  - {at: 10, op: release, anchor: bob}
  - {at: 20, op: gravity, target: toggle}
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	script, err := LoadScript(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if script.Name != "pluck" || len(script.Actions) != 4 || script.Actions[1].X != 0.8 {
		t.Errorf("unexpected script %+v", script)
	}

	s, p := oscillator(t)
	res, err := p.Replay(context.Background(), script)
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps != 50 || s.Steps() != 50 {
		t.Errorf("expected 50 steps, got %+v", res)
	}
}
