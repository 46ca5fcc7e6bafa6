package record

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/springbox/internal/config"
	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

func recordPreset(t *testing.T, name string, steps, every int) *Trace {
	t.Helper()
	s, anchors, err := config.Build(config.GetPreset(name))
	if err != nil {
		t.Fatalf("build %s: %v", name, err)
	}
	rec := NewRecorder(anchors, every)
	s.AddObserver(rec)
	for i := 0; i < steps; i++ {
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
	}
	return rec.Trace()
}

func TestRecorder(t *testing.T) {
	trace := recordPreset(t, "pendulum", 100, 10)
	if len(trace.Times) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(trace.Times))
	}
	if got := strings.Join(trace.Names, ","); got != "arm,bob,root" {
		t.Errorf("names should be sorted, got %s", got)
	}
	if math.Abs(trace.Times[0]-0.1) > 1e-9 {
		t.Errorf("first sample at step 10 should be t=0.1, got %f", trace.Times[0])
	}

	root, err := trace.Track("root")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range root {
		if s.Pos != (physics.Vec2{}) || s.Vel != (physics.Vec2{}) {
			t.Fatalf("static root should stay at rest, got %+v", s)
		}
	}
	if name, ok := trace.FirstMoving(); !ok || name != "arm" {
		t.Errorf("expected arm to be the first moving track, got %q %v", name, ok)
	}

	if _, err := trace.Track("nope"); !errors.Is(err, ErrUnknownTrack) {
		t.Errorf("expected ErrUnknownTrack, got %v", err)
	}
	if _, err := trace.Series("bob", "z"); !errors.Is(err, ErrUnknownTrack) {
		t.Errorf("expected ErrUnknownTrack for a bad component, got %v", err)
	}
}

func TestRecorder_RemovedAnchor(t *testing.T) {
	s, err := sim.New(sim.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	id, _ := s.AddAnchor(physics.V(0, 0), 1, physics.Free)
	rec := NewRecorder(map[string]sim.AnchorID{"a": id}, 1)
	s.AddObserver(rec)

	_ = s.Step()
	_ = s.Remove(id)
	_ = s.Step()

	xs, err := rec.Trace().Series("a", "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(xs) != 2 || math.IsNaN(xs[0]) || !math.IsNaN(xs[1]) {
		t.Errorf("expected a sample then NaN, got %v", xs)
	}
}

func TestFirstMoving_AtRest(t *testing.T) {
	trace := &Trace{
		Names:   []string{"a"},
		Times:   []float64{0, 1},
		Samples: [][]Sample{{{Pos: physics.V(1, 1)}}, {{Pos: physics.V(1, 1)}}},
	}
	if _, ok := trace.FirstMoving(); ok {
		t.Error("a resting track should not count as moving")
	}
	if _, ok := (&Trace{}).FirstMoving(); ok {
		t.Error("an empty trace has no moving track")
	}
}

func TestWriteCSV(t *testing.T) {
	trace := recordPreset(t, "oscillator", 20, 5)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, trace); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := "time,bob.x,bob.y,bob.vx,bob.vy,root.x,root.y,root.vx,root.vy"
	if got := strings.Join(records[0], ","); got != want {
		t.Errorf("header: want %s, got %s", want, got)
	}
	if len(records) != 5 {
		t.Errorf("expected header and 4 rows, got %d", len(records))
	}
	if records[1][0] != "0.050000" {
		t.Errorf("first row at t=0.05, got %s", records[1][0])
	}
}

func TestWriteJSON(t *testing.T) {
	trace := &Trace{
		Names: []string{"a"},
		Times: []float64{0, 0.01},
		Samples: [][]Sample{
			{{Pos: physics.V(1, 2), Vel: physics.V(3, 4)}},
			{missing},
		},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Header{Scene: "s", Steps: 2}, trace); err != nil {
		t.Fatal(err)
	}

	var out struct {
		Scene  string                `json:"scene"`
		Steps  uint64                `json:"steps"`
		Times  []float64             `json:"times"`
		Tracks map[string][]*float64 `json:"tracks"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Scene != "s" || out.Steps != 2 || len(out.Times) != 2 {
		t.Errorf("unexpected export %+v", out)
	}
	vy := out.Tracks["a.vy"]
	if len(vy) != 2 || vy[0] == nil || *vy[0] != 4 || vy[1] != nil {
		t.Errorf("unexpected a.vy series %v", vy)
	}
}
