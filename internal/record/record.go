package record

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

// Sample is the kinematic state of one anchor at one recorded time. An
// anchor that no longer exists is recorded as NaN.
type Sample struct {
	Pos physics.Vec2
	Vel physics.Vec2
}

var missing = Sample{
	Pos: physics.V(math.NaN(), math.NaN()),
	Vel: physics.V(math.NaN(), math.NaN()),
}

// Trace holds the recorded tracks of named anchors, one row per time.
type Trace struct {
	Names   []string
	Times   []float64
	Samples [][]Sample
}

func (t *Trace) index(name string) int {
	for i, n := range t.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Track returns every recorded sample of one anchor.
func (t *Trace) Track(name string) ([]Sample, error) {
	i := t.index(name)
	if i < 0 {
		return nil, fmt.Errorf("track %q: %w", name, ErrUnknownTrack)
	}
	out := make([]Sample, len(t.Samples))
	for row, s := range t.Samples {
		out[row] = s[i]
	}
	return out, nil
}

// Series returns one component (x, y, vx or vy) of a track.
func (t *Trace) Series(name, component string) ([]float64, error) {
	track, err := t.Track(name)
	if err != nil {
		return nil, err
	}
	pick, ok := components[component]
	if !ok {
		return nil, fmt.Errorf("component %q: %w", component, ErrUnknownTrack)
	}
	out := make([]float64, len(track))
	for i, s := range track {
		out[i] = pick(s)
	}
	return out, nil
}

var components = map[string]func(Sample) float64{
	"x":  func(s Sample) float64 { return s.Pos.X },
	"y":  func(s Sample) float64 { return s.Pos.Y },
	"vx": func(s Sample) float64 { return s.Vel.X },
	"vy": func(s Sample) float64 { return s.Vel.Y },
}

// Components lists the series names accepted by Series.
func Components() []string { return []string{"x", "y", "vx", "vy"} }

// Recorder is a sim.Observer that samples named anchors every few steps.
// It is not safe for concurrent use; read the trace after the run ends.
type Recorder struct {
	every int
	ids   []sim.AnchorID
	trace Trace
}

func NewRecorder(anchors map[string]sim.AnchorID, every int) *Recorder {
	if every < 1 {
		every = 1
	}
	names := make([]string, 0, len(anchors))
	for name := range anchors {
		names = append(names, name)
	}
	sort.Strings(names)
	ids := make([]sim.AnchorID, len(names))
	for i, name := range names {
		ids[i] = anchors[name]
	}
	return &Recorder{every: every, ids: ids, trace: Trace{Names: names}}
}

func (r *Recorder) OnStep(snap sim.Snapshot) {
	if snap.Step%uint64(r.every) != 0 {
		return
	}
	row := make([]Sample, len(r.ids))
	for i, id := range r.ids {
		a, ok := snap.Anchor(id)
		if !ok {
			row[i] = missing
			continue
		}
		row[i] = Sample{Pos: a.Position, Vel: a.Velocity}
	}
	r.trace.Times = append(r.trace.Times, snap.Time)
	r.trace.Samples = append(r.trace.Samples, row)
}

func (r *Recorder) Trace() *Trace { return &r.trace }

// FirstMoving returns the first track whose position ever changes.
func (t *Trace) FirstMoving() (string, bool) {
	if len(t.Samples) == 0 {
		return "", false
	}
	first := t.Samples[0]
	for i, name := range t.Names {
		for _, row := range t.Samples[1:] {
			if row[i].Pos != first[i].Pos {
				return name, true
			}
		}
	}
	return "", false
}
