package interact

import (
	"math"
	"testing"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

func TestSegmentDist(t *testing.T) {
	a, b := physics.V(0, 0), physics.V(2, 0)
	tests := []struct {
		p    physics.Vec2
		want float64
	}{
		{physics.V(1, 1), 1},
		{physics.V(-1, 0), 1},
		{physics.V(3, 0), 1},
		{physics.V(1, 0), 0},
	}
	for _, tt := range tests {
		if got := segmentDist(tt.p, a, b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("segmentDist(%v) = %f, want %f", tt.p, got, tt.want)
		}
	}
	if got := segmentDist(physics.V(3, 4), a, a); got != 5 {
		t.Errorf("degenerate segment: got %f", got)
	}
}

func TestHitTest(t *testing.T) {
	s, err := sim.New(sim.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	a, _ := s.AddAnchor(physics.V(0, 0), 1, physics.Free)
	b, _ := s.AddAnchor(physics.V(0.15, 0), 1, physics.Free)
	c, _ := s.AddAnchor(physics.V(2, 0), 1, physics.Free)
	sp, _ := s.AddSpring(b, c, physics.Linear, 1, nil, nil)
	snap := s.Snapshot()

	tests := []struct {
		name string
		p    physics.Vec2
		want sim.Entity
	}{
		{"anchor centre", physics.V(0, 0), a},
		{"nearest of overlapping anchors", physics.V(0.1, 0), b},
		{"inside radius plus tolerance", physics.V(0, physics.RadiusRatio+0.04), a},
		{"spring segment", physics.V(1, 0.03), sp},
		{"anchor beats spring", physics.V(1.99, 0.01), c},
		{"miss", physics.V(1, 1), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HitTest(snap, tt.p, DefaultTolerance)
			if tt.want == nil {
				if ok {
					t.Errorf("expected miss, hit %v", got)
				}
				return
			}
			if !ok || got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
