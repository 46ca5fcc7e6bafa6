package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func sine(freq, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		freq float64
		dt   float64
		n    int
	}{
		{2, 0.01, 500},
		{0.5, 0.01, 1000},
		{5, 0.02, 300},
	}
	for _, tt := range tests {
		got, err := DominantFrequency(sine(tt.freq, tt.dt, tt.n), tt.dt)
		if err != nil {
			t.Fatal(err)
		}
		res := 1 / (float64(tt.n) * tt.dt)
		if math.Abs(got-tt.freq) > res {
			t.Errorf("f=%g: got %g (resolution %g)", tt.freq, got, res)
		}
	}
}

func TestDominantFrequency_Invalid(t *testing.T) {
	if _, err := DominantFrequency([]float64{1, 2}, 0.01); !errors.Is(err, ErrShortSeries) {
		t.Errorf("expected ErrShortSeries, got %v", err)
	}
	if _, err := DominantFrequency(sine(1, 0.01, 10), 0); err == nil {
		t.Error("expected an error for dt=0")
	}
	if _, err := DominantFrequency([]float64{1, 2, math.NaN(), 4}, 0.01); err == nil {
		t.Error("expected an error for NaN samples")
	}
}

func TestPowerSpectrum_RemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{5, 5, 5, 5, 5, 5})
	if len(ps) != 3 {
		t.Fatalf("expected 3 bins, got %d", len(ps))
	}
	for i, v := range ps {
		if v > 1e-9 {
			t.Errorf("bin %d of a constant series should be zero, got %g", i, v)
		}
	}
	if PowerSpectrum(nil) != nil {
		t.Error("empty series should give no spectrum")
	}
}

func TestPhasePortrait(t *testing.T) {
	xs := []float64{0, 1, math.NaN(), -1}
	ys := []float64{1, 0, 2, 0, 9}
	p := NewPhasePortrait(xs, ys)
	if len(p.Points) != 3 {
		t.Fatalf("expected NaN pairs dropped, got %v", p.Points)
	}

	out := PhasePortraitToASCII(p, 20, 10)
	if lines := strings.Count(out, "\n"); lines != 10 {
		t.Errorf("expected 10 rows, got %d", lines)
	}
	if strings.TrimSpace(strings.ReplaceAll(out, "⠀", "")) == "" {
		t.Error("portrait should set dots")
	}
	if PhasePortraitToASCII(nil, 20, 10) != "" {
		t.Error("nil portrait should be empty")
	}
}

func TestPoincareSection(t *testing.T) {
	const dt = 0.01
	cross := make([]float64, 500)
	xs := make([]float64, 500)
	for i := range cross {
		tt := float64(i) * dt
		cross[i] = math.Sin(2 * math.Pi * tt)
		xs[i] = math.Cos(2 * math.Pi * tt)
	}
	s := NewPoincareSection(cross, xs, xs, 0)
	if len(s.Points) != 4 {
		t.Fatalf("expected 4 upward crossings, got %d", len(s.Points))
	}
	for _, p := range s.Points {
		if math.Abs(p.X-1) > 1e-3 {
			t.Errorf("cos at an upward sine crossing should be 1, got %f", p.X)
		}
	}
	if got := PoincareSectionToASCII(&PoincareSection{}, 10, 5); got != "No crossings detected" {
		t.Errorf("unexpected empty section output %q", got)
	}
}
