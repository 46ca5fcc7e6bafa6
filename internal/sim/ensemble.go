package sim

import (
	"context"
	"sync"
	"time"
)

// Factory builds an independent, seeded simulation.
type Factory func() (*Simulation, error)

// Ensemble steps several copies of the same scene in parallel, headless.
type Ensemble struct {
	build   Factory
	numRuns int
}

func NewEnsemble(build Factory, numRuns int) *Ensemble {
	if numRuns < 1 {
		numRuns = 1
	}
	return &Ensemble{build: build, numRuns: numRuns}
}

type RunResult struct {
	Final   Snapshot
	Steps   int
	Elapsed time.Duration
}

// Run builds every member and advances each by steps on its own goroutine.
func (e *Ensemble) Run(ctx context.Context, steps int) ([]RunResult, error) {
	results := make([]RunResult, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = e.runOne(ctx, steps)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (e *Ensemble) runOne(ctx context.Context, steps int) (RunResult, error) {
	s, err := e.build()
	if err != nil {
		return RunResult{}, err
	}
	defer s.Stop()

	start := time.Now()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return RunResult{}, ctx.Err()
		default:
		}
		if err := s.Step(); err != nil {
			return RunResult{}, err
		}
	}
	return RunResult{Final: s.Snapshot(), Steps: steps, Elapsed: time.Since(start)}, nil
}

// Identical reports whether every result ended with bit-identical anchor
// positions and velocities.
func Identical(results []RunResult) bool {
	if len(results) < 2 {
		return true
	}
	ref := results[0].Final.Anchors
	for _, r := range results[1:] {
		got := r.Final.Anchors
		if len(got) != len(ref) {
			return false
		}
		for i := range ref {
			if got[i].ID != ref[i].ID || got[i].Position != ref[i].Position || got[i].Velocity != ref[i].Velocity {
				return false
			}
		}
	}
	return true
}
