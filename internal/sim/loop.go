package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/springbox/internal/physics"
)

// Run drives the simulation on its own cadence until Stop is called or ctx
// is done. Each tick performs at most one step, and none while paused;
// ticks missed while a step or a pause is in progress are dropped.
// Run returns nil after Stop and ctx.Err() after cancellation; either way
// the simulation ends Stopped.
func (s *Simulation) Run(ctx context.Context) error {
	interval, err := s.claim()
	if err != nil {
		return err
	}
	err = s.loop(ctx, interval)
	s.finish(err)
	return err
}

// Start runs the loop on a new goroutine. Use Wait to collect its result.
func (s *Simulation) Start(ctx context.Context) error {
	interval, err := s.claim()
	if err != nil {
		return err
	}
	go func() {
		s.finish(s.loop(ctx, interval))
	}()
	return nil
}

// Wait blocks until a loop started by Run or Start has returned, and
// returns its result. It returns immediately if no loop was started.
func (s *Simulation) Wait() error {
	s.mu.Lock()
	claimed := s.claimed
	s.mu.Unlock()
	if !claimed {
		return nil
	}
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loopErr
}

// Stop ends the simulation. It is idempotent and safe from any goroutine.
func (s *Simulation) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.state = Stopped
		s.mu.Unlock()
		close(s.stop)
	})
}

// Done is closed once the loop has exited.
func (s *Simulation) Done() <-chan struct{} { return s.done }

func (s *Simulation) Pause() { s.transition(func(RunState) RunState { return Paused }) }

func (s *Simulation) Resume() { s.transition(func(RunState) RunState { return Running }) }

// Toggle flips between Running and Paused and returns the new state.
func (s *Simulation) Toggle() RunState {
	return s.transition(func(cur RunState) RunState {
		if cur == Paused {
			return Running
		}
		return Paused
	})
}

func (s *Simulation) transition(next func(RunState) RunState) RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Stopped {
		s.state = next(s.state)
	}
	return s.state
}

func (s *Simulation) claim() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Stopped {
		return 0, ErrStopped
	}
	if s.claimed {
		return 0, fmt.Errorf("run: loop already started: %w", physics.ErrInvalidState)
	}
	s.claimed = true
	return s.cfg.Interval(), nil
}

func (s *Simulation) finish(err error) {
	s.mu.Lock()
	s.loopErr = err
	s.mu.Unlock()
	close(s.done)
}

func (s *Simulation) loop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return nil
		case <-ctx.Done():
			s.Stop()
			return ctx.Err()
		case <-ticker.C:
			if err := s.advance(true); errors.Is(err, ErrStopped) {
				return nil
			}
		}
	}
}
