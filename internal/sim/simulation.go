package sim

import (
	"log"
	"sync"

	"github.com/san-kum/springbox/internal/physics"
)

// RunState is the lifecycle state of a simulation.
type RunState uint8

const (
	Running RunState = iota
	Paused
	Stopped
)

func (r RunState) String() string {
	switch r {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Observer receives a snapshot after every step. It runs outside the
// simulation lock and may call back into the simulation.
type Observer interface {
	OnStep(snap Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnStep(snap Snapshot) { f(snap) }

type Option func(*Simulation)

func WithLogger(l *log.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

func WithObserver(o Observer) Option {
	return func(s *Simulation) { s.observers = append(s.observers, o) }
}

// Simulation owns every anchor and spring. One mutex guards all of its
// state; it is held for a whole step and for each mutation, and released
// before observers, logging and sleeping.
type Simulation struct {
	mu        sync.Mutex
	cfg       Config
	arena     arena
	state     RunState
	steps     uint64
	culled    uint64
	claimed   bool
	loopErr   error
	observers []Observer
	logger    *log.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates an empty, running simulation. The loop is not started.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		cfg:    cfg,
		state:  Running,
		logger: log.Default(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Step advances the simulation by one Δt regardless of pause state.
func (s *Simulation) Step() error {
	return s.advance(false)
}

func (s *Simulation) advance(respectPause bool) error {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if respectPause && s.state == Paused {
		s.mu.Unlock()
		return nil
	}
	culled := s.stepLocked()
	observers := s.observers
	var snap Snapshot
	if len(observers) > 0 {
		snap = s.snapshotLocked()
	}
	step := s.steps
	s.mu.Unlock()

	if culled > 0 {
		s.logger.Printf("sim: step %d culled %d anchor(s) beyond bounds", step, culled)
	}
	for _, o := range observers {
		o.OnStep(snap)
	}
	return nil
}

// stepLocked runs cull, spring forces, gravity and integration, in that order.
func (s *Simulation) stepLocked() int {
	dt := s.cfg.Dt

	culled := 0
	for _, id := range s.arena.liveAnchorIDs() {
		a := s.arena.anchor(id)
		if a != nil && a.Position().LenSq() > s.cfg.BoundsThreshold {
			s.arena.removeAnchor(id)
			culled++
		}
	}

	for i := range s.arena.springs {
		slot := &s.arena.springs[i]
		if !slot.live {
			continue
		}
		start := s.arena.anchor(slot.start)
		end := s.arena.anchor(slot.end)
		fStart, fEnd := slot.spring.Force(start.Position(), end.Position())
		start.ApplyForce(fStart, dt)
		end.ApplyForce(fEnd, dt)
	}

	if s.cfg.GravityEnabled {
		for i := range s.arena.anchors {
			slot := &s.arena.anchors[i]
			if slot.live {
				slot.anchor.ApplyForce(physics.Force{Vec: s.cfg.Gravity.Scale(slot.anchor.Mass())}, dt)
			}
		}
	}

	for i := range s.arena.anchors {
		if s.arena.anchors[i].live {
			s.arena.anchors[i].anchor.Integrate(dt)
		}
	}

	s.steps++
	s.culled += uint64(culled)
	return culled
}

func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulation) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Simulation) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Steps is the number of steps executed so far.
func (s *Simulation) Steps() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

// Culled is the number of anchors removed by the bounds check so far.
func (s *Simulation) Culled() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.culled
}

// Time is the simulated time, steps * Δt.
func (s *Simulation) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.steps) * s.cfg.Dt
}

func (s *Simulation) Counts() (anchors, springs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.numAnchors, s.arena.numSprings
}

func (s *Simulation) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}
