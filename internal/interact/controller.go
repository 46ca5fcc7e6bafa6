package interact

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/sim"
)

// Controller turns pointer and key gestures into simulation mutations.
// It is meant to be driven from a single goroutine, typically the UI loop,
// while the simulation runs on its own.
type Controller struct {
	sim       *sim.Simulation
	tolerance float64
	logger    *log.Logger

	dragging sim.AnchorID
	offset   physics.Vec2
}

type Option func(*Controller)

func WithTolerance(tol float64) Option {
	return func(c *Controller) { c.tolerance = tol }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func New(s *sim.Simulation, opts ...Option) *Controller {
	c := &Controller{
		sim:       s,
		tolerance: DefaultTolerance,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTolerance changes the pick slack, e.g. when the camera zooms.
func (c *Controller) SetTolerance(tol float64) { c.tolerance = tol }

// Dragging reports the anchor currently held by the pointer.
func (c *Controller) Dragging() (sim.AnchorID, bool) {
	return c.dragging, !c.dragging.IsZero()
}

// Press handles a pointer press at world. Pressing an anchor selects it and
// starts dragging it; pressing a spring selects it. Without additive the
// previous selection is cleared first, and a miss clears it.
func (c *Controller) Press(world physics.Vec2, additive bool) (sim.Entity, error) {
	if _, ok := c.Dragging(); ok {
		if err := c.Release(); err != nil {
			return nil, err
		}
	}

	snap := c.sim.Snapshot()
	hit, ok := HitTest(snap, world, c.tolerance)
	if !additive {
		c.sim.UnselectAll()
	}
	if !ok {
		return nil, nil
	}

	if err := c.sim.Select(hit); err != nil {
		if errors.Is(err, physics.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	id, isAnchor := hit.(sim.AnchorID)
	if !isAnchor {
		return hit, nil
	}
	if err := c.sim.BeginDrag(id); err != nil {
		if errors.Is(err, physics.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	a, _ := snap.Anchor(id)
	c.dragging = id
	c.offset = a.Position.Sub(world)
	c.logger.Printf("interact: drag %s", id)
	return hit, nil
}

// Motion moves the dragged anchor to follow the pointer. A drag whose
// anchor has been removed or culled ends silently.
func (c *Controller) Motion(world physics.Vec2) error {
	id, ok := c.Dragging()
	if !ok {
		return nil
	}
	err := c.sim.SetDragPosition(id, world.Add(c.offset))
	if errors.Is(err, physics.ErrNotFound) {
		c.dragging = sim.AnchorID{}
		return nil
	}
	return err
}

// Release ends the drag. The anchor is let go at rest.
func (c *Controller) Release() error {
	id, ok := c.Dragging()
	if !ok {
		return nil
	}
	c.dragging = sim.AnchorID{}
	err := c.sim.EndDrag(id)
	if errors.Is(err, physics.ErrNotFound) {
		return nil
	}
	return err
}

// Place adds a free anchor at world and selects only it.
func (c *Controller) Place(world physics.Vec2, mass float64) (sim.AnchorID, error) {
	id, err := c.sim.AddAnchor(world, mass, physics.Free)
	if err != nil {
		return sim.AnchorID{}, err
	}
	c.sim.UnselectAll()
	_ = c.sim.Select(id)
	return id, nil
}

// Link joins the two selected anchors with a new spring.
func (c *Controller) Link(law physics.Law, stiffness float64) (sim.SpringID, error) {
	var anchors []sim.AnchorID
	for _, e := range c.sim.Selected() {
		if id, ok := e.(sim.AnchorID); ok {
			anchors = append(anchors, id)
		}
	}
	if len(anchors) != 2 {
		return sim.SpringID{}, fmt.Errorf("link needs two selected anchors, have %d: %w", len(anchors), physics.ErrInvalidState)
	}
	id, err := c.sim.AddSpring(anchors[0], anchors[1], law, stiffness, nil, nil)
	if err != nil {
		return sim.SpringID{}, err
	}
	c.logger.Printf("interact: link %s %s with %s", anchors[0], anchors[1], law)
	return id, nil
}

// DeleteSelected removes the selection and returns how many entities went,
// cascaded springs included.
func (c *Controller) DeleteSelected() int {
	n := c.sim.RemoveSelected()
	if id, ok := c.Dragging(); ok {
		if _, err := c.sim.Anchor(id); err != nil {
			c.dragging = sim.AnchorID{}
		}
	}
	return n
}

// ToggleStatic flips every selected anchor between free and static.
// Anchors held by a drag are skipped.
func (c *Controller) ToggleStatic() int {
	n := 0
	for _, e := range c.sim.Selected() {
		id, ok := e.(sim.AnchorID)
		if !ok {
			continue
		}
		a, err := c.sim.Anchor(id)
		if err != nil || a.Mode == physics.Pinned {
			continue
		}
		if c.sim.SetStatic(id, a.Mode == physics.Free) == nil {
			n++
		}
	}
	return n
}

// SetLaw switches every selected spring to law.
func (c *Controller) SetLaw(law physics.Law) int {
	return c.eachSpring(func(v sim.SpringView) error {
		return c.sim.SetSpring(v.ID, law, v.Stiffness, v.MinForce, v.MaxForce)
	})
}

// ScaleStiffness multiplies the stiffness of every selected spring.
func (c *Controller) ScaleStiffness(f float64) int {
	return c.eachSpring(func(v sim.SpringView) error {
		return c.sim.SetSpring(v.ID, v.Law, v.Stiffness*f, v.MinForce, v.MaxForce)
	})
}

// ScaleMass multiplies the mass of every selected anchor.
func (c *Controller) ScaleMass(f float64) int {
	n := 0
	for _, e := range c.sim.Selected() {
		id, ok := e.(sim.AnchorID)
		if !ok {
			continue
		}
		a, err := c.sim.Anchor(id)
		if err != nil {
			continue
		}
		if c.sim.SetMass(id, a.Mass*f) == nil {
			n++
		}
	}
	return n
}

func (c *Controller) TogglePause() sim.RunState { return c.sim.Toggle() }

func (c *Controller) eachSpring(fn func(sim.SpringView) error) int {
	n := 0
	for _, e := range c.sim.Selected() {
		id, ok := e.(sim.SpringID)
		if !ok {
			continue
		}
		v, err := c.sim.Spring(id)
		if err != nil {
			continue
		}
		if fn(v) == nil {
			n++
		}
	}
	return n
}
