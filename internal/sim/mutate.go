package sim

import (
	"fmt"

	"github.com/san-kum/springbox/internal/physics"
)

// AddAnchor places a new anchor at rest. mode must be Free or Static.
func (s *Simulation) AddAnchor(pos physics.Vec2, mass float64, mode physics.Mode) (AnchorID, error) {
	a, err := physics.NewAnchor(pos, mass, mode)
	if err != nil {
		return AnchorID{}, fmt.Errorf("add anchor: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.insertAnchor(*a), nil
}

// AddSpring links two live anchors. start and end may be the same anchor,
// in which case the spring never exerts force.
func (s *Simulation) AddSpring(start, end AnchorID, law physics.Law, stiffness float64, minF, maxF *float64) (SpringID, error) {
	sp, err := physics.NewSpring(law, stiffness, minF, maxF)
	if err != nil {
		return SpringID{}, fmt.Errorf("add spring: %w", err)
	}
	if start.IsZero() || end.IsZero() {
		return SpringID{}, fmt.Errorf("add spring: missing endpoint: %w", physics.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.arena.anchor(start) == nil {
		return SpringID{}, fmt.Errorf("add spring start %s: %w", start, physics.ErrNotFound)
	}
	if s.arena.anchor(end) == nil {
		return SpringID{}, fmt.Errorf("add spring end %s: %w", end, physics.ErrNotFound)
	}
	return s.arena.insertSpring(*sp, start, end), nil
}

// Remove deletes an entity. Removing an anchor first removes every spring
// attached to it.
func (s *Simulation) Remove(e Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch id := e.(type) {
	case AnchorID:
		if s.arena.anchor(id) == nil {
			return fmt.Errorf("remove %s: %w", id, physics.ErrNotFound)
		}
		s.arena.removeAnchor(id)
	case SpringID:
		if s.arena.spring(id) == nil {
			return fmt.Errorf("remove %s: %w", id, physics.ErrNotFound)
		}
		s.arena.dropSpring(id)
	default:
		return fmt.Errorf("remove %v: %w", e, physics.ErrInvalidArgument)
	}
	return nil
}

// RemoveSelected deletes every selected entity and returns how many
// entities were removed, cascaded springs included.
func (s *Simulation) RemoveSelected() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var anchors []AnchorID
	var springs []SpringID
	for i := range s.arena.springs {
		slot := &s.arena.springs[i]
		if slot.live && slot.spring.Selected {
			springs = append(springs, SpringID{index: uint32(i), gen: slot.gen})
		}
	}
	for i := range s.arena.anchors {
		slot := &s.arena.anchors[i]
		if slot.live && slot.anchor.Selected {
			anchors = append(anchors, AnchorID{index: uint32(i), gen: slot.gen})
		}
	}

	removed := 0
	for _, id := range springs {
		s.arena.dropSpring(id)
		removed++
	}
	for _, id := range anchors {
		removed += 1 + s.arena.removeAnchor(id)
	}
	return removed
}

// BeginDrag pins an anchor so its position can be written directly.
func (s *Simulation) BeginDrag(id AnchorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.arena.anchor(id)
	if a == nil {
		return fmt.Errorf("begin drag %s: %w", id, physics.ErrNotFound)
	}
	a.Pin()
	return nil
}

// SetDragPosition moves a pinned anchor.
func (s *Simulation) SetDragPosition(id AnchorID, pos physics.Vec2) error {
	if !pos.IsFinite() {
		return fmt.Errorf("drag %s to %v: %w", id, pos, physics.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.arena.anchor(id)
	if a == nil {
		return fmt.Errorf("drag %s: %w", id, physics.ErrNotFound)
	}
	if a.Mode() != physics.Pinned {
		return fmt.Errorf("drag %s anchor %s: %w", a.Mode(), id, physics.ErrInvalidState)
	}
	a.SetPosition(pos)
	return nil
}

// EndDrag releases a pinned anchor back to the mode it had before the drag.
func (s *Simulation) EndDrag(id AnchorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.arena.anchor(id)
	if a == nil {
		return fmt.Errorf("end drag %s: %w", id, physics.ErrNotFound)
	}
	if err := a.Unpin(); err != nil {
		return fmt.Errorf("end drag %s: %w", id, err)
	}
	return nil
}

func (s *Simulation) Select(e Entity) error   { return s.setSelected(e, true) }
func (s *Simulation) Deselect(e Entity) error { return s.setSelected(e, false) }

func (s *Simulation) setSelected(e Entity, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch id := e.(type) {
	case AnchorID:
		a := s.arena.anchor(id)
		if a == nil {
			return fmt.Errorf("select %s: %w", id, physics.ErrNotFound)
		}
		a.Selected = v
	case SpringID:
		slot := s.arena.spring(id)
		if slot == nil {
			return fmt.Errorf("select %s: %w", id, physics.ErrNotFound)
		}
		slot.spring.Selected = v
	default:
		return fmt.Errorf("select %v: %w", e, physics.ErrInvalidArgument)
	}
	return nil
}

func (s *Simulation) UnselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.arena.anchors {
		s.arena.anchors[i].anchor.Selected = false
	}
	for i := range s.arena.springs {
		s.arena.springs[i].spring.Selected = false
	}
}

// Selected lists selected anchors then selected springs.
func (s *Simulation) Selected() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entity
	for _, e := range s.entitiesLocked() {
		switch id := e.(type) {
		case AnchorID:
			if s.arena.anchor(id).Selected {
				out = append(out, id)
			}
		case SpringID:
			if s.arena.spring(id).spring.Selected {
				out = append(out, id)
			}
		}
	}
	return out
}

// Entities lists every live anchor then every live spring, in arena order.
func (s *Simulation) Entities() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entitiesLocked()
}

func (s *Simulation) entitiesLocked() []Entity {
	out := make([]Entity, 0, s.arena.numAnchors+s.arena.numSprings)
	for _, id := range s.arena.liveAnchorIDs() {
		out = append(out, id)
	}
	for i := range s.arena.springs {
		if s.arena.springs[i].live {
			out = append(out, SpringID{index: uint32(i), gen: s.arena.springs[i].gen})
		}
	}
	return out
}

func (s *Simulation) Anchor(id AnchorID) (AnchorView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.arena.anchor(id)
	if a == nil {
		return AnchorView{}, fmt.Errorf("anchor %s: %w", id, physics.ErrNotFound)
	}
	return anchorView(id, a), nil
}

func (s *Simulation) Spring(id SpringID) (SpringView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.arena.spring(id)
	if slot == nil {
		return SpringView{}, fmt.Errorf("spring %s: %w", id, physics.ErrNotFound)
	}
	return s.springView(id, slot), nil
}

func (s *Simulation) SetMass(id AnchorID, m float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.arena.anchor(id)
	if a == nil {
		return fmt.Errorf("set mass %s: %w", id, physics.ErrNotFound)
	}
	if err := a.SetMass(m); err != nil {
		return fmt.Errorf("set mass %s: %w", id, err)
	}
	return nil
}

// SetStatic switches an anchor between Free and Static. A pinned anchor
// cannot change mode until its drag ends.
func (s *Simulation) SetStatic(id AnchorID, static bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.arena.anchor(id)
	if a == nil {
		return fmt.Errorf("set static %s: %w", id, physics.ErrNotFound)
	}
	if a.Mode() == physics.Pinned {
		return fmt.Errorf("set static %s while dragged: %w", id, physics.ErrInvalidState)
	}
	if static {
		a.SetMode(physics.Static)
	} else {
		a.SetMode(physics.Free)
	}
	return nil
}

// Kick sets the velocity of a free anchor.
func (s *Simulation) Kick(id AnchorID, v physics.Vec2) error {
	if !v.IsFinite() {
		return fmt.Errorf("kick %s with %v: %w", id, v, physics.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.arena.anchor(id)
	if a == nil {
		return fmt.Errorf("kick %s: %w", id, physics.ErrNotFound)
	}
	if err := a.Kick(v); err != nil {
		return fmt.Errorf("kick %s: %w", id, err)
	}
	return nil
}

// SetSpring replaces a spring's law, stiffness and clamps.
func (s *Simulation) SetSpring(id SpringID, law physics.Law, stiffness float64, minF, maxF *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.arena.spring(id)
	if slot == nil {
		return fmt.Errorf("set spring %s: %w", id, physics.ErrNotFound)
	}
	if err := slot.spring.Configure(law, stiffness, minF, maxF); err != nil {
		return fmt.Errorf("set spring %s: %w", id, err)
	}
	return nil
}

func (s *Simulation) SetGravity(g physics.Vec2) error {
	if !g.IsFinite() {
		return fmt.Errorf("gravity %v: %w", g, physics.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Gravity = g
	return nil
}

func (s *Simulation) SetGravityEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.GravityEnabled = on
}

// ToggleGravity flips gravity and reports whether it is now enabled.
func (s *Simulation) ToggleGravity() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.GravityEnabled = !s.cfg.GravityEnabled
	return s.cfg.GravityEnabled
}
