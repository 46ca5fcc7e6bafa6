package sim

import "github.com/san-kum/springbox/internal/physics"

// AnchorView is a copy of an anchor's state.
type AnchorView struct {
	ID       AnchorID
	Position physics.Vec2
	Velocity physics.Vec2
	Mass     float64
	Radius   float64
	Mode     physics.Mode
	Selected bool
}

// SpringView is a copy of a spring and its resolved endpoint positions.
type SpringView struct {
	ID        SpringID
	Start     AnchorID
	End       AnchorID
	StartPos  physics.Vec2
	EndPos    physics.Vec2
	Law       physics.Law
	Stiffness float64
	MinForce  *float64
	MaxForce  *float64
	Selected  bool
}

// Snapshot is a consistent copy of the simulation taken under its lock.
// Consumers may keep and read it freely.
type Snapshot struct {
	Anchors        []AnchorView
	Springs        []SpringView
	Step           uint64
	Time           float64
	State          RunState
	Gravity        physics.Vec2
	GravityEnabled bool
}

func (s Snapshot) Anchor(id AnchorID) (AnchorView, bool) {
	for _, a := range s.Anchors {
		if a.ID == id {
			return a, true
		}
	}
	return AnchorView{}, false
}

func (s Snapshot) Spring(id SpringID) (SpringView, bool) {
	for _, sp := range s.Springs {
		if sp.ID == id {
			return sp, true
		}
	}
	return SpringView{}, false
}

func (s *Simulation) snapshotLocked() Snapshot {
	snap := Snapshot{
		Anchors:        make([]AnchorView, 0, s.arena.numAnchors),
		Springs:        make([]SpringView, 0, s.arena.numSprings),
		Step:           s.steps,
		Time:           float64(s.steps) * s.cfg.Dt,
		State:          s.state,
		Gravity:        s.cfg.Gravity,
		GravityEnabled: s.cfg.GravityEnabled,
	}
	for i := range s.arena.anchors {
		slot := &s.arena.anchors[i]
		if !slot.live {
			continue
		}
		snap.Anchors = append(snap.Anchors, anchorView(AnchorID{index: uint32(i), gen: slot.gen}, &slot.anchor))
	}
	for i := range s.arena.springs {
		slot := &s.arena.springs[i]
		if !slot.live {
			continue
		}
		snap.Springs = append(snap.Springs, s.springView(SpringID{index: uint32(i), gen: slot.gen}, slot))
	}
	return snap
}

func anchorView(id AnchorID, a *physics.Anchor) AnchorView {
	return AnchorView{
		ID:       id,
		Position: a.Position(),
		Velocity: a.Velocity(),
		Mass:     a.Mass(),
		Radius:   a.Radius(),
		Mode:     a.Mode(),
		Selected: a.Selected,
	}
}

func (s *Simulation) springView(id SpringID, slot *springSlot) SpringView {
	v := SpringView{
		ID:        id,
		Start:     slot.start,
		End:       slot.end,
		Law:       slot.spring.Law,
		Stiffness: slot.spring.Stiffness,
		MinForce:  cloneBound(slot.spring.MinForce),
		MaxForce:  cloneBound(slot.spring.MaxForce),
		Selected:  slot.spring.Selected,
	}
	if a := s.arena.anchor(slot.start); a != nil {
		v.StartPos = a.Position()
	}
	if a := s.arena.anchor(slot.end); a != nil {
		v.EndPos = a.Position()
	}
	return v
}

func cloneBound(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
