package sim

import "github.com/san-kum/springbox/internal/physics"

type anchorSlot struct {
	gen    uint32
	live   bool
	anchor physics.Anchor
}

type springSlot struct {
	gen        uint32
	live       bool
	start, end AnchorID
	spring     physics.Spring
}

// arena stores anchors and springs in slots that are reused after removal.
// A handle is valid while its generation matches the slot's.
type arena struct {
	anchors     []anchorSlot
	springs     []springSlot
	freeAnchors []uint32
	freeSprings []uint32
	numAnchors  int
	numSprings  int
}

func (a *arena) anchor(id AnchorID) *physics.Anchor {
	if id.gen == 0 || int(id.index) >= len(a.anchors) {
		return nil
	}
	slot := &a.anchors[id.index]
	if !slot.live || slot.gen != id.gen {
		return nil
	}
	return &slot.anchor
}

func (a *arena) spring(id SpringID) *springSlot {
	if id.gen == 0 || int(id.index) >= len(a.springs) {
		return nil
	}
	slot := &a.springs[id.index]
	if !slot.live || slot.gen != id.gen {
		return nil
	}
	return slot
}

func (a *arena) insertAnchor(an physics.Anchor) AnchorID {
	var idx uint32
	if n := len(a.freeAnchors); n > 0 {
		idx = a.freeAnchors[n-1]
		a.freeAnchors = a.freeAnchors[:n-1]
	} else {
		a.anchors = append(a.anchors, anchorSlot{})
		idx = uint32(len(a.anchors) - 1)
	}
	slot := &a.anchors[idx]
	slot.gen++
	slot.live = true
	slot.anchor = an
	a.numAnchors++
	return AnchorID{index: idx, gen: slot.gen}
}

func (a *arena) insertSpring(sp physics.Spring, start, end AnchorID) SpringID {
	var idx uint32
	if n := len(a.freeSprings); n > 0 {
		idx = a.freeSprings[n-1]
		a.freeSprings = a.freeSprings[:n-1]
	} else {
		a.springs = append(a.springs, springSlot{})
		idx = uint32(len(a.springs) - 1)
	}
	slot := &a.springs[idx]
	slot.gen++
	slot.live = true
	slot.start, slot.end = start, end
	slot.spring = sp
	a.numSprings++
	return SpringID{index: idx, gen: slot.gen}
}

func (a *arena) dropSpring(id SpringID) {
	slot := &a.springs[id.index]
	slot.live = false
	slot.spring = physics.Spring{}
	a.freeSprings = append(a.freeSprings, id.index)
	a.numSprings--
}

func (a *arena) dropAnchor(id AnchorID) {
	slot := &a.anchors[id.index]
	slot.live = false
	slot.anchor = physics.Anchor{}
	a.freeAnchors = append(a.freeAnchors, id.index)
	a.numAnchors--
}

// dependents lists the live springs attached to an anchor.
func (a *arena) dependents(id AnchorID) []SpringID {
	var out []SpringID
	for i := range a.springs {
		s := &a.springs[i]
		if s.live && (s.start == id || s.end == id) {
			out = append(out, SpringID{index: uint32(i), gen: s.gen})
		}
	}
	return out
}

// removeAnchor finds the anchor's springs, removes them, then drops the
// anchor. It returns the number of springs removed.
func (a *arena) removeAnchor(id AnchorID) int {
	deps := a.dependents(id)
	for _, sid := range deps {
		a.dropSpring(sid)
	}
	a.dropAnchor(id)
	return len(deps)
}

func (a *arena) liveAnchorIDs() []AnchorID {
	ids := make([]AnchorID, 0, a.numAnchors)
	for i := range a.anchors {
		if a.anchors[i].live {
			ids = append(ids, AnchorID{index: uint32(i), gen: a.anchors[i].gen})
		}
	}
	return ids
}
