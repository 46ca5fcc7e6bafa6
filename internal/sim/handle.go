package sim

import "fmt"

// Entity is a handle to an anchor or a spring.
type Entity interface {
	isEntity()
	fmt.Stringer
}

// AnchorID identifies an anchor slot and the generation that occupied it.
// The zero value never refers to a live anchor.
type AnchorID struct {
	index uint32
	gen   uint32
}

// SpringID identifies a spring slot and its generation.
type SpringID struct {
	index uint32
	gen   uint32
}

func (AnchorID) isEntity() {}
func (SpringID) isEntity() {}

func (id AnchorID) IsZero() bool { return id.gen == 0 }
func (id SpringID) IsZero() bool { return id.gen == 0 }

func (id AnchorID) String() string { return fmt.Sprintf("anchor#%d.%d", id.index, id.gen) }
func (id SpringID) String() string { return fmt.Sprintf("spring#%d.%d", id.index, id.gen) }
