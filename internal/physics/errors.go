package physics

import "errors"

// Contract violations reported by entity constructors and the simulation surface.
var (
	// ErrInvalidArgument indicates a parameter outside its valid domain
	// (non-positive mass, non-finite stiffness, inverted clamp bounds).
	ErrInvalidArgument = errors.New("physics: invalid argument")

	// ErrInvalidState indicates an operation not allowed in the entity's current mode.
	ErrInvalidState = errors.New("physics: invalid state")

	// ErrNotFound indicates a handle that no longer refers to a live entity.
	ErrNotFound = errors.New("physics: entity not found")
)
