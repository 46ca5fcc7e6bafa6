package sim

import "errors"

// ErrStopped is returned by operations that would advance a stopped simulation.
var ErrStopped = errors.New("sim: simulation stopped")
