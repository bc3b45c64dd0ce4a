package ponio

import "github.com/soypat/ponio/state"

// Snapshot bundles a single accepted point of an integration: the time, the
// state at that time, and the step size that produced it (or that will be
// attempted next, depending on context).
type Snapshot struct {
	T  float64
	U  state.Vector
	Dt float64
}
