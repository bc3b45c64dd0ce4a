package ponio

import "github.com/soypat/ponio/state"

// UserStep is a caller-supplied whole-step function: given the problem, the
// current (t, u) and a step size, produce the next (t', u', dt').
// Unlike the built-in drivers, an adapter's algorithm is opaque to the
// core: it owns no intermediate stage storage and may pick its own dynamic
// number of internal stages.
type UserStep func(problem Problem, t float64, u state.Vector, dt float64) (float64, state.Vector, float64)

// MethodAdapter wraps a UserStep as a Method, the lightweight bridge
// calls for so a caller's own integration routine can be driven by a Range
// exactly like any built-in algorithm.
type MethodAdapter struct {
	problem Problem
	step    UserStep
}

// NewMethodAdapter builds a Method that delegates every Step call to fn,
// threading problem through unchanged on each call.
func NewMethodAdapter(problem Problem, fn UserStep) *MethodAdapter {
	return &MethodAdapter{problem: problem, step: fn}
}

// Step implements Method by delegating to the wrapped UserStep. Diagnostic
// info is reported as a bare successful step since an opaque user routine
// exposes no stage count or error estimate of its own.
func (m *MethodAdapter) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	info := newIterationInfo()
	tNext, uNext, dtNext := m.step(m.problem, t, u, dt)
	info.Success = true
	info.IsStep = true
	return tNext, uNext, dtNext, info, nil
}
