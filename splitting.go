package ponio

import (
	"math"
	"runtime"

	"github.com/soypat/ponio/state"
	"golang.org/x/sync/errgroup"
)

// splitSolve microsteps method from tBegin to tEnd with nominal sub-step
// dtSub, clamping the final sub-step so it lands exactly on tEnd. It owns
// no state of its own: u itself is not written to; each Method.Step result
// replaces the current vector and the last one is returned.
func splitSolve(method Method, u state.Vector, tBegin, tEnd, dtSub float64) (state.Vector, error) {
	if dtSub <= 0 {
		panic(newConfigError("splitSolve", "sub-step must be positive, got %g", dtSub))
	}
	t := tBegin
	cur := u
	for t < tEnd {
		dt := dtSub
		if t+dt > tEnd {
			dt = tEnd - t
		}
		tNext, uNext, _, _, err := method.Step(t, cur, dt)
		if err != nil {
			return cur, err
		}
		cur = uNext
		t = tNext
	}
	return cur, nil
}

// Lie is the order-1 operator-splitting composite: it advances each
// sub-integrator in turn over the full step, the simplest possible way to
// combine N independently-stiff operators.
type Lie struct {
	sub    []Method
	subDt  []float64
	stages []state.Vector // last accepted state per sub-integrator, for Stages(i)
}

// NewLie builds a Lie-splitting composite from sub-integrators and their
// per-operator sub-step sizes (len(sub) == len(subDt)).
func NewLie(sub []Method, subDt []float64) *Lie {
	if len(sub) != len(subDt) {
		panic(newConfigError("NewLie", "sub and subDt length mismatch: %d vs %d", len(sub), len(subDt)))
	}
	return &Lie{sub: sub, subDt: subDt, stages: make([]state.Vector, len(sub))}
}

// Stages returns the last accepted state produced by the i-th sub-integrator.
func (m *Lie) Stages(i int) []state.Vector { return []state.Vector{m.stages[i]} }

// Step implements Method.
func (m *Lie) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	info := newIterationInfo()
	info.Stages = len(m.sub)
	cur := u
	for i, sub := range m.sub {
		out, err := splitSolve(sub, cur, t, t+dt, m.subDt[i])
		if err != nil {
			return t, u, dt * 0.5, info, nil
		}
		m.stages[i] = out
		cur = out
	}
	info.Success = true
	info.IsStep = true
	tNext := t + dt
	if state.HasNonFinite(cur) {
		return tNext, cur, dt, info, newArithmeticError("Lie.Step", "non-finite value at t=%g", tNext)
	}
	return tNext, cur, dt, info, nil
}

// Strang is the order-2 symmetric splitting composite: half-steps
// forward through the sub-integrators, a full step on the last, then
// half-steps back, so the composition is its own adjoint.
type Strang struct {
	sub    []Method
	subDt  []float64
	stages []state.Vector
}

// NewStrang builds a Strang-splitting composite from sub-integrators and
// their per-operator sub-step sizes.
func NewStrang(sub []Method, subDt []float64) *Strang {
	if len(sub) != len(subDt) {
		panic(newConfigError("NewStrang", "sub and subDt length mismatch: %d vs %d", len(sub), len(subDt)))
	}
	return &Strang{sub: sub, subDt: subDt, stages: make([]state.Vector, len(sub))}
}

// Stages returns the last accepted state produced by the i-th sub-integrator.
func (m *Strang) Stages(i int) []state.Vector { return []state.Vector{m.stages[i]} }

// Step implements Method.
func (m *Strang) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	info := newIterationInfo()
	n := len(m.sub)
	info.Stages = n
	cur := u
	tc := t

	half := dt / 2
	for i := 0; i < n-1; i++ {
		out, err := splitSolve(m.sub[i], cur, tc, tc+half, m.subDt[i])
		if err != nil {
			return t, u, dt * 0.5, info, nil
		}
		m.stages[i] = out
		cur = out
		tc += half
	}

	out, err := splitSolve(m.sub[n-1], cur, tc, tc+dt, m.subDt[n-1])
	if err != nil {
		return t, u, dt * 0.5, info, nil
	}
	m.stages[n-1] = out
	cur = out
	tc += dt

	for i := n - 2; i >= 0; i-- {
		out, err := splitSolve(m.sub[i], cur, tc, tc+half, m.subDt[i])
		if err != nil {
			return t, u, dt * 0.5, info, nil
		}
		m.stages[i] = out
		cur = out
		tc += half
	}

	info.Success = true
	info.IsStep = true
	tNext := t + dt
	if state.HasNonFinite(cur) {
		return tNext, cur, dt, info, newArithmeticError("Strang.Step", "non-finite value at t=%g", tNext)
	}
	return tNext, cur, dt, info, nil
}

// AdaptiveStrang runs a reference Strang composite at nominal dt alongside a
// delta-shifted one whose first sub-integrator gets (1/2+delta)*dt and last
// gets the mirrored (1/2-delta)*dt, using their discrepancy as an embedded
// error estimate. The two Strang composites are independent, so they
// are dispatched across goroutines via errgroup when GOMAXPROCS > 1 and run
// sequentially otherwise; either path produces the same accepted result.
type AdaptiveStrang struct {
	sub   []Method
	subDt []float64
	tol   float64
	delta float64

	ref     *Strang
	shifted *Strang
}

// NewAdaptiveStrang builds an adaptive Strang composite. delta controls the
// shifted pair's asymmetry; tol is the accept/reject threshold on the
// reference-vs-shifted discrepancy.
func NewAdaptiveStrang(sub []Method, subDt []float64, delta, tol float64) *AdaptiveStrang {
	return &AdaptiveStrang{
		sub:     sub,
		subDt:   subDt,
		tol:     tol,
		delta:   delta,
		ref:     NewStrang(sub, subDt),
		shifted: NewStrang(sub, subDt),
	}
}

// shiftedStep runs the delta-shifted Strang composite from (t, u) over dt,
// giving sub-integrator 0 (1/2+delta)*dt on the way out and (1/2-delta)*dt on
// the way back.
func (m *AdaptiveStrang) shiftedStep(t float64, u state.Vector, dt float64) (state.Vector, error) {
	n := len(m.shifted.sub)
	cur := u
	tc := t
	firstHalf := (0.5 + m.delta) * dt
	lastHalf := (0.5 - m.delta) * dt

	out, err := splitSolve(m.shifted.sub[0], cur, tc, tc+firstHalf, m.subDt[0])
	if err != nil {
		return nil, err
	}
	m.shifted.stages[0] = out
	cur = out
	tc += firstHalf

	for i := 1; i < n-1; i++ {
		half := dt / 2
		out, err := splitSolve(m.shifted.sub[i], cur, tc, tc+half, m.subDt[i])
		if err != nil {
			return nil, err
		}
		m.shifted.stages[i] = out
		cur = out
		tc += half
	}

	out, err = splitSolve(m.shifted.sub[n-1], cur, tc, tc+dt, m.subDt[n-1])
	if err != nil {
		return nil, err
	}
	m.shifted.stages[n-1] = out
	cur = out
	tc += dt

	for i := n - 2; i >= 1; i-- {
		half := dt / 2
		out, err := splitSolve(m.shifted.sub[i], cur, tc, tc+half, m.subDt[i])
		if err != nil {
			return nil, err
		}
		m.shifted.stages[i] = out
		cur = out
		tc += half
	}

	out, err = splitSolve(m.shifted.sub[0], cur, tc, tc+lastHalf, m.subDt[0])
	if err != nil {
		return nil, err
	}
	m.shifted.stages[0] = out
	cur = out
	return cur, nil
}

// Step implements Method.
func (m *AdaptiveStrang) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	info := newIterationInfo()
	info.Stages = len(m.sub)

	var uRef, uShifted state.Vector
	var refErr, shiftedErr error

	if runtime.GOMAXPROCS(0) > 1 {
		var g errgroup.Group
		g.Go(func() error {
			var err error
			_, uRef, _, _, err = m.ref.Step(t, u.Clone(), dt)
			refErr = err
			return nil
		})
		g.Go(func() error {
			var err error
			uShifted, err = m.shiftedStep(t, u.Clone(), dt)
			shiftedErr = err
			return nil
		})
		g.Wait()
	} else {
		_, uRef, _, _, refErr = m.ref.Step(t, u.Clone(), dt)
		uShifted, shiftedErr = m.shiftedStep(t, u.Clone(), dt)
	}

	if refErr != nil || shiftedErr != nil {
		return t, u, dt * 0.5, info, nil
	}

	diff := state.SubTo(uRef.CloneBlank(), uRef, uShifted)
	refNorm := state.Norm2(uRef)
	shiftedNorm := state.Norm2(uShifted)
	denom := 1 + math.Max(refNorm, shiftedNorm)
	errNorm := state.Norm2(diff) / denom
	info.Error = errNorm

	accept := errNorm < m.tol
	info.Success = accept
	info.IsStep = true

	var dtNext float64
	if errNorm > 0 {
		dtNext = 0.9 * math.Sqrt(m.tol/errNorm) * dt
	} else {
		dtNext = 5 * dt
	}
	dtNext = math.Min(5*dt, math.Max(0.2*dt, dtNext))

	if !accept {
		return t, u, dtNext, info, nil
	}
	tNext := t + dt
	if state.HasNonFinite(uRef) {
		return tNext, uRef, dtNext, info, newArithmeticError("AdaptiveStrang.Step", "non-finite value at t=%g", tNext)
	}
	return tNext, uRef, dtNext, info, nil
}

// LipschitzEstimate holds the (C0, omega) pair recovered from two defect
// norms by EstimateLipschitz, used by a caller to retune AdaptiveStrang's
// delta.
type LipschitzEstimate struct {
	C0    float64
	Omega float64
}

// EstimateLipschitz recovers (C0, omega) from two local-error measurements
// e1, e2 of a splitting method against itself at two (a, b, c) step triples,
// each satisfying |e_i - (a_i^3-b_i^3)*C0*dt^3| <= omega*C0*(c_i*dt)^3.
// Treating the bounds as equalities gives a quadratic in C0, whose positive
// root is taken; omega follows from the first triple's equation.
func EstimateLipschitz(e1, e2, a1, b1, c1, a2, b2, c2, dt float64) LipschitzEstimate {
	p := func(x float64) float64 { return x * x * x }
	d1 := p(a1) - p(b1)
	d2 := p(a2) - p(b2)
	c1p := p(c1 * dt)
	c2p := p(c2 * dt)
	c1s := c1p * c1p
	c2s := c2p * c2p

	alpha := c2s*d1*d1 - c1s*d2*d2
	beta := -2 * dt * dt * dt * (c2s*d1*e1 + c1s*d2*e2)
	gamma := c2s*e1*e1 - c1s*e2*e2

	if alpha == 0 {
		return LipschitzEstimate{}
	}
	discriminant := 2*beta*beta - alpha*gamma
	if discriminant < 0 {
		return LipschitzEstimate{}
	}
	c0 := (-beta - math.Sqrt(discriminant)) / (2 * alpha)
	if c0 == 0 {
		return LipschitzEstimate{}
	}
	omega := math.Abs(e1-d1*c0*dt*dt*dt) / (c0 * c1p)
	return LipschitzEstimate{C0: c0, Omega: omega}
}
