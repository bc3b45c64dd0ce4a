package ponio

import (
	"math"

	"github.com/soypat/ponio/butcher"
	"github.com/soypat/ponio/state"
)

// ERK is the static-stage driver for classical and embedded explicit
// Runge-Kutta methods: allocate N stage buffers shaped like u0, then
// loop calling the problem's right-hand side at each stage, generalizing the
// teacher's own RKF45Solver/DormandPrinceSolver from a hardcoded coefficient
// set to an arbitrary butcher.Table.
type ERK struct {
	f     Deriv
	table butcher.Table
	tol   tolerances
	k     []state.Vector
	stage state.Vector
	unext state.Vector
	u2    state.Vector
	errv  state.Vector
}

// NewERK builds an ERK method driving problem with table, sizing its stage
// buffers from u0.
func NewERK(problem *SimpleProblem, table butcher.Table, u0 state.Vector) *ERK {
	if !table.IsExplicit() {
		panic(newConfigError("NewERK", "table %q is not explicit", table.ID))
	}
	m := &ERK{f: problem.F, table: table, tol: defaultTolerances()}
	m.k = make([]state.Vector, table.N)
	for i := range m.k {
		m.k[i] = u0.CloneBlank()
	}
	m.stage = u0.CloneBlank()
	m.unext = u0.CloneBlank()
	if table.Embedded() {
		m.u2 = u0.CloneBlank()
		m.errv = u0.CloneBlank()
	}
	return m
}

// AbsTol sets the absolute tolerance for the embedded error estimate.
func (m *ERK) AbsTol(eps float64) *ERK { m.tol.absTol = eps; return m }

// RelTol sets the relative tolerance for the embedded error estimate.
func (m *ERK) RelTol(eps float64) *ERK { m.tol.relTol = eps; return m }

// Step implements Method.
func (m *ERK) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	info := newIterationInfo()
	info.Stages = m.table.N
	info.Tolerance = m.tol.absTol

	tb := m.table
	// m.k[j] already holds dt*f(stage_j) (see the ScaleTo call below), so the
	// stage accumulation weights it by the bare tableau coefficient.
	for i := 0; i < tb.N; i++ {
		state.Copy(m.stage, u)
		for j := 0; j < i; j++ {
			if tb.A[i][j] == 0 {
				continue
			}
			state.AddScaled(m.stage, tb.A[i][j], m.k[j])
		}
		ti := t + tb.C[i]*dt
		du := m.f(ti, m.stage)
		info.countEval(RoleExplicit)
		state.ScaleTo(m.k[i], dt, du)
	}

	state.Copy(m.unext, u)
	for j := 0; j < tb.N; j++ {
		if tb.B[j] == 0 {
			continue
		}
		state.AddScaled(m.unext, tb.B[j], m.k[j])
	}

	if !tb.Embedded() {
		info.Success = true
		info.IsStep = true
		tNext := t + dt
		if state.HasNonFinite(m.unext) {
			return tNext, m.unext, dt, info, newArithmeticError("ERK.Step", "non-finite value in accepted step at t=%g", tNext)
		}
		return tNext, m.unext.Clone(), dt, info, nil
	}

	state.Copy(m.u2, u)
	for j := 0; j < tb.N; j++ {
		if tb.B2[j] == 0 {
			continue
		}
		state.AddScaled(m.u2, tb.B2[j], m.k[j])
	}
	state.Abs(state.SubTo(m.errv, m.unext, m.u2))
	errNorm := m.tol.weightedRMS(m.errv, m.unext)
	info.Error = errNorm
	p := float64(tb.P)
	if tb.P2 < tb.P {
		p = float64(tb.P2) + 1 // embedded order is min(p,p2)+1 in the classical convention
	}

	accept := errNorm < 1
	info.Success = accept
	info.IsStep = true

	safety := 0.9
	growth := math.Pow(1/math.Max(errNorm, 1e-12), 1/p)
	dtNext := dt * math.Min(5, math.Max(0.2, safety*growth))

	if !accept {
		return t, u, dtNext, info, nil
	}
	tNext := t + dt
	if state.HasNonFinite(m.unext) {
		return tNext, m.unext, dtNext, info, newArithmeticError("ERK.Step", "non-finite value in accepted step at t=%g", tNext)
	}
	return tNext, m.unext.Clone(), dtNext, info, nil
}
