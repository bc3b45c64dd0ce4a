package ponio

import (
	"github.com/soypat/ponio/butcher"
	"github.com/soypat/ponio/state"
)

// Lawson is the static-stage driver for Lawson-type Runge-Kutta methods
//: it integrates u' = L*u + N(t,u) by folding the linear part's
// matrix-exponential action into each stage, using the caller-supplied
// ExpFunc rather than ever constructing a matrix exponential itself
// (design note: "the core must not embed a matrix-exponential implementation").
type Lawson struct {
	exp   ExpFunc
	n     Deriv
	table butcher.Table
	k     []state.Vector
	zeta  []state.Vector
	stage state.Vector
	unext state.Vector
}

// NewLawson builds a Lawson method from problem and an explicit Butcher table.
func NewLawson(problem *LawsonProblem, table butcher.Table, u0 state.Vector) *Lawson {
	if !table.IsExplicit() {
		panic(newConfigError("NewLawson", "table %q is not explicit", table.ID))
	}
	m := &Lawson{exp: problem.Exp, n: problem.N, table: table}
	m.k = make([]state.Vector, table.N)
	m.zeta = make([]state.Vector, table.N)
	for i := range m.k {
		m.k[i] = u0.CloneBlank()
		m.zeta[i] = u0.CloneBlank()
	}
	m.stage = u0.CloneBlank()
	m.unext = u0.CloneBlank()
	return m
}

// Step implements Method.
func (m *Lawson) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	info := newIterationInfo()
	info.Stages = m.table.N
	tb := m.table

	for i := 0; i < tb.N; i++ {
		state.Copy(m.stage, u)
		for j := 0; j < i; j++ {
			if tb.A[i][j] != 0 {
				state.AddScaled(m.stage, dt*tb.A[i][j], m.k[j])
			}
		}
		ci := tb.C[i]
		ti := t + ci*dt
		// zeta_i = exp(c_i*dt*L) * stage
		m.zeta[i] = m.exp(ci*dt, m.stage)
		nval := m.n(ti, m.zeta[i])
		info.countEval(RoleExplicit)
		// k_i = exp(-c_i*dt*L) * (dt*N(t_i, zeta_i))
		state.Scale(dt, nval)
		m.k[i] = m.exp(-ci*dt, nval)
	}

	state.Copy(m.unext, u)
	for j := 0; j < tb.N; j++ {
		if tb.B[j] != 0 {
			state.AddScaled(m.unext, tb.B[j], m.k[j])
		}
	}
	final := m.exp(dt, m.unext)
	info.Success = true
	info.IsStep = true
	tNext := t + dt
	if state.HasNonFinite(final) {
		return tNext, final, dt, info, newArithmeticError("Lawson.Step", "non-finite value at t=%g", tNext)
	}
	return tNext, final, dt, info, nil
}

// ExpRK is the exponential-time-differencing (ETD) static-stage driver:
// structurally an explicit RK stage loop in which each stage argument is
// lifted by exp(c_i*dt*L) and the final combination by exp(dt*L). The
// weights are the table's plain scalar A and B entries; no phi-function of
// dt*L is evaluated or accepted.
type ExpRK struct {
	exp   ExpFunc
	n     Deriv
	table butcher.Table
	phiB  []float64
	k     []state.Vector
	stage state.Vector
	unext state.Vector
}

// NewExpRK builds an ExpRK method from problem and an explicit Butcher table.
// The phiB field is not set here and is not read by Step.
func NewExpRK(problem *LawsonProblem, table butcher.Table, u0 state.Vector) *ExpRK {
	if !table.IsExplicit() {
		panic(newConfigError("NewExpRK", "table %q is not explicit", table.ID))
	}
	m := &ExpRK{exp: problem.Exp, n: problem.N, table: table}
	m.k = make([]state.Vector, table.N)
	for i := range m.k {
		m.k[i] = u0.CloneBlank()
	}
	m.stage = u0.CloneBlank()
	m.unext = u0.CloneBlank()
	return m
}

// Step implements Method. It differs from a Lawson step in that each stage
// derivative k_i = dt*N(t_i, exp(c_i*dt*L)*stage_i) is not mapped back by
// exp(-c_i*dt*L) before the weighted sum.
func (m *ExpRK) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	info := newIterationInfo()
	info.Stages = m.table.N
	tb := m.table
	for i := 0; i < tb.N; i++ {
		state.Copy(m.stage, u)
		for j := 0; j < i; j++ {
			if tb.A[i][j] != 0 {
				state.AddScaled(m.stage, dt*tb.A[i][j], m.k[j])
			}
		}
		ti := t + tb.C[i]*dt
		lifted := m.exp(tb.C[i]*dt, m.stage)
		nval := m.n(ti, lifted)
		info.countEval(RoleExplicit)
		state.Scale(dt, nval)
		m.k[i] = nval
	}
	state.Copy(m.unext, u)
	for j := 0; j < tb.N; j++ {
		if tb.B[j] != 0 {
			state.AddScaled(m.unext, tb.B[j], m.k[j])
		}
	}
	final := m.exp(dt, m.unext)
	info.Success = true
	info.IsStep = true
	tNext := t + dt
	if state.HasNonFinite(final) {
		return tNext, final, dt, info, newArithmeticError("ExpRK.Step", "non-finite value at t=%g", tNext)
	}
	return tNext, final, dt, info, nil
}
