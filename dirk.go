package ponio

import (
	"math"

	"github.com/soypat/ponio/butcher"
	"github.com/soypat/ponio/linalg"
	"github.com/soypat/ponio/state"
	"gonum.org/v1/gonum/mat"
)

// DIRK is the static-stage driver for diagonally-implicit Runge-Kutta
// methods: each stage is solved by Newton iteration (Jacobian-form,
// for an ImplicitProblem) or a single linear solve against I - dt*a_ii*L
// (operator-form, for an ImplicitOperatorProblem), selected once at
// construction by the Problem's concrete type.
type DIRK struct {
	table   butcher.Table
	tol     tolerances
	backend linalg.Backend

	implicit *ImplicitProblem
	operator *ImplicitOperatorProblem

	k        []state.Vector
	stage    state.Vector
	base     state.Vector
	unext    state.Vector
	u2       state.Vector
	errv     state.Vector
	identity linalg.DenseMatrix
}

// NewDIRK builds a DIRK method driving problem (an *ImplicitProblem or
// *ImplicitOperatorProblem) with table. backend is consulted for a
// Jacobian-form NewtonBackend override, falling back to
// linalg.DefaultNewton when it provides none; it is ignored for
// operator-form problems, which use their own OperatorBackend via
// problem.Backend().
func NewDIRK(problem Problem, table butcher.Table, backend linalg.Backend, u0 state.Vector) *DIRK {
	if !table.IsDIRK() {
		panic(newConfigError("NewDIRK", "table %q is not a DIRK tableau", table.ID))
	}
	m := &DIRK{table: table, tol: defaultTolerances(), backend: backend}
	switch p := problem.(type) {
	case *ImplicitProblem:
		m.implicit = p
		n := u0.Len()
		id := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			id.Set(i, i, 1)
		}
		m.identity = linalg.DenseMatrix{M: id}
	case *ImplicitOperatorProblem:
		m.operator = p
	default:
		panic(newConfigError("NewDIRK", "problem must be ImplicitProblem or ImplicitOperatorProblem, got %T", problem))
	}
	m.k = make([]state.Vector, table.N)
	for i := range m.k {
		m.k[i] = u0.CloneBlank()
	}
	m.stage = u0.CloneBlank()
	m.base = u0.CloneBlank()
	m.unext = u0.CloneBlank()
	if table.Embedded() {
		m.u2 = u0.CloneBlank()
		m.errv = u0.CloneBlank()
	}
	return m
}

// NewtonTol sets the Newton convergence tolerance for the Jacobian-form solve.
func (m *DIRK) NewtonTol(eps float64) *DIRK { m.tol.newtonTol = eps; return m }

// NewtonMaxIter sets the Newton iteration cap for the Jacobian-form solve.
func (m *DIRK) NewtonMaxIter(n int) *DIRK { m.tol.newtonMaxIter = n; return m }

// AbsTol sets the absolute tolerance for the embedded error estimate.
func (m *DIRK) AbsTol(eps float64) *DIRK { m.tol.absTol = eps; return m }

// RelTol sets the relative tolerance for the embedded error estimate.
func (m *DIRK) RelTol(eps float64) *DIRK { m.tol.relTol = eps; return m }

// Step implements Method.
func (m *DIRK) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	info := newIterationInfo()
	info.Stages = m.table.N
	info.Tolerance = m.tol.newtonTol
	tb := m.table

	for i := 0; i < tb.N; i++ {
		state.Copy(m.base, u)
		for j := 0; j < i; j++ {
			if tb.A[i][j] != 0 {
				state.AddScaled(m.base, dt*tb.A[i][j], m.k[j])
			}
		}
		aii := tb.A[i][i]
		ti := t + tb.C[i]*dt

		var ki state.Vector
		var err error
		if m.operator != nil {
			ki, err = m.stageOperatorForm(ti, aii, dt, &info)
		} else {
			ki, err = m.stageJacobianForm(ti, aii, dt, &info)
		}
		if err != nil {
			return t, u, dt * 0.5, info, nil
		}
		state.Copy(m.k[i], ki)
	}

	// m.k[j] holds the raw stage derivative f(t_j, u_j) (Newton solves for
	// k = f(...), not dt*f(...)), so the final combination weights it by dt*b_j.
	state.Copy(m.unext, u)
	for j := 0; j < tb.N; j++ {
		state.AddScaled(m.unext, dt*tb.B[j], m.k[j])
	}

	if !tb.Embedded() {
		info.Success = true
		info.IsStep = true
		tNext := t + dt
		if state.HasNonFinite(m.unext) {
			return tNext, m.unext, dt, info, newArithmeticError("DIRK.Step", "non-finite value at t=%g", tNext)
		}
		return tNext, m.unext.Clone(), dt, info, nil
	}

	state.Copy(m.u2, u)
	for j := 0; j < tb.N; j++ {
		state.AddScaled(m.u2, dt*tb.B2[j], m.k[j])
	}
	state.Abs(state.SubTo(m.errv, m.unext, m.u2))
	errNorm := m.tol.weightedRMS(m.errv, m.unext)
	info.Error = errNorm
	p := float64(tb.P)
	accept := errNorm < 1
	info.Success = accept
	info.IsStep = true
	dtNext := dt * math.Min(5, math.Max(0.2, 0.9*math.Pow(1/math.Max(errNorm, 1e-12), 1/p)))
	if !accept {
		return t, u, dtNext, info, nil
	}
	tNext := t + dt
	if state.HasNonFinite(m.unext) {
		return tNext, m.unext, dtNext, info, newArithmeticError("DIRK.Step", "non-finite value at t=%g", tNext)
	}
	return tNext, m.unext.Clone(), dtNext, info, nil
}

// stageJacobianForm solves g(k) = k - f(ti, base + dt*aii*k) = 0 by Newton,
// the classic DIRK stage residual, with Jacobian I - dt*aii*df/du.
func (m *DIRK) stageJacobianForm(ti, aii, dt float64, info *IterationInfo) (state.Vector, error) {
	base := m.base
	f := m.implicit.F
	arg := base.CloneBlank()
	residual := func(k state.Vector) state.Vector {
		state.AddScaledTo(arg, base, dt*aii, k)
		info.countEval(RoleImplicit)
		out := f(ti, arg)
		state.Sub(out, k)
		state.Scale(-1, out)
		return out
	}
	buildJacobian := func(k state.Vector) linalg.DenseMatrix {
		state.AddScaledTo(arg, base, dt*aii, k)
		var jf *mat.Dense
		if m.implicit.Jac != nil {
			jf = m.implicit.Jac(ti, arg)
		} else {
			var jfVal mat.Dense
			fWrap := func(v state.Vector) state.Vector { return f(ti, v) }
			state.Jacobian(&jfVal, fWrap, arg, nil)
			jf = &jfVal
		}
		return linalg.Combine(m.identity, dt*aii, jf)
	}
	x0 := base.Clone()

	// a backend implementing NewtonBackend overrides the shared default loop.
	if nb, ok := m.backend.(linalg.NewtonBackend); ok {
		jacobianM := func(k state.Vector) linalg.Matrix { return buildJacobian(k) }
		x, report, err := nb.Newton(residual, jacobianM, x0, m.tol.newtonTol, m.tol.newtonMaxIter)
		info.Error = report.Residual
		if err != nil {
			return nil, &ConvergenceError{Op: "DIRK.stageJacobianForm", Iterations: report.Iterations, Residual: report.Residual}
		}
		return x, nil
	}

	jacobian := func(k state.Vector) *mat.Dense { return buildJacobian(k).M }
	x, report, err := linalg.DefaultNewton(residual, jacobian, x0, m.tol.newtonTol, m.tol.newtonMaxIter)
	info.Error = report.Residual
	if err != nil {
		return nil, &ConvergenceError{Op: "DIRK.stageJacobianForm", Iterations: report.Iterations, Residual: report.Residual}
	}
	return x, nil
}

// stageOperatorForm solves (I - dt*aii*L)*u_i = base, then k_i = f(ti, u_i).
func (m *DIRK) stageOperatorForm(ti, aii, dt float64, info *IterationInfo) (state.Vector, error) {
	op := m.operator
	backend := op.Backend()
	L := op.OpFactory(ti)
	ident := backend.Identity(m.base)
	combined := backend.Combine(ident, dt*aii, L)
	ui, nEval, err := backend.Solve(combined, m.base, m.base)
	if info.NumberOfEval == nil {
		info.NumberOfEval = make(map[Role]int, 1)
	}
	info.NumberOfEval[RoleImplicit] += nEval
	if err != nil {
		return nil, err
	}
	ki := op.F(ti, ui)
	return ki, nil
}
