// Package linalg is the linear-algebra dispatch the core depends on for
// implicit and operator-based algorithms: given a matrix-like object built
// by the driver, produce an identity and solve a linear system against it.
// At least a scalar and a dense backend ship here; sparse and mesh backends
// are plug-ins satisfying the same interfaces, following the same use of
// gonum/mat and gonum/exp/linsolve a Newton-Raphson solver needs.
package linalg

import "github.com/soypat/ponio/state"

// Matrix is an opaque matrix-like value produced by a Backend's Identity and
// consumed by its Solve. The core never inspects a Matrix directly.
type Matrix interface {
	// Dim returns the matrix dimension (n for an n x n matrix).
	Dim() int
}

// Backend is the linear-algebra dispatch protocol a Jacobian-form implicit
// algorithm (DIRK) depends on: build an identity-shaped matrix and solve
// A*x = b against an arbitrary matrix built from it (typically I - dt*a_ii*J).
type Backend interface {
	Identity(n int) Matrix
	Solve(a Matrix, b state.Vector) (state.Vector, error)
}

// NewtonBackend is an optional capability a Backend may provide to override
// the shared default Newton loop (e.g. a backend with its own globalization
// strategy). The driver checks for it with a type assertion and falls back
// to DefaultNewton otherwise.
type NewtonBackend interface {
	Newton(f func(state.Vector) state.Vector, df func(state.Vector) Matrix, x0 state.Vector, tol float64, maxIter int) (state.Vector, IterationReport, error)
}

// Operator represents a linear operator L built by an OperatorBackend's
// Identity (for implicit-operator and IMEX-operator problems), such that
// f(t,u) = L*u. It supports the algebra a DIRK/PIROCK operator-form stage
// needs: combine with the identity and solve against a right-hand side.
type Operator interface {
	Dim() int
}

// OperatorBackend is the protocol implicit-operator problems depend on: lift
// a state to the identity operator, and solve (I - dt*a*L)*u = rhs, reporting
// how many linear-solver evaluations it spent (folded into IterationInfo).
type OperatorBackend interface {
	Identity(u state.Vector) Operator
	// Combine returns identity - scale*l as a new Operator, the shape every
	// implicit-operator DIRK/PIROCK stage needs: M = I - dt*a_ii*L.
	Combine(identity Operator, scale float64, l Operator) Operator
	Solve(op Operator, u, rhs state.Vector) (state.Vector, int, error)
}

// IterationReport is the subset of IterationInfo a Newton loop fills in;
// package ponio embeds it into the full IterationInfo after a stage solve.
type IterationReport struct {
	Iterations int
	Residual   float64
	Converged  bool
}
