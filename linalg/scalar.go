package linalg

import "github.com/soypat/ponio/state"

// ScalarMatrix is the degenerate 1x1 "matrix" for scalar ODEs: just a
// float64, mirroring the original source's scalar linear_algebra
// specialization where identity(u) = 1 and solver(A,b) = b/A.
type ScalarMatrix float64

// Dim implements Matrix.
func (ScalarMatrix) Dim() int { return 1 }

// ScalarBackend is the linear-algebra backend for length-1 state.Scalar
// problems.
type ScalarBackend struct{}

// Identity implements Backend.
func (ScalarBackend) Identity(n int) Matrix {
	if n != 1 {
		panic("linalg: ScalarBackend used with non-scalar dimension")
	}
	return ScalarMatrix(1)
}

// Solve implements Backend: x = b/a.
func (ScalarBackend) Solve(a Matrix, b state.Vector) (state.Vector, error) {
	sm := float64(a.(ScalarMatrix))
	return state.NewScalar(b.At(0) / sm), nil
}
