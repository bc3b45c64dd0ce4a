package linalg

import (
	"fmt"

	"github.com/soypat/ponio/state"
	"gonum.org/v1/gonum/mat"
)

// DenseMatrix wraps a gonum dense matrix as the Matrix opaque type.
type DenseMatrix struct {
	M *mat.Dense
}

// Dim implements Matrix.
func (d DenseMatrix) Dim() int {
	r, _ := d.M.Dims()
	return r
}

// Combine returns I - scale*J as a DenseMatrix, the shape every Jacobian-form
// DIRK stage and PIROCK reaction solve needs: M = I - dt*a_ii*J.
func Combine(identity DenseMatrix, scale float64, j *mat.Dense) DenseMatrix {
	n := identity.Dim()
	out := mat.NewDense(n, n, nil)
	out.Scale(-scale, j)
	out.Add(out, identity.M)
	return DenseMatrix{M: out}
}

// DenseBackend is the default dense linear-algebra backend, built on
// gonum/mat the same way a NewtonRaphsonSolver builds its Jacobian with
// gonum/mat and gonum/diff/fd.
type DenseBackend struct{}

// Identity implements Backend.
func (DenseBackend) Identity(n int) Matrix {
	id := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		id.Set(i, i, 1)
	}
	return DenseMatrix{M: id}
}

// Solve implements Backend, solving A*x = b by LU decomposition.
func (DenseBackend) Solve(a Matrix, b state.Vector) (state.Vector, error) {
	dm, ok := a.(DenseMatrix)
	if !ok {
		return nil, fmt.Errorf("linalg: DenseBackend.Solve: unsupported matrix type %T", a)
	}
	n := dm.Dim()
	rhs := mat.NewVecDense(n, rawOf(b, n))
	var x mat.VecDense
	if err := x.SolveVec(dm.M, rhs); err != nil {
		return nil, fmt.Errorf("linalg: dense solve: %w", err)
	}
	out := state.NewDenseRaw(append([]float64(nil), x.RawVector().Data...))
	return out, nil
}

func rawOf(v state.Vector, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = v.At(i)
	}
	return out
}
