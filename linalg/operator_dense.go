package linalg

import (
	"fmt"

	"github.com/soypat/ponio/state"
	"gonum.org/v1/gonum/mat"
)

// DenseOperator is a dense-matrix linear operator L such that f(t,u) = L*u,
// the concrete Operator most implicit-operator and IMEX-operator test
// problems plug in.
type DenseOperator struct {
	M *mat.Dense
}

// Dim implements Operator.
func (d DenseOperator) Dim() int {
	r, _ := d.M.Dims()
	return r
}

// DenseOperatorBackend is the default OperatorBackend for dense linear
// operators, built on gonum/mat the same way DenseBackend is.
type DenseOperatorBackend struct{}

// Identity implements OperatorBackend.
func (DenseOperatorBackend) Identity(u state.Vector) Operator {
	n := u.Len()
	id := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		id.Set(i, i, 1)
	}
	return DenseOperator{M: id}
}

// Combine implements OperatorBackend: identity - scale*l.
func (DenseOperatorBackend) Combine(identity Operator, scale float64, l Operator) Operator {
	id := identity.(DenseOperator)
	lo := l.(DenseOperator)
	n := id.Dim()
	out := mat.NewDense(n, n, nil)
	out.Scale(-scale, lo.M)
	out.Add(out, id.M)
	return DenseOperator{M: out}
}

// Solve implements OperatorBackend, solving op*x = rhs by LU decomposition.
// u is accepted for interface parity with iterative backends but unused here.
func (DenseOperatorBackend) Solve(op Operator, u, rhs state.Vector) (state.Vector, int, error) {
	d, ok := op.(DenseOperator)
	if !ok {
		return nil, 0, fmt.Errorf("linalg: DenseOperatorBackend.Solve: unsupported operator type %T", op)
	}
	n := d.Dim()
	b := mat.NewVecDense(n, rawOf(rhs, n))
	var x mat.VecDense
	if err := x.SolveVec(d.M, b); err != nil {
		return nil, 1, fmt.Errorf("linalg: dense operator solve: %w", err)
	}
	out := state.NewDenseRaw(append([]float64(nil), x.RawVector().Data...))
	return out, 1, nil
}
