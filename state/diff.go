package state

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Jacobian approximates the Jacobian of f (an implicit problem's right-hand
// side, or a residual g(k) built around one) at u with the same
// gonum/diff/fd finite-difference machinery a Newton-Raphson solver uses,
// generalized from a fixed Diffs slice to any Vector->Vector callable so
// the DIRK Jacobian-form stage solve can reuse it.
func Jacobian(dst *mat.Dense, f func(Vector) Vector, u Vector, settings *fd.JacobianSettings) *mat.Dense {
	n := u.Len()
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = u.At(i)
	}
	fn := func(y, x []float64) {
		out := f(NewDenseRaw(x))
		for i := 0; i < n; i++ {
			y[i] = out.At(i)
		}
	}
	if dst.IsEmpty() {
		*dst = *mat.NewDense(n, n, nil)
	}
	fd.Jacobian(dst, fn, x, settings)
	return dst
}
