package linalg

import (
	"fmt"

	"github.com/soypat/ponio/state"
	"gonum.org/v1/exp/linsolve"
	"gonum.org/v1/gonum/mat"
)

// DefaultNewton is the shared Newton iteration DIRK's Jacobian-form stage
// solve and PIROCK's implicit reaction correction fall back to
// when a Backend does not implement NewtonBackend itself: build the
// residual and its Jacobian at the current guess, solve the linear
// correction with GMRES (gonum/exp/linsolve), and iterate until the
// residual is below tol or maxIter is spent.
func DefaultNewton(residual func(state.Vector) state.Vector, jacobian func(state.Vector) *mat.Dense, x0 state.Vector, tol float64, maxIter int) (state.Vector, IterationReport, error) {
	n := x0.Len()
	x := x0.Clone()
	var report IterationReport
	for iter := 0; iter < maxIter; iter++ {
		fx := residual(x)
		res := state.NormInf(fx)
		report.Iterations = iter
		report.Residual = res
		if res <= tol {
			report.Converged = true
			return x, report, nil
		}
		j := jacobian(x)
		b := mat.NewVecDense(n, rawOf(fx, n))
		result, err := linsolve.Iterative(j, b, &linsolve.GMRES{}, &linsolve.Settings{MaxIterations: 2 * n})
		if err != nil {
			return x, report, fmt.Errorf("linalg: newton: linear solve: %w", err)
		}
		delta := result.X.RawVector().Data
		for i := 0; i < n; i++ {
			x.Set(i, x.At(i)-delta[i])
		}
	}
	return x, report, fmt.Errorf("linalg: newton: did not converge within %d iterations (residual %g)", maxIter, report.Residual)
}
