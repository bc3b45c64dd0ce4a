// Command ponio-demo runs a handful of the library's reference scenarios
// and prints their results to stdout, replacing the library's old windowed
// pendulum demos with plain numeric output.
package main

import (
	"fmt"
	"math"

	"github.com/soypat/ponio"
	"github.com/soypat/ponio/butcher"
	"github.com/soypat/ponio/state"
)

func main() {
	exponentialDecay()
	curtissHirschfelder()
	lorenzStrang()
}

// exponentialDecay reproduces e via y' = y, y(0) = 1 integrated with RK4.
func exponentialDecay() {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"y": 1})
	problem := ponio.NewSimpleProblem(func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, u.At(0))
		return out
	})
	m := ponio.NewERK(problem, butcher.RK4(), u0)
	tspan := ponio.NewTimespan(0, 1)
	final, err := ponio.Solve(problem, m, u0, tspan, 0.02, nil)
	if err != nil {
		panic(err)
	}
	fmt.Printf("exponential decay: y(1) = %.6f (exp(1) = %.6f)\n", final.At(0), math.Exp(1))
}

// curtissHirschfelder runs the classic mildly-stiff test problem with an
// explicit RK3 and with DIRK23, and prints both values of y(2).
func curtissHirschfelder() {
	const k = 50.0
	rhs := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, k*(math.Cos(t)-u.At(0)))
		return out
	}

	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"y": 2})
	explicit := ponio.NewSimpleProblem(rhs)
	rk3 := ponio.NewERK(explicit, butcher.BogackiShampine32(), u0)
	tspan := ponio.NewTimespan(0, 2)
	yRK3, err := ponio.Solve(explicit, rk3, u0, tspan, 0.05, nil)
	if err != nil {
		panic(err)
	}

	u0b := state.NewDenseFromMap(map[state.Symbol]float64{"y": 2})
	implicit := ponio.NewImplicitProblem(rhs, nil)
	dirk := ponio.NewDIRK(implicit, butcher.DIRK23(), nil, u0b).NewtonTol(1e-5)
	yDIRK, err := ponio.Solve(implicit, dirk, u0b, tspan, 0.05, nil)
	if err != nil {
		panic(err)
	}

	fmt.Printf("curtiss-hirschfelder: RK3 y(2) = %.6f, DIRK23 y(2) = %.6f\n", yRK3.At(0), yDIRK.At(0))
}

// lorenzStrang integrates the Lorenz system with a Strang split between its
// linear and nonlinear parts and reports the final state.
func lorenzStrang() {
	const sigma, rho, beta = 10.0, 28.0, 8.0 / 3.0

	linear := func(t float64, u state.Vector) state.Vector {
		x, y, z := u.At(0), u.At(1), u.At(2)
		out := u.CloneBlank()
		out.Set(0, sigma*(y-x))
		out.Set(1, -y)
		out.Set(2, -beta*z)
		return out
	}
	nonlinear := func(t float64, u state.Vector) state.Vector {
		x, y, z := u.At(0), u.At(1), u.At(2)
		out := u.CloneBlank()
		out.Set(0, 0)
		out.Set(1, rho*x-x*z)
		out.Set(2, x*y)
		return out
	}

	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1, "y": 1, "z": 1})
	linearProblem := ponio.NewSimpleProblem(linear)
	nonlinearProblem := ponio.NewSimpleProblem(nonlinear)
	mLinear := ponio.NewERK(linearProblem, butcher.RK4(), u0)
	mNonlinear := ponio.NewERK(nonlinearProblem, butcher.RK4(), u0)
	strang := ponio.NewStrang([]ponio.Method{mLinear, mNonlinear}, []float64{0.0025, 0.0025})

	tspan := ponio.NewTimespan(0, 10)
	final, err := ponio.Solve(ponio.NewCompositeProblem(linear, nonlinear), strang, u0, tspan, 0.005, nil)
	if err != nil {
		panic(err)
	}
	fmt.Printf("lorenz (strang split): final state = (%.4f, %.4f, %.4f)\n", final.At(0), final.At(1), final.At(2))
}
