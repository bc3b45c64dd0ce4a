package ponio

import (
	"math"
	"testing"

	"github.com/soypat/ponio/butcher"
	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
)

// linearExp builds an ExpFunc for the scalar linear operator L = lambda:
// exp(scale*L)*u = exp(scale*lambda)*u.
func linearExp(lambda float64) ExpFunc {
	return func(scale float64, u state.Vector) state.Vector {
		out := u.Clone()
		state.Scale(math.Exp(scale*lambda), out)
		return out
	}
}

func TestLawsonReducesToExponentialWithZeroNonlinearTerm(t *testing.T) {
	lambda := -2.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	n := func(t float64, u state.Vector) state.Vector { return u.CloneBlank() }
	problem := NewLawsonProblem(linearExp(lambda), n)
	m := NewLawson(problem, butcher.RK4(), u0)

	u := state.Vector(u0)
	tt, dt := 0.0, 0.1
	for i := 0; i < 10; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = m.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
	}
	require.InDelta(t, math.Exp(lambda*tt), u.At(0), 1e-6)
}

func TestLawsonPanicsOnNonExplicitTable(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	n := func(t float64, u state.Vector) state.Vector { return u.CloneBlank() }
	problem := NewLawsonProblem(linearExp(-1), n)
	require.Panics(t, func() {
		NewLawson(problem, butcher.SDIRK2(), u0)
	})
}

func TestExpRKIntegratesNonlinearForcing(t *testing.T) {
	lambda := -1.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 0})
	// N(t,u) = 1, driving u toward the steady state -1/lambda = 1.
	n := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, 1)
		return out
	}
	problem := NewLawsonProblem(linearExp(lambda), n)
	m := NewExpRK(problem, butcher.RK4(), u0)

	u := state.Vector(u0)
	tt, dt := 0.0, 0.01
	for i := 0; i < 2000; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = m.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
	}
	require.InDelta(t, 1.0, u.At(0), 1e-2)
}
