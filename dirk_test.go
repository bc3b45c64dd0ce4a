package ponio

import (
	"math"
	"testing"

	"github.com/soypat/ponio/butcher"
	"github.com/soypat/ponio/linalg"
	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDIRKJacobianFormMatchesDecay(t *testing.T) {
	lambda := 5.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	f := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, -lambda*u.At(0))
		return out
	}
	problem := NewImplicitProblem(f, nil)
	m := NewDIRK(problem, butcher.SDIRK2(), linalg.DenseBackend{}, u0)

	u := state.Vector(u0)
	tt, dt := 0.0, 0.05
	for i := 0; i < 40; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = m.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
	}
	want := math.Exp(-lambda * tt)
	require.InDelta(t, want, u.At(0), 1e-3)
}

func TestDIRKPanicsOnExplicitTable(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	f := func(t float64, u state.Vector) state.Vector { return u.CloneBlank() }
	problem := NewImplicitProblem(f, nil)
	require.Panics(t, func() {
		NewDIRK(problem, butcher.RK4(), linalg.DenseBackend{}, u0)
	})
}

func TestDIRKOperatorFormSolvesLinearDecay(t *testing.T) {
	lambda := 3.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	opFactory := func(t float64) linalg.Operator {
		return linalg.DenseOperator{M: mat.NewDense(1, 1, []float64{-lambda})}
	}
	f := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, -lambda*u.At(0))
		return out
	}
	problem := NewImplicitOperatorProblem(f, opFactory, linalg.DenseOperatorBackend{})
	m := NewDIRK(problem, butcher.SDIRK2(), nil, u0)

	u := state.Vector(u0)
	tt, dt := 0.0, 0.05
	for i := 0; i < 20; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = m.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
	}
	want := math.Exp(-lambda * tt)
	require.InDelta(t, want, u.At(0), 1e-2)
}
