package ponio

import (
	"testing"

	"github.com/soypat/ponio/linalg"
	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
)

func TestPIROCKRDHandlesStiffDiffusionWithReaction(t *testing.T) {
	diffusionLambda := 1000.0
	reactionLambda := 1.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})

	explicit := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, -diffusionLambda*u.At(0))
		return out
	}
	reaction := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, -reactionLambda*u.At(0))
		return out
	}
	implicit := NewImplicitProblem(reaction, nil)
	problem := NewIMEXProblem(explicit, implicit)

	m := NewPIROCKRD(problem, u0, false)
	u := state.Vector(u0)
	tt, dt := 0.0, 0.01
	for i := 0; i < 30; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = m.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
		require.False(t, state.HasNonFinite(u))
	}
}

func TestPIROCKRDPanicsOnOperatorFormImplicit(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	explicit := func(t float64, u state.Vector) state.Vector { return u.CloneBlank() }
	implicit := NewImplicitOperatorProblem(
		func(t float64, u state.Vector) state.Vector { return u.CloneBlank() },
		func(t float64) linalg.Operator { return linalg.DenseOperator{} },
		linalg.DenseOperatorBackend{},
	)
	problem := NewIMEXProblem(explicit, implicit)
	require.Panics(t, func() {
		NewPIROCKRD(problem, u0, false)
	})
}

func TestPIROCKRDAHandlesThreeOperators(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	reaction := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, -1*u.At(0))
		return out
	}
	diffusion := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, -800*u.At(0))
		return out
	}
	advection := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, -0.5*u.At(0))
		return out
	}
	problem := NewCompositeProblem(reaction, diffusion, advection)
	m := NewPIROCKRDA(problem, nil, u0, false)

	u := state.Vector(u0)
	tt, dt := 0.0, 0.01
	for i := 0; i < 10; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = m.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
		require.False(t, state.HasNonFinite(u))
	}
}
