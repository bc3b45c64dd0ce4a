package ponio

import (
	"math"
	"testing"

	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
)

func TestPowerMethodEstimatesLinearSpectralRadius(t *testing.T) {
	lambda := 1000.0
	f := decayProblem(lambda).F
	u := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	fu := f(0, u)
	rho := powerMethod(f, 0, u, fu)
	require.InDelta(t, lambda, rho, lambda*0.2)
}

func TestROCK2HandlesStiffDecayWithoutBlowingUp(t *testing.T) {
	lambda := 2000.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	m := NewROCK2(decayProblem(lambda), false)

	u := state.Vector(u0)
	tt, dt := 0.0, 0.01
	for i := 0; i < 50; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = m.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
		require.False(t, state.HasNonFinite(u))
	}
	require.InDelta(t, math.Exp(-lambda*tt), u.At(0), 0.5)
}

func TestROCK2EmbeddedReportsError(t *testing.T) {
	lambda := 500.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	m := NewROCK2(decayProblem(lambda), true)
	m.AbsTol(1e-3).RelTol(1e-3)

	_, _, _, info, err := m.Step(0, u0, 0.01)
	require.NoError(t, err)
	require.GreaterOrEqual(t, info.Stages, rock2MinDeg)
}

func TestROCK4HandlesStiffDecay(t *testing.T) {
	lambda := 5000.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	m := NewROCK4(decayProblem(lambda), false)

	u := state.Vector(u0)
	tt, dt := 0.0, 0.005
	for i := 0; i < 50; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = m.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
		require.False(t, state.HasNonFinite(u))
	}
}

func TestRockDegreeClampsAndShrinksAtMax(t *testing.T) {
	deg, dt := rockDegree(1e9, 1.0, rock2MinDeg, rock2MaxDeg, rock2Formula, rock2Bound, nil, "test")
	require.Equal(t, rock2MaxDeg, deg)
	require.Less(t, dt, 1.0)
}
