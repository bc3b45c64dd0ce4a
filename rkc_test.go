package ponio

import (
	"math"
	"testing"

	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
)

func TestRKC2MatchesExponentialDecay(t *testing.T) {
	lambda := 4.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	m := NewRKC2(decayProblem(lambda), 6, u0)

	u := state.Vector(u0)
	tt, dt := 0.0, 0.02
	for i := 0; i < 50; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = m.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
	}
	require.InDelta(t, math.Exp(-lambda*tt), u.At(0), 1e-3)
}

func TestRKC2PanicsOnTooFewStages(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	require.Panics(t, func() { NewRKC2(decayProblem(1), 1, u0) })
}

func TestRKL1AndRKL2Converge(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	lambda := 2.0

	l1 := NewRKL1(decayProblem(lambda), 8, u0)
	u := state.Vector(u0)
	tt, dt := 0.0, 0.02
	for i := 0; i < 50; i++ {
		var err error
		tt, u, dt, _, err = l1.Step(tt, u, dt)
		require.NoError(t, err)
	}
	require.InDelta(t, math.Exp(-lambda*tt), u.At(0), 5e-2)

	l2 := NewRKL2(decayProblem(lambda), 8, u0)
	u2 := state.Vector(u0)
	tt2, dt2 := 0.0, 0.02
	for i := 0; i < 50; i++ {
		var err error
		tt2, u2, dt2, _, err = l2.Step(tt2, u2, dt2)
		require.NoError(t, err)
	}
	require.InDelta(t, math.Exp(-lambda*tt2), u2.At(0), 1e-3)
}
