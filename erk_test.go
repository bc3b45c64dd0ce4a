package ponio

import (
	"math"
	"testing"

	"github.com/soypat/ponio/butcher"
	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
)

// decayProblem returns u' = -lambda*u, whose exact solution is the obvious
// exponential, used throughout as a well-conditioned smoke-test problem.
func decayProblem(lambda float64) *SimpleProblem {
	return NewSimpleProblem(func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, -lambda*u.At(0))
		return out
	})
}

func TestERKRK4MatchesExponentialDecay(t *testing.T) {
	lambda := 1.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	m := NewERK(decayProblem(lambda), butcher.RK4(), u0)

	u := state.Vector(u0)
	dt := 0.01
	tt := 0.0
	for i := 0; i < 100; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = m.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
	}
	want := math.Exp(-lambda * tt)
	require.InDelta(t, want, u.At(0), 1e-6)
}

func TestERKEmbeddedAdaptsStepSize(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	m := NewERK(decayProblem(50), butcher.BogackiShampine32(), u0)
	m.AbsTol(1e-6).RelTol(1e-6)

	_, _, dtNext, info, err := m.Step(0, u0, 1.0)
	require.NoError(t, err)
	// a stiff-ish decay with a large first guess should be rejected and dt shrunk.
	require.False(t, info.Success)
	require.Less(t, dtNext, 1.0)
}

func TestERKPanicsOnNonExplicitTable(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	require.Panics(t, func() {
		NewERK(decayProblem(1), butcher.SDIRK2(), u0)
	})
}
