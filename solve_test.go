package ponio

import (
	"math"
	"testing"

	"github.com/soypat/ponio/butcher"
	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
)

func TestSolveRunsToCompletionAndCallsObserver(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	problem := decayProblem(1.0)
	m := NewERK(problem, butcher.RK4(), u0)
	tspan := NewTimespan(0, 2)

	obs := NewInMemoryObserver()
	final, err := Solve(problem, m, u0, tspan, 0.05, obs.Observe)
	require.NoError(t, err)
	require.InDelta(t, math.Exp(-2), final.At(0), 1e-4)
	require.NotEmpty(t, obs.Snapshots)
	last := obs.Snapshots[len(obs.Snapshots)-1]
	require.InDelta(t, 2.0, last.T, 1e-9)
}

func TestSolveWithNilObserver(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	problem := decayProblem(1.0)
	m := NewERK(problem, butcher.RK4(), u0)
	tspan := NewTimespan(0, 1)

	final, err := Solve(problem, m, u0, tspan, 0.1, nil)
	require.NoError(t, err)
	require.InDelta(t, math.Exp(-1), final.At(0), 1e-3)
}
