package ponio

import (
	"math"
	"testing"

	"github.com/soypat/ponio/butcher"
	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
)

func TestRangeVisitsEveryCheckpointExactly(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	problem := decayProblem(1.0)
	m := NewERK(problem, butcher.RK4(), u0)
	tspan := NewTimespan(0, 1, 0.3, 0.7)

	r, err := NewRange(problem, m, u0, tspan, 0.2)
	require.NoError(t, err)

	var times []float64
	for r.Next() {
		require.NoError(t, r.Err())
		times = append(times, r.Current().T)
	}
	require.True(t, r.Done())

	hit := func(target float64) bool {
		for _, tt := range times {
			if math.Abs(tt-target) < 1e-9 {
				return true
			}
		}
		return false
	}
	require.True(t, hit(0.3))
	require.True(t, hit(0.7))
	require.True(t, hit(1.0))
	require.InDelta(t, 1.0, times[len(times)-1], 1e-9)
}

func TestRangeCompareOrdersByTimeOnly(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	problem := decayProblem(1.0)
	m1 := NewERK(problem, butcher.RK4(), u0)
	m2 := NewERK(problem, butcher.RK4(), u0)
	tspan := NewTimespan(0, 1)

	r1, _ := NewRange(problem, m1, u0, tspan, 0.1)
	r2, _ := NewRange(problem, m2, u0, tspan, 0.1)
	require.True(t, r1.Equal(r2))

	r1.Next()
	require.Equal(t, 1, r1.Compare(r2))
	require.Equal(t, -1, r2.Compare(r1))
}

func TestNewRangeRejectsNonPositiveStep(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	problem := decayProblem(1.0)
	m := NewERK(problem, butcher.RK4(), u0)
	tspan := NewTimespan(0, 1)
	_, err := NewRange(problem, m, u0, tspan, 0)
	require.Error(t, err)
}
