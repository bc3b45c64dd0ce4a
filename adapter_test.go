package ponio

import (
	"testing"

	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
)

func TestMethodAdapterDelegatesToUserStep(t *testing.T) {
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	problem := decayProblem(2.0)

	calls := 0
	fn := func(p Problem, t float64, u state.Vector, dt float64) (float64, state.Vector, float64) {
		calls++
		sp := p.(*SimpleProblem)
		du := sp.F(t, u)
		out := u.Clone()
		state.AddScaled(out, dt, du)
		return t + dt, out, dt
	}
	m := NewMethodAdapter(problem, fn)

	tNext, uNext, dtNext, info, err := m.Step(0, u0, 0.1)
	require.NoError(t, err)
	require.True(t, info.Success)
	require.Equal(t, 1, calls)
	require.InDelta(t, 0.1, tNext, 1e-12)
	require.InDelta(t, 0.8, uNext.At(0), 1e-12)
	require.Equal(t, 0.1, dtNext)
}
