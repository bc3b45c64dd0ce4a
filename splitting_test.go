package ponio

import (
	"math"
	"testing"

	"github.com/soypat/ponio/butcher"
	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
)

// twoOperatorDecay splits u' = -(a+b)*u into two independently-stiff halves.
func twoOperatorDecay(a, b float64, u0 state.Vector) (Method, Method) {
	fa := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, -a*u.At(0))
		return out
	}
	fb := func(t float64, u state.Vector) state.Vector {
		out := u.CloneBlank()
		out.Set(0, -b*u.At(0))
		return out
	}
	ma := NewERK(NewSimpleProblem(fa), butcher.RK4(), u0)
	mb := NewERK(NewSimpleProblem(fb), butcher.RK4(), u0)
	return ma, mb
}

func TestLieSplittingApproximatesCombinedDecay(t *testing.T) {
	a, b := 1.0, 2.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	ma, mb := twoOperatorDecay(a, b, u0)
	lie := NewLie([]Method{ma, mb}, []float64{0.01, 0.01})

	u := state.Vector(u0)
	tt, dt := 0.0, 0.05
	for i := 0; i < 20; i++ {
		var err error
		var info IterationInfo
		tt, u, dt, info, err = lie.Step(tt, u, dt)
		require.NoError(t, err)
		require.True(t, info.Success)
	}
	require.InDelta(t, math.Exp(-(a+b)*tt), u.At(0), 0.05)
	require.Len(t, lie.Stages(0), 1)
}

func TestStrangSplittingIsMoreAccurateThanLie(t *testing.T) {
	a, b := 3.0, 5.0
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})

	maLie, mbLie := twoOperatorDecay(a, b, u0)
	lie := NewLie([]Method{maLie, mbLie}, []float64{0.05, 0.05})
	maStrang, mbStrang := twoOperatorDecay(a, b, u0)
	strang := NewStrang([]Method{maStrang, mbStrang}, []float64{0.05, 0.05})

	uLie := state.Vector(u0)
	uStrang := state.Vector(u0)
	tt, dt := 0.0, 0.2
	dtLie := dt
	for i := 0; i < 10; i++ {
		var err error
		tt, uLie, dtLie, _, err = lie.Step(tt, uLie, dtLie)
		require.NoError(t, err)
	}
	tt2, dtStrang := 0.0, dt
	for i := 0; i < 10; i++ {
		var err error
		tt2, uStrang, dtStrang, _, err = strang.Step(tt2, uStrang, dtStrang)
		require.NoError(t, err)
	}
	exact := math.Exp(-(a + b) * tt)
	require.Less(t, math.Abs(uStrang.At(0)-exact), math.Abs(uLie.At(0)-exact))
}

func TestAdaptiveStrangAcceptsSmoothProblem(t *testing.T) {
	a, b := 1.0, 1.5
	u0 := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	ma, mb := twoOperatorDecay(a, b, u0)
	as := NewAdaptiveStrang([]Method{ma, mb}, []float64{0.01, 0.01}, 0.05, 1e-3)

	_, u, dtNext, info, err := as.Step(0, u0, 0.02)
	require.NoError(t, err)
	require.True(t, info.Success)
	require.Greater(t, dtNext, 0.0)
	require.False(t, state.HasNonFinite(u))
}

func TestEstimateLipschitzReturnsFiniteValues(t *testing.T) {
	le := EstimateLipschitz(1e-6, 4e-7, 1.0, 0.5, 0.5, 0.5, 0.4, 0.1, 0.1)
	require.False(t, math.IsNaN(le.C0))
	require.False(t, math.IsNaN(le.Omega))
}
