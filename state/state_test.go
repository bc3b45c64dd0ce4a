package state

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDenseCreation(t *testing.T) {
	syms := []Symbol{"x", "y", "z"}
	d := NewDense()
	want := randVec(len(syms), 2)
	for i, s := range syms {
		d.XEqual(s, want[i])
	}
	require.Equal(t, len(syms), d.Len())
	for i, s := range syms {
		require.Equal(t, want[i], d.X(s))
	}
	require.Equal(t, syms, d.Symbols())
}

func TestDenseBadSymbol(t *testing.T) {
	d := NewDense()
	require.Panics(t, func() { d.X("nonexistent") })
}

func TestDenseCloneIsIndependent(t *testing.T) {
	d := NewDenseFromMap(map[Symbol]float64{"x": 1, "y": 2})
	clone := d.Clone().(*Dense)
	clone.XEqual("x", 99)
	require.Equal(t, 1.0, d.X("x"))
	require.Equal(t, 99.0, clone.X("x"))

	blank := d.CloneBlank()
	require.Equal(t, d.Len(), blank.Len())
	for i := 0; i < blank.Len(); i++ {
		require.Zero(t, blank.At(i))
	}
}

func TestArithmetic(t *testing.T) {
	a := NewDenseFromMap(map[Symbol]float64{"x": 1, "y": 2})
	b := NewDenseFromMap(map[Symbol]float64{"x": 10, "y": 20})

	dst := a.Clone()
	Add(dst, b)
	require.Equal(t, []float64{11, 22}, dst.(*Dense).Raw())

	dst2 := a.CloneBlank()
	AddScaledTo(dst2, a, 2, b)
	require.Equal(t, []float64{21, 42}, dst2.(*Dense).Raw())

	Scale(2, dst2)
	require.Equal(t, []float64{42, 84}, dst2.(*Dense).Raw())
}

func TestScalarDegradesLikeVector(t *testing.T) {
	s := NewScalar(-3)
	require.Equal(t, 1, s.Len())
	Abs(s)
	require.Equal(t, 3.0, s.Value())
	require.Equal(t, 3.0, Norm2(s))
	require.Equal(t, 3.0, NormInf(s))
}

func TestWeightedRMS(t *testing.T) {
	ref := NewDenseFromMap(map[Symbol]float64{"x": 1, "y": 1})
	err := NewDenseFromMap(map[Symbol]float64{"x": 1e-4, "y": 1e-4})
	e := WeightedRMS(err, 1e-6, 1e-4, ref)
	require.InDelta(t, 1e-4/(1e-6+1e-4), e, 1e-9)
}

func TestHasNonFinite(t *testing.T) {
	ok := NewDenseFromMap(map[Symbol]float64{"x": 1})
	require.False(t, HasNonFinite(ok))
	bad := NewDenseFromMap(map[Symbol]float64{"x": math.NaN()})
	require.True(t, HasNonFinite(bad))
}

func TestJacobianLinear(t *testing.T) {
	// f(u) = A*u with A = [[2,0],[0,3]] has Jacobian A everywhere.
	f := func(u Vector) Vector {
		out := u.CloneBlank()
		out.Set(0, 2*u.At(0))
		out.Set(1, 3*u.At(1))
		return out
	}
	u := NewDenseRaw([]float64{1, 1})
	var j mat.Dense
	Jacobian(&j, f, u, nil)
	require.InDelta(t, 2.0, j.At(0, 0), 1e-4)
	require.InDelta(t, 0.0, j.At(0, 1), 1e-4)
	require.InDelta(t, 0.0, j.At(1, 0), 1e-4)
	require.InDelta(t, 3.0, j.At(1, 1), 1e-4)
}

func randVec(n int, multiplier float64) []float64 {
	f := make([]float64, n)
	for i := range f {
		f[i] = rand.Float64() * multiplier
	}
	return f
}
