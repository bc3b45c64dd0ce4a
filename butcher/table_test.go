package butcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogConsistency(t *testing.T) {
	tables := []Table{RK4(), HeunEuler21(), BogackiShampine32(), Fehlberg45(), DormandPrince54(), SDIRK2(), DIRK23()}
	for _, tb := range tables {
		t.Run(tb.ID, func(t *testing.T) {
			require.NotZero(t, tb.N)
			require.Len(t, tb.B, tb.N)
			require.Len(t, tb.C, tb.N)
			require.Len(t, tb.A, tb.N)
			for i := range tb.A {
				require.Len(t, tb.A[i], tb.N)
			}
		})
	}
}

func TestExplicitVsDIRKClassification(t *testing.T) {
	require.True(t, RK4().IsExplicit())
	require.False(t, RK4().IsDIRK())
	require.True(t, SDIRK2().IsDIRK())
	require.False(t, SDIRK2().IsExplicit())
	require.True(t, DIRK23().IsDIRK())
}

func TestEmbeddedFlag(t *testing.T) {
	require.False(t, RK4().Embedded())
	require.True(t, DormandPrince54().Embedded())
	require.True(t, Fehlberg45().Embedded())
}

func TestNewPanicsOnInconsistentRow(t *testing.T) {
	require.Panics(t, func() {
		New("bad", 1, [][]float64{{0, 0}, {0.5, 0}}, []float64{0.5, 0.5}, []float64{0, 1}) // row 1 sums to 0.5 but c[1] is 1
	})
}

func TestBogackiShampineWeightsSumToOne(t *testing.T) {
	tb := BogackiShampine32()
	sum := 0.0
	for _, bi := range tb.B {
		sum += bi
	}
	require.InDelta(t, 1.0, sum, 1e-12)
	sum2 := 0.0
	for _, bi := range tb.B2 {
		sum2 += bi
	}
	require.InDelta(t, 1.0, sum2, 1e-12)
}
