package ponio

import (
	"strings"
	"testing"

	"github.com/soypat/ponio/state"
	"github.com/stretchr/testify/require"
)

func TestInMemoryObserverAccumulatesSnapshots(t *testing.T) {
	o := NewInMemoryObserver()
	u := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1})
	o.Observe(0, u, 0.1)
	u.XEqual("x", 2)
	o.Observe(0.1, u, 0.1)

	require.Len(t, o.Snapshots, 2)
	require.Equal(t, 1.0, o.Snapshots[0].U.At(0))
	require.Equal(t, 2.0, o.Snapshots[1].U.At(0))
}

func TestWriterObserverWritesCSVRows(t *testing.T) {
	var sb strings.Builder
	o := NewWriterObserver(&sb)
	u := state.NewDenseFromMap(map[state.Symbol]float64{"x": 1, "y": 2})
	o.Observe(0, u, 0.1)
	require.NoError(t, o.Err())
	require.Equal(t, "0,1,2,0.1\n", sb.String())
}
