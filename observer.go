package ponio

import (
	"fmt"
	"io"

	"github.com/soypat/ponio/state"
)

// Observer is called once per accepted step, with the signature
// solve's observer parameter requires.
type Observer func(t float64, u state.Vector, dt float64)

// InMemoryObserver accumulates every accepted step into a Snapshot slice,
// for callers who want the whole trajectory rather than a streaming view.
type InMemoryObserver struct {
	Snapshots []Snapshot
}

// NewInMemoryObserver returns an empty InMemoryObserver.
func NewInMemoryObserver() *InMemoryObserver {
	return &InMemoryObserver{}
}

// Observe implements Observer's call signature; bind it as o.Observe.
func (o *InMemoryObserver) Observe(t float64, u state.Vector, dt float64) {
	o.Snapshots = append(o.Snapshots, Snapshot{T: t, U: u.Clone(), Dt: dt})
}

// WriterObserver streams each accepted step as a CSV row (t, u components,
// dt) to an io.Writer, writing eagerly rather than buffering a whole run.
type WriterObserver struct {
	w   io.Writer
	err error
}

// NewWriterObserver returns a WriterObserver writing CSV rows to w.
func NewWriterObserver(w io.Writer) *WriterObserver {
	return &WriterObserver{w: w}
}

// Observe implements Observer's call signature; bind it as o.Observe.
func (o *WriterObserver) Observe(t float64, u state.Vector, dt float64) {
	if o.err != nil {
		return
	}
	if _, err := fmt.Fprintf(o.w, "%g", t); err != nil {
		o.err = err
		return
	}
	for i := 0; i < u.Len(); i++ {
		if _, err := fmt.Fprintf(o.w, ",%g", u.At(i)); err != nil {
			o.err = err
			return
		}
	}
	if _, err := fmt.Fprintf(o.w, ",%g\n", dt); err != nil {
		o.err = err
		return
	}
}

// Err returns the first write error encountered, if any.
func (o *WriterObserver) Err() error { return o.err }
