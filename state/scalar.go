package state

// Scalar is the length-1 Vector backend for bare scalar ODEs (e.g. the
// Curtiss-Hirschfelder and exponential-decay test problems). Every core
// algorithm is written against Vector, so a scalar problem runs through
// exactly the same stage driver as a system: norm and arithmetic degrade
// to plain scalar operations purely because Len()==1, with no
// special-casing required in the driver.
type Scalar float64

// NewScalar returns a Vector wrapping v.
func NewScalar(v float64) *Scalar {
	s := Scalar(v)
	return &s
}

// Len implements Vector.
func (s *Scalar) Len() int { return 1 }

// At implements Vector.
func (s *Scalar) At(i int) float64 {
	if i != 0 {
		panic("state: Scalar index out of range")
	}
	return float64(*s)
}

// Set implements Vector.
func (s *Scalar) Set(i int, v float64) {
	if i != 0 {
		panic("state: Scalar index out of range")
	}
	*s = Scalar(v)
}

// Clone implements Vector.
func (s *Scalar) Clone() Vector {
	v := *s
	return &v
}

// CloneBlank implements Vector.
func (s *Scalar) CloneBlank() Vector {
	return NewScalar(0)
}

// Scalar intentionally does not implement the optional Raw() fast path:
// its backing store is not a slice, so arithmetic.go falls back to the
// At/Set loop for it (a single iteration, no meaningful cost).

// Value returns the underlying float64.
func (s *Scalar) Value() float64 { return float64(*s) }
