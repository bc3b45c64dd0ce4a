// Package state defines the value-type backends the integration core is
// written against. The core (package ponio) never assumes a concrete
// representation of the solution: it is handed a Vector and drives it
// through the free functions declared in this package. Two backends ship
// here — Dense, a named-variable dense vector, and Scalar, a length-1
// backend for bare scalar ODEs — mirroring the "scalar and dense" minimum
// a linear-algebra dispatch layer is expected to provide. Sparse vector and
// mesh field backends are plug-ins implementing the same interface.
package state

// Vector is the minimal contract a state representation must satisfy to be
// driven by the integration core: indexed read/write access plus the two
// allocation shapes every stage driver needs (a full copy, and a same-shape
// zeroed buffer for stage storage).
type Vector interface {
	Len() int
	At(i int) float64
	Set(i int, v float64)
	Clone() Vector
	CloneBlank() Vector
}

// rawVector is an optional fast path: backends whose storage is a flat
// []float64 can expose it directly so arithmetic.go can dispatch to
// gonum/floats instead of looping through At/Set.
type rawVector interface {
	Raw() []float64
}

func raw(v Vector) ([]float64, bool) {
	r, ok := v.(rawVector)
	if !ok {
		return nil, false
	}
	return r.Raw(), true
}

// SameShape reports whether a and b can be combined element-wise.
func SameShape(a, b Vector) bool {
	return a.Len() == b.Len()
}
