// Package butcher defines the immutable Runge-Kutta coefficient record the
// core's stage driver unrolls, plus the built-in coefficient catalog. The
// catalog is a data table consumed by the core; generating new tables from
// order conditions is out of scope.
package butcher

import "fmt"

// Table is an immutable Butcher tableau: the coefficient triple (A, b, c)
// plus an optional secondary weight vector B2 for an embedded pair.
type Table struct {
	ID string
	// N is the static stage count. Dynamic-stage families (ROCK, PIROCK) do
	// not use a Table at all; see the root package's rock.go/pirock.go.
	N int
	// P is the declared order of the primary weights B.
	P int
	A [][]float64
	B []float64
	C []float64
	// B2, when non-nil, is the secondary weight vector of an embedded pair;
	// Embedded reports true iff B2 is set.
	B2 []float64
	// P2 is the declared order of B2, when embedded.
	P2 int
}

// Embedded reports whether the table carries a secondary weight vector.
func (t Table) Embedded() bool { return t.B2 != nil }

// New builds a fixed (non-embedded) explicit or DIRK tableau, validating
// shapes per the data model invariants: A is s x s, b and c have length s,
// and c_i = sum_j A_ij (consistency condition).
func New(id string, p int, a [][]float64, b, c []float64) Table {
	t := Table{ID: id, N: len(b), P: p, A: a, B: b, C: c}
	if err := t.validate(); err != nil {
		panic(fmt.Sprintf("butcher: %s: %v", id, err))
	}
	return t
}

// NewEmbedded builds an embedded pair sharing stages A, c with two weight
// vectors b (order p) and b2 (order p2).
func NewEmbedded(id string, p int, p2 int, a [][]float64, b, b2, c []float64) Table {
	t := Table{ID: id, N: len(b), P: p, A: a, B: b, C: c, B2: b2, P2: p2}
	if err := t.validate(); err != nil {
		panic(fmt.Sprintf("butcher: %s: %v", id, err))
	}
	if len(b2) != t.N {
		panic(fmt.Sprintf("butcher: %s: b2 length %d does not match stage count %d", id, len(b2), t.N))
	}
	return t
}

func (t Table) validate() error {
	n := len(t.B)
	if n == 0 {
		return fmt.Errorf("zero stages")
	}
	if len(t.C) != n {
		return fmt.Errorf("c has length %d, want %d", len(t.C), n)
	}
	if len(t.A) != n {
		return fmt.Errorf("A has %d rows, want %d", len(t.A), n)
	}
	const tol = 1e-9
	for i := 0; i < n; i++ {
		if len(t.A[i]) != n {
			return fmt.Errorf("A row %d has length %d, want %d", i, len(t.A[i]), n)
		}
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += t.A[i][j]
		}
		if diff := sum - t.C[i]; diff > tol || diff < -tol {
			return fmt.Errorf("row %d: sum(A[i]) = %g, c[i] = %g (consistency condition violated)", i, sum, t.C[i])
		}
	}
	return nil
}

// IsExplicit reports whether A is strictly lower triangular, i.e. stage i
// depends only on stages 0..i-1.
func (t Table) IsExplicit() bool {
	for i := 0; i < t.N; i++ {
		for j := i; j < t.N; j++ {
			if t.A[i][j] != 0 {
				return false
			}
		}
	}
	return true
}

// IsDIRK reports whether A is lower triangular with a (possibly) nonzero
// diagonal and zero strictly above it: each stage is an independent,
// self-contained implicit solve.
func (t Table) IsDIRK() bool {
	for i := 0; i < t.N; i++ {
		for j := i + 1; j < t.N; j++ {
			if t.A[i][j] != 0 {
				return false
			}
		}
	}
	return !t.IsExplicit()
}
