package state

import "sort"

// Symbol names a component of a Dense vector. Vectors built with
// NewDenseFromMap or XEqual address their variables by Symbol
// instead of raw index.
type Symbol string

// symbolTable is shared, by pointer, between a Dense vector and every clone
// and blank clone taken from it: the set of named variables never changes
// once a Dense vector exists, only the values do.
type symbolTable struct {
	index map[Symbol]int
	order []Symbol
}

// Dense is a named-variable dense vector, the default backend for ordinary
// differential equations and the method-of-lines semi-discretizations named
// in the purpose statement.
type Dense struct {
	syms *symbolTable
	x    []float64
}

// NewDense creates an empty Dense vector with no named variables.
func NewDense() *Dense {
	return &Dense{syms: &symbolTable{index: make(map[Symbol]int)}}
}

// NewDenseFromMap creates a Dense vector from a Symbol->value map. Symbols
// are assigned indices in sorted order so that two vectors built from maps
// with the same keys always compare element-wise consistently.
func NewDenseFromMap(m map[Symbol]float64) *Dense {
	d := NewDense()
	syms := make([]Symbol, 0, len(m))
	for s := range m {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	for _, s := range syms {
		d.XEqual(s, m[s])
	}
	return d
}

// NewDenseRaw wraps a plain slice as an anonymous Dense vector (no Symbol
// access). Used internally to hand a raw []float64 to callables that expect
// a Vector, e.g. inside Jacobian estimation.
func NewDenseRaw(x []float64) *Dense {
	return &Dense{x: x}
}

// X returns the value of a named variable. Panics if sym is unknown.
func (d *Dense) X(sym Symbol) float64 {
	if d.syms == nil {
		panic("state: Dense vector has no named variables")
	}
	idx, ok := d.syms.index[sym]
	if !ok {
		panic("state: symbol " + string(sym) + " does not exist in Dense vector")
	}
	return d.x[idx]
}

// XEqual sets a named variable, creating it if it does not yet exist.
func (d *Dense) XEqual(sym Symbol, v float64) {
	if d.syms == nil {
		d.syms = &symbolTable{index: make(map[Symbol]int)}
	}
	idx, ok := d.syms.index[sym]
	if !ok {
		idx = len(d.x)
		d.syms.index[sym] = idx
		d.syms.order = append(d.syms.order, sym)
		d.x = append(d.x, 0)
	}
	d.x[idx] = v
}

// Symbols returns the named variables in index order.
func (d *Dense) Symbols() []Symbol {
	if d.syms == nil {
		return nil
	}
	out := make([]Symbol, len(d.syms.order))
	copy(out, d.syms.order)
	return out
}

// Len implements Vector.
func (d *Dense) Len() int { return len(d.x) }

// At implements Vector.
func (d *Dense) At(i int) float64 { return d.x[i] }

// Set implements Vector.
func (d *Dense) Set(i int, v float64) { d.x[i] = v }

// Raw exposes the underlying slice for the fast arithmetic path.
func (d *Dense) Raw() []float64 { return d.x }

// Clone returns a deep copy of the values, sharing the (immutable) symbol
// table.
func (d *Dense) Clone() Vector {
	cp := make([]float64, len(d.x))
	copy(cp, d.x)
	return &Dense{syms: d.syms, x: cp}
}

// CloneBlank returns a same-shape vector of zeros, sharing the symbol table.
func (d *Dense) CloneBlank() Vector {
	return &Dense{syms: d.syms, x: make([]float64, len(d.x))}
}
