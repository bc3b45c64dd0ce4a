package ponio

import (
	"github.com/soypat/ponio/linalg"
	"github.com/soypat/ponio/state"
	"gonum.org/v1/gonum/mat"
)

// Role identifies which operator of a (possibly multi-operator) Problem a
// callable, Jacobian, or eval counter belongs to.
type Role int

const (
	RoleExplicit Role = iota
	RoleImplicit
	RoleDiffusion
	RoleReaction
	RoleAdvection
)

func (r Role) String() string {
	switch r {
	case RoleExplicit:
		return "explicit"
	case RoleImplicit:
		return "implicit"
	case RoleDiffusion:
		return "diffusion"
	case RoleReaction:
		return "reaction"
	case RoleAdvection:
		return "advection"
	default:
		return "unknown"
	}
}

// ProblemKind discriminates the closed set of Problem shapes the driver
// understands.
type ProblemKind int

const (
	SimpleKind ProblemKind = iota
	ImplicitKind
	ImplicitOperatorKind
	IMEXKind
	LawsonKind
	CompositeKind
)

// Deriv is the "f returns du" calling convention: du = f(t, u).
type Deriv func(t float64, u state.Vector) state.Vector

// DerivInPlace is the "f writes into du" calling convention.
type DerivInPlace func(t float64, u state.Vector, du state.Vector)

// adaptInPlace resolves a DerivInPlace into a Deriv once, at construction
// time, per the Problem's chosen calling convention (Open Question a):
// never branch on calling convention per call.
func adaptInPlace(f DerivInPlace) Deriv {
	return func(t float64, u state.Vector) state.Vector {
		du := u.CloneBlank()
		f(t, u, du)
		return du
	}
}

// Jacobian evaluates df/du at (t, u).
type Jacobian func(t float64, u state.Vector) *mat.Dense

// OperatorFactory builds the linear operator L(t) such that f(t,u) = L(t)*u,
// for implicit-operator and IMEX-operator problems.
type OperatorFactory func(t float64) linalg.Operator

// Problem is the sum type every algorithm is built against; Kind reports
// which concrete shape a value is so a driver can type-switch to the
// fields it needs.
type Problem interface {
	Kind() ProblemKind
}

// SimpleProblem wraps a bare right-hand side with no implicit structure.
type SimpleProblem struct {
	F Deriv
}

func (SimpleProblem) Kind() ProblemKind { return SimpleKind }

// NewSimpleProblem builds a SimpleProblem from an "f returns du" callable.
func NewSimpleProblem(f Deriv) *SimpleProblem { return &SimpleProblem{F: f} }

// NewSimpleProblemInPlace builds a SimpleProblem from an "f writes into du" callable.
func NewSimpleProblemInPlace(f DerivInPlace) *SimpleProblem {
	return &SimpleProblem{F: adaptInPlace(f)}
}

// ImplicitProblem is a right-hand side paired with its Jacobian, the shape
// DIRK's Jacobian-form stage solve needs.
type ImplicitProblem struct {
	F   Deriv
	Jac Jacobian
}

func (ImplicitProblem) Kind() ProblemKind { return ImplicitKind }

// NewImplicitProblem builds an ImplicitProblem. jac may be nil, in which case
// the driver estimates it with state.Jacobian (finite differences) on demand;
// omitting it is never reported as an error.
func NewImplicitProblem(f Deriv, jac Jacobian) *ImplicitProblem {
	return &ImplicitProblem{F: f, Jac: jac}
}

// ImplicitOperatorProblem is a right-hand side plus a time-parameterized
// linear-operator factory: f(t,u) = L(t)*u, the shape DIRK's operator-form
// stage solve needs.
type ImplicitOperatorProblem struct {
	F         Deriv
	OpFactory OperatorFactory
	opBackend linalg.OperatorBackend
}

func (ImplicitOperatorProblem) Kind() ProblemKind { return ImplicitOperatorKind }

// NewImplicitOperatorProblem builds an ImplicitOperatorProblem. backend
// supplies Identity/Solve for the operator algebra.
func NewImplicitOperatorProblem(f Deriv, opFactory OperatorFactory, backend linalg.OperatorBackend) *ImplicitOperatorProblem {
	if opFactory == nil || backend == nil {
		panic(newConfigError("NewImplicitOperatorProblem", "opFactory and backend must both be non-nil"))
	}
	return &ImplicitOperatorProblem{F: f, OpFactory: opFactory, opBackend: backend}
}

// Backend returns the operator backend this problem was built with.
func (p *ImplicitOperatorProblem) Backend() linalg.OperatorBackend { return p.opBackend }

// IMEXProblem splits a right-hand side into an explicit part and an implicit
// part; Implicit must be an *ImplicitProblem or *ImplicitOperatorProblem.
type IMEXProblem struct {
	Explicit *SimpleProblem
	Implicit Problem
}

func (IMEXProblem) Kind() ProblemKind { return IMEXKind }

// NewIMEXProblem builds an IMEXProblem, validating that implicit is one of
// the two shapes an IMEX stage solve knows how to drive.
func NewIMEXProblem(explicit Deriv, implicit Problem) *IMEXProblem {
	switch implicit.(type) {
	case *ImplicitProblem, *ImplicitOperatorProblem:
	default:
		panic(newConfigError("NewIMEXProblem", "implicit part must be an ImplicitProblem or ImplicitOperatorProblem, got %T", implicit))
	}
	return &IMEXProblem{Explicit: &SimpleProblem{F: explicit}, Implicit: implicit}
}

// ExpFunc applies exp(scale*L) to u without the core ever constructing a
// matrix exponential itself; the caller supplies it.
type ExpFunc func(scale float64, u state.Vector) state.Vector

// LawsonProblem represents u' = L*u + N(t,u), carrying the caller-supplied
// matrix-exponential application rather than a matrix the core would need
// to exponentiate itself.
type LawsonProblem struct {
	Exp ExpFunc
	N   Deriv
}

func (LawsonProblem) Kind() ProblemKind { return LawsonKind }

// NewLawsonProblem builds a LawsonProblem from an exponential-application
// callable and a nonlinear remainder.
func NewLawsonProblem(exp ExpFunc, n Deriv) *LawsonProblem {
	return &LawsonProblem{Exp: exp, N: n}
}

// CompositeProblem is an ordered tuple of sub-right-hand-sides, addressable
// by index (splitting methods) or summed (whole-step evaluation).
type CompositeProblem struct {
	Fs []Deriv
}

func (CompositeProblem) Kind() ProblemKind { return CompositeKind }

// NewCompositeProblem builds a CompositeProblem from n>=1 sub-callables.
func NewCompositeProblem(fs ...Deriv) *CompositeProblem {
	if len(fs) == 0 {
		panic(newConfigError("NewCompositeProblem", "need at least one sub-problem"))
	}
	return &CompositeProblem{Fs: fs}
}

// Eval evaluates the i-th sub-problem at (t, u).
func (p *CompositeProblem) Eval(i int, t float64, u state.Vector) state.Vector {
	return p.Fs[i](t, u)
}

// EvalSum evaluates sum_i f_i(t, u) into a freshly allocated vector.
func (p *CompositeProblem) EvalSum(t float64, u state.Vector) state.Vector {
	out := u.CloneBlank()
	for _, f := range p.Fs {
		state.Add(out, f(t, u))
	}
	return out
}

// N returns the number of sub-problems.
func (p *CompositeProblem) N() int { return len(p.Fs) }
