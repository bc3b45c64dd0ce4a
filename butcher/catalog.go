package butcher

import "math"

// RK4 is the classical non-embedded 4-stage, order-4 explicit method.
func RK4() Table {
	return New("rk4", 4,
		[][]float64{
			{0, 0, 0, 0},
			{0.5, 0, 0, 0},
			{0, 0.5, 0, 0},
			{0, 0, 1, 0},
		},
		[]float64{1. / 6., 1. / 3., 1. / 3., 1. / 6.},
		[]float64{0, 0.5, 0.5, 1},
	)
}

// HeunEuler21 is the simplest embedded pair: Heun's method (order 2) with
// forward Euler (order 1) as the embedded error estimator.
func HeunEuler21() Table {
	return NewEmbedded("heun-euler21", 2, 1,
		[][]float64{
			{0, 0},
			{1, 0},
		},
		[]float64{0.5, 0.5},
		[]float64{1, 0},
		[]float64{0, 1},
	)
}

// BogackiShampine32 is the 4-stage, FSAL, order 3(2) embedded pair used by
// ode23 in most numerical packages.
func BogackiShampine32() Table {
	return NewEmbedded("bogacki-shampine32", 3, 2,
		[][]float64{
			{0, 0, 0, 0},
			{0.5, 0, 0, 0},
			{0, 0.75, 0, 0},
			{2. / 9., 1. / 3., 4. / 9., 0},
		},
		[]float64{2. / 9., 1. / 3., 4. / 9., 0},
		[]float64{7. / 24., 1. / 4., 1. / 3., 1. / 8.},
		[]float64{0, 0.5, 0.75, 1},
	)
}

// Fehlberg45 is the classical Runge-Kutta-Fehlberg 4(5) embedded pair
// (Table III of Fehlberg's 1969 report), ported from the coefficients the
// teacher's own RKF45Solver carried.
func Fehlberg45() Table {
	a := [][]float64{
		{0, 0, 0, 0, 0, 0},
		{1. / 4., 0, 0, 0, 0, 0},
		{3. / 32., 9. / 32., 0, 0, 0, 0},
		{1932. / 2197., -7200. / 2197., 7296. / 2197., 0, 0, 0},
		{439. / 216., -8., 3680. / 513., -845. / 4104., 0, 0},
		{-8. / 27., 2., -3544. / 2565., 1859. / 4104., -11. / 40., 0},
	}
	c := []float64{0, 1. / 4., 3. / 8., 12. / 13., 1., 0.5}
	b5 := []float64{16. / 135., 0, 6656. / 12825., 28561. / 56430., -9. / 50., 2. / 55.}
	b4 := []float64{25. / 216., 0, 1408. / 2565., 2197. / 4104., -1. / 5., 0}
	return NewEmbedded("fehlberg45", 5, 4, a, b5, b4, c)
}

// DormandPrince54 is the classical Dormand-Prince 5(4) embedded pair, the
// default workhorse of most ODE suites (MATLAB's ode45, SciPy's RK45),
// ported from the coefficients a DormandPrinceSolver implementation carried.
func DormandPrince54() Table {
	a := [][]float64{
		{0, 0, 0, 0, 0, 0, 0},
		{1. / 5., 0, 0, 0, 0, 0, 0},
		{3. / 40., 9. / 40., 0, 0, 0, 0, 0},
		{44. / 45., -56. / 15., 32. / 9., 0, 0, 0, 0},
		{19372. / 6561., -25360. / 2187., 64448. / 6561., -212. / 729., 0, 0, 0},
		{9017. / 3168., -355. / 33., 46732. / 5247., 49. / 176., -5103. / 18656., 0, 0},
		{35. / 384., 0, 500. / 1113., 125. / 192., -2187. / 6784., 11. / 84., 0},
	}
	c := []float64{0, 1. / 5., 3. / 10., 4. / 5., 8. / 9., 1., 1.}
	b5 := []float64{35. / 384., 0, 500. / 1113., 125. / 192., -2187. / 6784., 11. / 84., 0}
	b4 := []float64{5179. / 57600., 0, 7571. / 16695., 393. / 640., -92097. / 339200., 187. / 2100., 1. / 40.}
	return NewEmbedded("dormand-prince54", 5, 4, a, b5, b4, c)
}

// SDIRK2 is the 2-stage, order-2, L-stable singly-diagonally-implicit method
// with gamma = 1 - sqrt(2)/2, the same stability parameter PIROCK's implicit
// reaction correction uses for its own diagonal solve.
func SDIRK2() Table {
	gamma := 1 - math.Sqrt2/2
	return New("sdirk2", 2,
		[][]float64{
			{gamma, 0},
			{1 - gamma, gamma},
		},
		[]float64{1 - gamma, gamma},
		[]float64{gamma, 1},
	)
}

// DIRK23 is a 2-stage, order-2, L-stable diagonally-implicit method with an
// embedded order-1 estimator that weights only the last stage derivative
// (b2 = [0, 1]), giving a cheap a posteriori error signal without adding stages.
// It shares SDIRK2's tableau; see DESIGN.md for why a literature-exact,
// Crouzeix-style embedded DIRK2(3) pair was not used instead.
func DIRK23() Table {
	gamma := 1 - math.Sqrt2/2
	a := [][]float64{
		{gamma, 0},
		{1 - gamma, gamma},
	}
	c := []float64{gamma, 1}
	b2 := []float64{1 - gamma, gamma}
	b1 := []float64{0, 1}
	return NewEmbedded("dirk23", 2, 1, a, b2, b1, c)
}
