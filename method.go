package ponio

import "github.com/soypat/ponio/state"

// Method is the stage driver's run-time shape: given the current accepted
// state, attempt one step and report where it landed. A rejected embedded
// estimate or a failed Newton solve is not retried inside Step: the attempt
// returns the unchanged (t, u), Success false and a smaller next step.
// Both the static-stage families (classical RK, DIRK, Lawson, exponential
// RK, RKC/RKL) and the dynamic-stage families (ROCK2/4, PIROCK, splitting)
// implement this same interface; only their internal stage storage differs.
type Method interface {
	// Step advances from (t, u) by dt, returning the next time, next state,
	// the step size to use for the following call (unchanged on a fixed-step
	// method, possibly shrunk/grown on an adaptive one), diagnostic info, and
	// an error only for fatal (non-recoverable) conditions.
	Step(t float64, u state.Vector, dt float64) (tNext float64, uNext state.Vector, dtNext float64, info IterationInfo, err error)
}

// tolerances holds the four chained-setter knobs every adaptive/implicit
// algorithm exposes: abs_tol, rel_tol, newton_tol, newton_max_iter.
type tolerances struct {
	absTol        float64
	relTol        float64
	newtonTol     float64
	newtonMaxIter int
}

func defaultTolerances() tolerances {
	return tolerances{
		absTol:        1e-4,
		relTol:        1e-4,
		newtonTol:     1e-10,
		newtonMaxIter: 50,
	}
}

func (t tolerances) weightedRMS(errv, ref state.Vector) float64 {
	return state.WeightedRMS(errv, t.absTol, t.relTol, ref)
}
