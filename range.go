package ponio

import (
	"math"

	"github.com/soypat/ponio/state"
)

// Range is a forward-only, single-pass iterator over an integration:
// it owns the current (t, u, dt) triple, non-owning references to a Method
// and the checkpoint schedule, and clamps step sizes so every checkpoint
// (including the terminal time) is hit exactly rather than stepped over.
type Range struct {
	problem Problem
	step    Method
	u      state.Vector
	t      float64
	dt     float64
	end    float64

	checkpoints []float64
	cursor      int

	savedDt    float64
	hasSavedDt bool

	done bool
	info IterationInfo
	err  error
}

// NewRange constructs a Range over tspan, starting from u0 with initial step
// dt0, driven by method. problem is stored on the Range but is neither
// exposed nor called by it.
func NewRange(problem Problem, method Method, u0 state.Vector, tspan Timespan, dt0 float64) (*Range, error) {
	if dt0 <= 0 {
		return nil, newConfigError("NewRange", "initial step must be positive, got %g", dt0)
	}
	return &Range{
		problem:     problem,
		step:        method,
		u:           u0,
		t:           tspan.Start(),
		dt:          dt0,
		end:         tspan.End(),
		checkpoints: tspan.Checkpoints(),
	}, nil
}

// Done reports whether the range has reached its terminal time.
func (r *Range) Done() bool { return r.done }

// Err returns the error (if any) from the last Step call.
func (r *Range) Err() error { return r.err }

// Info returns the diagnostic info from the last Step call.
func (r *Range) Info() IterationInfo { return r.info }

// Current dereferences the range: the (t, u, dt) bundle at the cursor.
func (r *Range) Current() Snapshot {
	return Snapshot{T: r.t, U: r.u, Dt: r.dt}
}

// Next advances the range by one increment,
// reporting whether a new point was produced. Once the terminal time is
// reached, Next sets the internal time to +Inf and returns false.
func (r *Range) Next() bool {
	if r.done {
		return false
	}
	// 1. terminal time reached: stop.
	if r.t == r.end {
		r.t = math.Inf(1)
		r.done = true
		return false
	}
	// 2. restore a saved step size from a prior checkpoint clamp.
	if r.hasSavedDt {
		r.dt = r.savedDt
		r.hasSavedDt = false
	}
	// 3. clamp against the next checkpoint (the terminal time acts as an
	// implicit final checkpoint so the range always lands on it exactly).
	target := r.end
	atCheckpoint := false
	if r.cursor < len(r.checkpoints) && r.checkpoints[r.cursor] < r.end {
		target = r.checkpoints[r.cursor]
		atCheckpoint = true
	}
	if r.t+r.dt > target {
		r.savedDt = r.dt
		r.hasSavedDt = true
		r.dt = target - r.t
		if atCheckpoint {
			r.cursor++
		}
	}
	// 4. call the method and adopt its result.
	tNext, uNext, dtNext, info, err := r.step.Step(r.t, r.u, r.dt)
	r.info = info
	r.err = err
	r.t = tNext
	r.u = uNext
	r.dt = dtNext
	return true
}

// Compare orders two ranges by their current time only: negative if r is
// earlier, zero if equal, positive if later.
func (r *Range) Compare(other *Range) int {
	switch {
	case r.t < other.t:
		return -1
	case r.t > other.t:
		return 1
	default:
		return 0
	}
}

// Equal reports whether two ranges are at the same current time.
func (r *Range) Equal(other *Range) bool { return r.t == other.t }
