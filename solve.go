package ponio

import "github.com/soypat/ponio/state"

// Solve eagerly runs method to completion over tspan starting from u0,
// calling observe after every accepted step with (t, u, dt), and returns the final accepted state.
func Solve(problem Problem, method Method, u0 state.Vector, tspan Timespan, dt0 float64, observe Observer) (state.Vector, error) {
	r, err := NewRange(problem, method, u0, tspan, dt0)
	if err != nil {
		return nil, err
	}
	u := u0
	for r.Next() {
		if err := r.Err(); err != nil {
			return u, err
		}
		snap := r.Current()
		u = snap.U
		if observe != nil && r.Info().Success {
			observe(snap.T, snap.U, snap.Dt)
		}
	}
	return u, nil
}
