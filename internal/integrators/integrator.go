// Package integrators implements the continuous-time update rules used by
// statespace.Model: explicit Euler, the half-step bilinear blend and classical
// fourth-order Runge-Kutta.
//
// All rules hold the input u constant over the step and return a new state;
// the state passed in is never modified.
package integrators

import "github.com/san-kum/lsim/internal/linalg"

// Dynamics is a time-invariant system dx/dt = f(x, u).
type Dynamics interface {
	Derivative(x, u *linalg.Matrix) (*linalg.Matrix, error)
}

type Integrator interface {
	Step(dyn Dynamics, x, u *linalg.Matrix, h float64) (*linalg.Matrix, error)
}
