// Package statespace holds a linear time-invariant system in state-space form
// and advances it one sample at a time.
//
// A Model carries both the continuous matrices (A, B, C, D) and a discrete
// counterpart (Ad, Bd, Cd, Dd) for a fixed sample period. The selected Solver
// decides which set drives Step:
//
//	Discretized  x = Ad·x + Bd·u        y = Cd·x + Dd·u
//	Euler        x = x + (A·x + B·u)·h   y = C·x + D·u
//	Bilinear     x = x + (A·x + B·u)·h/2 y = C·x + D·u
//	RK4          classical Runge-Kutta   y = C·x + D·u
//
// Models are not safe for concurrent use. Clone one per goroutine.
package statespace
