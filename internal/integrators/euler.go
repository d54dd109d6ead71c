package integrators

import "github.com/san-kum/lsim/internal/linalg"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

// Step returns x + f(x, u)*h.
func (e *Euler) Step(dyn Dynamics, x, u *linalg.Matrix, h float64) (*linalg.Matrix, error) {
	dx, err := dyn.Derivative(x, u)
	if err != nil {
		return nil, err
	}
	result := x.Clone()
	if err := result.AddScaledInPlace(h, dx); err != nil {
		return nil, err
	}
	return result, nil
}
