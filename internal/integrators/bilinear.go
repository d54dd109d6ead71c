package integrators

import "github.com/san-kum/lsim/internal/linalg"

// Bilinear advances the state by half an Euler step: x + f(x, u)*h*0.5.
//
// This is the update the simulator has always used under the "bilinear"
// name. It is not the trapezoidal (Tustin) rule and it lags the true
// trajectory; use the Discretized solver with Tustin matrices for that.
type Bilinear struct{}

func NewBilinear() *Bilinear {
	return &Bilinear{}
}

func (b *Bilinear) Step(dyn Dynamics, x, u *linalg.Matrix, h float64) (*linalg.Matrix, error) {
	dx, err := dyn.Derivative(x, u)
	if err != nil {
		return nil, err
	}
	result := x.Clone()
	if err := result.AddScaledInPlace(h*0.5, dx); err != nil {
		return nil, err
	}
	return result, nil
}
