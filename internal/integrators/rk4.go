package integrators

import "github.com/san-kum/lsim/internal/linalg"

type RK4 struct {
	scratch *linalg.Matrix
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(x *linalg.Matrix) {
	if r.scratch == nil || r.scratch.Rows() != x.Rows() || r.scratch.Cols() != x.Cols() {
		r.scratch = linalg.New(x.Rows(), x.Cols())
	}
}

// stage writes x + k*s into the scratch matrix and returns it.
func (r *RK4) stage(x, k *linalg.Matrix, s float64) (*linalg.Matrix, error) {
	if err := r.scratch.CopyFrom(x); err != nil {
		return nil, err
	}
	if err := r.scratch.AddScaledInPlace(s, k); err != nil {
		return nil, err
	}
	return r.scratch, nil
}

func (r *RK4) Step(dyn Dynamics, x, u *linalg.Matrix, h float64) (*linalg.Matrix, error) {
	r.ensureScratch(x)

	k1, err := dyn.Derivative(x, u)
	if err != nil {
		return nil, err
	}

	xs, err := r.stage(x, k1, h*0.5)
	if err != nil {
		return nil, err
	}
	k2, err := dyn.Derivative(xs, u)
	if err != nil {
		return nil, err
	}

	xs, err = r.stage(x, k2, h*0.5)
	if err != nil {
		return nil, err
	}
	k3, err := dyn.Derivative(xs, u)
	if err != nil {
		return nil, err
	}

	xs, err = r.stage(x, k3, h)
	if err != nil {
		return nil, err
	}
	k4, err := dyn.Derivative(xs, u)
	if err != nil {
		return nil, err
	}

	sum := k1.Clone()
	for _, term := range []struct {
		k *linalg.Matrix
		w float64
	}{{k2, 2}, {k3, 2}, {k4, 1}} {
		if err := sum.AddScaledInPlace(term.w, term.k); err != nil {
			return nil, err
		}
	}

	result := x.Clone()
	if err := result.AddScaledInPlace(h/6.0, sum); err != nil {
		return nil, err
	}
	return result, nil
}
