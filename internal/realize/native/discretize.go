package native

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/statespace"
)

func zoh(c statespace.Matrices, T float64) (statespace.Matrices, error) {
	n, m, _ := c.Dims()
	aug := mat.NewDense(n+m, n+m, nil)
	aug.Slice(0, n, 0, n).(*mat.Dense).Scale(T, c.A.Dense())
	aug.Slice(0, n, n, n+m).(*mat.Dense).Scale(T, c.B.Dense())

	var e mat.Dense
	e.Exp(aug)
	return statespace.Matrices{
		A: linalg.FromDense(e.Slice(0, n, 0, n)),
		B: linalg.FromDense(e.Slice(0, n, n, n+m)),
		C: c.C.Clone(),
		D: c.D.Clone(),
	}, nil
}

// foh applies the triangle hold. With Φ, Γ1, Γ2 from one exponential the
// state is shifted by Γ2·u so that the result stays a plain state-space
// system: Bd = Γ1 + ΦΓ2 - Γ2, Dd = D + CΓ2.
func foh(c statespace.Matrices, T float64) (statespace.Matrices, error) {
	n, m, _ := c.Dims()
	size := n + 2*m
	aug := mat.NewDense(size, size, nil)
	aug.Slice(0, n, 0, n).(*mat.Dense).Scale(T, c.A.Dense())
	aug.Slice(0, n, n, n+m).(*mat.Dense).Scale(T, c.B.Dense())
	for i := 0; i < m; i++ {
		aug.Set(n+i, n+m+i, 1)
	}

	var e mat.Dense
	e.Exp(aug)
	phi := e.Slice(0, n, 0, n)
	g1 := e.Slice(0, n, n, n+m)
	g2 := e.Slice(0, n, n+m, size)

	var bd mat.Dense
	bd.Mul(phi, g2)
	bd.Add(&bd, g1)
	bd.Sub(&bd, g2)

	var cg mat.Dense
	cg.Mul(c.C.Dense(), g2)
	cg.Add(&cg, c.D.Dense())

	return statespace.Matrices{
		A: linalg.FromDense(phi),
		B: linalg.FromDense(&bd),
		C: c.C.Clone(),
		D: linalg.FromDense(&cg),
	}, nil
}

// bilinear maps s = (z-1)/(alpha·(z+1)). alpha = T/2 is the Tustin transform.
func bilinear(c statespace.Matrices, alpha float64) (statespace.Matrices, error) {
	n, _, _ := c.Dims()
	a := c.A.Dense()

	var lhs mat.Dense
	lhs.Scale(-alpha, a)
	var rhs mat.Dense
	rhs.Scale(alpha, a)
	for i := 0; i < n; i++ {
		lhs.Set(i, i, lhs.At(i, i)+1)
		rhs.Set(i, i, rhs.At(i, i)+1)
	}

	var inv mat.Dense
	if err := inv.Inverse(&lhs); err != nil {
		return statespace.Matrices{}, fmt.Errorf("%w: I - %g·A is singular: %v", linalg.ErrInvalidArgument, alpha, err)
	}

	var ad, bd, cd, dd mat.Dense
	ad.Mul(&inv, &rhs)
	bd.Mul(&inv, c.B.Dense())
	bd.Scale(2*alpha, &bd)
	cd.Mul(c.C.Dense(), &inv)
	dd.Mul(&cd, c.B.Dense())
	dd.Scale(alpha, &dd)
	dd.Add(&dd, c.D.Dense())

	return statespace.Matrices{
		A: linalg.FromDense(&ad),
		B: linalg.FromDense(&bd),
		C: linalg.FromDense(&cd),
		D: linalg.FromDense(&dd),
	}, nil
}

func tustin(c statespace.Matrices, T float64) (statespace.Matrices, error) {
	return bilinear(c, T/2)
}

// prewarped matches the continuous response exactly at w rad/s.
func prewarped(c statespace.Matrices, T, w float64) (statespace.Matrices, error) {
	if w == 0 {
		return tustin(c, T)
	}
	if w < 0 || w*T >= math.Pi {
		return statespace.Matrices{}, fmt.Errorf("%w: prewarp frequency %g rad/s outside (0, pi/T)", linalg.ErrInvalidArgument, w)
	}
	return bilinear(c, math.Tan(w*T/2)/w)
}

func impulse(c statespace.Matrices, T float64) (statespace.Matrices, error) {
	var at mat.Dense
	at.Scale(T, c.A.Dense())
	var phi mat.Dense
	phi.Exp(&at)

	var bd mat.Dense
	bd.Mul(&phi, c.B.Dense())
	bd.Scale(T, &bd)

	var dd mat.Dense
	dd.Mul(c.C.Dense(), c.B.Dense())
	dd.Scale(T, &dd)
	dd.Add(&dd, c.D.Dense())

	return statespace.Matrices{
		A: linalg.FromDense(&phi),
		B: linalg.FromDense(&bd),
		C: c.C.Clone(),
		D: linalg.FromDense(&dd),
	}, nil
}
