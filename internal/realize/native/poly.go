package native

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/lsim/internal/linalg"
)

// trimLeading drops leading coefficients with magnitude at most tol.
func trimLeading(p []float64, tol float64) []float64 {
	for len(p) > 0 && math.Abs(p[0]) <= tol {
		p = p[1:]
	}
	return p
}

func scaleTol(p []float64) float64 {
	max := 0.0
	for _, c := range p {
		if a := math.Abs(c); a > max {
			max = a
		}
	}
	return max * 1e-10
}

// horner evaluates p at x, highest power first.
func horner(p []float64, x float64) float64 {
	v := 0.0
	for _, c := range p {
		v = v*x + c
	}
	return v
}

// roots returns the zeros of p through the eigenvalues of its companion
// matrix.
func roots(p []float64) ([]complex128, error) {
	p = trimLeading(p, 0)
	if len(p) <= 1 {
		return nil, nil
	}
	n := len(p) - 1
	c := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		c.Set(0, j, -p[j+1]/p[0])
	}
	for i := 1; i < n; i++ {
		c.Set(i, i-1, 1)
	}
	return eigenvalues(c)
}

func eigenvalues(a mat.Matrix) ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, fmt.Errorf("%w: eigen decomposition did not converge", linalg.ErrInvalidArgument)
	}
	return eig.Values(nil), nil
}

// fromRoots expands prod(x - r) and keeps the real parts, which is exact for
// roots closed under conjugation.
func fromRoots(rs []complex128) []float64 {
	p := []complex128{1}
	for _, r := range rs {
		next := make([]complex128, len(p)+1)
		for i, c := range p {
			next[i] += c
			next[i+1] -= c * r
		}
		p = next
	}
	out := make([]float64, len(p))
	for i, c := range p {
		out[i] = real(c)
	}
	return out
}

// charPoly returns det(sI - a).
func charPoly(a *linalg.Matrix) ([]float64, error) {
	if a.IsEmpty() {
		return []float64{1}, nil
	}
	ev, err := eigenvalues(a.Dense())
	if err != nil {
		return nil, err
	}
	return fromRoots(ev), nil
}

func mapRoots(rs []complex128, T float64) []complex128 {
	out := make([]complex128, len(rs))
	for i, r := range rs {
		out[i] = cmplx.Exp(r * complex(T, 0))
	}
	return out
}
