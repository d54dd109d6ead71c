package native

import (
	"fmt"
	"math"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/lti"
	"github.com/san-kum/lsim/internal/statespace"
)

// gainProbes are the real frequencies tried, in order, when matching the
// static gain. The first that is not a pole or zero wins.
var gainProbes = []float64{0, -1, -0.5, -2, -0.1, -10}

// matched maps poles and zeros of num/den through z = exp(s·T). All but one
// zero at infinity land on z = -1, and the gain is matched at a real
// frequency.
func matched(num, den []float64, T float64) (statespace.Matrices, error) {
	num = trimLeading(num, scaleTol(num))
	den = trimLeading(den, 0)
	if len(num) == 0 {
		return canonical(nil, den)
	}
	if len(num) > len(den) {
		return statespace.Matrices{}, lti.ErrImproper
	}

	zs, err := roots(num)
	if err != nil {
		return statespace.Matrices{}, err
	}
	ps, err := roots(den)
	if err != nil {
		return statespace.Matrices{}, err
	}

	zd := mapRoots(zs, T)
	for i := 0; i < len(ps)-len(zs)-1; i++ {
		zd = append(zd, -1)
	}
	numD := fromRoots(zd)
	denD := fromRoots(mapRoots(ps, T))

	k, err := matchGain(num, den, numD, denD, T)
	if err != nil {
		return statespace.Matrices{}, err
	}
	for i := range numD {
		numD[i] *= k
	}
	return canonical(numD, denD)
}

func matchGain(num, den, numD, denD []float64, T float64) (float64, error) {
	const eps = 1e-12
	for _, s0 := range gainProbes {
		dc := horner(den, s0)
		if math.Abs(dc) < eps {
			continue
		}
		h := horner(num, s0) / dc
		z0 := math.Exp(s0 * T)
		nd, dd := horner(numD, z0), horner(denD, z0)
		if math.Abs(h) < eps || math.Abs(nd) < eps || math.Abs(dd) < eps {
			continue
		}
		return h * dd / nd, nil
	}
	return 0, fmt.Errorf("%w: no real frequency to match the gain at", linalg.ErrInvalidArgument)
}

// transfer recovers num/den of a single-channel system. By the matrix
// determinant lemma det(sI - A + BC) = det(sI - A)·(1 + C(sI - A)^-1·B), so
// num = det(sI - (A - BC)) + (D - 1)·det(sI - A).
func transfer(c statespace.Matrices) (num, den []float64, err error) {
	den, err = charPoly(c.A)
	if err != nil {
		return nil, nil, err
	}
	bc, err := c.B.Mul(c.C)
	if err != nil {
		return nil, nil, err
	}
	closed, err := c.A.Sub(bc)
	if err != nil {
		return nil, nil, err
	}
	cl, err := charPoly(closed)
	if err != nil {
		return nil, nil, err
	}

	d := c.D.At(0, 0)
	num = make([]float64, len(den))
	for i := range den {
		num[i] = cl[i] + (d-1)*den[i]
	}
	return trimLeading(num, scaleTol(den)), den, nil
}
