package native

import (
	"fmt"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/lti"
	"github.com/san-kum/lsim/internal/statespace"
)

// canonical realizes num/den in controllable canonical form:
//
//	A = [0 1 ... 0; ...; -a_n ... -a_1]  B = e_n  C = [b_n ... b_1]  D = b_0
//
// where den is normalized to be monic and b_i is the strictly proper part.
func canonical(num, den []float64) (statespace.Matrices, error) {
	den = trimLeading(den, 0)
	num = trimLeading(num, 0)
	if len(den) == 0 {
		return statespace.Matrices{}, fmt.Errorf("%w: zero denominator", linalg.ErrInvalidArgument)
	}
	if len(num) == 0 {
		return gain(0), nil
	}
	if len(num) > len(den) {
		return statespace.Matrices{}, fmt.Errorf("%w: numerator degree %d exceeds denominator degree %d",
			lti.ErrImproper, len(num)-1, len(den)-1)
	}

	n := len(den) - 1
	lead := den[0]
	a := make([]float64, n+1)
	b := make([]float64, n+1)
	for i := range den {
		a[i] = den[i] / lead
	}
	offset := len(den) - len(num)
	for i, c := range num {
		b[offset+i] = c / lead
	}
	if n == 0 {
		return gain(b[0]), nil
	}

	d := b[0]
	A := linalg.New(n, n)
	for i := 0; i < n-1; i++ {
		A.Set(i, i+1, 1)
	}
	for j := 0; j < n; j++ {
		A.Set(n-1, j, -a[n-j])
	}
	B := linalg.New(n, 1)
	B.Set(n-1, 0, 1)
	C := linalg.New(1, n)
	for j := 0; j < n; j++ {
		C.Set(0, j, b[n-j]-d*a[n-j])
	}
	return statespace.Matrices{A: A, B: B, C: C, D: linalg.FromRows([][]float64{{d}})}, nil
}

func gain(k float64) statespace.Matrices {
	return statespace.Matrices{
		A: linalg.New(0, 0),
		B: linalg.New(0, 1),
		C: linalg.New(1, 0),
		D: linalg.FromRows([][]float64{{k}}),
	}
}

// blockDiagonal realizes every entry of sys and joins them so that entry
// (out, in) drives its own block from input in into output out.
func blockDiagonal(sys *lti.MIMO) (statespace.Matrices, error) {
	type block struct {
		in, out int
		m       statespace.Matrices
	}
	var blocks []block
	n := 0
	for out := 0; out < sys.Outputs(); out++ {
		for in := 0; in < sys.Inputs(); in++ {
			tf, err := sys.TransferFunction(in, out)
			if err != nil {
				return statespace.Matrices{}, err
			}
			m, err := canonical(tf.Numerator(), tf.Denominator())
			if err != nil {
				return statespace.Matrices{}, fmt.Errorf("entry (%d,%d): %w", out, in, err)
			}
			blocks = append(blocks, block{in: in, out: out, m: m})
			n += m.A.Rows()
		}
	}

	res := statespace.Matrices{
		A: linalg.New(n, n),
		B: linalg.New(n, sys.Inputs()),
		C: linalg.New(sys.Outputs(), n),
		D: linalg.New(sys.Outputs(), sys.Inputs()),
	}
	off := 0
	for _, blk := range blocks {
		k := blk.m.A.Rows()
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				res.A.Set(off+i, off+j, blk.m.A.At(i, j))
			}
			res.B.Set(off+i, blk.in, blk.m.B.At(i, 0))
			res.C.Set(blk.out, off+i, blk.m.C.At(0, i))
		}
		res.D.Set(blk.out, blk.in, blk.m.D.At(0, 0))
		off += k
	}
	return res, nil
}
