package statespace

import (
	"context"
	"fmt"

	"github.com/san-kum/lsim/internal/linalg"
)

// Matrices is one (A, B, C, D) quadruple, continuous or discrete.
type Matrices struct {
	A *linalg.Matrix
	B *linalg.Matrix
	C *linalg.Matrix
	D *linalg.Matrix
}

// Discretizer converts continuous matrices into a discrete set for the given
// sample period.
type Discretizer interface {
	Discretize(ctx context.Context, cont Matrices, timeStep float64, method C2DMethod) (Matrices, error)
}

// Dims returns the state, input and output counts implied by A, B and C.
func (m Matrices) Dims() (n, inputs, outputs int) {
	return m.A.Rows(), m.B.Cols(), m.C.Rows()
}

// Validate checks n = A.rows = A.cols = B.rows = C.cols, m = B.cols = D.cols
// and p = C.rows = D.rows.
func (m Matrices) Validate() error {
	if m.A == nil || m.B == nil || m.C == nil || m.D == nil {
		return fmt.Errorf("%w: missing state-space matrix", linalg.ErrInvalidArgument)
	}
	n := m.A.Rows()
	if m.A.Cols() != n {
		return mismatch("A square", m.A, m.A)
	}
	if m.B.Rows() != n {
		return mismatch("A/B rows", m.A, m.B)
	}
	if m.C.Cols() != n {
		return mismatch("A/C cols", m.A, m.C)
	}
	if m.D.Cols() != m.B.Cols() {
		return mismatch("B/D cols", m.B, m.D)
	}
	if m.D.Rows() != m.C.Rows() {
		return mismatch("C/D rows", m.C, m.D)
	}
	return nil
}

// SameShape reports whether every matrix of m has the shape of its
// counterpart in o.
func (m Matrices) SameShape(o Matrices) bool {
	same := func(a, b *linalg.Matrix) bool {
		ar, ac := a.Dims()
		br, bc := b.Dims()
		return ar == br && ac == bc
	}
	return same(m.A, o.A) && same(m.B, o.B) && same(m.C, o.C) && same(m.D, o.D)
}

func (m Matrices) Clone() Matrices {
	return Matrices{A: m.A.Clone(), B: m.B.Clone(), C: m.C.Clone(), D: m.D.Clone()}
}

func mismatch(op string, a, b *linalg.Matrix) error {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return &linalg.ShapeError{Op: op, LhsRows: ar, LhsCols: ac, RhsRows: br, RhsCols: bc}
}
