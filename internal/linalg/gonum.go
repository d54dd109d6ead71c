package linalg

import "gonum.org/v1/gonum/mat"

// Dense copies m into a gonum dense matrix. Empty matrices have no gonum
// representation and yield nil.
func (m *Matrix) Dense() *mat.Dense {
	if m.IsEmpty() {
		return nil
	}
	return mat.NewDense(m.rows, m.cols, m.RawRowMajor())
}

// FromDense copies any gonum matrix. A nil argument yields a 0x0 matrix.
func FromDense(a mat.Matrix) *Matrix {
	if a == nil {
		return New(0, 0)
	}
	r, c := a.Dims()
	m := New(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.data[i*c+j] = a.At(i, j)
		}
	}
	return m
}
