package linalg

import "fmt"

// ToBackendLayout returns m's elements in column-major order, the native
// layout of numeric engines such as the one behind realize/engine.
func ToBackendLayout(m *Matrix) []float64 {
	out := make([]float64, m.rows*m.cols)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			out[c*m.rows+r] = m.data[r*m.cols+c]
		}
	}
	return out
}

// FromBackendLayout builds a matrix from a column-major buffer.
func FromBackendLayout(rows, cols int, data []float64) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dimension %dx%d", ErrInvalidArgument, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for a %dx%d column-major array", ErrInvalidArgument, len(data), rows, cols)
	}
	m := New(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.data[r*cols+c] = data[c*rows+r]
		}
	}
	return m, nil
}
