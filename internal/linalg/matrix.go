package linalg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense, row-major matrix of float64 values.
//
// The zero value is a valid 0x0 matrix.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// New returns a zero-filled rows x cols matrix.
func New(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("linalg: negative dimension %dx%d", rows, cols))
	}
	m := &Matrix{rows: rows, cols: cols}
	if rows*cols > 0 {
		m.data = make([]float64, rows*cols)
	}
	return m
}

// FromRows builds a matrix from nested rows, rows[0] being the first row.
// Short rows are padded with zeros up to the longest one.
func FromRows(rows [][]float64) *Matrix {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	m := New(len(rows), cols)
	for r, row := range rows {
		copy(m.data[r*cols:], row)
	}
	return m
}

// FromSlice builds a rows x cols matrix from a row-major slice. The slice is copied.
func FromSlice(rows, cols int, data []float64) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dimension %dx%d", ErrInvalidArgument, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for a %dx%d matrix", ErrInvalidArgument, len(data), rows, cols)
	}
	m := New(rows, cols)
	copy(m.data, data)
	return m, nil
}

// ColumnVector returns an n x 1 matrix holding values.
func ColumnVector(values ...float64) *Matrix {
	m := New(len(values), 1)
	copy(m.data, values)
	return m
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{rows: m.rows, cols: m.cols}
	if m.data != nil {
		c.data = make([]float64, len(m.data))
		copy(c.data, m.data)
	}
	return c
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// IsEmpty reports whether the matrix has no elements.
func (m *Matrix) IsEmpty() bool { return m.rows*m.cols == 0 }

func (m *Matrix) inBounds(r, c int) bool {
	return r >= 0 && r < m.rows && c >= 0 && c < m.cols
}

// At returns the element at (r, c). It panics with an *IndexError when out of range.
func (m *Matrix) At(r, c int) float64 {
	if !m.inBounds(r, c) {
		panic(&IndexError{Row: r, Col: c, Rows: m.rows, Cols: m.cols})
	}
	return m.data[r*m.cols+c]
}

// Set stores v at (r, c). It panics with an *IndexError when out of range.
func (m *Matrix) Set(r, c int, v float64) {
	if !m.inBounds(r, c) {
		panic(&IndexError{Row: r, Col: c, Rows: m.rows, Cols: m.cols})
	}
	m.data[r*m.cols+c] = v
}

// Get is the checked form of At.
func (m *Matrix) Get(r, c int) (float64, error) {
	if !m.inBounds(r, c) {
		return 0, &IndexError{Row: r, Col: c, Rows: m.rows, Cols: m.cols}
	}
	return m.data[r*m.cols+c], nil
}

// Put is the checked form of Set.
func (m *Matrix) Put(r, c int, v float64) error {
	if !m.inBounds(r, c) {
		return &IndexError{Row: r, Col: c, Rows: m.rows, Cols: m.cols}
	}
	m.data[r*m.cols+c] = v
	return nil
}

// RawRowMajor returns a copy of the row-major buffer.
func (m *Matrix) RawRowMajor() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// Vector returns a flat copy of a column vector, or of column 0 otherwise.
func (m *Matrix) Vector() []float64 {
	if m.cols == 1 {
		return m.RawRowMajor()
	}
	if m.cols == 0 {
		return make([]float64, m.rows)
	}
	return m.Col(0)
}

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []float64 {
	if j < 0 || j >= m.cols {
		panic(&IndexError{Row: 0, Col: j, Rows: m.rows, Cols: m.cols})
	}
	out := make([]float64, m.rows)
	for r := 0; r < m.rows; r++ {
		out[r] = m.data[r*m.cols+j]
	}
	return out
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	if i < 0 || i >= m.rows {
		panic(&IndexError{Row: i, Col: 0, Rows: m.rows, Cols: m.cols})
	}
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

func (m *Matrix) sameShape(o *Matrix) bool {
	return m.rows == o.rows && m.cols == o.cols
}

// Add returns m + o.
func (m *Matrix) Add(o *Matrix) (*Matrix, error) {
	if !m.sameShape(o) {
		return nil, shapeErr("add", m, o, "identical shapes")
	}
	out := New(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i] + o.data[i]
	}
	return out, nil
}

// Sub returns m - o.
func (m *Matrix) Sub(o *Matrix) (*Matrix, error) {
	if !m.sameShape(o) {
		return nil, shapeErr("sub", m, o, "identical shapes")
	}
	out := New(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = m.data[i] - o.data[i]
	}
	return out, nil
}

// Mul returns the matrix product m * o.
func (m *Matrix) Mul(o *Matrix) (*Matrix, error) {
	if m.cols != o.rows {
		return nil, shapeErr("mul", m, o, "lhs cols must equal rhs rows")
	}
	out := New(m.rows, o.cols)
	mulInto(out.data, m, o)
	return out, nil
}

// mulInto writes m*o into dst, which must not alias either operand. gonum
// views the row-major buffers in place; an empty inner dimension gives zeros.
func mulInto(dst []float64, m, o *Matrix) {
	if len(dst) == 0 || m.cols == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	out := mat.NewDense(m.rows, o.cols, dst)
	out.Mul(mat.NewDense(m.rows, m.cols, m.data), mat.NewDense(o.rows, o.cols, o.data))
}

// Scale returns m * s.
func (m *Matrix) Scale(s float64) *Matrix {
	out := New(m.rows, m.cols)
	for i, v := range m.data {
		out.data[i] = v * s
	}
	return out
}

// DivScalar returns m / s. Division by zero follows IEEE-754.
func (m *Matrix) DivScalar(s float64) *Matrix {
	out := New(m.rows, m.cols)
	for i, v := range m.data {
		out.data[i] = v / s
	}
	return out
}

// AddInPlace sets m = m + o.
func (m *Matrix) AddInPlace(o *Matrix) error {
	if !m.sameShape(o) {
		return shapeErr("add", m, o, "identical shapes")
	}
	for i := range m.data {
		m.data[i] += o.data[i]
	}
	return nil
}

// SubInPlace sets m = m - o.
func (m *Matrix) SubInPlace(o *Matrix) error {
	if !m.sameShape(o) {
		return shapeErr("sub", m, o, "identical shapes")
	}
	for i := range m.data {
		m.data[i] -= o.data[i]
	}
	return nil
}

// MulInPlace sets m = m * o. The receiver takes the product's shape.
func (m *Matrix) MulInPlace(o *Matrix) error {
	if m.cols != o.rows {
		return shapeErr("mul", m, o, "lhs cols must equal rhs rows")
	}
	var data []float64
	if m.rows*o.cols > 0 {
		data = make([]float64, m.rows*o.cols)
		mulInto(data, m, o)
	}
	m.cols = o.cols
	m.data = data
	return nil
}

// ScaleInPlace sets m = m * s.
func (m *Matrix) ScaleInPlace(s float64) {
	for i := range m.data {
		m.data[i] *= s
	}
}

// DivInPlace sets m = m / s.
func (m *Matrix) DivInPlace(s float64) {
	for i := range m.data {
		m.data[i] /= s
	}
}

// AddScaledInPlace sets m = m + s*o.
func (m *Matrix) AddScaledInPlace(s float64, o *Matrix) error {
	if !m.sameShape(o) {
		return shapeErr("add", m, o, "identical shapes")
	}
	for i := range m.data {
		m.data[i] += s * o.data[i]
	}
	return nil
}

// CopyFrom overwrites m with the contents of o, which must have the same shape.
func (m *Matrix) CopyFrom(o *Matrix) error {
	if !m.sameShape(o) {
		return shapeErr("copy", m, o, "identical shapes")
	}
	copy(m.data, o.data)
	return nil
}

// Transpose transposes m in place and returns it.
func (m *Matrix) Transpose() *Matrix {
	if m.rows == m.cols {
		n := m.rows
		for r := 0; r < n; r++ {
			for c := r + 1; c < n; c++ {
				m.data[r*n+c], m.data[c*n+r] = m.data[c*n+r], m.data[r*n+c]
			}
		}
		return m
	}
	t := m.T()
	m.rows, m.cols, m.data = t.rows, t.cols, t.data
	return m
}

// T returns the transpose of m, leaving m unchanged.
func (m *Matrix) T() *Matrix {
	out := New(m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			out.data[c*m.rows+r] = m.data[r*m.cols+c]
		}
	}
	return out
}

// Equal reports exact element-wise equality. There is no tolerance.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if !m.sameShape(o) {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// EqualApprox reports whether every element differs by at most tol.
func (m *Matrix) EqualApprox(o *Matrix, tol float64) bool {
	if m == nil || o == nil {
		return m == o
	}
	if !m.sameShape(o) {
		return false
	}
	for i := range m.data {
		if math.Abs(m.data[i]-o.data[i]) > tol {
			return false
		}
	}
	return true
}

// IsFinite reports whether no element is NaN or Inf.
func (m *Matrix) IsFinite() bool {
	for _, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// String formats the matrix as "[a, b;\n c, d]".
func (m *Matrix) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for r := 0; r < m.rows; r++ {
		if r > 0 {
			b.WriteString(";\n ")
		}
		for c := 0; c < m.cols; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(m.data[r*m.cols+c], 'g', -1, 64))
		}
	}
	b.WriteByte(']')
	return b.String()
}
