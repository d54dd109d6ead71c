// Package linalg provides the dense real matrix used for all multi-dimensional
// numeric data in lsim.
//
// A [Matrix] owns a contiguous row-major buffer of rows*cols float64 values.
// Arithmetic returns new matrices; the *InPlace variants mutate the receiver
// and produce exactly what the non-mutating form would.
//
//	a := linalg.FromRows([][]float64{{1, 2}, {3, 4}})
//	b, err := a.Mul(linalg.Identity(2))
//
// Shape mismatches are reported as [*ShapeError] values wrapping
// [ErrShapeMismatch]. Indexing outside the matrix through At/Set panics with an
// [*IndexError] (like slice indexing); Get is the checked variant.
//
// Equality is exact: [Matrix.Equal] compares every element with ==, which is
// what determinism tests want. Use [Matrix.EqualApprox] for tolerances.
//
// # Thread Safety
//
// Concurrent reads of an unmodified Matrix are safe. Writes are not.
package linalg
