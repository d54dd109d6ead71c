package linalg

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch indicates operands whose dimensions are incompatible.
	ErrShapeMismatch = errors.New("linalg: shape mismatch")

	// ErrIndexOutOfRange indicates an element or cell access outside bounds.
	ErrIndexOutOfRange = errors.New("linalg: index out of range")

	// ErrInvalidArgument indicates malformed construction input.
	ErrInvalidArgument = errors.New("linalg: invalid argument")
)

// ShapeError carries the offending shapes of a failed operation.
type ShapeError struct {
	Op       string
	LhsRows  int
	LhsCols  int
	RhsRows  int
	RhsCols  int
	Expected string
}

func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("%s: %s %dx%d and %dx%d", ErrShapeMismatch, e.Op, e.LhsRows, e.LhsCols, e.RhsRows, e.RhsCols)
	if e.Expected != "" {
		msg += " (" + e.Expected + ")"
	}
	return msg
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func shapeErr(op string, a, b *Matrix, expected string) error {
	return &ShapeError{
		Op:       op,
		LhsRows:  a.rows,
		LhsCols:  a.cols,
		RhsRows:  b.rows,
		RhsCols:  b.cols,
		Expected: expected,
	}
}

// IndexError reports an access at (Row, Col) into a Rows x Cols grid.
type IndexError struct {
	Row  int
	Col  int
	Rows int
	Cols int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: (%d,%d) outside %dx%d", ErrIndexOutOfRange, e.Row, e.Col, e.Rows, e.Cols)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}
