package lti

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/statespace"
)

// TransferFunction is num(s)/den(s). Values are immutable from the outside;
// getters return copies.
type TransferFunction struct {
	num []float64
	den []float64
}

// Zero returns 0/1.
func Zero() TransferFunction { return TransferFunction{num: []float64{0}, den: []float64{1}} }

// One returns 1/1.
func One() TransferFunction { return TransferFunction{num: []float64{1}, den: []float64{1}} }

// S returns s/1, the differentiator.
func S() TransferFunction { return TransferFunction{num: []float64{1, 0}, den: []float64{1}} }

// Integrator returns 1/s.
func Integrator() TransferFunction { return TransferFunction{num: []float64{1}, den: []float64{1, 0}} }

// NewTransferFunction copies num and den. den must be non-empty and not the
// single coefficient 0.
func NewTransferFunction(num, den []float64) (TransferFunction, error) {
	if err := validDenominator(den); err != nil {
		return TransferFunction{}, err
	}
	return TransferFunction{num: clone(num), den: clone(den)}, nil
}

// MustTransferFunction is NewTransferFunction for literals known to be valid.
func MustTransferFunction(num, den []float64) TransferFunction {
	tf, err := NewTransferFunction(num, den)
	if err != nil {
		panic(err)
	}
	return tf
}

func validDenominator(den []float64) error {
	if len(den) == 0 {
		return fmt.Errorf("%w: empty denominator", linalg.ErrInvalidArgument)
	}
	if len(den) == 1 && den[0] == 0 {
		return fmt.Errorf("%w: zero denominator", linalg.ErrInvalidArgument)
	}
	return nil
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func (tf TransferFunction) Numerator() []float64   { return clone(tf.num) }
func (tf TransferFunction) Denominator() []float64 { return clone(tf.den) }

func (tf *TransferFunction) SetNumerator(num []float64) {
	tf.num = clone(num)
}

func (tf *TransferFunction) SetDenominator(den []float64) error {
	if err := validDenominator(den); err != nil {
		return err
	}
	tf.den = clone(den)
	return nil
}

// Order is the degree of the denominator.
func (tf TransferFunction) Order() int {
	return len(tf.den) - 1
}

// IsZero reports whether every numerator coefficient is zero.
func (tf TransferFunction) IsZero() bool {
	for _, c := range tf.num {
		if c != 0 {
			return false
		}
	}
	return true
}

func (tf TransferFunction) Equal(o TransferFunction) bool {
	return equalCoeffs(tf.num, o.num) && equalCoeffs(tf.den, o.den)
}

func equalCoeffs(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the coefficient lists, e.g. "[1, 2] / [1, 0, 5]".
func (tf TransferFunction) String() string {
	return formatCoeffs(tf.num) + " / " + formatCoeffs(tf.den)
}

func formatCoeffs(c []float64) string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ToStateSpace realizes tf as a single-input single-output model.
func (tf TransferFunction) ToStateSpace(ctx context.Context, r Realizer, timeStep float64, method statespace.C2DMethod, opts ...statespace.Option) (*statespace.Model, error) {
	return NewMIMO([][]TransferFunction{{tf}}).ToStateSpace(ctx, r, timeStep, method, opts...)
}
