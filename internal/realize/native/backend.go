package native

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/lti"
	"github.com/san-kum/lsim/internal/statespace"
)

// Backend realizes and discretizes systems without an external engine.
type Backend struct {
	prewarp float64
	logger  *log.Logger
}

type Option func(*Backend)

// WithPrewarpFrequency sets the match frequency in rad/s for
// PrewarpedTustin. Zero degrades it to plain Tustin.
func WithPrewarpFrequency(w float64) Option {
	return func(b *Backend) { b.prewarp = w }
}

func WithLogger(l *log.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

func New(opts ...Option) *Backend {
	b := &Backend{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var (
	_ lti.Realizer           = (*Backend)(nil)
	_ statespace.Discretizer = (*Backend)(nil)
)

func (b *Backend) Realize(ctx context.Context, sys *lti.MIMO, timeStep float64, method statespace.C2DMethod) (statespace.Matrices, statespace.Matrices, error) {
	var none statespace.Matrices
	if err := ctx.Err(); err != nil {
		return none, none, err
	}
	cont, err := blockDiagonal(sys)
	if err != nil {
		return none, none, err
	}

	var disc statespace.Matrices
	if method == statespace.MatchedPoleZero && sys.Inputs() == 1 && sys.Outputs() == 1 {
		if err := checkTimeStep(timeStep); err != nil {
			return none, none, err
		}
		tf, _ := sys.TransferFunction(0, 0)
		disc, err = matched(tf.Numerator(), tf.Denominator(), timeStep)
	} else {
		disc, err = b.Discretize(ctx, cont, timeStep, method)
	}
	if err != nil {
		return none, none, err
	}
	b.logger.Debug("realized", "outputs", sys.Outputs(), "inputs", sys.Inputs(),
		"states", cont.A.Rows(), "method", method, "dt", timeStep)
	return cont, disc, nil
}

func (b *Backend) Discretize(ctx context.Context, cont statespace.Matrices, timeStep float64, method statespace.C2DMethod) (statespace.Matrices, error) {
	var none statespace.Matrices
	if err := ctx.Err(); err != nil {
		return none, err
	}
	if err := cont.Validate(); err != nil {
		return none, err
	}
	if err := checkTimeStep(timeStep); err != nil {
		return none, err
	}
	if cont.A.IsEmpty() {
		return cont.Clone(), nil
	}

	var (
		disc statespace.Matrices
		err  error
	)
	switch method {
	case statespace.ZeroOrderHold:
		disc, err = padded(cont, func(c statespace.Matrices) (statespace.Matrices, error) { return zoh(c, timeStep) })
	case statespace.FirstOrderHold:
		disc, err = padded(cont, func(c statespace.Matrices) (statespace.Matrices, error) { return foh(c, timeStep) })
	case statespace.Tustin:
		disc, err = padded(cont, func(c statespace.Matrices) (statespace.Matrices, error) { return tustin(c, timeStep) })
	case statespace.PrewarpedTustin:
		disc, err = padded(cont, func(c statespace.Matrices) (statespace.Matrices, error) { return prewarped(c, timeStep, b.prewarp) })
	case statespace.ImpulseInvariant:
		disc, err = padded(cont, func(c statespace.Matrices) (statespace.Matrices, error) { return impulse(c, timeStep) })
	case statespace.MatchedPoleZero:
		if cont.B.Cols() != 1 || cont.C.Rows() != 1 {
			return none, fmt.Errorf("%w: matched pole-zero needs a single-input single-output system, got %dx%d",
				lti.ErrUnsupported, cont.C.Rows(), cont.B.Cols())
		}
		num, den, terr := transfer(cont)
		if terr != nil {
			return none, terr
		}
		if len(num) == 0 {
			// no zeros to map; the output is identically zero
			disc, err = zoh(cont, timeStep)
			break
		}
		disc, err = matched(num, den, timeStep)
	default:
		return none, fmt.Errorf("%w: method %s", lti.ErrUnsupported, method)
	}
	if err != nil {
		return none, err
	}
	if !disc.A.IsFinite() || !disc.B.IsFinite() {
		return none, fmt.Errorf("%w: %s discretization produced non-finite values", linalg.ErrInvalidArgument, method)
	}
	b.logger.Debug("discretized", "method", method, "dt", timeStep, "states", disc.A.Rows())
	return disc, nil
}

// padded runs discretize on c with a missing input or output side replaced
// by one zero channel, then drops that channel again. gonum has no empty
// matrices, so the c2d formulas cannot see a 0-width B or a 0-height C.
func padded(c statespace.Matrices, discretize func(statespace.Matrices) (statespace.Matrices, error)) (statespace.Matrices, error) {
	n, m, p := c.Dims()
	if m > 0 && p > 0 {
		return discretize(c)
	}
	in := statespace.Matrices{
		A: c.A,
		B: linalg.New(n, max(m, 1)),
		C: linalg.New(max(p, 1), n),
		D: linalg.New(max(p, 1), max(m, 1)),
	}
	if m > 0 {
		in.B = c.B
	}
	if p > 0 {
		in.C = c.C
	}
	out, err := discretize(in)
	if err != nil {
		return statespace.Matrices{}, err
	}
	return statespace.Matrices{
		A: out.A,
		B: topLeft(out.B, n, m),
		C: topLeft(out.C, p, n),
		D: linalg.New(p, m),
	}, nil
}

func topLeft(a *linalg.Matrix, rows, cols int) *linalg.Matrix {
	out := linalg.New(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, a.At(i, j))
		}
	}
	return out
}

func checkTimeStep(timeStep float64) error {
	if !(timeStep > 0) || math.IsInf(timeStep, 1) {
		return fmt.Errorf("%w: time step must be positive, got %g", linalg.ErrInvalidArgument, timeStep)
	}
	return nil
}
