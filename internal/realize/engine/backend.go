package engine

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/lti"
	"github.com/san-kum/lsim/internal/statespace"
)

// Backend implements lti.Realizer and statespace.Discretizer on top of a
// Session.
type Backend struct {
	session Session
	prewarp float64
	logger  *log.Logger
}

type Option func(*Backend)

func WithLogger(l *log.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithPrewarpFrequency sets the match frequency in rad/s used by
// PrewarpedTustin.
func WithPrewarpFrequency(w float64) Option {
	return func(b *Backend) { b.prewarp = w }
}

// New returns a backend bound to s. A nil session is allowed; every request
// then fails with statespace.ErrBackendUnavailable.
func New(s Session, opts ...Option) *Backend {
	b := &Backend{session: s, logger: log.New(io.Discard)}
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
	if b.session == nil {
		return none, none, statespace.ErrBackendUnavailable
	}
	if err := ctx.Err(); err != nil {
		return none, none, err
	}

	rows := make([]string, sys.Outputs())
	for out := 0; out < sys.Outputs(); out++ {
		names := make([]string, sys.Inputs())
		for in := 0; in < sys.Inputs(); in++ {
			tf, err := sys.TransferFunction(in, out)
			if err != nil {
				return none, none, err
			}
			name := fmt.Sprintf("tf_%d_%d", out, in)
			if err := b.putRow("num", tf.Numerator()); err != nil {
				return none, none, err
			}
			if err := b.putRow("den", tf.Denominator()); err != nil {
				return none, none, err
			}
			if err := b.eval(name + " = tf(num, den);"); err != nil {
				return none, none, err
			}
			names[in] = name
		}
		rows[out] = strings.Join(names, ", ")
	}
	if err := b.eval("mimo = [" + strings.Join(rows, "; ") + "];"); err != nil {
		return none, none, err
	}

	if err := ctx.Err(); err != nil {
		return none, none, err
	}
	cmd := b.c2d("mimo", timeStep, method) +
		" [Ad,Bd,Cd,Dd] = ssdata(ss(sysd)); [A,B,C,D] = ssdata(ss(mimo));"
	if err := b.eval(cmd); err != nil {
		return none, none, err
	}

	cont, err := b.fetch("A", "B", "C", "D")
	if err != nil {
		return none, none, err
	}
	disc, err := b.fetch("Ad", "Bd", "Cd", "Dd")
	if err != nil {
		return none, none, err
	}
	b.logger.Debug("realized transfer function matrix",
		"outputs", sys.Outputs(), "inputs", sys.Inputs(), "states", cont.A.Rows(), "method", method)
	return cont, disc, nil
}

func (b *Backend) Discretize(ctx context.Context, cont statespace.Matrices, timeStep float64, method statespace.C2DMethod) (statespace.Matrices, error) {
	var none statespace.Matrices
	if b.session == nil {
		return none, statespace.ErrBackendUnavailable
	}
	if err := ctx.Err(); err != nil {
		return none, err
	}
	for _, v := range []struct {
		name string
		m    *linalg.Matrix
	}{{"A", cont.A}, {"B", cont.B}, {"C", cont.C}, {"D", cont.D}} {
		if err := b.put(v.name, v.m); err != nil {
			return none, err
		}
	}

	cmd := "sys = ss(A, B, C, D); " + b.c2d("sys", timeStep, method) +
		" [Ad,Bd,Cd,Dd] = ssdata(sysd);"
	if err := b.eval(cmd); err != nil {
		return none, err
	}
	return b.fetch("Ad", "Bd", "Cd", "Dd")
}

// c2d renders the conversion of sys into sysd.
func (b *Backend) c2d(sys string, timeStep float64, method statespace.C2DMethod) string {
	T := formatFloat(timeStep)
	if method == statespace.PrewarpedTustin {
		return fmt.Sprintf("opt = c2dOptions('Method','tustin','PrewarpFrequency',%s); sysd = c2d(%s, %s, opt);",
			formatFloat(b.prewarp), sys, T)
	}
	return fmt.Sprintf("sysd = c2d(%s, %s, '%s');", sys, T, method)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (b *Backend) eval(cmd string) error {
	b.logger.Debug("engine eval", "cmd", cmd)
	if err := b.session.Eval(cmd); err != nil {
		return fmt.Errorf("engine: eval %q: %w", cmd, err)
	}
	return nil
}

func (b *Backend) putRow(name string, values []float64) error {
	return b.put(name, linalg.FromRows([][]float64{values}))
}

func (b *Backend) put(name string, m *linalg.Matrix) error {
	rows, cols := m.Dims()
	a := Array{Rows: rows, Cols: cols, Data: linalg.ToBackendLayout(m)}
	if err := b.session.Put(name, a); err != nil {
		return fmt.Errorf("engine: put %s: %w", name, err)
	}
	return nil
}

func (b *Backend) get(name string) (*linalg.Matrix, error) {
	a, err := b.session.Get(name)
	if err != nil {
		return nil, fmt.Errorf("engine: get %s: %w", name, err)
	}
	m, err := linalg.FromBackendLayout(a.Rows, a.Cols, a.Data)
	if err != nil {
		return nil, fmt.Errorf("engine: get %s: %w", name, err)
	}
	return m, nil
}

func (b *Backend) fetch(a, bName, c, d string) (statespace.Matrices, error) {
	var out statespace.Matrices
	for _, slot := range []struct {
		name string
		dst  **linalg.Matrix
	}{{a, &out.A}, {bName, &out.B}, {c, &out.C}, {d, &out.D}} {
		m, err := b.get(slot.name)
		if err != nil {
			return statespace.Matrices{}, err
		}
		*slot.dst = m
	}
	return out, nil
}
