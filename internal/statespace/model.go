package statespace

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/san-kum/lsim/internal/integrators"
	"github.com/san-kum/lsim/internal/linalg"
)

// Model is a linear system advanced in fixed time steps.
type Model struct {
	cont Matrices
	disc Matrices

	x0 *linalg.Matrix
	x  *linalg.Matrix
	y  *linalg.Matrix

	timeStep float64
	solver   Solver
	method   C2DMethod

	euler    *integrators.Euler
	bilinear *integrators.Bilinear
	rk4      *integrators.RK4

	logger *log.Logger
}

type Option func(*Model)

func WithSolver(s Solver) Option {
	return func(m *Model) { m.solver = s }
}

// WithMethod records the conversion method the discrete matrices came from.
func WithMethod(c C2DMethod) Option {
	return func(m *Model) { m.method = c }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// New builds a model from both matrix sets. A nil x0 starts from the zero
// state; any other x0 must be n x 1.
func New(cont, disc Matrices, x0 *linalg.Matrix, timeStep float64, opts ...Option) (*Model, error) {
	if err := cont.Validate(); err != nil {
		return nil, fmt.Errorf("continuous system: %w", err)
	}
	if err := disc.Validate(); err != nil {
		return nil, fmt.Errorf("discrete system: %w", err)
	}
	if !cont.SameShape(disc) {
		return nil, fmt.Errorf("discrete system: %w", mismatch("continuous/discrete A", cont.A, disc.A))
	}
	if !(timeStep > 0) || math.IsInf(timeStep, 1) {
		return nil, fmt.Errorf("%w: time step must be positive, got %g", linalg.ErrInvalidArgument, timeStep)
	}

	n, _, p := cont.Dims()
	if x0 == nil {
		x0 = linalg.New(n, 1)
	} else if r, c := x0.Dims(); r != n || c != 1 {
		return nil, fmt.Errorf("initial state: %w", &linalg.ShapeError{
			Op: "initial state", LhsRows: r, LhsCols: c, RhsRows: n, RhsCols: 1,
		})
	}

	m := &Model{
		cont:     cont.Clone(),
		disc:     disc.Clone(),
		x0:       x0.Clone(),
		x:        x0.Clone(),
		y:        linalg.New(p, 1),
		timeStep: timeStep,
		solver:   Discretized,
		method:   ZeroOrderHold,
		euler:    integrators.NewEuler(),
		bilinear: integrators.NewBilinear(),
		rk4:      integrators.NewRK4(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.logger.Debug("state-space model ready",
		"states", n, "inputs", cont.B.Cols(), "outputs", p,
		"dt", timeStep, "solver", m.solver, "method", m.method)
	return m, nil
}

// NewFromContinuous asks d for the discrete matrices of cont under method and
// builds a model from both sets.
func NewFromContinuous(ctx context.Context, cont Matrices, x0 *linalg.Matrix, timeStep float64, method C2DMethod, d Discretizer, opts ...Option) (*Model, error) {
	if d == nil {
		return nil, ErrBackendUnavailable
	}
	if err := cont.Validate(); err != nil {
		return nil, fmt.Errorf("continuous system: %w", err)
	}
	disc, err := d.Discretize(ctx, cont, timeStep, method)
	if err != nil {
		return nil, fmt.Errorf("discretize %s: %w", method, err)
	}
	opts = append([]Option{WithMethod(method)}, opts...)
	return New(cont, disc, x0, timeStep, opts...)
}

// Derivative returns A·x + B·u.
func (m *Model) Derivative(x, u *linalg.Matrix) (*linalg.Matrix, error) {
	ax, err := m.cont.A.Mul(x)
	if err != nil {
		return nil, err
	}
	bu, err := m.cont.B.Mul(u)
	if err != nil {
		return nil, err
	}
	if err := ax.AddInPlace(bu); err != nil {
		return nil, err
	}
	return ax, nil
}

// Step advances the model by one sample with the selected solver.
func (m *Model) Step(u *linalg.Matrix) error {
	switch m.solver {
	case Discretized:
		return m.StepDiscretized(u)
	case Euler:
		return m.StepEuler(u)
	case Bilinear:
		return m.StepBilinear(u)
	case RK4:
		return m.StepRK4(u)
	default:
		return fmt.Errorf("%w: unknown solver %d", linalg.ErrInvalidArgument, int(m.solver))
	}
}

// StepDiscretized computes x = Ad·x + Bd·u, then y = Cd·x + Dd·u from the new x.
func (m *Model) StepDiscretized(u *linalg.Matrix) error {
	if err := m.checkInput(u); err != nil {
		return err
	}
	x, err := affine(m.disc.A, m.x, m.disc.B, u)
	if err != nil {
		return err
	}
	y, err := affine(m.disc.C, x, m.disc.D, u)
	if err != nil {
		return err
	}
	m.x, m.y = x, y
	return nil
}

func (m *Model) StepEuler(u *linalg.Matrix) error {
	return m.integrate(m.euler, u)
}

// StepBilinear moves the state half an Euler step per sample. It is not the
// trapezoidal rule.
func (m *Model) StepBilinear(u *linalg.Matrix) error {
	return m.integrate(m.bilinear, u)
}

func (m *Model) StepRK4(u *linalg.Matrix) error {
	return m.integrate(m.rk4, u)
}

func (m *Model) integrate(integ integrators.Integrator, u *linalg.Matrix) error {
	if err := m.checkInput(u); err != nil {
		return err
	}
	x, err := integ.Step(m, m.x, u, m.timeStep)
	if err != nil {
		return err
	}
	y, err := affine(m.cont.C, x, m.cont.D, u)
	if err != nil {
		return err
	}
	m.x, m.y = x, y
	return nil
}

func (m *Model) checkInput(u *linalg.Matrix) error {
	if u == nil {
		return fmt.Errorf("%w: nil input", linalg.ErrInvalidArgument)
	}
	inputs := m.cont.B.Cols()
	if r, c := u.Dims(); r != inputs || c != 1 {
		return &linalg.ShapeError{Op: "input", LhsRows: r, LhsCols: c, RhsRows: inputs, RhsCols: 1}
	}
	return nil
}

// affine returns p·a + q·b.
func affine(p, a, q, b *linalg.Matrix) (*linalg.Matrix, error) {
	pa, err := p.Mul(a)
	if err != nil {
		return nil, err
	}
	qb, err := q.Mul(b)
	if err != nil {
		return nil, err
	}
	if err := pa.AddInPlace(qb); err != nil {
		return nil, err
	}
	return pa, nil
}

func (m *Model) SetSolver(s Solver) {
	m.logger.Debug("solver changed", "from", m.solver, "to", s)
	m.solver = s
}

func (m *Model) Solver() Solver      { return m.solver }
func (m *Model) Method() C2DMethod   { return m.method }
func (m *Model) TimeStep() float64   { return m.timeStep }
func (m *Model) StateCount() int     { return m.cont.A.Rows() }
func (m *Model) InputCount() int     { return m.cont.B.Cols() }
func (m *Model) OutputCount() int    { return m.cont.C.Rows() }
func (m *Model) Logger() *log.Logger { return m.logger }

// SetState replaces the current state. x must be n x 1.
func (m *Model) SetState(x *linalg.Matrix) error {
	n := m.StateCount()
	if x == nil {
		return fmt.Errorf("%w: nil state", linalg.ErrInvalidArgument)
	}
	if r, c := x.Dims(); r != n || c != 1 {
		return &linalg.ShapeError{Op: "set state", LhsRows: r, LhsCols: c, RhsRows: n, RhsCols: 1}
	}
	m.x = x.Clone()
	return nil
}

// Reset restores the initial state and clears the output.
func (m *Model) Reset() {
	m.x = m.x0.Clone()
	m.y = linalg.New(m.OutputCount(), 1)
}

// ResetTo overwrites the initial state with values and resets to it.
func (m *Model) ResetTo(values []float64) error {
	n := m.StateCount()
	if len(values) != n {
		return &linalg.ShapeError{Op: "reset", LhsRows: len(values), LhsCols: 1, RhsRows: n, RhsCols: 1}
	}
	m.x0 = linalg.ColumnVector(values...)
	m.Reset()
	return nil
}

func (m *Model) State() *linalg.Matrix        { return m.x.Clone() }
func (m *Model) Output() *linalg.Matrix       { return m.y.Clone() }
func (m *Model) InitialState() *linalg.Matrix { return m.x0.Clone() }
func (m *Model) Continuous() Matrices         { return m.cont.Clone() }
func (m *Model) Discrete() Matrices           { return m.disc.Clone() }

// Clone returns an independent copy, including the current state.
func (m *Model) Clone() *Model {
	return &Model{
		cont:     m.cont.Clone(),
		disc:     m.disc.Clone(),
		x0:       m.x0.Clone(),
		x:        m.x.Clone(),
		y:        m.y.Clone(),
		timeStep: m.timeStep,
		solver:   m.solver,
		method:   m.method,
		euler:    integrators.NewEuler(),
		bilinear: integrators.NewBilinear(),
		rk4:      integrators.NewRK4(),
		logger:   m.logger,
	}
}

func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "state-space model (dt=%g, solver=%s, method=%s)\n", m.timeStep, m.solver, m.method)
	for _, e := range []struct {
		name string
		m    *linalg.Matrix
	}{
		{"A", m.cont.A}, {"B", m.cont.B}, {"C", m.cont.C}, {"D", m.cont.D},
		{"Ad", m.disc.A}, {"Bd", m.disc.B}, {"Cd", m.disc.C}, {"Dd", m.disc.D},
		{"x0", m.x0}, {"x", m.x}, {"y", m.y},
	} {
		fmt.Fprintf(&b, "%s =\n%s\n", e.name, e.m)
	}
	return b.String()
}
