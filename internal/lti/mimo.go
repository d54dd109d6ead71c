package lti

import (
	"context"
	"fmt"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/statespace"
)

// Realizer computes the continuous and discrete state-space matrices of a
// transfer function grid.
type Realizer interface {
	Realize(ctx context.Context, sys *MIMO, timeStep float64, method statespace.C2DMethod) (cont, disc statespace.Matrices, err error)
}

// MIMO is an outputs x inputs grid of transfer functions. Entry (out, in)
// maps input in to output out.
type MIMO struct {
	inputs  int
	outputs int
	tfs     []TransferFunction
}

// NewMIMO builds a system from rows of transfer functions, one row per
// output. Short rows are padded with Zero.
func NewMIMO(grid [][]TransferFunction) *MIMO {
	inputs := 0
	for _, row := range grid {
		if len(row) > inputs {
			inputs = len(row)
		}
	}
	sys := &MIMO{
		inputs:  inputs,
		outputs: len(grid),
		tfs:     make([]TransferFunction, inputs*len(grid)),
	}
	for out := range grid {
		for in := 0; in < inputs; in++ {
			tf := Zero()
			if in < len(grid[out]) {
				tf = grid[out][in]
			}
			sys.tfs[out*inputs+in] = TransferFunction{num: clone(tf.num), den: clone(tf.den)}
		}
	}
	return sys
}

func (m *MIMO) Inputs() int  { return m.inputs }
func (m *MIMO) Outputs() int { return m.outputs }

func (m *MIMO) index(in, out int) (int, error) {
	if in < 0 || in >= m.inputs || out < 0 || out >= m.outputs {
		return 0, &linalg.IndexError{Row: out, Col: in, Rows: m.outputs, Cols: m.inputs}
	}
	return out*m.inputs + in, nil
}

// TransferFunction returns a copy of the entry from input in to output out.
func (m *MIMO) TransferFunction(in, out int) (TransferFunction, error) {
	i, err := m.index(in, out)
	if err != nil {
		return TransferFunction{}, err
	}
	tf := m.tfs[i]
	return TransferFunction{num: clone(tf.num), den: clone(tf.den)}, nil
}

func (m *MIMO) SetTransferFunction(in, out int, tf TransferFunction) error {
	i, err := m.index(in, out)
	if err != nil {
		return err
	}
	if err := validDenominator(tf.den); err != nil {
		return err
	}
	m.tfs[i] = TransferFunction{num: clone(tf.num), den: clone(tf.den)}
	return nil
}

func (m *MIMO) Clone() *MIMO {
	c := &MIMO{inputs: m.inputs, outputs: m.outputs, tfs: make([]TransferFunction, len(m.tfs))}
	for i, tf := range m.tfs {
		c.tfs[i] = TransferFunction{num: clone(tf.num), den: clone(tf.den)}
	}
	return c
}

func (m *MIMO) String() string {
	s := fmt.Sprintf("%dx%d system", m.outputs, m.inputs)
	for out := 0; out < m.outputs; out++ {
		for in := 0; in < m.inputs; in++ {
			s += fmt.Sprintf("\n  y%d <- u%d: %s", out, in, m.tfs[out*m.inputs+in])
		}
	}
	return s
}

// ToStateSpace realizes the whole grid through r and returns a model starting
// from the zero state.
func (m *MIMO) ToStateSpace(ctx context.Context, r Realizer, timeStep float64, method statespace.C2DMethod, opts ...statespace.Option) (*statespace.Model, error) {
	if r == nil {
		return nil, statespace.ErrBackendUnavailable
	}
	if m.inputs == 0 || m.outputs == 0 {
		return nil, fmt.Errorf("%w: empty %dx%d system", linalg.ErrInvalidArgument, m.outputs, m.inputs)
	}
	cont, disc, err := r.Realize(ctx, m, timeStep, method)
	if err != nil {
		return nil, fmt.Errorf("realize: %w", err)
	}
	opts = append([]statespace.Option{statespace.WithMethod(method)}, opts...)
	return statespace.New(cont, disc, nil, timeStep, opts...)
}

// ToStateSpaceZOH realizes the grid with zero-order hold.
func (m *MIMO) ToStateSpaceZOH(ctx context.Context, r Realizer, timeStep float64, opts ...statespace.Option) (*statespace.Model, error) {
	return m.ToStateSpace(ctx, r, timeStep, statespace.ZeroOrderHold, opts...)
}
