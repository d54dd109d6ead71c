package experiment

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/san-kum/lsim/internal/config"
	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/lti"
	"github.com/san-kum/lsim/internal/sim"
	"github.com/san-kum/lsim/internal/statespace"
)

// Experiment turns a configuration into a model, an input and a simulator.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *log.Logger
	model     *statespace.Model
	simulator *sim.Simulator
	system    string
}

func New(cfg *config.Config, registry *Registry, logger *log.Logger) *Experiment {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if registry == nil {
		registry = NewRegistry(WithRegistryLogger(logger))
	}
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

// BuildModel realizes the configured system and applies the initial state.
func (e *Experiment) BuildModel(ctx context.Context) (*statespace.Model, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	solver, _ := statespace.ParseSolver(e.cfg.Solver)
	method, _ := statespace.ParseMethod(e.cfg.Method)
	backend, err := e.registry.GetBackend(e.cfg)
	if err != nil {
		return nil, err
	}
	opts := []statespace.Option{statespace.WithSolver(solver), statespace.WithLogger(e.logger)}

	var model *statespace.Model
	if e.cfg.System.IsStateSpace() {
		cont := statespace.Matrices{
			A: linalg.FromRows(e.cfg.System.A),
			B: linalg.FromRows(e.cfg.System.B),
			C: linalg.FromRows(e.cfg.System.C),
			D: linalg.FromRows(e.cfg.System.D),
		}
		model, err = statespace.NewFromContinuous(ctx, cont, nil, e.cfg.Dt, method, backend, opts...)
		if err == nil {
			e.system = fmt.Sprintf("ss(n=%d, m=%d, p=%d)", model.StateCount(), model.InputCount(), model.OutputCount())
		}
	} else {
		var sys *lti.MIMO
		if sys, err = e.transferMatrix(); err == nil {
			e.system = sys.String()
			model, err = sys.ToStateSpace(ctx, backend, e.cfg.Dt, method, opts...)
		}
	}
	if err != nil {
		return nil, err
	}

	if len(e.cfg.InitState) > 0 {
		if err := model.ResetTo(e.cfg.InitState); err != nil {
			return nil, fmt.Errorf("init_state: %w", err)
		}
	}
	e.logger.Info("model built", "backend", e.cfg.Backend, "states", model.StateCount(),
		"inputs", model.InputCount(), "outputs", model.OutputCount(), "solver", solver, "method", method)
	return model, nil
}

func (e *Experiment) transferMatrix() (*lti.MIMO, error) {
	outs, ins := e.cfg.System.Shape()
	grid := make([][]lti.TransferFunction, outs)
	for i := range grid {
		grid[i] = make([]lti.TransferFunction, ins)
		for j := range grid[i] {
			grid[i][j] = lti.Zero()
		}
	}
	for _, entry := range e.cfg.System.TF {
		tf, err := lti.NewTransferFunction(entry.Num, entry.Den)
		if err != nil {
			return nil, fmt.Errorf("tf (%d,%d): %w", entry.Out, entry.In, err)
		}
		grid[entry.Out][entry.In] = tf
	}
	return lti.NewMIMO(grid), nil
}

// NewInput builds a fresh input source sized for model.
func (e *Experiment) NewInput(model *statespace.Model) (sim.Input, error) {
	return e.registry.GetInput(e.cfg, model.InputCount())
}

func (e *Experiment) Setup(ctx context.Context) error {
	model, err := e.BuildModel(ctx)
	if err != nil {
		return err
	}
	input, err := e.NewInput(model)
	if err != nil {
		return err
	}
	e.model = model
	e.simulator = sim.New(model, input)
	for _, m := range e.registry.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{Duration: e.cfg.Duration, ValidateState: true}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

// Compare runs the configured system once per solver.
func (e *Experiment) Compare(ctx context.Context, solvers []statespace.Solver) ([]*sim.Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if _, err := e.NewInput(e.model); err != nil {
		return nil, err
	}
	newInput := func() sim.Input {
		in, _ := e.NewInput(e.model)
		return in
	}
	ens := sim.NewEnsemble(e.model, newInput, e.registry.DefaultMetrics)
	return ens.Compare(ctx, solvers, e.SimConfig())
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Model() *statespace.Model { return e.model }
func (e *Experiment) Config() *config.Config   { return e.cfg }

// System describes the plant once the model is built.
func (e *Experiment) System() string { return e.system }
