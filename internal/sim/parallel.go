package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lsim/internal/statespace"
)

// Ensemble runs independent copies of one model side by side, one per solver.
type Ensemble struct {
	base       *statespace.Model
	newInput   func() Input
	newMetrics func() []Metric
}

// NewEnsemble prepares runs of model. newInput and newMetrics are called once
// per run so stateful inputs and metrics are never shared; newMetrics may be
// nil.
func NewEnsemble(model *statespace.Model, newInput func() Input, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{base: model, newInput: newInput, newMetrics: newMetrics}
}

// Compare runs every solver from the model's initial state. Results are in
// the order of solvers.
func (e *Ensemble) Compare(ctx context.Context, solvers []statespace.Solver, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(solvers))

	g, ctx := errgroup.WithContext(ctx)
	for i, solver := range solvers {
		model := e.base.Clone()
		model.Reset()
		model.SetSolver(solver)

		sim := New(model, e.newInput())
		if e.newMetrics != nil {
			for _, m := range e.newMetrics() {
				sim.AddMetric(m)
			}
		}

		i := i
		g.Go(func() error {
			res, err := sim.Run(ctx, cfg)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
