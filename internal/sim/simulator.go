package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/statespace"
)

type Simulator struct {
	model     *statespace.Model
	input     Input
	metrics   []Metric
	observers []Observer
}

func New(model *statespace.Model, input Input) *Simulator {
	return &Simulator{
		model:     model,
		input:     input,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Model() *statespace.Model { return s.model }

// Steps returns the number of steps cfg asks for.
func (s *Simulator) Steps(cfg Config) int {
	if cfg.Steps > 0 {
		return cfg.Steps
	}
	return int(math.Round(cfg.Duration / s.model.TimeStep()))
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.input == nil {
		return fmt.Errorf("%w: no input source", ErrInvalidConfig)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.Steps == 0 && cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if s.Steps(cfg) == 0 {
		return fmt.Errorf("%w: duration %g is shorter than one step of %g", ErrInvalidConfig, cfg.Duration, s.model.TimeStep())
	}
	return nil
}

// Run steps the model from its current state. On a step failure the samples
// recorded so far are returned together with a *StepError.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := s.Steps(cfg)
	dt := s.model.TimeStep()
	result := &Result{
		Solver:  s.model.Solver().String(),
		Dt:      dt,
		Times:   make([]float64, 0, steps),
		Inputs:  make([][]float64, 0, steps),
		States:  make([][]float64, 0, steps),
		Outputs: make([][]float64, 0, steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	err := s.loop(ctx, steps, cfg.ValidateState, func(y, u []float64, t float64) bool {
		result.Times = append(result.Times, t)
		result.Inputs = append(result.Inputs, u)
		result.States = append(result.States, s.model.State().Vector())
		result.Outputs = append(result.Outputs, y)
		result.StepsTaken++
		return true
	})

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, err
}

// RunWithCallback steps the model and hands every sample to callback until
// it returns false or the run ends.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(y, u []float64, t float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}
	return s.loop(ctx, s.Steps(cfg), cfg.ValidateState, callback)
}

func (s *Simulator) loop(ctx context.Context, steps int, validate bool, emit func(y, u []float64, t float64) bool) error {
	dt := s.model.TimeStep()
	y := s.model.Output().Vector()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * dt
		u := s.input.Compute(y, t)
		if err := s.model.Step(linalg.ColumnVector(u...)); err != nil {
			return &StepError{Step: i, Time: t, Wrapped: err}
		}

		y = s.model.Output().Vector()
		if validate && !finite(y) {
			return &StepError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}

		for _, m := range s.metrics {
			m.Observe(y, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(y, u, t)
		}
		if !emit(y, u, t) {
			return nil
		}
	}
	return nil
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
