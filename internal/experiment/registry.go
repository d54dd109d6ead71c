package experiment

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/san-kum/lsim/internal/config"
	"github.com/san-kum/lsim/internal/control"
	"github.com/san-kum/lsim/internal/lti"
	"github.com/san-kum/lsim/internal/metrics"
	"github.com/san-kum/lsim/internal/realize/engine"
	"github.com/san-kum/lsim/internal/realize/native"
	"github.com/san-kum/lsim/internal/signal"
	"github.com/san-kum/lsim/internal/sim"
	"github.com/san-kum/lsim/internal/statespace"
)

// Backend both realizes transfer functions and discretizes matrices.
type Backend interface {
	lti.Realizer
	statespace.Discretizer
}

type Registry struct {
	backends map[string]func(cfg *config.Config) Backend
	inputs   map[string]func(cfg *config.Config, inputs int) sim.Input
	session  engine.Session
	logger   *log.Logger
}

type RegistryOption func(*Registry)

// WithSession attaches an engine session for the "engine" backend.
func WithSession(s engine.Session) RegistryOption {
	return func(r *Registry) { r.session = s }
}

func WithRegistryLogger(l *log.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		backends: make(map[string]func(*config.Config) Backend),
		inputs:   make(map[string]func(*config.Config, int) sim.Input),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.backends["native"] = func(cfg *config.Config) Backend {
		return native.New(native.WithPrewarpFrequency(cfg.PrewarpFrequency), native.WithLogger(r.logger))
	}
	r.backends["engine"] = func(cfg *config.Config) Backend {
		return engine.New(r.session, engine.WithPrewarpFrequency(cfg.PrewarpFrequency), engine.WithLogger(r.logger))
	}

	r.inputs["constant"] = func(cfg *config.Config, n int) sim.Input {
		return signal.NewConstant(fit(cfg.Input.Values, n, 1)...)
	}
	r.inputs["step"] = func(cfg *config.Config, n int) sim.Input {
		before := fit(cfg.Input.Values, n, 1)
		after := before
		if len(cfg.Input.After) > 0 {
			after = fit(cfg.Input.After, n, 0)
		}
		return signal.NewStep(before, after, cfg.Input.SwitchAt)
	}
	r.inputs["impulse"] = func(cfg *config.Config, n int) sim.Input {
		return signal.NewImpulse(cfg.Dt, fit(cfg.Input.Values, n, 1)...)
	}
	r.inputs["sine"] = func(cfg *config.Config, n int) sim.Input {
		s := signal.NewSine(cfg.Input.Amplitude, cfg.Input.Freq, n)
		if len(cfg.Input.Values) > 0 {
			s.Offset = cfg.Input.Values[0]
		}
		return s
	}
	r.inputs["pid"] = func(cfg *config.Config, n int) sim.Input {
		p := cfg.ControllerParams
		pid := control.NewPID(p.Kp, p.Ki, p.Kd, p.Target)
		pid.Inputs = n
		return pid
	}
	r.inputs["feedback"] = func(cfg *config.Config, n int) sim.Input {
		k := make([][]float64, n)
		for i := range k {
			k[i] = []float64{cfg.ControllerParams.Kp}
		}
		return control.NewFeedback(k, []float64{cfg.ControllerParams.Target})
	}
	r.inputs["manual"] = func(cfg *config.Config, n int) sim.Input {
		m := control.NewManual(n)
		for i, v := range fit(cfg.Input.Values, n, 0) {
			m.Set(i, v)
		}
		return m
	}
	r.inputs["none"] = func(cfg *config.Config, n int) sim.Input {
		return control.NewNone(n)
	}

	return r
}

// fit returns values resized to n. A single value is broadcast; otherwise
// missing channels get def when values is empty and zero when it is short.
func fit(values []float64, n int, def float64) []float64 {
	out := make([]float64, n)
	switch {
	case len(values) == 0:
		for i := range out {
			out[i] = def
		}
	case len(values) == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		copy(out, values)
	}
	return out
}

func (r *Registry) GetBackend(cfg *config.Config) (Backend, error) {
	fn, ok := r.backends[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
	return fn(cfg), nil
}

func (r *Registry) GetInput(cfg *config.Config, inputs int) (sim.Input, error) {
	fn, ok := r.inputs[cfg.Input.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown input: %s", cfg.Input.Kind)
	}
	return fn(cfg, inputs), nil
}

func (r *Registry) ListBackends() []string {
	return sortedKeys(r.backends)
}

func (r *Registry) ListInputs() []string {
	return sortedKeys(r.inputs)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the metrics recorded for every run.
func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewStability(1e6),
		metrics.NewControlEffort(),
		metrics.NewEnergy(),
		metrics.NewFinalValue(0),
		metrics.NewOvershoot(0),
		metrics.NewSettlingTime(0, 0.02),
	}
}
