package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/statespace"
)

func scalar(v float64) *linalg.Matrix {
	return linalg.FromRows([][]float64{{v}})
}

// lagModel is dx/dt = -x + u, y = x, sampled every dt with an exact discrete set.
func lagModel(t *testing.T, dt float64) *statespace.Model {
	t.Helper()
	cont := statespace.Matrices{A: scalar(-1), B: scalar(1), C: scalar(1), D: scalar(0)}
	p := math.Exp(-dt)
	disc := statespace.Matrices{A: scalar(p), B: scalar(1 - p), C: scalar(1), D: scalar(0)}
	m, err := statespace.New(cont, disc, nil, dt)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

type constInput []float64

func (c constInput) Compute(y []float64, t float64) []float64 {
	out := make([]float64, len(c))
	copy(out, c)
	return out
}

type recordingInput struct {
	seen [][]float64
}

func (r *recordingInput) Compute(y []float64, t float64) []float64 {
	r.seen = append(r.seen, append([]float64(nil), y...))
	return []float64{1}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(lagModel(t, 0.01), constInput{1})

	result, err := sim.Run(context.Background(), Config{Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Outputs) != 100 || len(result.Times) != 100 || result.StepsTaken != 100 {
		t.Errorf("expected 100 samples, got %d outputs %d times", len(result.Outputs), len(result.Times))
	}
	if result.Times[0] != 0 {
		t.Errorf("first sample at %v, expected 0", result.Times[0])
	}

	final := result.Outputs[len(result.Outputs)-1][0]
	expected := 1 - math.Exp(-1.0)
	if math.Abs(final-expected) > 1e-9 {
		t.Errorf("expected final output ~%.6f, got %.6f", expected, final)
	}
	if result.Solver != "discretized" {
		t.Errorf("solver got %q", result.Solver)
	}
}

func TestSimulatorFeedsPreviousOutput(t *testing.T) {
	in := &recordingInput{}
	sim := New(lagModel(t, 0.1), in)

	result, err := sim.Run(context.Background(), Config{Steps: 3})
	if err != nil {
		t.Fatal(err)
	}
	if in.seen[0][0] != 0 {
		t.Errorf("first input saw %v, expected the zero initial output", in.seen[0])
	}
	for i := 1; i < 3; i++ {
		if in.seen[i][0] != result.Outputs[i-1][0] {
			t.Errorf("step %d saw %v, expected previous output %v", i, in.seen[i][0], result.Outputs[i-1][0])
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero duration", Config{Duration: 0}},
		{"negative duration", Config{Duration: -1.0}},
		{"negative steps", Config{Steps: -1}},
		{"shorter than one step", Config{Duration: 0.001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := New(lagModel(t, 0.01), constInput{1})
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected invalid config, got %v", err)
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(y, u []float64, time float64) {
	t.count++
	t.sum += y[0]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(lagModel(t, 0.1), constInput{1})

	metric := &testMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), Config{Duration: 1.0})
	if err != nil {
		t.Fatal(err)
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric missing from result")
	}
}

type countingObserver struct{ n int }

func (c *countingObserver) OnStep(y, u []float64, t float64) { c.n++ }

func TestSimulatorObserverAndCallback(t *testing.T) {
	sim := New(lagModel(t, 0.1), constInput{1})
	obs := &countingObserver{}
	sim.AddObserver(obs)

	calls := 0
	err := sim.RunWithCallback(context.Background(), Config{Steps: 10}, func(y, u []float64, t float64) bool {
		calls++
		return calls < 4
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 4 || obs.n != 4 {
		t.Errorf("callback ran %d times, observer %d, expected 4", calls, obs.n)
	}
}

func TestSimulatorStepError(t *testing.T) {
	sim := New(lagModel(t, 0.1), constInput{1, 2})

	result, err := sim.Run(context.Background(), Config{Steps: 5})
	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StepError, got %v", err)
	}
	if se.Step != 0 || !errors.Is(err, linalg.ErrShapeMismatch) {
		t.Errorf("got step %d, err %v", se.Step, se.Wrapped)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected an empty partial result, got %+v", result)
	}
}

func TestSimulatorDetectsDivergence(t *testing.T) {
	cont := statespace.Matrices{A: scalar(0), B: scalar(1), C: scalar(1), D: scalar(0)}
	disc := statespace.Matrices{A: scalar(1e300), B: scalar(0), C: scalar(1), D: scalar(0)}
	m, err := statespace.New(cont, disc, linalg.ColumnVector(1), 0.1)
	if err != nil {
		t.Fatal(err)
	}

	result, err := New(m, constInput{0}).Run(context.Background(), Config{Steps: 10, ValidateState: true})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if result.StepsTaken != 1 {
		t.Errorf("expected 1 good sample before divergence, got %d", result.StepsTaken)
	}
}

func TestSimulatorCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(lagModel(t, 0.1), constInput{1}).Run(ctx, Config{Steps: 10})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, expected context.Canceled", err)
	}
}

func TestEnsembleCompare(t *testing.T) {
	base := lagModel(t, 0.01)
	ens := NewEnsemble(base, func() Input { return constInput{1} }, func() []Metric {
		return []Metric{&testMetric{}}
	})

	solvers := statespace.Solvers()
	results, err := ens.Compare(context.Background(), solvers, Config{Duration: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(solvers) {
		t.Fatalf("got %d results, expected %d", len(results), len(solvers))
	}

	expected := 1 - math.Exp(-1.0)
	tolerance := map[string]float64{"discretized": 1e-9, "rk4": 1e-9, "euler": 1e-2}
	for i, s := range solvers {
		r := results[i]
		if r.Solver != s.String() {
			t.Errorf("result %d is %s, expected %s", i, r.Solver, s)
		}
		tol, ok := tolerance[r.Solver]
		if !ok {
			continue
		}
		if got := r.Outputs[len(r.Outputs)-1][0]; math.Abs(got-expected) > tol {
			t.Errorf("%s: got %.6f, expected %.6f", r.Solver, got, expected)
		}
	}

	if base.State().At(0, 0) != 0 {
		t.Error("compare moved the base model")
	}
}
