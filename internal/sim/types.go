package sim

// Input produces the input vector u for the next step from the previous
// output y. Open-loop sources ignore y.
type Input interface {
	Compute(y []float64, t float64) []float64
}

// Resetter is implemented by inputs and metrics that carry state between
// steps.
type Resetter interface {
	Reset()
}

type Metric interface {
	Name() string
	Observe(y, u []float64, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(y, u []float64, t float64)
}

type Config struct {
	// Duration is rounded to a whole number of model time steps. Steps
	// overrides it when positive.
	Duration      float64
	Steps         int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Duration:      2.0,
		ValidateState: true,
	}
}

// Result holds one row per step: the time at which the input was applied,
// that input, and the state and output after the step.
type Result struct {
	Solver     string
	Dt         float64
	Times      []float64
	Inputs     [][]float64
	States     [][]float64
	Outputs    [][]float64
	Metrics    map[string]float64
	StepsTaken int
}

// Output returns the trace of output channel ch.
func (r *Result) Output(ch int) []float64 {
	return column(r.Outputs, ch)
}

// Input returns the trace of input channel ch.
func (r *Result) Input(ch int) []float64 {
	return column(r.Inputs, ch)
}

func column(rows [][]float64, ch int) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if ch < len(row) {
			out[i] = row[ch]
		}
	}
	return out
}
