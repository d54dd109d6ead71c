package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lsim/internal/config"
	"github.com/san-kum/lsim/internal/experiment"
	"github.com/san-kum/lsim/internal/sim"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset or a config file and overrides the
// fields that are set.
type ScenarioStep struct {
	Name     string             `yaml:"name"`
	Preset   string             `yaml:"preset"`
	Config   string             `yaml:"config"`
	Solver   string             `yaml:"solver"`
	Method   string             `yaml:"method"`
	Duration float64            `yaml:"duration"`
	Dt       float64            `yaml:"dt"`
	Params   map[string]float64 `yaml:"params"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve builds the configuration of one step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Solver != "" {
		cfg.Solver = s.Solver
	}
	if s.Method != "" {
		cfg.Method = s.Method
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	for k, v := range s.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// StepResult pairs a run with the step that produced it.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *sim.Result
}

// RunScenario executes all steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg, nil, logger)
		if err := exp.Setup(ctx); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}

// ParameterSweep runs Base once per value of Param between Min and Max.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min      float64
	Max      float64
	NumSteps int
}

type SweepResult struct {
	ParamValue  float64
	FinalOutput []float64
	Metrics     map[string]float64
	Err         error
}

// RunSweep executes a parameter sweep. A run that fails is reported in its
// SweepResult and does not stop the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *log.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if err := sweep.Base.Clone().SetParam(sweep.Param, sweep.Min); err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		paramVal := sweep.Min
		switch {
		case i == sweep.NumSteps-1 && i > 0:
			paramVal = sweep.Max
		case i > 0:
			paramVal += float64(i) * paramStep
		}
		cfg := sweep.Base.Clone()

		sr := SweepResult{ParamValue: paramVal}
		if err := cfg.SetParam(sweep.Param, paramVal); err != nil {
			sr.Err = err
		} else {
			sr.FinalOutput, sr.Metrics, sr.Err = runPoint(ctx, cfg, logger)
		}
		results = append(results, sr)

		logger.Info("sweep", "step", i+1, "of", sweep.NumSteps, sweep.Param, paramVal, "err", sr.Err)
	}

	return results, nil
}

func runPoint(ctx context.Context, cfg *config.Config, logger *log.Logger) ([]float64, map[string]float64, error) {
	exp := experiment.New(cfg, nil, logger)
	if err := exp.Setup(ctx); err != nil {
		return nil, nil, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return result.Outputs[len(result.Outputs)-1], result.Metrics, nil
}
