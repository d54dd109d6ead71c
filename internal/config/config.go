package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lsim/internal/statespace"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 2.0
	DefaultSolver   = "discretized"
	DefaultMethod   = "zoh"
	DefaultBackend  = "native"
	DefaultKp       = 2.0
	DefaultKi       = 1.0
	DefaultKd       = 0.05
)

type Config struct {
	System           SystemConfig     `yaml:"system" toml:"system"`
	Solver           string           `yaml:"solver" toml:"solver"`
	Method           string           `yaml:"method" toml:"method"`
	Backend          string           `yaml:"backend" toml:"backend"`
	PrewarpFrequency float64          `yaml:"prewarp_frequency,omitempty" toml:"prewarp_frequency,omitempty"`
	Dt               float64          `yaml:"dt" toml:"dt"`
	Duration         float64          `yaml:"duration" toml:"duration"`
	InitState        []float64        `yaml:"init_state,omitempty" toml:"init_state,omitempty"`
	Input            InputConfig      `yaml:"input" toml:"input"`
	ControllerParams ControllerConfig `yaml:"controller_params" toml:"controller_params"`
}

// SystemConfig describes the plant either as transfer function entries or as
// continuous state-space matrices.
type SystemConfig struct {
	TF []TFConfig  `yaml:"tf,omitempty" toml:"tf,omitempty"`
	A  [][]float64 `yaml:"a,omitempty" toml:"a,omitempty"`
	B  [][]float64 `yaml:"b,omitempty" toml:"b,omitempty"`
	C  [][]float64 `yaml:"c,omitempty" toml:"c,omitempty"`
	D  [][]float64 `yaml:"d,omitempty" toml:"d,omitempty"`
}

// TFConfig is the transfer function from input In to output Out. Entries
// missing from the grid are zero.
type TFConfig struct {
	Out int       `yaml:"out" toml:"out"`
	In  int       `yaml:"in" toml:"in"`
	Num []float64 `yaml:"num" toml:"num"`
	Den []float64 `yaml:"den" toml:"den"`
}

// Shape returns the number of outputs and inputs the entries span.
func (s SystemConfig) Shape() (outputs, inputs int) {
	for _, tf := range s.TF {
		outputs = max(outputs, tf.Out+1)
		inputs = max(inputs, tf.In+1)
	}
	return outputs, inputs
}

// InputConfig selects the input source. Kind is one of constant, step,
// impulse, sine, pid, feedback, manual or none.
type InputConfig struct {
	Kind      string    `yaml:"kind" toml:"kind"`
	Values    []float64 `yaml:"values,omitempty" toml:"values,omitempty"`
	After     []float64 `yaml:"after,omitempty" toml:"after,omitempty"`
	SwitchAt  float64   `yaml:"switch_at,omitempty" toml:"switch_at,omitempty"`
	Amplitude float64   `yaml:"amplitude,omitempty" toml:"amplitude,omitempty"`
	Freq      float64   `yaml:"freq,omitempty" toml:"freq,omitempty"`
}

type ControllerConfig struct {
	Kp     float64 `yaml:"kp" toml:"kp"`
	Ki     float64 `yaml:"ki" toml:"ki"`
	Kd     float64 `yaml:"kd" toml:"kd"`
	Target float64 `yaml:"target" toml:"target"`
}

var InputKinds = []string{"constant", "step", "impulse", "sine", "pid", "feedback", "manual", "none"}

func DefaultConfig() *Config {
	return &Config{
		System: SystemConfig{
			TF: []TFConfig{{Num: []float64{900}, Den: []float64{1, 12, 900}}},
		},
		Solver:   DefaultSolver,
		Method:   DefaultMethod,
		Backend:  DefaultBackend,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Input:    InputConfig{Kind: "step", Values: []float64{1}},
		ControllerParams: ControllerConfig{
			Kp:     DefaultKp,
			Ki:     DefaultKi,
			Kd:     DefaultKd,
			Target: 1,
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	// a file that names its own system replaces the default plant entirely
	cfg.System = SystemConfig{}
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.System.empty() {
		cfg.System = DefaultConfig().System
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (s SystemConfig) empty() bool {
	return len(s.TF) == 0 && len(s.A) == 0
}

// IsStateSpace reports whether the system is given as matrices.
func (s SystemConfig) IsStateSpace() bool {
	return len(s.TF) == 0 && len(s.A) > 0
}

// Validate checks everything that can be checked without building the
// system.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if _, err := statespace.ParseSolver(c.Solver); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := statespace.ParseMethod(c.Method); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Backend != "native" && c.Backend != "engine" {
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.System.empty() {
		return fmt.Errorf("config: no system given")
	}
	if len(c.System.TF) > 0 && len(c.System.A) > 0 {
		return fmt.Errorf("config: system has both transfer functions and matrices")
	}
	seen := make(map[[2]int]bool)
	for _, tf := range c.System.TF {
		key := [2]int{tf.Out, tf.In}
		if tf.Out < 0 || tf.In < 0 {
			return fmt.Errorf("config: tf (%d,%d) has a negative index", tf.Out, tf.In)
		}
		if seen[key] {
			return fmt.Errorf("config: tf (%d,%d) given twice", tf.Out, tf.In)
		}
		seen[key] = true
		if len(tf.Den) == 0 {
			return fmt.Errorf("config: tf (%d,%d) has no denominator", tf.Out, tf.In)
		}
	}
	known := false
	for _, k := range InputKinds {
		if c.Input.Kind == k {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("config: unknown input kind %q", c.Input.Kind)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.System.TF = make([]TFConfig, len(c.System.TF))
	for i, tf := range c.System.TF {
		out.System.TF[i] = TFConfig{Out: tf.Out, In: tf.In, Num: cloneSlice(tf.Num), Den: cloneSlice(tf.Den)}
	}
	out.System.A = cloneGrid(c.System.A)
	out.System.B = cloneGrid(c.System.B)
	out.System.C = cloneGrid(c.System.C)
	out.System.D = cloneGrid(c.System.D)
	out.InitState = cloneSlice(c.InitState)
	out.Input.Values = cloneSlice(c.Input.Values)
	out.Input.After = cloneSlice(c.Input.After)
	return &out
}

func cloneSlice(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}

func cloneGrid(g [][]float64) [][]float64 {
	if g == nil {
		return nil
	}
	out := make([][]float64, len(g))
	for i, row := range g {
		out[i] = cloneSlice(row)
	}
	return out
}

// Params lists the names SetParam accepts.
var Params = []string{"dt", "duration", "prewarp", "kp", "ki", "kd", "target"}

// SetParam sets one numeric parameter by name.
func (c *Config) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("config: parameter %s must be finite, got %g", name, value)
	}
	switch name {
	case "dt":
		c.Dt = value
	case "duration":
		c.Duration = value
	case "prewarp":
		c.PrewarpFrequency = value
	case "kp":
		c.ControllerParams.Kp = value
	case "ki":
		c.ControllerParams.Ki = value
	case "kd":
		c.ControllerParams.Kd = value
	case "target":
		c.ControllerParams.Target = value
	default:
		return fmt.Errorf("config: unknown parameter %q", name)
	}
	return nil
}
