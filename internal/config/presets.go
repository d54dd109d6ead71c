package config

import "sort"

func tf(out, in int, num, den []float64) TFConfig {
	return TFConfig{Out: out, In: in, Num: num, Den: den}
}

var Presets = map[string]*Config{
	// wn = 30 rad/s, zeta = 0.2, input drops to half after one second
	"second_order": {
		System: SystemConfig{TF: []TFConfig{tf(0, 0, []float64{900}, []float64{1, 12, 900})}},
		Solver: "discretized", Method: "zoh", Backend: "native",
		Dt: 0.01, Duration: 2.0,
		Input: InputConfig{Kind: "step", Values: []float64{1}, After: []float64{0.5}, SwitchAt: 1.0},
	},
	"mimo_2x2": {
		System: SystemConfig{TF: []TFConfig{
			tf(0, 0, []float64{1}, []float64{1, 1}),
			tf(0, 1, []float64{2}, []float64{1, 3}),
			tf(1, 0, []float64{1, 2}, []float64{1, 2, 5}),
			tf(1, 1, []float64{3}, []float64{1, 4}),
		}},
		Solver: "discretized", Method: "zoh", Backend: "native",
		Dt: 0.01, Duration: 10.0,
		Input: InputConfig{Kind: "step", Values: []float64{1, 0}, After: []float64{1, 1}, SwitchAt: 5.0},
	},
	"integrator": {
		System: SystemConfig{TF: []TFConfig{tf(0, 0, []float64{1}, []float64{1, 0})}},
		Solver: "discretized", Method: "zoh", Backend: "native",
		Dt: 0.01, Duration: 1.0,
		Input: InputConfig{Kind: "constant", Values: []float64{1}},
	},
	"first_order": {
		System: SystemConfig{TF: []TFConfig{tf(0, 0, []float64{1}, []float64{1, 1})}},
		Solver: "rk4", Method: "tustin", Backend: "native",
		Dt: 0.05, Duration: 8.0,
		Input: InputConfig{Kind: "step", Values: []float64{1}},
	},
	"pid_loop": {
		System: SystemConfig{TF: []TFConfig{tf(0, 0, []float64{1}, []float64{1, 3, 2})}},
		Solver: "discretized", Method: "foh", Backend: "native",
		Dt: 0.01, Duration: 10.0,
		Input:            InputConfig{Kind: "pid"},
		ControllerParams: ControllerConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, Target: 1},
	},
	"mass_spring": {
		System: SystemConfig{
			A: [][]float64{{0, 1}, {-4, -0.4}},
			B: [][]float64{{0}, {1}},
			C: [][]float64{{1, 0}},
			D: [][]float64{{0}},
		},
		Solver: "rk4", Method: "zoh", Backend: "native",
		Dt: 0.01, Duration: 15.0,
		InitState: []float64{1, 0},
		Input:     InputConfig{Kind: "none"},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
