// Package signal provides open-loop input sources for sim.Simulator.
//
// Every source returns a fresh slice per call and ignores the output fed
// back to it.
package signal

import "math"

// switchTol absorbs the rounding of i*dt when comparing against a switch time.
const switchTol = 1e-9

type Constant struct {
	Values []float64
}

func NewConstant(values ...float64) *Constant {
	return &Constant{Values: values}
}

func (c *Constant) Compute(y []float64, t float64) []float64 {
	out := make([]float64, len(c.Values))
	copy(out, c.Values)
	return out
}

// Step holds Before until SwitchAt, then After.
type Step struct {
	Before   []float64
	After    []float64
	SwitchAt float64
}

func NewStep(before, after []float64, switchAt float64) *Step {
	return &Step{Before: before, After: after, SwitchAt: switchAt}
}

func (s *Step) Compute(y []float64, t float64) []float64 {
	src := s.Before
	if t >= s.SwitchAt-switchTol {
		src = s.After
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// Impulse applies Amplitude/Dt during the first sample so that the input
// integrates to Amplitude, and zero afterwards.
type Impulse struct {
	Amplitude []float64
	Dt        float64
}

func NewImpulse(dt float64, amplitude ...float64) *Impulse {
	return &Impulse{Amplitude: amplitude, Dt: dt}
}

func (p *Impulse) Compute(y []float64, t float64) []float64 {
	out := make([]float64, len(p.Amplitude))
	if t < p.Dt-switchTol {
		for i, a := range p.Amplitude {
			out[i] = a / p.Dt
		}
	}
	return out
}

// Sine drives every channel with Offset + Amplitude*sin(2*pi*Freq*t + Phase).
type Sine struct {
	Amplitude float64
	Freq      float64
	Phase     float64
	Offset    float64
	Channels  int
}

func NewSine(amplitude, freq float64, channels int) *Sine {
	return &Sine{Amplitude: amplitude, Freq: freq, Channels: channels}
}

func (s *Sine) Compute(y []float64, t float64) []float64 {
	v := s.Offset + s.Amplitude*math.Sin(2*math.Pi*s.Freq*t+s.Phase)
	out := make([]float64, s.Channels)
	for i := range out {
		out[i] = v
	}
	return out
}
