package metrics

import "math"

// FinalValue is the last observed value of one output channel, zero before
// the channel has been observed.
type FinalValue struct {
	channel int
	last    float64
	seen    bool
}

func NewFinalValue(channel int) *FinalValue {
	return &FinalValue{channel: channel}
}

func (f *FinalValue) Name() string { return "final_value" }

func (f *FinalValue) Observe(y, u []float64, t float64) {
	if f.channel < len(y) {
		f.last = y[f.channel]
		f.seen = true
	}
}

func (f *FinalValue) Value() float64 {
	if !f.seen {
		return 0
	}
	return f.last
}

func (f *FinalValue) Reset() {
	f.last = 0
	f.seen = false
}

// Overshoot is the relative excursion of one output beyond its final value,
// (peak - final) / |final|. It is zero for a response that never passes its
// final value and for a final value of zero.
type Overshoot struct {
	channel int
	trace   []float64
}

func NewOvershoot(channel int) *Overshoot {
	return &Overshoot{channel: channel}
}

func (o *Overshoot) Name() string { return "overshoot" }

func (o *Overshoot) Observe(y, u []float64, t float64) {
	if o.channel < len(y) {
		o.trace = append(o.trace, y[o.channel])
	}
}

func (o *Overshoot) Value() float64 {
	if len(o.trace) == 0 {
		return 0
	}
	final := o.trace[len(o.trace)-1]
	if final == 0 {
		return 0
	}
	worst := 0.0
	for _, v := range o.trace {
		if d := (v - final) * math.Copysign(1, final); d > worst {
			worst = d
		}
	}
	return worst / math.Abs(final)
}

func (o *Overshoot) Reset() {
	o.trace = o.trace[:0]
}

// SettlingTime is the time after which one output stays within a band of
// its final value. The band is a fraction of |final|, 0.02 by default. It is
// zero when nothing was observed.
type SettlingTime struct {
	channel int
	band    float64
	times   []float64
	trace   []float64
}

func NewSettlingTime(channel int, band float64) *SettlingTime {
	if band <= 0 {
		band = 0.02
	}
	return &SettlingTime{channel: channel, band: band}
}

func (s *SettlingTime) Name() string { return "settling_time" }

func (s *SettlingTime) Observe(y, u []float64, t float64) {
	if s.channel < len(y) {
		s.times = append(s.times, t)
		s.trace = append(s.trace, y[s.channel])
	}
}

func (s *SettlingTime) Value() float64 {
	if len(s.trace) == 0 {
		return 0
	}
	final := s.trace[len(s.trace)-1]
	tol := s.band * math.Abs(final)
	for i := len(s.trace) - 1; i >= 0; i-- {
		if math.Abs(s.trace[i]-final) > tol {
			return s.times[i+1]
		}
	}
	return s.times[0]
}

func (s *SettlingTime) Reset() {
	s.times = s.times[:0]
	s.trace = s.trace[:0]
}
