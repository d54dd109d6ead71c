package signal

import (
	"math"
	"testing"
)

func TestStepSwitchesOnSampleBoundary(t *testing.T) {
	s := NewStep([]float64{1}, []float64{0.5}, 1.0)
	dt := 0.01

	tests := []struct {
		step int
		want float64
	}{
		{0, 1},
		{99, 1},
		{100, 0.5},
		{199, 0.5},
	}
	for _, tt := range tests {
		got := s.Compute(nil, float64(tt.step)*dt)
		if got[0] != tt.want {
			t.Errorf("step %d: got %v, expected %v", tt.step, got[0], tt.want)
		}
	}
}

func TestConstantReturnsCopies(t *testing.T) {
	c := NewConstant(1, 2)
	u := c.Compute(nil, 0)
	u[0] = 99
	if c.Compute(nil, 1)[0] != 1 {
		t.Error("caller mutation leaked into the source")
	}
}

func TestImpulseArea(t *testing.T) {
	dt := 0.01
	p := NewImpulse(dt, 2)
	area := 0.0
	for i := 0; i < 100; i++ {
		area += p.Compute(nil, float64(i)*dt)[0] * dt
	}
	if math.Abs(area-2) > 1e-12 {
		t.Errorf("got area %v, expected 2", area)
	}
}

func TestSine(t *testing.T) {
	s := NewSine(2, 1, 3)
	s.Offset = 1
	u := s.Compute(nil, 0.25)
	if len(u) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(u))
	}
	for i, v := range u {
		if math.Abs(v-3) > 1e-12 {
			t.Errorf("channel %d: got %v, expected 3", i, v)
		}
	}
}
