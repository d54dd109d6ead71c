package control

import (
	"sync"
	"testing"
)

func TestNone(t *testing.T) {
	ctrl := NewNone(2)
	u := ctrl.Compute([]float64{1.0, 2.0}, 0.0)

	if len(u) != 2 {
		t.Errorf("expected 2 controls, got %d", len(u))
	}
	for i, v := range u {
		if v != 0 {
			t.Errorf("control[%d] should be 0, got %f", i, v)
		}
	}
}

func TestPID(t *testing.T) {
	ctrl := NewPID(10.0, 0.1, 5.0, 0.0)
	u := ctrl.Compute([]float64{1.0}, 0.0)
	if len(u) != 1 {
		t.Fatalf("expected 1 control, got %d", len(u))
	}
	if u[0] >= 0 {
		t.Error("PID should output negative control for positive error")
	}
}

func TestPIDIntegralAccumulates(t *testing.T) {
	ctrl := NewPID(0, 1, 0, 1)
	ctrl.Compute([]float64{0}, 0)
	u1 := ctrl.Compute([]float64{0}, 0.1)
	u2 := ctrl.Compute([]float64{0}, 0.2)
	if u2[0] <= u1[0] {
		t.Errorf("integral term should grow under constant error: %v then %v", u1[0], u2[0])
	}

	ctrl.Reset()
	if u := ctrl.Compute([]float64{0}, 0.3); u[0] != 0 {
		t.Errorf("expected pure proportional output after reset, got %v", u[0])
	}
}

func TestPIDWidth(t *testing.T) {
	ctrl := NewPID(1, 0, 0, 1)
	ctrl.Inputs = 3
	u := ctrl.Compute([]float64{0}, 0)
	if len(u) != 3 || u[0] != 1 || u[1] != 0 {
		t.Errorf("got %v, expected [1 0 0]", u)
	}
}

func TestPIDParams(t *testing.T) {
	ctrl := NewPID(1, 2, 3, 4)
	ctrl.SetParam("Kd", 7)
	if ctrl.GetParams()["Kd"] != 7 {
		t.Errorf("got %v, expected 7", ctrl.GetParams()["Kd"])
	}
}

func TestFeedback(t *testing.T) {
	ctrl := NewFeedback([][]float64{{1.0, 2.0}}, []float64{1.0})

	u := ctrl.Compute([]float64{1.0, 0.0}, 0.0)
	if u[0] != 0 {
		t.Errorf("expected zero control at target, got %f", u[0])
	}

	u = ctrl.Compute([]float64{0.0, 1.0}, 0.0)
	// 1*(1-0) + 2*(0-1)
	if u[0] != -1 {
		t.Errorf("got %v, expected -1", u[0])
	}
}

func TestManualConcurrentNudge(t *testing.T) {
	m := NewManual(1)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Nudge(0, 0.5)
			m.Compute(nil, 0)
		}()
	}
	wg.Wait()

	if got := m.Compute(nil, 0)[0]; got != 25 {
		t.Errorf("got %v, expected 25", got)
	}
	m.Set(5, 1)
	if len(m.Compute(nil, 0)) != 1 {
		t.Error("out of range Set resized the input")
	}
}
