package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/lsim/internal/control"
	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/signal"
	"github.com/san-kum/lsim/internal/statespace"
)

func lag(t *testing.T) *statespace.Model {
	t.Helper()
	one := func(v float64) *linalg.Matrix { return linalg.FromRows([][]float64{{v}}) }
	cont := statespace.Matrices{A: one(-1), B: one(1), C: one(1), D: one(0)}
	disc := statespace.Matrices{A: one(0.99), B: one(0.01), C: one(1), D: one(0)}
	sys, err := statespace.New(cont, disc, nil, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	return sys
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func TestTicksAdvance(t *testing.T) {
	m := newModel("lag", lag(t), signal.NewConstant(1), 5)

	for i := 0; i < 10; i++ {
		m = update(t, m, tickMsg{})
	}
	if m.step != 5 {
		t.Errorf("expected to stop at 5 steps, got %d", m.step)
	}
	if len(m.history) != 5 {
		t.Errorf("expected 5 samples, got %d", len(m.history))
	}
	if !strings.Contains(m.View(), "DONE") {
		t.Error("expected DONE status")
	}
}

func TestPauseAndReset(t *testing.T) {
	m := newModel("lag", lag(t), signal.NewConstant(1), 100)

	m = update(t, m, tickMsg{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if !m.paused {
		t.Fatal("expected paused")
	}
	m = update(t, m, tickMsg{})
	if m.step != 1 {
		t.Errorf("expected no progress while paused, got %d steps", m.step)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.step != 0 || len(m.history) != 0 {
		t.Errorf("expected reset, got step %d with %d samples", m.step, len(m.history))
	}
	if m.sys.State().At(0, 0) != 0 {
		t.Errorf("expected zero state after reset, got %f", m.sys.State().At(0, 0))
	}
}

func TestSpeed(t *testing.T) {
	m := newModel("lag", lag(t), signal.NewConstant(1), 100)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	m = update(t, m, tickMsg{})
	if m.step != 4 {
		t.Errorf("expected 4 steps at 4x, got %d", m.step)
	}
}

func TestManualInput(t *testing.T) {
	manual := control.NewManual(1)
	m := newModel("lag", lag(t), manual, 100)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = update(t, m, tickMsg{})
	if len(m.u) != 1 || m.u[0] < 0.2-1e-12 || m.u[0] > 0.2+1e-12 {
		t.Errorf("expected input 0.2, got %v", m.u)
	}
	if !strings.Contains(m.View(), "input") {
		t.Error("expected input key hint")
	}
}

func TestRendererFrame(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, "lag", 1000)
	for i := 0; i < 10; i++ {
		r.OnStep([]float64{float64(i)}, []float64{1}, float64(i)*0.01)
	}
	frame := r.Frame([]float64{9}, []float64{1}, 0.09)
	if !strings.Contains(frame, "lag") || !strings.Contains(frame, "y0=9.000") {
		t.Errorf("unexpected frame:\n%s", frame)
	}
	if buf.Len() == 0 {
		t.Error("expected output")
	}
}

func TestTunePID(t *testing.T) {
	pid := control.NewPID(1, 0, 0, 1)
	m := newModel("lag", lag(t), pid, 100)
	if want := []string{"Kd", "Ki", "Kp", "Target"}; strings.Join(m.params, ",") != strings.Join(want, ",") {
		t.Fatalf("got params %v, expected %v", m.params, want)
	}

	// Kd -> Ki -> Kp
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if pid.Kp < 1.1-1e-12 || pid.Kp > 1.1+1e-12 {
		t.Errorf("got Kp %v, expected 1.1", pid.Kp)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}})
	if pid.Kd != -tuneFloor {
		t.Errorf("got Kd %v, expected %v", pid.Kd, -tuneFloor)
	}

	view := m.View()
	if !strings.Contains(view, "Kp=1.1") || !strings.Contains(view, "tune") {
		t.Errorf("expected tuned gain and key hint in view:\n%s", view)
	}
}

func TestNoTuningForOpenLoop(t *testing.T) {
	m := newModel("lag", lag(t), signal.NewConstant(1), 10)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if m.tuner != nil || strings.Contains(m.View(), "params") {
		t.Error("open-loop input should not offer tuning")
	}
}
