package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/lti"
	"github.com/san-kum/lsim/internal/statespace"
)

type fakeSession struct {
	vars    map[string]Array
	puts    []string
	cmds    []string
	evalErr error
}

func newFakeSession() *fakeSession {
	s := &fakeSession{vars: make(map[string]Array)}
	// 2 states, 1 input, 1 output. A = [0, 1; -2, -3] in column-major order.
	for _, prefix := range []string{"", "d"} {
		s.vars["A"+prefix] = Array{Rows: 2, Cols: 2, Data: []float64{0, -2, 1, -3}}
		s.vars["B"+prefix] = Array{Rows: 2, Cols: 1, Data: []float64{0, 1}}
		s.vars["C"+prefix] = Array{Rows: 1, Cols: 2, Data: []float64{1, 0}}
		s.vars["D"+prefix] = Array{Rows: 1, Cols: 1, Data: []float64{0}}
	}
	return s
}

func (s *fakeSession) Put(name string, a Array) error {
	s.puts = append(s.puts, name)
	s.vars["put:"+name] = a
	return nil
}

func (s *fakeSession) Eval(cmd string) error {
	s.cmds = append(s.cmds, cmd)
	return s.evalErr
}

func (s *fakeSession) Get(name string) (Array, error) {
	a, ok := s.vars[name]
	if !ok {
		return Array{}, errors.New("undefined variable " + name)
	}
	return a, nil
}

func TestRealizeScript(t *testing.T) {
	s := newFakeSession()
	b := New(s)

	sys := lti.NewMIMO([][]lti.TransferFunction{
		{lti.One(), lti.Integrator()},
		{lti.Zero()},
	})
	cont, disc, err := b.Realize(context.Background(), sys, 0.01, statespace.Tustin)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"tf_0_0 = tf(num, den);",
		"tf_0_1 = tf(num, den);",
		"tf_1_0 = tf(num, den);",
		"tf_1_1 = tf(num, den);",
		"mimo = [tf_0_0, tf_0_1; tf_1_0, tf_1_1];",
		"sysd = c2d(mimo, 0.01, 'tustin'); [Ad,Bd,Cd,Dd] = ssdata(ss(sysd)); [A,B,C,D] = ssdata(ss(mimo));",
	}
	if len(s.cmds) != len(want) {
		t.Fatalf("got %d commands, expected %d: %q", len(s.cmds), len(want), s.cmds)
	}
	for i := range want {
		if s.cmds[i] != want[i] {
			t.Errorf("command %d: got %q, expected %q", i, s.cmds[i], want[i])
		}
	}

	expectedA := linalg.FromRows([][]float64{{0, 1}, {-2, -3}})
	if !cont.A.Equal(expectedA) || !disc.A.Equal(expectedA) {
		t.Errorf("layout conversion: got %v and %v, expected %v", cont.A, disc.A, expectedA)
	}
	if !cont.B.Equal(linalg.ColumnVector(0, 1)) {
		t.Errorf("B got %v", cont.B)
	}
}

func TestRealizePushesCoefficientsAsRows(t *testing.T) {
	s := newFakeSession()
	tf := lti.MustTransferFunction([]float64{1, 2}, []float64{1, 2, 5})
	if _, _, err := New(s).Realize(context.Background(), lti.NewMIMO([][]lti.TransferFunction{{tf}}), 0.1, statespace.ZeroOrderHold); err != nil {
		t.Fatal(err)
	}
	den := s.vars["put:den"]
	if den.Rows != 1 || den.Cols != 3 {
		t.Errorf("den pushed as %dx%d, expected 1x3", den.Rows, den.Cols)
	}
}

func TestPrewarpCommand(t *testing.T) {
	s := newFakeSession()
	b := New(s, WithPrewarpFrequency(30))

	cont := statespace.Matrices{
		A: linalg.FromRows([][]float64{{0, 1}, {-900, -12}}),
		B: linalg.ColumnVector(0, 1),
		C: linalg.FromRows([][]float64{{900, 0}}),
		D: linalg.New(1, 1),
	}
	if _, err := b.Discretize(context.Background(), cont, 0.01, statespace.PrewarpedTustin); err != nil {
		t.Fatal(err)
	}

	cmd := s.cmds[len(s.cmds)-1]
	for _, want := range []string{
		"sys = ss(A, B, C, D);",
		"c2dOptions('Method','tustin','PrewarpFrequency',30)",
		"sysd = c2d(sys, 0.01, opt);",
	} {
		if !strings.Contains(cmd, want) {
			t.Errorf("command %q missing %q", cmd, want)
		}
	}

	a := s.vars["put:A"]
	if a.Data[1] != -900 {
		t.Errorf("A not pushed column-major: %v", a.Data)
	}
	if strings.Join(s.puts, ",") != "A,B,C,D" {
		t.Errorf("puts got %v", s.puts)
	}
}

func TestNilSession(t *testing.T) {
	b := New(nil)
	ctx := context.Background()

	if _, _, err := b.Realize(ctx, lti.NewMIMO([][]lti.TransferFunction{{lti.One()}}), 0.1, statespace.ZeroOrderHold); !errors.Is(err, statespace.ErrBackendUnavailable) {
		t.Errorf("Realize: got %v", err)
	}
	if _, err := b.Discretize(ctx, statespace.Matrices{}, 0.1, statespace.ZeroOrderHold); !errors.Is(err, statespace.ErrBackendUnavailable) {
		t.Errorf("Discretize: got %v", err)
	}
	if _, err := lti.One().ToStateSpace(ctx, nil, 0.1, statespace.ZeroOrderHold); !errors.Is(err, statespace.ErrBackendUnavailable) {
		t.Errorf("ToStateSpace: got %v", err)
	}
}

func TestEvalErrorPropagates(t *testing.T) {
	s := newFakeSession()
	s.evalErr = errors.New("syntax error")

	_, _, err := New(s).Realize(context.Background(), lti.NewMIMO([][]lti.TransferFunction{{lti.One()}}), 0.1, statespace.ZeroOrderHold)
	if !errors.Is(err, s.evalErr) {
		t.Errorf("got %v, expected wrapped eval error", err)
	}
}

func TestModelFromEngine(t *testing.T) {
	s := newFakeSession()
	m, err := lti.One().ToStateSpace(context.Background(), New(s), 0.01, statespace.ZeroOrderHold)
	if err != nil {
		t.Fatal(err)
	}
	if m.StateCount() != 2 {
		t.Errorf("states got %d, expected 2", m.StateCount())
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newFakeSession()
	_, _, err := New(s).Realize(ctx, lti.NewMIMO([][]lti.TransferFunction{{lti.One()}}), 0.1, statespace.ZeroOrderHold)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
	if len(s.cmds) != 0 {
		t.Errorf("commands issued after cancel: %v", s.cmds)
	}
}
