package statespace

import (
	"fmt"
	"strings"

	"github.com/san-kum/lsim/internal/linalg"
)

// Solver selects the update rule used by Model.Step.
type Solver int

const (
	Discretized Solver = iota
	Euler
	Bilinear
	RK4
)

var solverNames = map[Solver]string{
	Discretized: "discretized",
	Euler:       "euler",
	Bilinear:    "bilinear",
	RK4:         "rk4",
}

func (s Solver) String() string {
	if name, ok := solverNames[s]; ok {
		return name
	}
	return fmt.Sprintf("solver(%d)", int(s))
}

// Solvers lists every solver in declaration order.
func Solvers() []Solver {
	return []Solver{Discretized, Euler, Bilinear, RK4}
}

func ParseSolver(name string) (Solver, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for s, n := range solverNames {
		if n == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown solver %q", linalg.ErrInvalidArgument, name)
}

// C2DMethod names the continuous-to-discrete conversion that produced the
// discrete matrices.
type C2DMethod int

const (
	ZeroOrderHold C2DMethod = iota
	FirstOrderHold
	Tustin
	MatchedPoleZero
	ImpulseInvariant
	PrewarpedTustin
)

var methodNames = map[C2DMethod]string{
	ZeroOrderHold:    "zoh",
	FirstOrderHold:   "foh",
	Tustin:           "tustin",
	MatchedPoleZero:  "matched",
	ImpulseInvariant: "impulse",
	PrewarpedTustin:  "prewarp",
}

func (m C2DMethod) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// Methods lists every conversion method in declaration order.
func Methods() []C2DMethod {
	return []C2DMethod{ZeroOrderHold, FirstOrderHold, Tustin, MatchedPoleZero, ImpulseInvariant, PrewarpedTustin}
}

func ParseMethod(name string) (C2DMethod, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for m, n := range methodNames {
		if n == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown discretization method %q", linalg.ErrInvalidArgument, name)
}
