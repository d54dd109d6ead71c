package integrators

import (
	"testing"

	"github.com/san-kum/lsim/internal/linalg"
)

func benchmarkIntegrator(b *testing.B, integ Integrator) {
	dyn := &oscillator{}
	x := linalg.ColumnVector(1, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, err := integ.Step(dyn, x, nil, 0.01)
		if err != nil {
			b.Fatal(err)
		}
		x = next
	}
}

func BenchmarkEuler(b *testing.B)    { benchmarkIntegrator(b, NewEuler()) }
func BenchmarkBilinear(b *testing.B) { benchmarkIntegrator(b, NewBilinear()) }
func BenchmarkRK4(b *testing.B)      { benchmarkIntegrator(b, NewRK4()) }
