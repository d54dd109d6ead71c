package native

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/lti"
	"github.com/san-kum/lsim/internal/statespace"
)

const tol = 1e-9

func tf(num, den []float64) lti.TransferFunction {
	return lti.MustTransferFunction(num, den)
}

func siso(t lti.TransferFunction) *lti.MIMO {
	return lti.NewMIMO([][]lti.TransferFunction{{t}})
}

func scalarAt(m *linalg.Matrix) float64 {
	Expect(m.Rows()).To(Equal(1))
	Expect(m.Cols()).To(Equal(1))
	return m.At(0, 0)
}

var _ = Describe("canonical realization", func() {
	It("realizes a first order lag", func() {
		m, err := canonical([]float64{1}, []float64{1, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(scalarAt(m.A)).To(Equal(-1.0))
		Expect(scalarAt(m.B)).To(Equal(1.0))
		Expect(scalarAt(m.C)).To(Equal(1.0))
		Expect(scalarAt(m.D)).To(Equal(0.0))
	})

	It("places the denominator in the last row", func() {
		m, err := canonical([]float64{1, 2}, []float64{1, 2, 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(m.A.Equal(linalg.FromRows([][]float64{{0, 1}, {-5, -2}}))).To(BeTrue())
		Expect(m.B.Equal(linalg.ColumnVector(0, 1))).To(BeTrue())
		Expect(m.C.Equal(linalg.FromRows([][]float64{{2, 1}}))).To(BeTrue())
	})

	It("splits off the feedthrough of a biproper system", func() {
		m, err := canonical([]float64{1, 3}, []float64{1, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(scalarAt(m.D)).To(Equal(1.0))
		Expect(scalarAt(m.C)).To(Equal(2.0))
	})

	It("normalizes a non-monic denominator", func() {
		m, err := canonical([]float64{4}, []float64{2, 4})
		Expect(err).NotTo(HaveOccurred())
		Expect(scalarAt(m.A)).To(Equal(-2.0))
		Expect(scalarAt(m.C)).To(Equal(2.0))
	})

	It("rejects improper transfer functions", func() {
		_, err := canonical([]float64{1, 0, 0}, []float64{1, 1})
		Expect(err).To(MatchError(lti.ErrImproper))
		Expect(err).To(MatchError(linalg.ErrInvalidArgument))
	})

	It("gives static gains no states", func() {
		m, err := canonical([]float64{3}, []float64{0, 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(m.A.IsEmpty()).To(BeTrue())
		Expect(scalarAt(m.D)).To(Equal(1.5))
	})
})

var _ = Describe("Backend", func() {
	var (
		ctx context.Context
		b   *Backend
	)

	BeforeEach(func() {
		ctx = context.Background()
		b = New()
	})

	Describe("first order lag 1/(s+a)", func() {
		const a, T = 2.0, 0.1
		lag := tf([]float64{1}, []float64{1, a})
		p := math.Exp(-a * T)

		realize := func(method statespace.C2DMethod) statespace.Matrices {
			_, disc, err := b.Realize(ctx, siso(lag), T, method)
			Expect(err).NotTo(HaveOccurred())
			return disc
		}

		It("holds the input with zoh", func() {
			d := realize(statespace.ZeroOrderHold)
			Expect(scalarAt(d.A)).To(BeNumerically("~", p, tol))
			Expect(scalarAt(d.B)).To(BeNumerically("~", (1-p)/a, tol))
			Expect(scalarAt(d.C)).To(Equal(1.0))
		})

		It("applies the bilinear map with tustin", func() {
			d := realize(statespace.Tustin)
			alpha := T / 2
			Expect(scalarAt(d.A)).To(BeNumerically("~", (1-alpha*a)/(1+alpha*a), tol))
			Expect(scalarAt(d.B)).To(BeNumerically("~", T/(1+alpha*a), tol))
			Expect(scalarAt(d.C)).To(BeNumerically("~", 1/(1+alpha*a), tol))
			Expect(scalarAt(d.D)).To(BeNumerically("~", alpha/(1+alpha*a), tol))
		})

		It("scales the impulse response by T", func() {
			d := realize(statespace.ImpulseInvariant)
			Expect(scalarAt(d.A)).To(BeNumerically("~", p, tol))
			Expect(scalarAt(d.B)).To(BeNumerically("~", T*p, tol))
			Expect(scalarAt(d.D)).To(BeNumerically("~", T, tol))
		})

		It("matches the pole and the dc gain", func() {
			d := realize(statespace.MatchedPoleZero)
			Expect(scalarAt(d.A)).To(BeNumerically("~", p, tol))
			k := scalarAt(d.B) * scalarAt(d.C)
			Expect(k).To(BeNumerically("~", (1-p)/a, tol))
		})

		It("falls back to tustin without a prewarp frequency", func() {
			plain := realize(statespace.Tustin)
			warped := realize(statespace.PrewarpedTustin)
			Expect(warped.A.EqualApprox(plain.A, tol)).To(BeTrue())
		})

		It("prewarps with the configured frequency", func() {
			const w = 10.0
			b = New(WithPrewarpFrequency(w))
			d := realize(statespace.PrewarpedTustin)
			alpha := math.Tan(w*T/2) / w
			Expect(scalarAt(d.A)).To(BeNumerically("~", (1-alpha*a)/(1+alpha*a), tol))
		})

		It("rejects a prewarp frequency beyond Nyquist", func() {
			b = New(WithPrewarpFrequency(100))
			_, _, err := b.Realize(ctx, siso(lag), T, statespace.PrewarpedTustin)
			Expect(err).To(MatchError(linalg.ErrInvalidArgument))
		})
	})

	Describe("integrator 1/s", func() {
		const T = 0.05

		It("accumulates T per sample with zoh", func() {
			_, d, err := b.Realize(ctx, siso(lti.Integrator()), T, statespace.ZeroOrderHold)
			Expect(err).NotTo(HaveOccurred())
			Expect(scalarAt(d.A)).To(BeNumerically("~", 1, tol))
			Expect(scalarAt(d.B)).To(BeNumerically("~", T, tol))
		})

		It("becomes the trapezoidal rule with foh", func() {
			_, d, err := b.Realize(ctx, siso(lti.Integrator()), T, statespace.FirstOrderHold)
			Expect(err).NotTo(HaveOccurred())
			Expect(scalarAt(d.A)).To(BeNumerically("~", 1, tol))
			Expect(scalarAt(d.B)).To(BeNumerically("~", T, tol))
			Expect(scalarAt(d.D)).To(BeNumerically("~", T/2, tol))
		})

		It("matches the gain away from the pole at the origin", func() {
			_, d, err := b.Realize(ctx, siso(lti.Integrator()), T, statespace.MatchedPoleZero)
			Expect(err).NotTo(HaveOccurred())
			Expect(scalarAt(d.A)).To(BeNumerically("~", 1, tol))
			Expect(scalarAt(d.B) * scalarAt(d.C)).To(BeNumerically("~", 1-math.Exp(-T), tol))
		})
	})

	Describe("matched pole-zero", func() {
		It("agrees between the transfer function and matrix paths", func() {
			sys := siso(tf([]float64{1, 2}, []float64{1, 2, 5}))
			cont, viaTF, err := b.Realize(ctx, sys, 0.1, statespace.MatchedPoleZero)
			Expect(err).NotTo(HaveOccurred())

			viaSS, err := b.Discretize(ctx, cont, 0.1, statespace.MatchedPoleZero)
			Expect(err).NotTo(HaveOccurred())
			Expect(viaSS.A.EqualApprox(viaTF.A, 1e-8)).To(BeTrue())
			Expect(viaSS.C.EqualApprox(viaTF.C, 1e-8)).To(BeTrue())
		})

		It("is unsupported for multichannel systems", func() {
			sys := lti.NewMIMO([][]lti.TransferFunction{{lti.One(), lti.Integrator()}})
			_, _, err := b.Realize(ctx, sys, 0.1, statespace.MatchedPoleZero)
			Expect(err).To(MatchError(lti.ErrUnsupported))
		})
	})

	Describe("multichannel systems", func() {
		var sys *lti.MIMO

		BeforeEach(func() {
			sys = lti.NewMIMO([][]lti.TransferFunction{
				{tf([]float64{1}, []float64{1, 1}), tf([]float64{2}, []float64{1, 3})},
				{tf([]float64{1, 2}, []float64{1, 2, 5}), tf([]float64{3}, []float64{1, 4})},
			})
		})

		It("stacks one block per entry", func() {
			cont, disc, err := b.Realize(ctx, sys, 0.01, statespace.ZeroOrderHold)
			Expect(err).NotTo(HaveOccurred())
			Expect(cont.A.Rows()).To(Equal(5))
			Expect(disc.B.Cols()).To(Equal(2))
			Expect(disc.C.Rows()).To(Equal(2))
		})

		It("settles at the dc gain of every channel", func() {
			m, err := sys.ToStateSpaceZOH(ctx, b, 0.01)
			Expect(err).NotTo(HaveOccurred())

			u := linalg.ColumnVector(1, 1)
			for i := 0; i < 2000; i++ {
				Expect(m.Step(u)).To(Succeed())
			}
			y := m.Output()
			Expect(y.At(0, 0)).To(BeNumerically("~", 1+2.0/3, 1e-6))
			Expect(y.At(1, 0)).To(BeNumerically("~", 2.0/5+3.0/4, 1e-6))
		})

		It("adds no states for zero entries", func() {
			sparse := lti.NewMIMO([][]lti.TransferFunction{{lti.Integrator()}, {}})
			cont, _, err := b.Realize(ctx, sparse, 0.01, statespace.ZeroOrderHold)
			Expect(err).NotTo(HaveOccurred())
			Expect(cont.A.Rows()).To(Equal(1))
			Expect(cont.C.Rows()).To(Equal(2))
		})

		It("reports which entry is improper", func() {
			Expect(sys.SetTransferFunction(1, 1, tf([]float64{1, 0, 0}, []float64{1, 1}))).To(Succeed())
			_, _, err := b.Realize(ctx, sys, 0.01, statespace.ZeroOrderHold)
			Expect(err).To(MatchError(lti.ErrImproper))
			Expect(err.Error()).To(ContainSubstring("entry (1,1)"))
		})
	})

	Describe("systems without inputs or outputs", func() {
		const T = 0.1
		decay := math.Exp(-T)
		bilinearPole := (1 - T/2) / (1 + T/2)

		freeResponse := func() statespace.Matrices {
			return statespace.Matrices{
				A: linalg.FromRows([][]float64{{-1}}),
				B: linalg.New(1, 0),
				C: linalg.FromRows([][]float64{{1}}),
				D: linalg.New(1, 0),
			}
		}
		unobserved := func() statespace.Matrices {
			return statespace.Matrices{
				A: linalg.FromRows([][]float64{{-1}}),
				B: linalg.FromRows([][]float64{{1}}),
				C: linalg.New(0, 1),
				D: linalg.New(0, 1),
			}
		}

		DescribeTable("keeps the empty side empty",
			func(method statespace.C2DMethod, pole float64) {
				disc, err := b.Discretize(ctx, freeResponse(), T, method)
				Expect(err).NotTo(HaveOccurred())
				Expect(scalarAt(disc.A)).To(BeNumerically("~", pole, tol))
				Expect(disc.B.Rows()).To(Equal(1))
				Expect(disc.B.Cols()).To(Equal(0))
				Expect(scalarAt(disc.C)).To(BeNumerically("~", 1, tol))
				Expect(disc.D.Cols()).To(Equal(0))

				disc, err = b.Discretize(ctx, unobserved(), T, method)
				Expect(err).NotTo(HaveOccurred())
				Expect(scalarAt(disc.A)).To(BeNumerically("~", pole, tol))
				Expect(disc.B.Rows()).To(Equal(1))
				Expect(disc.C.Rows()).To(Equal(0))
				Expect(disc.D.Rows()).To(Equal(0))
				Expect(disc.D.Cols()).To(Equal(1))
			},
			Entry("zoh", statespace.ZeroOrderHold, decay),
			Entry("foh", statespace.FirstOrderHold, decay),
			Entry("tustin", statespace.Tustin, bilinearPole),
			Entry("prewarp", statespace.PrewarpedTustin, bilinearPole),
			Entry("impulse", statespace.ImpulseInvariant, decay),
		)

		It("matches the single channel input matrix when outputs are missing", func() {
			disc, err := b.Discretize(ctx, unobserved(), T, statespace.ZeroOrderHold)
			Expect(err).NotTo(HaveOccurred())
			Expect(scalarAt(disc.B)).To(BeNumerically("~", 1-decay, tol))
		})

		It("decays from the initial state with an empty input", func() {
			cont := freeResponse()
			disc, err := b.Discretize(ctx, cont, T, statespace.ZeroOrderHold)
			Expect(err).NotTo(HaveOccurred())
			m, err := statespace.New(cont, disc, linalg.ColumnVector(2), T)
			Expect(err).NotTo(HaveOccurred())

			Expect(m.Step(linalg.ColumnVector())).To(Succeed())
			Expect(m.Output().At(0, 0)).To(BeNumerically("~", 2*decay, tol))
		})

		It("rejects matched pole-zero", func() {
			_, err := b.Discretize(ctx, freeResponse(), T, statespace.MatchedPoleZero)
			Expect(err).To(MatchError(lti.ErrUnsupported))
		})
	})

	Describe("second order step response", func() {
		const wn, zeta, dt = 30.0, 0.2, 0.01
		plant := tf([]float64{wn * wn}, []float64{1, 2 * zeta * wn, wn * wn})

		DescribeTable("settles at unit gain",
			func(solver statespace.Solver) {
				m, err := plant.ToStateSpace(ctx, b, dt, statespace.ZeroOrderHold, statespace.WithSolver(solver))
				Expect(err).NotTo(HaveOccurred())
				u := linalg.ColumnVector(1)
				for i := 0; i < 300; i++ {
					Expect(m.Step(u)).To(Succeed())
				}
				Expect(m.Output().At(0, 0)).To(BeNumerically("~", 1, 1e-3))
			},
			Entry("discretized", statespace.Discretized),
			Entry("rk4", statespace.RK4),
		)
	})

	It("passes static gains through unchanged", func() {
		_, d, err := b.Realize(ctx, siso(tf([]float64{4}, []float64{2})), 0.1, statespace.FirstOrderHold)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.A.IsEmpty()).To(BeTrue())
		Expect(scalarAt(d.D)).To(Equal(2.0))
	})

	It("rejects a non-positive or infinite time step", func() {
		_, _, err := b.Realize(ctx, siso(lti.One()), 0, statespace.ZeroOrderHold)
		Expect(err).To(MatchError(linalg.ErrInvalidArgument))
		_, _, err = b.Realize(ctx, siso(lti.One()), math.Inf(1), statespace.ZeroOrderHold)
		Expect(err).To(MatchError(linalg.ErrInvalidArgument))
	})
})
