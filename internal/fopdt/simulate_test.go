package fopdt_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fopdtsim/internal/config"
	"github.com/san-kum/fopdtsim/internal/fopdt"
)

func heaterLoop() *fopdt.Loop {
	loop := fopdt.New()
	loop.SetProcess(fopdt.Process{Gain: 1000, TimeConstant: 450, DeadTime: 5})
	Expect(loop.Autotune(fopdt.IMC, 5)).To(Succeed())
	Expect(loop.Set(fopdt.PIDMin, 0)).To(Succeed())
	Expect(loop.Set(fopdt.PIDMax, 1)).To(Succeed())
	return loop
}

// Mean of y over t > 160 for the heater loop, from the reference run.
const (
	imcSteadyState    = 172.87445384582617
	heaterSteadyState = 175.01191655493156
	goldenTol         = 1e-9
)

func meanAfter(tr *fopdt.Trace, from float64) float64 {
	sum, n := 0.0, 0
	for i, t := range tr.T {
		if t > from {
			sum += tr.Y[i]
			n++
		}
	}
	return sum / float64(n)
}

var _ = Describe("Grid", func() {
	DescribeTable("resamples so the dead time is a whole number of samples",
		func(dt, tf, theta float64, lag int, dtAdj float64, n int) {
			gotLag, gotDt, gotN, err := fopdt.Grid(0, dt, tf, theta)
			Expect(err).NotTo(HaveOccurred())
			Expect(gotLag).To(Equal(lag))
			Expect(gotDt).To(Equal(dtAdj))
			Expect(gotN).To(Equal(n))
		},
		Entry("exact fit", 0.25, 200.0, 5.0, 20, 0.25, 800),
		Entry("coarse dt hits the two-sample floor", 3.0, 200.0, 5.0, 2, 2.5, 80),
		Entry("rounds lag up", 0.3, 10.0, 1.0, 4, 0.25, 40),
	)

	DescribeTable("rejects grids beyond the sample cap",
		func(dt, tf float64, want error) {
			lag, dtAdj, n, err := fopdt.Grid(0, dt, tf, 5)
			Expect(err).To(MatchError(want))
			Expect(lag).To(BeZero())
			Expect(dtAdj).To(BeZero())
			Expect(n).To(BeZero())
		},
		Entry("dead time overflows an int", 1e-300, 200.0, fopdt.ErrInvalidSamplingPeriod),
		Entry("dead time exceeds the cap", 1e-20, 200.0, fopdt.ErrInvalidSamplingPeriod),
		Entry("window exceeds the cap", 1e-8, 200.0, fopdt.ErrInvalidTimeInterval),
	)

	It("accepts a grid exactly at the cap", func() {
		lag, _, n, err := fopdt.Grid(0, 5.0/(fopdt.MaxSamples-1), 5, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(lag).To(BeNumerically(">=", fopdt.MaxSamples-1))
		Expect(n).To(BeNumerically("<=", fopdt.MaxSamples))
	})
})

var _ = Describe("Simulate", func() {
	Context("heater step response", func() {
		const (
			t0 = 0.0
			dt = 0.25
			tf = 200.0
			y0 = 0.0
			x  = 175.0
		)
		var tr *fopdt.Trace

		BeforeEach(func() {
			var err error
			tr, err = heaterLoop().Simulate(t0, dt, tf, y0, x)
			Expect(err).NotTo(HaveOccurred())
		})

		It("aligns all five series on the adjusted grid", func() {
			Expect(tr.Lag).To(Equal(20))
			Expect(tr.Dt).To(Equal(0.25))
			Expect(tr.Len()).To(Equal(800))
			for _, series := range [][]float64{tr.E, tr.S, tr.U, tr.Y} {
				Expect(series).To(HaveLen(tr.Len()))
			}
			Expect(tr.T[0]).To(Equal(t0))
			Expect(tr.T[1] - tr.T[0]).To(Equal(0.25))
		})

		It("starts from the initial conditions", func() {
			Expect(tr.Y[0]).To(Equal(y0))
			Expect(tr.S[0]).To(Equal(0.0))
			Expect(tr.E[0]).To(Equal(x - y0))
			Expect(tr.U[0]).To(Equal(1.0))
		})

		It("keeps the error identical to setpoint minus output", func() {
			for i := range tr.Y {
				Expect(tr.E[i]).To(Equal(x - tr.Y[i]))
			}
		})

		It("keeps every controller output inside the limits", func() {
			for _, u := range tr.U {
				Expect(u).To(BeNumerically(">=", 0))
				Expect(u).To(BeNumerically("<=", 1))
			}
		})

		It("freezes the integral while the output is saturated", func() {
			saturated := 0
			for i := 0; i+1 < tr.Len(); i++ {
				if tr.U[i+1] == 0 || tr.U[i+1] == 1 {
					saturated++
					Expect(tr.S[i+1]).To(Equal(tr.S[i]), "sample %d", i+1)
				}
			}
			Expect(saturated).To(BeNumerically(">", 0))
		})

		It("holds the output until one dead time has elapsed", func() {
			for i := 0; i <= tr.Lag; i++ {
				Expect(tr.Y[i]).To(Equal(y0), "sample %d", i)
			}
			Expect(tr.Y[tr.Lag+1]).To(BeNumerically(">", y0))
		})

		It("settles at the recorded steady state", func() {
			Expect(meanAfter(tr, 0.8*tf)).To(BeNumerically("~", imcSteadyState, goldenTol))
		})

		It("exposes the trace as rows spanning the window", func() {
			rows := tr.Samples()
			Expect(rows).To(HaveLen(tr.Len()))
			Expect(rows[0]).To(Equal(fopdt.Sample{T: t0, E: x, S: 0, U: 1, Y: y0}))
			Expect(rows[tr.Len()-1]).To(Equal(tr.Sample(tr.Len() - 1)))
			Expect(tr.Duration()).To(Equal(199.75))
			Expect((&fopdt.Trace{}).Duration()).To(BeZero())
		})

		It("is deterministic", func() {
			again, err := heaterLoop().Simulate(t0, dt, tf, y0, x)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(tr))
		})
	})

	It("reproduces the heater preset steady state", func() {
		cfg := config.GetPreset("heater")
		Expect(cfg).NotTo(BeNil())
		loop := fopdt.New()
		Expect(cfg.Apply(loop)).To(Succeed())

		g, err := loop.Gains()
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Ki).To(Equal(0.28 / 255))

		sim := cfg.Simulation
		tr, err := loop.Simulate(sim.T0, sim.Dt, sim.Tf, sim.Y0, sim.Setpoint)
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Len()).To(Equal(800))
		Expect(meanAfter(tr, 0.8*sim.Tf)).To(BeNumerically("~", heaterSteadyState, goldenTol))
	})

	Context("without saturation", func() {
		It("integrates the error exactly as the open-loop integral", func() {
			const (
				tau = 2.0
				y0  = 1.0
				x   = 2.0
			)
			loop := fopdt.New()
			loop.SetProcess(fopdt.Process{Gain: 3, TimeConstant: tau, DeadTime: 1})
			loop.SetGains(fopdt.Gains{})

			tr, err := loop.Simulate(0, 0.125, 5, y0, x)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(40))

			for i, t := range tr.T {
				decay := math.Exp(-t / tau)
				Expect(tr.U[i]).To(Equal(0.0))
				Expect(tr.Y[i]).To(BeNumerically("~", y0*decay, 1e-6))
				Expect(tr.S[i]).To(BeNumerically("~", x*t-y0*tau*(1-decay), 1e-6))
				if i > 0 {
					Expect(tr.S[i]).To(BeNumerically(">", tr.S[i-1]))
				}
			}
		})

		It("never freezes the integral with unbounded limits", func() {
			loop := heaterLoop()
			loop.SetLimits(fopdt.DefaultLimits())

			tr, err := loop.Simulate(0, 0.25, 200, 0, 175)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.U[0]).To(BeNumerically("~", 452.5/7500*175, 1e-9))
			Expect(tr.S[1]).To(Equal(175 * 0.25))
		})
	})

	Context("preconditions", func() {
		var loop *fopdt.Loop

		BeforeEach(func() {
			loop = heaterLoop()
		})

		It("rejects an empty or inverted time interval", func() {
			_, err := loop.Simulate(10, 1, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrInvalidTimeInterval))
			_, err = loop.Simulate(5, 1, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrInvalidTimeInterval))
		})

		It("rejects a window shorter than one adjusted sample", func() {
			_, err := loop.Simulate(0, 1, 0.5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrInvalidTimeInterval))
		})

		It("rejects a sampling period too fine to store", func() {
			tr, err := loop.Simulate(0, 1e-300, 200, 0, 175)
			Expect(tr).To(BeNil())
			Expect(err).To(MatchError(fopdt.ErrInvalidSamplingPeriod))

			tr, err = loop.Simulate(0, 1e-8, 200, 0, 175)
			Expect(tr).To(BeNil())
			Expect(err).To(MatchError(fopdt.ErrInvalidTimeInterval))
		})

		It("rejects a non-positive sampling period", func() {
			_, err := loop.Simulate(0, 0, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrInvalidSamplingPeriod))
			_, err = loop.Simulate(0, -0.1, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrInvalidSamplingPeriod))
		})

		It("reports the first violation", func() {
			_, err := loop.Simulate(10, 0, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrInvalidTimeInterval))
		})

		It("rejects inverted output limits", func() {
			Expect(loop.Set(fopdt.PIDMin, 1)).To(Succeed())
			Expect(loop.Set(fopdt.PIDMax, 0)).To(Succeed())
			_, err := loop.Simulate(0, 1, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrInvalidLimits))
		})

		It("rejects inverted integral limits", func() {
			Expect(loop.Set(fopdt.IntegralMin, 1)).To(Succeed())
			Expect(loop.Set(fopdt.IntegralMax, -1)).To(Succeed())
			_, err := loop.Simulate(0, 1, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrInvalidLimits))
		})

		It("rejects non-positive time constant and dead time", func() {
			Expect(loop.Set(fopdt.TimeConstant, 0)).To(Succeed())
			_, err := loop.Simulate(0, 1, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrInvalidProcessParameter))

			Expect(loop.Set(fopdt.TimeConstant, 450)).To(Succeed())
			Expect(loop.Set(fopdt.DeadTime, -5)).To(Succeed())
			_, err = loop.Simulate(0, 1, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrInvalidProcessParameter))
		})

		It("requires gains to be configured", func() {
			fresh := fopdt.New()
			fresh.SetProcess(fopdt.Process{Gain: 1000, TimeConstant: 450, DeadTime: 5})
			_, err := fresh.Simulate(0, 1, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrNotConfigured))
		})

		It("requires the process to be configured", func() {
			fresh := fopdt.New()
			fresh.SetGains(fopdt.Gains{Kp: 1})
			_, err := fresh.Simulate(0, 1, 5, 0, 1)
			Expect(err).To(MatchError(fopdt.ErrNotConfigured))
		})

		It("does not apply the integral bounds", func() {
			Expect(loop.Set(fopdt.IntegralMin, -1)).To(Succeed())
			Expect(loop.Set(fopdt.IntegralMax, 1)).To(Succeed())
			tr, err := loop.Simulate(0, 0.25, 200, 0, 175)
			Expect(err).NotTo(HaveOccurred())

			maxS := 0.0
			for _, s := range tr.S {
				maxS = math.Max(maxS, s)
			}
			Expect(maxS).To(BeNumerically(">", 1))
		})
	})

	It("fails on non-finite values", func() {
		loop := fopdt.New()
		loop.SetProcess(fopdt.Process{Gain: 1, TimeConstant: 1, DeadTime: 1})
		loop.SetGains(fopdt.Gains{Kp: math.MaxFloat64})

		tr, err := loop.Simulate(0, 0.5, 10, 0, 175)
		Expect(tr).To(BeNil())
		Expect(err).To(MatchError(fopdt.ErrNumericalInstability))

		var simErr *fopdt.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Step).To(Equal(0))
	})

	It("leaves the sweep extension point unimplemented", func() {
		_, err := heaterLoop().Sweep(fopdt.Kp, []float64{0.01, 0.02}, 0, 0.25, 200, 0, 175)
		Expect(err).To(MatchError(fopdt.ErrSweepNotImplemented))
	})
})
