package fopdt

import (
	"fmt"
	"math"

	"github.com/san-kum/fopdtsim/internal/dynamo"
	"github.com/san-kum/fopdtsim/internal/integrators"
)

// MaxSamples caps both the samples per dead time and the samples in a run.
const MaxSamples = math.MaxInt32

// Grid returns the resampled integration grid for a requested sampling
// period dt. lag is the number of samples per dead time, never below 2;
// the adjusted period deadTime/lag places u(t-deadTime) exactly on a
// stored sample. n is the number of samples in [t0, tf).
//
// Grids finer than MaxSamples fail with ErrInvalidSamplingPeriod when the
// dead time alone exceeds the cap, and ErrInvalidTimeInterval when the
// window does.
func Grid(t0, dt, tf, deadTime float64) (lag int, dtAdj float64, n int, err error) {
	perDelay := math.Ceil(deadTime / dt)
	if !(perDelay <= MaxSamples) {
		return 0, 0, 0, fmt.Errorf("%w: dt=%g gives %g samples per dead time (max %d)", ErrInvalidSamplingPeriod, dt, perDelay, MaxSamples)
	}
	lag = int(perDelay)
	if lag < 2 {
		lag = 2
	}
	dtAdj = deadTime / float64(lag)

	samples := math.Floor((tf - t0) / dtAdj)
	if !(samples <= MaxSamples) {
		return 0, 0, 0, fmt.Errorf("%w: window %g needs %g samples of %g (max %d)", ErrInvalidTimeInterval, tf-t0, samples, dtAdj, MaxSamples)
	}
	return lag, dtAdj, int(samples), nil
}

// Simulate computes the closed-loop response to a setpoint step x from
// initial output y0 over [t0, tf), using the gains and limits currently
// in the store. Integration uses RK4 on the adjusted grid from Grid.
//
// The error integral is held at its previous value whenever the
// controller output sits on a saturation bound. The integral bounds are
// validated but not applied.
func (l *Loop) Simulate(t0, dt, tf, y0, x float64) (*Trace, error) {
	if !(t0 < tf) {
		return nil, fmt.Errorf("%w: t0=%g, tf=%g", ErrInvalidTimeInterval, t0, tf)
	}
	if !(dt > 0) {
		return nil, fmt.Errorf("%w: dt=%g", ErrInvalidSamplingPeriod, dt)
	}
	lim := l.Limits()
	if err := lim.Validate(); err != nil {
		return nil, err
	}
	for _, p := range []Param{TimeConstant, DeadTime} {
		v, err := l.Get(p)
		if err != nil {
			return nil, err
		}
		if !(v > 0) {
			return nil, fmt.Errorf("%w: %v=%g", ErrInvalidProcessParameter, p, v)
		}
	}
	proc, err := l.Process()
	if err != nil {
		return nil, err
	}
	g, err := l.Gains()
	if err != nil {
		return nil, err
	}

	lag, dtAdj, n, err := Grid(t0, dt, tf, proc.DeadTime)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: window %g shorter than one sample (%g)", ErrInvalidTimeInterval, tf-t0, dtAdj)
	}
	if dtAdj != dt {
		l.logger.Debug("resampled integration grid", "dt", dt, "dt_adjusted", dtAdj, "lag", lag)
	}

	tr := newTrace(n, x, dtAdj, lag)
	plant := newClosedLoop(proc, x)
	var integ dynamo.DelayedIntegrator = integrators.NewRK4()

	tr.T[0] = t0
	tr.Y[0] = y0
	tr.S[0] = 0
	tr.E[0] = x - y0
	tr.U[0] = lim.Saturate(g.Kp*tr.E[0] + g.Ki*tr.S[0])
	if !finite(tr.Y[0], tr.U[0]) {
		return nil, &SimulationError{Step: 0, Time: t0, Wrapped: ErrNumericalInstability}
	}

	state := make(dynamo.State, 2)
	uStart := dynamo.Control{0}
	uEnd := dynamo.Control{0}

	for i := 0; i < n-1; i++ {
		tr.T[i+1] = tr.T[i] + dtAdj

		// Before the first dead time has elapsed the process has seen no input.
		uStart[0], uEnd[0] = 0, 0
		if i >= lag {
			uStart[0] = tr.U[i-lag]
			uEnd[0] = tr.U[i+1-lag]
		}

		state[0], state[1] = tr.Y[i], tr.S[i]
		next := integ.StepDelayed(plant, state, uStart, uEnd, tr.T[i], dtAdj)
		y, s := next[0], next[1]

		tr.Y[i+1] = y
		tr.S[i+1] = s
		tr.E[i+1] = x - y

		de := plant.outputRate(y, uEnd[0])
		u := lim.Saturate(g.Kp*tr.E[i+1] + g.Ki*s + g.Kd*de)
		tr.U[i+1] = u

		// anti-reset windup
		if u == lim.PIDMin || u == lim.PIDMax {
			tr.S[i+1] = tr.S[i]
		}

		if !finite(y, tr.S[i+1], u) {
			return nil, &SimulationError{Step: i + 1, Time: tr.T[i+1], Wrapped: ErrNumericalInstability}
		}
	}

	l.logger.Debug("simulated step response", "samples", n, "dt", dtAdj, "lag", lag, "setpoint", x)
	return tr, nil
}

func finite(vs ...float64) bool {
	return dynamo.State(vs).IsValid()
}
