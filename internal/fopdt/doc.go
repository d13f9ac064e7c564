// Package fopdt simulates a First-Order-Plus-Dead-Time process under
// parallel-form PID control and computes PID gains from the process
// parameters with analytic tuning rules.
//
// The process model is
//
//	tau*dy/dt = -y + K*u(t-theta)
//
// A [Loop] stores the process parameters, controller gains and output
// limits. Typical use:
//
//	loop := fopdt.New()
//	loop.SetProcess(fopdt.Process{Gain: 1000, TimeConstant: 450, DeadTime: 5})
//	if err := loop.Autotune(fopdt.IMC, 5); err != nil {
//	    return err
//	}
//	loop.SetLimits(fopdt.Limits{PIDMin: 0, PIDMax: 1, IntegralMin: math.Inf(-1), IntegralMax: math.Inf(1)})
//	tr, err := loop.Simulate(0, 0.25, 200, 0, 175)
//
// # Sampling
//
// [Loop.Simulate] resamples the requested period so that the dead time
// is a whole number of samples (at least two). The delayed input for
// each RK4 stage is then an exact past controller output; the midpoint
// stages use the mean of the two neighbouring delayed samples.
//
// # Errors
//
// Configuration errors are reported before any integration and can be
// matched with errors.Is against the Err* values. A run that produces a
// NaN or Inf fails with [ErrNumericalInstability] wrapped in a
// [*SimulationError].
//
// A Loop is not safe for concurrent use.
package fopdt
