package fopdt

import (
	"errors"
	"fmt"
)

// Configuration errors reported by the store, the autotuner and the simulator.
var (
	// ErrUnknownParameter indicates a name or key outside the fixed parameter set.
	ErrUnknownParameter = errors.New("fopdt: unknown parameter")

	// ErrUnknownMethod indicates an unrecognized autotuning rule.
	ErrUnknownMethod = errors.New("fopdt: unknown tuning method")

	// ErrInvalidArgument indicates missing, extra or out-of-range rule arguments.
	ErrInvalidArgument = errors.New("fopdt: invalid tuning argument")

	// ErrNotConfigured indicates a parameter that was never set or autotuned.
	ErrNotConfigured = errors.New("fopdt: parameter not configured")

	// ErrInvalidTimeInterval indicates t0 >= tf or a window shorter than one sample.
	ErrInvalidTimeInterval = errors.New("fopdt: invalid time interval")

	// ErrInvalidSamplingPeriod indicates dt <= 0.
	ErrInvalidSamplingPeriod = errors.New("fopdt: invalid sampling period")

	// ErrInvalidLimits indicates a bound pair with min > max.
	ErrInvalidLimits = errors.New("fopdt: invalid limits")

	// ErrInvalidProcessParameter indicates a non-positive time constant or
	// dead time, or a zero process gain where a rule divides by it.
	ErrInvalidProcessParameter = errors.New("fopdt: invalid process parameter")

	// ErrNumericalInstability indicates a NaN or Inf appeared in the trajectory.
	ErrNumericalInstability = errors.New("fopdt: numerical instability (NaN or Inf detected)")

	// ErrSweepNotImplemented is returned by the parameter sweep extension point.
	ErrSweepNotImplemented = errors.New("fopdt: parameter sweep not implemented")
)

// SimulationError wraps an error with the step at which it was detected.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
