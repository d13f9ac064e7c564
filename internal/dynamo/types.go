package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Control is the input vector seen by a System at one instant. For
// dead-time plants this is the delayed controller output, not the
// controller's current value.
type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// DelayedIntegrator advances a system whose input is only known at the
// two ends of the step, as happens when the input is a delayed copy of
// an already sampled signal.
type DelayedIntegrator interface {
	Integrator
	StepDelayed(dyn System, x State, uStart, uEnd Control, t, dt float64) State
}
