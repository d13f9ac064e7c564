package metrics

import "github.com/san-kum/fopdtsim/internal/fopdt"

// Metric accumulates a summary statistic over the samples of a trace.
type Metric interface {
	Name() string
	Observe(s fopdt.Sample)
	Value() float64
	Reset()
}

// Evaluate resets each metric, feeds it every sample of tr and returns
// the values keyed by name.
func Evaluate(tr *fopdt.Trace, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for _, s := range tr.Samples() {
		for _, m := range ms {
			m.Observe(s)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// StepResponse returns the metrics reported for a step response ending
// at tf: overshoot, steady-state value and error over t > 0.8*tf,
// control effort and integral absolute error.
func StepResponse(setpoint, tf float64) []Metric {
	from := 0.8 * tf
	return []Metric{
		NewOvershoot(setpoint),
		NewSteadyState(from),
		NewSteadyStateError(setpoint, from),
		NewControlEffort(),
		NewIAE(),
	}
}
