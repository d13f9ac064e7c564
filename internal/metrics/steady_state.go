package metrics

import (
	"math"

	"github.com/san-kum/fopdtsim/internal/fopdt"
)

// SteadyState is the mean output over samples with t > from. It is NaN
// when no sample falls in the window.
type SteadyState struct {
	name    string
	from    float64
	offset  float64
	sum     float64
	samples int
}

func NewSteadyState(from float64) *SteadyState {
	return &SteadyState{name: "steady_state", from: from}
}

// NewSteadyStateError reports the steady-state value minus the setpoint.
func NewSteadyStateError(setpoint, from float64) *SteadyState {
	return &SteadyState{name: "steady_state_error", from: from, offset: setpoint}
}

func (s *SteadyState) Name() string { return s.name }

func (s *SteadyState) Observe(x fopdt.Sample) {
	if x.T > s.from {
		s.sum += x.Y
		s.samples++
	}
}

func (s *SteadyState) Value() float64 {
	if s.samples == 0 {
		return math.NaN()
	}
	return s.sum/float64(s.samples) - s.offset
}

func (s *SteadyState) Reset() {
	s.sum = 0
	s.samples = 0
}
