package metrics

import (
	"math"

	"github.com/san-kum/fopdtsim/internal/fopdt"
)

// Overshoot is the peak output above the setpoint in percent of the
// setpoint, floored at zero. A zero setpoint yields zero.
type Overshoot struct {
	setpoint float64
	peak     float64
	samples  int
}

func NewOvershoot(setpoint float64) *Overshoot {
	return &Overshoot{setpoint: setpoint, peak: math.Inf(-1)}
}

func (o *Overshoot) Name() string { return "overshoot_pct" }

func (o *Overshoot) Observe(s fopdt.Sample) {
	o.peak = math.Max(o.peak, s.Y)
	o.samples++
}

func (o *Overshoot) Value() float64 {
	if o.samples == 0 || o.setpoint == 0 {
		return 0
	}
	return math.Max(0, 100*(o.peak-o.setpoint)/o.setpoint)
}

func (o *Overshoot) Reset() {
	o.peak = math.Inf(-1)
	o.samples = 0
}
