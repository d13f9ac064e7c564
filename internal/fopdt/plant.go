package fopdt

import "github.com/san-kum/fopdtsim/internal/dynamo"

// closedLoop is the FOPDT process augmented with the PID error integral.
// State is (y, s); the single input is the delayed controller output.
type closedLoop struct {
	gain     float64
	tau      float64
	setpoint float64
	dx       dynamo.State
}

func newClosedLoop(p Process, setpoint float64) *closedLoop {
	return &closedLoop{
		gain:     p.Gain,
		tau:      p.TimeConstant,
		setpoint: setpoint,
		dx:       make(dynamo.State, 2),
	}
}

// Derive returns a buffer owned by the plant; it is overwritten on the
// next call.
func (c *closedLoop) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	y := x[0]
	c.dx[0] = -y/c.tau + (c.gain/c.tau)*u[0]
	c.dx[1] = c.setpoint - y
	return c.dx
}

func (c *closedLoop) StateDim() int   { return 2 }
func (c *closedLoop) ControlDim() int { return 1 }

// outputRate is the model estimate of dy/dt negated, used as the
// derivative term: y/tau - (K/tau)*u(t-theta).
func (c *closedLoop) outputRate(y, uDelayed float64) float64 {
	return y/c.tau - (c.gain/c.tau)*uDelayed
}
