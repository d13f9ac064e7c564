package fopdt

// Sweep is the extension point for running one simulation per value of
// parameter p. It is not implemented and always returns
// ErrSweepNotImplemented.
func (l *Loop) Sweep(p Param, values []float64, t0, dt, tf, y0, x float64) ([]*Trace, error) {
	return nil, ErrSweepNotImplemented
}
