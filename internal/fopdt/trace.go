package fopdt

// Trace is the sampled closed-loop step response. All five series have
// the same length and index i refers to the same instant in each.
type Trace struct {
	T []float64 // time
	E []float64 // feedback error, setpoint - y
	S []float64 // error integral
	U []float64 // controller output
	Y []float64 // process output

	Setpoint float64
	Dt       float64 // adjusted sampling period
	Lag      int     // samples per dead time
}

// Sample is one row of a Trace.
type Sample struct {
	T, E, S, U, Y float64
}

func newTrace(n int, setpoint, dt float64, lag int) *Trace {
	return &Trace{
		T:        make([]float64, n),
		E:        make([]float64, n),
		S:        make([]float64, n),
		U:        make([]float64, n),
		Y:        make([]float64, n),
		Setpoint: setpoint,
		Dt:       dt,
		Lag:      lag,
	}
}

func (tr *Trace) Len() int { return len(tr.T) }

func (tr *Trace) Sample(i int) Sample {
	return Sample{T: tr.T[i], E: tr.E[i], S: tr.S[i], U: tr.U[i], Y: tr.Y[i]}
}

// Samples returns the trace as rows.
func (tr *Trace) Samples() []Sample {
	out := make([]Sample, tr.Len())
	for i := range out {
		out[i] = tr.Sample(i)
	}
	return out
}

// Duration is the time spanned by the trace.
func (tr *Trace) Duration() float64 {
	if tr.Len() == 0 {
		return 0
	}
	return tr.T[tr.Len()-1] - tr.T[0]
}
