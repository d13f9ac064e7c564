package integrators

import "github.com/san-kum/fopdtsim/internal/dynamo"

type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
	uMid           dynamo.Control
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n, m int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
	if len(r.uMid) != m {
		r.uMid = make(dynamo.Control, m)
	}
}

// Step advances x by dt holding u constant over the interval.
func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	return r.StepDelayed(dyn, x, u, u, t, dt)
}

// StepDelayed advances x by dt when the input is known only at t (uStart)
// and t+dt (uEnd). Both midpoint stages see the mean of the two.
func (r *RK4) StepDelayed(dyn dynamo.System, x dynamo.State, uStart, uEnd dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n, len(uStart))

	for j := range r.uMid {
		r.uMid[j] = 0.5 * (uStart[j] + uEnd[j])
	}

	k1 := dyn.Derive(x, uStart, t)
	copy(r.k1, k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	k2 := dyn.Derive(r.scratch, r.uMid, t+dt*0.5)
	copy(r.k2, k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	k3 := dyn.Derive(r.scratch, r.uMid, t+dt*0.5)
	copy(r.k3, k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	k4 := dyn.Derive(r.scratch, uEnd, t+dt)
	copy(r.k4, k4)

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])/6
	}

	return result
}
