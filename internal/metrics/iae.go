package metrics

import (
	"math"

	"github.com/san-kum/fopdtsim/internal/fopdt"
)

// IAE is the integral of |e| dt, left-rectangle rule over the sample times.
type IAE struct {
	sum   float64
	prevT float64
	prevE float64
	first bool
}

func NewIAE() *IAE {
	return &IAE{first: true}
}

func (a *IAE) Name() string { return "iae" }

func (a *IAE) Observe(s fopdt.Sample) {
	if !a.first {
		a.sum += math.Abs(a.prevE) * (s.T - a.prevT)
	}
	a.prevT = s.T
	a.prevE = s.E
	a.first = false
}

func (a *IAE) Value() float64 { return a.sum }

func (a *IAE) Reset() {
	a.sum = 0
	a.first = true
}
