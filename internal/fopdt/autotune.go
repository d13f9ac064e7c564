package fopdt

import (
	"fmt"
	"math"
)

// Method selects an analytic tuning rule for FOPDT processes.
type Method int

const (
	IMC Method = iota
	CohenCoon
	ZieglerNichols
	CHR

	numMethods
)

var methodNames = [numMethods]string{
	IMC:            "IMC",
	CohenCoon:      "Cohen_Coon",
	ZieglerNichols: "Ziegler_Nichols",
	CHR:            "CHR",
}

func (m Method) String() string {
	if m < 0 || m >= numMethods {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

func Methods() []Method {
	return []Method{IMC, CohenCoon, ZieglerNichols, CHR}
}

func ParseMethod(name string) (Method, error) {
	for i, n := range methodNames {
		if n == name {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// Standard is a PID tuning in standard form: Kp, integral time and
// derivative time.
type Standard struct {
	Kp   float64
	TauI float64
	TauD float64
}

// TuneStandard evaluates rule m for process p. IMC takes the desired
// closed-loop time constant as its only argument; the other rules take none.
func TuneStandard(m Method, p Process, args ...float64) (Standard, error) {
	if m < 0 || m >= numMethods {
		return Standard{}, fmt.Errorf("%w: %v", ErrUnknownMethod, m)
	}
	if err := p.validate(); err != nil {
		return Standard{}, err
	}
	if p.Gain == 0 {
		return Standard{}, fmt.Errorf("%w: DC_gain=0", ErrInvalidProcessParameter)
	}

	K, tau, theta := p.Gain, p.TimeConstant, p.DeadTime

	if m == IMC {
		if len(args) != 1 {
			return Standard{}, fmt.Errorf("%w: IMC takes 1 argument (tau_c), got %d", ErrInvalidArgument, len(args))
		}
		tauC := args[0]
		if math.IsNaN(tauC) || tauC+theta/2 <= 0 {
			return Standard{}, fmt.Errorf("%w: tau_c=%g", ErrInvalidArgument, tauC)
		}
		return Standard{
			Kp:   (1 / K) * (tau + theta/2) / (tauC + theta/2),
			TauI: tau + theta/2,
			TauD: (tau * theta) / (2*tau + theta),
		}, nil
	}

	if len(args) != 0 {
		return Standard{}, fmt.Errorf("%w: %v takes no arguments, got %d", ErrInvalidArgument, m, len(args))
	}

	r := theta / tau
	switch m {
	case CohenCoon:
		return Standard{
			Kp:   (tau / (K * theta)) * (4.0/3.0 + theta/(4*tau)),
			TauI: theta * (32 + 6*r) / (13 + 8*r),
			TauD: 4 * theta / (11 + 2*r),
		}, nil
	case ZieglerNichols:
		return Standard{
			Kp:   1.1 * tau / (K * theta),
			TauI: 2.0 * theta,
			TauD: 0.5 * theta,
		}, nil
	default:
		return Standard{
			Kp:   0.95 * tau / (K * theta),
			TauI: 2.40 * theta,
			TauD: 0.42 * theta,
		}, nil
	}
}

// Tune evaluates rule m and converts the result to parallel form:
// Ki = Kp/tauI, Kd = Kp*tauD. CHR divides instead: Kd = Kp/tauD.
func Tune(m Method, p Process, args ...float64) (Gains, error) {
	std, err := TuneStandard(m, p, args...)
	if err != nil {
		return Gains{}, err
	}
	g := Gains{Kp: std.Kp, Ki: std.Kp / std.TauI}
	if m == CHR {
		g.Kd = std.Kp / std.TauD
	} else {
		g.Kd = std.Kp * std.TauD
	}
	return g, nil
}

// Autotune computes gains from the stored process parameters and writes
// them back to the store.
func (l *Loop) Autotune(m Method, args ...float64) error {
	p, err := l.Process()
	if err != nil {
		return err
	}
	g, err := Tune(m, p, args...)
	if err != nil {
		return err
	}
	l.SetGains(g)
	l.logger.Debug("autotuned pid gains",
		"method", m.String(),
		"dc_gain", p.Gain, "time_constant", p.TimeConstant, "dead_time", p.DeadTime,
		"kp", g.Kp, "ki", g.Ki, "kd", g.Kd)
	return nil
}

func (p Process) validate() error {
	if !(p.TimeConstant > 0) {
		return fmt.Errorf("%w: time_constant=%g", ErrInvalidProcessParameter, p.TimeConstant)
	}
	if !(p.DeadTime > 0) {
		return fmt.Errorf("%w: dead_time=%g", ErrInvalidProcessParameter, p.DeadTime)
	}
	return nil
}
