package fopdt

import (
	"fmt"
	"log/slog"
	"math"
)

// Param identifies one entry of the parameter store.
type Param int

const (
	DCGain Param = iota
	TimeConstant
	DeadTime
	Kp
	Ki
	Kd
	PIDMin
	PIDMax
	IntegralMin
	IntegralMax

	numParams
)

var paramNames = [numParams]string{
	DCGain:       "DC_gain",
	TimeConstant: "time_constant",
	DeadTime:     "dead_time",
	Kp:           "Kp",
	Ki:           "Ki",
	Kd:           "Kd",
	PIDMin:       "PID_min",
	PIDMax:       "PID_max",
	IntegralMin:  "integral_min",
	IntegralMax:  "integral_max",
}

func (p Param) valid() bool { return p >= 0 && p < numParams }

func (p Param) String() string {
	if !p.valid() {
		return fmt.Sprintf("Param(%d)", int(p))
	}
	return paramNames[p]
}

// Params lists every recognized parameter in store order.
func Params() []Param {
	ps := make([]Param, numParams)
	for i := range ps {
		ps[i] = Param(i)
	}
	return ps
}

// ParseParam maps an external parameter name to its key.
func ParseParam(name string) (Param, error) {
	for i, n := range paramNames {
		if n == name {
			return Param(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

// Process holds the FOPDT model tau*dy/dt = -y + K*u(t-theta).
type Process struct {
	Gain         float64
	TimeConstant float64
	DeadTime     float64
}

// Gains are parallel-form PID gains.
type Gains struct {
	Kp, Ki, Kd float64
}

// Limits bound the controller output and, advisorily, the integral.
// The integral bounds are validated but not applied during simulation.
type Limits struct {
	PIDMin      float64
	PIDMax      float64
	IntegralMin float64
	IntegralMax float64
}

// DefaultLimits returns unbounded limits.
func DefaultLimits() Limits {
	return Limits{
		PIDMin:      math.Inf(-1),
		PIDMax:      math.Inf(1),
		IntegralMin: math.Inf(-1),
		IntegralMax: math.Inf(1),
	}
}

// Validate reports ErrInvalidLimits if either bound pair is inverted.
func (l Limits) Validate() error {
	if l.PIDMin > l.PIDMax {
		return fmt.Errorf("%w: PID_min=%g > PID_max=%g", ErrInvalidLimits, l.PIDMin, l.PIDMax)
	}
	if l.IntegralMin > l.IntegralMax {
		return fmt.Errorf("%w: integral_min=%g > integral_max=%g", ErrInvalidLimits, l.IntegralMin, l.IntegralMax)
	}
	return nil
}

// Saturate clamps v to the controller output bounds.
func (l Limits) Saturate(v float64) float64 {
	return math.Max(l.PIDMin, math.Min(l.PIDMax, v))
}

// Loop is the closed-loop configuration: process parameters, controller
// gains and limits. A Loop is meant to be configured and then run from a
// single goroutine; callers sharing one across goroutines must serialize
// Set, Autotune and Simulate themselves.
type Loop struct {
	values     [numParams]float64
	configured [numParams]bool
	logger     *slog.Logger
}

type Option func(*Loop)

// WithLogger routes debug output to l instead of slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(lp *Loop) { lp.logger = l }
}

// New returns a Loop with unbounded limits and no process or gains configured.
func New(opts ...Option) *Loop {
	l := &Loop{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	l.SetLimits(DefaultLimits())
	return l
}

func (l *Loop) Set(p Param, v float64) error {
	if !p.valid() {
		return fmt.Errorf("%w: %v", ErrUnknownParameter, p)
	}
	l.values[p] = v
	l.configured[p] = true
	return nil
}

func (l *Loop) Get(p Param) (float64, error) {
	if !p.valid() {
		return 0, fmt.Errorf("%w: %v", ErrUnknownParameter, p)
	}
	if !l.configured[p] {
		return 0, fmt.Errorf("%w: %v", ErrNotConfigured, p)
	}
	return l.values[p], nil
}

func (l *Loop) SetByName(name string, v float64) error {
	p, err := ParseParam(name)
	if err != nil {
		return err
	}
	return l.Set(p, v)
}

func (l *Loop) GetByName(name string) (float64, error) {
	p, err := ParseParam(name)
	if err != nil {
		return 0, err
	}
	return l.Get(p)
}

// Configured reports whether p has been set.
func (l *Loop) Configured(p Param) bool {
	return p.valid() && l.configured[p]
}

func (l *Loop) SetProcess(p Process) {
	l.set(DCGain, p.Gain)
	l.set(TimeConstant, p.TimeConstant)
	l.set(DeadTime, p.DeadTime)
}

func (l *Loop) SetGains(g Gains) {
	l.set(Kp, g.Kp)
	l.set(Ki, g.Ki)
	l.set(Kd, g.Kd)
}

func (l *Loop) SetLimits(lim Limits) {
	l.set(PIDMin, lim.PIDMin)
	l.set(PIDMax, lim.PIDMax)
	l.set(IntegralMin, lim.IntegralMin)
	l.set(IntegralMax, lim.IntegralMax)
}

// Process returns the process parameters, or ErrNotConfigured if any is unset.
func (l *Loop) Process() (Process, error) {
	if err := l.require(DCGain, TimeConstant, DeadTime); err != nil {
		return Process{}, err
	}
	return Process{
		Gain:         l.values[DCGain],
		TimeConstant: l.values[TimeConstant],
		DeadTime:     l.values[DeadTime],
	}, nil
}

// Gains returns the controller gains, or ErrNotConfigured if any is unset.
func (l *Loop) Gains() (Gains, error) {
	if err := l.require(Kp, Ki, Kd); err != nil {
		return Gains{}, err
	}
	return Gains{Kp: l.values[Kp], Ki: l.values[Ki], Kd: l.values[Kd]}, nil
}

func (l *Loop) Limits() Limits {
	return Limits{
		PIDMin:      l.values[PIDMin],
		PIDMax:      l.values[PIDMax],
		IntegralMin: l.values[IntegralMin],
		IntegralMax: l.values[IntegralMax],
	}
}

func (l *Loop) set(p Param, v float64) {
	l.values[p] = v
	l.configured[p] = true
}

func (l *Loop) require(ps ...Param) error {
	for _, p := range ps {
		if !l.configured[p] {
			return fmt.Errorf("%w: %v", ErrNotConfigured, p)
		}
	}
	return nil
}
