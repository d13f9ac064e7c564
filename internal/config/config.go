package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fopdtsim/internal/fopdt"
)

const (
	DefaultGain         = 1000.0
	DefaultTimeConstant = 450.0
	DefaultDeadTime     = 5.0
	DefaultMethod       = "IMC"
	DefaultTauC         = 5.0
	DefaultDt           = 0.25
	DefaultDuration     = 200.0
	DefaultSetpoint     = 175.0
)

type Config struct {
	Process    ProcessConfig    `yaml:"process"`
	Tuning     TuningConfig     `yaml:"tuning"`
	Gains      GainsConfig      `yaml:"gains,omitempty"`
	Limits     LimitsConfig     `yaml:"limits,omitempty"`
	Simulation SimulationConfig `yaml:"simulation"`
}

type ProcessConfig struct {
	Gain         float64 `yaml:"gain"`
	TimeConstant float64 `yaml:"time_constant"`
	DeadTime     float64 `yaml:"dead_time"`
}

// TuningConfig selects the autotuning rule. An empty method skips
// autotuning; the gains section must then supply all three gains.
type TuningConfig struct {
	Method string    `yaml:"method,omitempty"`
	Args   []float64 `yaml:"args,omitempty"`
}

// GainsConfig overrides individual gains after autotuning.
type GainsConfig struct {
	Kp *float64 `yaml:"kp,omitempty"`
	Ki *float64 `yaml:"ki,omitempty"`
	Kd *float64 `yaml:"kd,omitempty"`
}

// LimitsConfig bounds; unset fields stay unbounded.
type LimitsConfig struct {
	PIDMin      *float64 `yaml:"pid_min,omitempty"`
	PIDMax      *float64 `yaml:"pid_max,omitempty"`
	IntegralMin *float64 `yaml:"integral_min,omitempty"`
	IntegralMax *float64 `yaml:"integral_max,omitempty"`
}

type SimulationConfig struct {
	T0       float64 `yaml:"t0"`
	Dt       float64 `yaml:"dt"`
	Tf       float64 `yaml:"tf"`
	Y0       float64 `yaml:"y0"`
	Setpoint float64 `yaml:"setpoint"`
}

func DefaultConfig() *Config {
	return &Config{
		Process: ProcessConfig{
			Gain:         DefaultGain,
			TimeConstant: DefaultTimeConstant,
			DeadTime:     DefaultDeadTime,
		},
		Tuning: TuningConfig{
			Method: DefaultMethod,
			Args:   []float64{DefaultTauC},
		},
		Limits: LimitsConfig{
			PIDMin: Float(0),
			PIDMax: Float(1),
		},
		Simulation: SimulationConfig{
			Dt:       DefaultDt,
			Tf:       DefaultDuration,
			Setpoint: DefaultSetpoint,
		},
	}
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 { return &v }

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// A tuning section replaces the default one as a whole, so a rule
	// without arguments does not inherit the default IMC tau_c.
	var probe struct {
		Tuning *TuningConfig `yaml:"tuning"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if probe.Tuning != nil {
		cfg.Tuning = *probe.Tuning
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks what the loop itself cannot: the tuning method name.
// Numeric ranges are checked by the loop when the values are used.
func (c *Config) Validate() error {
	if c.Tuning.Method == "" {
		return nil
	}
	_, err := fopdt.ParseMethod(c.Tuning.Method)
	return err
}

// Apply configures loop: process, autotuned gains, gain overrides and
// limits, in that order.
func (c *Config) Apply(loop *fopdt.Loop) error {
	loop.SetProcess(fopdt.Process{
		Gain:         c.Process.Gain,
		TimeConstant: c.Process.TimeConstant,
		DeadTime:     c.Process.DeadTime,
	})

	if c.Tuning.Method != "" {
		m, err := fopdt.ParseMethod(c.Tuning.Method)
		if err != nil {
			return err
		}
		if err := loop.Autotune(m, c.Tuning.Args...); err != nil {
			return fmt.Errorf("autotune %s: %w", m, err)
		}
	}

	overrides := []struct {
		p fopdt.Param
		v *float64
	}{
		{fopdt.Kp, c.Gains.Kp},
		{fopdt.Ki, c.Gains.Ki},
		{fopdt.Kd, c.Gains.Kd},
		{fopdt.PIDMin, c.Limits.PIDMin},
		{fopdt.PIDMax, c.Limits.PIDMax},
		{fopdt.IntegralMin, c.Limits.IntegralMin},
		{fopdt.IntegralMax, c.Limits.IntegralMax},
	}
	for _, o := range overrides {
		if o.v == nil {
			continue
		}
		if err := loop.Set(o.p, *o.v); err != nil {
			return err
		}
	}

	for _, p := range []fopdt.Param{fopdt.Kp, fopdt.Ki, fopdt.Kd} {
		if !loop.Configured(p) {
			return fmt.Errorf("%w: %v (no tuning method and no gain override)", fopdt.ErrNotConfigured, p)
		}
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Tuning.Args = append([]float64(nil), c.Tuning.Args...)
	out.Gains = GainsConfig{Kp: clonePtr(c.Gains.Kp), Ki: clonePtr(c.Gains.Ki), Kd: clonePtr(c.Gains.Kd)}
	out.Limits = LimitsConfig{
		PIDMin:      clonePtr(c.Limits.PIDMin),
		PIDMax:      clonePtr(c.Limits.PIDMax),
		IntegralMin: clonePtr(c.Limits.IntegralMin),
		IntegralMax: clonePtr(c.Limits.IntegralMax),
	}
	return &out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return Float(*p)
}
