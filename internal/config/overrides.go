package config

import (
	"errors"
	"fmt"

	"github.com/san-kum/fopdtsim/internal/fopdt"
)

// NoTuning as a method override disables autotuning.
const NoTuning = "none"

var ErrUnknownPreset = errors.New("config: unknown preset")

// Overrides carries command-line values. Nil fields leave the
// configuration untouched.
type Overrides struct {
	Gain         *float64
	TimeConstant *float64
	DeadTime     *float64

	Method *string
	TauC   *float64

	Kp, Ki, Kd     *float64
	PIDMin, PIDMax *float64

	T0, Dt, Tf, Y0, Setpoint *float64
}

// Resolve builds a run configuration from a preset, a config file and
// overrides, applied in that order. A config file replaces the preset
// as a whole; empty names skip a layer.
func Resolve(preset, path string, o Overrides) (*Config, error) {
	cfg := DefaultConfig()

	if preset != "" {
		cfg = GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, preset, ListPresets())
		}
	}

	if path != "" {
		fileCfg, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	cfg.Override(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Override applies the non-nil fields of o. A method override resets
// the tuning arguments; IMC then takes tau_c from o.TauC, else from the
// previous IMC tuning, else DefaultTauC. TauC alone only affects IMC.
func (c *Config) Override(o Overrides) {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setPtr := func(dst **float64, v *float64) {
		if v != nil {
			*dst = Float(*v)
		}
	}

	set(&c.Process.Gain, o.Gain)
	set(&c.Process.TimeConstant, o.TimeConstant)
	set(&c.Process.DeadTime, o.DeadTime)

	if o.Method != nil || o.TauC != nil {
		tauC, ok := c.IMCTauC()
		if !ok {
			tauC = DefaultTauC
		}
		if o.TauC != nil {
			tauC = *o.TauC
		}
		if o.Method != nil {
			c.Tuning.Method = *o.Method
			if c.Tuning.Method == NoTuning {
				c.Tuning.Method = ""
			}
		}
		c.Tuning.Args = nil
		if c.Tuning.Method == fopdt.IMC.String() {
			c.Tuning.Args = []float64{tauC}
		}
	}

	setPtr(&c.Gains.Kp, o.Kp)
	setPtr(&c.Gains.Ki, o.Ki)
	setPtr(&c.Gains.Kd, o.Kd)
	setPtr(&c.Limits.PIDMin, o.PIDMin)
	setPtr(&c.Limits.PIDMax, o.PIDMax)

	set(&c.Simulation.T0, o.T0)
	set(&c.Simulation.Dt, o.Dt)
	set(&c.Simulation.Tf, o.Tf)
	set(&c.Simulation.Y0, o.Y0)
	set(&c.Simulation.Setpoint, o.Setpoint)
}

// IMCTauC returns the IMC closed-loop time constant when c tunes with IMC.
func (c *Config) IMCTauC() (float64, bool) {
	if c.Tuning.Method != fopdt.IMC.String() || len(c.Tuning.Args) != 1 {
		return 0, false
	}
	return c.Tuning.Args[0], true
}
