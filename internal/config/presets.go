package config

import "sort"

var Presets = map[string]*Config{
	// Heater demo: IMC tuning with a hand-adjusted integral gain for an
	// 8-bit PWM output scaled to [0, 1].
	"heater": withGains(withMethod("IMC", DefaultTauC), GainsConfig{Ki: Float(0.28 / 255)}),

	"imc":             withMethod("IMC", DefaultTauC),
	"imc_slow":        withMethod("IMC", 50),
	"cohen_coon":      withMethod("Cohen_Coon"),
	"ziegler_nichols": withMethod("Ziegler_Nichols"),
	"chr":             withMethod("CHR"),
}

func withMethod(method string, args ...float64) *Config {
	cfg := DefaultConfig()
	cfg.Tuning = TuningConfig{Method: method, Args: args}
	return cfg
}

func withGains(cfg *Config, g GainsConfig) *Config {
	cfg.Gains = g
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
