package config

import "sort"

var Presets = map[string]*Config{
	"lowpass": {
		Name:        "lowpass",
		Description: "first-order lowpass, tau=0.1",
		System:      SystemConfig{Kind: KindLowpass, Tau: 0.1},
	},
	"alpha": {
		Name:        "alpha",
		Description: "alpha filter 1/(0.1s+1)^2",
		System:      SystemConfig{Kind: KindAlpha, Tau: 0.1},
	},
	"mixed": {
		Name:        "mixed",
		Description: "0.6*alpha(0.01) + 0.4*lowpass(0.05)",
		System: SystemConfig{Kind: KindSum, Terms: []TermConfig{
			{Weight: 0.6, SystemConfig: SystemConfig{Kind: KindAlpha, Tau: 0.01}},
			{Weight: 0.4, SystemConfig: SystemConfig{Kind: KindLowpass, Tau: 0.05}},
		}},
	},
	"oscillator": {
		Name:        "oscillator",
		Description: "damped oscillator, impulse response e^-t sin(10t)",
		System: SystemConfig{
			Kind: KindStateSpace,
			A:    [][]float64{{-1, -10}, {10, -1}},
			B:    [][]float64{{1}, {0}},
			C:    [][]float64{{0, 1}},
		},
	},
	"bandpass": {
		Name:        "bandpass",
		Description: "second-order bandpass 10s/(s^2+2s+100)",
		System:      SystemConfig{Kind: KindTransfer, Num: []float64{10, 0}, Den: []float64{1, 2, 100}},
	},
	"resonator": {
		Name:        "resonator",
		Description: "lightly damped resonator 100/(s^2+0.4s+100)",
		System:      SystemConfig{Kind: KindTransfer, Num: []float64{100}, Den: []float64{1, 0.4, 100}},
	},
	"cascade": {
		Name:        "cascade",
		Description: "lowpass(0.05) into lowpass(0.02)",
		System: SystemConfig{Kind: KindSeries, Stages: []SystemConfig{
			{Kind: KindLowpass, Tau: 0.05},
			{Kind: KindLowpass, Tau: 0.02},
		}},
	},
	"discrete-alpha": {
		Name:        "discrete-alpha",
		Description: "alpha(0.1) under zero-order hold, dt=0.001",
		System:      SystemConfig{Kind: KindAlpha, Tau: 0.1, Discretize: 0.001},
	},
}

// GetPreset returns a copy of the named preset with analysis defaults filled
// in, or nil.
func GetPreset(name string) *Config {
	preset, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Name = preset.Name
	cfg.Description = preset.Description
	cfg.System = preset.System
	return cfg
}

// ListPresets returns the preset names in alphabetical order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
