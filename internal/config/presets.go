package config

import "sort"

var Presets = map[string]*Config{
	"reference": {
		Trials: DefaultTrials, Seed: DefaultSeed, Workers: DefaultWorkers,
		Runs: ReferenceRuns(),
	},
	"quick": {
		Trials: 10000, Seed: DefaultSeed, Workers: DefaultWorkers,
		Runs: ReferenceRuns(),
	},
	"oddball": {
		Trials: DefaultTrials, Seed: DefaultSeed, Workers: DefaultWorkers,
		Runs: []RunConfig{{Protocol: "spooky"}, {Protocol: "hidden", Mix: 1.0}},
	},
	"sweep": {
		Trials: 100000, Seed: DefaultSeed, Workers: DefaultWorkers,
		Runs: []RunConfig{
			{Protocol: "hidden", Mix: 0.0},
			{Protocol: "hidden", Mix: 0.25},
			{Protocol: "hidden", Mix: 0.5},
			{Protocol: "hidden", Mix: 0.75},
			{Protocol: "hidden", Mix: 1.0},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Runs = append([]RunConfig(nil), p.Runs...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
