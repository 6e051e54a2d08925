package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Preset is a named set of sampling parameters. Fields left unset in the
// presets file keep the values already present in the run configuration.
type Preset struct {
	MaxLength          *int     `toml:"max_length"`
	DoSample           *bool    `toml:"do_sample"`
	TopK               *int     `toml:"top_k"`
	RepetitionPenalty  *float64 `toml:"repetition_penalty"`
	NumReturnSequences *int     `toml:"num_return_sequences"`
	EOSTokenID         *int     `toml:"eos_token_id"`
	Iterations         *int     `toml:"iterations"`
}

// LoadPresets reads a TOML presets file mapping preset names to sampling
// parameter sets.
func LoadPresets(path string) (map[string]Preset, error) {
	presets := make(map[string]Preset)
	if _, err := toml.DecodeFile(path, &presets); err != nil {
		return nil, fmt.Errorf("presets: failed to load %s: %w", path, err)
	}

	return presets, nil
}

// Apply overlays the preset onto a sampling configuration and returns the
// result. The input configuration is not modified.
func (p Preset) Apply(cfg SampleConfig) SampleConfig {
	if p.MaxLength != nil {
		cfg.MaxLength = *p.MaxLength
	}
	if p.DoSample != nil {
		cfg.DoSample = *p.DoSample
	}
	if p.TopK != nil {
		cfg.TopK = *p.TopK
	}
	if p.RepetitionPenalty != nil {
		cfg.RepetitionPenalty = *p.RepetitionPenalty
	}
	if p.NumReturnSequences != nil {
		cfg.NumReturnSequences = *p.NumReturnSequences
	}
	if p.EOSTokenID != nil {
		cfg.EOSTokenID = *p.EOSTokenID
	}
	if p.Iterations != nil {
		cfg.Iterations = *p.Iterations
	}

	return cfg
}
