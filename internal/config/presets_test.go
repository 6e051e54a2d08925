package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const presetsTOML = `
[quick]
max_length = 50
iterations = 1

[thorough]
max_length = 200
top_k = 500
repetition_penalty = 1.5
iterations = 10
`

func writePresets(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.toml")
	require.NoError(t, os.WriteFile(path, []byte(presetsTOML), 0o644))
	return path
}

func TestLoadPresets(t *testing.T) {
	presets, err := LoadPresets(writePresets(t))
	require.NoError(t, err)

	require.Contains(t, presets, "quick")
	require.Contains(t, presets, "thorough")

	quick := presets["quick"]
	require.NotNil(t, quick.MaxLength)
	assert.Equal(t, 50, *quick.MaxLength)
	assert.Nil(t, quick.TopK)
}

func TestLoadPresets_MissingFile(t *testing.T) {
	_, err := LoadPresets(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestPreset_ApplyOverlaysOnlySetFields(t *testing.T) {
	presets, err := LoadPresets(writePresets(t))
	require.NoError(t, err)

	cfg := presets["quick"].Apply(DefaultSampleConfig())

	assert.Equal(t, 50, cfg.MaxLength)
	assert.Equal(t, 1, cfg.Iterations)
	// Untouched fields keep their defaults.
	assert.Equal(t, 950, cfg.TopK)
	assert.Equal(t, 1.2, cfg.RepetitionPenalty)
}

func TestPreset_ApplyDoesNotMutateInput(t *testing.T) {
	presets, err := LoadPresets(writePresets(t))
	require.NoError(t, err)

	base := DefaultSampleConfig()
	_ = presets["thorough"].Apply(base)

	assert.Equal(t, DefaultSampleConfig(), base)
}
