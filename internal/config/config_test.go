package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecision(t *testing.T) {
	p, err := ParsePrecision("float32")
	require.NoError(t, err)
	assert.Equal(t, PrecisionFloat32, p)

	p, err = ParsePrecision("bfloat16")
	require.NoError(t, err)
	assert.Equal(t, PrecisionBFloat16, p)
}

func TestParsePrecision_RejectsUnknownValues(t *testing.T) {
	for _, s := range []string{"float16", "fp32", "", "FLOAT32"} {
		_, err := ParsePrecision(s)
		assert.Error(t, err, "precision %q should be rejected", s)
	}
}

func TestDesignConfig_Defaults(t *testing.T) {
	cfg := DefaultDesignConfig()

	assert.Equal(t, 2, cfg.NumSeqPerTarget)
	assert.Equal(t, 0.1, cfg.SamplingTemp)
	assert.Equal(t, 37, cfg.Seed)
	assert.Equal(t, 1, cfg.BatchSize)
	assert.Equal(t, PrecisionFloat32, cfg.Precision)
}

func TestDesignConfig_Validate(t *testing.T) {
	cfg := DefaultDesignConfig()
	cfg.InputDir = "/inputs/pdbs"
	cfg.OutputDir = "/out"

	require.NoError(t, cfg.Validate())

	missingInput := cfg
	missingInput.InputDir = ""
	assert.Error(t, missingInput.Validate())

	badPrecision := cfg
	badPrecision.Precision = "float16"
	assert.Error(t, badPrecision.Validate())

	badBatch := cfg
	badBatch.BatchSize = 0
	assert.Error(t, badBatch.Validate())
}

func TestComplexConfig_Validate(t *testing.T) {
	cfg := DefaultComplexConfig()
	cfg.PDBPath = "/inputs/3HTN.pdb"
	cfg.OutputDir = "/out"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "A", cfg.ChainsToDesign)

	noChains := cfg
	noChains.ChainsToDesign = ""
	assert.Error(t, noChains.Validate())
}

func TestSampleConfig_Defaults(t *testing.T) {
	cfg := DefaultSampleConfig()

	assert.Equal(t, 100, cfg.MaxLength)
	assert.True(t, cfg.DoSample)
	assert.Equal(t, 950, cfg.TopK)
	assert.Equal(t, 1.2, cfg.RepetitionPenalty)
	assert.Equal(t, 1, cfg.NumReturnSequences)
	assert.Equal(t, 0, cfg.EOSTokenID)
	assert.Equal(t, 5, cfg.Iterations)
	assert.False(t, cfg.Accumulate)
}

func TestSampleConfig_Validate(t *testing.T) {
	cfg := DefaultSampleConfig()
	require.NoError(t, cfg.Validate())

	badIterations := cfg
	badIterations.Iterations = 0
	assert.Error(t, badIterations.Validate())

	badDType := cfg
	badDType.DType = "int8"
	assert.Error(t, badDType.Validate())
}
