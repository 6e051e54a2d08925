package config

import (
	"errors"
	"fmt"
)

// SourceType represents the type of model source.
type SourceType string

const (
	// SourceTypeHuggingFace represents a Hugging Face model repository source.
	SourceTypeHuggingFace SourceType = "huggingface"
)

// Precision selects the numeric precision requested from an external model.
type Precision string

const (
	PrecisionFloat32  Precision = "float32"
	PrecisionBFloat16 Precision = "bfloat16"
)

// ParsePrecision validates a precision selector. Values outside the
// supported set are rejected before any side effect occurs.
func ParsePrecision(s string) (Precision, error) {
	switch Precision(s) {
	case PrecisionFloat32, PrecisionBFloat16:
		return Precision(s), nil
	default:
		return "", fmt.Errorf("invalid precision %q (supported: %s, %s)", s, PrecisionFloat32, PrecisionBFloat16)
	}
}

// DesignConfig governs one structure-conditioned design run over a
// directory of PDB monomers.
type DesignConfig struct {
	InputDir        string
	OutputDir       string
	NumSeqPerTarget int
	SamplingTemp    float64
	Seed            int
	BatchSize       int
	Precision       Precision
}

// DefaultDesignConfig returns the stock monomer design parameters.
func DefaultDesignConfig() DesignConfig {
	return DesignConfig{
		NumSeqPerTarget: 2,
		SamplingTemp:    0.1,
		Seed:            37,
		BatchSize:       1,
		Precision:       PrecisionFloat32,
	}
}

// Validate checks the configuration before any filesystem or process side
// effect.
func (c DesignConfig) Validate() error {
	if c.InputDir == "" {
		return errors.New("input directory is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.NumSeqPerTarget <= 0 {
		return fmt.Errorf("num_seq_per_target must be positive, got %d", c.NumSeqPerTarget)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if _, err := ParsePrecision(string(c.Precision)); err != nil {
		return err
	}
	return nil
}

// ComplexConfig governs one design run against a single complex structure,
// restricted to the selected chains.
type ComplexConfig struct {
	PDBPath         string
	ChainsToDesign  string
	OutputDir       string
	NumSeqPerTarget int
	SamplingTemp    float64
	Seed            int
	BatchSize       int
	Precision       Precision
}

// DefaultComplexConfig returns the stock complex design parameters.
func DefaultComplexConfig() ComplexConfig {
	return ComplexConfig{
		ChainsToDesign:  "A",
		NumSeqPerTarget: 2,
		SamplingTemp:    0.1,
		Seed:            37,
		BatchSize:       1,
		Precision:       PrecisionFloat32,
	}
}

// Validate checks the configuration before any filesystem or process side
// effect.
func (c ComplexConfig) Validate() error {
	if c.PDBPath == "" {
		return errors.New("pdb path is required")
	}
	if c.ChainsToDesign == "" {
		return errors.New("chains to design are required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.NumSeqPerTarget <= 0 {
		return fmt.Errorf("num_seq_per_target must be positive, got %d", c.NumSeqPerTarget)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if _, err := ParsePrecision(string(c.Precision)); err != nil {
		return err
	}
	return nil
}

// SampleConfig governs one language-model sampling run.
type SampleConfig struct {
	OutputPath         string
	MaxLength          int
	DoSample           bool
	TopK               int
	RepetitionPenalty  float64
	NumReturnSequences int
	EOSTokenID         int
	DType              Precision
	Iterations         int

	// Accumulate retains the sequences of every iteration instead of only
	// the final one.
	Accumulate bool
}

// DefaultSampleConfig returns the stock sampling parameters.
func DefaultSampleConfig() SampleConfig {
	return SampleConfig{
		OutputPath:         "output/output_file.txt",
		MaxLength:          100,
		DoSample:           true,
		TopK:               950,
		RepetitionPenalty:  1.2,
		NumReturnSequences: 1,
		EOSTokenID:         0,
		DType:              PrecisionFloat32,
		Iterations:         5,
	}
}

// Validate checks the configuration before any filesystem or process side
// effect.
func (c SampleConfig) Validate() error {
	if c.OutputPath == "" {
		return errors.New("output path is required")
	}
	if c.MaxLength <= 0 {
		return fmt.Errorf("max_length must be positive, got %d", c.MaxLength)
	}
	if c.NumReturnSequences <= 0 {
		return fmt.Errorf("num_return_sequences must be positive, got %d", c.NumReturnSequences)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if _, err := ParsePrecision(string(c.DType)); err != nil {
		return err
	}
	return nil
}

// -------------------------
// Model manifest
// -------------------------

// Config holds the model manifest for the harness.
type Config struct {
	Version string                 `json:"version"           yaml:"version"`
	Storage StorageConfig          `json:"storage,omitempty" yaml:"storage,omitempty"`
	Models  map[string]ModelConfig `json:"models"            yaml:"models"`
	Tools   ToolsConfig            `json:"tools"             yaml:"tools"`
}

// StorageConfig holds configuration for caching and auto-download.
type StorageConfig struct {
	ModelsDir string `json:"models_dir,omitempty" yaml:"models_dir,omitempty"`
}

// ModelConfig holds configuration for a specific model asset.
type ModelConfig struct {
	Source  SourceConfig `json:"source"  yaml:"source"`
	Type    string       `json:"type"    yaml:"type"`
	Backend string       `json:"backend" yaml:"backend"`
}

// SourceConfig wraps optional sources (only one should be set).
type SourceConfig struct {
	HuggingFace *HuggingFaceSource `json:"huggingface,omitempty" yaml:"huggingface,omitempty"`
}

// ToolsConfig holds model assignments for the driver tools.
type ToolsConfig struct {
	Design   ToolAssignment `json:"design"   yaml:"design"`
	Generate ToolAssignment `json:"generate" yaml:"generate"`
}

// ToolAssignment holds model assignments for a tool.
type ToolAssignment struct {
	Models []string `json:"models" yaml:"models"` // List of model IDs
}

// ModelSource represents a source for a model.
type ModelSource interface {
	Type() SourceType
}

// HuggingFaceSource represents a Hugging Face model repository source.
type HuggingFaceSource struct {
	Repo          string   `json:"repo"                     yaml:"repo"`
	Revision      string   `json:"revision,omitempty"       yaml:"revision,omitempty"`
	Token         string   `json:"token,omitempty"          yaml:"token,omitempty"`
	Include       []string `json:"include,omitempty"        yaml:"include,omitempty"`
	Exclude       []string `json:"exclude,omitempty"        yaml:"exclude,omitempty"`
	ForceDownload bool     `json:"force_download,omitempty" yaml:"force_download,omitempty"`
}

// Type returns the Hugging Face source type.
func (h HuggingFaceSource) Type() SourceType {
	return SourceTypeHuggingFace
}

// GetSource returns the active source for the model.
func (m *ModelConfig) GetSource() (ModelSource, error) {
	if m.Source.HuggingFace != nil {
		return *m.Source.HuggingFace, nil
	}

	return nil, errors.New("no source configured for model")
}
