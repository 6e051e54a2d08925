package backend

import (
	"context"
	"io"
	"time"
)

// Provider is a string identifier for a backend provider.
type Provider string

const (
	ProviderProteinMPNN Provider = "proteinmpnn"
	ProviderProtGPT2    Provider = "protgpt2"
)

// Backend defines the core interface for all inference backends.
type Backend interface {
	// Provider returns the backend identifier.
	Provider() Provider

	// Infer executes one inference call and returns the complete result.
	Infer(ctx context.Context, req *Request) (*Response, error)

	// Close cleans up resources.
	Close() error
}

// ChainParser is an optional interface for backends that can parse raw
// structure files into the record format their design entry point
// consumes.
type ChainParser interface {
	Backend

	// ParseChains parses a directory of structure files into a
	// newline-delimited record file at outputPath.
	ParseChains(ctx context.Context, inputDir, outputPath string) error
}

// Request encapsulates all parameters for an inference call.
type Request struct {
	// ModelPath is the path to the model checkout or weights.
	ModelPath string

	// Input is the raw input data (prompt text, structure records, etc.).
	Input io.Reader

	// Parameters contains backend-specific inference parameters.
	Parameters map[string]any
}

// Response contains the result of an inference operation.
type Response struct {
	// Output is the raw output data.
	Output io.Reader

	// Sequences holds the generated protein sequences, one entry per
	// sequence, when the backend produces them on its standard output.
	Sequences []string

	// Metadata contains backend-specific information.
	Metadata *ResponseMetadata
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	Provider        Provider       `json:"provider"`
	Model           string         `json:"model"`
	Timestamp       time.Time      `json:"timestamp"`
	OutputBytes     int64          `json:"output_bytes"`
	BackendSpecific map[string]any `json:"backend_specific"`
}
