package protgpt

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/foldlab/proteus/internal/backend"
)

// BOSToken is the prompt used to sample unconditioned sequences.
const BOSToken = "<|endoftext|>"

// Generation of a full batch stays well under this on CPU.
const defaultTimeout = 15 * time.Minute

// Backend drives an external ProtGPT2 generation pipeline. The pipeline
// reads a prompt on stdin and emits one generated sequence per line on
// stdout.
type Backend struct {
	executor *backend.Executor
}

// NewBackend creates a ProtGPT2 backend for the given generator binary,
// resolved against PATH.
func NewBackend(binPath string) (*Backend, error) {
	resolved, err := exec.LookPath(binPath)
	if err != nil {
		return nil, fmt.Errorf("generator not found: %w", err)
	}

	executor, err := backend.NewExecutor(resolved, defaultTimeout)
	if err != nil {
		return nil, err
	}

	return &Backend{
		executor: executor,
	}, nil
}

// NewBackendWithRunner creates a ProtGPT2 backend with a custom command
// runner.
func NewBackendWithRunner(binPath string, runner backend.CommandRunner) *Backend {
	return &Backend{
		executor: backend.NewExecutorWithRunner(binPath, defaultTimeout, runner),
	}
}

// Provider returns the backend identifier.
func (b *Backend) Provider() backend.Provider {
	return backend.ProviderProtGPT2
}

// Infer executes one sampling call and collects the generated sequences.
func (b *Backend) Infer(ctx context.Context, req *backend.Request) (*backend.Response, error) {
	args := BuildArgs(req.ModelPath, req.Parameters)

	stdin := req.Input
	if stdin == nil {
		stdin = strings.NewReader(BOSToken)
	}

	stdout, stderr, err := b.executor.Execute(ctx, args, stdin)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w\nstderr: %s", err, stderr)
	}

	sequences := ParseSequences(stdout)

	return &backend.Response{
		Output:    bytes.NewReader(stdout),
		Sequences: sequences,
		Metadata: &backend.ResponseMetadata{
			Provider:    b.Provider(),
			Model:       req.ModelPath,
			Timestamp:   time.Now(),
			OutputBytes: int64(len(stdout)),
			BackendSpecific: map[string]any{
				"stderr": string(stderr),
				"args":   args,
			},
		},
	}, nil
}

// BuildArgs builds the generator argument vector. Pure function of its
// inputs; parameters are emitted in a fixed order so identical inputs
// produce identical vectors.
func BuildArgs(modelPath string, p map[string]any) []string {
	args := []string{"--model", modelPath}

	if p == nil {
		return args
	}

	if v, ok := p["max_length"].(int); ok {
		args = append(args, "--max_length", strconv.Itoa(v))
	}

	if v, ok := p["do_sample"].(bool); ok {
		args = append(args, "--do_sample", strconv.FormatBool(v))
	}

	if v, ok := p["top_k"].(int); ok {
		args = append(args, "--top_k", strconv.Itoa(v))
	}

	if v, ok := p["repetition_penalty"].(float64); ok {
		args = append(args, "--repetition_penalty", strconv.FormatFloat(v, 'f', -1, 64))
	}

	if v, ok := p["num_return_sequences"].(int); ok {
		args = append(args, "--num_return_sequences", strconv.Itoa(v))
	}

	if v, ok := p["eos_token_id"].(int); ok {
		args = append(args, "--eos_token_id", strconv.Itoa(v))
	}

	if v, ok := p["dtype"].(string); ok {
		args = append(args, "--dtype", v)
	}

	return args
}

// ParseSequences extracts generated sequences from pipeline output: one
// sequence per non-empty line, progress lines ("#"-prefixed) skipped.
func ParseSequences(stdout []byte) []string {
	var sequences []string

	for _, line := range strings.Split(string(stdout), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		sequences = append(sequences, trimmed)
	}

	return sequences
}

// Close cleans up resources. The generator pipeline does not have any
// resources to clean up.
func (b *Backend) Close() error {
	return nil
}
