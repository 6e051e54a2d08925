package mpnn

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/foldlab/proteus/internal/backend"
)

const (
	parseScript  = "helper_scripts/parse_multiple_chains.py"
	designScript = "protein_mpnn_run.py"

	// Design runs are GPU-bound and can take a while on large batches.
	defaultTimeout = 30 * time.Minute
)

// Backend drives a ProteinMPNN checkout through its Python entry points.
// The checkout itself is an opaque collaborator; this backend only builds
// argument vectors and runs the interpreter.
type Backend struct {
	executor  *backend.Executor
	scriptDir string
}

// NewBackend creates a ProteinMPNN backend. pythonPath is the interpreter
// to invoke (resolved against PATH), scriptDir the root of the ProteinMPNN
// checkout.
func NewBackend(pythonPath, scriptDir string) (*Backend, error) {
	resolved, err := exec.LookPath(pythonPath)
	if err != nil {
		return nil, fmt.Errorf("interpreter not found: %w", err)
	}

	executor, err := backend.NewExecutor(resolved, defaultTimeout)
	if err != nil {
		return nil, err
	}

	return &Backend{
		executor:  executor,
		scriptDir: scriptDir,
	}, nil
}

// NewBackendWithRunner creates a ProteinMPNN backend with a custom command
// runner.
func NewBackendWithRunner(pythonPath, scriptDir string, runner backend.CommandRunner) *Backend {
	return &Backend{
		executor:  backend.NewExecutorWithRunner(pythonPath, defaultTimeout, runner),
		scriptDir: scriptDir,
	}
}

// Provider returns the backend identifier.
func (b *Backend) Provider() backend.Provider {
	return backend.ProviderProteinMPNN
}

// ParseChains runs the chain-parse helper over a directory of PDB files,
// writing one JSON record per structure to outputPath.
func (b *Backend) ParseChains(ctx context.Context, inputDir, outputPath string) error {
	args := BuildParseArgs(b.scriptDir, inputDir, outputPath)

	_, stderr, err := b.executor.Execute(ctx, args, nil)
	if err != nil {
		return fmt.Errorf("execution failed: %w\nstderr: %s", err, stderr)
	}

	return nil
}

// Infer executes one design run. The sequences land as FASTA files inside
// the configured output folder; stdout is returned for inspection.
func (b *Backend) Infer(ctx context.Context, req *backend.Request) (*backend.Response, error) {
	args := BuildDesignArgs(b.scriptDir, req.Parameters)

	stdout, stderr, err := b.executor.Execute(ctx, args, nil)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w\nstderr: %s", err, stderr)
	}

	return &backend.Response{
		Output: bytes.NewReader(stdout),
		Metadata: &backend.ResponseMetadata{
			Provider:    b.Provider(),
			Model:       b.scriptDir,
			Timestamp:   time.Now(),
			OutputBytes: int64(len(stdout)),
			BackendSpecific: map[string]any{
				"stdout": string(stdout),
				"stderr": string(stderr),
				"args":   args,
			},
		},
	}, nil
}

// BuildParseArgs builds the chain-parse argument vector. Pure function of
// its inputs.
func BuildParseArgs(scriptDir, inputDir, outputPath string) []string {
	return []string{
		filepath.Join(scriptDir, parseScript),
		"--input_path", inputDir,
		"--output_path", outputPath,
	}
}

// BuildDesignArgs builds the design-run argument vector. Pure function of
// its inputs; parameters are emitted in a fixed order so identical inputs
// produce identical vectors.
func BuildDesignArgs(scriptDir string, p map[string]any) []string {
	args := []string{filepath.Join(scriptDir, designScript)}

	if p == nil {
		return args
	}

	if v, ok := p["jsonl_path"].(string); ok {
		args = append(args, "--jsonl_path", v)
	}

	if v, ok := p["pdb_path"].(string); ok {
		args = append(args, "--pdb_path", v)
	}

	if v, ok := p["pdb_path_chains"].(string); ok {
		args = append(args, "--pdb_path_chains", v)
	}

	if v, ok := p["out_folder"].(string); ok {
		args = append(args, "--out_folder", v)
	}

	if v, ok := p["num_seq_per_target"].(int); ok {
		args = append(args, "--num_seq_per_target", strconv.Itoa(v))
	}

	if v, ok := p["sampling_temp"].(float64); ok {
		args = append(args, "--sampling_temp", formatFloat(v))
	}

	if v, ok := p["seed"].(int); ok {
		args = append(args, "--seed", strconv.Itoa(v))
	}

	if v, ok := p["batch_size"].(int); ok {
		args = append(args, "--batch_size", strconv.Itoa(v))
	}

	if v, ok := p["precision"].(string); ok {
		args = append(args, "--precision", v)
	}

	return args
}

// formatFloat renders a float the way the upstream scripts expect: plain
// decimal notation, no trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Close cleans up resources. ProteinMPNN does not have any resources to
// clean up.
func (b *Backend) Close() error {
	return nil
}
