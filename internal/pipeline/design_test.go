package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldlab/proteus/internal/backend"
	"github.com/foldlab/proteus/internal/backend/mpnn"
	"github.com/foldlab/proteus/internal/config"
)

func registryWith(t *testing.T, b backend.Backend) *backend.Registry {
	t.Helper()

	r := backend.NewRegistry()
	r.Register(b)
	return r
}

// scriptedRunner plays one scripted response per external call and records
// the argument vectors it saw.
type scriptedRunner struct {
	calls  [][]string
	onCall func(call int, args []string) ([]byte, error)
}

func (r *scriptedRunner) Run(_ context.Context, _ string, args []string, _ io.Reader) ([]byte, []byte, error) {
	call := len(r.calls)
	r.calls = append(r.calls, args)

	if r.onCall == nil {
		return nil, nil, nil
	}

	stdout, err := r.onCall(call, args)
	if err != nil {
		return nil, []byte("traceback"), err
	}
	return stdout, nil, nil
}

func argValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func designFixture(t *testing.T) (config.DesignConfig, string) {
	t.Helper()

	base := t.TempDir()
	inputDir := filepath.Join(base, "pdbs")
	require.NoError(t, os.MkdirAll(inputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "5L33.pdb"), []byte("ATOM\n"), 0o644))

	cfg := config.DefaultDesignConfig()
	cfg.InputDir = inputDir
	cfg.OutputDir = filepath.Join(base, "out")
	return cfg, base
}

func TestRunDesign_EndToEnd(t *testing.T) {
	cfg, _ := designFixture(t)

	runner := &scriptedRunner{
		onCall: func(call int, args []string) ([]byte, error) {
			switch call {
			case 0:
				// The parse helper writes the record file.
				record := `{"name": "5L33", "seq_chain_A": "MKV"}` + "\n"
				return nil, os.WriteFile(argValue(args, "--output_path"), []byte(record), 0o644)
			default:
				// The design run writes FASTA files under the output folder.
				seqsDir := filepath.Join(argValue(args, "--out_folder"), "seqs")
				if err := os.MkdirAll(seqsDir, 0o755); err != nil {
					return nil, err
				}
				return nil, os.WriteFile(filepath.Join(seqsDir, "5L33.fa"), []byte(">5L33\nMKV\n"), 0o644)
			}
		},
	}
	b := mpnn.NewBackendWithRunner("python", "/opt/ProteinMPNN", runner)

	result, err := RunDesign(context.Background(), cfg, registryWith(t, b))
	require.NoError(t, err)

	// Both external calls ran, strictly in sequence.
	require.Len(t, runner.calls, 2)
	assert.Contains(t, runner.calls[0][0], "parse_multiple_chains.py")
	assert.Contains(t, runner.calls[1][0], "protein_mpnn_run.py")

	// The design call consumed the parse call's artifact.
	assert.Equal(t, result.ParsedPath, argValue(runner.calls[1], "--jsonl_path"))

	// Output directory, intermediate record file and final sequences exist.
	data, err := os.ReadFile(result.ParsedPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "5L33")

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "seqs", "5L33.fa"))
	assert.NoError(t, err)
}

func TestRunDesign_ParseFailureStopsPipeline(t *testing.T) {
	cfg, _ := designFixture(t)

	runner := &scriptedRunner{
		onCall: func(call int, _ []string) ([]byte, error) {
			if call == 0 {
				return nil, errors.New("exit status 1")
			}
			t.Fatal("design call must not run after parse failure")
			return nil, nil
		},
	}
	b := mpnn.NewBackendWithRunner("python", "/opt/ProteinMPNN", runner)

	_, err := RunDesign(context.Background(), cfg, registryWith(t, b))
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindExternal, perr.Kind)
	assert.Contains(t, perr.Error(), "error parsing multiple chains")

	// The second call was never constructed or started.
	assert.Len(t, runner.calls, 1)
}

func TestRunDesign_DesignFailureIsExternal(t *testing.T) {
	cfg, _ := designFixture(t)

	runner := &scriptedRunner{
		onCall: func(call int, _ []string) ([]byte, error) {
			if call == 1 {
				return nil, errors.New("exit status 2")
			}
			return nil, nil
		},
	}
	b := mpnn.NewBackendWithRunner("python", "/opt/ProteinMPNN", runner)

	_, err := RunDesign(context.Background(), cfg, registryWith(t, b))
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindExternal, perr.Kind)
	assert.Contains(t, perr.Error(), "error running protein design script")
}

func TestRunDesign_InvalidConfigHasNoSideEffects(t *testing.T) {
	cfg, _ := designFixture(t)
	cfg.Precision = "float16"

	runner := &scriptedRunner{}
	b := mpnn.NewBackendWithRunner("python", "/opt/ProteinMPNN", runner)

	_, err := RunDesign(context.Background(), cfg, registryWith(t, b))
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindConfig, perr.Kind)

	// No directory was created and no external call was attempted.
	_, statErr := os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, runner.calls)
}

func TestRunDesign_NoBackendRegistered(t *testing.T) {
	cfg, _ := designFixture(t)

	_, err := RunDesign(context.Background(), cfg, backend.NewRegistry())
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindConfig, perr.Kind)
	assert.True(t, errors.Is(err, backend.ErrNotFound))

	// Resolution happens before any filesystem work.
	_, statErr := os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunComplex_SingleCall(t *testing.T) {
	base := t.TempDir()

	cfg := config.DefaultComplexConfig()
	cfg.PDBPath = filepath.Join(base, "3HTN.pdb")
	cfg.ChainsToDesign = "A B"
	cfg.OutputDir = filepath.Join(base, "out")

	runner := &scriptedRunner{}
	b := mpnn.NewBackendWithRunner("python", "/opt/ProteinMPNN", runner)

	_, err := RunComplex(context.Background(), cfg, registryWith(t, b))
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0][0], "protein_mpnn_run.py")
	assert.Equal(t, cfg.PDBPath, argValue(runner.calls[0], "--pdb_path"))
	assert.Equal(t, "A B", argValue(runner.calls[0], "--pdb_path_chains"))

	info, err := os.Stat(cfg.OutputDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
