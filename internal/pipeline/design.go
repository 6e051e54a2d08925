package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/foldlab/proteus/internal/backend"
	"github.com/foldlab/proteus/internal/config"
	"github.com/foldlab/proteus/internal/xfs"
)

// ParsedRecordsFilename is the intermediate artifact produced by the
// chain-parse stage: one JSON record per structure, newline-delimited.
const ParsedRecordsFilename = "parsed_pdbs.jsonl"

// DesignResult describes a completed design run. The generated sequences
// live as files under OutputDir, owned by the filesystem.
type DesignResult struct {
	OutputDir  string
	ParsedPath string
	Response   *backend.Response
}

// RunDesign executes the two-stage monomer design pipeline: parse the
// input structures into a record file, then run the design model against
// it. The stages run strictly in sequence; the design call is never
// constructed if parsing fails.
func RunDesign(ctx context.Context, cfg config.DesignConfig, backends *backend.Registry) (*DesignResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, configError(err)
	}

	b, ok := backends.Get(backend.ProviderProteinMPNN)
	if !ok {
		return nil, &Error{Kind: KindConfig, Msg: "no design backend registered", Err: backend.ErrNotFound}
	}

	parser, ok := b.(backend.ChainParser)
	if !ok {
		return nil, &Error{Kind: KindConfig, Msg: "design backend cannot parse structures", Err: backend.ErrNotParser}
	}

	if err := xfs.EnsureDir(cfg.OutputDir); err != nil {
		return nil, filesystemError("failed to prepare output directory", err)
	}

	parsedPath := filepath.Join(cfg.OutputDir, ParsedRecordsFilename)

	slog.Info("Parsing input structures", "input", cfg.InputDir, "output", parsedPath)
	if err := parser.ParseChains(ctx, cfg.InputDir, parsedPath); err != nil {
		return nil, externalError("error parsing multiple chains", err)
	}

	req := &backend.Request{
		Parameters: map[string]any{
			"jsonl_path":         parsedPath,
			"out_folder":         cfg.OutputDir,
			"num_seq_per_target": cfg.NumSeqPerTarget,
			"sampling_temp":      cfg.SamplingTemp,
			"seed":               cfg.Seed,
			"batch_size":         cfg.BatchSize,
			"precision":          string(cfg.Precision),
		},
	}

	slog.Info("Running sequence design", "records", parsedPath, "out_folder", cfg.OutputDir)
	resp, err := b.Infer(ctx, req)
	if err != nil {
		return nil, externalError("error running protein design script", err)
	}

	return &DesignResult{
		OutputDir:  cfg.OutputDir,
		ParsedPath: parsedPath,
		Response:   resp,
	}, nil
}

// RunComplex executes the single-stage complex design pipeline against one
// PDB file, restricted to the selected chains.
func RunComplex(ctx context.Context, cfg config.ComplexConfig, backends *backend.Registry) (*DesignResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, configError(err)
	}

	b, ok := backends.Get(backend.ProviderProteinMPNN)
	if !ok {
		return nil, &Error{Kind: KindConfig, Msg: "no design backend registered", Err: backend.ErrNotFound}
	}

	if err := xfs.EnsureDir(cfg.OutputDir); err != nil {
		return nil, filesystemError("failed to prepare output directory", err)
	}

	req := &backend.Request{
		Parameters: map[string]any{
			"pdb_path":           cfg.PDBPath,
			"pdb_path_chains":    cfg.ChainsToDesign,
			"out_folder":         cfg.OutputDir,
			"num_seq_per_target": cfg.NumSeqPerTarget,
			"sampling_temp":      cfg.SamplingTemp,
			"seed":               cfg.Seed,
			"batch_size":         cfg.BatchSize,
			"precision":          string(cfg.Precision),
		},
	}

	slog.Info("Running sequence design", "pdb", cfg.PDBPath, "chains", cfg.ChainsToDesign, "out_folder", cfg.OutputDir)
	resp, err := b.Infer(ctx, req)
	if err != nil {
		return nil, externalError("error running protein design script", err)
	}

	return &DesignResult{
		OutputDir: cfg.OutputDir,
		Response:  resp,
	}, nil
}
