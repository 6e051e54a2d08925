package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/foldlab/proteus/internal/backend"
	"github.com/foldlab/proteus/internal/config"
	"github.com/foldlab/proteus/internal/xfs"
)

// SampleResult describes a completed sampling run.
type SampleResult struct {
	Sequences       []string
	OutputPath      string
	Iterations      int
	Elapsed         time.Duration
	AvgPerIteration time.Duration
}

// RunSample executes the repeated-sampling pipeline: the generation
// pipeline is invoked Iterations times and only the final iteration's
// sequences are persisted, unless Accumulate is set. Total wall time and
// the average per iteration are reported.
func RunSample(ctx context.Context, cfg config.SampleConfig, backends *backend.Registry, modelPath string) (*SampleResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, configError(err)
	}

	b, ok := backends.Get(backend.ProviderProtGPT2)
	if !ok {
		return nil, &Error{Kind: KindConfig, Msg: "no generation backend registered", Err: backend.ErrNotFound}
	}

	if dir := filepath.Dir(cfg.OutputPath); dir != "." {
		if err := xfs.EnsureDir(dir); err != nil {
			return nil, filesystemError("failed to prepare output directory", err)
		}
	}

	params := map[string]any{
		"max_length":           cfg.MaxLength,
		"do_sample":            cfg.DoSample,
		"top_k":                cfg.TopK,
		"repetition_penalty":   cfg.RepetitionPenalty,
		"num_return_sequences": cfg.NumReturnSequences,
		"eos_token_id":         cfg.EOSTokenID,
		"dtype":                string(cfg.DType),
	}

	var sequences []string

	tic := time.Now()
	for i := 0; i < cfg.Iterations; i++ {
		slog.Info("Iteration", "i", i)

		resp, err := b.Infer(ctx, &backend.Request{
			ModelPath:  modelPath,
			Parameters: params,
		})
		if err != nil {
			return nil, externalError("error running generation pipeline", err)
		}

		if cfg.Accumulate {
			sequences = append(sequences, resp.Sequences...)
		} else {
			sequences = resp.Sequences
		}
	}
	elapsed := time.Since(tic)

	if err := xfs.WriteLines(cfg.OutputPath, sequences); err != nil {
		return nil, filesystemError("failed to persist sequences", err)
	}

	avg := elapsed / time.Duration(cfg.Iterations)
	slog.Info("Sampling complete",
		"iterations", cfg.Iterations,
		"sequences", len(sequences),
		"elapsed", elapsed,
		"avg_per_iteration", avg,
		"output", cfg.OutputPath,
	)

	return &SampleResult{
		Sequences:       sequences,
		OutputPath:      cfg.OutputPath,
		Iterations:      cfg.Iterations,
		Elapsed:         elapsed,
		AvgPerIteration: avg,
	}, nil
}
