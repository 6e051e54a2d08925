package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"

	"github.com/foldlab/proteus/internal/backend"
	"github.com/foldlab/proteus/internal/backend/mpnn"
	"github.com/foldlab/proteus/internal/config"
	"github.com/foldlab/proteus/internal/env"
	"github.com/foldlab/proteus/internal/logger"
	"github.com/foldlab/proteus/internal/model"
	"github.com/foldlab/proteus/internal/pipeline"
)

func main() {
	defaults := config.DefaultDesignConfig()

	var (
		flagInput     = flag.String("input", "", "Input directory of PDB files")
		flagOutput    = flag.String("output", "", "Output directory for parsed records and designed sequences")
		flagNumSeq    = flag.Int("num-seq-per-target", defaults.NumSeqPerTarget, "Number of sequences per target")
		flagTemp      = flag.Float64("sampling-temp", defaults.SamplingTemp, "Sampling temperature")
		flagSeed      = flag.Int("seed", defaults.Seed, "Random seed")
		flagBatchSize = flag.Int("batch-size", defaults.BatchSize, "Batch size")
		flagPrecision = flag.String("precision", string(defaults.Precision), "Precision: float32 or bfloat16")
		flagPython    = flag.String("python", "python", "Python interpreter used to run the checkout scripts")
		flagScriptDir = flag.String("script-dir", "", "Path to the ProteinMPNN checkout")
		flagManifest  = flag.String("manifest", "", "Model manifest; resolves the checkout when --script-dir is unset")
		flagSchema    = flag.String("schema", path.Join(config.DefaultConfigPath(), "proteus.v1.schema.json"), "Path to manifest schema file")
		flagWatch     = flag.Bool("watch", false, "Keep running and design new structures as they appear in the input directory")
	)
	flag.Parse()

	cfg := defaults
	cfg.InputDir = *flagInput
	cfg.OutputDir = *flagOutput
	cfg.NumSeqPerTarget = *flagNumSeq
	cfg.SamplingTemp = *flagTemp
	cfg.Seed = *flagSeed
	cfg.BatchSize = *flagBatchSize

	precision, err := config.ParsePrecision(*flagPrecision)
	if err != nil {
		slog.Error("Invalid arguments", "error", err)
		os.Exit(2)
	}
	cfg.Precision = precision

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid arguments", "error", err)
		os.Exit(2)
	}

	environment := env.FromEnv()
	slog.SetDefault(
		logger.New(environment,
			logger.WithLogToFile(true),
			logger.WithLogFile("logs/proteus.log"),
		),
	)

	ctx := context.Background()

	scriptDir := *flagScriptDir
	if scriptDir == "" && *flagManifest != "" {
		instance, err := model.ProvisionTool(ctx, *flagManifest, *flagSchema, "design")
		if err != nil {
			slog.Error("Failed to resolve design model", "error", err)
			os.Exit(1)
		}
		scriptDir = instance.Path
	}
	if scriptDir == "" {
		slog.Error("A ProteinMPNN checkout is required (--script-dir or --manifest)")
		os.Exit(2)
	}

	b, err := mpnn.NewBackend(*flagPython, scriptDir)
	if err != nil {
		slog.Error("Failed to create backend", "error", err)
		os.Exit(1)
	}

	backends := backend.NewRegistry()
	backends.Register(b)
	defer backends.Close()

	run := func() error {
		result, err := pipeline.RunDesign(ctx, cfg, backends)
		if err != nil {
			return err
		}

		slog.Info("Design run complete", "out_folder", result.OutputDir, "records", result.ParsedPath)
		return nil
	}

	if err := run(); err != nil {
		slog.Error("Design run failed", "error", err)
		os.Exit(1)
	}

	if !*flagWatch {
		return
	}

	// The parse helper consumes the whole input directory, so a batch
	// triggers a full re-run; the paths identify what arrived.
	watcher, err := pipeline.NewWatcher(cfg.InputDir, func(paths []string) {
		slog.Info("Designing new structures", "structures", paths)
		if err := run(); err != nil {
			slog.Error("Design run failed", "error", err)
		}
	})
	if err != nil {
		slog.Error("Failed to watch input directory", "path", cfg.InputDir, "error", err)
		os.Exit(1)
	}
	defer watcher.Close()

	slog.Info("Watching for new structures", "path", cfg.InputDir)
	select {}
}
