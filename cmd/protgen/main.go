package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"

	"github.com/foldlab/proteus/internal/backend"
	"github.com/foldlab/proteus/internal/backend/protgpt"
	"github.com/foldlab/proteus/internal/config"
	"github.com/foldlab/proteus/internal/env"
	"github.com/foldlab/proteus/internal/logger"
	"github.com/foldlab/proteus/internal/model"
	"github.com/foldlab/proteus/internal/pipeline"
	"github.com/foldlab/proteus/internal/xfs"
)

func main() {
	defaults := config.DefaultSampleConfig()

	var (
		flagOutput      = flag.String("output", defaults.OutputPath, "Output file, one generated sequence per line")
		flagMaxLength   = flag.Int("max-length", defaults.MaxLength, "Maximum length of generated sequence")
		flagDoSample    = flag.Bool("do-sample", defaults.DoSample, "Whether to sample the output or not")
		flagTopK        = flag.Int("top-k", defaults.TopK, "Number of highest probability vocabulary tokens kept for top-k filtering")
		flagRepPenalty  = flag.Float64("repetition-penalty", defaults.RepetitionPenalty, "Repetition penalty (1.0 means no penalty)")
		flagNumReturn   = flag.Int("num-return-sequences", defaults.NumReturnSequences, "Number of sequences to return")
		flagEOSTokenID  = flag.Int("eos-token-id", defaults.EOSTokenID, "Id of the end of sequence token")
		flagDType       = flag.String("dtype", string(defaults.DType), "Data type for model optimization: float32 or bfloat16")
		flagIterations  = flag.Int("iterations", defaults.Iterations, "Number of iterations to run")
		flagAccumulate  = flag.Bool("accumulate", defaults.Accumulate, "Retain sequences from every iteration instead of only the last")
		flagModel       = flag.String("model", "~/model", "Path to the ProtGPT2 weights")
		flagGenerator   = flag.String("generator", "protgpt2-generate", "Generation pipeline binary")
		flagPreset      = flag.String("preset", "", "Named sampling preset to apply")
		flagPresetsFile = flag.String("presets-file", path.Join(config.DefaultConfigPath(), "presets.toml"), "Path to sampling presets file")
		flagManifest    = flag.String("manifest", "", "Model manifest; resolves the weights when --model is unset")
		flagSchema      = flag.String("schema", path.Join(config.DefaultConfigPath(), "proteus.v1.schema.json"), "Path to manifest schema file")
	)
	flag.Parse()

	cfg := defaults
	cfg.OutputPath = *flagOutput
	cfg.MaxLength = *flagMaxLength
	cfg.DoSample = *flagDoSample
	cfg.TopK = *flagTopK
	cfg.RepetitionPenalty = *flagRepPenalty
	cfg.NumReturnSequences = *flagNumReturn
	cfg.EOSTokenID = *flagEOSTokenID
	cfg.Iterations = *flagIterations
	cfg.Accumulate = *flagAccumulate

	dtype, err := config.ParsePrecision(*flagDType)
	if err != nil {
		slog.Error("Invalid arguments", "error", err)
		os.Exit(2)
	}
	cfg.DType = dtype

	if *flagPreset != "" {
		presets, err := config.LoadPresets(*flagPresetsFile)
		if err != nil {
			slog.Error("Failed to load presets", "error", err)
			os.Exit(2)
		}

		preset, ok := presets[*flagPreset]
		if !ok {
			slog.Error("Unknown preset", "preset", *flagPreset, "file", *flagPresetsFile)
			os.Exit(2)
		}
		cfg = preset.Apply(cfg)
	}

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

	modelPath := xfs.ExpandTilde(*flagModel)
	if *flagManifest != "" {
		instance, err := model.ProvisionTool(ctx, *flagManifest, *flagSchema, "generate")
		if err != nil {
			slog.Error("Failed to resolve generative model", "error", err)
			os.Exit(1)
		}
		modelPath = instance.Path
	}

	b, err := protgpt.NewBackend(*flagGenerator)
	if err != nil {
		slog.Error("Failed to create backend", "error", err)
		os.Exit(1)
	}

	backends := backend.NewRegistry()
	backends.Register(b)
	defer backends.Close()

	result, err := pipeline.RunSample(ctx, cfg, backends, modelPath)
	if err != nil {
		slog.Error("Sampling run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Time taken",
		"iterations", result.Iterations,
		"total", result.Elapsed,
		"avg_per_iteration", result.AvgPerIteration,
	)
}
