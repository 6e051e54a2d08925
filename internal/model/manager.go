package model

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/foldlab/proteus/internal/config"
	"github.com/foldlab/proteus/internal/envvar"
	"github.com/foldlab/proteus/internal/model/source"
	"github.com/foldlab/proteus/internal/xfs"
)

// Manager provisions model assets named by the manifest and tracks them in
// a registry.
type Manager struct {
	registry *Registry
	mu       sync.RWMutex
}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// Registry returns the model registry.
func (m *Manager) Registry() *Registry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.registry
}

// LoadModelsFromConfig provisions every model assigned to a tool in the
// manifest and updates the registry.
func (m *Manager) LoadModelsFromConfig(ctx context.Context, cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.registry = NewRegistry(cfg)

	assignedModels := make(map[string]bool)
	for _, model := range cfg.Tools.Design.Models {
		assignedModels[model] = true
	}
	for _, model := range cfg.Tools.Generate.Models {
		assignedModels[model] = true
	}

	modelsPath := resolveModelsPath(cfg)
	if err := source.EnsureModelsDirectory(modelsPath); err != nil {
		return fmt.Errorf("failed to prepare models directory %s: %w", modelsPath, err)
	}

	for modelID := range assignedModels {
		modelConfig, ok := cfg.Models[modelID]
		if !ok {
			slog.Warn("Model not found in manifest", "model_id", modelID)
			continue
		}

		modelSource, err := modelConfig.GetSource()
		if err != nil {
			return fmt.Errorf("failed to get model source for %s: %w", modelID, err)
		}

		downloader, err := source.GetDownloader(ctx, modelSource.Type())
		if err != nil {
			return fmt.Errorf("failed to get downloader for %s: %w", modelID, err)
		}

		downloadPath, cached, err := downloader.Download(ctx, &modelConfig, modelsPath)
		if err != nil {
			return fmt.Errorf("failed to download model %s into %s: %w", modelID, modelsPath, err)
		}

		instance := NewModelInstance(&modelConfig, modelID, downloadPath)
		instance.SetStatus(ModelStatusReady)
		m.registry.Set(instance)

		slog.Info("Model ready", "model_id", modelID, "path", downloadPath, "cached", cached)
	}

	return nil
}

// ProvisionTool loads the manifest, provisions every assigned model, and
// returns the first model assigned to the named tool. tool is one of
// "design" or "generate".
func ProvisionTool(ctx context.Context, manifestPath, schemaPath, tool string) (*ModelInstance, error) {
	cfg, err := config.LoadAndValidate(manifestPath, schemaPath)
	if err != nil {
		return nil, err
	}

	manager := NewManager()
	if err := manager.LoadModelsFromConfig(ctx, cfg); err != nil {
		return nil, err
	}

	var ids []string
	switch tool {
	case "design":
		ids = cfg.Tools.Design.Models
	case "generate":
		ids = cfg.Tools.Generate.Models
	default:
		return nil, fmt.Errorf("unknown tool %q", tool)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("no models assigned to tool %q in %s", tool, manifestPath)
	}

	instance, ok := manager.Registry().Get(ids[0])
	if !ok {
		return nil, ErrNotFound
	}

	return instance, nil
}

// resolveModelsPath returns the path to the models directory.
// Precedence:
// 1. PROTEUS_MODELS_PATH environment variable.
// 2. ModelsDir field in the manifest.
// 3. Default models path.
func resolveModelsPath(cfg *config.Config) string {
	if p := os.Getenv(envvar.ProteusModelsPath); p != "" {
		return xfs.ExpandTilde(p)
	}
	if cfg.Storage.ModelsDir != "" {
		return xfs.ExpandTilde(cfg.Storage.ModelsDir)
	}
	return xfs.ExpandTilde(config.DefaultModelsPath())
}
