package model

import (
	"time"

	"github.com/foldlab/proteus/internal/config"
)

// ModelType is the type of a model asset.
type ModelType string

const (
	// ModelTypeDesign is a structure-conditioned sequence design model.
	ModelTypeDesign ModelType = "design"

	// ModelTypeGenerative is a protein language model used for sampling.
	ModelTypeGenerative ModelType = "generative"
)

// ModelStatus is the current provisioning status of a model asset.
type ModelStatus string

const (
	// ModelStatusUnresolved indicates that the asset has not been located on disk.
	ModelStatusUnresolved ModelStatus = "unresolved"

	// ModelStatusReady indicates that the asset is on disk and usable.
	ModelStatusReady ModelStatus = "ready"

	// ModelStatusFailed indicates that provisioning failed.
	ModelStatusFailed ModelStatus = "failed"
)

// ModelInstance represents a provisioned model asset.
type ModelInstance struct {
	Config     *config.ModelConfig `json:"config"`
	ResolvedAt *time.Time          `json:"resolved_at,omitempty"`
	ID         string              `json:"id"`
	Path       string              `json:"-"`
	Status     ModelStatus         `json:"status"`
	Error      string              `json:"error,omitempty"`
}

// NewModelInstance creates a new model instance.
func NewModelInstance(cfg *config.ModelConfig, id, path string) *ModelInstance {
	return &ModelInstance{
		ID:     id,
		Path:   path,
		Config: cfg,
		Status: ModelStatusUnresolved,
	}
}

// SetStatus sets the status of the model instance.
func (mi *ModelInstance) SetStatus(status ModelStatus) {
	mi.Status = status
	if status == ModelStatusReady {
		now := time.Now()
		mi.ResolvedAt = &now
	}
}

// SetError sets the error associated with the model instance.
func (mi *ModelInstance) SetError(err error) {
	mi.Error = err.Error()
}
