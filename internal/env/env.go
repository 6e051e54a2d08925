package env

import (
	"os"
	"strings"

	"github.com/foldlab/proteus/internal/envvar"
)

// Environment identifies the runtime environment.
type Environment string

const (
	// Development enables human-readable console logging.
	Development Environment = "development"

	// Production enables structured JSON logging.
	Production Environment = "production"
)

// FromEnv resolves the environment from PROTEUS_ENV. Unknown or empty
// values resolve to Production.
func FromEnv() Environment {
	switch strings.ToLower(os.Getenv(envvar.ProteusEnv)) {
	case "development", "dev":
		return Development
	default:
		return Production
	}
}
