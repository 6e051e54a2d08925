package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldlab/proteus/internal/config"
)

func TestDownloadArgs_MinimalSource(t *testing.T) {
	src := config.HuggingFaceSource{Repo: "nferruz/ProtGPT2"}

	args := downloadArgs(src, "/models/nferruz/ProtGPT2")

	assert.Equal(t, []string{
		"download", "nferruz/ProtGPT2",
		"--local-dir", "/models/nferruz/ProtGPT2",
	}, args)
}

func TestDownloadArgs_AllOptions(t *testing.T) {
	src := config.HuggingFaceSource{
		Repo:          "nferruz/ProtGPT2",
		Revision:      "main",
		Token:         "hf_secret",
		Include:       []string{"*.bin", "*.json"},
		Exclude:       []string{"*.msgpack"},
		ForceDownload: true,
	}

	args := downloadArgs(src, "/models/nferruz/ProtGPT2")

	assert.Equal(t, []string{
		"download", "nferruz/ProtGPT2",
		"--local-dir", "/models/nferruz/ProtGPT2",
		"--revision", "main",
		"--include", "*.bin",
		"--include", "*.json",
		"--exclude", "*.msgpack",
		"--force-download",
		"--token", "hf_secret",
	}, args)
}

func TestDownloadArgs_Deterministic(t *testing.T) {
	src := config.HuggingFaceSource{
		Repo:     "nferruz/ProtGPT2",
		Revision: "v1",
		Include:  []string{"*.bin"},
	}

	first := downloadArgs(src, "/models/nferruz/ProtGPT2")
	second := downloadArgs(src, "/models/nferruz/ProtGPT2")

	assert.Equal(t, first, second)
}

func TestMarkerMatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, markerFilename)
	expected := markerContent("nferruz/ProtGPT2", "main")

	// No marker yet: cache cannot be trusted.
	assert.False(t, markerMatches(path, expected))

	require.NoError(t, os.WriteFile(path, []byte(expected), 0o644))
	assert.True(t, markerMatches(path, expected))

	// Revision change invalidates the cache.
	assert.False(t, markerMatches(path, markerContent("nferruz/ProtGPT2", "v2")))
}
