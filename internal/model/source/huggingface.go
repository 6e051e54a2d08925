package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/foldlab/proteus/internal/config"
)

const (
	downloadRetries    = 3
	downloadRetryDelay = 2 * time.Second
	downloadTimeout    = 5 * time.Minute
	markerFilename     = ".proteus-downloaded"
)

// HuggingFaceDownloader fetches model weights from a Hugging Face
// repository by shelling out to the `hf` CLI.
type HuggingFaceDownloader struct{}

// downloadArgs builds the `hf download` argument vector for a source.
// Pure: the same source and directory always yield the same vector.
func downloadArgs(src config.HuggingFaceSource, localDir string) []string {
	args := []string{"download", src.Repo, "--local-dir", localDir}

	if src.Revision != "" {
		args = append(args, "--revision", src.Revision)
	}
	for _, inc := range src.Include {
		args = append(args, "--include", inc)
	}
	for _, exc := range src.Exclude {
		args = append(args, "--exclude", exc)
	}
	if src.ForceDownload {
		args = append(args, "--force-download")
	}
	if src.Token != "" {
		args = append(args, "--token", src.Token)
	}

	return args
}

// markerContent is what a completed download records next to the weights;
// it pins the repo and revision the cache was built from.
func markerContent(repo, revision string) string {
	return fmt.Sprintf("repo: %s\nrevision: %s\n", repo, revision)
}

// markerMatches reports whether the marker at path records exactly the
// expected repo and revision. A missing or stale marker means the cached
// weights cannot be trusted.
func markerMatches(path, expected string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return string(content) == expected
}

// Download fetches the model into targetDir, skipping the network entirely
// when a matching marker shows the cache is current. The second return
// value reports a cache hit.
func (d *HuggingFaceDownloader) Download(ctx context.Context, modelConfig *config.ModelConfig, targetDir string) (string, bool, error) {
	src, err := modelConfig.GetSource()
	if err != nil {
		return "", false, fmt.Errorf("failed to get model source: %w", err)
	}

	hfSource, ok := src.(config.HuggingFaceSource)
	if !ok {
		return "", false, fmt.Errorf("invalid source type: %T", src)
	}

	repo := strings.TrimSpace(hfSource.Repo)
	if repo == "" {
		return "", false, fmt.Errorf("invalid repo name: %q", hfSource.Repo)
	}

	localDir := filepath.Join(targetDir, repo)
	markerPath := filepath.Join(localDir, markerFilename)
	marker := markerContent(repo, hfSource.Revision)

	if markerMatches(markerPath, marker) {
		slog.Info("Model cache is current, skipping download", "repo", repo, "path", localDir)
		return localDir, true, nil
	}

	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create directory: %w", err)
	}

	args := downloadArgs(hfSource, localDir)

	var lastErr error
	for attempt := 1; attempt <= downloadRetries; attempt++ {
		if attempt > 1 {
			slog.Info("Retrying download", "repo", repo, "attempt", attempt, "last_error", lastErr)
			time.Sleep(downloadRetryDelay)
		} else {
			slog.Info("Downloading model", "repo", repo, "path", localDir)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
		cmd := exec.CommandContext(attemptCtx, "hf", args...)
		output, err := cmd.CombinedOutput()
		cancel()

		if err == nil {
			if err := os.WriteFile(markerPath, []byte(marker), 0o644); err != nil {
				slog.Warn("Failed to write download marker", "path", markerPath, "error", err)
			}

			slog.Info("Model downloaded", "repo", repo, "path", localDir, "attempt", attempt)
			return localDir, false, nil
		}

		lastErr = err
		slog.Error("Failed to download model", "repo", repo, "attempt", attempt, "error", err, "output", string(output))

		if attemptCtx.Err() == context.DeadlineExceeded {
			slog.Warn("Download timed out", "repo", repo, "attempt", attempt)
		} else if ctx.Err() != nil {
			return "", false, fmt.Errorf("download canceled: %w", err)
		}
	}

	return "", false, lastErr
}
