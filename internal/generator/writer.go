package generator

import (
	"fmt"
	"os"
	"path/filepath"
)

// DocWriter writes rendered Markdown under an output directory using temp → rename.
type DocWriter struct {
	outputDir string
}

// NewDocWriter creates a writer rooted at outputDir, creating it if needed.
func NewDocWriter(outputDir string) (*DocWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &DocWriter{outputDir: outputDir}, nil
}

// OutputPath maps a slash-separated source path to {outputDir}/{relPath}.md.
func (w *DocWriter) OutputPath(relPath string) string {
	return filepath.Join(w.outputDir, filepath.FromSlash(relPath)+".md")
}

// Write stores markdown for relPath atomically and returns the written path.
func (w *DocWriter) Write(relPath, markdown string) (string, error) {
	finalPath := w.OutputPath(relPath)
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".sourcedoc-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.WriteString(markdown); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	return finalPath, nil
}

// Remove deletes the Markdown for relPath. A missing file is not an error.
func (w *DocWriter) Remove(relPath string) error {
	if err := os.Remove(w.OutputPath(relPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove documentation for %s: %w", relPath, err)
	}
	return nil
}
