// Package storage persists generated deployment artifacts.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter writes artifacts into a local directory. Names are resolved
// inside the directory; a name escaping it is rejected.
type FileWriter struct {
	dir string
}

// NewFileWriter creates a writer rooted at dir. The directory is created on
// first write.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

// Write stores data as dir/name and returns the file path.
func (w *FileWriter) Write(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	root, err := os.OpenRoot(w.dir)
	if err != nil {
		return "", fmt.Errorf("failed to open output directory: %w", err)
	}
	defer func() { _ = root.Close() }()

	if err := root.WriteFile(name, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	return filepath.Join(w.dir, name), nil
}
