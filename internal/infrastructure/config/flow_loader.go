// Package config provides infrastructure for loading flow definitions and
// resolving the settings snapshot the pipeline runs with.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/goccy/go-yaml"
)

// FlowLoader handles loading flow definitions from YAML or JSON files.
type FlowLoader struct{}

// NewFlowLoader creates a new flow loader.
func NewFlowLoader() *FlowLoader {
	return &FlowLoader{}
}

// LoadFlow loads and parses a flow from a file.
func (l *FlowLoader) LoadFlow(path string) (*entities.FlowConfig, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(base)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return l.LoadFlowFromReader(file)
}

// LoadFlowFromReader loads a flow from an io.Reader. JSON input is accepted
// as a subset of YAML.
func (l *FlowLoader) LoadFlowFromReader(r io.Reader) (*entities.FlowConfig, error) {
	var flow entities.FlowConfig

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&flow); err != nil {
		return nil, fmt.Errorf("failed to decode flow: %w", err)
	}

	// The authored name is the fallback for flows exported without a top-level name
	if flow.Name == "" && flow.Gui != nil {
		flow.Name = flow.Gui.Name
	}
	if flow.Gui != nil && flow.Gui.Name == "" {
		flow.Gui.Name = flow.Name
	}

	if err := flow.Validate(); err != nil {
		return nil, fmt.Errorf("flow validation failed: %w", err)
	}

	return &flow, nil
}
