package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/goccy/go-yaml"
)

// FileStore persists secrets to a YAML file, keyed by vault then secret name.
// It stands in for Key Vault when flows are generated in local execution mode.
//
//	kv-runtime:
//	  orders-output-0123456789abcdef: "DefaultEndpointsProtocol=..."
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the file at path. The file is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// GetSecret implements Store.
func (s *FileStore) GetSecret(_ context.Context, vaultName, secretName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vaults, err := s.load()
	if err != nil {
		return "", err
	}

	value, ok := vaults[vaultName][secretName]
	if !ok {
		return "", apperrors.ErrSecretNotFound
	}
	return value, nil
}

// SetSecret implements Store.
func (s *FileStore) SetSecret(_ context.Context, vaultName, secretName, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vaults, err := s.load()
	if err != nil {
		return err
	}

	if vaults[vaultName] == nil {
		vaults[vaultName] = make(map[string]string)
	}
	vaults[vaultName][secretName] = value

	return s.save(vaults)
}

func (s *FileStore) load() (map[string]map[string]string, error) {
	vaults := make(map[string]map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return vaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	if err := yaml.Unmarshal(data, &vaults); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file %s: %w", s.path, err)
	}
	return vaults, nil
}

func (s *FileStore) save(vaults map[string]map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}

	data, err := yaml.Marshal(vaults)
	if err != nil {
		return fmt.Errorf("failed to marshal secrets: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".secrets-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp secrets file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}

	return os.Rename(tmp.Name(), s.path)
}
