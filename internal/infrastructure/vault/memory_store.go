package vault

import (
	"context"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/puzpuzpuz/xsync/v2"
)

// MemoryStore keeps secrets in process memory. It backs dry runs and tests.
type MemoryStore struct {
	secrets *xsync.MapOf[string, string]
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: xsync.NewMapOf[string]()}
}

// GetSecret implements Store.
func (m *MemoryStore) GetSecret(_ context.Context, vaultName, secretName string) (string, error) {
	value, ok := m.secrets.Load(storeKey(vaultName, secretName))
	if !ok {
		return "", apperrors.ErrSecretNotFound
	}
	return value, nil
}

// SetSecret implements Store.
func (m *MemoryStore) SetSecret(_ context.Context, vaultName, secretName, value string) error {
	m.secrets.Store(storeKey(vaultName, secretName), value)
	return nil
}

// Len returns the number of stored secrets.
func (m *MemoryStore) Len() int {
	return m.secrets.Size()
}

// Names returns the stored secrets as vault/name keys.
func (m *MemoryStore) Names() []string {
	names := make([]string, 0, m.secrets.Size())
	m.secrets.Range(func(key string, _ string) bool {
		names = append(names, key)
		return true
	})
	return names
}

func storeKey(vaultName, secretName string) string {
	return vaultName + "/" + secretName
}
