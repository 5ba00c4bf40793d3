package vault

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/application/ports"
)

// hashSuffixLength is the number of hex characters of the value digest
// appended to a secret name when a content-addressed name is requested.
const hashSuffixLength = 16

// Store is a secret backend. Implementations must be safe for concurrent use
// and return apperrors.ErrSecretNotFound (possibly wrapped) for missing
// secrets. SetSecret overwrites an existing value.
type Store interface {
	GetSecret(ctx context.Context, vaultName, secretName string) (string, error)
	SetSecret(ctx context.Context, vaultName, secretName, value string) error
}

// Client implements ports.SecretVault on top of a Store.
// Every value it reads or writes is registered with the sensitive value
// provider so it can be scrubbed from logs and errors.
type Client struct {
	store    Store
	scheme   string
	provider ports.SensitiveValueProvider
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithSensitiveValueProvider registers resolved and saved values with p.
func WithSensitiveValueProvider(p ports.SensitiveValueProvider) Option {
	return func(c *Client) {
		c.provider = p
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a vault client writing references with the given scheme.
func NewClient(store Store, scheme string, opts ...Option) *Client {
	c := &Client{
		store:  store,
		scheme: scheme,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scheme returns the scheme used for composed references.
func (c *Client) Scheme() string {
	return c.scheme
}

// IsSecretRef reports whether value is a secret reference.
func (c *Client) IsSecretRef(value string) bool {
	return IsSecretRef(value)
}

// ComposeURI builds a reference for secretName in vaultName using the
// client's scheme.
func (c *Client) ComposeURI(vaultName, secretName string) string {
	return ComposeURI(c.scheme, vaultName, secretName)
}

// Resolve returns the plaintext behind a secret reference. Values that are
// not references are returned unchanged.
func (c *Client) Resolve(ctx context.Context, reference string) (string, error) {
	ref, ok := ParseReference(reference)
	if !ok {
		return reference, nil
	}

	value, err := c.store.GetSecret(ctx, ref.Vault, ref.Name)
	if err != nil {
		return "", apperrors.NewVaultError("resolve", ref.String(), err)
	}

	c.track(value)
	c.logger.Debug("resolved secret", "reference", ref.String())
	return value, nil
}

// Save stores value under secretName in vaultName and returns its reference.
// With hashSuffix set, a digest of the value is appended to the name so
// distinct values never overwrite each other and equal values always map to
// the same reference.
func (c *Client) Save(ctx context.Context, vaultName, secretName, value string, hashSuffix bool) (string, error) {
	if strings.TrimSpace(vaultName) == "" {
		return "", apperrors.NewVaultError("save", secretName, fmt.Errorf("vault name is required"))
	}
	if strings.TrimSpace(secretName) == "" {
		return "", apperrors.NewVaultError("save", vaultName, fmt.Errorf("secret name is required"))
	}

	name := secretName
	if hashSuffix {
		name = secretName + "-" + valueDigest(value)
	}

	ref := c.ComposeURI(vaultName, name)
	c.track(value)

	if err := c.store.SetSecret(ctx, vaultName, name, value); err != nil {
		return "", apperrors.NewVaultError("save", ref, err)
	}

	c.logger.Debug("saved secret", "reference", ref)
	return ref, nil
}

func (c *Client) track(value string) {
	if c.provider != nil {
		c.provider.Track(value)
	}
}

func valueDigest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:hashSuffixLength]
}
