package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/buildkite/roko"
	"github.com/puzpuzpuz/xsync/v2"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
)

const (
	// DefaultDNSSuffix is the Key Vault DNS suffix of the public Azure cloud.
	DefaultDNSSuffix = "vault.azure.net"

	defaultMaxAttempts   = 3
	defaultRetryInterval = 2 * time.Second
)

// secretsAPI is the subset of *azsecrets.Client the store uses.
type secretsAPI interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
	SetSecret(ctx context.Context, name string, parameters azsecrets.SetSecretParameters, options *azsecrets.SetSecretOptions) (azsecrets.SetSecretResponse, error)
}

// KeyVaultConfig configures a KeyVaultStore.
type KeyVaultConfig struct {
	// DNSSuffix is appended to the vault name to form the vault URL.
	DNSSuffix string
	// MaxAttempts bounds retries of transient failures.
	MaxAttempts int
	// Credential authenticates requests. Defaults to DefaultAzureCredential.
	Credential azcore.TokenCredential
	Logger     *slog.Logger
}

// KeyVaultStore stores secrets in Azure Key Vault. A client per vault is
// created lazily on first use and cached. Secret-scope references resolve
// against the Key Vault that backs the scope, which shares its name.
type KeyVaultStore struct {
	dnsSuffix   string
	maxAttempts int
	sleep       func(time.Duration)
	logger      *slog.Logger

	newClient func(vaultURL string) (secretsAPI, error)
	clients   *xsync.MapOf[string, secretsAPI]
}

// NewKeyVaultStore creates a Key Vault backed store.
func NewKeyVaultStore(cfg KeyVaultConfig) (*KeyVaultStore, error) {
	cred := cfg.Credential
	if cred == nil {
		defaultCred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating Azure credential: %w", err)
		}
		cred = defaultCred
	}

	s := newKeyVaultStore(cfg, func(vaultURL string) (secretsAPI, error) {
		return azsecrets.NewClient(vaultURL, cred, nil)
	})
	return s, nil
}

func newKeyVaultStore(cfg KeyVaultConfig, newClient func(string) (secretsAPI, error)) *KeyVaultStore {
	s := &KeyVaultStore{
		dnsSuffix:   cfg.DNSSuffix,
		maxAttempts: cfg.MaxAttempts,
		logger:      cfg.Logger,
		newClient:   newClient,
		clients:     xsync.NewMapOf[secretsAPI](),
	}
	if s.dnsSuffix == "" {
		s.dnsSuffix = DefaultDNSSuffix
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// VaultURL returns the endpoint of the named vault.
func (s *KeyVaultStore) VaultURL(vaultName string) string {
	return "https://" + vaultName + "." + strings.TrimPrefix(s.dnsSuffix, ".") + "/"
}

// GetSecret implements Store.
func (s *KeyVaultStore) GetSecret(ctx context.Context, vaultName, secretName string) (string, error) {
	client, err := s.client(vaultName)
	if err != nil {
		return "", err
	}

	return roko.DoFunc(ctx, s.retrier(), func(r *roko.Retrier) (string, error) {
		resp, err := client.GetSecret(ctx, secretName, "", nil)
		if err != nil {
			if isPermanent(err) {
				r.Break()
			}
			if statusCode(err) == http.StatusNotFound {
				return "", fmt.Errorf("%s/%s: %w", vaultName, secretName, apperrors.ErrSecretNotFound)
			}
			s.logger.Warn("key vault read failed", "vault", vaultName, "secret", secretName, "attempt", r.AttemptCount(), "error", err)
			return "", err
		}
		if resp.Value == nil {
			r.Break()
			return "", fmt.Errorf("%s/%s has no value: %w", vaultName, secretName, apperrors.ErrSecretNotFound)
		}
		return *resp.Value, nil
	})
}

// SetSecret implements Store.
func (s *KeyVaultStore) SetSecret(ctx context.Context, vaultName, secretName, value string) error {
	client, err := s.client(vaultName)
	if err != nil {
		return err
	}

	return s.retrier().DoWithContext(ctx, func(r *roko.Retrier) error {
		_, err := client.SetSecret(ctx, secretName, azsecrets.SetSecretParameters{Value: &value}, nil)
		if err != nil {
			if isPermanent(err) {
				r.Break()
			}
			s.logger.Warn("key vault write failed", "vault", vaultName, "secret", secretName, "attempt", r.AttemptCount(), "error", err)
			return err
		}
		return nil
	})
}

func (s *KeyVaultStore) client(vaultName string) (secretsAPI, error) {
	if c, ok := s.clients.Load(vaultName); ok {
		return c, nil
	}

	c, err := s.newClient(s.VaultURL(vaultName))
	if err != nil {
		return nil, fmt.Errorf("creating key vault client for %s: %w", vaultName, err)
	}
	s.clients.Store(vaultName, c)
	return c, nil
}

func (s *KeyVaultStore) retrier() *roko.Retrier {
	if s.sleep != nil {
		return roko.NewRetrier(
			roko.WithMaxAttempts(s.maxAttempts),
			roko.WithStrategy(roko.Constant(defaultRetryInterval)),
			roko.WithSleepFunc(s.sleep),
		)
	}
	return roko.NewRetrier(
		roko.WithMaxAttempts(s.maxAttempts),
		roko.WithStrategy(roko.Constant(defaultRetryInterval)),
		roko.WithJitter(),
	)
}

// isPermanent reports whether retrying err cannot succeed.
func isPermanent(err error) bool {
	switch statusCode(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict:
		return true
	}
	return false
}

func statusCode(err error) int {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}
