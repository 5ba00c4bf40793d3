package config

import (
	"fmt"

	"github.com/Microsoft/data-accelerator/internal/domain/values"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/system"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/vault"
)

// Settings is the immutable snapshot of global configuration handed to the
// pipeline steps at construction. It is resolved once per run so steps never
// consult configuration lazily.
type Settings struct {
	ExecutionMode values.ExecutionMode
	SparkType     values.SparkType

	// RuntimeKeyVaultName is empty when no runtime vault is configured
	RuntimeKeyVaultName         string
	MetricEventHubConnectionKey string
	LocalMetricsHTTPEndpoint    string

	BlobScheme string
	BlobDomain string
}

// Overrides are command-line values that take precedence over the config file.
type Overrides struct {
	ExecutionMode       string
	RuntimeKeyVaultName string
}

// FromSystemConfig creates Settings from system config.
func FromSystemConfig(sys *system.Config, overrides Overrides) (Settings, error) {
	modeName := sys.ExecutionMode
	if overrides.ExecutionMode != "" {
		modeName = overrides.ExecutionMode
	}
	mode, err := values.ParseExecutionMode(modeName)
	if err != nil {
		return Settings{}, err
	}

	sparkType, err := values.ParseSparkType(sys.SparkType)
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		ExecutionMode:               mode,
		SparkType:                   sparkType,
		RuntimeKeyVaultName:         sys.RuntimeKeyVaultName,
		MetricEventHubConnectionKey: sys.MetricEventHubConnectionKey,
		LocalMetricsHTTPEndpoint:    sys.LocalMetricsHTTPEndpoint,
		BlobScheme:                  sys.BlobStorage.Scheme,
		BlobDomain:                  sys.BlobStorage.Domain,
	}
	if overrides.RuntimeKeyVaultName != "" {
		s.RuntimeKeyVaultName = overrides.RuntimeKeyVaultName
	}
	s.ApplyDefaults()

	return s, nil
}

// ApplyDefaults applies defaults for zero values.
func (s *Settings) ApplyDefaults() {
	if s.ExecutionMode == "" {
		s.ExecutionMode = values.ExecutionModeCloud
	}
	if s.SparkType == "" {
		s.SparkType = values.SparkTypeHDInsight
	}
	if s.BlobScheme == "" {
		s.BlobScheme = "wasbs"
	}
	if s.BlobDomain == "" {
		s.BlobDomain = "blob.core.windows.net"
	}
}

// IsLocal reports whether flows are generated for the local runtime.
func (s Settings) IsLocal() bool {
	return s.ExecutionMode.IsLocal()
}

// SecretScheme returns the reference scheme for the configured Spark type.
func (s Settings) SecretScheme() string {
	if s.SparkType == values.SparkTypeDatabricks {
		return vault.SchemeSecretScope
	}
	return vault.SchemeKeyVault
}

// RequireRuntimeVault returns the runtime vault name or an error when none
// is configured.
func (s Settings) RequireRuntimeVault() (string, error) {
	if s.RuntimeKeyVaultName == "" {
		return "", fmt.Errorf("runtime_keyvault_name is not configured")
	}
	return s.RuntimeKeyVaultName, nil
}
