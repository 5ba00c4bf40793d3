// Package system provides infrastructure for system-level configuration.
// This is the global generator configuration (~/.datax/config.yaml) shared
// by every flow processed in a run.
package system

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config represents the global configuration file (~/.datax/config.yaml).
// This is infrastructure-level configuration separate from flow definitions.
type Config struct {
	// ExecutionMode selects cloud or local deployment ("cloud" when empty)
	ExecutionMode string `yaml:"execution_mode"`

	// SparkType selects the target Spark platform ("hdinsight" when empty).
	// Databricks deployments address secrets through secret scopes.
	SparkType string `yaml:"spark_type"`

	// RuntimeKeyVaultName is the vault (or secret scope) receiving runtime secrets
	RuntimeKeyVaultName string `yaml:"runtime_keyvault_name"`

	// MetricEventHubConnectionKey is the secret name of the metrics event hub
	// connection string in the runtime vault (cloud mode)
	MetricEventHubConnectionKey string `yaml:"metric_eventhub_connection_key"`

	// LocalMetricsHTTPEndpoint receives metric events in local mode
	LocalMetricsHTTPEndpoint string `yaml:"local_metrics_http_endpoint"`

	BlobStorage BlobStorageConfig `yaml:"blob_storage"`
	Vault       VaultConfig       `yaml:"vault"`
	Redaction   RedactionConfig   `yaml:"redaction"`
}

// BlobStorageConfig controls how blob output folders are addressed.
type BlobStorageConfig struct {
	Scheme string `yaml:"scheme"`
	Domain string `yaml:"domain"`
}

// VaultConfig selects and configures the secret store backend.
type VaultConfig struct {
	// Backend is one of "azure", "file" or "memory"
	Backend string `yaml:"backend"`

	// FilePath is the secrets file of the "file" backend
	FilePath string `yaml:"file_path"`

	// DNSSuffix is the Key Vault DNS suffix of the "azure" backend
	DNSSuffix string `yaml:"dns_suffix"`

	// MaxAttempts bounds retries of transient Key Vault failures
	MaxAttempts int `yaml:"max_attempts"`
}

// Vault backends.
const (
	VaultBackendAzure  = "azure"
	VaultBackendFile   = "file"
	VaultBackendMemory = "memory"
)

// RedactionConfig configures the leak scan run over sanitized flows.
type RedactionConfig struct {
	// DisableGitleaks limits the scan to the built-in and custom patterns
	DisableGitleaks bool `yaml:"disable_gitleaks"`

	// Patterns are additional regular expressions treated as secrets
	Patterns []string `yaml:"patterns"`
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfig returns a Config with safe defaults for all fields.
// This is used when no system config file exists.
func DefaultConfig() *Config {
	return &Config{
		ExecutionMode: "cloud",
		SparkType:     "hdinsight",
		BlobStorage: BlobStorageConfig{
			Scheme: "wasbs",
			Domain: "blob.core.windows.net",
		},
		Vault: VaultConfig{
			Backend:     VaultBackendAzure,
			DNSSuffix:   "vault.azure.net",
			MaxAttempts: 3,
		},
		Redaction: RedactionConfig{
			Patterns: []string{},
		},
	}
}

// Load loads the system configuration from the specified path.
// If the file does not exist, returns DefaultConfig().
// Keys missing from the file keep their default values.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is the user-provided config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyDefaults fills empty fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.ExecutionMode == "" {
		c.ExecutionMode = d.ExecutionMode
	}
	if c.SparkType == "" {
		c.SparkType = d.SparkType
	}
	if c.BlobStorage.Scheme == "" {
		c.BlobStorage.Scheme = d.BlobStorage.Scheme
	}
	if c.BlobStorage.Domain == "" {
		c.BlobStorage.Domain = d.BlobStorage.Domain
	}
	if c.Vault.Backend == "" {
		c.Vault.Backend = d.Vault.Backend
	}
	if c.Vault.DNSSuffix == "" {
		c.Vault.DNSSuffix = d.Vault.DNSSuffix
	}
	if c.Vault.MaxAttempts <= 0 {
		c.Vault.MaxAttempts = d.Vault.MaxAttempts
	}
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.ExecutionMode {
	case "", "cloud", "local":
	default:
		return fmt.Errorf("execution_mode must be cloud or local, got %q", c.ExecutionMode)
	}

	switch c.SparkType {
	case "", "hdinsight", "databricks":
	default:
		return fmt.Errorf("spark_type must be hdinsight or databricks, got %q", c.SparkType)
	}

	switch c.Vault.Backend {
	case "", VaultBackendAzure, VaultBackendFile, VaultBackendMemory:
	default:
		return fmt.Errorf("vault.backend must be azure, file or memory, got %q", c.Vault.Backend)
	}
	if c.Vault.Backend == VaultBackendFile && c.Vault.FilePath == "" {
		return fmt.Errorf("vault.file_path is required for the file backend")
	}

	return nil
}
