package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoader_Load_FileNotExists(t *testing.T) {
	loader := NewConfigLoader()
	cfg, err := loader.Load("/nonexistent/config.yaml")

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigLoader_Load_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yaml := `
execution_mode: local
spark_type: databricks
runtime_keyvault_name: kv-runtime
metric_eventhub_connection_key: metric-eventhubconnectionstring
local_metrics_http_endpoint: http://localhost:2020/api/data/upload
vault:
  backend: file
  file_path: /tmp/secrets.yaml
redaction:
  disable_gitleaks: true
  patterns:
    - "INT-[A-Z0-9]{16}"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o600))

	cfg, err := NewConfigLoader().Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.ExecutionMode)
	assert.Equal(t, "databricks", cfg.SparkType)
	assert.Equal(t, "kv-runtime", cfg.RuntimeKeyVaultName)
	assert.Equal(t, "metric-eventhubconnectionstring", cfg.MetricEventHubConnectionKey)
	assert.Equal(t, "http://localhost:2020/api/data/upload", cfg.LocalMetricsHTTPEndpoint)
	assert.Equal(t, VaultBackendFile, cfg.Vault.Backend)
	assert.Equal(t, "/tmp/secrets.yaml", cfg.Vault.FilePath)
	assert.True(t, cfg.Redaction.DisableGitleaks)
	assert.Equal(t, []string{"INT-[A-Z0-9]{16}"}, cfg.Redaction.Patterns)

	// untouched keys keep defaults
	assert.Equal(t, "wasbs", cfg.BlobStorage.Scheme)
	assert.Equal(t, "blob.core.windows.net", cfg.BlobStorage.Domain)
	assert.Equal(t, "vault.azure.net", cfg.Vault.DNSSuffix)
	assert.Equal(t, 3, cfg.Vault.MaxAttempts)
}

func TestConfigLoader_Load_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad yaml", content: "execution_mode: [", wantErr: "failed to parse system config"},
		{name: "bad mode", content: "execution_mode: hybrid", wantErr: "execution_mode"},
		{name: "bad spark", content: "spark_type: emr", wantErr: "spark_type"},
		{name: "bad backend", content: "vault:\n  backend: hsm", wantErr: "vault.backend"},
		{name: "file without path", content: "vault:\n  backend: file", wantErr: "vault.file_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := NewConfigLoader().Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{ExecutionMode: "local", Vault: VaultConfig{MaxAttempts: -1}}
	cfg.ApplyDefaults()

	assert.Equal(t, "local", cfg.ExecutionMode)
	assert.Equal(t, "hdinsight", cfg.SparkType)
	assert.Equal(t, VaultBackendAzure, cfg.Vault.Backend)
	assert.Equal(t, 3, cfg.Vault.MaxAttempts)
	assert.Equal(t, "wasbs", cfg.BlobStorage.Scheme)
}
