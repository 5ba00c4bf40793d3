package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Microsoft/data-accelerator/internal/application/dto"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
)

func sampleResult() *dto.DeploymentResult {
	return &dto.DeploymentResult{
		Flow:      "orders",
		SessionID: "6f1c2f2e-0b1a-4c56-9b43-8a4b5f0e9d21",
		Tokens:    map[string]any{"name": "orders", "runtimeKeyVaultName": "kv"},
		Outputs: []entities.FlowOutputSpec{{
			Name: "alerts",
			BlobOutput: &entities.BlobOutputSpec{
				Format: "json",
				Groups: entities.BlobOutputGroups{Main: entities.BlobOutputMain{Folder: "keyvault://kv/orders-output-0123456789abcdef"}},
			},
			EventHubOutput: &entities.EventHubOutputSpec{ConnectionStringRef: "keyvault://kv/metric", CompressionType: "none", Format: "json"},
		}},
		Steps: []session.StepStatus{
			{Step: "PortConfigurationSettings", Status: "done", Duration: time.Millisecond},
			{Step: "ResolveOutputs", Status: "1 output groups resolved", Duration: 2 * time.Millisecond},
		},
		Definition: &entities.FlowConfig{Name: "orders"},
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(true).Format(&buf, sampleResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "orders", decoded["flow"])
	assert.NotContains(t, decoded, "Definition")

	outputs := decoded["outputs"].([]any)
	require.Len(t, outputs, 1)
	alerts := outputs[0].(map[string]any)
	assert.Contains(t, alerts, "bloboutput")
	assert.Contains(t, alerts, "eventhuboutput")
	assert.NotContains(t, alerts, "cosmosdboutput")
	assert.Contains(t, buf.String(), "\n  \"flow\"")
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, sampleResult()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "orders", decoded["flow"])
	assert.Contains(t, buf.String(), "folder: keyvault://kv/orders-output-0123456789abcdef")
}

func TestTableFormatter_Format(t *testing.T) {
	f := NewTableFormatter()
	f.EnableColor = false

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Flow: orders")
	assert.Contains(t, out, "ResolveOutputs")
	assert.Contains(t, out, "blob      keyvault://kv/orders-output-0123456789abcdef")
	assert.Contains(t, out, "eventhub  keyvault://kv/metric (json)")
	assert.NotContains(t, out, "\033[")
}

func TestTableFormatter_NoOutputs(t *testing.T) {
	f := NewTableFormatter()
	f.EnableColor = false
	result := sampleResult()
	result.Outputs = nil

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, result))
	assert.Contains(t, buf.String(), "No outputs resolved.")
}
