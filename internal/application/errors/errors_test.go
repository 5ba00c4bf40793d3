package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("outputs[0].type", "unknown type")
	assert.Equal(t, "validation failed: outputs[0].type: unknown type", err.Error())

	withDetails := NewValidationError("flow", "schema violation", "a", "b")
	assert.Equal(t, "validation failed: flow: schema violation (2 issues)", withDetails.Error())
}

func TestNotSupportedError_Is(t *testing.T) {
	err := fmt.Errorf("resolving outputs: %w", NewNotSupportedError("alerts", "Multiple target cosmosDB output for same dataset not supported"))

	assert.ErrorIs(t, err, ErrNotSupported)
	assert.NotErrorIs(t, err, ErrMissingDependency)

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "alerts", vErr.Field)
}

func TestMissingDependencyError(t *testing.T) {
	err := NewMissingDependencyError("runtimeKeyVaultName")
	assert.ErrorIs(t, err, ErrMissingDependency)
	assert.Contains(t, err.Error(), "runtimeKeyVaultName")
}

func TestStepError_UnwrapChain(t *testing.T) {
	vaultErr := NewVaultError("resolve", "keyvault://kv/missing", ErrSecretNotFound)
	err := NewStepError("ResolveOutputs", "process", vaultErr)

	assert.ErrorIs(t, err, ErrSecretNotFound)
	assert.Equal(t, "step ResolveOutputs failed: vault resolve keyvault://kv/missing: secret not found", err.Error())

	sensitive := NewStepError("ResolveOutputs", "sensitive-data", vaultErr)
	assert.Contains(t, sensitive.Error(), "(sensitive-data)")
}

func TestConfigurationError(t *testing.T) {
	cause := errors.New("boom")
	err := NewConfigurationError("vault", "cannot open store", cause)
	assert.Equal(t, "configuration error (vault): cannot open store: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	noCause := NewConfigurationError("metrics", "metric_eventhub_connection_key is not set", nil)
	assert.Equal(t, "configuration error (metrics): metric_eventhub_connection_key is not set", noCause.Error())
}
