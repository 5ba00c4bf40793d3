package processors

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
	"github.com/Microsoft/data-accelerator/internal/domain/values"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/config"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() config.Settings {
	s := config.Settings{
		ExecutionMode:               values.ExecutionModeCloud,
		RuntimeKeyVaultName:         "kv",
		MetricEventHubConnectionKey: "metric-eventhubconnectionstring",
	}
	s.ApplyDefaults()
	return s
}

func newTestVault() *vault.Client {
	return vault.NewClient(vault.NewMemoryStore(), vault.SchemeKeyVault)
}

func TestBase_Defaults(t *testing.T) {
	var b Base
	assert.Equal(t, DefaultOrder, b.Order())

	gui := &entities.FlowGuiConfig{Name: "orders"}
	got, err := b.HandleSensitiveData(context.Background(), gui)
	require.NoError(t, err)
	assert.Same(t, gui, got)
}

func TestDefaultSteps_Order(t *testing.T) {
	steps := DefaultSteps(newTestVault(), testSettings(), discardLogger())

	names := make([]string, len(steps))
	orders := make([]int, len(steps))
	for i, s := range steps {
		names[i] = s.Name()
		orders[i] = s.Order()
	}

	assert.Equal(t, []string{"PortConfigurationSettings", "ResolveInput", "GenerateRulesCode", "PrepareSchemaFile", "ResolveOutputs"}, names)
	assert.Equal(t, []int{100, 300, 400, 500, 500}, orders)
}

func TestPortConfigurationSettings(t *testing.T) {
	tests := []struct {
		name      string
		settings  config.Settings
		wantVault bool
	}{
		{name: "with runtime vault", settings: testSettings(), wantVault: true},
		{name: "without runtime vault", settings: config.Settings{ExecutionMode: values.ExecutionModeLocal, SparkType: values.SparkTypeDatabricks}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.New(&entities.FlowConfig{Name: "orders"})
			status, err := NewPortConfigurationSettings(tt.settings).Process(context.Background(), s)
			require.NoError(t, err)
			assert.Equal(t, StatusDone, status)

			tokens := s.Tokens()
			name, _ := tokens.String(TokenName)
			assert.Equal(t, "orders", name)
			id, _ := tokens.String(TokenSessionID)
			assert.Equal(t, s.ID().String(), id)
			mode, _ := tokens.String(TokenExecutionMode)
			assert.Equal(t, string(tt.settings.ExecutionMode), mode)
			sparkType, _ := tokens.String(TokenSparkType)
			assert.Equal(t, string(tt.settings.SparkType), sparkType)

			_, ok := tokens.String(TokenRuntimeKeyVaultName)
			assert.Equal(t, tt.wantVault, ok)
		})
	}
}

func TestResolveInput_HandleSensitiveData(t *testing.T) {
	ctx := context.Background()
	client := newTestVault()
	step := NewResolveInput(client, testSettings(), discardLogger())

	gui := &entities.FlowGuiConfig{
		Name: "orders",
		Input: &entities.FlowGuiInput{
			Type:       "eventhub",
			Properties: &entities.FlowGuiInputProperties{InputEventHubConnection: "Endpoint=sb://ns/;SharedAccessKey=abc"},
		},
	}

	got, err := step.HandleSensitiveData(ctx, gui)
	require.NoError(t, err)
	ref := got.Input.Properties.InputEventHubConnection
	assert.True(t, strings.HasPrefix(ref, "keyvault://kv/orders-input-eventhubconnectionstring-"))

	plain, err := client.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "Endpoint=sb://ns/;SharedAccessKey=abc", plain)

	again, err := step.HandleSensitiveData(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, ref, again.Input.Properties.InputEventHubConnection)
}

func TestResolveInput_RequiresVaultToRedact(t *testing.T) {
	settings := testSettings()
	settings.RuntimeKeyVaultName = ""
	step := NewResolveInput(newTestVault(), settings, discardLogger())

	gui := &entities.FlowGuiConfig{
		Name:  "orders",
		Input: &entities.FlowGuiInput{Properties: &entities.FlowGuiInputProperties{InputEventHubConnection: "Endpoint=sb://ns/"}},
	}
	_, err := step.HandleSensitiveData(context.Background(), gui)
	var cfgErr *apperrors.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	noInput := &entities.FlowGuiConfig{Name: "orders"}
	got, err := step.HandleSensitiveData(context.Background(), noInput)
	require.NoError(t, err)
	assert.Same(t, noInput, got)
}

func TestResolveInput_Process(t *testing.T) {
	step := NewResolveInput(newTestVault(), testSettings(), discardLogger())

	s := session.New(&entities.FlowConfig{Name: "orders"})
	status, err := step.Process(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, StatusNoGuiInput, status)

	s = session.New(&entities.FlowConfig{Name: "orders", Gui: &entities.FlowGuiConfig{
		Name: "orders",
		Input: &entities.FlowGuiInput{
			Mode:       "streaming",
			Type:       "eventhub",
			Properties: &entities.FlowGuiInputProperties{InputEventHubConnection: "keyvault://kv/orders-input"},
		},
	}})
	status, err = step.Process(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, status)

	inputType, _ := s.Tokens().String(TokenInputType)
	assert.Equal(t, "eventhub", inputType)
	mode, _ := s.Tokens().String(TokenInputMode)
	assert.Equal(t, "streaming", mode)
	ref, _ := s.Tokens().String(TokenInputEventHubConnectionStringRef)
	assert.Equal(t, "keyvault://kv/orders-input", ref)
}

func TestCompileRules(t *testing.T) {
	rules := []entities.FlowGuiRule{
		{ID: "r1", Properties: &entities.RuleProperties{Condition: "amount > 100 && region == 'eu'", Target: "alerts, audit", Sinks: []string{"o1", "o2"}, IsAlert: true}},
		{ID: "r2", Properties: &entities.RuleProperties{Target: "audit", Sinks: []string{"o2"}}},
		{ID: "r3", Properties: &entities.RuleProperties{Condition: "true", Sinks: []string{"o3"}}},
		{ID: "r4"},
	}

	code, err := CompileRules(rules)
	require.NoError(t, err)

	require.Len(t, code.Rules, 3)
	assert.Equal(t, entities.CompiledRule{ID: "r1", Condition: "amount > 100 && region == 'eu'", IsAlert: true}, code.Rules[0])
	assert.Equal(t, []entities.RuleOutput{
		{Groups: "alerts, audit", OutputID: "o1"},
		{Groups: "alerts, audit", OutputID: "o2"},
		{Groups: "audit", OutputID: "o2"},
	}, code.Outputs)
}

func TestCompileRules_InvalidCondition(t *testing.T) {
	_, err := CompileRules([]entities.FlowGuiRule{
		{ID: "bad", Properties: &entities.RuleProperties{Condition: "amount >"}},
	})

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "rules[bad].condition", vErr.Field)
	assert.Equal(t, "invalid condition", vErr.Message)
	assert.NotEmpty(t, vErr.Details)
}

func TestGenerateRulesCode_Process(t *testing.T) {
	s := session.New(&entities.FlowConfig{Name: "orders", Gui: &entities.FlowGuiConfig{
		Rules: []entities.FlowGuiRule{{ID: "r1", Properties: &entities.RuleProperties{Target: "g", Sinks: []string{"o1"}}}},
	}})

	status, err := NewGenerateRulesCode().Process(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "1 rules compiled", status)

	code, ok := session.Attachment[*entities.RulesCode](s, AttachmentRulesCode)
	require.True(t, ok)
	assert.Len(t, code.Outputs, 1)
}

func TestPrepareSchemaFile(t *testing.T) {
	step := NewPrepareSchemaFile(newTestVault())

	s := session.New(&entities.FlowConfig{Name: "orders", Gui: &entities.FlowGuiConfig{Name: "orders"}})
	_, err := step.Process(context.Background(), s)
	assert.ErrorIs(t, err, apperrors.ErrMissingDependency)

	s.Tokens().SetString(TokenRuntimeKeyVaultName, "kv")
	status, err := step.Process(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, status)

	path, _ := s.Tokens().String(TokenInputSchemaFilePath)
	assert.Equal(t, "keyvault://kv/orders-inputschemafile", path)

	noGui := session.New(&entities.FlowConfig{Name: "orders"})
	status, err = step.Process(context.Background(), noGui)
	require.NoError(t, err)
	assert.Equal(t, StatusNoGuiInput, status)
}

func TestPrepareSchemaFile_SecretScope(t *testing.T) {
	step := NewPrepareSchemaFile(vault.NewClient(vault.NewMemoryStore(), vault.SchemeSecretScope))

	s := session.New(&entities.FlowConfig{Name: "orders", Gui: &entities.FlowGuiConfig{Name: "orders"}})
	s.Tokens().SetString(TokenRuntimeKeyVaultName, "scope")
	_, err := step.Process(context.Background(), s)
	require.NoError(t, err)

	path, _ := s.Tokens().String(TokenInputSchemaFilePath)
	assert.Equal(t, "secretscope://scope/orders-inputschemafile", path)
}

func TestResolveOutputs_RequiresRulesCode(t *testing.T) {
	step := NewResolveOutputs(newTestVault(), testSettings(), discardLogger())
	s := session.New(&entities.FlowConfig{Name: "orders", Gui: &entities.FlowGuiConfig{Name: "orders"}})

	_, err := step.Process(context.Background(), s)
	assert.ErrorIs(t, err, apperrors.ErrMissingDependency)
}

func TestResolveOutputs_HandleSensitiveData(t *testing.T) {
	ctx := context.Background()
	client := newTestVault()
	step := NewResolveOutputs(client, testSettings(), discardLogger())

	gui := &entities.FlowGuiConfig{
		Name: "orders",
		Outputs: []entities.FlowGuiOutput{
			{ID: "cosmos", Type: "cosmosdb", Properties: &entities.OutputProperties{ConnectionString: "AccountEndpoint=https://x;AccountKey=abc;"}},
			{ID: "hub", Type: "eventhub", Properties: &entities.OutputProperties{ConnectionString: "keyvault://kv/existing"}},
			{ID: "disk", Type: "local", Properties: &entities.OutputProperties{ConnectionString: "/tmp/out"}},
			{ID: "empty", Type: "blob", Properties: &entities.OutputProperties{}},
			{ID: "metric", Type: "metric"},
		},
	}

	got, err := step.HandleSensitiveData(ctx, gui)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got.Outputs[0].Properties.ConnectionString, "keyvault://kv/orders-output-"))
	assert.Equal(t, "keyvault://kv/existing", got.Outputs[1].Properties.ConnectionString)
	assert.Equal(t, "/tmp/out", got.Outputs[2].Properties.ConnectionString)
	assert.Empty(t, got.Outputs[3].Properties.ConnectionString)
	assert.Nil(t, got.Outputs[4].Properties)

	plain, err := client.Resolve(ctx, got.Outputs[0].Properties.ConnectionString)
	require.NoError(t, err)
	assert.Equal(t, "AccountEndpoint=https://x;AccountKey=abc;", plain)
}
