package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/application/ports"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/sensitivedata"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStep appends its name to a shared log when it runs.
type recordingStep struct {
	name      string
	order     int
	log       *[]string
	err       error
	hookErr   error
	rewriteTo string // connection string written by the hook
}

func (r *recordingStep) Name() string { return r.name }
func (r *recordingStep) Order() int   { return r.order }

func (r *recordingStep) Process(_ context.Context, s *session.Session) (string, error) {
	*r.log = append(*r.log, r.name)
	if r.err != nil {
		return "", r.err
	}
	s.Tokens().SetString(r.name, "ran")
	return "done", nil
}

func (r *recordingStep) HandleSensitiveData(_ context.Context, gui *entities.FlowGuiConfig) (*entities.FlowGuiConfig, error) {
	*r.log = append(*r.log, "hook:"+r.name)
	if r.rewriteTo != "" {
		for i := range gui.Outputs {
			gui.Outputs[i].Properties.ConnectionString = r.rewriteTo
		}
	}
	if r.hookErr != nil {
		return nil, r.hookErr
	}
	return gui, nil
}

type fakeScanner struct {
	findings []ports.LeakFinding
}

func (f fakeScanner) ScanFlow(*entities.FlowGuiConfig) ([]ports.LeakFinding, error) {
	return f.findings, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFlow() *entities.FlowConfig {
	return &entities.FlowConfig{
		Name: "orders",
		Gui: &entities.FlowGuiConfig{
			Name: "orders",
			Outputs: []entities.FlowGuiOutput{
				{ID: "o1", Type: "blob", Properties: &entities.OutputProperties{ConnectionString: "AccountKey=plain"}},
			},
		},
	}
}

func TestPipeline_RunOrdersStepsStably(t *testing.T) {
	var log []string
	steps := []ports.Processor{
		&recordingStep{name: "outputs", order: 500, log: &log},
		&recordingStep{name: "settings", order: 100, log: &log},
		&recordingStep{name: "default", order: 600, log: &log},
		&recordingStep{name: "schema", order: 500, log: &log},
		&recordingStep{name: "rules", order: 400, log: &log},
	}
	p := NewPipeline(steps, WithLogger(quietLogger()))

	assert.Equal(t, []string{"settings", "rules", "outputs", "schema", "default"}, p.StepNames())

	s := session.New(testFlow())
	require.NoError(t, p.Run(context.Background(), s))

	assert.Equal(t, []string{"settings", "rules", "outputs", "schema", "default"}, log)
	assert.Equal(t, "settings: done\nrules: done\noutputs: done\nschema: done\ndefault: done", s.StatusText())
	assert.Equal(t, 5, s.Tokens().Len())
}

func TestPipeline_RunFailFast(t *testing.T) {
	var log []string
	boom := apperrors.NewMissingDependencyError("RulesCode")
	metrics := NewMetrics()
	p := NewPipeline([]ports.Processor{
		&recordingStep{name: "first", order: 100, log: &log},
		&recordingStep{name: "broken", order: 200, log: &log, err: boom},
		&recordingStep{name: "never", order: 300, log: &log},
	}, WithLogger(quietLogger()), WithMetrics(metrics))

	s := session.New(testFlow())
	err := p.Run(context.Background(), s)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingDependency)
	var stepErr *apperrors.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "broken", stepErr.Step)

	assert.Equal(t, []string{"first", "broken"}, log)
	assert.Equal(t, "first: done\nbroken: failed", s.StatusText())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.stepFailures.WithLabelValues("broken")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.stepFailures.WithLabelValues("first")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.sessions.WithLabelValues("failed")))
}

func TestPipeline_RunScrubsErrors(t *testing.T) {
	provider := sensitivedata.NewProvider()
	provider.Track("AccountKey=s3cr3t")

	var log []string
	p := NewPipeline([]ports.Processor{
		&recordingStep{name: "leaky", order: 100, log: &log, err: errors.New("bad value AccountKey=s3cr3t")},
	}, WithLogger(quietLogger()), WithSensitiveValueProvider(provider))

	err := p.Run(context.Background(), session.New(testFlow()))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cr3t")
	assert.Contains(t, err.Error(), "[REDACTED]")
}

func TestPipeline_RunCanceled(t *testing.T) {
	var log []string
	p := NewPipeline([]ports.Processor{&recordingStep{name: "a", order: 1, log: &log}}, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, session.New(testFlow()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, log)
}

func TestPipeline_Sanitize(t *testing.T) {
	var log []string
	p := NewPipeline([]ports.Processor{
		&recordingStep{name: "outputs", order: 500, log: &log, rewriteTo: "keyvault://kv/orders-output-0123456789abcdef"},
		&recordingStep{name: "settings", order: 100, log: &log},
	}, WithLogger(quietLogger()))

	original := testFlow()
	sanitized, err := p.Sanitize(context.Background(), original)
	require.NoError(t, err)

	assert.Equal(t, []string{"hook:settings", "hook:outputs"}, log)
	assert.Equal(t, "keyvault://kv/orders-output-0123456789abcdef", sanitized.Gui.Outputs[0].Properties.ConnectionString)
	assert.Equal(t, "AccountKey=plain", original.Gui.Outputs[0].Properties.ConnectionString, "input is not modified")
}

func TestPipeline_SanitizeFailureKeepsLastGoodDefinition(t *testing.T) {
	var log []string
	p := NewPipeline([]ports.Processor{
		&recordingStep{name: "good", order: 100, log: &log, rewriteTo: "keyvault://kv/good"},
		&recordingStep{name: "half", order: 200, log: &log, rewriteTo: "keyvault://kv/half", hookErr: errors.New("vault down")},
		&recordingStep{name: "never", order: 300, log: &log},
	}, WithLogger(quietLogger()))

	sanitized, err := p.Sanitize(context.Background(), testFlow())
	require.Error(t, err)

	var stepErr *apperrors.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "half", stepErr.Step)
	assert.Equal(t, PhaseSensitiveData, stepErr.Phase)

	assert.Equal(t, "keyvault://kv/good", sanitized.Gui.Outputs[0].Properties.ConnectionString)
	assert.Equal(t, []string{"hook:good", "hook:half"}, log)
}

func TestPipeline_SanitizeLeakScan(t *testing.T) {
	var log []string
	scanner := fakeScanner{findings: []ports.LeakFinding{{Path: "outputs[0].properties.connectionString", Rule: "azure-storage-account-key"}}}
	p := NewPipeline([]ports.Processor{&recordingStep{name: "noop", order: 1, log: &log}},
		WithLogger(quietLogger()), WithLeakScanner(scanner))

	_, err := p.Sanitize(context.Background(), testFlow())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPlaintextSecret)

	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{"outputs[0].properties.connectionString (azure-storage-account-key)"}, vErr.Details)
}

func TestPipeline_SanitizeWithoutGui(t *testing.T) {
	var log []string
	p := NewPipeline([]ports.Processor{&recordingStep{name: "a", order: 1, log: &log}}, WithLogger(quietLogger()))

	out, err := p.Sanitize(context.Background(), &entities.FlowConfig{Name: "bare"})
	require.NoError(t, err)
	assert.Equal(t, "bare", out.Name)
	assert.Empty(t, log)
}
