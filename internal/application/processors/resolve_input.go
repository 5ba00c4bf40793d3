package processors

import (
	"context"
	"log/slog"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/application/ports"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/config"
)

// ResolveInput publishes the flow's input settings and moves the input
// connection string into the runtime vault.
type ResolveInput struct {
	Base
	vault    ports.SecretVault
	settings config.Settings
	logger   *slog.Logger
}

// NewResolveInput creates the input step.
func NewResolveInput(vault ports.SecretVault, settings config.Settings, logger *slog.Logger) *ResolveInput {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveInput{vault: vault, settings: settings, logger: logger}
}

func (r *ResolveInput) Name() string { return "ResolveInput" }

func (r *ResolveInput) Order() int { return 300 }

// Process writes the input tokens.
func (r *ResolveInput) Process(_ context.Context, s *session.Session) (string, error) {
	gui := s.Gui()
	if gui == nil {
		return StatusNoGuiInput, nil
	}
	if gui.Input == nil {
		return StatusDone, nil
	}

	tokens := s.Tokens()
	tokens.SetString(TokenInputType, gui.Input.Type)
	tokens.SetString(TokenInputMode, gui.Input.Mode)
	if gui.Input.Properties != nil && gui.Input.Properties.InputEventHubConnection != "" {
		tokens.SetString(TokenInputEventHubConnectionStringRef, gui.Input.Properties.InputEventHubConnection)
	}
	return StatusDone, nil
}

// HandleSensitiveData stores a plaintext input connection string under
// <flow>-input-eventhubconnectionstring and replaces it with the reference.
func (r *ResolveInput) HandleSensitiveData(ctx context.Context, gui *entities.FlowGuiConfig) (*entities.FlowGuiConfig, error) {
	if gui == nil || gui.Input == nil || gui.Input.Properties == nil {
		return gui, nil
	}

	props := gui.Input.Properties
	if props.InputEventHubConnection == "" || r.vault.IsSecretRef(props.InputEventHubConnection) {
		return gui, nil
	}

	vaultName, err := r.settings.RequireRuntimeVault()
	if err != nil {
		return nil, apperrors.NewConfigurationError("vault", "cannot redact input connection string", err)
	}

	ref, err := r.vault.Save(ctx, vaultName, gui.Name+"-input-eventhubconnectionstring", props.InputEventHubConnection, true)
	if err != nil {
		return nil, err
	}
	props.InputEventHubConnection = ref
	r.logger.Debug("redacted input connection string", "flow", gui.Name, "reference", ref)

	return gui, nil
}
