package processors

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/application/ports"
	"github.com/Microsoft/data-accelerator/internal/application/services"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
	"github.com/Microsoft/data-accelerator/internal/domain/values"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/config"
)

// ResolveOutputs turns the flow's output declarations into grouped runtime
// sink specs and keeps output connection strings out of the definition.
type ResolveOutputs struct {
	Base
	vault    ports.SecretVault
	settings config.Settings
	resolver *services.OutputResolver
	logger   *slog.Logger
}

// NewResolveOutputs creates the outputs step.
func NewResolveOutputs(vault ports.SecretVault, settings config.Settings, logger *slog.Logger) *ResolveOutputs {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveOutputs{
		vault:    vault,
		settings: settings,
		resolver: services.NewOutputResolver(vault, settings, logger),
		logger:   logger,
	}
}

func (r *ResolveOutputs) Name() string { return "ResolveOutputs" }

// Order shares 500 with PrepareSchemaFile; registration order breaks the tie.
func (r *ResolveOutputs) Order() int { return 500 }

// Process resolves the outputs and sets the outputs token.
func (r *ResolveOutputs) Process(ctx context.Context, s *session.Session) (string, error) {
	gui := s.Gui()
	if gui == nil {
		return StatusNoGuiInput, nil
	}

	code, ok := session.Attachment[*entities.RulesCode](s, AttachmentRulesCode)
	if !ok || code == nil {
		return "", apperrors.NewMissingDependencyError(AttachmentRulesCode)
	}

	specs, err := r.resolver.Resolve(ctx, s.FlowName(), gui.Outputs, code.Outputs)
	if err != nil {
		return "", err
	}

	s.Tokens().SetObject(TokenOutputs, specs)
	return fmt.Sprintf("%d output groups resolved", len(specs)), nil
}

// HandleSensitiveData moves each plaintext output connection string into the
// runtime vault under <flow>-output and replaces it with the reference.
// Local outputs hold a filesystem path and are left alone.
func (r *ResolveOutputs) HandleSensitiveData(ctx context.Context, gui *entities.FlowGuiConfig) (*entities.FlowGuiConfig, error) {
	if gui == nil {
		return gui, nil
	}

	for i := range gui.Outputs {
		out := &gui.Outputs[i]
		if out.Properties == nil || out.Properties.ConnectionString == "" {
			continue
		}
		if t, _ := values.ParseOutputType(out.Type); !t.CarriesConnectionString() {
			continue
		}
		if r.vault.IsSecretRef(out.Properties.ConnectionString) {
			continue
		}

		vaultName, err := r.settings.RequireRuntimeVault()
		if err != nil {
			return nil, apperrors.NewConfigurationError("vault", "cannot redact output "+out.ID, err)
		}

		ref, err := r.vault.Save(ctx, vaultName, gui.Name+"-output", out.Properties.ConnectionString, true)
		if err != nil {
			return nil, err
		}
		out.Properties.ConnectionString = ref
		r.logger.Debug("redacted output connection string", "flow", gui.Name, "output", out.ID, "reference", ref)
	}

	return gui, nil
}
