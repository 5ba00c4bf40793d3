package processors

import (
	"log/slog"

	"github.com/Microsoft/data-accelerator/internal/application/ports"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/config"
)

// DefaultSteps returns the standard deployment steps in registration order.
func DefaultSteps(vault ports.SecretVault, settings config.Settings, logger *slog.Logger) []ports.Processor {
	return []ports.Processor{
		NewPortConfigurationSettings(settings),
		NewResolveInput(vault, settings, logger),
		NewGenerateRulesCode(),
		NewPrepareSchemaFile(vault),
		NewResolveOutputs(vault, settings, logger),
	}
}
