package processors

import (
	"context"

	"github.com/Microsoft/data-accelerator/internal/domain/session"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/config"
)

// PortConfigurationSettings copies the global settings into session tokens
// so later steps and the generated config see one consistent snapshot.
type PortConfigurationSettings struct {
	Base
	settings config.Settings
}

// NewPortConfigurationSettings creates the settings step.
func NewPortConfigurationSettings(settings config.Settings) *PortConfigurationSettings {
	return &PortConfigurationSettings{settings: settings}
}

func (p *PortConfigurationSettings) Name() string { return "PortConfigurationSettings" }

func (p *PortConfigurationSettings) Order() int { return 100 }

// Process writes the settings tokens.
func (p *PortConfigurationSettings) Process(_ context.Context, s *session.Session) (string, error) {
	tokens := s.Tokens()
	tokens.SetString(TokenName, s.FlowName())
	tokens.SetString(TokenSessionID, s.ID().String())
	tokens.SetString(TokenExecutionMode, string(p.settings.ExecutionMode))
	tokens.SetString(TokenSparkType, string(p.settings.SparkType))
	if p.settings.RuntimeKeyVaultName != "" {
		tokens.SetString(TokenRuntimeKeyVaultName, p.settings.RuntimeKeyVaultName)
	}
	return StatusDone, nil
}
