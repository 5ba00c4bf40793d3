package processors

import (
	"context"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/application/ports"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
)

// PrepareSchemaFile points the job at the input schema secret in the
// runtime vault.
type PrepareSchemaFile struct {
	Base
	vault ports.SecretVault
}

// NewPrepareSchemaFile creates the schema step.
func NewPrepareSchemaFile(vault ports.SecretVault) *PrepareSchemaFile {
	return &PrepareSchemaFile{vault: vault}
}

func (p *PrepareSchemaFile) Name() string { return "PrepareSchemaFile" }

func (p *PrepareSchemaFile) Order() int { return 500 }

// Process sets the inputSchemaFilePath token.
func (p *PrepareSchemaFile) Process(_ context.Context, s *session.Session) (string, error) {
	if s.Gui() == nil {
		return StatusNoGuiInput, nil
	}

	vaultName, ok := s.Tokens().String(TokenRuntimeKeyVaultName)
	if !ok || vaultName == "" {
		return "", apperrors.NewMissingDependencyError(TokenRuntimeKeyVaultName)
	}

	s.Tokens().SetString(TokenInputSchemaFilePath, p.vault.ComposeURI(vaultName, s.FlowName()+"-inputschemafile"))
	return StatusDone, nil
}
