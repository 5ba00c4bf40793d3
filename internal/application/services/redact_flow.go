package services

import (
	"context"
	"log/slog"

	"github.com/Microsoft/data-accelerator/internal/application/dto"
	"github.com/Microsoft/data-accelerator/internal/application/ports"
)

// RedactFlowUseCase runs only the sensitive-data pass over a flow, storing
// its plaintext secrets in the vault and returning the rewritten definition.
type RedactFlowUseCase struct {
	loader    ports.FlowLoader
	validator ports.FlowValidator
	pipeline  ports.Pipeline
	logger    *slog.Logger
}

// NewRedactFlowUseCase creates a new redact use case.
func NewRedactFlowUseCase(loader ports.FlowLoader, validator ports.FlowValidator, pipeline ports.Pipeline, logger *slog.Logger) *RedactFlowUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedactFlowUseCase{
		loader:    loader,
		validator: validator,
		pipeline:  pipeline,
		logger:    logger,
	}
}

// Execute loads, validates and sanitizes the flow.
func (uc *RedactFlowUseCase) Execute(ctx context.Context, req dto.RedactRequest) (*dto.RedactResponse, error) {
	flow, err := loadAndValidate(uc.loader, uc.validator, req.FlowPath)
	if err != nil {
		return nil, err
	}

	sanitized, err := uc.pipeline.Sanitize(ctx, flow)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("flow redacted", "flow", sanitized.Name)
	return &dto.RedactResponse{Flow: sanitized}, nil
}
