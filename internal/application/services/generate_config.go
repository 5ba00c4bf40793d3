package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/goccy/go-yaml"
	"golang.org/x/sync/errgroup"

	"github.com/Microsoft/data-accelerator/internal/application/dto"
	"github.com/Microsoft/data-accelerator/internal/application/ports"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
)

// GenerateConfigUseCase turns authored flows into deployment results.
// Each flow gets its own session; sessions run in parallel and a failing
// flow does not stop the others.
type GenerateConfigUseCase struct {
	loader    ports.FlowLoader
	validator ports.FlowValidator
	pipeline  ports.Pipeline
	formatter ports.OutputFormatter
	writer    ports.ArtifactWriter
	logger    *slog.Logger
}

// NewGenerateConfigUseCase creates a new generate use case. validator and
// writer may be nil; without a writer nothing is persisted.
func NewGenerateConfigUseCase(
	loader ports.FlowLoader,
	validator ports.FlowValidator,
	pipeline ports.Pipeline,
	formatter ports.OutputFormatter,
	writer ports.ArtifactWriter,
	logger *slog.Logger,
) *GenerateConfigUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerateConfigUseCase{
		loader:    loader,
		validator: validator,
		pipeline:  pipeline,
		formatter: formatter,
		writer:    writer,
		logger:    logger,
	}
}

// Execute runs one session per flow path. The response always lists every
// flow, either as a result or as a failure; the returned error joins the
// failures.
func (uc *GenerateConfigUseCase) Execute(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, error) {
	startTime := time.Now()

	limit := req.Options.Parallel
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := make([]*dto.DeploymentResult, len(req.FlowPaths))
	errs := make([]error, len(req.FlowPaths))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range req.FlowPaths {
		g.Go(func() error {
			results[i], errs[i] = uc.generate(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	resp := &dto.GenerateResponse{
		Metadata: dto.ResponseMetadata{
			RequestID:   req.Metadata.RequestID,
			ProcessedAt: startTime,
		},
	}

	var failed []error
	for i, path := range req.FlowPaths {
		if errs[i] != nil {
			uc.logger.Error("flow failed", "path", path, "error", errs[i])
			resp.Failures = append(resp.Failures, dto.FlowFailure{Path: path, Error: errs[i]})
			failed = append(failed, fmt.Errorf("%s: %w", path, errs[i]))
			continue
		}
		resp.Results = append(resp.Results, *results[i])
	}

	if uc.writer != nil {
		for i := range resp.Results {
			written, err := uc.persist(ctx, &resp.Results[i], req.Options.PersistDefinition)
			resp.Written = append(resp.Written, written...)
			if err != nil {
				failed = append(failed, fmt.Errorf("persisting %s: %w", resp.Results[i].Flow, err))
			}
		}
	}

	resp.Metadata.Duration = time.Since(startTime)
	uc.logger.Info("generation complete",
		"flows", len(req.FlowPaths),
		"succeeded", len(resp.Results),
		"failed", len(resp.Failures),
		"duration", resp.Metadata.Duration)

	return resp, errors.Join(failed...)
}

func (uc *GenerateConfigUseCase) generate(ctx context.Context, path string) (*dto.DeploymentResult, error) {
	flow, err := loadAndValidate(uc.loader, uc.validator, path)
	if err != nil {
		return nil, err
	}

	sanitized, err := uc.pipeline.Sanitize(ctx, flow)
	if err != nil {
		return nil, err
	}

	s := session.New(sanitized)
	uc.logger.Debug("session started", "flow", s.FlowName(), "session_id", s.ID().String())

	if err := uc.pipeline.Run(ctx, s); err != nil {
		return nil, err
	}

	return newDeploymentResult(s), nil
}

func (uc *GenerateConfigUseCase) persist(ctx context.Context, result *dto.DeploymentResult, withDefinition bool) ([]string, error) {
	var buf bytes.Buffer
	if err := uc.formatter.Format(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to format result: %w", err)
	}

	location, err := uc.writer.Write(ctx, result.Flow+".config."+uc.formatter.Extension(), buf.Bytes())
	if err != nil {
		return nil, err
	}
	written := []string{location}

	if withDefinition && result.Definition != nil {
		data, err := yaml.Marshal(result.Definition)
		if err != nil {
			return written, fmt.Errorf("failed to encode definition: %w", err)
		}
		location, err := uc.writer.Write(ctx, result.Flow+".flow.yaml", data)
		if err != nil {
			return written, err
		}
		written = append(written, location)
	}

	return written, nil
}

// newDeploymentResult extracts the token table of a finished session. The
// resolved output groups are lifted out of the tokens into Outputs.
func newDeploymentResult(s *session.Session) *dto.DeploymentResult {
	tokens := s.Tokens().Snapshot()

	var outputs []entities.FlowOutputSpec
	for name, value := range tokens {
		if specs, ok := value.([]entities.FlowOutputSpec); ok {
			outputs = specs
			delete(tokens, name)
		}
	}

	return &dto.DeploymentResult{
		Flow:       s.FlowName(),
		SessionID:  s.ID().String(),
		Tokens:     tokens,
		Outputs:    outputs,
		Steps:      s.Statuses(),
		Definition: s.Flow(),
	}
}

func loadAndValidate(loader ports.FlowLoader, validator ports.FlowValidator, path string) (*entities.FlowConfig, error) {
	flow, err := loader.LoadFlow(path)
	if err != nil {
		return nil, err
	}
	if validator != nil {
		if err := validator.Validate(flow); err != nil {
			return nil, err
		}
	}
	return flow, nil
}
