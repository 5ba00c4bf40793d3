// Package engine runs the deployment pipeline: the sensitive-data pass over
// a flow definition, then every step's Process against a session.
package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/application/ports"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/sensitivedata"
)

// Step phases reported in StepError.
const (
	PhaseProcess       = "process"
	PhaseSensitiveData = "sensitive-data"
)

// Pipeline executes registered steps in ascending order key. Steps with
// equal keys keep their registration order.
//
// A Pipeline holds no per-session state and may run many sessions at once.
type Pipeline struct {
	steps    []ports.Processor
	scanner  ports.LeakScanner
	provider ports.SensitiveValueProvider
	metrics  *Metrics
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLeakScanner checks every sanitized definition for leftover secrets.
func WithLeakScanner(s ports.LeakScanner) Option {
	return func(p *Pipeline) {
		p.scanner = s
	}
}

// WithSensitiveValueProvider scrubs tracked secrets from step errors.
func WithSensitiveValueProvider(sp ports.SensitiveValueProvider) Option {
	return func(p *Pipeline) {
		p.provider = sp
	}
}

// WithMetrics records step timings and failures.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// NewPipeline creates a pipeline over steps.
func NewPipeline(steps []ports.Processor, opts ...Option) *Pipeline {
	ordered := slices.Clone(steps)
	slices.SortStableFunc(ordered, func(a, b ports.Processor) int {
		return cmp.Compare(a.Order(), b.Order())
	})

	p := &Pipeline{
		steps:  ordered,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Sanitize runs every step's sensitive-data hook over a copy of flow.
//
// Each hook receives its own copy of the current definition, which replaces
// the current definition only if the hook succeeds. On failure the last good
// definition is returned together with the error. The input flow is never
// modified.
func (p *Pipeline) Sanitize(ctx context.Context, flow *entities.FlowConfig) (*entities.FlowConfig, error) {
	out := flow.Clone()
	if out == nil || out.Gui == nil {
		return out, nil
	}

	logger := p.logger.With("flow", out.Name)
	current := out.Gui

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			out.Gui = current
			return out, err
		}

		next, err := step.HandleSensitiveData(ctx, current.Clone())
		if err != nil {
			logger.Error("sensitive data handling failed", "step", step.Name(), "error", sensitivedata.SafeError(err, p.provider))
			out.Gui = current
			return out, p.stepError(step.Name(), PhaseSensitiveData, err)
		}
		if next != nil {
			current = next
		}
	}
	out.Gui = current

	if p.scanner != nil {
		findings, err := p.scanner.ScanFlow(out.Gui)
		if err != nil {
			return out, fmt.Errorf("scanning sanitized flow: %w", err)
		}
		if len(findings) > 0 {
			return out, leakError(out.Name, findings)
		}
	}

	logger.Debug("flow sanitized", "steps", len(p.steps))
	return out, nil
}

// Run executes every step's Process against s, stopping at the first error.
// Each step's status line is recorded on the session.
func (p *Pipeline) Run(ctx context.Context, s *session.Session) error {
	logger := p.logger.With("flow", s.FlowName(), "session_id", s.ID().String())

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.metrics.observeSession("canceled")
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("session timed out before step %s: %w", step.Name(), err)
			}
			return err
		}

		logger.Debug("running step", "step", step.Name(), "order", step.Order())
		start := time.Now()
		status, err := step.Process(ctx, s)
		elapsed := time.Since(start)
		p.metrics.observeStep(step.Name(), elapsed, err != nil)

		if err != nil {
			s.AddStatus(step.Name(), "failed", elapsed)
			p.metrics.observeSession("failed")
			stepErr := p.stepError(step.Name(), PhaseProcess, err)
			logger.Error("step failed", "step", step.Name(), "error", stepErr)
			return stepErr
		}

		s.AddStatus(step.Name(), status, elapsed)
		logger.Debug("step done", "step", step.Name(), "status", status, "duration", elapsed)
	}

	p.metrics.observeSession("succeeded")
	return nil
}

func (p *Pipeline) stepError(step, phase string, cause error) error {
	return sensitivedata.SafeError(apperrors.NewStepError(step, phase, cause), p.provider)
}

func leakError(flowName string, findings []ports.LeakFinding) error {
	details := make([]string, len(findings))
	for i, f := range findings {
		details[i] = fmt.Sprintf("%s (%s)", f.Path, f.Rule)
	}
	return &apperrors.ValidationError{
		Field:   "flow " + flowName,
		Message: apperrors.ErrPlaintextSecret.Error(),
		Details: details,
		Cause:   apperrors.ErrPlaintextSecret,
	}
}
