package dto

import (
	"time"

	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
)

// DeploymentResult is the outcome of one session: the token table the
// deployment templates are filled from, plus the step log.
type DeploymentResult struct {
	Flow      string                    `json:"flow" yaml:"flow"`
	SessionID string                    `json:"sessionId" yaml:"sessionId"`
	Tokens    map[string]any            `json:"tokens" yaml:"tokens"`
	Outputs   []entities.FlowOutputSpec `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Steps     []session.StepStatus      `json:"steps" yaml:"steps"`

	// Definition is the sanitized flow, safe to persist.
	Definition *entities.FlowConfig `json:"-" yaml:"-"`
}

// FlowFailure records a flow whose session aborted.
type FlowFailure struct {
	Path  string
	Error error
}

// GenerateResponse contains the results of a generate request.
type GenerateResponse struct {
	// Results holds one entry per successful flow, in request order
	Results []DeploymentResult

	// Failures holds one entry per failed flow, in request order
	Failures []FlowFailure

	// Written lists the locations of persisted artifacts
	Written []string

	Metadata ResponseMetadata
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// RedactResponse contains the sanitized flow definition.
type RedactResponse struct {
	Flow *entities.FlowConfig
}
