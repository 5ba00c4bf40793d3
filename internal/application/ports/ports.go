// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/Microsoft/data-accelerator/internal/application/dto"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
)

// Processor is one step of the deployment pipeline.
//
// Steps run once per session in ascending Order. Process returns a short
// status line; an error aborts the session. HandleSensitiveData runs during
// the sensitive-data pass, before any Process call, and returns the rewritten
// definition. It receives a copy it may mutate and must be idempotent.
type Processor interface {
	Name() string
	Order() int
	Process(ctx context.Context, s *session.Session) (string, error)
	HandleSensitiveData(ctx context.Context, gui *entities.FlowGuiConfig) (*entities.FlowGuiConfig, error)
}

// SecretVault stores secrets and resolves secret references.
type SecretVault interface {
	// Resolve returns the plaintext behind reference. Values that are not
	// secret references are returned unchanged.
	Resolve(ctx context.Context, reference string) (string, error)

	// Save stores value and returns its reference. With hashSuffix set, a
	// digest of value is appended to secretName.
	Save(ctx context.Context, vaultName, secretName, value string, hashSuffix bool) (string, error)

	IsSecretRef(value string) bool
	ComposeURI(vaultName, secretName string) string
}

// FlowLoader loads authored flow definitions.
type FlowLoader interface {
	LoadFlow(path string) (*entities.FlowConfig, error)
}

// FlowValidator validates a flow definition against its schema.
type FlowValidator interface {
	Validate(flow *entities.FlowConfig) error
}

// LeakFinding is a plaintext secret found in a sanitized definition.
type LeakFinding struct {
	Path string
	Rule string
}

// LeakScanner looks for plaintext secrets left in a sanitized definition.
type LeakScanner interface {
	ScanFlow(gui *entities.FlowGuiConfig) ([]LeakFinding, error)
}

// Pipeline runs the registered processors against sessions.
type Pipeline interface {
	// Sanitize runs the sensitive-data pass and returns the rewritten flow.
	Sanitize(ctx context.Context, flow *entities.FlowConfig) (*entities.FlowConfig, error)

	// Run executes every step's Process against s.
	Run(ctx context.Context, s *session.Session) error
}

// OutputFormatter renders deployment results.
type OutputFormatter interface {
	Format(w io.Writer, result *dto.DeploymentResult) error
	Extension() string
}

// ArtifactWriter persists generated artifacts by name.
type ArtifactWriter interface {
	Write(ctx context.Context, name string, data []byte) (location string, err error)
}
