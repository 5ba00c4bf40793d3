// Package dto contains data transfer objects for application layer use cases.
package dto

// GenerateRequest encapsulates all inputs needed to generate deployment
// configs for one or more flows.
type GenerateRequest struct {
	// FlowPaths are the authored flow definitions to process
	FlowPaths []string

	Options  GenerateOptions
	Metadata RequestMetadata
}

// GenerateOptions controls how sessions are run and what is persisted.
type GenerateOptions struct {
	// Parallel bounds the number of flows processed at once (0 = one per CPU)
	Parallel int

	// PersistDefinition also writes the sanitized flow definition next to
	// the generated config
	PersistDefinition bool
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}

// RedactRequest encapsulates inputs for running only the sensitive-data pass.
type RedactRequest struct {
	FlowPath string
}
