// Package validation checks authored flow definitions against the embedded
// flow JSON Schema before a session is started.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed flow.schema.json
var flowSchema []byte

const flowSchemaURL = "flow.schema.json"

// FlowValidator validates flows against the flow schema.
// The compiled schema is read-only and safe for concurrent use.
type FlowValidator struct {
	schema *jsonschema.Schema
}

// NewFlowValidator compiles the embedded flow schema.
func NewFlowValidator() (*FlowValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(flowSchemaURL, bytes.NewReader(flowSchema)); err != nil {
		return nil, fmt.Errorf("failed to add flow schema resource: %w", err)
	}

	schema, err := compiler.Compile(flowSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile flow schema: %w", err)
	}

	return &FlowValidator{schema: schema}, nil
}

// Validate checks flow against the schema and its structural invariants.
func (v *FlowValidator) Validate(flow *entities.FlowConfig) error {
	if flow == nil {
		return apperrors.NewValidationError("flow", "definition is empty")
	}

	// The schema validates JSON values, so go through the wire form.
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to encode flow for validation: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode flow for validation: %w", err)
	}

	if err := v.schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return formatSchemaValidationError(flow.Name, validationErr)
		}
		return fmt.Errorf("flow validation failed: %w", err)
	}

	if err := flow.Validate(); err != nil {
		return apperrors.NewValidationError("flow", err.Error())
	}

	return nil
}

// formatSchemaValidationError flattens the error tree into one detail per
// failing location.
func formatSchemaValidationError(flowName string, err *jsonschema.ValidationError) error {
	var details []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			details = append(details, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)
	sort.Strings(details)

	field := "flow"
	if flowName != "" {
		field = "flow " + flowName
	}
	return apperrors.NewValidationError(field, "schema violation", details...)
}
