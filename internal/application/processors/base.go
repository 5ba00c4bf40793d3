// Package processors contains the deployment pipeline steps. Each step reads
// the tokens and attachments of the steps ordered before it and writes its
// own for the steps that follow.
package processors

import (
	"context"

	"github.com/Microsoft/data-accelerator/internal/domain/entities"
)

// DefaultOrder is the order key of a step that does not declare one.
const DefaultOrder = 600

// Status lines returned by the steps.
const (
	StatusDone       = "done"
	StatusNoGuiInput = "no gui input, skipped"
)

// Token names written to the session.
const (
	TokenName                             = "name"
	TokenSessionID                        = "sessionId"
	TokenExecutionMode                    = "executionMode"
	TokenSparkType                        = "sparkType"
	TokenRuntimeKeyVaultName              = "runtimeKeyVaultName"
	TokenInputType                        = "inputType"
	TokenInputMode                        = "inputMode"
	TokenInputEventHubConnectionStringRef = "inputEventHubConnectionStringRef"
	TokenInputSchemaFilePath              = "inputSchemaFilePath"
	TokenOutputs                          = "outputs"
)

// AttachmentRulesCode is the session attachment holding *entities.RulesCode.
const AttachmentRulesCode = "rulesCode"

// Base supplies the defaults shared by all steps. Embed it and override
// what the step needs.
type Base struct{}

// Order returns DefaultOrder.
func (Base) Order() int {
	return DefaultOrder
}

// HandleSensitiveData returns the definition unchanged.
func (Base) HandleSensitiveData(_ context.Context, gui *entities.FlowGuiConfig) (*entities.FlowGuiConfig, error) {
	return gui, nil
}
