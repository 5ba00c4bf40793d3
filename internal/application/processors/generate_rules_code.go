package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/session"
)

// GenerateRulesCode compiles the flow's rule conditions and derives the
// rule-output pairs the output resolver groups.
type GenerateRulesCode struct {
	Base
}

// NewGenerateRulesCode creates the rules step.
func NewGenerateRulesCode() *GenerateRulesCode {
	return &GenerateRulesCode{}
}

func (g *GenerateRulesCode) Name() string { return "GenerateRulesCode" }

func (g *GenerateRulesCode) Order() int { return 400 }

// Process attaches the compiled RulesCode.
func (g *GenerateRulesCode) Process(_ context.Context, s *session.Session) (string, error) {
	gui := s.Gui()
	if gui == nil {
		return StatusNoGuiInput, nil
	}

	code, err := CompileRules(gui.Rules)
	if err != nil {
		return "", err
	}

	s.Attach(AttachmentRulesCode, code)
	return fmt.Sprintf("%d rules compiled", len(code.Rules)), nil
}

// CompileRules checks every rule condition and lists, per rule, one pair for
// each sink under the rule's target groups. Conditions are compiled without
// an environment: field names are only known to the runtime.
func CompileRules(rules []entities.FlowGuiRule) (*entities.RulesCode, error) {
	code := &entities.RulesCode{}

	for _, rule := range rules {
		if rule.Properties == nil {
			continue
		}
		props := rule.Properties

		condition := strings.TrimSpace(props.Condition)
		if condition != "" {
			if _, err := expr.Compile(condition, expr.AsBool(), expr.AllowUndefinedVariables()); err != nil {
				return nil, apperrors.NewValidationError(
					fmt.Sprintf("rules[%s].condition", rule.ID),
					"invalid condition",
					err.Error(),
				)
			}
		}

		code.Rules = append(code.Rules, entities.CompiledRule{
			ID:        rule.ID,
			Condition: condition,
			IsAlert:   props.IsAlert,
		})

		if strings.TrimSpace(props.Target) == "" {
			continue
		}
		for _, sink := range props.Sinks {
			code.Outputs = append(code.Outputs, entities.RuleOutput{Groups: props.Target, OutputID: sink})
		}
	}

	return code, nil
}
