// Package entities contains domain entities for the DataX config generator.
// These are pure domain types with NO infrastructure dependencies.
package entities

import (
	"fmt"
	"strings"
)

// FlowConfig is one authored streaming-pipeline definition.
// This is the aggregate root handed to a deployment session.
//
// Invariants Enforced (Validate):
// - Name is required
// - Output IDs are unique and non-empty
// - Rule IDs are unique and non-empty
type FlowConfig struct {
	Name        string         `json:"name" yaml:"name"`
	DisplayName string         `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Gui         *FlowGuiConfig `json:"gui,omitempty" yaml:"gui,omitempty"`
}

// FlowGuiConfig is the authored (UI) section of a flow.
// It is the part of the definition the sensitive-data pass rewrites.
type FlowGuiConfig struct {
	Name        string          `json:"name" yaml:"name"`
	DisplayName string          `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Input       *FlowGuiInput   `json:"input,omitempty" yaml:"input,omitempty"`
	Rules       []FlowGuiRule   `json:"rules,omitempty" yaml:"rules,omitempty"`
	Outputs     []FlowGuiOutput `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// FlowGuiInput describes the streaming source of a flow.
type FlowGuiInput struct {
	Mode       string                  `json:"mode,omitempty" yaml:"mode,omitempty"`
	Type       string                  `json:"type,omitempty" yaml:"type,omitempty"`
	Properties *FlowGuiInputProperties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// FlowGuiInputProperties holds the source connection settings.
type FlowGuiInputProperties struct {
	InputEventHubConnection string `json:"inputEventhubConnection,omitempty" yaml:"inputEventhubConnection,omitempty"`
	InputSchemaFile         string `json:"inputSchemaFile,omitempty" yaml:"inputSchemaFile,omitempty"`
	WindowDuration          string `json:"windowDuration,omitempty" yaml:"windowDuration,omitempty"`
}

// FlowGuiRule is one authored rule. A rule sends matching events to the
// outputs listed in Sinks, under the comma-separated group names in Target.
type FlowGuiRule struct {
	ID         string          `json:"id" yaml:"id"`
	Type       string          `json:"type,omitempty" yaml:"type,omitempty"`
	Properties *RuleProperties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// RuleProperties holds the authored rule body.
type RuleProperties struct {
	Description string   `json:"ruleDescription,omitempty" yaml:"ruleDescription,omitempty"`
	Condition   string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Target      string   `json:"target,omitempty" yaml:"target,omitempty"`
	Sinks       []string `json:"sinks,omitempty" yaml:"sinks,omitempty"`
	IsAlert     bool     `json:"isAlert,omitempty" yaml:"isAlert,omitempty"`
}

// FlowGuiOutput is one authored sink declaration.
type FlowGuiOutput struct {
	ID         string            `json:"id" yaml:"id"`
	Type       string            `json:"type" yaml:"type"`
	Properties *OutputProperties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// OutputProperties holds the type-specific sink settings.
// ConnectionString is the only field the sensitive-data pass rewrites.
type OutputProperties struct {
	ConnectionString string `json:"connectionString,omitempty" yaml:"connectionString,omitempty"`
	ContainerName    string `json:"containerName,omitempty" yaml:"containerName,omitempty"`
	BlobPrefix       string `json:"blobPrefix,omitempty" yaml:"blobPrefix,omitempty"`
	Db               string `json:"db,omitempty" yaml:"db,omitempty"`
	Collection       string `json:"collection,omitempty" yaml:"collection,omitempty"`
	CompressionType  string `json:"compressionType,omitempty" yaml:"compressionType,omitempty"`
	Format           string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Validate checks structural invariants of the flow.
func (f *FlowConfig) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("flow name is required")
	}
	if f.Gui == nil {
		return nil
	}

	seenOutputs := make(map[string]bool, len(f.Gui.Outputs))
	for i, out := range f.Gui.Outputs {
		if out.ID == "" {
			return fmt.Errorf("outputs[%d]: id is required", i)
		}
		if seenOutputs[out.ID] {
			return fmt.Errorf("duplicate output id: %s", out.ID)
		}
		seenOutputs[out.ID] = true
	}

	seenRules := make(map[string]bool, len(f.Gui.Rules))
	for i, rule := range f.Gui.Rules {
		if rule.ID == "" {
			return fmt.Errorf("rules[%d]: id is required", i)
		}
		if seenRules[rule.ID] {
			return fmt.Errorf("duplicate rule id: %s", rule.ID)
		}
		seenRules[rule.ID] = true
	}

	return nil
}

// FindOutput returns the output declaration with the given id.
func (g *FlowGuiConfig) FindOutput(id string) (FlowGuiOutput, bool) {
	for _, out := range g.Outputs {
		if out.ID == id {
			return out, true
		}
	}
	return FlowGuiOutput{}, false
}

// Clone returns a deep copy of the flow.
func (f *FlowConfig) Clone() *FlowConfig {
	if f == nil {
		return nil
	}
	return &FlowConfig{
		Name:        f.Name,
		DisplayName: f.DisplayName,
		Gui:         f.Gui.Clone(),
	}
}

// Clone returns a deep copy of the GUI section. The sensitive-data pass
// hands each step a clone so a failing step cannot leave a half-rewritten
// definition behind.
func (g *FlowGuiConfig) Clone() *FlowGuiConfig {
	if g == nil {
		return nil
	}

	clone := &FlowGuiConfig{
		Name:        g.Name,
		DisplayName: g.DisplayName,
	}

	if g.Input != nil {
		input := *g.Input
		if g.Input.Properties != nil {
			props := *g.Input.Properties
			input.Properties = &props
		}
		clone.Input = &input
	}

	if g.Rules != nil {
		clone.Rules = make([]FlowGuiRule, len(g.Rules))
		for i, rule := range g.Rules {
			clone.Rules[i] = rule
			if rule.Properties != nil {
				props := *rule.Properties
				props.Sinks = copyStrings(rule.Properties.Sinks)
				clone.Rules[i].Properties = &props
			}
		}
	}

	if g.Outputs != nil {
		clone.Outputs = make([]FlowGuiOutput, len(g.Outputs))
		for i, out := range g.Outputs {
			clone.Outputs[i] = out
			if out.Properties != nil {
				props := *out.Properties
				clone.Outputs[i].Properties = &props
			}
		}
	}

	return clone
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
