package output

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/Microsoft/data-accelerator/internal/application/dto"
)

// YAMLFormatter formats deployment results as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format writes the deployment result as YAML.
func (f *YAMLFormatter) Format(w io.Writer, result *dto.DeploymentResult) error {
	encoder := yaml.NewEncoder(w, yaml.Indent(2))

	if err := encoder.Encode(result); err != nil {
		return err
	}

	return encoder.Close()
}

// Extension returns "yaml".
func (f *YAMLFormatter) Extension() string {
	return "yaml"
}
