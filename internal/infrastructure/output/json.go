package output

import (
	"encoding/json"
	"io"

	"github.com/Microsoft/data-accelerator/internal/application/dto"
)

// JSONFormatter formats deployment results as JSON.
type JSONFormatter struct {
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(indent bool) *JSONFormatter {
	return &JSONFormatter{indent: indent}
}

// Format writes the deployment result as JSON.
func (f *JSONFormatter) Format(w io.Writer, result *dto.DeploymentResult) error {
	encoder := json.NewEncoder(w)
	if f.indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(result)
}

// Extension returns "json".
func (f *JSONFormatter) Extension() string {
	return "json"
}
