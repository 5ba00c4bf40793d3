// Package output renders deployment results.
package output

import (
	"fmt"

	"github.com/Microsoft/data-accelerator/internal/application/ports"
)

// FormatterFactory creates formatters by name.
type FormatterFactory struct{}

// NewFormatterFactory creates a new formatter factory.
func NewFormatterFactory() *FormatterFactory {
	return &FormatterFactory{}
}

// Create returns a formatter for the given format name.
func (f *FormatterFactory) Create(format string) (ports.OutputFormatter, error) {
	switch format {
	case "json":
		return NewJSONFormatter(true), nil
	case "yaml":
		return NewYAMLFormatter(), nil
	case "table":
		return NewTableFormatter(), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, f.SupportedFormats(),
		)
	}
}

// SupportedFormats returns list of available format names.
func (f *FormatterFactory) SupportedFormats() []string {
	return []string{"json", "yaml", "table"}
}
