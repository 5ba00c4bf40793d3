package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Microsoft/data-accelerator/internal/application/dto"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
)

const (
	colorReset = "\033[0m"
	colorGray  = "\033[90m"
	colorCyan  = "\033[36m"
	colorBold  = "\033[1m"
)

// TableFormatter formats deployment results as a human-readable summary.
type TableFormatter struct {
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes the deployment result as a table.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(w io.Writer, result *dto.DeploymentResult) error {
	rule := f.colorize(strings.Repeat("─", 80), colorGray)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Flow: %s\n", f.colorize(result.Flow, colorBold))
	fmt.Fprintf(w, "Session: %s\n", result.SessionID)
	fmt.Fprintln(w)

	fmt.Fprintln(w, f.colorize("Steps:", colorBold))
	for _, step := range result.Steps {
		fmt.Fprintf(w, "  %-28s %-32s %s\n", step.Step, step.Status, f.colorize(step.Duration.Round(time.Microsecond).String(), colorGray))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, f.colorize("Outputs:", colorBold))
	if len(result.Outputs) == 0 {
		fmt.Fprintln(w, "  No outputs resolved.")
	}
	for _, spec := range result.Outputs {
		fmt.Fprintf(w, "  %s\n", f.colorize(spec.Name, colorCyan))
		for _, line := range sinkLines(spec) {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	fmt.Fprintln(w, rule)

	return nil
}

// Extension returns "txt".
func (f *TableFormatter) Extension() string {
	return "txt"
}

func sinkLines(spec entities.FlowOutputSpec) []string {
	var lines []string
	if c := spec.CosmosDbOutput; c != nil {
		lines = append(lines, fmt.Sprintf("cosmosdb  %s/%s", c.Database, c.Collection))
	}
	if e := spec.EventHubOutput; e != nil {
		lines = append(lines, fmt.Sprintf("eventhub  %s (%s)", e.ConnectionStringRef, e.Format))
	}
	if b := spec.BlobOutput; b != nil {
		lines = append(lines, fmt.Sprintf("blob      %s", b.Groups.Main.Folder))
	}
	if h := spec.HTTPOutput; h != nil {
		lines = append(lines, fmt.Sprintf("httppost  %s", h.Endpoint))
	}
	if len(lines) == 0 {
		lines = append(lines, "(empty)")
	}
	return lines
}
