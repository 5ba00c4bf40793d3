package values

import (
	"fmt"
	"strings"
)

// OutputType is the closed set of sink kinds the generator understands.
// Authored output declarations carry the kind as a free-form tag; ParseOutputType
// maps the tag onto this enumeration so dispatch can switch exhaustively.
type OutputType int

const (
	OutputUnknown OutputType = iota
	OutputCosmosDB
	OutputEventHub
	OutputMetric
	OutputBlob
	OutputLocal
	OutputHTTP
)

// ParseOutputType maps an authored type tag onto an OutputType.
// Matching is case-insensitive. Unknown tags return OutputUnknown and an error.
func ParseOutputType(tag string) (OutputType, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "cosmosdb":
		return OutputCosmosDB, nil
	case "eventhub":
		return OutputEventHub, nil
	case "metric":
		return OutputMetric, nil
	case "blob":
		return OutputBlob, nil
	case "local":
		return OutputLocal, nil
	case "http":
		return OutputHTTP, nil
	default:
		return OutputUnknown, fmt.Errorf("unknown output type: %q", tag)
	}
}

// String returns the canonical tag
func (t OutputType) String() string {
	switch t {
	case OutputCosmosDB:
		return "cosmosdb"
	case OutputEventHub:
		return "eventhub"
	case OutputMetric:
		return "metric"
	case OutputBlob:
		return "blob"
	case OutputLocal:
		return "local"
	case OutputHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// CarriesConnectionString reports whether declarations of this kind hold a
// connection string (as opposed to a filesystem path) in their connection field.
func (t OutputType) CarriesConnectionString() bool {
	return t != OutputLocal
}
