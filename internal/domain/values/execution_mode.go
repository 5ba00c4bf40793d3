package values

import (
	"fmt"
	"strings"
)

// ExecutionMode selects where generated jobs run.
type ExecutionMode string

const (
	// ExecutionModeCloud targets a managed Spark cluster (default)
	ExecutionModeCloud ExecutionMode = "cloud"
	// ExecutionModeLocal targets the local development runtime
	ExecutionModeLocal ExecutionMode = "local"
)

// ParseExecutionMode parses a mode name. Empty defaults to cloud.
func ParseExecutionMode(s string) (ExecutionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cloud":
		return ExecutionModeCloud, nil
	case "local":
		return ExecutionModeLocal, nil
	default:
		return "", fmt.Errorf("invalid execution mode: %s", s)
	}
}

// IsLocal returns true for the local development runtime
func (m ExecutionMode) IsLocal() bool {
	return m == ExecutionModeLocal
}

// SparkType identifies the Spark flavour the job is deployed to.
type SparkType string

const (
	SparkTypeHDInsight  SparkType = "hdinsight"
	SparkTypeDatabricks SparkType = "databricks"
)

// ParseSparkType parses a spark type. Empty defaults to HDInsight.
func ParseSparkType(s string) (SparkType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hdinsight":
		return SparkTypeHDInsight, nil
	case "databricks":
		return SparkTypeDatabricks, nil
	default:
		return "", fmt.Errorf("invalid spark type: %s", s)
	}
}
