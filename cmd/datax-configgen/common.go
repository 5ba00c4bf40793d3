package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// CommonOptions contains flags shared by the generating commands.
type CommonOptions struct {
	// Output
	Format string

	// Execution
	Timeout  time.Duration
	Parallel int
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Timeout: 5 * time.Minute,
		Format:  "json",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	// Execution
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Global timeout for entire execution (0 to disable)")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", opts.Parallel,
		"Flows processed at once (0 = one per CPU)")

	// Output
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: json, yaml, table")
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, func() {}
}

// ValidateFlags validates common options.
func (opts *CommonOptions) ValidateFlags() error {
	if opts.Parallel < 0 {
		return fmt.Errorf("--parallel must not be negative")
	}

	validFormats := map[string]bool{
		"json": true, "yaml": true, "table": true,
	}
	if !validFormats[opts.Format] {
		return fmt.Errorf("invalid format: %s (valid: json, yaml, table)", opts.Format)
	}

	return nil
}
