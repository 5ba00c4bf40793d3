package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Microsoft/data-accelerator/internal/application/dto"
)

type generateOptions struct {
	CommonOptions
	Destination       string
	PersistDefinition bool
	MetricsTextfile   string
}

func newGenerateCmd() *cobra.Command {
	opts := generateOptions{CommonOptions: DefaultCommonOptions()}

	cmd := &cobra.Command{
		Use:   "generate <flow.yaml>...",
		Short: "Generate deployment configs for flows",
		Long: `Run a deployment session per flow and write the resulting configs.

Each flow is sanitized first: plaintext connection strings are stored in the
runtime vault and replaced by secret references. The sessions then resolve
inputs, rules and outputs into a token table.

Destination:
  (none)                                              print results to stdout
  ./out                                               write <flow>.config.<ext> to a directory
  https://acct.blob.core.windows.net/container/prefix upload to Azure Blob Storage`,
		Args: cobra.MinimumNArgs(1),
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
			return runGenerate(cc, opts, args, cmd.OutOrStdout())
		}),
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().StringVar(&opts.Destination, "destination", "", "Directory or blob URL receiving the configs (default: stdout)")
	cmd.Flags().BoolVar(&opts.PersistDefinition, "persist-definition", false, "Also write the sanitized flow as <flow>.flow.yaml")
	cmd.Flags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "Write step metrics in Prometheus text format to this file")

	return cmd
}

func init() {
	rootCmd.AddCommand(newGenerateCmd())
}

func runGenerate(cc *CommandContext, opts generateOptions, paths []string, stdout io.Writer) error {
	if err := opts.ValidateFlags(); err != nil {
		return err
	}

	uc, err := cc.Container.GenerateConfigUseCase(opts.Format, opts.Destination)
	if err != nil {
		return err
	}

	ctx, cancel := opts.ApplyToContext(cc.Context)
	defer cancel()

	resp, runErr := uc.Execute(ctx, dto.GenerateRequest{
		FlowPaths: paths,
		Options: dto.GenerateOptions{
			Parallel:          opts.Parallel,
			PersistDefinition: opts.PersistDefinition,
		},
		Metadata: dto.RequestMetadata{RequestID: uuid.NewString()},
	})

	if opts.MetricsTextfile != "" {
		if err := cc.Container.Metrics().WriteTextfile(opts.MetricsTextfile); err != nil {
			cc.Logger.Error("failed to write metrics", "path", opts.MetricsTextfile, "error", err)
		}
	}

	if resp == nil {
		return runErr
	}

	if opts.Destination == "" {
		formatter, err := cc.Container.Formatter(opts.Format)
		if err != nil {
			return err
		}
		for i := range resp.Results {
			if err := formatter.Format(stdout, &resp.Results[i]); err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
		}
	}

	for _, location := range resp.Written {
		cc.Logger.Info("wrote artifact", "location", location)
	}

	if runErr != nil && len(resp.Failures) > 0 {
		return fmt.Errorf("%d of %d flows failed: %w", len(resp.Failures), len(paths), runErr)
	}
	return runErr
}
