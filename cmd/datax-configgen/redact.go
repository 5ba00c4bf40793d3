package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/Microsoft/data-accelerator/internal/application/dto"
)

func newRedactCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "redact <flow.yaml>",
		Short: "Move a flow's plaintext secrets into the vault",
		Long: `Run only the sensitive-data pass over a flow. Plaintext connection
strings are stored in the runtime vault and the rewritten definition, holding
only secret references, is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
			return runRedact(cc, args[0], outFile, cmd.OutOrStdout())
		}),
	}

	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}

func init() {
	rootCmd.AddCommand(newRedactCmd())
}

func runRedact(cc *CommandContext, flowPath, outFile string, stdout io.Writer) error {
	resp, err := cc.Container.RedactFlowUseCase().Execute(cc.Context, dto.RedactRequest{FlowPath: flowPath})
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(resp.Flow)
	if err != nil {
		return fmt.Errorf("failed to encode flow: %w", err)
	}

	if outFile == "" {
		_, err = stdout.Write(data)
		return err
	}

	if err := os.WriteFile(outFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	cc.Logger.Info("sanitized flow written", "path", outFile)
	return nil
}
