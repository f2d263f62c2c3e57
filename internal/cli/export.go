package cli

import (
	"bytes"
	"fmt"

	"github.com/me/rrsim/internal/export"
	"github.com/me/rrsim/internal/report"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var to, format string

	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write an archived run report to a directory or S3",
		Long: `Writes <run-id>.json (or .txt with --format text) to the target.

The target is a local directory or s3://bucket/prefix. S3 credentials and
region come from the standard AWS environment and shared config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := getRun(ctx, st, args[0])
			if err != nil {
				return err
			}

			var data []byte
			name := run.ID
			switch format {
			case "json":
				if data, err = report.JSON(run); err != nil {
					return err
				}
				name += ".json"
			case "text":
				var buf bytes.Buffer
				if err := report.Text(&buf, run); err != nil {
					return err
				}
				data = buf.Bytes()
				name += ".txt"
			default:
				return fmt.Errorf("unknown format %q (want json or text)", format)
			}

			exp, err := export.New(ctx, to)
			if err != nil {
				return err
			}
			location, err := exp.Export(ctx, name, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", run.ID, location)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", ".", "Target directory or s3://bucket/prefix")
	cmd.Flags().StringVar(&format, "format", "json", "Report format (json, text)")
	return cmd
}
