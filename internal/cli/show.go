package cli

import (
	"context"
	"fmt"

	"github.com/me/rrsim/internal/store"
	"github.com/me/rrsim/pkg/model"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the report of an archived run",
		Args:  cobra.ExactArgs(1),
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
			return printRun(cmd.OutOrStdout(), run, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return cmd
}

// getRun loads a run, turning a missing run into a NOT_FOUND error.
func getRun(ctx context.Context, st store.Store, id string) (*model.Run, error) {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return nil, model.NewNotFoundError("run", id)
	}
	return run, nil
}
