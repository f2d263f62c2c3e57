package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/me/rrsim/pkg/model"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	opts := model.DefaultListOptions()

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			opts.Clamp()
			runs, total, err := st.ListRuns(ctx, opts)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs found.")
				return nil
			}

			const row = "%-40s  %-20s  %3s  %5s  %8s  %7s  %s\n"
			fmt.Fprintf(out, row, "ID", "NAME", "Q", "CORES", "TICKS", "UTIL", "CREATED")
			fmt.Fprintf(out, row, "--", "----", "-", "-----", "-----", "----", "-------")
			for _, r := range runs {
				m := r.Metrics
				fmt.Fprintf(out, row, r.ID, r.Name,
					fmt.Sprint(m.Quantum), fmt.Sprint(m.Cores), humanize.Comma(int64(m.TotalTicks)),
					fmt.Sprintf("%.1f%%", m.Utilization), humanize.Time(r.CreatedAt))
			}

			pg := model.NewPagination(opts, len(runs), total)
			if pg.HasMore || opts.Offset > 0 {
				fmt.Fprintf(out, "\n(%d of %s shown)\n", len(runs), humanize.Comma(int64(total)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", opts.Limit, "Maximum runs to list (max 100)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Runs to skip")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Only runs of this workload")

	return cmd
}
