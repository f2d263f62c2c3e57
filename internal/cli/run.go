package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/me/rrsim/internal/report"
	"github.com/me/rrsim/internal/scheduler"
	"github.com/me/rrsim/internal/workload"
	"github.com/me/rrsim/pkg/model"
	"github.com/spf13/cobra"
)

// overrides holds --quantum / --cores values; zero keeps the workload value.
type overrides struct {
	quantum int
	cores   int
}

// loadWorkload reads a workload file and applies flag overrides.
func loadWorkload(path string, o overrides) (*workload.Workload, error) {
	w, err := workload.Load(path)
	if err != nil {
		return nil, err
	}
	if o.quantum != 0 {
		w.Config.Quantum = o.quantum
	}
	if o.cores != 0 {
		w.Config.Cores = o.cores
	}
	if err := w.Config.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// newEngine builds an engine loaded with the workload's processes.
func newEngine(w *workload.Workload) (*scheduler.Engine, error) {
	eng, err := scheduler.NewEngine(w.Config, logger)
	if err != nil {
		return nil, err
	}
	if err := w.Apply(eng); err != nil {
		return nil, err
	}
	return eng, nil
}

func newRunCmd() *cobra.Command {
	var o overrides
	var save, asJSON bool

	cmd := &cobra.Command{
		Use:   "run <workload.yaml>",
		Short: "Run a workload to completion and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			w, err := loadWorkload(args[0], o)
			if err != nil {
				return err
			}
			eng, err := newEngine(w)
			if err != nil {
				return err
			}
			m, err := eng.RunToCompletion(ctx)
			if err != nil {
				return fmt.Errorf("run %s: %w", w.Name, err)
			}

			run := &model.Run{Name: w.Name, Metrics: m, Timeline: eng.Timeline()}
			if save {
				if err := saveRun(ctx, run); err != nil {
					return err
				}
			}
			return printRun(cmd.OutOrStdout(), run, asJSON)
		},
	}

	cmd.Flags().IntVar(&o.quantum, "quantum", 0, "Override the workload time quantum")
	cmd.Flags().IntVar(&o.cores, "cores", 0, "Override the workload core count")
	cmd.Flags().BoolVar(&save, "save", false, "Archive the finished run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")

	return cmd
}

// saveRun archives run and fills in its id.
func saveRun(ctx context.Context, run *model.Run) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	logger.Info("run archived", "run_id", run.ID, "db", flagDB)
	return nil
}

func printRun(out io.Writer, run *model.Run, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}
	return report.Text(out, run)
}
