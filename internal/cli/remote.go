package cli

import (
	"context"
	"os"

	"github.com/me/rrsim/internal/workload"
	"github.com/me/rrsim/pkg/model"
	"github.com/spf13/cobra"
)

// defaultServer returns the default server URL, checking RRSIM_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("RRSIM_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func newRemoteCmd() *cobra.Command {
	var o overrides
	var serverURL string
	var asJSON, keep bool

	cmd := &cobra.Command{
		Use:   "remote <workload.yaml>",
		Short: "Run a workload on an rrsim server",
		Long: `Creates a session on the server, configures it, registers every process
of the workload, runs it to completion and prints the report. The session is
deleted afterwards unless --keep is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := loadWorkload(args[0], o)
			if err != nil {
				return err
			}
			c := NewClient(serverURL, logger)

			run, err := runRemote(cmd.Context(), c, w, keep)
			if err != nil {
				return err
			}
			return printRun(cmd.OutOrStdout(), run, asJSON)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", defaultServer(), "rrsim server URL (or RRSIM_SERVER env)")
	cmd.Flags().IntVar(&o.quantum, "quantum", 0, "Override the workload time quantum")
	cmd.Flags().IntVar(&o.cores, "cores", 0, "Override the workload core count")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the server session")
	return cmd
}

// runRemote drives one server session through create, configure, register
// and run, and returns the run as the server reports it.
func runRemote(ctx context.Context, c *Client, w *workload.Workload, keep bool) (*model.Run, error) {
	sess, err := c.CreateSession(ctx, w.Name)
	if err != nil {
		return nil, err
	}
	if !keep {
		defer func() {
			if err := c.DeleteSession(context.WithoutCancel(ctx), sess.ID); err != nil {
				logger.Warn("delete session", "session_id", sess.ID, "error", err)
			}
		}()
	}

	if _, err := c.Configure(ctx, sess.ID, w.Config); err != nil {
		return nil, err
	}
	for _, p := range w.Processes {
		if _, err := c.RegisterProcess(ctx, sess.ID, p.Arrival, p.Burst); err != nil {
			return nil, err
		}
	}

	res, err := c.Run(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &model.Run{ID: res.RunID, Name: w.Name, Metrics: res.Metrics, Timeline: res.Timeline}, nil
}
