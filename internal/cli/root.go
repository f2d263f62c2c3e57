package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/me/rrsim/internal/logging"
	"github.com/me/rrsim/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagDB        string

	logger *slog.Logger
)

// defaultDB returns the archive path, checking the RRSIM_DB env var first.
func defaultDB() string {
	if p := os.Getenv("RRSIM_DB"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".rrsim", "rrsim.db")
	}
	return filepath.Join(home, ".rrsim", "rrsim.db")
}

// NewRootCmd creates the root cobra command for the rrsim CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rrsim",
		Short: "rrsim — multi-core round-robin scheduling simulator",
		Long:  "rrsim simulates preemptive round-robin CPU scheduling on several cores and reports Gantt charts and timing metrics.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagDB, "db", defaultDB(), "Run archive path (or RRSIM_DB env)")

	root.AddCommand(
		newRunCmd(),
		newTraceCmd(),
		newHistoryCmd(),
		newShowCmd(),
		newExportCmd(),
		newServeCmd(),
		newRemoteCmd(),
	)

	return root
}

// openStore opens and migrates the run archive at --db.
func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	if flagDB != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(flagDB), 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(flagDB, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return st, nil
}
