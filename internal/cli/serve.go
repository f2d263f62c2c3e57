package cli

import (
	"os/signal"
	"syscall"

	"github.com/me/rrsim/internal/config"
	"github.com/me/rrsim/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var configFile string
	var noArchive bool
	cfg := config.DefaultServerConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the rrsim HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if configFile != "" {
				fileCfg, err := config.LoadServerConfig(configFile)
				if err != nil {
					return err
				}
				// Flags given on the command line win over the file.
				if cmd.Flags().Changed("addr") {
					fileCfg.Addr = cfg.Addr
				}
				if cmd.Flags().Changed("play-delay") {
					fileCfg.PlayDelay = cfg.PlayDelay
				}
				if fileCfg.DBPath != "" && !cmd.Flags().Changed("db") {
					flagDB = fileCfg.DBPath
				}
				cfg = fileCfg
			}

			var opts []server.Option
			if !noArchive {
				st, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				opts = append(opts, server.WithStore(st))
				logger.Info("database ready", "path", flagDB)
			}

			return server.New(cfg, logger, opts...).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	cmd.Flags().DurationVar(&cfg.PlayDelay, "play-delay", cfg.PlayDelay, "Default delay between ticks for /play")
	cmd.Flags().StringVar(&configFile, "config", "", "Server config YAML file")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Do not archive finished runs")
	return cmd
}
