package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/rrsim/internal/report"
	"github.com/me/rrsim/internal/scheduler"
	"github.com/me/rrsim/pkg/model"
	"github.com/spf13/cobra"
)

func newTraceCmd() *cobra.Command {
	var o overrides
	var delay time.Duration
	var speed float64

	cmd := &cobra.Command{
		Use:   "trace <workload.yaml>",
		Short: "Step through a workload tick by tick, printing every event",
		Long: `Plays the simulation one tick at a time. Each tick prints its arrivals,
dispatches, preemptions and completions; the full report follows once every
process has terminated. Interrupting the trace stops playback after the
current tick.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w, err := loadWorkload(args[0], o)
			if err != nil {
				return err
			}
			eng, err := newEngine(w)
			if err != nil {
				return err
			}
			if err := eng.Start(); err != nil {
				return err
			}

			if cmd.Flags().Changed("speed") {
				delay = scheduler.SpeedDelay(speed)
			}

			out := cmd.OutOrStdout()
			var writeErr error
			onTick := func(res model.TickResult) {
				if writeErr == nil {
					writeErr = report.Events(out, res)
				}
			}
			player := scheduler.NewPlayer(eng, scheduler.PlayerConfig{Delay: delay}, onTick, logger)
			if err := player.Start(ctx); err != nil {
				return fmt.Errorf("trace stopped at tick %d: %w", eng.Clock(), err)
			}
			if writeErr != nil {
				return writeErr
			}

			m, err := eng.Metrics()
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			return report.Text(out, &model.Run{Name: w.Name, Metrics: m, Timeline: eng.Timeline()})
		},
	}

	cmd.Flags().IntVar(&o.quantum, "quantum", 0, "Override the workload time quantum")
	cmd.Flags().IntVar(&o.cores, "cores", 0, "Override the workload core count")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Delay between ticks")
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "Delay as a factor of one second, clamped to [0.2, 3]; overrides --delay")

	return cmd
}
