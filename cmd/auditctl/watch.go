package main

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"

	"github.com/kairu-dev/dumpaudit/internal/logger"
	"github.com/kairu-dev/dumpaudit/internal/watch"
	"github.com/kairu-dev/dumpaudit/sdk"
)

func newWatchCmd() *cobra.Command {
	var (
		dir      string
		interval time.Duration
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the dump directory and re-run the chain comparison",
		Long: "Announces dump files arriving in the dump directory (import stays the " +
			"importer's job) and re-runs the full chain comparison on a schedule, so " +
			"freshly imported schemas are picked up without manual invocations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := newService(ctx, cmd, sdk.ServiceConfig{Workers: workers}, "")
			if err != nil {
				return err
			}
			defer cleanup()

			runAll := func() {
				sums, err := svc.CompareAll(ctx)
				if err != nil {
					logger.L.Error("chain comparison failed", "err", err)
				}
				for _, sum := range sums {
					sum.Render(cmd.OutOrStdout())
				}
			}
			if interval > 0 {
				s := gocron.NewScheduler(time.UTC)
				if _, err := s.Every(interval).Do(runAll); err != nil {
					return err
				}
				s.StartAsync()
				defer s.Stop()
			}
			w := &watch.Watcher{Dir: dir, OnDump: func(path string) {
				logger.L.Info("dump arrived; comparison will include it once imported", "path", path)
			}}
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "./dumps", "dump directory to watch")
	cmd.Flags().DurationVar(&interval, "interval", time.Hour, "how often to re-run the chain comparison (0 disables)")
	cmd.Flags().IntVar(&workers, "workers", 4, "tables compared concurrently")
	return cmd
}
