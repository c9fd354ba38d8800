package main

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	_ "github.com/lib/pq"

	"github.com/kairu-dev/dumpaudit/internal/logger"
	"github.com/kairu-dev/dumpaudit/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "auditctl",
	Short: "Incremental comparison of PostgreSQL dump snapshots",
}

func init() {
	metrics.Register(prometheus.DefaultRegisterer)

	rootCmd.PersistentFlags().String("config", "monitoring.yaml", "monitoring configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		logger.Init(level)
	}

	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newSchemasCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newGenDocsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
