package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kairu-dev/dumpaudit/internal/audit"
	"github.com/kairu-dev/dumpaudit/internal/report"
	"github.com/kairu-dev/dumpaudit/sdk"
)

// printSink writes documents to stdout instead of the audit store, for
// --dry-run inspection. format is "json" or "diff".
type printSink struct {
	cmd    *cobra.Command
	format string
}

func (s *printSink) Write(_ context.Context, doc audit.Document) error {
	if s.format == "diff" {
		before := map[string]any{}
		after := map[string]any{}
		if doc.ColumnName != "" {
			before[doc.ColumnName] = doc.OldValue
			after[doc.ColumnName] = doc.NewValue
		}
		fmt.Fprint(s.cmd.OutOrStdout(),
			report.UnifiedRowDiff(doc.TableName+"/"+doc.PrimaryKeyValue, before, after))
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.cmd.OutOrStdout(), string(b))
	return nil
}

func newCompareCmd() *cobra.Command {
	var (
		source  string
		target  string
		all     bool
		dryRun  bool
		format  string
		workers int
		timeout time.Duration
		keepUp  bool
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare dump schemas and record prior values to the audit store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && (source == "" || target == "") {
				return fmt.Errorf("either --all or both --source and --target are required")
			}
			if format != "json" && format != "diff" {
				return fmt.Errorf("--format must be json or diff")
			}
			dryFormat := ""
			if dryRun {
				dryFormat = format
			}
			ctx := cmd.Context()
			svc, cleanup, err := newService(ctx, cmd, sdk.ServiceConfig{
				Workers:             workers,
				ReadTimeout:         timeout,
				ContinueOnSinkError: keepUp,
			}, dryFormat)
			if err != nil {
				return err
			}
			defer cleanup()

			if all {
				sums, err := svc.CompareAll(ctx)
				for _, sum := range sums {
					sum.Render(cmd.OutOrStdout())
				}
				return err
			}
			sum, err := svc.CompareSchemas(ctx, source, target)
			if err != nil {
				return err
			}
			sum.Render(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "source dump schema")
	cmd.Flags().StringVar(&target, "target", "", "target dump schema")
	cmd.Flags().BoolVar(&all, "all", false, "compare all consecutive schema pairs")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print change documents instead of writing them")
	cmd.Flags().StringVar(&format, "format", "json", "dry-run output format (json|diff)")
	cmd.Flags().IntVar(&workers, "workers", 4, "tables compared concurrently")
	cmd.Flags().DurationVar(&timeout, "read-timeout", 2*time.Minute, "per-table snapshot read timeout")
	cmd.Flags().BoolVar(&keepUp, "continue-on-sink-error", false, "log failed audit writes and continue")
	return cmd
}
