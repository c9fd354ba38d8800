package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kairu-dev/dumpaudit/internal/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the monitoring configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			mon, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tables OK\n", cfgPath, len(mon.Tables))
			return nil
		},
	}
}
