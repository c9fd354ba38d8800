package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kairu-dev/dumpaudit/internal/config"
	"github.com/kairu-dev/dumpaudit/sdk"
)

func newSchemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List imported dump schemas, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			mon, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			env := config.DBFromEnv()
			db, err := sql.Open("postgres", env.PostgresDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := sdk.New(sdk.ServiceConfig{DB: db, Monitoring: mon})
			schemas, err := svc.ListSchemas(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range schemas {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}
