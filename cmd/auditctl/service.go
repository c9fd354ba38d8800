package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kairu-dev/dumpaudit/internal/audit"
	"github.com/kairu-dev/dumpaudit/internal/config"
	"github.com/kairu-dev/dumpaudit/sdk"
)

// newService assembles a Service from the monitoring config file and the
// connection environment. A non-empty dryFormat replaces the audit store
// with stdout. The returned cleanup closes both stores.
func newService(ctx context.Context, cmd *cobra.Command, base sdk.ServiceConfig, dryFormat string) (sdk.Service, func(), error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	mon, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	env := config.DBFromEnv()

	db, err := sql.Open("postgres", env.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { db.Close() }

	var sink audit.Sink
	if dryFormat != "" {
		sink = &printSink{cmd: cmd, format: dryFormat}
	} else {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(env.MongoURI))
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect audit store: %w", err)
		}
		closeDB := cleanup
		cleanup = func() {
			client.Disconnect(context.Background())
			closeDB()
		}
		sink = audit.NewMongoSink(client, env.MongoDatabase, env.MongoCollection)
	}

	base.DB = db
	base.Sink = sink
	base.Monitoring = mon
	return sdk.New(base), cleanup, nil
}
