//go:build integration
// +build integration

package integration_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kairu-dev/dumpaudit/internal/audit"
	"github.com/kairu-dev/dumpaudit/internal/config"
	"github.com/kairu-dev/dumpaudit/sdk"
)

func TestCompare_PostgresToMongo(t *testing.T) {
	ctx := context.Background()

	pg, err := func() (c *postgres.PostgresContainer, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		return postgres.Run(ctx, "postgres:16",
			postgres.WithDatabase("testdb"), postgres.WithUsername("user"), postgres.WithPassword("pass"))
	}()
	if err != nil {
		t.Skipf("postgres container: %v", err)
	}
	t.Cleanup(func() { pg.Terminate(ctx) })

	mg, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("mongo container: %v", err)
	}
	t.Cleanup(func() { mg.Terminate(ctx) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE SCHEMA dump_20240101`,
		`CREATE SCHEMA dump_20240201`,
		`CREATE TABLE dump_20240101.pessoa(id BIGINT PRIMARY KEY, nome TEXT, dt_validade TIMESTAMP, st_ativo BOOLEAN)`,
		`CREATE TABLE dump_20240201.pessoa(id BIGINT PRIMARY KEY, nome TEXT, dt_validade TIMESTAMP, st_ativo BOOLEAN)`,
		`INSERT INTO dump_20240101.pessoa VALUES
			(1, 'Ana', '2024-01-01 00:00:00', true),
			(2, 'Bruno', '2024-06-01 00:00:00', true)`,
		`INSERT INTO dump_20240201.pessoa VALUES
			(1, 'Ana', '2025-01-01 00:00:00', true),
			(3, 'Carla', '2024-07-01 00:00:00', true)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	uri, err := mg.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("mongo uri: %v", err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}
	defer client.Disconnect(ctx)

	mon := &config.Config{
		SchemaPrefix: "dump_",
		Tables: map[string]config.TableSpec{
			"pessoa": {
				Name:       "pessoa",
				PrimaryKey: config.StringList{"id"},
				Columns:    []string{"nome", "dt_validade"},
			},
		},
	}
	svc := sdk.New(sdk.ServiceConfig{
		DB:         db,
		Sink:       audit.NewMongoSink(client, "audit_db", "data_changes"),
		Monitoring: mon,
	})

	sum, err := svc.CompareSchemas(ctx, "dump_20240101", "dump_20240201")
	if err != nil {
		t.Fatalf("CompareSchemas: %v", err)
	}
	// id=1 dt_validade updated, id=2 deleted, id=3 inserted (2 columns).
	if got := sum.TotalChanges(); got != 4 {
		t.Errorf("TotalChanges = %d, want 4", got)
	}

	coll := client.Database("audit_db").Collection("data_changes")
	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Errorf("stored documents = %d, want 4", n)
	}
	var doc bson.M
	if err := coll.FindOne(ctx, bson.M{"primary_key_value": "2"}).Decode(&doc); err != nil {
		t.Fatalf("find deleted doc: %v", err)
	}
	meta, _ := doc["audit_metadata"].(bson.M)
	if meta["change_type"] != "deleted" {
		t.Errorf("change_type = %v, want deleted", meta["change_type"])
	}
}
