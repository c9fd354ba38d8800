// Package catalog enumerates the dump schemas loaded into the relational
// store. Each imported dump lives in its own schema, named so that
// lexicographic order is chronological (e.g. dump_20240101).
package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// Repo lists dump schemas.
type Repo struct {
	DB *sql.DB
}

// ListSchemas returns the schemas whose name starts with prefix, in
// ascending name order.
func (r *Repo) ListSchemas(ctx context.Context, prefix string) ([]string, error) {
	const q = `SELECT schema_name FROM information_schema.schemata WHERE schema_name LIKE $1 || '%' AND schema_name NOT LIKE 'pg\_%' AND schema_name <> 'information_schema' ORDER BY schema_name`
	rows, err := r.DB.QueryContext(ctx, q, prefix)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema: %w", err)
		}
		schemas = append(schemas, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schemas rows: %w", err)
	}
	return schemas, nil
}

// Pairs yields the consecutive (source, target) schema pairs a full
// history analysis compares: s0→s1, s1→s2, ...
func Pairs(schemas []string) [][2]string {
	if len(schemas) < 2 {
		return nil
	}
	pairs := make([][2]string, 0, len(schemas)-1)
	for i := 0; i < len(schemas)-1; i++ {
		pairs = append(pairs, [2]string{schemas[i], schemas[i+1]})
	}
	return pairs
}
