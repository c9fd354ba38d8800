package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/kairu-dev/dumpaudit/internal/config"
)

// Reader retrieves snapshots from the relational store that dump files
// have been imported into, one schema per dump.
type Reader struct {
	DB *sql.DB
}

// NewReader returns a Reader over the given connection.
func NewReader(db *sql.DB) *Reader {
	return &Reader{DB: db}
}

// Read returns the current rows of the monitored table in the named dump
// schema, projected to the primary-key and monitored columns and filtered
// by the table spec's row filter. It fails with *DataSourceError when the table
// or any required column is absent.
func (r *Reader) Read(ctx context.Context, schema string, spec config.TableSpec) (*Snapshot, error) {
	types, err := r.columnTypes(ctx, schema, spec.Name)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, &DataSourceError{Schema: schema, Table: spec.Name, Kind: TableMissing}
	}
	projected := make([]string, 0, len(spec.PrimaryKey)+len(spec.Columns))
	projected = append(projected, spec.PrimaryKey...)
	projected = append(projected, spec.Columns...)
	for _, col := range projected {
		if _, ok := types[col]; !ok {
			return nil, &DataSourceError{Schema: schema, Table: spec.Name, Column: col, Kind: ColumnMissing}
		}
	}

	quoted := make([]string, len(projected))
	for i, col := range projected {
		quoted[i] = pq.QuoteIdentifier(col)
	}
	q := fmt.Sprintf("SELECT %s FROM %s.%s",
		strings.Join(quoted, ", "),
		pq.QuoteIdentifier(schema),
		pq.QuoteIdentifier(spec.Name))
	if f := strings.TrimSpace(spec.Filter); f != "" {
		q += " WHERE " + f
	}

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", schema, spec.Name, err)
	}
	defer rows.Close()

	snap := &Snapshot{Schema: schema, Table: spec.Name, Types: projectTypes(types, projected), Rows: map[string]Row{}}
	npk := len(spec.PrimaryKey)
	for rows.Next() {
		vals := make([]any, len(projected))
		ptrs := make([]any, len(projected))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s.%s: %w", schema, spec.Name, err)
		}
		row := make(Row, len(spec.Columns))
		for i, col := range spec.Columns {
			v := vals[npk+i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		snap.Rows[KeyOf(vals[:npk])] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows %s.%s: %w", schema, spec.Name, err)
	}
	return snap, nil
}

// columnTypes loads the declared data types of all columns of the table.
// An empty map means the table itself is absent.
func (r *Reader) columnTypes(ctx context.Context, schema, table string) (map[string]string, error) {
	const q = `SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2`
	rows, err := r.DB.QueryContext(ctx, q, schema, table)
	if err != nil {
		return nil, fmt.Errorf("column types %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	types := map[string]string{}
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("scan column types: %w", err)
		}
		types[name] = typ
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("column types rows: %w", err)
	}
	return types, nil
}

func projectTypes(all map[string]string, projected []string) map[string]string {
	out := make(map[string]string, len(projected))
	for _, col := range projected {
		out[col] = all[col]
	}
	return out
}
