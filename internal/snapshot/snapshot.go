// Package snapshot reads point-in-time views of monitored tables from
// dump schemas loaded into PostgreSQL.
package snapshot

import (
	"fmt"
	"sort"
	"strings"
)

// Kind distinguishes the ways a snapshot read can fail against the
// schema, so callers can decide whether to skip the table or abort.
type Kind string

const (
	// TableMissing means the monitored table does not exist in the schema.
	TableMissing Kind = "table missing"
	// ColumnMissing means the table exists but a primary-key or monitored
	// column does not.
	ColumnMissing Kind = "column missing"
)

// DataSourceError reports a schema/table/column mismatch between the
// monitoring configuration and a dump schema.
type DataSourceError struct {
	Schema string
	Table  string
	Column string
	Kind   Kind
}

func (e *DataSourceError) Error() string {
	if e.Kind == ColumnMissing {
		return fmt.Sprintf("%s: column %s.%s.%s", e.Kind, e.Schema, e.Table, e.Column)
	}
	return fmt.Sprintf("%s: %s.%s", e.Kind, e.Schema, e.Table)
}

// Row is one table row projected to the primary-key and monitored
// columns, holding raw driver values.
type Row map[string]any

// Snapshot is a read-only view of one table's rows in one dump schema,
// keyed by primary key. It is never mutated after Read returns.
type Snapshot struct {
	Schema string
	Table  string
	// Types maps each projected column to its declared SQL type, used to
	// direct normalization.
	Types map[string]string
	Rows  map[string]Row
}

// Keys returns the primary keys in ascending (byte-wise) order. Ordering
// is what makes comparison output deterministic.
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.Rows))
	for k := range s.Rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.Rows) }

// KeyOf builds the snapshot key for a row: the primary-key values in
// declared order, joined with "|" for composite keys.
func KeyOf(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "|")
}
