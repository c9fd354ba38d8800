// Package audit persists change events to the external audit store.
package audit

import (
	"time"

	"github.com/kairu-dev/dumpaudit/internal/compare"
)

// Document is the stable, serializable shape of one change event as it is
// written to the audit store.
type Document struct {
	TableName       string    `bson:"table_name" json:"table_name"`
	PrimaryKeyValue string    `bson:"primary_key_value" json:"primary_key_value"`
	ColumnName      string    `bson:"column_name,omitempty" json:"column_name,omitempty"`
	OldValue        any       `bson:"old_value" json:"old_value"`
	NewValue        any       `bson:"new_value" json:"new_value"`
	DumpSource      string    `bson:"dump_source" json:"dump_source"`
	DumpTarget      string    `bson:"dump_target" json:"dump_target"`
	ChangeTimestamp time.Time `bson:"change_timestamp" json:"change_timestamp"`
	Metadata        Metadata  `bson:"audit_metadata" json:"audit_metadata"`
}

// Metadata carries the audit bookkeeping attached to every document.
type Metadata struct {
	ChangeType   string    `bson:"change_type" json:"change_type"`
	ComparisonID string    `bson:"comparison_id" json:"comparison_id"`
	InsertedAt   time.Time `bson:"inserted_at" json:"inserted_at"`
	Error        string    `bson:"error,omitempty" json:"error,omitempty"`
}

// NewDocument projects a change event into its audit document. fieldNames
// optionally maps SQL column names to the audit store's field names; the
// comparator itself never sees this mapping.
func NewDocument(ev compare.ChangeEvent, comparisonID string, now time.Time, fieldNames map[string]string) Document {
	column := ev.Column
	if mapped, ok := fieldNames[ev.Column]; ok {
		column = mapped
	}
	return Document{
		TableName:       ev.Table,
		PrimaryKeyValue: ev.Key,
		ColumnName:      column,
		OldValue:        ev.Old.Canonical(),
		NewValue:        ev.New.Canonical(),
		DumpSource:      ev.Source,
		DumpTarget:      ev.Target,
		ChangeTimestamp: now,
		Metadata: Metadata{
			ChangeType:   string(ev.Type),
			ComparisonID: comparisonID,
			InsertedAt:   now,
			Error:        ev.Err,
		},
	}
}
