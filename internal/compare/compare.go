// Package compare computes the incremental difference between two
// snapshots of the same monitored table.
package compare

import (
	"fmt"
	"sort"

	"github.com/kairu-dev/dumpaudit/internal/config"
	"github.com/kairu-dev/dumpaudit/internal/snapshot"
	"github.com/kairu-dev/dumpaudit/internal/value"
)

// ChangeType classifies a detected difference.
type ChangeType string

const (
	Inserted ChangeType = "inserted"
	Updated  ChangeType = "updated"
	Deleted  ChangeType = "deleted"
	// CompareError is a diagnostic event for a row/column whose value
	// could not be normalized. It never aborts the comparison.
	CompareError ChangeType = "comparison_error"
)

// ChangeEvent is one detected difference between two snapshots. Events
// are immutable and flow once to the emitter.
type ChangeEvent struct {
	Type   ChangeType
	Table  string
	Key    string
	Column string // empty for row-level deleted events
	Old    value.Value
	New    value.Value
	Source string
	Target string
	Err    string // set only for CompareError
}

// Compare returns a lazy iterator over the differences between source and
// target in the table spec's monitored columns. Events are produced grouped
// by primary key in ascending order and, within a key, in the declared
// column order:
//
//   - keys only in target yield one inserted event per monitored column,
//   - keys only in source yield one row-level deleted event,
//   - shared keys yield one updated event per monitored column whose
//     normalized values differ.
//
// The iterator never materializes the full event list; the first event is
// available before the last key has been examined.
func Compare(source, target *snapshot.Snapshot, spec config.TableSpec) *Iter {
	return &Iter{
		source: source,
		target: target,
		spec:   spec,
		keys:   unionKeys(source, target),
	}
}

// Iter is a pull-based iterator over change events, in the style of
// sql.Rows: call Next until it returns false, reading Event after each
// successful call.
type Iter struct {
	source  *snapshot.Snapshot
	target  *snapshot.Snapshot
	spec    config.TableSpec
	keys    []string
	pos     int
	pending []ChangeEvent
	current ChangeEvent
}

// Next advances to the next change event.
func (it *Iter) Next() bool {
	for len(it.pending) == 0 {
		if it.pos >= len(it.keys) {
			return false
		}
		key := it.keys[it.pos]
		it.pos++
		it.pending = it.eventsForKey(key)
	}
	it.current = it.pending[0]
	it.pending = it.pending[1:]
	return true
}

// Event returns the event produced by the last successful Next.
func (it *Iter) Event() ChangeEvent { return it.current }

// Collect drains the iterator. Intended for tests and small tables.
func (it *Iter) Collect() []ChangeEvent {
	var evs []ChangeEvent
	for it.Next() {
		evs = append(evs, it.Event())
	}
	return evs
}

func (it *Iter) eventsForKey(key string) []ChangeEvent {
	srcRow, inSource := it.source.Rows[key]
	tgtRow, inTarget := it.target.Rows[key]
	switch {
	case inTarget && !inSource:
		return it.insertedEvents(key, tgtRow)
	case inSource && !inTarget:
		return []ChangeEvent{it.event(Deleted, key, "", value.NullValue, value.NullValue)}
	default:
		return it.updatedEvents(key, srcRow, tgtRow)
	}
}

func (it *Iter) insertedEvents(key string, row snapshot.Row) []ChangeEvent {
	evs := make([]ChangeEvent, 0, len(it.spec.Columns))
	for _, col := range it.spec.Columns {
		raw, ok := row[col]
		if !ok {
			continue
		}
		v, err := value.Normalize(raw, it.target.Types[col])
		if err != nil {
			evs = append(evs, it.errorEvent(key, col, err))
			continue
		}
		evs = append(evs, it.event(Inserted, key, col, value.NullValue, v))
	}
	return evs
}

func (it *Iter) updatedEvents(key string, srcRow, tgtRow snapshot.Row) []ChangeEvent {
	var evs []ChangeEvent
	for _, col := range it.spec.Columns {
		oldRaw, inOld := srcRow[col]
		newRaw, inNew := tgtRow[col]
		if !inOld && !inNew {
			// Column absent from both field-maps: nothing to compare.
			continue
		}
		oldVal, err := value.Normalize(oldRaw, it.source.Types[col])
		if err != nil {
			evs = append(evs, it.errorEvent(key, col, fmt.Errorf("source: %w", err)))
			continue
		}
		newVal, err := value.Normalize(newRaw, it.target.Types[col])
		if err != nil {
			evs = append(evs, it.errorEvent(key, col, fmt.Errorf("target: %w", err)))
			continue
		}
		if oldVal.Equal(newVal) {
			continue
		}
		evs = append(evs, it.event(Updated, key, col, oldVal, newVal))
	}
	return evs
}

func (it *Iter) event(typ ChangeType, key, col string, oldVal, newVal value.Value) ChangeEvent {
	return ChangeEvent{
		Type:   typ,
		Table:  it.spec.Name,
		Key:    key,
		Column: col,
		Old:    oldVal,
		New:    newVal,
		Source: it.source.Schema,
		Target: it.target.Schema,
	}
}

func (it *Iter) errorEvent(key, col string, err error) ChangeEvent {
	ev := it.event(CompareError, key, col, value.NullValue, value.NullValue)
	ev.Err = err.Error()
	return ev
}

func unionKeys(a, b *snapshot.Snapshot) []string {
	set := make(map[string]struct{}, a.Len()+b.Len())
	for k := range a.Rows {
		set[k] = struct{}{}
	}
	for k := range b.Rows {
		set[k] = struct{}{}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
