// Package report accumulates and renders the outcome of comparison runs.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/kairu-dev/dumpaudit/internal/compare"
)

// SkippedTable identifies a table that was not compared, with the reason,
// so an operator can re-run a targeted repair.
type SkippedTable struct {
	Table  string
	Reason string
}

// Summary describes one comparison run between two dump schemas.
type Summary struct {
	Source       string
	Target       string
	ComparisonID string
	Tables       []string
	Skipped      []SkippedTable
	RowsCompared int
	EventCounts  map[compare.ChangeType]int
	ColumnCounts map[string]int // "table.column" -> change count
}

// NewSummary returns an empty summary for the given schema pair.
func NewSummary(source, target, comparisonID string) *Summary {
	return &Summary{
		Source:       source,
		Target:       target,
		ComparisonID: comparisonID,
		EventCounts:  map[compare.ChangeType]int{},
		ColumnCounts: map[string]int{},
	}
}

// Add records one change event.
func (s *Summary) Add(ev compare.ChangeEvent) {
	s.EventCounts[ev.Type]++
	col := ev.Column
	if col == "" {
		col = "-"
	}
	s.ColumnCounts[ev.Table+"."+col]++
}

// TotalChanges returns the number of recorded events of all types.
func (s *Summary) TotalChanges() int {
	var n int
	for _, c := range s.EventCounts {
		n += c
	}
	return n
}

// Render writes the summary as a table.
func (s *Summary) Render(w io.Writer) {
	fmt.Fprintf(w, "%s -> %s (run %s)\n", s.Source, s.Target, s.ComparisonID)
	fmt.Fprintf(w, "tables=%d rows=%d changes=%d inserted=%d updated=%d deleted=%d errors=%d\n",
		len(s.Tables), s.RowsCompared, s.TotalChanges(),
		s.EventCounts[compare.Inserted], s.EventCounts[compare.Updated],
		s.EventCounts[compare.Deleted], s.EventCounts[compare.CompareError])

	if len(s.ColumnCounts) > 0 {
		tw := tablewriter.NewWriter(w)
		tw.SetHeader([]string{"Table.Column", "Changes"})
		keys := make([]string, 0, len(s.ColumnCounts))
		for k := range s.ColumnCounts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tw.Append([]string{k, strconv.Itoa(s.ColumnCounts[k])})
		}
		tw.Render()
	}
	if len(s.Skipped) > 0 {
		tw := tablewriter.NewWriter(w)
		tw.SetHeader([]string{"Skipped Table", "Reason"})
		for _, sk := range s.Skipped {
			tw.Append([]string{sk.Table, sk.Reason})
		}
		tw.Render()
	}
}
