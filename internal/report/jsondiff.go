package report

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// normalizeJSON formats a document with sorted keys so diffs are stable.
func normalizeJSON(v any) string {
	v = sortKeys(v)
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
	return strings.TrimRight(buf.String(), "\n")
}

func sortKeys(v any) any {
	switch m := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		res := make(map[string]any, len(m))
		for _, k := range keys {
			res[k] = sortKeys(m[k])
		}
		return res
	case []any:
		for i := range m {
			m[i] = sortKeys(m[i])
		}
		return m
	default:
		return v
	}
}

// UnifiedRowDiff renders the before/after state of one row as a unified
// diff of its JSON representation, for human review of a detected change.
func UnifiedRowDiff(key string, before, after map[string]any) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(normalizeJSON(before) + "\n"),
		B:        difflib.SplitLines(normalizeJSON(after) + "\n"),
		FromFile: key + " (source)",
		ToFile:   key + " (target)",
		Context:  3,
	}
	s, _ := difflib.GetUnifiedDiffString(diff)
	return s
}
