// Package value canonicalizes raw database values so that equivalent
// representations from different dump formats compare equal.
package value

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind enumerates the normalized value kinds. The comparator's equality
// logic is exhaustive over these.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	Text
	Timestamp
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case Text:
		return "text"
	case Timestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a normalized field value.
type Value struct {
	Kind   Kind
	Bool   bool
	Number decimal.Decimal
	Text   string
	Time   time.Time
}

// NullValue is the canonical null.
var NullValue = Value{Kind: Null}

// IsNull reports whether v is the canonical null.
func (v Value) IsNull() bool { return v.Kind == Null }

// Equal reports whether two normalized values are equal. Values of
// different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Null:
		return true
	case Bool:
		return v.Bool == o.Bool
	case Number:
		return v.Number.Equal(o.Number)
	case Text:
		return v.Text == o.Text
	case Timestamp:
		return v.Time.Equal(o.Time)
	default:
		return false
	}
}

// Canonical returns the canonical Go representation used when a value is
// serialized, e.g. into an audit document. Numbers are rendered as
// strings to preserve arbitrary precision.
func (v Value) Canonical() any {
	switch v.Kind {
	case Null:
		return nil
	case Bool:
		return v.Bool
	case Number:
		return v.Number.String()
	case Text:
		return v.Text
	case Timestamp:
		return v.Time.Format(time.RFC3339)
	default:
		return nil
	}
}

// String renders the value for logs and reports.
func (v Value) String() string {
	if v.Kind == Null {
		return "<null>"
	}
	return fmt.Sprint(v.Canonical())
}

// timestampLayouts are the accepted textual timestamp representations, in
// the order they are tried. Dumps taken with different pg_dump settings
// disagree on fractional seconds and time zone suffixes.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize canonicalizes a raw value according to the column's declared
// SQL type. It is a pure function: no I/O, no shared state.
//
// nil and empty text in non-text context normalize to the canonical null.
// Timestamps are converted to UTC and truncated to whole seconds so that
// differing sub-second resolutions never produce spurious diffs.
func Normalize(raw any, declaredType string) (Value, error) {
	if raw == nil {
		return NullValue, nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	switch classify(declaredType) {
	case classBool:
		return normalizeBool(raw)
	case classNumber:
		return normalizeNumber(raw)
	case classTimestamp:
		return normalizeTimestamp(raw)
	case classText:
		return normalizeText(raw), nil
	default:
		return normalizeDynamic(raw)
	}
}

type class int

const (
	classUnknown class = iota
	classBool
	classNumber
	classTimestamp
	classText
)

// classify maps an information_schema data_type to a normalization class.
func classify(declaredType string) class {
	t := strings.ToLower(strings.TrimSpace(declaredType))
	switch {
	case t == "":
		return classUnknown
	case t == "boolean" || t == "bool":
		return classBool
	case t == "smallint" || t == "integer" || t == "bigint" ||
		t == "numeric" || t == "decimal" || t == "real" ||
		t == "double precision" || t == "money" ||
		strings.HasPrefix(t, "numeric("):
		return classNumber
	case t == "date" || strings.HasPrefix(t, "timestamp") || strings.HasPrefix(t, "time"):
		return classTimestamp
	default:
		return classText
	}
}

func normalizeBool(raw any) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return Value{Kind: Bool, Bool: v}, nil
	case int64:
		if v == 0 || v == 1 {
			return Value{Kind: Bool, Bool: v == 1}, nil
		}
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		switch s {
		case "":
			return NullValue, nil
		case "t", "true", "1", "y", "yes", "s":
			return Value{Kind: Bool, Bool: true}, nil
		case "f", "false", "0", "n", "no":
			return Value{Kind: Bool, Bool: false}, nil
		}
	}
	return NullValue, fmt.Errorf("not a boolean: %v", raw)
}

func normalizeNumber(raw any) (Value, error) {
	switch v := raw.(type) {
	case int:
		return Value{Kind: Number, Number: decimal.NewFromInt(int64(v))}, nil
	case int32:
		return Value{Kind: Number, Number: decimal.NewFromInt(int64(v))}, nil
	case int64:
		return Value{Kind: Number, Number: decimal.NewFromInt(v)}, nil
	case float32:
		return Value{Kind: Number, Number: decimal.NewFromFloat32(v)}, nil
	case float64:
		return Value{Kind: Number, Number: decimal.NewFromFloat(v)}, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return NullValue, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return NullValue, fmt.Errorf("not a number: %q", v)
		}
		return Value{Kind: Number, Number: d}, nil
	}
	return NullValue, fmt.Errorf("not a number: %v (%T)", raw, raw)
}

func normalizeTimestamp(raw any) (Value, error) {
	switch v := raw.(type) {
	case time.Time:
		return Value{Kind: Timestamp, Time: v.UTC().Truncate(time.Second)}, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return NullValue, nil
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Value{Kind: Timestamp, Time: t.UTC().Truncate(time.Second)}, nil
			}
		}
		return NullValue, fmt.Errorf("unparseable timestamp: %q", v)
	}
	return NullValue, fmt.Errorf("not a timestamp: %v (%T)", raw, raw)
}

// normalizeText trims surrounding whitespace; a value that is empty after
// trimming normalizes to null, matching how the dumps encode absent text.
func normalizeText(raw any) Value {
	s := strings.TrimSpace(fmt.Sprint(raw))
	if s == "" {
		return NullValue
	}
	return Value{Kind: Text, Text: s}
}

// normalizeDynamic handles columns whose declared type is unknown (e.g.
// rows read without schema metadata). Only the Go type is consulted:
// strings are never guessed into booleans or numbers.
func normalizeDynamic(raw any) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return Value{Kind: Bool, Bool: v}, nil
	case int, int32, int64, float32, float64:
		return normalizeNumber(v)
	case time.Time:
		return normalizeTimestamp(v)
	default:
		return normalizeText(v), nil
	}
}
