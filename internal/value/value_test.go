package value

import (
	"testing"
	"time"
)

func TestNormalizeNull(t *testing.T) {
	for _, typ := range []string{"boolean", "numeric", "timestamp without time zone", "text", ""} {
		v, err := Normalize(nil, typ)
		if err != nil {
			t.Fatalf("Normalize(nil, %q): %v", typ, err)
		}
		if !v.IsNull() {
			t.Errorf("Normalize(nil, %q) = %v, want null", typ, v)
		}
	}
}

func TestNormalizeBoolEquivalents(t *testing.T) {
	truthy := []any{true, "t", "T", "true", "1", int64(1), []byte("t")}
	for _, raw := range truthy {
		v, err := Normalize(raw, "boolean")
		if err != nil {
			t.Fatalf("Normalize(%v): %v", raw, err)
		}
		if v.Kind != Bool || !v.Bool {
			t.Errorf("Normalize(%v) = %v, want true", raw, v)
		}
	}
	falsy := []any{false, "f", "false", "0", int64(0)}
	for _, raw := range falsy {
		v, err := Normalize(raw, "boolean")
		if err != nil {
			t.Fatalf("Normalize(%v): %v", raw, err)
		}
		if v.Kind != Bool || v.Bool {
			t.Errorf("Normalize(%v) = %v, want false", raw, v)
		}
	}
	if _, err := Normalize("maybe", "boolean"); err == nil {
		t.Error("expected error for non-boolean text")
	}
}

func TestNormalizeNumberPrecision(t *testing.T) {
	a, err := Normalize("1.50", "numeric")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Normalize("1.5", "numeric")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("1.50 and 1.5 should normalize equal, got %v vs %v", a, b)
	}
	c, err := Normalize(int64(2), "bigint")
	if err != nil {
		t.Fatal(err)
	}
	d, err := Normalize("2.000", "numeric")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Equal(d) {
		t.Errorf("2 and 2.000 should normalize equal")
	}
	if _, err := Normalize("12abc", "numeric"); err == nil {
		t.Error("expected error for malformed number")
	}
}

func TestNormalizeTimestampEquivalents(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	inputs := []any{
		"2024-03-01T12:00:00Z",
		"2024-03-01 12:00:00",
		"2024-03-01 12:00:00.123456",
		"2024-03-01 09:00:00.000-03:00",
		time.Date(2024, 3, 1, 9, 0, 0, 987654321, loc),
	}
	want, err := Normalize(inputs[0], "timestamp with time zone")
	if err != nil {
		t.Fatal(err)
	}
	for _, raw := range inputs[1:] {
		got, err := Normalize(raw, "timestamp without time zone")
		if err != nil {
			t.Fatalf("Normalize(%v): %v", raw, err)
		}
		if !got.Equal(want) {
			t.Errorf("Normalize(%v) = %v, want %v", raw, got, want)
		}
	}
	if _, err := Normalize("not-a-date", "date"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestNormalizeTextTrimsAndNulls(t *testing.T) {
	v, err := Normalize("  hello  ", "character varying")
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != Text || v.Text != "hello" {
		t.Errorf("got %v, want trimmed text", v)
	}
	v, err = Normalize("   ", "text")
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsNull() {
		t.Errorf("blank text should normalize to null, got %v", v)
	}
	// A string "1" in a text column stays text.
	v, err = Normalize("1", "text")
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != Text {
		t.Errorf("text column should not be coerced, got kind %v", v.Kind)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	cases := []struct {
		raw any
		typ string
	}{
		{true, "boolean"},
		{"1.50", "numeric"},
		{"2024-03-01T12:00:00Z", "timestamp with time zone"},
		{" padded ", "text"},
		{nil, "text"},
	}
	for _, tc := range cases {
		v1, err := Normalize(tc.raw, tc.typ)
		if err != nil {
			t.Fatalf("Normalize(%v): %v", tc.raw, err)
		}
		v2, err := Normalize(v1.Canonical(), tc.typ)
		if err != nil {
			t.Fatalf("Normalize(Canonical(%v)): %v", tc.raw, err)
		}
		if !v1.Equal(v2) {
			t.Errorf("normalization not idempotent for %v: %v vs %v", tc.raw, v1, v2)
		}
	}
}

func TestEqualAcrossKinds(t *testing.T) {
	b, _ := Normalize(true, "boolean")
	n, _ := Normalize("1", "numeric")
	if b.Equal(n) {
		t.Error("bool true must not equal number 1")
	}
	if !NullValue.Equal(NullValue) {
		t.Error("null must equal null")
	}
}
