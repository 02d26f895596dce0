package export

import (
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestLocaleFormatter_Types(t *testing.T) {
	formatter, err := NewLocaleFormatter(language.English, "UTC")
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}

	ts := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	cases := []struct {
		value any
		col   Column
		want  string
	}{
		{ts, Column{Field: "d", Type: "date"}, "2024-03-04"},
		{ts, Column{Field: "d", Type: "date", Format: ColumnFormat{Layout: "02/01/2006"}}, "04/03/2024"},
		{"true", Column{Field: "b", Type: "bool"}, "true"},
		{"42", Column{Field: "i", Type: "int"}, "42"},
		{1234567, Column{Field: "i", Type: "int", Format: ColumnFormat{Number: "%d"}}, "1,234,567"},
		{2.5, Column{Field: "f", Type: "float"}, "2.5"},
		{"plain", Column{Field: "s"}, "plain"},
	}
	for _, tc := range cases {
		got, err := formatter.FormatValue(tc.value, tc.col)
		if err != nil {
			t.Fatalf("format %v: %v", tc.value, err)
		}
		if got != tc.want {
			t.Fatalf("format %v (%s): expected %q, got %q", tc.value, tc.col.Type, tc.want, got)
		}
	}
}

func TestLocaleFormatter_GermanNumbers(t *testing.T) {
	formatter, err := NewLocaleFormatter(language.German, "")
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}
	got, err := formatter.FormatValue(1234567, Column{Field: "n", Type: "int", Format: ColumnFormat{Number: "%d"}})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "1.234.567" {
		t.Fatalf("expected german grouping, got %q", got)
	}
}

func TestLocaleFormatter_InvalidValue(t *testing.T) {
	formatter, _ := NewLocaleFormatter(language.English, "")
	if _, err := formatter.FormatValue("abc", Column{Field: "n", Type: "int"}); err == nil {
		t.Fatalf("expected error for non-numeric int")
	}
}

func TestLocaleFormatter_InvalidTimezone(t *testing.T) {
	if _, err := NewLocaleFormatter(language.English, "Mars/Base"); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLocaleFormatter_Coercion(t *testing.T) {
	formatter, err := NewLocaleFormatter(language.English, "UTC")
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}

	cases := []struct {
		value any
		typ   string
		want  string
	}{
		{uint8(7), "int", "7"},
		{3.0, "bigint", "3"},
		{" 12 ", "integer", "12"},
		{int32(2), "float", "2"},
		{"1.25", "numeric", "1.25"},
		{1, "boolean", "true"},
		{0.0, "bool", "false"},
		{int64(86400), "date", "1970-01-02"},
		{"2024-03-04 05:06:07", "timestamp", "2024-03-04T05:06:07Z"},
		{"2024-03-04T05:06:07.5Z", "time", "05:06:07"},
		{42, "uuid", "42"},
	}
	for _, tc := range cases {
		got, err := formatter.FormatValue(tc.value, Column{Field: "v", Type: tc.typ})
		if err != nil {
			t.Fatalf("format %v as %s: %v", tc.value, tc.typ, err)
		}
		if got != tc.want {
			t.Fatalf("format %v as %s: expected %q, got %q", tc.value, tc.typ, tc.want, got)
		}
	}
}

func TestLocaleFormatter_Rejects(t *testing.T) {
	formatter, _ := NewLocaleFormatter(language.English, "")
	cases := []struct {
		value any
		typ   string
	}{
		{2.5, "int"},
		{"yes please", "bool"},
		{"next tuesday", "date"},
		{struct{}{}, "float"},
	}
	for _, tc := range cases {
		if _, err := formatter.FormatValue(tc.value, Column{Field: "v", Type: tc.typ}); err == nil {
			t.Fatalf("expected %v to be rejected as %s", tc.value, tc.typ)
		}
	}
}
