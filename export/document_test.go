package export

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestBuildDocument_KeysAndNulls(t *testing.T) {
	table := peopleTable()
	rows, _ := ProjectRows(table, SelectionAll)

	doc, err := BuildDocument(table, rows, StringFormatter{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(doc.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(doc.Records))
	}
	if len(doc.Columns) != 2 {
		t.Fatalf("action column must not be exported, got %d columns", len(doc.Columns))
	}

	first := doc.Records[0]
	if !reflect.DeepEqual(first.Keys(), []string{"name", "age"}) {
		t.Fatalf("unexpected keys %v", first.Keys())
	}
	if v, _ := first.Get("age"); v != "30" {
		t.Fatalf("expected age 30, got %q", v)
	}

	second := doc.Records[1]
	if second.Len() != 2 {
		t.Fatalf("expected null key to be kept, got %d fields", second.Len())
	}
	if !second.IsNull("age") {
		t.Fatalf("expected explicit null for age")
	}
	if _, ok := second.Get("edit"); ok {
		t.Fatalf("ineligible column leaked into record")
	}
}

func TestBuildDocument_EmptyRows(t *testing.T) {
	doc, err := BuildDocument(peopleTable(), nil, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(doc.Records) != 0 {
		t.Fatalf("expected empty document")
	}
}

func TestBuildDocument_FormatterSeesColumn(t *testing.T) {
	table := peopleTable()
	rows, _ := ProjectRows(table, SelectionAll)

	var seen []string
	formatter := FormatterFunc(func(value any, col Column) (string, error) {
		seen = append(seen, col.ID)
		return StringFormatter{}.FormatValue(value, col)
	})
	if _, err := BuildDocument(table, rows, formatter); err != nil {
		t.Fatalf("build: %v", err)
	}
	// Row 2 has a null age, so the formatter is skipped for it.
	if !reflect.DeepEqual(seen, []string{"name", "age", "name"}) {
		t.Fatalf("unexpected formatter calls %v", seen)
	}
}

func TestBuildDocument_FormatterErrorAborts(t *testing.T) {
	table := peopleTable()
	rows, _ := ProjectRows(table, SelectionAll)
	cause := errors.New("cannot format Bo")

	formatter := FormatterFunc(func(value any, col Column) (string, error) {
		if value == "Bo" {
			return "", cause
		}
		return StringFormatter{}.FormatValue(value, col)
	})

	doc, err := BuildDocument(table, rows, formatter)
	if !IsFormatting(err) {
		t.Fatalf("expected formatting error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped")
	}
	if len(doc.Records) != 0 {
		t.Fatalf("expected no partial document")
	}
}

func TestBuildDocument_DuplicateNames(t *testing.T) {
	table := NewTable("dup", []Column{
		{Field: "billing.city"},
		{Field: "shipping.city"},
	}, nil)

	if _, err := BuildDocument(table, nil, nil); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildDocument_TypedNilsAreNull(t *testing.T) {
	nick := "annie"
	born := time.Date(1990, 2, 3, 0, 0, 0, 0, time.UTC)
	var (
		noNick *string
		noDate *time.Time
		noAge  *int
		noTags []string
	)
	table := NewTable("people", []Column{
		{ID: "nick", Field: "nick"},
		{ID: "born", Field: "born", Type: "date"},
		{ID: "age", Field: "age", Type: "int"},
		{ID: "tags", Field: "tags"},
	}, []Row{
		{ID: "1", Values: map[string]any{"nick": &nick, "born": &born, "age": noAge, "tags": noTags}},
		{ID: "2", Values: map[string]any{"nick": noNick, "born": noDate, "age": noAge, "tags": noTags}},
	})
	rows, _ := ProjectRows(table, SelectionAll)

	formatter, err := NewLocaleFormatter(language.English, "")
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}
	doc, err := BuildDocument(table, rows, formatter)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	first := doc.Records[0]
	if v, _ := first.Get("nick"); v != "annie" {
		t.Fatalf("expected dereferenced nick, got %q", v)
	}
	if v, _ := first.Get("born"); v != "1990-02-03" {
		t.Fatalf("expected dereferenced date, got %q", v)
	}
	for _, key := range []string{"nick", "born", "age", "tags"} {
		if !doc.Records[1].IsNull(key) {
			t.Fatalf("expected %s to be null", key)
		}
	}
	if !first.IsNull("age") || !first.IsNull("tags") {
		t.Fatalf("expected typed nils in first row to be null")
	}

	_, payload, err := NewExporter().Export(context.Background(), table, SelectionAll)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := `[{"nick":"annie","born":"1990-02-03","age":null,"tags":null},{"nick":null,"born":null,"age":null,"tags":null}]`
	if got := strings.TrimSpace(string(payload)); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
