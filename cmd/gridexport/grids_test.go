package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-gridexport/export"
)

const peopleGrid = `
name: people
columns:
  - field: name
  - field: address.city
  - id: actions
    kind: action
rows:
  - id: "1"
    values:
      name: Ann
      address:
        city: Lyon
  - values:
      name: Bo
selected: ["1"]
`

func writeGrid(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write grid: %v", err)
	}
	return path
}

func TestLoadGridFile(t *testing.T) {
	table, err := loadGridFile(writeGrid(t, "grid.yaml", peopleGrid))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Name() != "people" {
		t.Fatalf("unexpected name %q", table.Name())
	}
	cols := table.Columns()
	if len(cols) != 3 || cols[0].ID != "name" || cols[2].Kind != export.ColumnAction || cols[2].Eligible() {
		t.Fatalf("unexpected columns %+v", cols)
	}
	rows := table.Rows()
	if len(rows) != 2 || rows[1].ID != "2" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if got := rows[0].Value(cols[1]); got != "Lyon" {
		t.Fatalf("expected nested value, got %v", got)
	}
	if !table.IsSelected(rows[0]) || table.IsSelected(rows[1]) {
		t.Fatalf("unexpected selection %v", table.Selected)
	}
}

func TestLoadGridFile_NameFromFile(t *testing.T) {
	table, err := loadGridFile(writeGrid(t, "orders.yml", "columns:\n  - field: id\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Name() != "orders" {
		t.Fatalf("expected name from file, got %q", table.Name())
	}
}

func TestLoadGridFile_Errors(t *testing.T) {
	_, err := loadGridFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = loadGridFile(writeGrid(t, "bad.yaml", "columns: {"))
	if export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadCatalog_RejectsDuplicates(t *testing.T) {
	first := writeGrid(t, "a.yaml", peopleGrid)
	second := writeGrid(t, "b.yaml", peopleGrid)
	if _, err := loadCatalog([]string{first, second}); err == nil {
		t.Fatalf("expected duplicate grid error")
	}
}
