package export

import "testing"

func TestParseSelectionMode(t *testing.T) {
	cases := map[string]SelectionMode{
		"":                  SelectionAll,
		"all":               SelectionAll,
		" ALL ":             SelectionAll,
		"current_selection": SelectionCurrent,
		"selected":          SelectionCurrent,
		"current":           SelectionCurrent,
	}
	for raw, want := range cases {
		got, err := ParseSelectionMode(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", raw, want, got)
		}
	}

	if _, err := ParseSelectionMode("some"); !IsInvalidMode(err) {
		t.Fatalf("expected invalid mode error, got %v", err)
	}
}

func TestProjectRows_All(t *testing.T) {
	table := peopleTable()
	rows, err := ProjectRows(table, SelectionAll)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "1" || rows[1].ID != "2" {
		t.Fatalf("expected all rows in order, got %+v", rows)
	}
}

func TestProjectRows_CurrentSelectionKeepsGridOrder(t *testing.T) {
	table := peopleTable()
	table.Items = append(table.Items, Row{ID: "3", Values: map[string]any{"name": "Cy"}})
	table.Select("3", "1")

	rows, err := ProjectRows(table, SelectionCurrent)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "1" || rows[1].ID != "3" {
		t.Fatalf("expected rows 1,3 in grid order, got %+v", rows)
	}
}

func TestProjectRows_EmptySelection(t *testing.T) {
	rows, err := ProjectRows(peopleTable(), SelectionCurrent)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestProjectRows_InvalidMode(t *testing.T) {
	if _, err := ProjectRows(peopleTable(), SelectionMode("visible")); !IsInvalidMode(err) {
		t.Fatalf("expected invalid mode, got %v", err)
	}
	if _, err := ProjectRows(nil, SelectionAll); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error for nil grid, got %v", err)
	}
}
