package export

import (
	"strings"

	deepcopy "github.com/tiendc/go-deepcopy"
)

// Table is an in-memory Grid.
type Table struct {
	Title    string
	Cols     []Column
	Items    []Row
	Selected []string
}

// NewTable creates a table with the given columns and rows.
func NewTable(name string, columns []Column, rows []Row) *Table {
	return &Table{Title: name, Cols: columns, Items: rows}
}

// Name returns the table name.
func (t *Table) Name() string {
	if t == nil {
		return ""
	}
	return t.Title
}

// Columns returns the table columns in display order.
func (t *Table) Columns() []Column {
	if t == nil {
		return nil
	}
	return t.Cols
}

// Rows returns the table rows in display order.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	return t.Items
}

// Select replaces the current selection.
func (t *Table) Select(ids ...string) {
	t.Selected = append([]string(nil), ids...)
}

// IsSelected reports whether the row is part of the current selection.
func (t *Table) IsSelected(row Row) bool {
	if t == nil || row.ID == "" {
		return false
	}
	for _, id := range t.Selected {
		if id == row.ID {
			return true
		}
	}
	return false
}

// Snapshot deep-copies a table so later mutations by its owner do not reach an
// export in progress.
func Snapshot(t *Table) (*Table, error) {
	if t == nil {
		return nil, NewError(KindValidation, "table is nil", nil)
	}
	out := &Table{}
	if err := deepcopy.Copy(out, t); err != nil {
		return nil, NewError(KindInternal, "table snapshot failed", err)
	}
	return out, nil
}

// Eligible reports whether the column is bound to a data field and takes part
// in exports. Unknown kinds are not eligible.
func (c Column) Eligible() bool {
	if strings.TrimSpace(c.Field) == "" {
		return false
	}
	return c.Kind == "" || c.Kind == ColumnField
}

// DisplayName returns the record key for the column.
func (c Column) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	field := strings.TrimSpace(c.Field)
	if idx := strings.LastIndex(field, "."); idx >= 0 {
		return field[idx+1:]
	}
	return field
}

// Value resolves the raw value for a column. Dotted fields walk nested maps;
// anything missing resolves to nil.
func (r Row) Value(col Column) any {
	field := strings.TrimSpace(col.Field)
	if field == "" || r.Values == nil {
		return nil
	}
	if value, ok := r.Values[field]; ok {
		return value
	}

	var current any = r.Values
	for _, part := range strings.Split(field, ".") {
		switch node := current.(type) {
		case map[string]any:
			current = node[part]
		case map[string]string:
			value, ok := node[part]
			if !ok {
				return nil
			}
			current = value
		default:
			return nil
		}
		if current == nil {
			return nil
		}
	}
	return current
}
