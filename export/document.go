package export

import (
	"fmt"
	"reflect"
)

// BuildDocument formats the given rows into one record per row. Only eligible
// columns contribute keys. Any formatter failure aborts the whole document.
func BuildDocument(grid Grid, rows []Row, formatter ColumnFormatter) (Document, error) {
	if grid == nil {
		return Document{}, NewError(KindValidation, "grid is required", nil)
	}
	if formatter == nil {
		formatter = StringFormatter{}
	}

	columns, err := EligibleColumns(grid.Columns())
	if err != nil {
		return Document{}, err
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		record := Record{Fields: make([]Field, 0, len(columns))}
		for _, col := range columns {
			raw := cellValue(row.Value(col))
			if raw == nil {
				record.Fields = append(record.Fields, Field{Key: col.DisplayName()})
				continue
			}
			formatted, err := formatter.FormatValue(raw, col)
			if err != nil {
				return Document{}, NewError(KindFormatting, fmt.Sprintf("format row %d (%s) column %q", i, row.ID, col.DisplayName()), err)
			}
			record.Fields = append(record.Fields, Field{Key: col.DisplayName(), Value: &formatted})
		}
		records = append(records, record)
	}

	return Document{Columns: columns, Records: records}, nil
}

// cellValue follows pointers to the value they hold. Nil pointers, maps,
// slices and interfaces become nil so they serialize as null.
func cellValue(raw any) any {
	if isNil(raw) {
		return nil
	}
	v := reflect.ValueOf(raw)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.CanInterface() {
		return raw
	}
	out := v.Interface()
	if _, ok := raw.(fmt.Stringer); ok {
		if _, still := out.(fmt.Stringer); !still {
			return raw
		}
	}
	return out
}

func isNil(raw any) bool {
	if raw == nil {
		return true
	}
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// EligibleColumns filters columns down to the exportable ones, preserving order.
func EligibleColumns(columns []Column) ([]Column, error) {
	out := make([]Column, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if !col.Eligible() {
			continue
		}
		name := col.DisplayName()
		if _, ok := seen[name]; ok {
			return nil, NewError(KindValidation, fmt.Sprintf("duplicate column name %q", name), nil)
		}
		seen[name] = struct{}{}
		out = append(out, col)
	}
	return out, nil
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.Fields)
}

// Keys returns the record keys in column order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.Fields))
	for i, field := range r.Fields {
		keys[i] = field.Key
	}
	return keys
}

// Get returns the value for key. ok is false when the key is absent; a present
// null key returns ("", true) and IsNull reports true.
func (r Record) Get(key string) (string, bool) {
	for _, field := range r.Fields {
		if field.Key == key {
			if field.Value == nil {
				return "", true
			}
			return *field.Value, true
		}
	}
	return "", false
}

// IsNull reports whether key is present with an explicit null.
func (r Record) IsNull(key string) bool {
	for _, field := range r.Fields {
		if field.Key == key {
			return field.Value == nil
		}
	}
	return false
}
