package export

import (
	"fmt"
	"strings"
)

// ParseSelectionMode coerces raw mode values into known modes.
func ParseSelectionMode(raw string) (SelectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(SelectionAll):
		return SelectionAll, nil
	case string(SelectionCurrent), "current", "selected", "selection":
		return SelectionCurrent, nil
	default:
		return "", NewError(KindInvalidMode, fmt.Sprintf("selection mode %q not supported", raw), nil)
	}
}

// ProjectRows returns the rows that take part in an export, in grid order.
func ProjectRows(grid Grid, mode SelectionMode) ([]Row, error) {
	if grid == nil {
		return nil, NewError(KindValidation, "grid is required", nil)
	}

	switch mode {
	case SelectionAll:
		rows := grid.Rows()
		out := make([]Row, len(rows))
		copy(out, rows)
		return out, nil
	case SelectionCurrent:
		rows := grid.Rows()
		out := make([]Row, 0, len(rows))
		for _, row := range rows {
			if grid.IsSelected(row) {
				out = append(out, row)
			}
		}
		return out, nil
	default:
		return nil, NewError(KindInvalidMode, fmt.Sprintf("selection mode %q not supported", mode), nil)
	}
}
