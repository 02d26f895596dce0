package exportsql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/goliatone/go-gridexport/export"
)

// Provider materializes named queries into grids. Each Grid call runs the
// query once; the returned table is a snapshot of the result set.
type Provider struct {
	Registry *Registry
	DB       *sql.DB
}

// NewProvider creates a query-backed grid provider.
func NewProvider(reg *Registry, db *sql.DB) *Provider {
	return &Provider{Registry: reg, DB: db}
}

// Grid implements export.GridProvider.
func (p *Provider) Grid(ctx context.Context, name string) (export.Grid, error) {
	if p == nil || p.Registry == nil {
		return nil, export.NewError(export.KindValidation, "query registry is required", nil)
	}
	if p.DB == nil {
		return nil, export.NewError(export.KindValidation, "database is required", nil)
	}
	def, ok := p.Registry.Resolve(name)
	if !ok {
		return nil, export.NewError(export.KindNotFound, fmt.Sprintf("grid %q not found", name), nil)
	}

	rows, err := p.DB.QueryContext(ctx, def.Query, def.Args...)
	if err != nil {
		return nil, queryError(ctx, def.Name, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, queryError(ctx, def.Name, err)
	}
	keyIndex := -1
	for i, col := range names {
		if def.KeyColumn != "" && col == def.KeyColumn {
			keyIndex = i
		}
	}
	if def.KeyColumn != "" && keyIndex < 0 {
		return nil, export.NewError(export.KindValidation, fmt.Sprintf("key column %q not in result of %q", def.KeyColumn, def.Name), nil)
	}

	items := []export.Row{}
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, queryError(ctx, def.Name, err)
		}
		row := export.Row{ID: strconv.Itoa(len(items) + 1), Values: make(map[string]any, len(names))}
		for i, col := range names {
			row.Values[col] = normalizeValue(values[i])
		}
		if keyIndex >= 0 {
			row.ID = fmt.Sprint(row.Values[names[keyIndex]])
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, def.Name, err)
	}

	columns := def.Columns
	if len(columns) == 0 {
		columns = make([]export.Column, len(names))
		for i, col := range names {
			columns[i] = export.Column{ID: col, Field: col}
		}
	}
	return export.NewTable(def.Name, columns, items), nil
}

// Names implements export.GridProvider.
func (p *Provider) Names(ctx context.Context) ([]string, error) {
	_ = ctx
	if p == nil || p.Registry == nil {
		return nil, export.NewError(export.KindValidation, "query registry is required", nil)
	}
	return p.Registry.Names(), nil
}

// normalizeValue turns driver byte slices into strings so they format as text.
func normalizeValue(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}

func queryError(ctx context.Context, name string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return export.NewError(export.KindInternal, fmt.Sprintf("query %q failed", name), err)
}

var _ export.GridProvider = (*Provider)(nil)
