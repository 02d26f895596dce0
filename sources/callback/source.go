package exportcallback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-gridexport/export"
)

// RowsFunc loads the rows of a grid.
type RowsFunc func(ctx context.Context) ([]export.Row, error)

// Source describes a grid whose rows are loaded on every lookup.
type Source struct {
	Name     string
	Columns  []export.Column
	Rows     RowsFunc
	Selected func(ctx context.Context) ([]string, error)
}

// Provider serves callback-backed grids by name.
type Provider struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewProvider creates a provider. The first source registered under a name
// wins; later duplicates and invalid sources are ignored. Use Register when
// the caller needs to see those errors.
func NewProvider(sources ...Source) *Provider {
	p := &Provider{sources: make(map[string]Source)}
	for _, src := range sources {
		_ = p.Register(src)
	}
	return p
}

// Register adds a source under its name.
func (p *Provider) Register(src Source) error {
	src.Name = strings.TrimSpace(src.Name)
	if src.Name == "" {
		return export.NewError(export.KindValidation, "source name is required", nil)
	}
	if src.Rows == nil {
		return export.NewError(export.KindValidation, "callback source requires a function", nil)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.sources[src.Name]; exists {
		return export.NewError(export.KindValidation, fmt.Sprintf("source %q already registered", src.Name), nil)
	}
	p.sources[src.Name] = src
	return nil
}

// Grid implements export.GridProvider.
func (p *Provider) Grid(ctx context.Context, name string) (export.Grid, error) {
	p.mu.RLock()
	src, ok := p.sources[strings.TrimSpace(name)]
	p.mu.RUnlock()
	if !ok {
		return nil, export.NewError(export.KindNotFound, fmt.Sprintf("grid %q not found", name), nil)
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, err
	}
	table := export.NewTable(src.Name, src.Columns, rows)
	if src.Selected != nil {
		ids, err := src.Selected(ctx)
		if err != nil {
			return nil, err
		}
		table.Select(ids...)
	}
	return table, nil
}

// Names implements export.GridProvider.
func (p *Provider) Names(ctx context.Context) ([]string, error) {
	_ = ctx
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.sources))
	for name := range p.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// IteratorFunc yields a row or io.EOF.
type IteratorFunc func(ctx context.Context) (export.Row, error)

// Collect drains next into a RowsFunc result.
func Collect(next IteratorFunc) RowsFunc {
	return func(ctx context.Context) ([]export.Row, error) {
		if next == nil {
			return nil, export.NewError(export.KindValidation, "iterator requires a function", nil)
		}
		rows := []export.Row{}
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			row, err := next(ctx)
			if errors.Is(err, io.EOF) {
				return rows, nil
			}
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
	}
}

var _ export.GridProvider = (*Provider)(nil)
