package export

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// GridProvider looks up grids by name for transports and commands.
type GridProvider interface {
	Grid(ctx context.Context, name string) (Grid, error)
	Names(ctx context.Context) ([]string, error)
}

// GridCatalog is an in-memory GridProvider.
type GridCatalog struct {
	mu    sync.RWMutex
	grids map[string]Grid
}

// NewGridCatalog creates a catalog holding grids. The first grid registered
// under a name wins; later duplicates and nil or unnamed grids are ignored.
// Use Register when the caller needs to see those errors.
func NewGridCatalog(grids ...Grid) *GridCatalog {
	c := &GridCatalog{grids: make(map[string]Grid)}
	for _, grid := range grids {
		_ = c.Register(grid)
	}
	return c
}

// Register adds a grid under its name.
func (c *GridCatalog) Register(grid Grid) error {
	if grid == nil {
		return NewError(KindValidation, "grid is required", nil)
	}
	name := strings.TrimSpace(grid.Name())
	if name == "" {
		return NewError(KindValidation, "grid name is required", nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.grids[name]; exists {
		return NewError(KindValidation, fmt.Sprintf("grid %q already registered", name), nil)
	}
	c.grids[name] = grid
	return nil
}

// Grid implements GridProvider.
func (c *GridCatalog) Grid(ctx context.Context, name string) (Grid, error) {
	_ = ctx
	c.mu.RLock()
	grid, ok := c.grids[strings.TrimSpace(name)]
	c.mu.RUnlock()
	if !ok {
		return nil, NewError(KindNotFound, fmt.Sprintf("grid %q not found", name), nil)
	}
	return grid, nil
}

// Names implements GridProvider.
func (c *GridCatalog) Names(ctx context.Context) ([]string, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.grids))
	for name := range c.grids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// WithSelection returns a view of grid whose selection is ids. The grid itself
// is not modified.
func WithSelection(grid Grid, ids []string) Grid {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return selectionView{Grid: grid, ids: set}
}

type selectionView struct {
	Grid
	ids map[string]struct{}
}

func (v selectionView) IsSelected(row Row) bool {
	_, ok := v.ids[row.ID]
	return ok
}
