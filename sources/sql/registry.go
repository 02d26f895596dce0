package exportsql

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-gridexport/export"
)

// Definition registers a named query whose result set becomes a grid.
type Definition struct {
	Name  string
	Query string
	Args  []any
	// KeyColumn names the result column used as row ID. Rows are numbered
	// from 1 when it is empty.
	KeyColumn string
	// Columns overrides the grid columns. When empty every result column
	// becomes a field column named after it.
	Columns []export.Column
}

// Registry stores named query definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a named query definition.
func (r *Registry) Register(def Definition) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return export.NewError(export.KindValidation, "query name is required", nil)
	}
	if strings.TrimSpace(def.Query) == "" {
		return export.NewError(export.KindValidation, "query string is required", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return export.NewError(export.KindValidation, fmt.Sprintf("query %q already registered", def.Name), nil)
	}
	r.defs[def.Name] = def
	return nil
}

// Resolve returns a query definition by name.
func (r *Registry) Resolve(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[strings.TrimSpace(name)]
	return def, ok
}

// Names lists registered query names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
