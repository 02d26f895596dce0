package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-gridexport/export"
	"gopkg.in/yaml.v3"
)

// gridFile is the YAML layout of a grid.
//
//	name: people
//	columns:
//	  - field: name
//	  - field: address.city
//	    name: city
//	  - field: born
//	    type: date
//	    format: {layout: "02.01.2006"}
//	rows:
//	  - id: "1"
//	    values: {name: Ann, address: {city: Lyon}, born: "1990-04-01T00:00:00Z"}
//	selected: ["1"]
type gridFile struct {
	Name     string       `yaml:"name"`
	Columns  []gridColumn `yaml:"columns"`
	Rows     []gridRow    `yaml:"rows"`
	Selected []string     `yaml:"selected"`
}

type gridColumn struct {
	ID     string `yaml:"id"`
	Field  string `yaml:"field"`
	Name   string `yaml:"name"`
	Label  string `yaml:"label"`
	Type   string `yaml:"type"`
	Kind   string `yaml:"kind"`
	Format struct {
		Layout string `yaml:"layout"`
		Number string `yaml:"number"`
		Excel  string `yaml:"excel"`
	} `yaml:"format"`
}

type gridRow struct {
	ID     string         `yaml:"id"`
	Values map[string]any `yaml:"values"`
}

// loadGridFile reads a grid. The grid name defaults to the file name without
// its extension and row IDs default to the 1-based row position.
func loadGridFile(path string) (*export.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, export.NewError(export.KindNotFound, fmt.Sprintf("read grid %q failed", path), err)
	}
	var file gridFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, export.NewError(export.KindValidation, fmt.Sprintf("parse grid %q failed", path), err)
	}

	name := strings.TrimSpace(file.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	columns := make([]export.Column, 0, len(file.Columns))
	for i, col := range file.Columns {
		id := col.ID
		if id == "" {
			id = col.Field
		}
		if id == "" {
			id = fmt.Sprintf("col%d", i+1)
		}
		columns = append(columns, export.Column{
			ID:    id,
			Field: col.Field,
			Name:  col.Name,
			Label: col.Label,
			Type:  col.Type,
			Kind:  export.ColumnKind(strings.ToLower(strings.TrimSpace(col.Kind))),
			Format: export.ColumnFormat{
				Layout: col.Format.Layout,
				Number: col.Format.Number,
				Excel:  col.Format.Excel,
			},
		})
	}

	rows := make([]export.Row, 0, len(file.Rows))
	for i, row := range file.Rows {
		id := row.ID
		if id == "" {
			id = fmt.Sprint(i + 1)
		}
		rows = append(rows, export.Row{ID: id, Values: row.Values})
	}

	table := export.NewTable(name, columns, rows)
	table.Select(file.Selected...)
	return table, nil
}

func loadCatalog(paths []string) (*export.GridCatalog, error) {
	catalog := export.NewGridCatalog()
	for _, path := range paths {
		table, err := loadGridFile(path)
		if err != nil {
			return nil, err
		}
		if err := catalog.Register(table); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}
