package query

import (
	"bytes"
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-gridexport/export"
	"golang.org/x/text/language"
)

func testProvider() export.GridProvider {
	return export.NewGridCatalog(export.NewTable("people", []export.Column{
		{ID: "name", Field: "name"},
		{ID: "city", Field: "address.city"},
		{ID: "edit", Kind: export.ColumnAction},
	}, []export.Row{
		{ID: "1", Values: map[string]any{"name": "Ann", "address": map[string]any{"city": "Lyon"}}},
		{ID: "2", Values: map[string]any{"name": "Bo"}},
	}))
}

func TestPreviewGridHandler_DescribesExport(t *testing.T) {
	handler := NewPreviewGridHandler(testProvider())
	preview, err := handler.Query(context.Background(), PreviewGrid{
		Grid:     "people",
		Format:   export.FormatCSV,
		Selected: []string{"2"},
		Locale:   language.French,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if preview.Caption != "Exporter en CSV" {
		t.Fatalf("unexpected caption %q", preview.Caption)
	}
	if preview.Filename != "people.csv" || preview.Format != export.FormatCSV {
		t.Fatalf("unexpected preview %+v", preview)
	}
	if preview.Mode != export.SelectionCurrent || preview.Records != 1 {
		t.Fatalf("expected one selected record, got %+v", preview)
	}
	if len(preview.Columns) != 2 || preview.Columns[0] != "name" || preview.Columns[1] != "city" {
		t.Fatalf("unexpected columns %v", preview.Columns)
	}
}

func TestPreviewGridHandler_DefaultsToEnglishJSON(t *testing.T) {
	handler := NewPreviewGridHandler(testProvider())
	preview, err := handler.Query(context.Background(), PreviewGrid{Grid: "people", Mode: "all"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if preview.Caption != "Export to JSON" || preview.Records != 2 || preview.Mode != export.SelectionAll {
		t.Fatalf("unexpected preview %+v", preview)
	}
}

func TestPreviewGridHandler_Errors(t *testing.T) {
	handler := NewPreviewGridHandler(testProvider())

	_, err := handler.Query(context.Background(), PreviewGrid{})
	var ge *goerrors.Error
	if !errors.As(err, &ge) || ge.TextCode != "GRID_REQUIRED" {
		t.Fatalf("expected GRID_REQUIRED, got %v", err)
	}

	_, err = handler.Query(context.Background(), PreviewGrid{Grid: "people", Mode: "visible"})
	if !errors.As(err, &ge) || ge.TextCode != "invalid_mode" {
		t.Fatalf("expected invalid_mode, got %v", err)
	}

	_, err = handler.Query(context.Background(), PreviewGrid{Grid: "nope"})
	if !goerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	var nilHandler *PreviewGridHandler
	if _, err := nilHandler.Query(context.Background(), PreviewGrid{Grid: "people"}); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestListGridsHandler(t *testing.T) {
	handler := NewListGridsHandler(testProvider())
	listing, err := handler.Query(context.Background(), ListGrids{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(listing.Grids) != 1 || listing.Grids[0] != "people" {
		t.Fatalf("unexpected grids %v", listing.Grids)
	}
	want := []export.Format{export.FormatCSV, export.FormatJSON, export.FormatNDJSON, export.FormatXLSX}
	if len(listing.Formats) != len(want) {
		t.Fatalf("unexpected formats %v", listing.Formats)
	}
	for i := range want {
		if listing.Formats[i] != want[i] {
			t.Fatalf("unexpected formats %v", listing.Formats)
		}
	}
}

func TestArtifactMetadataHandler(t *testing.T) {
	store := export.NewMemoryStore()
	ref, err := store.Put(context.Background(), "people/a/people.csv", bytes.NewBufferString("name\nAnn\n"), export.ArtifactMeta{
		ContentType: "text/csv",
		Filename:    "people.csv",
		Format:      export.FormatCSV,
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	handler := NewArtifactMetadataHandler(store)
	meta, err := handler.Query(context.Background(), ArtifactMetadata{Key: ref.Key})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if meta.Filename != "people.csv" || meta.Size != 9 {
		t.Fatalf("unexpected meta %+v", meta)
	}

	if _, err := handler.Query(context.Background(), ArtifactMetadata{}); err == nil {
		t.Fatalf("expected key validation error")
	}
	if _, err := handler.Query(context.Background(), ArtifactMetadata{Key: "missing"}); !goerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
