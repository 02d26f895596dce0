package query

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-gridexport/export"
	"golang.org/x/text/language"
)

// PreviewGrid describes an export without rendering it.
type PreviewGrid struct {
	Grid     string
	Format   export.Format
	Mode     export.SelectionMode
	Selected []string
	Locale   language.Tag
}

func (PreviewGrid) Type() string { return "gridexport:preview" }

func (msg PreviewGrid) Validate() error {
	if strings.TrimSpace(msg.Grid) == "" {
		return errors.New("grid name is required", errors.CategoryValidation).
			WithTextCode("GRID_REQUIRED")
	}
	return nil
}

// ListGrids requests the exportable grids and formats.
type ListGrids struct{}

func (ListGrids) Type() string { return "gridexport:list" }

func (ListGrids) Validate() error { return nil }

// ArtifactMetadata requests metadata for a stored export.
type ArtifactMetadata struct {
	Key string
}

func (ArtifactMetadata) Type() string { return "gridexport:artifact" }

func (msg ArtifactMetadata) Validate() error {
	if strings.TrimSpace(msg.Key) == "" {
		return errors.New("artifact key is required", errors.CategoryValidation).
			WithTextCode("ARTIFACT_KEY_REQUIRED")
	}
	return nil
}

// GridPreview is the answer to PreviewGrid.
type GridPreview struct {
	Grid     string
	Caption  string
	Filename string
	Format   export.Format
	Mode     export.SelectionMode
	Columns  []string
	Records  int
}

// GridListing is the answer to ListGrids.
type GridListing struct {
	Grids   []string
	Formats []export.Format
}
