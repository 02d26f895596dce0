package query

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-gridexport/export"
	"golang.org/x/text/language"
)

// PreviewGridHandler projects and builds a document without serializing it.
type PreviewGridHandler struct {
	Provider export.GridProvider
	Options  []export.Option
}

func NewPreviewGridHandler(provider export.GridProvider, opts ...export.Option) *PreviewGridHandler {
	return &PreviewGridHandler{Provider: provider, Options: opts}
}

func (h *PreviewGridHandler) Query(ctx context.Context, msg PreviewGrid) (GridPreview, error) {
	if h == nil || h.Provider == nil {
		return GridPreview{}, errors.New("grid provider is required", errors.CategoryInternal).
			WithTextCode("PROVIDER_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return GridPreview{}, err
	}

	grid, err := h.Provider.Grid(ctx, msg.Grid)
	if err != nil {
		return GridPreview{}, export.AsGoError(err)
	}
	mode := msg.Mode
	if len(msg.Selected) > 0 {
		grid = export.WithSelection(grid, msg.Selected)
		if mode == "" {
			mode = export.SelectionCurrent
		}
	}
	if parsed, err := export.ParseSelectionMode(string(mode)); err == nil {
		mode = parsed
	}

	opts := append([]export.Option{}, h.Options...)
	if msg.Format != "" {
		opts = append(opts, export.WithFormat(msg.Format))
	}
	tag := msg.Locale
	if tag != language.Und {
		opts = append(opts, export.WithLocale(tag))
	} else {
		tag = language.English
	}
	exporter := export.NewExporter(opts...)

	doc, err := exporter.Preview(grid, mode)
	if err != nil {
		return GridPreview{}, export.AsGoError(err)
	}
	filename, err := exporter.FileName(grid)
	if err != nil {
		return GridPreview{}, export.AsGoError(err)
	}

	columns := make([]string, len(doc.Columns))
	for i, col := range doc.Columns {
		columns[i] = col.DisplayName()
	}
	return GridPreview{
		Grid:     grid.Name(),
		Caption:  exporter.Caption(tag),
		Filename: filename,
		Format:   exporter.Format(),
		Mode:     mode,
		Columns:  columns,
		Records:  len(doc.Records),
	}, nil
}

// ListGridsHandler lists grids and the formats they can be exported to.
type ListGridsHandler struct {
	Provider export.GridProvider
	Options  []export.Option
}

func NewListGridsHandler(provider export.GridProvider, opts ...export.Option) *ListGridsHandler {
	return &ListGridsHandler{Provider: provider, Options: opts}
}

func (h *ListGridsHandler) Query(ctx context.Context, msg ListGrids) (GridListing, error) {
	_ = msg
	if h == nil || h.Provider == nil {
		return GridListing{}, errors.New("grid provider is required", errors.CategoryInternal).
			WithTextCode("PROVIDER_REQUIRED")
	}
	names, err := h.Provider.Names(ctx)
	if err != nil {
		return GridListing{}, export.AsGoError(err)
	}
	return GridListing{
		Grids:   names,
		Formats: export.NewExporter(h.Options...).Formats(),
	}, nil
}

// ArtifactMetadataHandler returns metadata for stored exports.
type ArtifactMetadataHandler struct {
	Store export.ArtifactStore
}

func NewArtifactMetadataHandler(store export.ArtifactStore) *ArtifactMetadataHandler {
	return &ArtifactMetadataHandler{Store: store}
}

func (h *ArtifactMetadataHandler) Query(ctx context.Context, msg ArtifactMetadata) (export.ArtifactMeta, error) {
	if h == nil || h.Store == nil {
		return export.ArtifactMeta{}, errors.New("artifact store is required", errors.CategoryInternal).
			WithTextCode("STORE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return export.ArtifactMeta{}, err
	}
	reader, meta, err := h.Store.Open(ctx, msg.Key)
	if err != nil {
		return export.ArtifactMeta{}, export.AsGoError(err)
	}
	_ = reader.Close()
	return meta, nil
}
