package command

import (
	"context"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-gridexport/export"
	"golang.org/x/text/language"
)

// ExportGridHandler runs ExportGrid messages against a grid provider.
type ExportGridHandler struct {
	Provider export.GridProvider
	Options  []export.Option
}

func NewExportGridHandler(provider export.GridProvider, opts ...export.Option) *ExportGridHandler {
	return &ExportGridHandler{Provider: provider, Options: opts}
}

func (h *ExportGridHandler) Execute(ctx context.Context, msg ExportGrid) error {
	if h == nil || h.Provider == nil {
		return errors.New("grid provider is required", errors.CategoryInternal).
			WithTextCode("PROVIDER_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	grid, err := h.Provider.Grid(ctx, msg.Grid)
	if err != nil {
		return export.AsGoError(err)
	}
	mode := msg.Mode
	if len(msg.Selected) > 0 {
		grid = export.WithSelection(grid, msg.Selected)
		if mode == "" {
			mode = export.SelectionCurrent
		}
	}
	// Unknown modes go through unchanged so the exporter reports them.
	if parsed, err := export.ParseSelectionMode(string(mode)); err == nil {
		mode = parsed
	}

	result, err := export.NewExporter(h.options(msg)...).Download(ctx, msg.Downloader, grid, mode)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	if res := gcmd.ResultFromContext[export.Result](ctx); res != nil {
		res.Store(result)
	}
	return nil
}

func (h *ExportGridHandler) options(msg ExportGrid) []export.Option {
	opts := append([]export.Option{}, h.Options...)
	if msg.Format != "" {
		opts = append(opts, export.WithFormat(msg.Format))
	}
	if msg.Locale != language.Und {
		opts = append(opts, export.WithLocale(msg.Locale))
	}
	if msg.Timezone != "" {
		opts = append(opts, export.WithTimezone(msg.Timezone))
	}
	if msg.Configure != nil {
		opts = append(opts, export.WithSerializerConfigurer(msg.Configure))
	}
	return opts
}

// ArtifactRepository stores and lists artifacts.
type ArtifactRepository interface {
	export.ArtifactStore
	export.ArtifactLister
}

// CleanupArtifactsHandler removes stored artifacts.
// DefaultRetention is how long scheduled cleanup keeps stored exports.
const DefaultRetention = 24 * time.Hour

type CleanupArtifactsHandler struct {
	Store  ArtifactRepository
	Config gcmd.HandlerConfig
	Clock  func() time.Time
	// Retention is the minimum age of artifacts removed by the cron handler.
	Retention time.Duration
}

func NewCleanupArtifactsHandler(store ArtifactRepository) *CleanupArtifactsHandler {
	return &CleanupArtifactsHandler{
		Store:     store,
		Config:    gcmd.HandlerConfig{Expression: "0 * * * *"},
		Clock:     time.Now,
		Retention: DefaultRetention,
	}
}

func (h *CleanupArtifactsHandler) Execute(ctx context.Context, msg CleanupArtifacts) error {
	if h == nil || h.Store == nil {
		return errors.New("artifact store is required", errors.CategoryInternal).
			WithTextCode("STORE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	now := msg.Now
	if now.IsZero() && h.Clock != nil {
		now = h.Clock()
	}
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := now.Add(-msg.OlderThan)

	keys, err := h.Store.Keys(ctx, msg.Prefix)
	if err != nil {
		return export.AsGoError(err)
	}
	count := 0
	for _, key := range keys {
		if msg.OlderThan > 0 {
			reader, meta, err := h.Store.Open(ctx, key)
			if err != nil {
				if export.KindFromError(err) == export.KindNotFound {
					continue
				}
				return export.AsGoError(err)
			}
			_ = reader.Close()
			if !meta.CreatedAt.Before(cutoff) {
				continue
			}
		}
		if err := h.Store.Delete(ctx, key); err != nil {
			return export.AsGoError(err)
		}
		count++
	}

	if msg.Result != nil {
		*msg.Result = count
	}
	if res := gcmd.ResultFromContext[int](ctx); res != nil {
		res.Store(count)
	}
	return nil
}

// CronHandler only removes artifacts past Retention. A zero Retention falls
// back to DefaultRetention so a schedule never wipes the store.
func (h *CleanupArtifactsHandler) CronHandler() func() error {
	return func() error {
		retention := DefaultRetention
		if h != nil && h.Retention > 0 {
			retention = h.Retention
		}
		return h.Execute(context.Background(), CleanupArtifacts{OlderThan: retention})
	}
}

func (h *CleanupArtifactsHandler) CronOptions() gcmd.HandlerConfig {
	return h.Config
}

// CLIHandler exposes cleanup via CLI.
func (h *CleanupArtifactsHandler) CLIHandler() any {
	return &cleanupCLI{handler: h}
}

// CLIOptions describes cleanup CLI metadata.
func (h *CleanupArtifactsHandler) CLIOptions() gcmd.CLIConfig {
	return gcmd.CLIConfig{
		Path:        []string{"exports-cleanup"},
		Description: "Remove stored grid export artifacts",
		Group:       "exports",
	}
}

type cleanupCLI struct {
	handler   *CleanupArtifactsHandler
	Prefix    string        `kong:"name='prefix',help='Only remove keys with this prefix'"`
	OlderThan time.Duration `kong:"name='older-than',help='Only remove artifacts older than this'"`
}

func (c *cleanupCLI) Run() error {
	if c == nil || c.handler == nil {
		return errors.New("cleanup handler is required", errors.CategoryInternal).
			WithTextCode("CLEANUP_HANDLER_REQUIRED")
	}
	return c.handler.Execute(context.Background(), CleanupArtifacts{Prefix: c.Prefix, OlderThan: c.OlderThan})
}
