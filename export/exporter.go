package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// DefaultThreshold is the payload size at which downloads spill to disk.
const DefaultThreshold int64 = 100 * 1024

// Option configures an Exporter.
type Option func(*Exporter)

// Exporter runs a single grid export: project rows, build the document,
// serialize it and hand the bytes to a Downloader. Build one per export.
type Exporter struct {
	format           Format
	formatter        ColumnFormatter
	locale           language.Tag
	timezone         string
	serializers      *SerializerRegistry
	options          SerializationOptions
	configurer       SerializerConfigurer
	threshold        int64
	tempDir          string
	messages         MessageCatalog
	logger           Logger
	metrics          MetricsHook
	filenameTemplate string
	maxDuration      time.Duration
	now              func() time.Time
}

// NewExporter creates an exporter with JSON output and the built-in serializers.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		format:    FormatJSON,
		locale:    language.English,
		threshold: DefaultThreshold,
		logger:    NopLogger{},
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.serializers == nil {
		e.serializers = NewSerializerRegistry()
	}
	if e.messages == nil {
		e.messages = defaultMessages()
	}
	if e.logger == nil {
		e.logger = NopLogger{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// WithFormat selects the output format.
func WithFormat(format Format) Option {
	return func(e *Exporter) { e.format = NormalizeFormat(format) }
}

// WithFormatter overrides the column formatter.
func WithFormatter(formatter ColumnFormatter) Option {
	return func(e *Exporter) { e.formatter = formatter }
}

// WithLocale sets the locale used by the default formatter and captions.
func WithLocale(tag language.Tag) Option {
	return func(e *Exporter) { e.locale = tag }
}

// WithTimezone sets the IANA timezone used by the default formatter.
func WithTimezone(tz string) Option {
	return func(e *Exporter) { e.timezone = tz }
}

// WithSerializers replaces the serializer registry.
func WithSerializers(registry *SerializerRegistry) Option {
	return func(e *Exporter) { e.serializers = registry }
}

// WithSerializationOptions sets the base serialization options.
func WithSerializationOptions(opts SerializationOptions) Option {
	return func(e *Exporter) { e.options = opts }
}

// WithSerializerConfigurer customizes serialization options on every call.
func WithSerializerConfigurer(fn SerializerConfigurer) Option {
	return func(e *Exporter) { e.configurer = fn }
}

// WithThreshold sets the spill threshold in bytes. Zero or less disables spilling.
func WithThreshold(bytes int64) Option {
	return func(e *Exporter) { e.threshold = bytes }
}

// WithTempDir sets the directory for spill files.
func WithTempDir(dir string) Option {
	return func(e *Exporter) { e.tempDir = dir }
}

// WithMessages sets the caption catalog.
func WithMessages(messages MessageCatalog) Option {
	return func(e *Exporter) { e.messages = messages }
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(e *Exporter) { e.logger = logger }
}

// WithMetrics sets the metrics hook.
func WithMetrics(hook MetricsHook) Option {
	return func(e *Exporter) { e.metrics = hook }
}

// WithFilenameTemplate sets a text/template for the download base name.
func WithFilenameTemplate(tmpl string) Option {
	return func(e *Exporter) { e.filenameTemplate = tmpl }
}

// WithMaxDuration bounds a single export.
func WithMaxDuration(d time.Duration) Option {
	return func(e *Exporter) { e.maxDuration = d }
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// Format returns the active output format.
func (e *Exporter) Format() Format {
	return e.format
}

// Formats lists the formats this exporter can render.
func (e *Exporter) Formats() []Format {
	return e.serializers.Formats()
}

// Caption returns the localized caption of the active format.
func (e *Exporter) Caption(tag language.Tag) string {
	return e.messages.Message(tag, CaptionKey(e.format))
}

// FileName returns the download name for grid.
func (e *Exporter) FileName(grid Grid) (string, error) {
	_, download, err := e.serializer()
	if err != nil {
		return "", err
	}
	name := ""
	if grid != nil {
		name = grid.Name()
	}
	return renderFilename(e.filenameTemplate, name, download, e.now())
}

// Preview projects and builds the document without serializing it.
func (e *Exporter) Preview(grid Grid, mode SelectionMode) (Document, error) {
	doc, err := e.document(grid, mode)
	if err != nil {
		return Document{}, AsGoError(err)
	}
	return doc, nil
}

// Export renders grid and returns the payload without delivering it.
func (e *Exporter) Export(ctx context.Context, grid Grid, mode SelectionMode) (Result, []byte, error) {
	run := e.start(grid, mode)
	ctx, cancel := applyMaxDuration(ctx, e.maxDuration)
	if cancel != nil {
		defer cancel()
	}

	result, payload, _, err := e.render(ctx, grid, mode)
	if err != nil {
		e.fail(ctx, run, err)
		return Result{}, nil, AsGoError(err)
	}
	e.complete(ctx, run, result)
	return result, payload, nil
}

// Download renders grid and delivers it. Nothing reaches the downloader when
// any step fails.
func (e *Exporter) Download(ctx context.Context, downloader Downloader, grid Grid, mode SelectionMode) (Result, error) {
	run := e.start(grid, mode)
	if downloader == nil {
		err := NewError(KindDelivery, "downloader is required", nil)
		e.fail(ctx, run, err)
		return Result{}, AsGoError(err)
	}

	ctx, cancel := applyMaxDuration(ctx, e.maxDuration)
	if cancel != nil {
		defer cancel()
	}

	result, payload, download, err := e.render(ctx, grid, mode)
	if err != nil {
		e.fail(ctx, run, err)
		return Result{}, AsGoError(err)
	}

	source := NewByteSource(payload, e.threshold, e.tempDir)
	defer func() {
		if cerr := source.Close(); cerr != nil {
			e.logger.Errorf("gridexport: remove spill file: %v", cerr)
		}
	}()
	if err := source.Prepare(); err != nil {
		e.fail(ctx, run, err)
		return Result{}, AsGoError(err)
	}
	result.Spilled = source.Spilled()

	if err := ctx.Err(); err != nil {
		e.fail(ctx, run, err)
		return Result{}, AsGoError(err)
	}
	if err := downloader.Download(ctx, source, result.Filename, download); err != nil {
		err = deliveryError(err)
		e.fail(ctx, run, err)
		return Result{}, AsGoError(err)
	}

	e.complete(ctx, run, result)
	return result, nil
}

// SerializeBytes renders doc with serializer into memory.
func SerializeBytes(ctx context.Context, serializer Serializer, doc Document, opts SerializationOptions) ([]byte, SerializeStats, error) {
	if serializer == nil {
		return nil, SerializeStats{}, NewError(KindNotFound, "serializer is required", nil)
	}
	var buf bytes.Buffer
	stats, err := serializer.Serialize(ctx, doc, &buf, opts)
	if err != nil {
		return nil, stats, err
	}
	return buf.Bytes(), stats, nil
}

func (e *Exporter) render(ctx context.Context, grid Grid, mode SelectionMode) (Result, []byte, DownloadFormat, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, nil, DownloadFormat{}, err
	}

	serializer, download, err := e.serializer()
	if err != nil {
		return Result{}, nil, DownloadFormat{}, err
	}

	doc, err := e.document(grid, mode)
	if err != nil {
		return Result{}, nil, DownloadFormat{}, err
	}

	payload, stats, err := SerializeBytes(ctx, serializer, doc, e.serializationOptions())
	if err != nil {
		return Result{}, nil, DownloadFormat{}, err
	}

	filename, err := renderFilename(e.filenameTemplate, grid.Name(), download, e.now())
	if err != nil {
		return Result{}, nil, DownloadFormat{}, err
	}

	return Result{
		Grid:     grid.Name(),
		Format:   e.format,
		Mode:     mode,
		Records:  stats.Records,
		Bytes:    int64(len(payload)),
		Filename: filename,
	}, payload, download, nil
}

func (e *Exporter) document(grid Grid, mode SelectionMode) (Document, error) {
	rows, err := ProjectRows(grid, mode)
	if err != nil {
		return Document{}, err
	}
	formatter, err := e.columnFormatter()
	if err != nil {
		return Document{}, err
	}
	return BuildDocument(grid, rows, formatter)
}

func (e *Exporter) serializer() (Serializer, DownloadFormat, error) {
	if e.serializers == nil {
		return nil, DownloadFormat{}, NewError(KindInternal, "serializer registry is not configured", nil)
	}
	serializer, download, ok := e.serializers.Resolve(e.format)
	if !ok {
		return nil, DownloadFormat{}, NewError(KindNotFound, fmt.Sprintf("serializer %q not registered", e.format), nil)
	}
	return serializer, download, nil
}

func (e *Exporter) columnFormatter() (ColumnFormatter, error) {
	if e.formatter != nil {
		return e.formatter, nil
	}
	return NewLocaleFormatter(e.locale, e.timezone)
}

// serializationOptions applies the configurer to a fresh copy of the base
// options so nothing leaks between calls.
func (e *Exporter) serializationOptions() SerializationOptions {
	opts := e.options
	if e.format == FormatNDJSON && opts.JSON.Mode == "" {
		opts.JSON.Mode = JSONModeLines
	}
	if e.configurer != nil {
		opts = e.configurer(opts)
	}
	return opts
}

type exportRun struct {
	grid      string
	mode      SelectionMode
	startedAt time.Time
}

func (e *Exporter) start(grid Grid, mode SelectionMode) exportRun {
	run := exportRun{mode: mode, startedAt: e.now()}
	if grid != nil {
		run.grid = grid.Name()
	}
	e.logger.Debugf("gridexport: export started grid=%s format=%s mode=%s", run.grid, e.format, mode)
	return run
}

func (e *Exporter) complete(ctx context.Context, run exportRun, result Result) {
	e.logger.Infof("gridexport: export completed grid=%s format=%s records=%d bytes=%d file=%s",
		run.grid, e.format, result.Records, result.Bytes, result.Filename)
	e.emitMetrics(ctx, run, "export.completed", result, nil)
}

func (e *Exporter) fail(ctx context.Context, run exportRun, err error) {
	name := "export.failed"
	if errors.Is(err, context.Canceled) {
		name = "export.canceled"
	}
	if el, ok := e.logger.(errorLogger); ok {
		el.LogError(ctx, "gridexport: "+name, err)
	} else {
		e.logger.Errorf("gridexport: %s grid=%s format=%s kind=%s: %v", name, run.grid, e.format, KindFromError(err), err)
	}
	e.emitMetrics(ctx, run, name, Result{}, err)
}

func (e *Exporter) emitMetrics(ctx context.Context, run exportRun, name string, result Result, err error) {
	if e.metrics == nil {
		return
	}
	now := e.now()
	kind := ErrorKind("")
	if err != nil {
		kind = KindFromError(err)
	}
	_ = e.metrics.Emit(context.WithoutCancel(ctx), MetricsEvent{
		Name:      name,
		Grid:      run.grid,
		Format:    e.format,
		Mode:      run.mode,
		Records:   result.Records,
		Bytes:     result.Bytes,
		Duration:  now.Sub(run.startedAt),
		ErrorKind: kind,
		Timestamp: now,
	})
}

func deliveryError(err error) error {
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return NewError(KindDelivery, "download failed", err)
}

// applyMaxDuration bounds ctx by limit on the wall clock. WithNow only affects
// filenames and metrics.
func applyMaxDuration(ctx context.Context, limit time.Duration) (context.Context, context.CancelFunc) {
	if limit <= 0 {
		return ctx, nil
	}
	if existing, ok := ctx.Deadline(); ok && time.Until(existing) < limit {
		return ctx, nil
	}
	return context.WithTimeout(ctx, limit)
}
