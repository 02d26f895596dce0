package exportapi

import (
	"io"
	"net/http"
	"path"
	"strings"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-gridexport/export"
	"github.com/goliatone/go-gridexport/locale"
	"golang.org/x/text/language"
)

// DefaultBasePath is where grid export routes are mounted.
const DefaultBasePath = "/exports"

const artifactsSegment = "artifacts"

// Authenticator reports how the request principal authenticated.
type Authenticator func(req Request) locale.Authentication

// Config configures the shared export API controller.
type Config struct {
	Provider       export.GridProvider
	BasePath       string
	Options        []export.Option
	Locales        *locale.Chain
	Authenticate   Authenticator
	Store          export.ArtifactStore
	Logger         export.Logger
	MaxBufferBytes int64
}

// Controller exposes grid export handlers for multiple transports.
//
//	GET  <base>                       list grids and formats
//	GET  <base>/<grid>                download an export
//	GET  <base>/<grid>/preview        describe an export without rendering it
//	POST <base>/<grid>                store an export (requires Store)
//	GET  <base>/artifacts/<key...>    download a stored export
type Controller struct {
	provider       export.GridProvider
	basePath       string
	options        []export.Option
	locales        *locale.Chain
	authenticate   Authenticator
	store          export.ArtifactStore
	logger         export.Logger
	maxBufferBytes int64
}

// NewController creates a shared export API controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = export.NopLogger{}
	}
	maxBuffer := cfg.MaxBufferBytes
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBufferBytes
	}
	return &Controller{
		provider:       cfg.Provider,
		basePath:       basePath,
		options:        cfg.Options,
		locales:        cfg.Locales,
		authenticate:   cfg.Authenticate,
		store:          cfg.Store,
		logger:         logger,
		maxBufferBytes: maxBuffer,
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// Serve routes export endpoints using the shared controller.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		WriteError(res, export.NewError(export.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, export.NewError(export.KindInternal, "request is nil", nil))
		return
	}
	if c.provider == nil {
		WriteError(res, export.NewError(export.KindNotImpl, "grid provider not configured", nil))
		return
	}
	if !strings.HasPrefix(req.Path(), c.basePath) {
		writeNotFound(res)
		return
	}

	pathSuffix := strings.Trim(strings.TrimPrefix(req.Path(), c.basePath), "/")
	parts := []string{}
	if pathSuffix != "" {
		parts = strings.Split(pathSuffix, "/")
	}

	switch req.Method() {
	case http.MethodGet:
		switch {
		case len(parts) == 0:
			c.handleList(req, res)
		case parts[0] == artifactsSegment && len(parts) > 1:
			c.handleArtifact(req, res, path.Join(parts[1:]...))
		case len(parts) == 1:
			c.handleDownload(req, res, parts[0])
		case len(parts) == 2 && parts[1] == "preview":
			c.handlePreview(req, res, parts[0])
		default:
			writeNotFound(res)
		}
	case http.MethodPost:
		if len(parts) != 1 || parts[0] == artifactsSegment {
			writeNotFound(res)
			return
		}
		c.handleStore(req, res, parts[0])
	default:
		res.SetHeader("Allow", "GET,POST")
		res.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (c *Controller) handleList(req Request, res Response) {
	names, err := c.provider.Names(req.Context())
	if err != nil {
		WriteError(res, err)
		return
	}
	formats := []string{}
	for _, format := range c.exporter(Params{}).Formats() {
		formats = append(formats, string(format))
	}
	writeJSON(res, http.StatusOK, ListResponse{Grids: names, Formats: formats})
}

func (c *Controller) handleDownload(req Request, res Response, name string) {
	grid, params, err := c.prepare(req, name)
	if err != nil {
		WriteError(res, err)
		return
	}

	tracked := &trackingResponse{Response: res}
	downloader := ResponseDownloader{Res: tracked, MaxBufferBytes: c.maxBufferBytes}
	if _, err := c.exporter(params).Download(req.Context(), downloader, grid, params.Mode); err != nil {
		if !tracked.started {
			WriteError(res, err)
			return
		}
		c.logger.Errorf("gridexport: download failed after write: %v", err)
	}
}

func (c *Controller) handlePreview(req Request, res Response, name string) {
	grid, params, err := c.prepare(req, name)
	if err != nil {
		WriteError(res, err)
		return
	}

	exporter := c.exporter(params)
	doc, err := exporter.Preview(grid, params.Mode)
	if err != nil {
		WriteError(res, err)
		return
	}
	filename, err := exporter.FileName(grid)
	if err != nil {
		WriteError(res, err)
		return
	}

	columns := make([]string, len(doc.Columns))
	for i, col := range doc.Columns {
		columns[i] = col.DisplayName()
	}
	writeJSON(res, http.StatusOK, PreviewResponse{
		Grid:     grid.Name(),
		Caption:  exporter.Caption(c.localeFor(req, params)),
		Filename: filename,
		Format:   string(exporter.Format()),
		Mode:     string(params.Mode),
		Columns:  columns,
		Records:  len(doc.Records),
	})
}

func (c *Controller) handleStore(req Request, res Response, name string) {
	if c.store == nil {
		WriteError(res, export.NewError(export.KindNotImpl, "artifact store not configured", nil))
		return
	}
	grid, params, err := c.prepare(req, name)
	if err != nil {
		WriteError(res, err)
		return
	}

	downloader := export.NewStoreDownloader(c.store, grid.Name())
	if _, err := c.exporter(params).Download(req.Context(), downloader, grid, params.Mode); err != nil {
		WriteError(res, err)
		return
	}
	ref, ok := downloader.Last()
	if !ok {
		WriteError(res, export.NewError(export.KindInternal, "artifact not recorded", nil))
		return
	}
	writeJSON(res, http.StatusCreated, ArtifactResponse{
		Key:         ref.Key,
		Filename:    ref.Meta.Filename,
		ContentType: ref.Meta.ContentType,
		Size:        ref.Meta.Size,
		CreatedAt:   ref.Meta.CreatedAt,
		DownloadURL: c.basePath + "/" + artifactsSegment + "/" + ref.Key,
	})
}

func (c *Controller) handleArtifact(req Request, res Response, key string) {
	if c.store == nil {
		WriteError(res, export.NewError(export.KindNotImpl, "artifact store not configured", nil))
		return
	}
	reader, meta, err := c.store.Open(req.Context(), key)
	if err != nil {
		WriteError(res, err)
		return
	}
	defer reader.Close()

	filename := meta.Filename
	if filename == "" {
		filename = path.Base(key)
	}
	source := &artifactSource{reader: reader, size: meta.Size}
	download := export.DownloadFormat{Format: meta.Format, ContentType: meta.ContentType}
	tracked := &trackingResponse{Response: res}
	downloader := ResponseDownloader{Res: tracked, MaxBufferBytes: c.maxBufferBytes}
	if err := downloader.Download(req.Context(), source, filename, download); err != nil {
		if !tracked.started {
			WriteError(res, err)
			return
		}
		c.logger.Errorf("gridexport: artifact download failed after write: %v", err)
	}
}

func (c *Controller) prepare(req Request, name string) (export.Grid, Params, error) {
	params, err := DecodeParams(req)
	if err != nil {
		return nil, Params{}, err
	}
	grid, err := c.provider.Grid(req.Context(), name)
	if err != nil {
		return nil, Params{}, err
	}
	if len(params.Selected) > 0 {
		grid = export.WithSelection(grid, params.Selected)
	}
	params.Locale = c.localeFor(req, params)
	params.HasLocale = params.Locale != language.Und
	return grid, params, nil
}

// localeFor picks ?locale=, then a resolver that supports the request
// authentication, then Accept-Language, then the chain fallback.
func (c *Controller) localeFor(req Request, params Params) language.Tag {
	if params.HasLocale {
		return params.Locale
	}
	var auth locale.Authentication
	if c.authenticate != nil {
		auth = c.authenticate(req)
	}
	if c.locales != nil && c.authenticate != nil {
		if tag, ok := c.locales.Lookup(req.Context(), auth); ok {
			return tag
		}
	}
	if params.Accept != language.Und {
		return params.Accept
	}
	if c.locales != nil {
		return c.locales.Resolve(req.Context(), auth)
	}
	return language.Und
}

// exporter builds the per-request exporter. Request params are applied last.
func (c *Controller) exporter(params Params) *export.Exporter {
	opts := append([]export.Option{}, c.options...)
	opts = append(opts, export.WithLogger(c.logger))
	if params.Format != "" {
		opts = append(opts, export.WithFormat(params.Format))
	}
	if params.HasLocale {
		opts = append(opts, export.WithLocale(params.Locale))
	}
	if params.Timezone != "" {
		opts = append(opts, export.WithTimezone(params.Timezone))
	}
	requestOpts := params.SerializationOptions()
	if requestOpts != (export.SerializationOptions{}) {
		opts = append(opts, export.WithSerializerConfigurer(func(base export.SerializationOptions) export.SerializationOptions {
			if requestOpts.JSON.Indent != "" {
				base.JSON.Indent = requestOpts.JSON.Indent
			}
			if requestOpts.XLSX.SheetName != "" {
				base.XLSX.SheetName = requestOpts.XLSX.SheetName
			}
			if requestOpts.CSV.HeadersSet {
				base.CSV.HeadersSet = true
				base.CSV.IncludeHeaders = requestOpts.CSV.IncludeHeaders
				base.XLSX.HeadersSet = true
				base.XLSX.IncludeHeaders = requestOpts.XLSX.IncludeHeaders
			}
			return base
		}))
	}
	return export.NewExporter(opts...)
}

func writeNotFound(res Response) {
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	res.SetHeader("X-Content-Type-Options", "nosniff")
	res.WriteHeader(http.StatusNotFound)
	_, _ = res.Write([]byte("404 page not found\n"))
}

// WriteError writes err as a JSON error body with a status derived from its
// go-errors category.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := export.AsGoError(err)
	status := StatusForError(ge)
	payload := ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	}
	writeJSON(res, status, payload)
}

func writeJSON(res Response, status int, payload any) {
	_ = res.WriteJSON(status, payload)
}

// StatusForError maps a go-errors error to an HTTP status.
func StatusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation, errorslib.CategoryBadInput:
		return http.StatusBadRequest
	case errorslib.CategoryAuthz:
		return http.StatusForbidden
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryExternal:
		return http.StatusBadGateway
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

type trackingResponse struct {
	Response
	started bool
}

func (r *trackingResponse) WriteHeader(status int) {
	r.started = true
	r.Response.WriteHeader(status)
}

type artifactSource struct {
	reader io.ReadCloser
	size   int64
	opened bool
}

func (s *artifactSource) Open() (io.ReadCloser, error) {
	if s.opened {
		return nil, export.NewError(export.KindDelivery, "artifact stream already consumed", nil)
	}
	s.opened = true
	return io.NopCloser(s.reader), nil
}

func (s *artifactSource) Size() int64 {
	return s.size
}
