package export

import (
	"context"
	"io"
	"time"
)

// Format is the export output format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// SelectionMode describes which grid rows participate in an export.
type SelectionMode string

const (
	SelectionAll     SelectionMode = "all"
	SelectionCurrent SelectionMode = "current_selection"
)

// ColumnKind describes what a grid column is bound to.
type ColumnKind string

const (
	ColumnField     ColumnKind = "field"
	ColumnAction    ColumnKind = "action"
	ColumnGenerated ColumnKind = "generated"
)

// Column defines a grid column.
type Column struct {
	ID     string
	Field  string
	Name   string
	Label  string
	Type   string
	Kind   ColumnKind
	Format ColumnFormat
}

// ColumnFormat provides formatter and renderer hints.
type ColumnFormat struct {
	Layout string
	Number string
	Excel  string
}

// Row is a grid item keyed by field name.
type Row struct {
	ID     string
	Values map[string]any
}

// Grid exposes the columns, rows and selection of a tabular component.
//
// A grid is read as a snapshot: mutating it while an export runs is undefined
// behavior. Use Snapshot to detach a Table from its owner first.
type Grid interface {
	Name() string
	Columns() []Column
	Rows() []Row
	IsSelected(row Row) bool
}

// Field is a single key/value entry of a Record. A nil Value is an explicit null.
type Field struct {
	Key   string
	Value *string
}

// Record is an ordered mapping from column display name to formatted value.
type Record struct {
	Fields []Field
}

// Document is the ordered set of records produced for one export.
type Document struct {
	Columns []Column
	Records []Record
}

// JSONMode configures JSON rendering.
type JSONMode string

const (
	JSONModeArray JSONMode = "array"
	JSONModeLines JSONMode = "ndjson"
)

// JSONOptions configures JSON output.
type JSONOptions struct {
	Mode            JSONMode
	Indent          string
	Prefix          string
	Multiline       *bool
	EscapeHTML      bool
	SpaceAfterColon bool
	SpaceAfterComma bool
}

// CSVOptions configures CSV output.
type CSVOptions struct {
	IncludeHeaders bool
	HeadersSet     bool
	Delimiter      rune
	NullValue      string
}

// XLSXOptions configures XLSX output.
type XLSXOptions struct {
	IncludeHeaders bool
	HeadersSet     bool
	SheetName      string
}

// SQLiteOptions configures SQLite output.
type SQLiteOptions struct {
	TableName string
}

// SerializationOptions configures serializers. Serializers ignore the sections
// that do not apply to them.
type SerializationOptions struct {
	JSON   JSONOptions
	CSV    CSVOptions
	XLSX   XLSXOptions
	SQLite SQLiteOptions
}

// SerializerConfigurer customizes a fresh copy of the serialization options
// right before a document is rendered.
type SerializerConfigurer func(opts SerializationOptions) SerializationOptions

// SerializeStats capture serializer output.
type SerializeStats struct {
	Records int64
	Bytes   int64
}

// Serializer renders a document to w.
type Serializer interface {
	Serialize(ctx context.Context, doc Document, w io.Writer, opts SerializationOptions) (SerializeStats, error)
}

// ColumnFormatter converts a non-null raw cell value into its display string.
type ColumnFormatter interface {
	FormatValue(value any, col Column) (string, error)
}

// FormatterFunc adapts a function to a ColumnFormatter.
type FormatterFunc func(value any, col Column) (string, error)

func (f FormatterFunc) FormatValue(value any, col Column) (string, error) {
	return f(value, col)
}

// DownloadFormat tags a download with its format, media type and extension.
type DownloadFormat struct {
	Format      Format
	ContentType string
	Extension   string
}

// DataSource supplies the bytes of a download.
type DataSource interface {
	Open() (io.ReadCloser, error)
	Size() int64
}

// Downloader delivers an export to its destination.
type Downloader interface {
	Download(ctx context.Context, src DataSource, filename string, format DownloadFormat) error
}

// DownloaderFunc adapts a function to a Downloader.
type DownloaderFunc func(ctx context.Context, src DataSource, filename string, format DownloadFormat) error

func (f DownloaderFunc) Download(ctx context.Context, src DataSource, filename string, format DownloadFormat) error {
	return f(ctx, src, filename, format)
}

// Result describes a completed export.
type Result struct {
	Grid     string
	Format   Format
	Mode     SelectionMode
	Records  int64
	Bytes    int64
	Filename string
	Spilled  bool
}

// ArtifactMeta captures stored artifact metadata.
type ArtifactMeta struct {
	ContentType string
	Size        int64
	Filename    string
	Format      Format
	CreatedAt   time.Time
}

// ArtifactRef references a stored artifact.
type ArtifactRef struct {
	Key  string
	Meta ArtifactMeta
}

// ArtifactStore stores export artifacts.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error)
	Delete(ctx context.Context, key string) error
}

// ArtifactLister lists stored artifact keys.
type ArtifactLister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// MetricsEvent describes export lifecycle observations.
type MetricsEvent struct {
	Name      string
	Grid      string
	Format    Format
	Mode      SelectionMode
	Records   int64
	Bytes     int64
	Duration  time.Duration
	ErrorKind ErrorKind
	Timestamp time.Time
}

// MetricsHook emits metrics-friendly lifecycle observations.
type MetricsHook interface {
	Emit(ctx context.Context, evt MetricsEvent) error
}
