package export

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SerializerRegistry stores serializers by format.
type SerializerRegistry struct {
	mu          sync.RWMutex
	serializers map[Format]Serializer
	formats     map[Format]DownloadFormat
}

// NewSerializerRegistry creates a registry with the built-in formats.
func NewSerializerRegistry() *SerializerRegistry {
	r := &SerializerRegistry{
		serializers: make(map[Format]Serializer),
		formats:     make(map[Format]DownloadFormat),
	}
	_ = r.Register(FormatJSON, JSONSerializer{})
	_ = r.Register(FormatNDJSON, JSONSerializer{})
	_ = r.Register(FormatCSV, CSVSerializer{})
	_ = r.Register(FormatXLSX, XLSXSerializer{})
	return r
}

// Register adds a serializer for a format using its default download format.
func (r *SerializerRegistry) Register(format Format, serializer Serializer) error {
	return r.RegisterWithDownload(format, serializer, DownloadFormatFor(format))
}

// RegisterWithDownload adds a serializer with an explicit download format.
func (r *SerializerRegistry) RegisterWithDownload(format Format, serializer Serializer, download DownloadFormat) error {
	if format == "" {
		return NewError(KindValidation, "serializer format is required", nil)
	}
	if serializer == nil {
		return NewError(KindValidation, "serializer is required", nil)
	}
	if download.Format == "" {
		download.Format = format
	}
	if download.Extension == "" {
		download.Extension = string(format)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.serializers[format]; exists {
		return NewError(KindValidation, fmt.Sprintf("serializer for %q already registered", format), nil)
	}
	r.serializers[format] = serializer
	r.formats[format] = download
	return nil
}

// Resolve returns the serializer and download format for a format.
func (r *SerializerRegistry) Resolve(format Format) (Serializer, DownloadFormat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	serializer, ok := r.serializers[format]
	if !ok {
		return nil, DownloadFormat{}, false
	}
	return serializer, r.formats[format], true
}

// Formats lists registered formats in lexical order.
func (r *SerializerRegistry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.serializers))
	for format := range r.serializers {
		out = append(out, format)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NormalizeFormat coerces format values into known aliases with defaults applied.
func NormalizeFormat(format Format) Format {
	normalized := strings.ToLower(strings.TrimSpace(string(format)))
	switch normalized {
	case "", string(FormatJSON):
		return FormatJSON
	case "jsonl", "json-lines", "jsonlines":
		return FormatNDJSON
	case "excel", "xls":
		return FormatXLSX
	case "sqlite3", "db":
		return FormatSQLite
	default:
		return Format(normalized)
	}
}

// DownloadFormatFor returns the default download tag for a format.
func DownloadFormatFor(format Format) DownloadFormat {
	return DownloadFormat{
		Format:      format,
		ContentType: contentTypeForFormat(format),
		Extension:   string(format),
	}
}

func contentTypeForFormat(format Format) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatNDJSON:
		return "application/x-ndjson"
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatSQLite:
		return "application/vnd.sqlite3"
	default:
		return "application/octet-stream"
	}
}
