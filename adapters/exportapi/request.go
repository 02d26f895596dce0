package exportapi

import (
	"context"
	"strconv"
	"strings"

	"github.com/goliatone/go-gridexport/export"
	"github.com/goliatone/go-gridexport/locale"
	"golang.org/x/text/language"
)

// Request provides minimal request access for transport adapters.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Header(name string) string
	Query(name string) string
}

// Params are the export parameters carried by a request query string.
type Params struct {
	Format    export.Format
	Mode      export.SelectionMode
	Selected  []string
	Indent    string
	Locale    language.Tag
	HasLocale bool
	// Accept is the preferred Accept-Language tag. It only applies when
	// neither ?locale= nor the authentication chain settles the locale.
	Accept   language.Tag
	Timezone string
	Headers  *bool
	Sheet    string
}

// DecodeParams reads export parameters from req.
//
//	?format=json&mode=current_selection&selected=1,2&indent=2&locale=de&tz=Europe/Berlin
func DecodeParams(req Request) (Params, error) {
	if req == nil {
		return Params{}, export.NewError(export.KindInternal, "request is nil", nil)
	}

	mode, err := export.ParseSelectionMode(req.Query("mode"))
	if err != nil {
		return Params{}, err
	}

	params := Params{
		Format:   export.NormalizeFormat(export.Format(req.Query("format"))),
		Mode:     mode,
		Selected: splitCSV(req.Query("selected")),
		Timezone: strings.TrimSpace(firstNonEmpty(req.Query("tz"), req.Query("timezone"))),
		Sheet:    strings.TrimSpace(req.Query("sheet")),
	}
	if len(params.Selected) > 0 && req.Query("mode") == "" {
		params.Mode = export.SelectionCurrent
	}

	if raw := strings.TrimSpace(req.Query("indent")); raw != "" {
		indent, err := parseIndent(raw)
		if err != nil {
			return Params{}, err
		}
		params.Indent = indent
	}

	if raw := strings.TrimSpace(req.Query("headers")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return Params{}, export.NewError(export.KindValidation, "invalid headers flag", err)
		}
		params.Headers = &value
	}

	if raw := strings.TrimSpace(req.Query("locale")); raw != "" {
		params.Locale = locale.ParseTag(raw, language.Und)
		params.HasLocale = params.Locale != language.Und
	}
	if raw := req.Header("Accept-Language"); raw != "" {
		if tags, _, err := language.ParseAcceptLanguage(raw); err == nil && len(tags) > 0 {
			params.Accept = tags[0]
		}
	}

	return params, nil
}

// SerializationOptions maps params onto serializer options.
func (p Params) SerializationOptions() export.SerializationOptions {
	opts := export.SerializationOptions{}
	opts.JSON.Indent = p.Indent
	opts.XLSX.SheetName = p.Sheet
	if p.Headers != nil {
		opts.CSV.HeadersSet = true
		opts.CSV.IncludeHeaders = *p.Headers
		opts.XLSX.HeadersSet = true
		opts.XLSX.IncludeHeaders = *p.Headers
	}
	return opts
}

// parseIndent accepts a space count, "tab", or a literal whitespace indent.
func parseIndent(raw string) (string, error) {
	if raw == "tab" || raw == `\t` {
		return "\t", nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 || n > 8 {
			return "", export.NewError(export.KindValidation, "indent must be between 0 and 8", nil)
		}
		return strings.Repeat(" ", n), nil
	}
	return "", export.NewError(export.KindValidation, "invalid indent", nil)
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
