package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

// JSONSerializer renders documents as a JSON array of flat objects, or as
// newline-delimited objects in JSONModeLines. Key order follows the document.
type JSONSerializer struct{}

// Serialize implements Serializer.
func (s JSONSerializer) Serialize(ctx context.Context, doc Document, w io.Writer, opts SerializationOptions) (SerializeStats, error) {
	encOpts, mode, err := jsonEncoderOptions(opts.JSON)
	if err != nil {
		return SerializeStats{}, err
	}

	cw := &countingWriter{w: w}
	enc := jsontext.NewEncoder(cw, encOpts...)
	stats := SerializeStats{}

	if mode == JSONModeArray {
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return stats, jsonWriteError(err)
		}
	}

	for _, record := range doc.Records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := writeJSONRecord(enc, record); err != nil {
			return stats, err
		}
		stats.Records++
	}

	if mode == JSONModeArray {
		if err := enc.WriteToken(jsontext.EndArray); err != nil {
			return stats, jsonWriteError(err)
		}
	}

	stats.Bytes = cw.count
	return stats, nil
}

func writeJSONRecord(enc *jsontext.Encoder, record Record) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return jsonWriteError(err)
	}
	for _, field := range record.Fields {
		if err := enc.WriteToken(jsontext.String(field.Key)); err != nil {
			return jsonWriteError(err)
		}
		value := jsontext.Null
		if field.Value != nil {
			value = jsontext.String(*field.Value)
		}
		if err := enc.WriteToken(value); err != nil {
			return jsonWriteError(err)
		}
	}
	if err := enc.WriteToken(jsontext.EndObject); err != nil {
		return jsonWriteError(err)
	}
	return nil
}

func jsonEncoderOptions(opts JSONOptions) ([]jsontext.Options, JSONMode, error) {
	mode := opts.Mode
	if mode == "" {
		mode = JSONModeArray
	}
	if mode != JSONModeArray && mode != JSONModeLines {
		return nil, "", NewError(KindSerialization, fmt.Sprintf("json mode %q not supported", mode), nil)
	}

	if strings.Trim(opts.Indent, " \t") != "" {
		return nil, "", NewError(KindSerialization, "json indent must only contain spaces or tabs", nil)
	}
	if strings.Trim(opts.Prefix, " \t") != "" {
		return nil, "", NewError(KindSerialization, "json prefix must only contain spaces or tabs", nil)
	}

	indented := opts.Indent != "" || opts.Prefix != ""
	if opts.Multiline != nil && !*opts.Multiline && indented {
		return nil, "", NewError(KindSerialization, "json indent requires multiline output", nil)
	}
	if mode == JSONModeLines && (indented || (opts.Multiline != nil && *opts.Multiline)) {
		return nil, "", NewError(KindSerialization, "ndjson output cannot be multiline", nil)
	}

	encOpts := []jsontext.Options{}
	if opts.EscapeHTML {
		encOpts = append(encOpts, jsontext.EscapeForHTML(true))
	}
	if opts.SpaceAfterColon {
		encOpts = append(encOpts, jsontext.SpaceAfterColon(true))
	}
	if opts.SpaceAfterComma {
		encOpts = append(encOpts, jsontext.SpaceAfterComma(true))
	}
	if opts.Multiline != nil {
		encOpts = append(encOpts, jsontext.Multiline(*opts.Multiline))
	}
	if opts.Indent != "" {
		encOpts = append(encOpts, jsontext.WithIndent(opts.Indent))
	}
	if opts.Prefix != "" {
		encOpts = append(encOpts, jsontext.WithIndentPrefix(opts.Prefix))
	}
	return encOpts, mode, nil
}

func jsonWriteError(err error) error {
	if err == nil {
		return nil
	}
	return NewError(KindSerialization, "json encode failed", err)
}
