package export

import (
	"context"
	"encoding/csv"
	"io"
)

// CSVSerializer renders documents as CSV with an optional header row.
type CSVSerializer struct{}

// Serialize implements Serializer.
func (s CSVSerializer) Serialize(ctx context.Context, doc Document, w io.Writer, opts SerializationOptions) (SerializeStats, error) {
	delimiter := opts.CSV.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}
	switch delimiter {
	case '"', '\r', '\n', 0xFFFD:
		return SerializeStats{}, NewError(KindSerialization, "invalid csv delimiter", nil)
	}
	includeHeaders := opts.CSV.IncludeHeaders || !opts.CSV.HeadersSet

	cw := &countingWriter{w: w}
	writer := csv.NewWriter(cw)
	writer.Comma = delimiter

	if includeHeaders {
		headers := make([]string, 0, len(doc.Columns))
		for _, col := range doc.Columns {
			headers = append(headers, col.DisplayName())
		}
		if err := writer.Write(headers); err != nil {
			return SerializeStats{}, NewError(KindSerialization, "csv header write failed", err)
		}
	}

	stats := SerializeStats{}
	for _, record := range doc.Records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := make([]string, len(record.Fields))
		for i, field := range record.Fields {
			if field.Value == nil {
				line[i] = opts.CSV.NullValue
				continue
			}
			line[i] = *field.Value
		}
		if err := writer.Write(line); err != nil {
			return stats, NewError(KindSerialization, "csv write failed", err)
		}
		stats.Records++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return stats, NewError(KindSerialization, "csv flush failed", err)
	}

	stats.Bytes = cw.count
	return stats, nil
}
