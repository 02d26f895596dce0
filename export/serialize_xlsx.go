package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	excelMaxRows      = 1048576
	excelMaxSheetName = 31
	defaultSheetName  = "Sheet1"
)

// XLSXSerializer renders documents into a single-sheet workbook. Every value
// is written as a text cell since records already hold formatted strings.
type XLSXSerializer struct{}

// Serialize implements Serializer.
func (s XLSXSerializer) Serialize(ctx context.Context, doc Document, w io.Writer, opts SerializationOptions) (SerializeStats, error) {
	sheetName := strings.TrimSpace(opts.XLSX.SheetName)
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	if err := validateSheetName(sheetName); err != nil {
		return SerializeStats{}, err
	}
	includeHeaders := opts.XLSX.IncludeHeaders || !opts.XLSX.HeadersSet

	limit := excelMaxRows
	if includeHeaders {
		limit--
	}
	if len(doc.Records) > limit {
		return SerializeStats{}, NewError(KindSerialization, "xlsx row limit exceeded", nil)
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	defaultSheet := file.GetSheetName(0)
	if defaultSheet != sheetName {
		if err := file.SetSheetName(defaultSheet, sheetName); err != nil {
			return SerializeStats{}, NewError(KindSerialization, "xlsx sheet rename failed", err)
		}
	}

	stream, err := file.NewStreamWriter(sheetName)
	if err != nil {
		return SerializeStats{}, NewError(KindSerialization, "xlsx stream writer failed", err)
	}

	rowIndex := 1
	if includeHeaders {
		headerID, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return SerializeStats{}, NewError(KindSerialization, "xlsx header style failed", err)
		}
		headers := make([]interface{}, len(doc.Columns))
		for i, col := range doc.Columns {
			label := col.Label
			if label == "" {
				label = col.DisplayName()
			}
			headers[i] = excelize.Cell{StyleID: headerID, Value: label}
		}
		if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), headers); err != nil {
			return SerializeStats{}, NewError(KindSerialization, "xlsx header write failed", err)
		}
		rowIndex++
	}

	stats := SerializeStats{}
	for _, record := range doc.Records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		cells := make([]interface{}, len(record.Fields))
		for i, field := range record.Fields {
			if field.Value == nil {
				cells[i] = nil
				continue
			}
			cells[i] = excelize.Cell{Value: *field.Value}
		}
		if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), cells); err != nil {
			return stats, NewError(KindSerialization, "xlsx row write failed", err)
		}
		rowIndex++
		stats.Records++
	}

	if err := stream.Flush(); err != nil {
		return stats, NewError(KindSerialization, "xlsx flush failed", err)
	}

	cw := &countingWriter{w: w}
	if _, err := file.WriteTo(cw); err != nil {
		return stats, NewError(KindSerialization, "xlsx write failed", err)
	}
	stats.Bytes = cw.count
	return stats, nil
}

func validateSheetName(name string) error {
	if utf8.RuneCountInString(name) > excelMaxSheetName {
		return NewError(KindSerialization, fmt.Sprintf("xlsx sheet name %q exceeds %d characters", name, excelMaxSheetName), nil)
	}
	if strings.ContainsAny(name, `[]:*?/\`) {
		return NewError(KindSerialization, fmt.Sprintf("xlsx sheet name %q contains invalid characters", name), nil)
	}
	return nil
}
