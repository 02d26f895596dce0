package exportsqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-gridexport/export"
	_ "modernc.org/sqlite"
)

const defaultTableName = "data"

// Serializer writes documents into a SQLite database file.
type Serializer struct {
	Enabled   bool
	TableName string
	TempDir   string
}

// Register adds s to registry under export.FormatSQLite.
func Register(registry *export.SerializerRegistry, s Serializer) error {
	if registry == nil {
		return export.NewError(export.KindValidation, "serializer registry is required", nil)
	}
	return registry.Register(export.FormatSQLite, s)
}

// Serialize buffers the document into a temp SQLite database and streams it to w.
func (s Serializer) Serialize(ctx context.Context, doc export.Document, w io.Writer, opts export.SerializationOptions) (export.SerializeStats, error) {
	if !s.Enabled {
		return export.SerializeStats{}, export.NewError(export.KindNotImpl, "sqlite serializer is disabled", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tableName := strings.TrimSpace(opts.SQLite.TableName)
	if tableName == "" {
		tableName = strings.TrimSpace(s.TableName)
	}
	tableName = sanitizeIdentifier(tableName, defaultTableName)
	spec, err := buildTableSpec(doc.Columns, tableName)
	if err != nil {
		return export.SerializeStats{}, err
	}

	tempFile, err := os.CreateTemp(s.TempDir, "gridexport-*.sqlite")
	if err != nil {
		return export.SerializeStats{}, export.NewError(export.KindSerialization, "sqlite temp file create failed", err)
	}
	path := tempFile.Name()
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(path)
		return export.SerializeStats{}, export.NewError(export.KindSerialization, "sqlite temp file close failed", err)
	}
	defer func() {
		_ = os.Remove(path)
	}()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return export.SerializeStats{}, export.NewError(export.KindSerialization, "sqlite open failed", err)
	}

	stats, err := writeRecords(ctx, db, spec, doc.Records)
	if err != nil {
		_ = db.Close()
		return stats, err
	}
	if err := db.Close(); err != nil {
		return stats, export.NewError(export.KindSerialization, "sqlite close failed", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return stats, export.NewError(export.KindSerialization, "sqlite temp file open failed", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cw := &countingWriter{w: w}
	if _, err := io.Copy(cw, file); err != nil {
		return export.SerializeStats{Records: stats.Records, Bytes: cw.count}, export.NewError(export.KindSerialization, "sqlite copy failed", err)
	}
	stats.Bytes = cw.count
	return stats, nil
}

type tableSpec struct {
	tableName string
	columns   []string
	createSQL string
	insertSQL string
}

func buildTableSpec(columns []export.Column, tableName string) (tableSpec, error) {
	if len(columns) == 0 {
		return tableSpec{}, export.NewError(export.KindSerialization, "document has no columns", nil)
	}

	seen := make(map[string]struct{}, len(columns))
	names := make([]string, len(columns))
	columnDefs := make([]string, len(columns))
	quoted := make([]string, len(columns))

	for i, col := range columns {
		name := col.DisplayName()
		if name == "" {
			return tableSpec{}, export.NewError(export.KindSerialization, "column name is required", nil)
		}
		// SQLite identifiers are case-insensitive.
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return tableSpec{}, export.NewError(export.KindSerialization, fmt.Sprintf("duplicate column %q", name), nil)
		}
		seen[key] = struct{}{}

		names[i] = name
		columnDefs[i] = quoteIdentifier(name) + " TEXT"
		quoted[i] = quoteIdentifier(name)
	}

	return tableSpec{
		tableName: tableName,
		columns:   names,
		createSQL: fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdentifier(tableName), strings.Join(columnDefs, ", ")),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdentifier(tableName), strings.Join(quoted, ", "), strings.Join(placeholders(len(names)), ", ")),
	}, nil
}

func writeRecords(ctx context.Context, db *sql.DB, spec tableSpec, records []export.Record) (export.SerializeStats, error) {
	stats := export.SerializeStats{}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, export.NewError(export.KindSerialization, "sqlite begin transaction failed", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, spec.createSQL); err != nil {
		return stats, export.NewError(export.KindSerialization, "sqlite create table failed", err)
	}

	stmt, err := tx.PrepareContext(ctx, spec.insertSQL)
	if err != nil {
		return stats, export.NewError(export.KindSerialization, "sqlite prepare insert failed", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if record.Len() != len(spec.columns) {
			return stats, export.NewError(export.KindSerialization, "record length does not match columns", nil)
		}

		values := make([]any, len(record.Fields))
		for i, field := range record.Fields {
			if field.Value == nil {
				values[i] = nil
				continue
			}
			values[i] = *field.Value
		}

		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return stats, export.NewError(export.KindSerialization, "sqlite insert failed", err)
		}
		stats.Records++
	}

	if err := tx.Commit(); err != nil {
		return stats, export.NewError(export.KindSerialization, "sqlite commit failed", err)
	}
	return stats, nil
}

func placeholders(count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = "?"
	}
	return out
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sanitizeIdentifier(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	sanitized := strings.Trim(b.String(), "_")
	if sanitized == "" {
		return fallback
	}
	if sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "t_" + sanitized
	}
	return sanitized
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
