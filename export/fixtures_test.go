package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
)

func peopleTable() *Table {
	table := NewTable("people", []Column{
		{ID: "name", Field: "name"},
		{ID: "age", Field: "age"},
		{ID: "edit", Kind: ColumnAction, Name: "edit"},
	}, []Row{
		{ID: "1", Values: map[string]any{"name": "Ann", "age": 30}},
		{ID: "2", Values: map[string]any{"name": "Bo", "age": nil}},
	})
	return table
}

type recordingDownloader struct {
	mu       sync.Mutex
	calls    int
	filename string
	format   DownloadFormat
	payload  []byte
	size     int64
	err      error
}

func (d *recordingDownloader) Download(ctx context.Context, src DataSource, filename string, format DownloadFormat) error {
	_ = ctx
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return d.err
	}
	reader, err := src.Open()
	if err != nil {
		return err
	}
	defer reader.Close()
	payload, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	d.filename = filename
	d.format = format
	d.payload = payload
	d.size = src.Size()
	return nil
}

type recordingMetrics struct {
	mu     sync.Mutex
	events []MetricsEvent
}

func (r *recordingMetrics) Emit(_ context.Context, evt MetricsEvent) error {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	return nil
}

type recordingLogger struct {
	errors []string
	infos  []string
}

func (l *recordingLogger) Debugf(string, ...any) {}
func (l *recordingLogger) Infof(format string, args ...any) {
	l.infos = append(l.infos, format)
}
func (l *recordingLogger) Errorf(format string, args ...any) {
	l.errors = append(l.errors, format)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func serializeString(t *testing.T, s Serializer, doc Document, opts SerializationOptions) string {
	t.Helper()
	var buf bytes.Buffer
	if _, err := s.Serialize(context.Background(), doc, &buf, opts); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return buf.String()
}

func strPtr(s string) *string { return &s }
