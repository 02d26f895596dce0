package exportprom

import (
	"context"
	"testing"

	"github.com/goliatone/go-gridexport/export"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHook_RecordsExporterEvents(t *testing.T) {
	registry := prometheus.NewRegistry()
	hook, err := NewHook(Config{Namespace: "test"}, registry)
	if err != nil {
		t.Fatalf("new hook: %v", err)
	}

	table := export.NewTable("people", []export.Column{{ID: "name", Field: "name"}}, []export.Row{
		{ID: "1", Values: map[string]any{"name": "Ann"}},
		{ID: "2", Values: map[string]any{"name": "Bo"}},
	})
	exporter := export.NewExporter(export.WithMetrics(hook))

	if _, _, err := exporter.Export(context.Background(), table, export.SelectionAll); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, _, err := exporter.Export(context.Background(), table, export.SelectionMode("visible")); err == nil {
		t.Fatalf("expected invalid mode")
	}

	if got := testutil.ToFloat64(hook.exports.WithLabelValues("export.completed", "json", "")); got != 1 {
		t.Fatalf("expected 1 completed export, got %v", got)
	}
	if got := testutil.ToFloat64(hook.exports.WithLabelValues("export.failed", "json", "invalid_mode")); got != 1 {
		t.Fatalf("expected 1 failed export, got %v", got)
	}
	if got := testutil.ToFloat64(hook.records.WithLabelValues("json")); got != 2 {
		t.Fatalf("expected 2 records, got %v", got)
	}
	if got := testutil.ToFloat64(hook.bytes.WithLabelValues("json")); got <= 0 {
		t.Fatalf("expected bytes recorded, got %v", got)
	}
	if count := testutil.CollectAndCount(hook.duration); count != 1 {
		t.Fatalf("expected one duration series, got %d", count)
	}
}

func TestNewHook_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	if _, err := NewHook(Config{}, registry); err != nil {
		t.Fatalf("first hook: %v", err)
	}
	if _, err := NewHook(Config{}, registry); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
