// Package exportprom records export lifecycle events as Prometheus metrics.
//
// Metrics (namespace defaults to "gridexport"):
//   - exports_total: export outcomes by event, format and error kind
//   - export_duration_seconds: export duration by format
//   - export_records_total: records rendered by format
//   - export_bytes_total: bytes rendered by format
package exportprom

import (
	"context"

	"github.com/goliatone/go-gridexport/export"
	"github.com/prometheus/client_golang/prometheus"
)

// Config configures metric names and buckets.
type Config struct {
	Namespace string
	Subsystem string
	Buckets   []float64
}

// Hook implements export.MetricsHook.
type Hook struct {
	exports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	records  *prometheus.CounterVec
	bytes    *prometheus.CounterVec
}

// NewHook creates the collectors and registers them with registerer.
func NewHook(cfg Config, registerer prometheus.Registerer) (*Hook, error) {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "gridexport"
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}
	}

	h := &Hook{
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "exports_total",
				Help:      "Export outcomes by event, format and error kind",
			},
			[]string{"event", "format", "error_kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "export_duration_seconds",
				Help:      "Export duration in seconds",
				Buckets:   cfg.Buckets,
			},
			[]string{"format"},
		),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "export_records_total",
				Help:      "Records rendered by completed exports",
			},
			[]string{"format"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "export_bytes_total",
				Help:      "Bytes rendered by completed exports",
			},
			[]string{"format"},
		),
	}

	for _, c := range []prometheus.Collector{h.exports, h.duration, h.records, h.bytes} {
		if err := registerer.Register(c); err != nil {
			return nil, export.NewError(export.KindValidation, "metrics registration failed", err)
		}
	}
	return h, nil
}

// Emit implements export.MetricsHook.
func (h *Hook) Emit(ctx context.Context, evt export.MetricsEvent) error {
	_ = ctx
	if h == nil {
		return nil
	}
	format := string(evt.Format)
	h.exports.WithLabelValues(evt.Name, format, string(evt.ErrorKind)).Inc()
	h.duration.WithLabelValues(format).Observe(evt.Duration.Seconds())
	if evt.ErrorKind == "" {
		h.records.WithLabelValues(format).Add(float64(evt.Records))
		h.bytes.WithLabelValues(format).Add(float64(evt.Bytes))
	}
	return nil
}

var _ export.MetricsHook = (*Hook)(nil)
