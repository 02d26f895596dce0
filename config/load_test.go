package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-gridexport/export"
)

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridexport.yaml")
	content := `
server:
  address: ":9090"
export:
  format: csv
  mode: selected
  timezone: Europe/Berlin
metrics:
  enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":9090" || cfg.Server.BasePath != "/exports" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Export.Format != "csv" || cfg.Export.Threshold != export.DefaultThreshold {
		t.Fatalf("unexpected export config %+v", cfg.Export)
	}
	if cfg.SelectionMode() != export.SelectionCurrent {
		t.Fatalf("expected current selection, got %q", cfg.SelectionMode())
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Fatalf("unexpected metrics config %+v", cfg.Metrics)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GRIDEXPORT_EXPORT_FORMAT", "xlsx")
	t.Setenv("GRIDEXPORT_EXPORT_THRESHOLD", "0")
	t.Setenv("GRIDEXPORT_METRICS_ENABLED", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Export.Format != "xlsx" || cfg.Export.Threshold != 0 || !cfg.Metrics.Enabled {
		t.Fatalf("expected env overrides, got %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !goerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"format", func(c *Config) { c.Export.Format = "pdf" }, "FORMAT_INVALID"},
		{"sqlite disabled", func(c *Config) { c.Export.Format = "sqlite" }, "FORMAT_DISABLED"},
		{"mode", func(c *Config) { c.Export.Mode = "visible" }, "MODE_INVALID"},
		{"locale", func(c *Config) { c.Export.Locale = "not a locale!" }, "LOCALE_INVALID"},
		{"timezone", func(c *Config) { c.Export.Timezone = "Mars/Olympus" }, "TIMEZONE_INVALID"},
		{"indent", func(c *Config) { c.Export.Indent = "--" }, "INDENT_INVALID"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			var ge *goerrors.Error
			if !errors.As(err, &ge) || ge.TextCode != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}

	cfg := Defaults()
	cfg.Export.Format = "sqlite"
	cfg.Export.EnableSQLite = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected sqlite to validate when enabled: %v", err)
	}
}

func TestOptions_ConfigureExporter(t *testing.T) {
	cfg := Defaults()
	cfg.Export.Format = "ndjson"
	cfg.Export.FilenameTemplate = "{{.Grid}}-report"

	exporter := export.NewExporter(cfg.Options()...)
	if exporter.Format() != export.FormatNDJSON {
		t.Fatalf("unexpected format %q", exporter.Format())
	}
	name, err := exporter.FileName(export.NewTable("people", nil, nil))
	if err != nil {
		t.Fatalf("file name: %v", err)
	}
	if name != "people-report.ndjson" {
		t.Fatalf("unexpected file name %q", name)
	}
}
