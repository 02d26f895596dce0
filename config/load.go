package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-gridexport/export"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. GRIDEXPORT_EXPORT_FORMAT.
const EnvPrefix = "GRIDEXPORT_"

// Load reads a YAML file over the defaults, applies environment overrides and
// validates the result. An empty path yields the defaults plus overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, errors.CategoryNotFound, "read config file failed").
				WithTextCode("CONFIG_READ")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, errors.CategoryValidation, "parse config file failed").
				WithTextCode("CONFIG_INVALID")
		}
	}
	applyEnvOverrides(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	str := func(key string, dst *string) {
		if val := getenv(EnvPrefix + key); val != "" {
			*dst = val
		}
	}
	flag := func(key string, dst *bool) {
		if b, err := strconv.ParseBool(getenv(EnvPrefix + key)); err == nil {
			*dst = b
		}
	}

	str("SERVER_ADDRESS", &cfg.Server.Address)
	str("SERVER_BASE_PATH", &cfg.Server.BasePath)
	str("EXPORT_FORMAT", &cfg.Export.Format)
	str("EXPORT_MODE", &cfg.Export.Mode)
	str("EXPORT_TEMP_DIR", &cfg.Export.TempDir)
	str("EXPORT_LOCALE", &cfg.Export.Locale)
	str("EXPORT_TIMEZONE", &cfg.Export.Timezone)
	str("EXPORT_ARTIFACT_DIR", &cfg.Export.ArtifactDir)
	if val := getenv(EnvPrefix + "EXPORT_THRESHOLD"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Export.Threshold = n
		}
	}
	flag("EXPORT_ENABLE_SQLITE", &cfg.Export.EnableSQLite)
	flag("METRICS_ENABLED", &cfg.Metrics.Enabled)
}

// Validate checks values that would otherwise fail on the first export.
func (c Config) Validate() error {
	switch export.NormalizeFormat(export.Format(c.Export.Format)) {
	case export.FormatJSON, export.FormatNDJSON, export.FormatCSV, export.FormatXLSX:
	case export.FormatSQLite:
		if !c.Export.EnableSQLite {
			return invalid("sqlite output requires enable_sqlite", "FORMAT_DISABLED")
		}
	default:
		return invalid("unknown export format "+strconv.Quote(c.Export.Format), "FORMAT_INVALID")
	}
	if _, err := export.ParseSelectionMode(c.Export.Mode); err != nil {
		return invalid("unknown selection mode "+strconv.Quote(c.Export.Mode), "MODE_INVALID")
	}
	if c.Export.Locale != "" {
		if _, err := language.Parse(c.Export.Locale); err != nil {
			return invalid("invalid locale "+strconv.Quote(c.Export.Locale), "LOCALE_INVALID")
		}
	}
	if c.Export.Timezone != "" {
		if _, err := time.LoadLocation(c.Export.Timezone); err != nil {
			return invalid("invalid timezone "+strconv.Quote(c.Export.Timezone), "TIMEZONE_INVALID")
		}
	}
	if strings.Trim(c.Export.Indent, " \t") != "" {
		return invalid("indent must only contain spaces or tabs", "INDENT_INVALID")
	}
	return nil
}

// Options translates the export section into exporter options.
func (c Config) Options() []export.Option {
	opts := []export.Option{
		export.WithFormat(export.Format(c.Export.Format)),
		export.WithThreshold(c.Export.Threshold),
	}
	if c.Export.TempDir != "" {
		opts = append(opts, export.WithTempDir(c.Export.TempDir))
	}
	if c.Export.Locale != "" {
		if tag, err := language.Parse(c.Export.Locale); err == nil {
			opts = append(opts, export.WithLocale(tag))
		}
	}
	if c.Export.Timezone != "" {
		opts = append(opts, export.WithTimezone(c.Export.Timezone))
	}
	if c.Export.FilenameTemplate != "" {
		opts = append(opts, export.WithFilenameTemplate(c.Export.FilenameTemplate))
	}
	if indent := c.Export.Indent; indent != "" {
		opts = append(opts, export.WithSerializerConfigurer(func(base export.SerializationOptions) export.SerializationOptions {
			base.JSON.Indent = indent
			return base
		}))
	}
	return opts
}

// SelectionMode returns the configured default mode.
func (c Config) SelectionMode() export.SelectionMode {
	mode, err := export.ParseSelectionMode(c.Export.Mode)
	if err != nil {
		return export.SelectionAll
	}
	return mode
}

func invalid(msg, code string) error {
	return errors.New(msg, errors.CategoryValidation).WithTextCode(code)
}
