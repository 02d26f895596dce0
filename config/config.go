package config

import "github.com/goliatone/go-gridexport/export"

// Config holds gridexport CLI and server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Export  ExportConfig  `yaml:"export"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address  string `yaml:"address"`
	BasePath string `yaml:"base_path"`
	// LocaleCookie carries the session locale for remember-me requests.
	LocaleCookie string `yaml:"locale_cookie"`
}

// ExportConfig holds export defaults applied to every run.
type ExportConfig struct {
	Format           string `yaml:"format"`
	Mode             string `yaml:"mode"`
	Threshold        int64  `yaml:"threshold"`
	TempDir          string `yaml:"temp_dir"`
	Locale           string `yaml:"locale"`
	Timezone         string `yaml:"timezone"`
	Indent           string `yaml:"indent"`
	FilenameTemplate string `yaml:"filename_template"`
	ArtifactDir      string `yaml:"artifact_dir"`
	EnableSQLite     bool   `yaml:"enable_sqlite"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Address:      ":8080",
			BasePath:     "/exports",
			LocaleCookie: "locale",
		},
		Export: ExportConfig{
			Format:      "json",
			Mode:        "all",
			Threshold:   export.DefaultThreshold,
			Locale:      "en",
			ArtifactDir: "./artifacts",
		},
		Metrics: MetricsConfig{
			Path:      "/metrics",
			Namespace: "gridexport",
		},
	}
}
