package main

import (
	"fmt"
	"log/slog"
	"os"

	exportsqlite "github.com/goliatone/go-gridexport/adapters/sqlite"
	"github.com/goliatone/go-gridexport/config"
	"github.com/goliatone/go-gridexport/export"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gridexport",
	Short: "Export grids to JSON, CSV, XLSX or SQLite",
	Long: `gridexport renders tabular grids into downloadable files.

Grids are YAML documents holding columns, rows and an optional selection.
Only field columns are exported; every record carries one key per column,
in column order, with null for missing values.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// exporterOptions combines config defaults with the serializer registry and
// logger shared by every command.
func exporterOptions(cfg config.Config, logger *slog.Logger) ([]export.Option, error) {
	registry := export.NewSerializerRegistry()
	if cfg.Export.EnableSQLite {
		err := exportsqlite.Register(registry, exportsqlite.Serializer{
			Enabled: true,
			TempDir: cfg.Export.TempDir,
		})
		if err != nil {
			return nil, err
		}
	}
	opts := cfg.Options()
	opts = append(opts,
		export.WithSerializers(registry),
		export.WithLogger(export.NewSlogLogger(logger)),
	)
	return opts, nil
}
