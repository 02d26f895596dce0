package main

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-gridexport/command"
	"github.com/goliatone/go-gridexport/config"
	"github.com/goliatone/go-gridexport/export"
	"github.com/spf13/cobra"
)

var exportFlags struct {
	format    string
	mode      string
	selected  []string
	out       string
	name      string
	indent    int
	locale    string
	timezone  string
	threshold int64
	tempDir   string
}

var exportCmd = &cobra.Command{
	Use:   "export <grid.yaml>",
	Short: "Export a grid file",
	Long: `Export a grid file to JSON (default), NDJSON, CSV, XLSX or SQLite.

Examples:
  # Export all rows as JSON into the current directory
  gridexport export people.yaml

  # Export rows 1 and 3 as CSV into ./out
  gridexport export people.yaml --format csv --selected 1,3 --out ./out

  # Pretty-print JSON to stdout
  gridexport export people.yaml --indent 2 --out -`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFlags.format, "format", "f", "", "output format (json, ndjson, csv, xlsx, sqlite)")
	exportCmd.Flags().StringVarP(&exportFlags.mode, "mode", "m", "", "selection mode (all, current_selection)")
	exportCmd.Flags().StringSliceVarP(&exportFlags.selected, "selected", "s", nil, "selected row IDs, implies current_selection")
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", ".", "output directory, or - for stdout")
	exportCmd.Flags().StringVar(&exportFlags.name, "name", "", "output file name (defaults to <grid>.<ext>)")
	exportCmd.Flags().IntVar(&exportFlags.indent, "indent", 0, "indent JSON output with this many spaces")
	exportCmd.Flags().StringVar(&exportFlags.locale, "locale", "", "locale for numbers and dates")
	exportCmd.Flags().StringVar(&exportFlags.timezone, "timezone", "", "IANA timezone for dates")
	exportCmd.Flags().Int64Var(&exportFlags.threshold, "threshold", -1, "spill payloads of at least this many bytes to a temp file (0 disables)")
	exportCmd.Flags().StringVar(&exportFlags.tempDir, "temp-dir", "", "directory for spill files")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyExportFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cmd)

	table, err := loadGridFile(args[0])
	if err != nil {
		return err
	}
	opts, err := exporterOptions(cfg, logger)
	if err != nil {
		return err
	}
	handler := command.NewExportGridHandler(export.NewGridCatalog(table), opts...)

	var downloader export.Downloader
	toStdout := exportFlags.out == "-"
	file := &export.FileDownloader{Dir: exportFlags.out, Name: exportFlags.name}
	if toStdout {
		downloader = export.WriterDownloader{W: cmd.OutOrStdout()}
	} else {
		downloader = file
	}

	mode := cfg.SelectionMode()
	if len(exportFlags.selected) > 0 && !cmd.Flags().Changed("mode") {
		mode = export.SelectionCurrent
	}
	var result export.Result
	msg := command.ExportGrid{
		Grid:       table.Name(),
		Mode:       mode,
		Selected:   exportFlags.selected,
		Downloader: downloader,
		Result:     &result,
	}
	if err := handler.Execute(cmd.Context(), msg); err != nil {
		return err
	}

	if !toStdout {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d records, %d bytes)\n", file.Path(), result.Records, result.Bytes)
	}
	return nil
}

// applyExportFlags lets explicitly set flags win over the config file.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Export.Format = exportFlags.format
	}
	if flags.Changed("mode") {
		cfg.Export.Mode = exportFlags.mode
	}
	if flags.Changed("locale") {
		cfg.Export.Locale = exportFlags.locale
	}
	if flags.Changed("timezone") {
		cfg.Export.Timezone = exportFlags.timezone
	}
	if flags.Changed("threshold") {
		cfg.Export.Threshold = exportFlags.threshold
	}
	if flags.Changed("temp-dir") {
		cfg.Export.TempDir = exportFlags.tempDir
	}
	if flags.Changed("indent") {
		cfg.Export.Indent = strings.Repeat(" ", max(exportFlags.indent, 0))
	}
	if export.NormalizeFormat(export.Format(cfg.Export.Format)) == export.FormatSQLite {
		cfg.Export.EnableSQLite = true
	}
}
