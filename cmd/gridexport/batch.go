package main

import (
	"fmt"

	"github.com/goliatone/go-gridexport/command"
	"github.com/goliatone/go-gridexport/config"
	"github.com/spf13/cobra"
)

var batchFlags struct {
	grids      []string
	out        string
	maxExports int
}

var batchCmd = &cobra.Command{
	Use:   "batch <batch.yaml>",
	Short: "Run a list of exports",
	Long: `Run every export listed in a batch file against the given grid files.

A batch file is a YAML list:

  - grid: people
    format: csv
    output: people.csv
  - grid: people
    mode: current_selection
    selected: ["1", "3"]
    locale: de

Examples:
  gridexport batch nightly.yaml --grid people.yaml --grid orders.yaml --out ./exports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringArrayVarP(&batchFlags.grids, "grid", "g", nil, "grid file (repeatable)")
	batchCmd.Flags().StringVarP(&batchFlags.out, "out", "o", ".", "output directory")
	batchCmd.Flags().IntVar(&batchFlags.maxExports, "max", 0, "stop after this many exports (0 runs all)")
	_ = batchCmd.MarkFlagRequired("grid")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	catalog, err := loadCatalog(batchFlags.grids)
	if err != nil {
		return err
	}
	opts, err := exporterOptions(cfg, logger)
	if err != nil {
		return err
	}

	batch := command.NewBatchExportCommand(
		command.NewExportGridHandler(catalog, opts...),
		nil,
		command.WithBatchOutputDir(batchFlags.out),
		command.WithBatchLimits(command.BatchLimits{MaxExports: batchFlags.maxExports}),
	)
	results, err := batch.Run(cmd.Context(), args[0])
	for _, result := range results {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d records, %d bytes)\n", result.Filename, result.Records, result.Bytes)
	}
	return err
}
