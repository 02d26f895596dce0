package main

import (
	"fmt"
	"time"

	storefs "github.com/goliatone/go-gridexport/adapters/store/fs"
	"github.com/goliatone/go-gridexport/command"
	"github.com/goliatone/go-gridexport/config"
	"github.com/spf13/cobra"
)

var cleanupFlags struct {
	prefix    string
	olderThan time.Duration
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove exports stored by serve",
	Long: `Remove exports stored under the configured artifact directory.

Examples:
  # Remove everything older than a day
  gridexport cleanup --older-than 24h

  # Remove every stored people export
  gridexport cleanup --prefix people/`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().StringVar(&cleanupFlags.prefix, "prefix", "", "only remove keys with this prefix")
	cleanupCmd.Flags().DurationVar(&cleanupFlags.olderThan, "older-than", 0, "only remove exports older than this (0 removes all)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	handler := command.NewCleanupArtifactsHandler(storefs.NewStore(cfg.Export.ArtifactDir))

	var removed int
	err = handler.Execute(cmd.Context(), command.CleanupArtifacts{
		Prefix:    cleanupFlags.prefix,
		OlderThan: cleanupFlags.olderThan,
		Result:    &removed,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "removed %d exports from %s\n", removed, cfg.Export.ArtifactDir)
	return nil
}
