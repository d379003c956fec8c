package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/site-compiler/internal/artifacts"
	"github.com/jonathan/site-compiler/internal/observability"
)

var extractCmd = &cobra.Command{
	Use:   "extract <site-key>",
	Short: "Fetch candidate product pages and extract product fields",
	Long:  "Fetches every URL in candidates.json through a bounded worker pool, extracts product fields, snapshots homepage content pages, and writes site.snapshot.json.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	dir, err := siteDir(r, args[0])
	if err != nil {
		return err
	}
	snapshot, err := r.Extract(cmd.Context(), dir)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Snapshot: %s (%s)\n", dir.Path(artifacts.SnapshotFile), observability.FormatStats(snapshot.Stats))
	return nil
}
