package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/site-compiler/internal/artifacts"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble <site-key>",
	Short: "Attach research and assemble the normalized site",
	Long:  "Binds optional research facts and value propositions to catalog products, gathers pages, navigation and media, and writes normalized.json and report.final.json.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	dir, err := siteDir(r, args[0])
	if err != nil {
		return err
	}
	site, report, err := r.Assemble(dir)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Normalized site: %s (%d pages, %d products, %d research facts)\n",
		dir.Path(artifacts.NormalizedFile), len(site.Pages), report.ProductsCount, site.Research.FactCount())
	return nil
}
