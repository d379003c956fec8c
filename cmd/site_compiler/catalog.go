package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/site-compiler/internal/artifacts"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog <site-key>",
	Short: "Normalize and deduplicate extracted products",
	Long:  "Normalizes the products in site.snapshot.json, groups pack and quantity variants under one canonical entry, and writes product.graph.json.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	dir, err := siteDir(r, args[0])
	if err != nil {
		return err
	}
	cat, err := r.Catalog(dir)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Product graph: %s (%d products)\n", dir.Path(artifacts.GraphFile), cat.Len())
	return nil
}
