package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <url>",
	Short: "Crawl listing pages and record candidate product URLs",
	Long:  "Crawls the site breadth-first from its homepage, following listing and pagination links, and writes candidates.json with every product detail URL found.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	dir, candidates, err := r.Discover(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Discovered %d product URLs (%s store)\n", len(candidates.Products), candidates.StoreType)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Site key: %s\n", dir.SiteKey())
	return nil
}
