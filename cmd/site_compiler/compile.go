package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <url>",
	Short: "Run discover, extract, catalog and assemble for a site",
	Long:  "Runs the crawl and catalog stages end to end for a site URL. Bare domains get an https:// scheme. With --build the site schema is compiled as well.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

var compileBuild bool

func init() {
	compileCmd.Flags().BoolVar(&compileBuild, "build", false, "Also compile schema.json and export.bundle.json")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	dir, err := r.Compile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if compileBuild {
		if _, err := r.Build(dir); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Site key: %s\n", dir.SiteKey())
	return nil
}
