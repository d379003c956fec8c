package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/site-compiler/internal/artifacts"
)

var buildCmd = &cobra.Command{
	Use:   "build <site-key>",
	Short: "Compile normalized.json into schema.json",
	Long:  "Compiles the normalized site into a block-based site schema and export bundle. Block and page ids from an existing schema.json are kept where the page layout is unchanged.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	dir, err := siteDir(r, args[0])
	if err != nil {
		return err
	}
	schema, err := r.Build(dir)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema: %s (%d pages)\n", dir.Path(artifacts.SchemaFile), schema.Meta.PageCount)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Export: %s\n", dir.Path(artifacts.ExportFile))
	return nil
}
