package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/site-compiler/internal/artifacts"
)

var validateCmd = &cobra.Command{
	Use:   "validate <site-key>",
	Short: "Validate schema.json against the embedded site schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	dir, err := siteDir(r, args[0])
	if err != nil {
		return err
	}
	if err := r.Validate(dir); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", dir.Path(artifacts.SchemaFile))
	return nil
}
