// Package main provides the entry point for the site_compiler CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/site-compiler/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:           "site_compiler",
	Short:         "Compile a commerce website into a product catalog and site schema",
	Long:          "site_compiler crawls a commerce site, extracts and deduplicates its products, and compiles its pages into a block-based site schema. Every stage reads and writes JSON artifacts under <out>/<site-key>/.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

// reportError prints err as a diagnostic and returns the exit code.
func reportError(w io.Writer, err error) int {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		_, _ = fmt.Fprintln(w, stageErr.Error())
	} else {
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	}
	return 1
}
