package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the site_compiler binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "site_compiler"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/site_compiler ./cmd/site_compiler'", binaryPath)
	}

	return binaryPath
}

// execute runs the root command in-process and captures its output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	rootCmd.SetArgs(nil)
	return stdout.String(), stderr.String(), err
}
