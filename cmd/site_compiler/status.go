package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/site-compiler/internal/pipeline/steps"
)

var statusCmd = &cobra.Command{
	Use:   "status <site-key>",
	Short: "Show which stages have run and which can run next",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	dir, err := siteDir(r, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Site: %s (%s)\n", dir.SiteKey(), dir.Root())

	var done []string
	for _, name := range steps.Order {
		if steps.Completed(dir, name) {
			done = append(done, name)
		}
	}
	_, _ = fmt.Fprintf(out, "Completed: %s\n", listOrNone(done))
	_, _ = fmt.Fprintf(out, "Available: %s\n", listOrNone(steps.GetAvailableSteps(dir)))

	blocked := steps.GetBlockedSteps(dir)
	if len(blocked) == 0 {
		_, _ = fmt.Fprintln(out, "Blocked: none")
		return nil
	}
	_, _ = fmt.Fprintln(out, "Blocked:")
	for _, name := range blocked {
		var depErr *steps.DependencyError
		if err := steps.ValidateDependencies(dir, name); errors.As(err, &depErr) {
			_, _ = fmt.Fprintf(out, "  %s (needs %s)\n", name, strings.Join(depErr.MissingDependencies, ", "))
		}
	}
	return nil
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
