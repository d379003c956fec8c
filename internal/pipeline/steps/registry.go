// Package steps defines the pipeline stages, the artifacts each one produces,
// and dependency checks against a site's artifact directory.
package steps

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/site-compiler/internal/artifacts"
)

// Stage names.
const (
	Discover = "discover"
	Extract  = "extract"
	Catalog  = "catalog"
	Assemble = "assemble"
	Build    = "build"
	Validate = "validate"
)

// Stage categories.
const (
	CategoryCrawl   = "crawl"
	CategoryCatalog = "catalog"
	CategorySchema  = "schema"
)

// StepDefinition defines metadata for a pipeline stage
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string // stages whose outputs must exist
	Optional     []string // artifacts read when present
	Outputs      []string // artifacts written
}

// StepRegistry holds all stage definitions
var StepRegistry = map[string]StepDefinition{
	Discover: {
		Name:         Discover,
		Category:     CategoryCrawl,
		Dependencies: []string{},
		Outputs:      []string{artifacts.CandidatesFile},
	},
	Extract: {
		Name:         Extract,
		Category:     CategoryCrawl,
		Dependencies: []string{Discover},
		Outputs:      []string{artifacts.SnapshotFile},
	},
	Catalog: {
		Name:         Catalog,
		Category:     CategoryCatalog,
		Dependencies: []string{Extract},
		Outputs:      []string{artifacts.GraphFile},
	},
	Assemble: {
		Name:         Assemble,
		Category:     CategoryCatalog,
		Dependencies: []string{Extract, Catalog},
		Optional:     []string{artifacts.ResearchBundleFile, artifacts.ValueModelFile, artifacts.NormalizedFile},
		Outputs:      []string{artifacts.NormalizedFile, artifacts.ReportFile},
	},
	Build: {
		Name:         Build,
		Category:     CategorySchema,
		Dependencies: []string{Assemble},
		Optional:     []string{artifacts.SchemaFile},
		Outputs:      []string{artifacts.SchemaFile, artifacts.ExportFile},
	},
	Validate: {
		Name:         Validate,
		Category:     CategorySchema,
		Dependencies: []string{Build},
		Outputs:      []string{},
	},
}

// Order lists stages in pipeline order.
var Order = []string{Discover, Extract, Catalog, Assemble, Build, Validate}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string // artifact file names
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies for %s: %s", e.Step, strings.Join(e.MissingDependencies, ", "))
}

// Unwrap lets callers match errors.Is(err, artifacts.ErrArtifactMissing).
func (e *DependencyError) Unwrap() error {
	return artifacts.ErrArtifactMissing
}

// ValidateDependencies checks that every output of the stage's dependencies
// is present in dir
func ValidateDependencies(dir *artifacts.Dir, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	seen := make(map[string]bool)
	for _, dep := range def.Dependencies {
		for _, name := range StepRegistry[dep].Outputs {
			if seen[name] {
				continue
			}
			seen[name] = true
			if !dir.Exists(name) {
				missing = append(missing, name)
			}
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}

	return nil
}

// GetAvailableSteps returns stages, in pipeline order, whose dependencies are met
func GetAvailableSteps(dir *artifacts.Dir) []string {
	var available []string
	for _, stepName := range Order {
		if ValidateDependencies(dir, stepName) == nil {
			available = append(available, stepName)
		}
	}
	return available
}

// GetBlockedSteps returns stages, in pipeline order, whose dependencies are not met
func GetBlockedSteps(dir *artifacts.Dir) []string {
	var blocked []string
	for _, stepName := range Order {
		if ValidateDependencies(dir, stepName) != nil {
			blocked = append(blocked, stepName)
		}
	}
	return blocked
}

// Completed reports whether every output of the stage exists. Validate has no
// outputs and is never reported complete.
func Completed(dir *artifacts.Dir, stepName string) bool {
	def, ok := StepRegistry[stepName]
	if !ok || len(def.Outputs) == 0 {
		return false
	}
	for _, name := range def.Outputs {
		if !dir.Exists(name) {
			return false
		}
	}
	return true
}
