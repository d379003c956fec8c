package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/site-compiler/internal/artifacts"
	"github.com/jonathan/site-compiler/internal/types"
)

func TestStepRegistry(t *testing.T) {
	require.Len(t, StepRegistry, len(Order))
	for _, stepName := range Order {
		def, ok := StepRegistry[stepName]
		require.True(t, ok, "Step %s should be in registry", stepName)
		assert.Equal(t, stepName, def.Name)
		assert.NotEmpty(t, def.Category)
		for _, dep := range def.Dependencies {
			_, ok := StepRegistry[dep]
			assert.True(t, ok, "Step %s depends on unknown step %s", stepName, dep)
		}
	}
}

func TestStepRegistryCategories(t *testing.T) {
	categories := map[string][]string{
		CategoryCrawl:   {Discover, Extract},
		CategoryCatalog: {Catalog, Assemble},
		CategorySchema:  {Build, Validate},
	}

	for category, stepNames := range categories {
		for _, stepName := range stepNames {
			assert.Equal(t, category, StepRegistry[stepName].Category, "Step %s should be in category %s", stepName, category)
		}
	}
}

func TestDependencyError(t *testing.T) {
	err := &DependencyError{
		Step:                "build",
		MissingDependencies: []string{"normalized.json", "report.final.json"},
	}

	assert.Contains(t, err.Error(), "missing dependencies for build")
	assert.Contains(t, err.Error(), "normalized.json, report.final.json")
	assert.ErrorIs(t, err, artifacts.ErrArtifactMissing)
}

func TestValidateDependencies_UnknownStep(t *testing.T) {
	err := ValidateDependencies(artifacts.Open(t.TempDir(), "x"), "unknown_step")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step")
}

func TestValidateDependencies_FollowsArtifacts(t *testing.T) {
	dir := artifacts.Open(t.TempDir(), "site")

	assert.NoError(t, ValidateDependencies(dir, Discover))

	err := ValidateDependencies(dir, Assemble)
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, []string{artifacts.GraphFile, artifacts.SnapshotFile}, depErr.MissingDependencies)

	require.NoError(t, dir.WriteCandidates(&types.Candidates{}))
	require.NoError(t, dir.WriteSnapshot(&types.SiteSnapshot{}))

	assert.Equal(t, []string{Discover, Extract, Catalog}, GetAvailableSteps(dir))
	assert.Equal(t, []string{Assemble, Build, Validate}, GetBlockedSteps(dir))
	assert.True(t, Completed(dir, Extract))
	assert.False(t, Completed(dir, Catalog))
	assert.False(t, Completed(dir, Validate))
}
