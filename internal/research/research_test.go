package research

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/site-compiler/internal/catalog"
	"github.com/jonathan/site-compiler/internal/types"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]types.ProductCatalogEntry{
		{Name: "Cordless Drill", URL: "https://s.test/products/drill",
			Variants: []types.Variant{{URL: "https://s.test/products/drill-kit"}}},
		{Name: "Hammer", URL: "https://s.test/products/hammer"},
	})
}

func TestAttach_BindsByURLThenName(t *testing.T) {
	cat := testCatalog()
	before := cat.Entries()

	bundle := &types.ResearchBundle{Facts: []types.ResearchFact{
		{ProductURL: "https://s.test/products/drill", Key: "torque", Value: "65 Nm"},
		{ProductURL: "https://s.test/products/drill-kit", Key: "battery", Value: "2x 2Ah"},
		{ProductName: "HAMMER", Key: "weight", Value: "16 oz"},
		{ProductURL: "https://s.test/products/unknown", ProductName: "hammer", Key: "handle", Value: "fiberglass"},
		{ProductName: "Saw", Key: "teeth", Value: "24"},
		{Key: "orphan", Value: "x"},
	}}

	att := Attach(cat, bundle, nil)
	require.NotNil(t, att)

	assert.Len(t, att.Facts["https://s.test/products/drill"], 2)
	assert.Len(t, att.Facts["https://s.test/products/hammer"], 2)
	assert.Equal(t, 2, att.Unmatched)
	assert.Equal(t, 4, att.FactCount())

	assert.Equal(t, before, cat.Entries())
}

func TestAttach_ValueProps(t *testing.T) {
	model := &types.ValueModel{Propositions: []types.ValueProposition{
		{Title: "Pro grade", ProductURLs: []string{
			"https://s.test/products/drill-kit",
			"https://s.test/products/drill",
			"https://s.test/products/gone",
		}},
		{Title: "Free shipping"},
	}}

	att := Attach(testCatalog(), nil, model)
	require.NotNil(t, att)
	require.Len(t, att.ValueProps, 2)
	assert.Equal(t, []string{"https://s.test/products/drill"}, att.ValueProps[0].ProductURLs)
	assert.Nil(t, att.ValueProps[1].ProductURLs)
	assert.Zero(t, att.Unmatched)
}

func TestAttach_NothingToAttach(t *testing.T) {
	assert.Nil(t, Attach(testCatalog(), nil, nil))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	bundlePath := filepath.Join(dir, "research.bundle.json")
	require.NoError(t, os.WriteFile(bundlePath, []byte(`{"facts":[{"productName":"Hammer","key":"k","value":"v"}]}`), 0o644))

	bundle, model, err := Load(bundlePath, filepath.Join(dir, "value.model.json"))
	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Len(t, bundle.Facts, 1)
	assert.Nil(t, model)

	bundle, model, err = Load("", "")
	require.NoError(t, err)
	assert.Nil(t, bundle)
	assert.Nil(t, model)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.model.json")
	require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0o644))

	_, _, err := Load("", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load value model")
}
