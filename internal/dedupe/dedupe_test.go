package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/site-compiler/internal/types"
)

func product(name, url, price string) types.NormalizedProduct {
	p := types.NormalizedProduct{Universal: types.UniversalFields{Name: name, URL: url, Images: []string{}}}
	if price != "" {
		p.Universal.Price = types.StringPtr(price)
	}
	return p
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Widget (6-pack)", "widget"},
		{"Widget", "widget"},
		{"  WIDGET   Deluxe ", "widget deluxe"},
		{"Widget 12 Pack", "widget"},
		{"Hex Bolts - 50 pack", "hex bolts"},
		{"Socket Set 40 pc", "socket set"},
		{"Socket Set 40-piece", "socket set"},
		{"Batteries (4 units)", "batteries"},
		{"6 Pack", "6 pack"},
		{"Model 3000 Mixer", "model 3000 mixer"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalName(tt.in))
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want *float64
	}{
		{"DollarsAndCents", types.StringPtr("$1,299.00"), ptr(1299.00)},
		{"Plain", types.StringPtr("19.99"), ptr(19.99)},
		{"Range takes first", types.StringPtr("$10 - $20"), ptr(10)},
		{"CommaIsThousandsSeparator", types.StringPtr("1,050 USD"), ptr(1050)},
		{"CallForPrice", types.StringPtr("Call for price"), nil},
		{"Nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.0001)
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestProducts_MergesPackVariants(t *testing.T) {
	entries := Products([]types.NormalizedProduct{
		product("Widget (6-pack)", "https://s.test/products/widget-6", "$30.00"),
		product("Widget", "https://s.test/products/widget", "$6.00"),
	}, Options{})

	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "Widget (6-pack)", entry.Name)
	assert.Equal(t, "https://s.test/products/widget-6", entry.URL)
	require.NotNil(t, entry.Price)
	assert.InDelta(t, 30.0, *entry.Price, 0.0001)

	require.Len(t, entry.Variants, 1)
	assert.Equal(t, "https://s.test/products/widget", entry.Variants[0].URL)
	require.NotNil(t, entry.Variants[0].Price)
	assert.InDelta(t, 6.0, *entry.Variants[0].Price, 0.0001)
}

func TestProducts_BrandSeparatesGroups(t *testing.T) {
	a := product("Drill", "https://s.test/products/a", "")
	a.Attributes.Brand = types.StringPtr("Acme")
	b := product("Drill", "https://s.test/products/b", "")
	b.Attributes.Brand = types.StringPtr("Bolt")
	c := product("Drill 2 pack", "https://s.test/products/c", "")
	c.Attributes.Brand = types.StringPtr("ACME")

	entries := Products([]types.NormalizedProduct{a, b, c}, Options{})
	require.Len(t, entries, 2)
	assert.Equal(t, "https://s.test/products/a", entries[0].URL)
	assert.Len(t, entries[0].Variants, 1)
	assert.Equal(t, "https://s.test/products/b", entries[1].URL)
	assert.Empty(t, entries[1].Variants)
}

func TestProducts_VariantInvariant(t *testing.T) {
	input := []types.NormalizedProduct{
		product("Gizmo", "https://s.test/products/g1", "1"),
		product("Gizmo 3 pack", "https://s.test/products/g3", "3"),
		product("Gadget", "https://s.test/products/ga", "5"),
		product("Gizmo (10-pack)", "https://s.test/products/g10", "9"),
		product("Gizmo", "https://s.test/products/g1", "1"), // repeated URL
	}
	entries := Products(input, Options{})

	require.Len(t, entries, 2)
	assert.Equal(t, 2, VariantCount(entries))
	assert.Len(t, entries[0].Variants, 2)
	for _, e := range entries {
		for _, v := range e.Variants {
			assert.NotEqual(t, e.URL, v.URL)
		}
	}
}

func TestProducts_Deterministic(t *testing.T) {
	input := []types.NormalizedProduct{
		product("B", "https://s.test/products/b", ""),
		product("A", "https://s.test/products/a", ""),
		product("B 2 pack", "https://s.test/products/b2", ""),
	}
	first := Products(input, Options{})
	second := Products(input, Options{})
	assert.Equal(t, first, second)
	assert.Equal(t, "B", first[0].Name)
	assert.Equal(t, "A", first[1].Name)
}

func TestProducts_ExcludeKeepsEntriesSeparate(t *testing.T) {
	input := []types.NormalizedProduct{
		product("Widget (6-pack)", "https://s.test/products/widget-6", ""),
		product("Widget", "https://s.test/products/widget", ""),
	}
	entries := Products(input, Options{Exclude: []string{"Widget"}})
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].Variants)
	assert.Empty(t, entries[1].Variants)
}

func TestProducts_SparseAttributes(t *testing.T) {
	bare := product("Plain", "https://s.test/products/plain", "")
	rich := product("Rich", "https://s.test/products/rich", "")
	rich.Attributes.SKU = types.StringPtr("R-1")
	rich.Attributes.Content = types.StringPtr("Long body text")

	entries := Products([]types.NormalizedProduct{bare, rich}, Options{})
	require.Len(t, entries, 2)

	assert.Nil(t, entries[0].Attributes)
	assert.Nil(t, entries[0].RawContent)

	require.NotNil(t, entries[1].Attributes)
	assert.Equal(t, "R-1", types.Deref(entries[1].Attributes.SKU))
	assert.Equal(t, "Long body text", types.Deref(entries[1].RawContent))
}

func TestProducts_VariantCarriesSKU(t *testing.T) {
	a := product("Cable", "https://s.test/products/c1", "")
	b := product("Cable 5 pack", "https://s.test/products/c5", "$12")
	b.Attributes.SKU = types.StringPtr("CBL-5")

	entries := Products([]types.NormalizedProduct{a, b}, Options{})
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Variants, 1)
	assert.Equal(t, "CBL-5", entries[0].Variants[0].SKU)
}

func TestProducts_Empty(t *testing.T) {
	entries := Products(nil, Options{})
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
