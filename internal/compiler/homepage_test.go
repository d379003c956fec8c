package compiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/site-compiler/internal/catalog"
	"github.com/jonathan/site-compiler/internal/types"
)

func compilationFor(site *types.NormalizedSite) *compilation {
	return newCompilation(site, catalog.New(site.Products))
}

func TestCTAStrip(t *testing.T) {
	t.Run("ActionWordsPrimaryThenSecondary", func(t *testing.T) {
		site := testSite(nil, nil)
		site.Nav = []types.NavEntry{
			{Label: "About", URL: "https://s.test/about"},
			{Label: "Shop Now", URL: "https://s.test/shop"},
			{Label: "Book a fitting", URL: "https://s.test/book"},
			{Label: "Contact", URL: "https://s.test/contact"},
		}
		cta := compilationFor(site).ctaStrip()
		require.NotNil(t, cta)
		assert.Equal(t, "Shop Now", cta.Primary.Label)
		require.NotNil(t, cta.Secondary)
		assert.Equal(t, "Book a fitting", cta.Secondary.Label)
	})

	t.Run("FallsBackToExternalLink", func(t *testing.T) {
		site := testSite(nil, gadgets(1))
		site.Nav = append(site.Nav, types.NavEntry{Label: "Forum", URL: "https://forum.test/", External: true})
		cta := compilationFor(site).ctaStrip()
		require.NotNil(t, cta)
		assert.Equal(t, "https://forum.test/", cta.Primary.Href)
		assert.Nil(t, cta.Secondary)
	})

	t.Run("FallsBackToFirstProduct", func(t *testing.T) {
		cta := compilationFor(testSite(nil, gadgets(2))).ctaStrip()
		require.NotNil(t, cta)
		assert.Equal(t, "https://s.test/products/gadget-0", cta.Primary.Href)
	})

	t.Run("NothingToLinkTo", func(t *testing.T) {
		site := testSite(nil, nil)
		site.Nav = nil
		assert.Nil(t, compilationFor(site).ctaStrip())
	})
}

func TestCategoryGrid_CapAndFirstSeenWins(t *testing.T) {
	products := gadgets(20)
	for i := range products {
		products[i].Attributes = &types.DiscoveredAttributes{
			Category: types.StringPtr(fmt.Sprintf("Category %d", i)),
			Brand:    types.StringPtr("Acme"),
		}
	}
	// Same key as the nav collection: the nav label and href win
	products[0].Attributes.Category = types.StringPtr("drills")

	grid := compilationFor(testSite(nil, products)).categoryGrid()
	require.NotNil(t, grid)
	assert.Len(t, grid.Categories, CategoryGridCap)
	assert.Equal(t, types.Link{Label: "Drills", Href: "https://s.test/collections/drills"}, grid.Categories[0])
	assert.Equal(t, "Category 1", grid.Categories[1].Label)
	assert.Equal(t, "https://s.test/products/gadget-1", grid.Categories[1].Href)
}

func TestCategoryGrid_BrandsIncluded(t *testing.T) {
	products := gadgets(2)
	products[1].Attributes = &types.DiscoveredAttributes{Brand: types.StringPtr("Bolt")}
	site := testSite(nil, products)
	site.Nav = nil

	grid := compilationFor(site).categoryGrid()
	require.NotNil(t, grid)
	assert.Equal(t, []types.Link{{Label: "Bolt", Href: "https://s.test/products/gadget-1"}}, grid.Categories)
}

func TestFeatureGrid(t *testing.T) {
	page := types.Page{Path: "/", Sections: []types.ContentSection{
		heading("Free delivery", 3), text("On orders over $50."),
		heading("Expert advice", 3), text("Talk to our team."),
		heading("No follow-up text", 3),
		{Type: types.SectionList, Items: []string{"Lifetime warranty", "Trade accounts", "Free delivery", "Click and collect", "Price match", "Gift cards"}},
	}}
	grid := compilationFor(testSite(nil, nil)).featureGrid(page)
	require.NotNil(t, grid)
	require.Len(t, grid.Features, FeatureGridCap)
	assert.Equal(t, types.Feature{Title: "Free delivery", Text: "On orders over $50."}, grid.Features[0])
	assert.Equal(t, "Expert advice", grid.Features[1].Title)
	assert.Equal(t, "Lifetime warranty", grid.Features[2].Title)
	assert.Equal(t, "Click and collect", grid.Features[4].Title)

	assert.Nil(t, compilationFor(testSite(nil, nil)).featureGrid(types.Page{}))
}

func TestTrustBar(t *testing.T) {
	site := testSite(nil, gadgets(1))
	site.Nav = append(site.Nav, types.NavEntry{Label: "Free Shipping", URL: "https://s.test/shipping"})
	site.Research = &types.ResearchAttachment{ValueProps: []types.ValueProposition{{Title: "Family owned"}, {Title: "Since 1982"}}}

	bar := compilationFor(site).trustBar()
	require.NotNil(t, bar)
	assert.Equal(t, []string{"1 product", "Free Shipping", "Family owned", "Since 1982"}, bar.Items)

	empty := testSite(nil, nil)
	empty.Nav = nil
	assert.Nil(t, compilationFor(empty).trustBar())
}

func TestHero_NoInputs(t *testing.T) {
	site := testSite(nil, nil)
	site.Brand = ""
	assert.Nil(t, compilationFor(site).hero(types.Page{}))
}

func TestHero_HeadingWithSubheading(t *testing.T) {
	page := types.Page{Sections: []types.ContentSection{
		heading("Home", 2),
		heading("Tools that last", 1),
		text("Hand picked by tradespeople."),
		{Type: types.SectionImage, Src: "https://s.test/hero.jpg"},
	}}
	hero := compilationFor(testSite(nil, nil)).hero(page)
	require.NotNil(t, hero)
	assert.Equal(t, "Tools that last", hero.Heading)
	assert.Equal(t, "Hand picked by tradespeople.", hero.Subheading)
	assert.Equal(t, "https://s.test/hero.jpg", hero.Image)
}
