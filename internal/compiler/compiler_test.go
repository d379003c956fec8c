package compiler

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/site-compiler/internal/types"
)

func gadgets(n int) []types.ProductCatalogEntry {
	entries := make([]types.ProductCatalogEntry, 0, n)
	for i := 0; i < n; i++ {
		price := float64(10 + i)
		entries = append(entries, types.ProductCatalogEntry{
			Name:   fmt.Sprintf("Gadget %c", 'A'+i),
			URL:    fmt.Sprintf("https://s.test/products/gadget-%d", i),
			Price:  &price,
			Images: []string{fmt.Sprintf("https://s.test/img/%d.jpg", i)},
		})
	}
	return entries
}

func testSite(pages []types.Page, products []types.ProductCatalogEntry) *types.NormalizedSite {
	return &types.NormalizedSite{
		Domain:    "s.test",
		Brand:     "Acme Hardware",
		StoreType: "generic",
		Pages:     pages,
		Nav: []types.NavEntry{
			{Label: "Home", URL: "https://s.test/"},
			{Label: "Drills", URL: "https://s.test/collections/drills"},
		},
		Products: products,
	}
}

func blockTypes(page *types.SitePage) []types.BlockType {
	out := make([]types.BlockType, 0, len(page.Sections))
	for _, b := range page.Sections {
		out = append(out, b.Type)
	}
	return out
}

func heading(text string, level int) types.ContentSection {
	return types.ContentSection{Type: types.SectionHeading, Text: text, Level: level}
}

func text(s string) types.ContentSection {
	return types.ContentSection{Type: types.SectionText, Text: s}
}

func TestCompile_HeroOncePerPage(t *testing.T) {
	site := testSite([]types.Page{{Path: "/about", Title: "About", Sections: []types.ContentSection{
		heading("Quality tools for every workshop job", 1),
		heading("Serving tradespeople since the eighties", 2),
		text("Family run."),
	}}}, nil)

	schema := Compile(site, nil, nil)
	page := schema.FindPage("/about")
	require.NotNil(t, page)

	assert.Equal(t, []types.BlockType{
		types.BlockNav, types.BlockHero, types.BlockText, types.BlockText, types.BlockFooter,
	}, blockTypes(page))
	hero := page.Sections[1].Content.(*types.HeroContent)
	assert.Equal(t, "Quality tools for every workshop job", hero.Heading)
	assert.Equal(t, 2, page.Sections[2].Content.(*types.TextContent).Level)
}

func TestCompile_DropsLeakedNavHeadingsEarlyOnly(t *testing.T) {
	sections := []types.ContentSection{heading("Guitars", 3), heading("Drills", 3)}
	for i := 0; i < 11; i++ {
		sections = append(sections, text(fmt.Sprintf("Paragraph number %d.", i)))
	}
	sections = append(sections, heading("Guitars", 2))

	schema := Compile(testSite([]types.Page{{Path: "/info", Sections: sections}}, nil), nil, nil)
	page := schema.FindPage("/info")
	require.NotNil(t, page)

	// nav + 11 paragraphs + late heading + footer
	require.Len(t, page.Sections, 14)
	late := page.Sections[12].Content.(*types.TextContent)
	assert.Equal(t, "Guitars", late.Text)
	assert.Equal(t, 2, late.Level)
}

func TestCompile_ProductGridPromotion(t *testing.T) {
	site := testSite([]types.Page{{Path: "/range", Sections: []types.ContentSection{
		text("Browse our featured range this season."),
		text("The Gadget C is back in stock."),
		text("Opening hours are nine to five."),
	}}}, gadgets(10))

	schema := Compile(site, nil, nil)
	page := schema.FindPage("/range")
	require.NotNil(t, page)
	require.Equal(t, []types.BlockType{
		types.BlockNav, types.BlockProductGrid, types.BlockProductGrid, types.BlockText, types.BlockFooter,
	}, blockTypes(page))

	keyword := page.Sections[1].Content.(*types.ProductGridContent)
	assert.Len(t, keyword.Products, GridFallbackSize)
	assert.Equal(t, "Gadget A", keyword.Products[0].Name)

	named := page.Sections[2].Content.(*types.ProductGridContent)
	require.Len(t, named.Products, 1)
	assert.Equal(t, "https://s.test/products/gadget-2", named.Products[0].URL)
	assert.Equal(t, "https://s.test/img/2.jpg", named.Products[0].Image)
}

// A four-block homepage without hero or grid is patched, not replaced.
func TestCompile_HomepagePatchedNotReplaced(t *testing.T) {
	site := testSite([]types.Page{{Path: "/", Title: "Welcome", Sections: []types.ContentSection{
		text("Welcome to our family store since 1982."),
		{Type: types.SectionImage, Src: "https://s.test/banner.jpg"},
		{Type: types.SectionQuote, Text: "Best hardware store in town."},
		{Type: types.SectionHTML, HTML: `<iframe src="https://video.test/1"></iframe>`},
	}}}, gadgets(2))

	schema := Compile(site, nil, nil)
	home := schema.FindPage("/")
	require.NotNil(t, home)

	assert.Equal(t, []types.BlockType{
		types.BlockNav,
		types.BlockHero,
		types.BlockText, types.BlockImage, types.BlockQuote, types.BlockHTML,
		types.BlockProductGrid,
		types.BlockFooter,
	}, blockTypes(home))

	hero := home.Sections[1].Content.(*types.HeroContent)
	assert.Equal(t, "Welcome to our family store since 1982.", hero.Heading)
	assert.Equal(t, "https://s.test/banner.jpg", hero.Image)
}

func TestCompile_SmallHomepageReplaced(t *testing.T) {
	site := testSite([]types.Page{{Path: "/", Sections: []types.ContentSection{
		text("Welcome to our family store since 1982."),
		{Type: types.SectionImage, Src: "https://s.test/banner.jpg"},
	}}}, gadgets(2))
	site.Media = []string{"https://s.test/banner.jpg"}

	home := Compile(site, nil, nil).FindPage("/")
	require.NotNil(t, home)

	assert.Equal(t, []types.BlockType{
		types.BlockNav,
		types.BlockHero, types.BlockTrustBar, types.BlockCategoryGrid, types.BlockProductGrid, types.BlockCTAStrip,
		types.BlockFooter,
	}, blockTypes(home))

	bar := home.Sections[2].Content.(*types.TrustBarContent)
	assert.Equal(t, []string{"2 products", "1 photo"}, bar.Items)

	cats := home.Sections[3].Content.(*types.CategoryGridContent)
	assert.Equal(t, []types.Link{{Label: "Drills", Href: "https://s.test/collections/drills"}}, cats.Categories)

	cta := home.Sections[5]
	assert.Equal(t, "Gadget A", cta.Content.(*types.CTAStripContent).Primary.Label)
	require.Len(t, cta.Actions, 1)
	assert.Equal(t, "primary", cta.Actions[0].Kind)
}

func TestCompile_SynthesizesMissingHomepage(t *testing.T) {
	site := testSite(nil, gadgets(3))
	schema := Compile(site, nil, nil)

	require.NotEmpty(t, schema.Pages)
	home := schema.Pages[0]
	assert.Equal(t, "/", home.Path)
	assert.Equal(t, "home", home.ID)
	assert.Equal(t, "Acme Hardware", home.Title)

	hero := home.Sections[1].Content.(*types.HeroContent)
	assert.Equal(t, "Acme Hardware", hero.Heading)
	assert.Equal(t, "https://s.test/img/0.jpg", hero.Image)
}

func TestCompile_NoPagesNoProducts(t *testing.T) {
	schema := Compile(testSite(nil, nil), nil, nil)
	assert.Empty(t, schema.Pages)
	assert.Zero(t, schema.Meta.PageCount)
}

func TestCompile_DerivationFirst(t *testing.T) {
	site := testSite([]types.Page{{Path: "/raw", Sections: []types.ContentSection{text("Raw page.")}}}, nil)
	site.DerivedPages = []types.Page{{Path: "/derived", Sections: []types.ContentSection{text("Derived page.")}}}

	schema := Compile(site, nil, nil)
	assert.Nil(t, schema.FindPage("/raw"))
	assert.NotNil(t, schema.FindPage("/derived"))
	assert.True(t, schema.Meta.Derived)
}

func TestCompile_WrapsWithNavAndFooter(t *testing.T) {
	site := testSite([]types.Page{{Path: "/a", Sections: []types.ContentSection{text("Hello.")}}}, nil)
	site.Nav = append(site.Nav, types.NavEntry{Label: "Blog", URL: "https://blog.test/", External: true})

	page := Compile(site, nil, nil).FindPage("/a")
	require.NotNil(t, page)

	nav := page.Sections[0].Content.(*types.NavContent)
	assert.Len(t, nav.Items, 3)
	footer := page.Sections[len(page.Sections)-1].Content.(*types.FooterContent)
	assert.Equal(t, "Acme Hardware", footer.Brand)
	assert.Len(t, footer.Links, 2)

	site.Nav = nil
	page = Compile(site, nil, nil).FindPage("/a")
	assert.Equal(t, []types.BlockType{types.BlockText, types.BlockFooter}, blockTypes(page))
}

func TestCompile_HandlesEverySectionType(t *testing.T) {
	samples := map[types.SectionType]types.ContentSection{
		types.SectionHeading: heading("Short", 2),
		types.SectionText:    text("Some words."),
		types.SectionImage:   {Type: types.SectionImage, Src: "https://s.test/a.png"},
		types.SectionList:    {Type: types.SectionList, Items: []string{"one", "two"}},
		types.SectionQuote:   {Type: types.SectionQuote, Text: "Said."},
		types.SectionHTML:    {Type: types.SectionHTML, HTML: "<video></video>"},
	}
	for _, st := range types.AllSectionTypes {
		t.Run(string(st), func(t *testing.T) {
			sample, ok := samples[st]
			require.True(t, ok, "no sample for section type %s", st)

			site := testSite([]types.Page{{Path: "/p", Sections: []types.ContentSection{sample}}}, nil)
			site.Nav = nil
			page := Compile(site, nil, nil).FindPage("/p")
			require.NotNil(t, page)
			assert.Len(t, page.Sections, 2)
		})
	}
}

func TestCompile_MetaAndByteStability(t *testing.T) {
	site := testSite([]types.Page{{Path: "/", Sections: []types.ContentSection{
		heading("Everything for the serious workshop", 1),
		text("Shop our range."),
	}}}, gadgets(4))
	site.Research = &types.ResearchAttachment{Facts: map[string][]types.ResearchFact{
		"https://s.test/products/gadget-0": {{Key: "a", Value: "b"}, {Key: "c", Value: "d"}},
	}}

	first := Compile(site, nil, nil)
	assert.Equal(t, types.SchemaMeta{
		Brand:         "Acme Hardware",
		StoreType:     "generic",
		ProductCount:  4,
		PageCount:     1,
		ResearchFacts: 2,
		Version:       types.SchemaVersion,
	}, first.Meta)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(Compile(site, nil, first))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	var decoded types.SiteSchema
	require.NoError(t, json.Unmarshal(a, &decoded))
	assert.Equal(t, first.Pages[0].Sections[1].Content, decoded.Pages[0].Sections[1].Content)
}
