// Package compiler turns a normalized site into the renderer-facing SiteSchema.
package compiler

import (
	"strings"

	"github.com/jonathan/site-compiler/internal/catalog"
	"github.com/jonathan/site-compiler/internal/types"
)

// HomePath is the path of the homepage.
const HomePath = "/"

// Compile builds the schema for site. Pages come from site.DerivedPages when
// present, otherwise from site.Pages. When prior is non-nil, block and page ids
// at an unchanged path, index and type are copied from it. A nil cat is built
// from site.Products.
//
// Compile is pure and never fails: malformed sections are skipped.
func Compile(site *types.NormalizedSite, cat *catalog.Catalog, prior *types.SiteSchema) *types.SiteSchema {
	if cat == nil {
		cat = catalog.New(site.Products)
	}

	// 1. Pick the page source (derivation first)
	source := site.Pages
	derived := len(site.DerivedPages) > 0
	if derived {
		source = site.DerivedPages
	}

	// 2. Classify each page's sections
	comp := newCompilation(site, cat)
	pages := make([]types.SitePage, 0, len(source)+1)
	homeIndex := -1
	seenPath := make(map[string]bool)

	for _, page := range source {
		path := normalizePath(page.Path)
		if seenPath[path] {
			continue
		}
		seenPath[path] = true

		blocks := comp.classify(page)
		if path == HomePath {
			homeIndex = len(pages)
			blocks = comp.enrichHome(page, blocks)
		}
		pages = append(pages, types.SitePage{
			Path:     path,
			Title:    pageTitle(page, site.Brand),
			Sections: blocks,
		})
	}

	// 3. Synthesize a homepage when none was scraped
	if homeIndex < 0 && cat.Len() > 0 {
		home := types.Page{Path: HomePath, Title: site.Brand}
		pages = append([]types.SitePage{{
			Path:     HomePath,
			Title:    pageTitle(home, site.Brand),
			Sections: comp.synthesizeHome(home),
		}}, pages...)
	}

	// 4. Wrap with nav and footer, then assign ids
	for i := range pages {
		pages[i].Sections = comp.wrap(pages[i].Sections)
		assignIDs(&pages[i], prior.FindPage(pages[i].Path))
	}

	return &types.SiteSchema{
		Domain: site.Domain,
		Pages:  pages,
		Meta: types.SchemaMeta{
			Brand:         site.Brand,
			StoreType:     site.StoreType,
			ProductCount:  cat.Len(),
			PageCount:     len(pages),
			Derived:       derived,
			ResearchFacts: site.Research.FactCount(),
			Version:       types.SchemaVersion,
		},
	}
}

func (c *compilation) wrap(blocks []types.LayoutBlock) []types.LayoutBlock {
	out := make([]types.LayoutBlock, 0, len(blocks)+2)
	if len(c.site.Nav) > 0 {
		out = append(out, types.NewBlock(&types.NavContent{Items: c.navLinks()}))
	}
	out = append(out, blocks...)
	footer := &types.FooterContent{Brand: c.site.Brand}
	for _, link := range c.navLinks() {
		if !link.External {
			footer.Links = append(footer.Links, link)
		}
	}
	return append(out, types.NewBlock(footer))
}

func (c *compilation) navLinks() []types.Link {
	links := make([]types.Link, 0, len(c.site.Nav))
	for _, n := range c.site.Nav {
		links = append(links, types.Link{Label: n.Label, Href: n.URL, External: n.External})
	}
	return links
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == HomePath {
		return HomePath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func pageTitle(page types.Page, brand string) string {
	if t := strings.TrimSpace(page.Title); t != "" {
		return t
	}
	if brand != "" {
		return brand
	}
	return page.Path
}
