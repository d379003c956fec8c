package compiler

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/site-compiler/internal/catalog"
	"github.com/jonathan/site-compiler/internal/types"
)

// Classification thresholds.
const (
	HeroMinHeadingRunes = 20 // a heading longer than this may become the hero
	NavLeakWindow       = 10 // short nav-like headings are dropped only this early
	ShortHeadingRunes   = 20
	GridFallbackSize    = 8
	minProductNameRunes = 4
)

// navWords are headings that are usually navigation labels leaking into content.
var navWords = map[string]bool{
	"home": true, "shop": true, "shop all": true, "products": true, "collections": true,
	"categories": true, "menu": true, "cart": true, "my cart": true, "account": true,
	"my account": true, "login": true, "log in": true, "sign in": true, "search": true,
	"contact": true, "contact us": true, "about": true, "about us": true, "blog": true,
	"sale": true, "new": true, "new arrivals": true, "brands": true, "guitars": true,
	"amps": true, "parts": true, "accessories": true, "gear": true, "help": true,
	"faq": true, "wishlist": true, "skip to content": true, "close": true,
}

var productWordPattern = regexp.MustCompile(`(?i)\b(?:products?|shop(?:ping)?|buy|items?|catalog(?:ue)?|featured|collections?)\b`)

// compilation holds per-compile lookups.
type compilation struct {
	site     *types.NormalizedSite
	cat      *catalog.Catalog
	products []types.ProductCatalogEntry
	navLabel map[string]bool
}

func newCompilation(site *types.NormalizedSite, cat *catalog.Catalog) *compilation {
	c := &compilation{
		site:     site,
		cat:      cat,
		products: cat.Entries(),
		navLabel: make(map[string]bool, len(site.Nav)),
	}
	for _, n := range site.Nav {
		c.navLabel[strings.ToLower(strings.TrimSpace(n.Label))] = true
	}
	return c
}

// classify maps a page's sections to blocks in order.
func (c *compilation) classify(page types.Page) []types.LayoutBlock {
	blocks := make([]types.LayoutBlock, 0, len(page.Sections))
	heroDone := false

	for i, s := range page.Sections {
		switch s.Type {
		case types.SectionHeading:
			text := strings.TrimSpace(s.Text)
			switch {
			case text == "":
				continue
			case !heroDone && utf8.RuneCountInString(text) > HeroMinHeadingRunes:
				heroDone = true
				blocks = append(blocks, types.NewBlock(&types.HeroContent{Heading: text}))
			case i < NavLeakWindow && c.isNavLeak(text):
				continue
			default:
				blocks = append(blocks, c.textOrGrid(text, text, s.Level))
			}
		case types.SectionText:
			if text := strings.TrimSpace(s.Text); text != "" {
				blocks = append(blocks, c.textOrGrid(text, "", 0))
			}
		case types.SectionImage:
			if s.Src != "" {
				blocks = append(blocks, types.NewBlock(&types.ImageContent{Src: s.Src, Alt: s.Alt}))
			}
		case types.SectionList:
			if len(s.Items) == 0 {
				continue
			}
			if grid := c.productGrid(strings.Join(s.Items, "\n"), ""); grid != nil {
				blocks = append(blocks, types.NewBlock(grid))
				continue
			}
			blocks = append(blocks, types.NewBlock(&types.ListContent{Items: s.Items}))
		case types.SectionQuote:
			if text := strings.TrimSpace(s.Text); text != "" {
				blocks = append(blocks, types.NewBlock(&types.QuoteContent{Text: text}))
			}
		case types.SectionHTML:
			if s.HTML != "" {
				blocks = append(blocks, types.NewBlock(&types.HTMLContent{HTML: s.HTML}))
			}
		}
	}
	return blocks
}

// isNavLeak reports whether a short heading looks like a navigation label.
func (c *compilation) isNavLeak(text string) bool {
	if utf8.RuneCountInString(text) > ShortHeadingRunes {
		return false
	}
	key := strings.ToLower(text)
	return navWords[key] || c.navLabel[key]
}

func (c *compilation) textOrGrid(text, title string, level int) types.LayoutBlock {
	if grid := c.productGrid(text, title); grid != nil {
		return types.NewBlock(grid)
	}
	return types.NewBlock(&types.TextContent{Text: text, Level: level})
}

// productGrid returns a grid when text names known products or mentions a
// product keyword. Named products are listed; otherwise the first catalog
// entries are. Returns nil for an empty catalog.
func (c *compilation) productGrid(text, title string) *types.ProductGridContent {
	if len(c.products) == 0 {
		return nil
	}
	named := c.namedProducts(text)
	if len(named) == 0 && !productWordPattern.MatchString(text) {
		return nil
	}
	if len(named) == 0 {
		named = c.products[:min(GridFallbackSize, len(c.products))]
	}
	grid := &types.ProductGridContent{Title: title, Products: make([]types.ProductCard, 0, len(named))}
	for _, p := range named {
		grid.Products = append(grid.Products, card(p))
	}
	return grid
}

// namedProducts returns catalog entries whose name, URL or SKU appears in text.
func (c *compilation) namedProducts(text string) []types.ProductCatalogEntry {
	lower := strings.ToLower(text)
	var named []types.ProductCatalogEntry
	for _, p := range c.products {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		switch {
		case utf8.RuneCountInString(name) >= minProductNameRunes && strings.Contains(lower, name):
		case p.URL != "" && strings.Contains(text, p.URL):
		case p.Attributes != nil && len(types.Deref(p.Attributes.SKU)) >= minProductNameRunes &&
			strings.Contains(lower, strings.ToLower(types.Deref(p.Attributes.SKU))):
		default:
			continue
		}
		named = append(named, p)
	}
	return named
}

func card(p types.ProductCatalogEntry) types.ProductCard {
	c := types.ProductCard{Name: p.Name, URL: p.URL, Price: p.Price}
	if len(p.Images) > 0 {
		c.Image = p.Images[0]
	}
	return c
}

func hasBlock(blocks []types.LayoutBlock, t types.BlockType) bool {
	for _, b := range blocks {
		if b.Type == t {
			return true
		}
	}
	return false
}
