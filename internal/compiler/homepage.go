package compiler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/site-compiler/internal/crawling"
	"github.com/jonathan/site-compiler/internal/types"
)

// Homepage synthesis caps.
const (
	CategoryGridCap    = 12
	FeatureGridCap     = 6
	TrustBarCap        = 4
	ReplaceMaxBlocks   = 3 // an existing homepage this small with no hero or grids is replaced
	shortTextRunes     = 120
	featureTitleRunes  = 60
	gridColumns        = 4
	maxCategoryColumns = 6
)

var (
	actionWordPattern = regexp.MustCompile(`(?i)\b(?:shop|buy|order|browse|book|subscribe|sign up|get started|get a quote|request a quote|contact|call)\b`)
	trustWordPattern  = regexp.MustCompile(`(?i)\b(?:shipping|returns?|warranty|guarantee|secure|support|reviews?)\b`)
)

// enrichHome decides between replacing and patching an existing homepage.
// Counts exclude the nav and footer blocks added by wrap.
func (c *compilation) enrichHome(page types.Page, blocks []types.LayoutBlock) []types.LayoutBlock {
	hasHero := hasBlock(blocks, types.BlockHero)
	hasGrid := hasBlock(blocks, types.BlockProductGrid)

	if !hasHero && !hasGrid && !hasBlock(blocks, types.BlockCategoryGrid) && len(blocks) <= ReplaceMaxBlocks {
		if synthesized := c.synthesizeHome(page); len(synthesized) > 0 {
			return synthesized
		}
		return blocks
	}

	if !hasHero {
		if hero := c.hero(page); hero != nil {
			blocks = append([]types.LayoutBlock{types.NewBlock(hero)}, blocks...)
		}
	}
	if !hasGrid {
		if grid := c.featuredProducts(); grid != nil {
			blocks = append(blocks, gridBlock(grid))
		}
	}
	return blocks
}

// synthesizeHome builds a full homepage layout. Each step is skipped when its
// inputs are absent, so the result may be empty.
func (c *compilation) synthesizeHome(page types.Page) []types.LayoutBlock {
	var blocks []types.LayoutBlock
	if hero := c.hero(page); hero != nil {
		blocks = append(blocks, types.NewBlock(hero))
	}
	if bar := c.trustBar(); bar != nil {
		blocks = append(blocks, types.NewBlock(bar))
	}
	if cats := c.categoryGrid(); cats != nil {
		block := types.NewBlock(cats)
		block.Layout = &types.BlockLayout{Columns: min(maxCategoryColumns, len(cats.Categories))}
		blocks = append(blocks, block)
	}
	if grid := c.featuredProducts(); grid != nil {
		blocks = append(blocks, gridBlock(grid))
	}
	if features := c.featureGrid(page); features != nil {
		blocks = append(blocks, types.NewBlock(features))
	}
	if cta := c.ctaStrip(); cta != nil {
		block := types.NewBlock(cta)
		block.Actions = []types.Action{{Label: cta.Primary.Label, Href: cta.Primary.Href, Kind: "primary"}}
		if cta.Secondary != nil {
			block.Actions = append(block.Actions, types.Action{Label: cta.Secondary.Label, Href: cta.Secondary.Href, Kind: "secondary"})
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func gridBlock(grid *types.ProductGridContent) types.LayoutBlock {
	block := types.NewBlock(grid)
	block.Layout = &types.BlockLayout{Columns: gridColumns}
	return block
}

// hero uses the first heading (or first short text, or the brand) and the first
// image on the page, in the site media, or on a product.
func (c *compilation) hero(page types.Page) *types.HeroContent {
	hero := &types.HeroContent{}
	headingAt := -1

	for i, s := range page.Sections {
		if s.Type == types.SectionHeading && strings.TrimSpace(s.Text) != "" && !c.isNavLeak(strings.TrimSpace(s.Text)) {
			hero.Heading = strings.TrimSpace(s.Text)
			headingAt = i
			break
		}
	}
	if headingAt >= 0 {
		for _, s := range page.Sections[headingAt+1:] {
			if s.Type == types.SectionText && isShort(s.Text, shortTextRunes) {
				hero.Subheading = strings.TrimSpace(s.Text)
				break
			}
		}
	} else {
		for _, s := range page.Sections {
			if s.Type == types.SectionText && isShort(s.Text, shortTextRunes) {
				hero.Heading = strings.TrimSpace(s.Text)
				break
			}
		}
	}
	if hero.Heading == "" {
		hero.Heading = strings.TrimSpace(c.site.Brand)
	}
	if hero.Heading == "" {
		return nil
	}

	for _, s := range page.Sections {
		if s.Type == types.SectionImage && s.Src != "" {
			hero.Image = s.Src
			break
		}
	}
	if hero.Image == "" && len(c.site.Media) > 0 {
		hero.Image = c.site.Media[0]
	}
	if hero.Image == "" {
		for _, p := range c.products {
			if len(p.Images) > 0 {
				hero.Image = p.Images[0]
				break
			}
		}
	}
	return hero
}

// trustBar summarizes catalog size, media count, trust-flavored nav labels and
// value propositions.
func (c *compilation) trustBar() *types.TrustBarContent {
	var items []string
	if n := c.cat.Len(); n > 0 {
		items = append(items, plural(n, "product"))
	}
	if n := len(c.site.Media); n > 0 {
		items = append(items, plural(n, "photo"))
	}
	for _, n := range c.site.Nav {
		if trustWordPattern.MatchString(n.Label) {
			items = append(items, n.Label)
		}
	}
	if c.site.Research != nil {
		for _, vp := range c.site.Research.ValueProps {
			if vp.Title != "" {
				items = append(items, vp.Title)
			}
		}
	}
	if len(items) == 0 {
		return nil
	}
	return &types.TrustBarContent{Items: items[:min(TrustBarCap, len(items))]}
}

// categoryGrid merges collection nav entries, product categories and brands.
// The first label seen for a key wins.
func (c *compilation) categoryGrid() *types.CategoryGridContent {
	grid := &types.CategoryGridContent{}
	seen := make(map[string]bool)
	add := func(label, href string) {
		key := strings.ToLower(strings.TrimSpace(label))
		if key == "" || href == "" || seen[key] || len(grid.Categories) >= CategoryGridCap {
			return
		}
		seen[key] = true
		grid.Categories = append(grid.Categories, types.Link{Label: strings.TrimSpace(label), Href: href})
	}

	for _, n := range c.site.Nav {
		if n.External {
			continue
		}
		if u, err := url.Parse(n.URL); err == nil && u.Path != "" && u.Path != "/" && crawling.IsListingURL(u) {
			add(n.Label, n.URL)
		}
	}
	for _, category := range c.cat.Categories() {
		add(category, c.firstProductWhere(func(a *types.DiscoveredAttributes) string { return types.Deref(a.Category) }, category))
	}
	for _, brand := range c.cat.Brands() {
		add(brand, c.firstProductWhere(func(a *types.DiscoveredAttributes) string { return types.Deref(a.Brand) }, brand))
	}

	if len(grid.Categories) == 0 {
		return nil
	}
	return grid
}

func (c *compilation) firstProductWhere(field func(*types.DiscoveredAttributes) string, value string) string {
	for _, p := range c.products {
		if p.Attributes != nil && strings.EqualFold(strings.TrimSpace(field(p.Attributes)), value) {
			return p.URL
		}
	}
	return ""
}

// featureGrid pairs short headings with the text that follows them, then adds
// short list items and value propositions.
func (c *compilation) featureGrid(page types.Page) *types.FeatureGridContent {
	grid := &types.FeatureGridContent{}
	seen := make(map[string]bool)
	add := func(title, text string) {
		key := strings.ToLower(title)
		if title == "" || seen[key] || len(grid.Features) >= FeatureGridCap {
			return
		}
		seen[key] = true
		grid.Features = append(grid.Features, types.Feature{Title: title, Text: text})
	}

	sections := page.Sections
	for i, s := range sections {
		title := strings.TrimSpace(s.Text)
		if s.Type != types.SectionHeading || !isShort(title, featureTitleRunes) || c.isNavLeak(title) {
			continue
		}
		if i+1 < len(sections) && sections[i+1].Type == types.SectionText {
			add(title, strings.TrimSpace(sections[i+1].Text))
		}
	}
	for _, s := range sections {
		if s.Type != types.SectionList {
			continue
		}
		for _, item := range s.Items {
			if isShort(item, featureTitleRunes) {
				add(strings.TrimSpace(item), "")
			}
		}
	}
	if c.site.Research != nil {
		for _, vp := range c.site.Research.ValueProps {
			add(strings.TrimSpace(vp.Title), vp.Description)
		}
	}

	if len(grid.Features) == 0 {
		return nil
	}
	return grid
}

// ctaStrip picks action-word nav entries, falling back to the first external
// nav link and then the first product.
func (c *compilation) ctaStrip() *types.CTAStripContent {
	var matches []types.Link
	for _, n := range c.site.Nav {
		if actionWordPattern.MatchString(n.Label) {
			matches = append(matches, types.Link{Label: n.Label, Href: n.URL, External: n.External})
			if len(matches) == 2 {
				break
			}
		}
	}
	switch len(matches) {
	case 2:
		return &types.CTAStripContent{Primary: matches[0], Secondary: &matches[1]}
	case 1:
		return &types.CTAStripContent{Primary: matches[0]}
	}

	for _, n := range c.site.Nav {
		if n.External {
			return &types.CTAStripContent{Primary: types.Link{Label: n.Label, Href: n.URL, External: true}}
		}
	}
	if len(c.products) > 0 {
		p := c.products[0]
		return &types.CTAStripContent{Primary: types.Link{Label: p.Name, Href: p.URL}}
	}
	return nil
}

// featuredProducts lists the first catalog entries.
func (c *compilation) featuredProducts() *types.ProductGridContent {
	if len(c.products) == 0 {
		return nil
	}
	grid := &types.ProductGridContent{Products: make([]types.ProductCard, 0, GridFallbackSize)}
	for _, p := range c.products[:min(GridFallbackSize, len(c.products))] {
		grid.Products = append(grid.Products, card(p))
	}
	return grid
}

func isShort(s string, limit int) bool {
	s = strings.TrimSpace(s)
	return s != "" && utf8.RuneCountInString(s) <= limit
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
