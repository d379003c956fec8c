// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jonathan/site-compiler/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Widths are
// measured in terminal cells, so wide product names keep the border aligned.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", runewidth.FillRight(runewidth.Truncate(title, inner, "..."), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = runewidth.Truncate(line, inner, "...")
		fmt.Fprintf(p.out, "│ %s │\n", runewidth.FillRight(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// FormatStats renders extraction counts as success/skipped/failed.
func FormatStats(stats types.ExtractionStats) string {
	return fmt.Sprintf("%d/%d/%d (success/skipped/failed)", stats.Success, stats.Skipped, stats.Failed)
}

// PrintDiscovery outputs the crawl result.
func (p *Printer) PrintDiscovery(c *types.Candidates) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Root:        %s\n", c.Root))
	sb.WriteString(fmt.Sprintf("Store type:  %s\n", c.StoreType))
	sb.WriteString(fmt.Sprintf("Listings:    %d visited, %d failed\n", len(c.Visited), c.FailedListings))
	sb.WriteString(fmt.Sprintf("Candidates:  %d\n", len(c.Products)))

	if len(c.Products) > 0 {
		sb.WriteString("\n")
		count := min(len(c.Products), maxItemsToShow)
		for _, u := range c.Products[:count] {
			sb.WriteString(fmt.Sprintf("  • %s\n", u))
		}
		if len(c.Products) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(c.Products)-maxItemsToShow))
		}
	}

	p.printBox("DISCOVERED PRODUCT URLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExtraction outputs extraction counts.
func (p *Printer) PrintExtraction(snapshot *types.SiteSnapshot) {
	if snapshot == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates:  %d\n", snapshot.Candidates))
	sb.WriteString(fmt.Sprintf("Extracted:   %s\n", FormatStats(snapshot.Stats)))
	sb.WriteString(fmt.Sprintf("Pages:       %d", len(snapshot.Pages)))

	p.printBox("EXTRACTION", sb.String())
}

// PrintCatalog outputs the first catalog entries with prices and variant counts.
func (p *Printer) PrintCatalog(graph *types.ProductGraph) {
	if graph == nil || len(graph.Products) == 0 {
		return
	}

	variants := 0
	for _, e := range graph.Products {
		variants += len(e.Variants)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Products: %d (%d variants)\n", len(graph.Products), variants))
	if len(graph.Categories) > 0 {
		sb.WriteString(fmt.Sprintf("Categories: %s\n", strings.Join(graph.Categories, ", ")))
	}
	if len(graph.Brands) > 0 {
		sb.WriteString(fmt.Sprintf("Brands: %s\n", strings.Join(graph.Brands, ", ")))
	}
	sb.WriteString("\n")

	count := min(len(graph.Products), maxItemsToShow)
	for i, e := range graph.Products[:count] {
		price := "n/a"
		if e.Price != nil {
			price = fmt.Sprintf("%.2f", *e.Price)
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, e.Name))
		sb.WriteString(fmt.Sprintf("    Price: %s", price))
		if len(e.Variants) > 0 {
			sb.WriteString(fmt.Sprintf("  Variants: %d", len(e.Variants)))
		}
		sb.WriteString("\n")
	}
	if len(graph.Products) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(graph.Products)-maxItemsToShow))
	}

	p.printBox("PRODUCT CATALOG", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSchema outputs each compiled page with its block types.
func (p *Printer) PrintSchema(schema *types.SiteSchema) {
	if schema == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Domain: %s  Pages: %d  Products: %d\n", schema.Domain, schema.Meta.PageCount, schema.Meta.ProductCount))
	if schema.Meta.Derived {
		sb.WriteString("Pages derived from navigation\n")
	}
	if schema.Meta.ResearchFacts > 0 {
		sb.WriteString(fmt.Sprintf("Research facts: %d\n", schema.Meta.ResearchFacts))
	}

	for _, page := range schema.Pages {
		kinds := make([]string, 0, len(page.Sections))
		for _, b := range page.Sections {
			kinds = append(kinds, string(b.Type))
		}
		sb.WriteString(fmt.Sprintf("\n%s (%d blocks)\n", page.Path, len(page.Sections)))
		sb.WriteString(fmt.Sprintf("  %s\n", strings.Join(kinds, " → ")))
	}

	p.printBox("SITE SCHEMA", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs the final run report.
func (p *Printer) PrintReport(r *types.Report) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Brand:      %s\n", r.Brand))
	sb.WriteString(fmt.Sprintf("Domain:     %s\n", r.Domain))
	sb.WriteString(fmt.Sprintf("Products:   %d (%d variants)\n", r.ProductsCount, r.VariantsCount))
	sb.WriteString(fmt.Sprintf("Candidates: %d\n", r.CandidatesCount))
	sb.WriteString(fmt.Sprintf("Extracted:  %s", FormatStats(r.Stats)))

	p.printBox("RUN REPORT", sb.String())
}
