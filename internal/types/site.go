// Package types provides type definitions for structured data used throughout the site-compiler system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SectionType is the kind of a scraped content section.
type SectionType string

// Content section kinds, in the order a page snapshot emits them.
const (
	SectionHeading SectionType = "heading"
	SectionText    SectionType = "text"
	SectionImage   SectionType = "image"
	SectionList    SectionType = "list"
	SectionQuote   SectionType = "quote"
	SectionHTML    SectionType = "html"
)

// AllSectionTypes lists every section kind. The schema compiler handles each one.
var AllSectionTypes = []SectionType{
	SectionHeading, SectionText, SectionImage, SectionList, SectionQuote, SectionHTML,
}

// ContentSection is one ordered piece of page content.
type ContentSection struct {
	Type  SectionType `json:"type"`
	Text  string      `json:"text,omitempty"`
	Level int         `json:"level,omitempty"` // Heading level 1-4
	Src   string      `json:"src,omitempty"`
	Alt   string      `json:"alt,omitempty"`
	Items []string    `json:"items,omitempty"`
	HTML  string      `json:"html,omitempty"`
}

// NavEntry is a navigation link found in a page header or nav element.
type NavEntry struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	External bool   `json:"external,omitempty"`
}

// PageSnapshot is the scraped content of one non-product page.
type PageSnapshot struct {
	URL      string           `json:"url"`
	Path     string           `json:"path"`
	Title    string           `json:"title"`
	SiteName string           `json:"siteName,omitempty"`
	Sections []ContentSection `json:"sections"`
	Nav      []NavEntry       `json:"nav,omitempty"`
	Media    []string         `json:"media,omitempty"`
}

// Page is a page as the schema compiler sees it. Derived pages use the same shape.
type Page struct {
	Path     string           `json:"path"`
	Title    string           `json:"title"`
	Sections []ContentSection `json:"sections"`
}

// Candidates is the candidates.json artifact written by the discover stage.
type Candidates struct {
	RunID          string        `json:"runId"`
	Root           string        `json:"root"`
	Domain         string        `json:"domain"`
	StoreType      string        `json:"storeType"`
	Products       []string      `json:"products"` // Discovery order
	Visited        []string      `json:"visited"`
	FailedListings int           `json:"failedListings"`
	Homepage       *PageSnapshot `json:"homepage,omitempty"`
	DiscoveredAt   string        `json:"discoveredAt"` // RFC3339
}

// ProductSnapshot pairs a fetched URL with what was extracted from it.
type ProductSnapshot struct {
	URL     string     `json:"url"`
	Product RawProduct `json:"product"`
}

// ExtractionStats summarizes soft failures of the extract stage.
type ExtractionStats struct {
	Success int `json:"success"`
	Skipped int `json:"skipped"` // Fetched, but no name found
	Failed  int `json:"failed"`  // Fetch or timeout error
}

// SiteSnapshot is the site.snapshot.json artifact.
type SiteSnapshot struct {
	RunID       string            `json:"runId"`
	Domain      string            `json:"domain"`
	StoreType   string            `json:"storeType"`
	Products    []ProductSnapshot `json:"products"`
	Pages       []PageSnapshot    `json:"pages,omitempty"`
	Stats       ExtractionStats   `json:"stats"`
	Candidates  int               `json:"candidates"`
	ExtractedAt string            `json:"extractedAt"` // RFC3339
}

// NormalizedSite is everything the schema compiler needs, written as normalized.json.
type NormalizedSite struct {
	Domain       string                `json:"domain"`
	Brand        string                `json:"brand"`
	StoreType    string                `json:"storeType"`
	Pages        []Page                `json:"pages"`
	Nav          []NavEntry            `json:"nav"`
	Products     []ProductCatalogEntry `json:"products"`
	Media        []string              `json:"media"`
	Categories   []string              `json:"categories"`
	Brands       []string              `json:"brands"`
	DerivedPages []Page                `json:"derivedPages,omitempty"`
	Research     *ResearchAttachment   `json:"research,omitempty"`
}

// Report is the report.final.json summary.
type Report struct {
	RunID           string          `json:"runId"`
	Brand           string          `json:"brand"`
	Domain          string          `json:"domain"`
	ProductsCount   int             `json:"productsCount"`
	VariantsCount   int             `json:"variantsCount"`
	CandidatesCount int             `json:"candidatesCount"`
	Stats           ExtractionStats `json:"stats"`
	GeneratedAt     string          `json:"generatedAt"`
}

// ExportBundle is the consumer-facing output of the build stage.
type ExportBundle struct {
	Schema      SiteSchema            `json:"schema"`
	Products    []ProductCatalogEntry `json:"products"`
	GeneratedAt string                `json:"generatedAt"`
}
