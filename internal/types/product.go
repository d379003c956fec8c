// Package types provides type definitions for structured data used throughout the site-compiler system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// UniversalFields are the product fields every site has, possibly null.
type UniversalFields struct {
	Name        string   `json:"name"` // Never empty; falls back to the URL
	URL         string   `json:"url"`
	Price       *string  `json:"price"`
	Images      []string `json:"images"`
	Description *string  `json:"description"`
}

// DiscoveredAttributes are fields whose presence and shape vary by site.
type DiscoveredAttributes struct {
	SKU          *string           `json:"sku"`
	Brand        *string           `json:"brand"`
	Availability *string           `json:"availability"`
	Content      *string           `json:"content"`
	Category     *string           `json:"category,omitempty"`
	Features     []string          `json:"features"`
	Specs        map[string]string `json:"specs"`
}

// IsEmpty reports whether no attribute was discovered at all.
func (a *DiscoveredAttributes) IsEmpty() bool {
	if a == nil {
		return true
	}
	return a.SKU == nil &&
		a.Brand == nil &&
		a.Availability == nil &&
		a.Content == nil &&
		a.Category == nil &&
		len(a.Features) == 0 &&
		len(a.Specs) == 0
}

// NormalizedProduct is a RawProduct after alias resolution. One per crawled URL.
type NormalizedProduct struct {
	Universal  UniversalFields      `json:"universal"`
	Attributes DiscoveredAttributes `json:"attributes"`
}

// Variant is the thin projection of a non-canonical group member.
type Variant struct {
	URL   string   `json:"url"`
	Price *float64 `json:"price"`
	SKU   string   `json:"sku,omitempty"`
}

// ProductCatalogEntry is the deduplicated, externally visible product record.
// Attributes is nil (and omitted from JSON) when nothing was discovered.
type ProductCatalogEntry struct {
	Name        string                `json:"name"`
	URL         string                `json:"url"`
	Price       *float64              `json:"price"`
	Description *string               `json:"description"`
	Images      []string              `json:"images"`
	RawContent  *string               `json:"rawContent,omitempty"`
	Attributes  *DiscoveredAttributes `json:"attributes,omitempty"`
	Variants    []Variant             `json:"variants,omitempty"`
}

// ProductGraph is the product.graph.json artifact.
type ProductGraph struct {
	Products   []ProductCatalogEntry `json:"products"`
	Categories []string              `json:"categories"`
	Brands     []string              `json:"brands"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
