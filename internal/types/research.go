// Package types provides type definitions for structured data used throughout the site-compiler system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ResearchFact is one externally supplied fact about a product.
// It binds by ProductURL first, then by ProductName.
type ResearchFact struct {
	ProductURL  string `json:"productUrl,omitempty"`
	ProductName string `json:"productName,omitempty"`
	Key         string `json:"key"`
	Value       string `json:"value"`
	Source      string `json:"source,omitempty"`
}

// ResearchBundle is the research.bundle.json input.
type ResearchBundle struct {
	Facts []ResearchFact `json:"facts"`
}

// ValueProposition is a selling point tied to zero or more products.
type ValueProposition struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ProductURLs []string `json:"productUrls,omitempty"`
}

// ValueModel is the value.model.json input.
type ValueModel struct {
	Propositions []ValueProposition `json:"propositions"`
}

// ResearchAttachment is the bound result of the research stage.
type ResearchAttachment struct {
	Facts      map[string][]ResearchFact `json:"facts"` // Keyed by canonical product URL
	ValueProps []ValueProposition        `json:"valueProps,omitempty"`
	Unmatched  int                       `json:"unmatched"`
}

// FactCount returns the number of bound facts.
func (r *ResearchAttachment) FactCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, facts := range r.Facts {
		n += len(facts)
	}
	return n
}
