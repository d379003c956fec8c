// Package dedupe collapses near-duplicate products into canonical catalog entries
// with variant lists.
package dedupe

import (
	"strings"

	"github.com/jonathan/site-compiler/internal/types"
)

// Options tunes grouping.
type Options struct {
	// Exclude lists product names whose pack and count variants must stay
	// separate entries. Entries are compared by canonical name.
	Exclude []string
}

// Key returns the grouping key of a product: canonical name and lowercased
// brand. Names in excluded keep their pack and count suffixes.
func Key(p types.NormalizedProduct, excluded map[string]bool) string {
	name := CanonicalName(p.Universal.Name)
	if excluded[name] {
		name = foldName(p.Universal.Name)
	}
	return name + "|" + strings.ToLower(strings.TrimSpace(types.Deref(p.Attributes.Brand)))
}

// Products groups products by Key. The first member of a group in input order
// is canonical; the rest become variants. Products repeating an earlier URL are
// dropped first. Output order is the order in which groups first appear.
func Products(products []types.NormalizedProduct, opts Options) []types.ProductCatalogEntry {
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		if c := CanonicalName(name); c != "" {
			excluded[c] = true
		}
	}

	var order []string
	groups := make(map[string][]types.NormalizedProduct)
	seenURL := make(map[string]bool)

	for _, p := range products {
		if seenURL[p.Universal.URL] {
			continue
		}
		seenURL[p.Universal.URL] = true

		key := Key(p, excluded)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	entries := make([]types.ProductCatalogEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, entryFor(groups[key]))
	}
	return entries
}

func entryFor(group []types.NormalizedProduct) types.ProductCatalogEntry {
	head := group[0]
	entry := types.ProductCatalogEntry{
		Name:        head.Universal.Name,
		URL:         head.Universal.URL,
		Price:       ParsePrice(head.Universal.Price),
		Description: head.Universal.Description,
		Images:      head.Universal.Images,
		RawContent:  head.Attributes.Content,
	}
	if entry.Images == nil {
		entry.Images = []string{}
	}
	if !head.Attributes.IsEmpty() {
		attrs := head.Attributes
		entry.Attributes = &attrs
	}

	for _, member := range group[1:] {
		entry.Variants = append(entry.Variants, types.Variant{
			URL:   member.Universal.URL,
			Price: ParsePrice(member.Universal.Price),
			SKU:   types.Deref(member.Attributes.SKU),
		})
	}
	return entry
}

// VariantCount returns the total number of variants across entries.
func VariantCount(entries []types.ProductCatalogEntry) int {
	n := 0
	for _, e := range entries {
		n += len(e.Variants)
	}
	return n
}
