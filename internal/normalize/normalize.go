// Package normalize maps raw extractor output onto the fixed universal/attributes
// product shape. Every function here is pure and total.
package normalize

import (
	"sort"
	"strings"

	"github.com/jonathan/site-compiler/internal/types"
)

// Spec labels consulted when a field was not found directly on the page.
var (
	brandSpecKeys        = []string{"Brand", "Manufacturer", "Make"}
	availabilitySpecKeys = []string{"Availability", "Stock", "In Stock"}
	categorySpecKeys     = []string{"Category", "Product Type"}
)

// Product normalizes one RawProduct. Name falls back to the URL so it is never
// empty; blank strings become nil.
func Product(raw types.RawProduct) types.NormalizedProduct {
	urlStr := strings.TrimSpace(raw.URL)
	specs := raw.Specs.Map()

	name := firstNonBlank(raw.Name, raw.ProductName, raw.Title)
	if name == "" {
		name = urlStr
	}

	return types.NormalizedProduct{
		Universal: types.UniversalFields{
			Name:        name,
			URL:         urlStr,
			Price:       optional(raw.Price),
			Images:      nonBlank(raw.Images),
			Description: optional(raw.Description),
		},
		Attributes: types.DiscoveredAttributes{
			SKU:          optional(firstNonBlank(raw.SKU, raw.ItemNumber, raw.ProductNumber, raw.ModelNumber)),
			Brand:        optional(firstNonBlank(raw.Brand, specValue(raw.Specs, brandSpecKeys))),
			Availability: optional(firstNonBlank(raw.Availability, specValue(raw.Specs, availabilitySpecKeys))),
			Content:      optional(raw.Content),
			Category:     optional(firstNonBlank(raw.Category, specValue(raw.Specs, categorySpecKeys))),
			Features:     nonBlank(raw.Features),
			Specs:        specs,
		},
	}
}

// Products normalizes a slice, keeping order.
func Products(raws []types.RawProduct) []types.NormalizedProduct {
	out := make([]types.NormalizedProduct, len(raws))
	for i, raw := range raws {
		out[i] = Product(raw)
	}
	return out
}

// ToRaw projects a normalized product back onto RawProduct. Product(ToRaw(p)) == p
// for any p returned by Product.
func ToRaw(p types.NormalizedProduct) types.RawProduct {
	raw := types.RawProduct{
		URL:          p.Universal.URL,
		Name:         p.Universal.Name,
		Price:        types.Deref(p.Universal.Price),
		Description:  types.Deref(p.Universal.Description),
		Images:       p.Universal.Images,
		SKU:          types.Deref(p.Attributes.SKU),
		Brand:        types.Deref(p.Attributes.Brand),
		Availability: types.Deref(p.Attributes.Availability),
		Category:     types.Deref(p.Attributes.Category),
		Features:     p.Attributes.Features,
		Content:      types.Deref(p.Attributes.Content),
	}

	keys := make([]string, 0, len(p.Attributes.Specs))
	for k := range p.Attributes.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw.Specs, _ = raw.Specs.Add(k, p.Attributes.Specs[k])
	}
	return raw
}

// Renormalize runs an already normalized product through Product again.
func Renormalize(p types.NormalizedProduct) types.NormalizedProduct {
	return Product(ToRaw(p))
}

func specValue(specs types.Specs, keys []string) string {
	for _, k := range keys {
		if v, ok := specs.Get(k); ok {
			return v
		}
	}
	return ""
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
