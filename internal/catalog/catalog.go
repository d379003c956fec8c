// Package catalog holds the deduplicated product catalog as an immutable value.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/site-compiler/internal/types"
)

// Catalog is a read-only view over catalog entries. Entries are deep-copied on
// the way in and on the way out, so nothing shares memory with the catalog.
type Catalog struct {
	path       string
	entries    []types.ProductCatalogEntry
	byURL      map[string]int
	byName     map[string]int
	categories []string
	brands     []string
}

// New builds a Catalog from entries in the given order.
func New(entries []types.ProductCatalogEntry) *Catalog {
	c := &Catalog{
		entries: cloneEntries(entries),
		byURL:   make(map[string]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	categories := newFirstSeen()
	brands := newFirstSeen()

	for i, e := range c.entries {
		if _, ok := c.byURL[e.URL]; !ok {
			c.byURL[e.URL] = i
		}
		for _, v := range e.Variants {
			if _, ok := c.byURL[v.URL]; !ok {
				c.byURL[v.URL] = i
			}
		}
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if _, ok := c.byName[name]; !ok && name != "" {
			c.byName[name] = i
		}
		if e.Attributes != nil {
			categories.add(types.Deref(e.Attributes.Category))
			brands.add(types.Deref(e.Attributes.Brand))
		}
	}
	c.categories = categories.items
	c.brands = brands.items
	return c
}

// Load reads a product.graph.json file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read product graph: %w", err)
	}
	var graph types.ProductGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("failed to parse product graph %s: %w", path, err)
	}
	c := New(graph.Products)
	c.path = path
	return c, nil
}

// Reload returns a fresh Catalog read from the file this one was loaded from.
// The receiver is unchanged.
func (c *Catalog) Reload() (*Catalog, error) {
	if c.path == "" {
		return nil, fmt.Errorf("catalog was not loaded from a file")
	}
	return Load(c.path)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []types.ProductCatalogEntry {
	return cloneEntries(c.entries)
}

// ByURL finds the entry whose canonical or variant URL is u.
func (c *Catalog) ByURL(u string) (types.ProductCatalogEntry, bool) {
	i, ok := c.byURL[u]
	if !ok {
		return types.ProductCatalogEntry{}, false
	}
	return cloneEntry(c.entries[i]), true
}

// ByName finds an entry by case-insensitive name.
func (c *Catalog) ByName(name string) (types.ProductCatalogEntry, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return types.ProductCatalogEntry{}, false
	}
	return cloneEntry(c.entries[i]), true
}

// Categories returns distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	return append([]string{}, c.categories...)
}

// Brands returns distinct brands in first-seen order.
func (c *Catalog) Brands() []string {
	return append([]string{}, c.brands...)
}

// Graph returns the product.graph.json form of the catalog.
func (c *Catalog) Graph() types.ProductGraph {
	return types.ProductGraph{
		Products:   c.Entries(),
		Categories: c.Categories(),
		Brands:     c.Brands(),
	}
}

func cloneEntries(entries []types.ProductCatalogEntry) []types.ProductCatalogEntry {
	out := make([]types.ProductCatalogEntry, len(entries))
	for i, e := range entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// cloneEntry copies every slice, map and pointer an entry holds.
func cloneEntry(e types.ProductCatalogEntry) types.ProductCatalogEntry {
	e.Price = clonePtr(e.Price)
	e.Description = clonePtr(e.Description)
	e.RawContent = clonePtr(e.RawContent)
	if e.Images != nil {
		e.Images = append([]string{}, e.Images...)
	}
	if e.Variants != nil {
		variants := make([]types.Variant, len(e.Variants))
		for i, v := range e.Variants {
			v.Price = clonePtr(v.Price)
			variants[i] = v
		}
		e.Variants = variants
	}
	if e.Attributes != nil {
		a := *e.Attributes
		a.SKU = clonePtr(a.SKU)
		a.Brand = clonePtr(a.Brand)
		a.Availability = clonePtr(a.Availability)
		a.Content = clonePtr(a.Content)
		a.Category = clonePtr(a.Category)
		if a.Features != nil {
			a.Features = append([]string{}, a.Features...)
		}
		if a.Specs != nil {
			specs := make(map[string]string, len(a.Specs))
			for k, v := range a.Specs {
				specs[k] = v
			}
			a.Specs = specs
		}
		e.Attributes = &a
	}
	return e
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// firstSeen keeps distinct non-empty values with case-insensitive identity.
type firstSeen struct {
	seen  map[string]bool
	items []string
}

func newFirstSeen() *firstSeen {
	return &firstSeen{seen: make(map[string]bool)}
}

func (f *firstSeen) add(v string) {
	v = strings.TrimSpace(v)
	key := strings.ToLower(v)
	if v == "" || f.seen[key] {
		return
	}
	f.seen[key] = true
	f.items = append(f.items, v)
}
