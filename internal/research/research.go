// Package research binds externally supplied product facts and value
// propositions to catalog entries without modifying the entries.
package research

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jonathan/site-compiler/internal/catalog"
	"github.com/jonathan/site-compiler/internal/types"
)

// Load reads the optional research inputs. An empty path or a missing file
// yields nil for that input; a present but malformed file is an error.
func Load(bundlePath, valuePath string) (*types.ResearchBundle, *types.ValueModel, error) {
	var bundle *types.ResearchBundle
	var model *types.ValueModel

	if err := readOptional(bundlePath, &bundle); err != nil {
		return nil, nil, fmt.Errorf("failed to load research bundle: %w", err)
	}
	if err := readOptional(valuePath, &model); err != nil {
		return nil, nil, fmt.Errorf("failed to load value model: %w", err)
	}
	return bundle, model, nil
}

func readOptional[T any](path string, dst **T) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	*dst = v
	return nil
}

// Attach binds each fact to a catalog entry, by product URL first and by
// case-insensitive product name second. Facts that bind to nothing are counted
// in Unmatched. Value propositions keep only product URLs the catalog knows,
// rewritten to the canonical entry URL. Returns nil when both inputs are nil.
func Attach(cat *catalog.Catalog, bundle *types.ResearchBundle, model *types.ValueModel) *types.ResearchAttachment {
	if bundle == nil && model == nil {
		return nil
	}
	att := &types.ResearchAttachment{Facts: make(map[string][]types.ResearchFact)}

	if bundle != nil {
		for _, fact := range bundle.Facts {
			entry, ok := bind(cat, fact)
			if !ok {
				att.Unmatched++
				continue
			}
			att.Facts[entry.URL] = append(att.Facts[entry.URL], fact)
		}
	}

	if model != nil {
		for _, prop := range model.Propositions {
			bound := prop
			bound.ProductURLs = nil
			seen := make(map[string]bool)
			for _, u := range prop.ProductURLs {
				entry, ok := cat.ByURL(u)
				if !ok || seen[entry.URL] {
					continue
				}
				seen[entry.URL] = true
				bound.ProductURLs = append(bound.ProductURLs, entry.URL)
			}
			att.ValueProps = append(att.ValueProps, bound)
		}
	}
	return att
}

func bind(cat *catalog.Catalog, fact types.ResearchFact) (types.ProductCatalogEntry, bool) {
	if fact.ProductURL != "" {
		if entry, ok := cat.ByURL(fact.ProductURL); ok {
			return entry, true
		}
	}
	if fact.ProductName != "" {
		return cat.ByName(fact.ProductName)
	}
	return types.ProductCatalogEntry{}, false
}
