package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/site-compiler/internal/types"
)

var nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug returns the id prefix for a page path. "/" is "home".
func Slug(path string) string {
	if normalizePath(path) == HomePath {
		return "home"
	}
	slug := strings.Trim(nonSlugPattern.ReplaceAllString(strings.ToLower(path), "-"), "-")
	if slug == "" {
		return "page"
	}
	return slug
}

// BlockID formats the positional id of a block.
func BlockID(slug string, index int, t types.BlockType) string {
	return fmt.Sprintf("%s-%d-%s", slug, index, t)
}

// assignIDs sets page and block ids. An id from prior is kept when the block at
// the same index has the same type.
func assignIDs(page *types.SitePage, prior *types.SitePage) {
	slug := Slug(page.Path)
	page.ID = slug
	if prior != nil && prior.ID != "" {
		page.ID = prior.ID
	}

	used := make(map[string]bool, len(page.Sections))
	for i := range page.Sections {
		block := &page.Sections[i]
		id := BlockID(slug, i, block.Type)
		if prior != nil && i < len(prior.Sections) && prior.Sections[i].Type == block.Type && prior.Sections[i].ID != "" {
			id = prior.Sections[i].ID
		}
		// A reused id may collide with a positional one
		for n := 1; used[id]; n++ {
			id = fmt.Sprintf("%s-%d", BlockID(slug, i, block.Type), n)
		}
		used[id] = true
		block.ID = id
	}
}
