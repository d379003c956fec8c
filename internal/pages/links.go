package pages

import (
	"net/url"
	"sort"

	"github.com/jonathan/site-compiler/internal/crawling"
	"github.com/jonathan/site-compiler/internal/types"
)

// ContentLinks picks up to limit same-origin nav targets worth snapshotting:
// pages that are neither product details nor listings, and not the homepage.
// Higher PathPriority comes first; ties keep nav order.
func ContentLinks(nav []types.NavEntry, limit int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, entry := range nav {
		if entry.External {
			continue
		}
		u, err := url.Parse(entry.URL)
		if err != nil || u.Path == "" || u.Path == "/" {
			continue
		}
		if crawling.IsDetailURL(u) || crawling.IsListingURL(u) {
			continue
		}
		stripped := crawling.StripURL(entry.URL)
		if seen[stripped] || PathPriority(stripped) == PrioritySkip {
			continue
		}
		seen[stripped] = true
		out = append(out, stripped)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return PathPriority(out[i]) > PathPriority(out[j])
	})
	if len(out) > limit {
		out = out[:max(limit, 0)]
	}
	return out
}

// ToPage converts a snapshot to the compiler's page shape.
func ToPage(snap types.PageSnapshot) types.Page {
	sections := snap.Sections
	if sections == nil {
		sections = []types.ContentSection{}
	}
	return types.Page{Path: snap.Path, Title: snap.Title, Sections: sections}
}
