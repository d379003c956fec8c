// Package pages snapshots non-product pages (homepage, about, contact) into
// ordered content sections, navigation entries and media for the schema compiler.
package pages

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/site-compiler/internal/types"
)

// SnapshotError represents a failure to parse a page.
type SnapshotError struct {
	URL   string
	Cause error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot error for %s: %v", e.URL, e.Cause)
}

func (e *SnapshotError) Unwrap() error {
	return e.Cause
}

// Snapshot parses page HTML into a PageSnapshot.
func Snapshot(pageHTML, pageURL string) (*types.PageSnapshot, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, &SnapshotError{URL: pageURL, Cause: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, &SnapshotError{URL: pageURL, Cause: err}
	}
	doc.Find("script, style, noscript, template").Remove()

	path := base.Path
	if path == "" {
		path = "/"
	}

	snap := &types.PageSnapshot{
		URL:      pageURL,
		Path:     path,
		Title:    collapse(doc.Find("title").First().Text()),
		SiteName: siteName(doc),
		Sections: make([]types.ContentSection, 0),
	}

	snap.Nav = navEntries(doc, base)

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	content := body.Clone()
	content.Find("nav, header, footer, [role='navigation']").Remove()

	media := newOrderedSet()
	walk(content, base, snap, media)
	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		if abs := resolve(base, og); abs != "" {
			media.add(abs)
		}
	}
	snap.Media = media.items

	return snap, nil
}

// walk emits sections in document order. Matched elements are not descended
// into, so a list's paragraphs are not repeated as text sections.
func walk(sel *goquery.Selection, base *url.URL, snap *types.PageSnapshot, media *orderedSet) {
	sel.Children().Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		switch tag {
		case "h1", "h2", "h3", "h4":
			if text := collapse(s.Text()); text != "" {
				snap.Sections = append(snap.Sections, types.ContentSection{
					Type:  types.SectionHeading,
					Text:  text,
					Level: int(tag[1] - '0'),
				})
			}
		case "p":
			if text := collapse(s.Text()); text != "" {
				snap.Sections = append(snap.Sections, types.ContentSection{Type: types.SectionText, Text: text})
			}
			s.Find("img").Each(func(_ int, img *goquery.Selection) {
				addImage(img, base, snap, media)
			})
		case "img":
			addImage(s, base, snap, media)
		case "ul", "ol":
			var items []string
			s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				if text := collapse(li.Text()); text != "" {
					items = append(items, text)
				}
			})
			if len(items) > 0 {
				snap.Sections = append(snap.Sections, types.ContentSection{Type: types.SectionList, Items: items})
			}
		case "blockquote":
			if text := collapse(s.Text()); text != "" {
				snap.Sections = append(snap.Sections, types.ContentSection{Type: types.SectionQuote, Text: text})
			}
		case "iframe", "video":
			if markup, err := goquery.OuterHtml(s); err == nil {
				snap.Sections = append(snap.Sections, types.ContentSection{Type: types.SectionHTML, HTML: markup})
			}
		default:
			walk(s, base, snap, media)
		}
	})
}

func addImage(img *goquery.Selection, base *url.URL, snap *types.PageSnapshot, media *orderedSet) {
	src, _ := img.Attr("src")
	if src == "" || strings.HasPrefix(src, "data:") {
		src, _ = img.Attr("data-src")
	}
	abs := resolve(base, src)
	if abs == "" {
		return
	}
	alt, _ := img.Attr("alt")
	snap.Sections = append(snap.Sections, types.ContentSection{Type: types.SectionImage, Src: abs, Alt: collapse(alt)})
	media.add(abs)
}

func navEntries(doc *goquery.Document, base *url.URL) []types.NavEntry {
	seen := make(map[string]bool)
	var entries []types.NavEntry
	doc.Find("nav a[href], header a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := resolve(base, href)
		if abs == "" || seen[abs] {
			return
		}
		label := collapse(a.Text())
		if label == "" {
			label = collapse(a.AttrOr("aria-label", ""))
		}
		if label == "" {
			label = collapse(a.Find("img[alt]").First().AttrOr("alt", ""))
		}
		if label == "" {
			return
		}
		seen[abs] = true
		parsed, _ := url.Parse(abs)
		entries = append(entries, types.NavEntry{
			Label:    label,
			URL:      abs,
			External: parsed != nil && !strings.EqualFold(parsed.Hostname(), base.Hostname()),
		})
	})
	return entries
}

func siteName(doc *goquery.Document) string {
	if name, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		if name = collapse(name); name != "" {
			return name
		}
	}
	if name, ok := doc.Find(`meta[name="application-name"]`).Attr("content"); ok {
		return collapse(name)
	}
	return ""
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "data:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (o *orderedSet) add(v string) {
	if !o.seen[v] {
		o.seen[v] = true
		o.items = append(o.items, v)
	}
}
