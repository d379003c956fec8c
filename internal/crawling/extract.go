package crawling

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageLinks holds the same-origin links found on one page.
type PageLinks struct {
	Links []string // every a[href], document order, deduplicated
	Next  []string // rel="next" pagination targets
}

// ExtractLinks extracts all same-origin links from HTML content
func ExtractLinks(htmlContent string, baseURL string) (*PageLinks, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse base URL",
			Cause:   err,
		}
	}

	if base.Scheme == "" || base.Host == "" {
		return nil, &LinkExtractionError{
			Message: fmt.Sprintf("invalid base URL: %s (must have scheme and host)", baseURL),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	// <base href> changes how relative links resolve
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(b)
		}
	}

	result := &PageLinks{Links: make([]string, 0)}
	linkSet := make(map[string]bool)
	nextSet := make(map[string]bool)

	resolve := func(href string) (string, bool) {
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || hasIgnoredScheme(href) {
			return "", false
		}
		linkURL, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		absoluteURL := base.ResolveReference(linkURL)
		if absoluteURL.Scheme != "http" && absoluteURL.Scheme != "https" {
			return "", false
		}
		if !SameOrigin(absoluteURL, base) {
			return "", false
		}
		return frontierKey(absoluteURL.String()), true
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, ok := resolve(href)
		if !ok {
			return
		}
		if !linkSet[link] {
			linkSet[link] = true
			result.Links = append(result.Links, link)
		}
		if relContains(s, "next") && !nextSet[link] {
			nextSet[link] = true
			result.Next = append(result.Next, link)
		}
	})

	doc.Find("link[rel][href]").Each(func(_ int, s *goquery.Selection) {
		if !relContains(s, "next") {
			return
		}
		href, _ := s.Attr("href")
		if link, ok := resolve(href); ok && !nextSet[link] {
			nextSet[link] = true
			result.Next = append(result.Next, link)
		}
	})

	return result, nil
}

func relContains(s *goquery.Selection, value string) bool {
	rel, ok := s.Attr("rel")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == value {
			return true
		}
	}
	return false
}

func hasIgnoredScheme(href string) bool {
	lower := strings.ToLower(href)
	for _, prefix := range []string{"mailto:", "tel:", "javascript:", "data:", "sms:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
