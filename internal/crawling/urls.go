package crawling

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// NormalizeSiteURL turns user input into an absolute root URL. Bare domains get
// an explicit https:// scheme.
func NormalizeSiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &CrawlError{Message: "empty site URL"}
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", &CrawlError{Message: fmt.Sprintf("invalid site URL %q", raw), Cause: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &CrawlError{Message: fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
	}
	if parsed.Hostname() == "" {
		return "", &CrawlError{Message: fmt.Sprintf("site URL %q has no host", raw)}
	}

	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	return parsed.String(), nil
}

// StripURL removes the query string and fragment. StripURL(StripURL(u)) == StripURL(u).
func StripURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		u, _, _ = strings.Cut(u, "#")
		u, _, _ = strings.Cut(u, "?")
		return u
	}
	parsed.RawQuery = ""
	parsed.ForceQuery = false
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}

// SiteKey derives the artifact directory name for a site: the hostname without
// a leading "www." and with dots replaced by dashes.
func SiteKey(rootURL string) (string, error) {
	normalized, err := NormalizeSiteURL(rootURL)
	if err != nil {
		return "", err
	}
	parsed, err := url.Parse(normalized)
	if err != nil {
		return "", &CrawlError{Message: "invalid site URL", Cause: err}
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	return strings.ReplaceAll(host, ".", "-"), nil
}

// Domain returns the lowercase hostname of u without a leading "www.".
func Domain(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// SameOrigin reports whether u is on the same host as base.
func SameOrigin(u, base *url.URL) bool {
	return strings.EqualFold(u.Hostname(), base.Hostname())
}

// IsDetailURL reports whether the path has a /product/<x> or /products/<x> segment.
func IsDetailURL(u *url.URL) bool {
	segments := pathSegments(u.Path)
	for i := 0; i < len(segments)-1; i++ {
		s := strings.ToLower(segments[i])
		if (s == "product" || s == "products") && segments[i+1] != "" {
			return true
		}
	}
	return false
}

var (
	pagePathPattern  = regexp.MustCompile(`(?i)/page/\d+/?$`)
	pageQueryPattern = regexp.MustCompile(`^\d+$`)
)

// IsListingURL reports whether u looks like a page that lists products:
// /collections/*, /shop*, /products* (without a product handle) or a
// pagination marker.
func IsListingURL(u *url.URL) bool {
	if IsDetailURL(u) {
		return false
	}
	path := strings.ToLower(u.Path)
	switch {
	case path == "/collections" || strings.HasPrefix(path, "/collections/"):
		return true
	case strings.HasPrefix(path, "/shop"):
		return true
	case strings.HasPrefix(path, "/products"):
		return true
	case pagePathPattern.MatchString(path):
		return true
	case pageQueryPattern.MatchString(u.Query().Get("page")):
		return true
	}
	return false
}

// frontierKey is the identity used for the visited set: no fragment and no
// trailing slash except on the root path.
func frontierKey(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.Host = strings.ToLower(parsed.Host)
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
		parsed.RawPath = ""
	}
	return parsed.String()
}

func pathSegments(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}
