package crawling

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/site-compiler/internal/fetch"
)

// siteFetcher serves canned pages and records every fetched URL.
type siteFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched []string
}

func (s *siteFetcher) Fetch(_ context.Context, u string) (*fetch.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, u)
	html, ok := s.pages[u]
	if !ok {
		return &fetch.Result{URL: u, StatusCode: 404}, &fetch.Error{URL: u, Message: "HTTP status 404", StatusCode: 404}
	}
	return &fetch.Result{URL: u, FinalURL: u, HTML: html, StatusCode: 200}, nil
}

func links(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a href="%s">x</a>`, h)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestDiscover_GenericSite(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://shop.test/":            links("/shop", "/about", "/products/a?variant=1", "https://other.test/products/z"),
		"https://shop.test/shop":        links("/products/a", "/products/b#reviews", "/shop?page=2"),
		"https://shop.test/shop?page=2": links("/products/c", "/shop"),
	}}

	d, err := NewCrawler(f, Options{}, nil).Discover(context.Background(), "shop.test")
	require.NoError(t, err)

	assert.Equal(t, StoreGeneric, d.StoreType)
	assert.Equal(t, []string{
		"https://shop.test/products/a",
		"https://shop.test/products/b",
		"https://shop.test/products/c",
	}, d.Products)
	assert.Equal(t, []string{
		"https://shop.test/",
		"https://shop.test/shop",
		"https://shop.test/shop?page=2",
	}, d.Visited)
	assert.Zero(t, d.FailedListings)

	// Detail pages are never fetched by the crawler
	for _, u := range f.fetched {
		assert.NotContains(t, u, "/products/")
	}
}

func TestDiscover_ShopifySeedsCollectionsAll(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://store.test/":                `<script src="//cdn.shopify.com/s/theme.js"></script>` + links("/pages/about"),
		"https://store.test/collections/all": links("/collections/all/products/widget"),
	}}

	d, err := NewCrawler(f, Options{}, nil).Discover(context.Background(), "https://store.test/")
	require.NoError(t, err)

	assert.Equal(t, StoreShopify, d.StoreType)
	assert.Equal(t, []string{"https://store.test/collections/all/products/widget"}, d.Products)
}

// Bounded crawl: an endless pagination chain stops at the cap and never
// revisits a page.
func TestDiscover_BoundedByListingCap(t *testing.T) {
	pages := map[string]string{"https://loop.test/": links("/shop?page=1")}
	for i := 1; i <= 500; i++ {
		pages[fmt.Sprintf("https://loop.test/shop?page=%d", i)] = links(
			fmt.Sprintf("/shop?page=%d", i+1),
			fmt.Sprintf("/shop?page=%d", i-1),
			fmt.Sprintf("/products/p%d", i),
		)
	}
	f := &siteFetcher{pages: pages}

	d, err := NewCrawler(f, Options{MaxListingPages: 7}, nil).Discover(context.Background(), "https://loop.test/")
	require.NoError(t, err)

	assert.LessOrEqual(t, len(d.Visited), 7)
	assert.Len(t, f.fetched, len(d.Visited))

	seen := make(map[string]bool)
	for _, u := range d.Visited {
		assert.False(t, seen[u], "visited twice: %s", u)
		seen[u] = true
	}
}

// Same-origin containment: every visited and discovered URL is on the root host.
func TestDiscover_SameOriginContainment(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test/": links(
			"https://b.test/shop",
			"https://b.test/products/x",
			"//cdn.a.test/products/y",
			"/collections/main",
		),
		"https://a.test/collections/main": links("/products/ok", "https://evil.test/products/nope"),
	}}

	d, err := NewCrawler(f, Options{}, nil).Discover(context.Background(), "https://a.test/")
	require.NoError(t, err)

	for _, u := range append(append([]string{}, d.Visited...), d.Products...) {
		parsed, err := url.Parse(u)
		require.NoError(t, err)
		assert.Equal(t, "a.test", parsed.Hostname(), u)
	}
	assert.Equal(t, []string{"https://a.test/products/ok"}, d.Products)
}

func TestDiscover_FailedListingIsRecoverable(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://r.test/":        links("/shop/broken", "/shop/ok"),
		"https://r.test/shop/ok": links("/products/kept"),
	}}

	d, err := NewCrawler(f, Options{}, nil).Discover(context.Background(), "https://r.test/")
	require.NoError(t, err)

	assert.Equal(t, 1, d.FailedListings)
	assert.Equal(t, []string{"https://r.test/products/kept"}, d.Products)
}

func TestDiscover_RootUnreachableIsFatal(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{}}

	_, err := NewCrawler(f, Options{}, nil).Discover(context.Background(), "https://down.test")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRootUnreachable)

	var crawlErr *CrawlError
	assert.ErrorAs(t, err, &crawlErr)
}

func TestDiscover_TimeoutKeepsPartialResult(t *testing.T) {
	slow := fetch.Func(func(ctx context.Context, u string) (*fetch.Result, error) {
		if u == "https://slow.test/" {
			return &fetch.Result{URL: u, HTML: links("/products/first", "/shop")}, nil
		}
		<-ctx.Done()
		return nil, &fetch.Error{URL: u, Message: "HTTP request failed", Cause: ctx.Err()}
	})

	d, err := NewCrawler(slow, Options{Timeout: 30 * time.Millisecond}, nil).Discover(context.Background(), "https://slow.test/")
	require.NoError(t, err)
	assert.True(t, d.TimedOut)
	assert.Equal(t, []string{"https://slow.test/products/first"}, d.Products)
	assert.Zero(t, d.FailedListings)
}

func TestDiscover_RootFetchedOnce(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://p.test/": links("/about", "/", "https://p.test"),
	}}

	d, err := NewCrawler(f, Options{}, nil).Discover(context.Background(), "https://p.test/")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://p.test/"}, f.fetched)
	assert.Equal(t, []string{"https://p.test/"}, d.Visited)
}

// A redirected root moves the origin; everything reported shares the final host.
func TestDiscover_RedirectMovesRoot(t *testing.T) {
	var mu sync.Mutex
	var fetched []string
	redirecting := fetch.Func(func(_ context.Context, u string) (*fetch.Result, error) {
		mu.Lock()
		fetched = append(fetched, u)
		mu.Unlock()
		switch u {
		case "https://r.test/":
			return &fetch.Result{URL: u, FinalURL: "https://www.r.test/", HTML: links("/shop", "/")}, nil
		case "https://www.r.test/shop":
			return &fetch.Result{URL: u, FinalURL: u, HTML: links("/products/kettle", "https://r.test/products/old-host")}, nil
		}
		return nil, &fetch.Error{URL: u, Message: "HTTP status 404", StatusCode: 404}
	})

	d, err := NewCrawler(redirecting, Options{}, nil).Discover(context.Background(), "r.test")
	require.NoError(t, err)

	assert.Equal(t, "https://www.r.test/", d.Root)
	assert.Equal(t, []string{"https://www.r.test/", "https://www.r.test/shop"}, d.Visited)
	assert.Equal(t, []string{"https://www.r.test/products/kettle"}, d.Products)
	assert.Equal(t, []string{"https://r.test/", "https://www.r.test/shop"}, fetched)

	root, err := url.Parse(d.Root)
	require.NoError(t, err)
	for _, u := range append(append([]string{}, d.Visited...), d.Products...) {
		parsed, err := url.Parse(u)
		require.NoError(t, err)
		assert.Equal(t, root.Hostname(), parsed.Hostname(), u)
	}
}
