package crawling

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/site-compiler/internal/fetch"
	"github.com/jonathan/site-compiler/internal/logging"
)

// Options bounds a crawl.
type Options struct {
	MaxListingPages int           // 0 = by store type
	Timeout         time.Duration // wall-clock limit; 0 = none
}

// Discovery is the result of a crawl.
type Discovery struct {
	Root           string
	StoreType      StoreType
	Products       []string // stripped detail URLs in discovery order
	Visited        []string // listing pages fetched, in fetch order
	FailedListings int
	TimedOut       bool
	RootHTML       string // reused by the page snapshot
}

// Crawler walks listing pages breadth-first and collects detail URLs.
type Crawler struct {
	fetcher fetch.Fetcher
	opts    Options
	log     logrus.FieldLogger
}

// NewCrawler creates a Crawler. A nil logger discards output.
func NewCrawler(fetcher fetch.Fetcher, opts Options, log logrus.FieldLogger) *Crawler {
	return &Crawler{
		fetcher: fetcher,
		opts:    opts,
		log:     logging.OrDiscard(log).WithField("stage", "crawl"),
	}
}

// frontier is the de-duplicated BFS queue. seen holds every URL ever enqueued,
// so each listing page is fetched at most once.
type frontier struct {
	queue []string
	seen  map[string]bool
}

func newFrontier() *frontier {
	return &frontier{seen: make(map[string]bool)}
}

func (f *frontier) push(u string) bool {
	key := frontierKey(u)
	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	f.queue = append(f.queue, key)
	return true
}

// markSeen records u as visited without queueing it.
func (f *frontier) markSeen(u string) {
	f.seen[frontierKey(u)] = true
}

func (f *frontier) pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue = f.queue[1:]
	return u, true
}

// Discover crawls from rootURL and returns the candidate product-detail URLs.
// Only a failed root fetch is an error; failed listing pages are counted and
// their branch abandoned.
func (c *Crawler) Discover(ctx context.Context, rootURL string) (*Discovery, error) {
	root, err := NormalizeSiteURL(rootURL)
	if err != nil {
		return nil, err
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	result, err := c.fetcher.Fetch(ctx, root)
	if err != nil {
		return nil, &CrawlError{
			Message: fmt.Sprintf("failed to fetch %s", root),
			Cause:   fmt.Errorf("%w: %w", ErrRootUnreachable, err),
		}
	}

	// Redirects (example.com -> www.example.com) move the origin. Root is the
	// post-redirect URL, so every reported URL shares its host.
	pageURL := root
	if result.FinalURL != "" {
		pageURL = result.FinalURL
	}
	if final, err := NormalizeSiteURL(pageURL); err == nil {
		pageURL = final
	}

	d := &Discovery{
		Root:      pageURL,
		StoreType: DetectStoreType(result.HTML),
		Products:  make([]string, 0),
		Visited:   []string{pageURL},
		RootHTML:  result.HTML,
	}
	limit := ListingCap(d.StoreType, c.opts.MaxListingPages)
	c.log.WithFields(logrus.Fields{"root": d.Root, "store_type": d.StoreType, "listing_cap": limit}).Info("Crawl starting")

	f := newFrontier()
	f.markSeen(root)
	f.markSeen(pageURL)
	products := make(map[string]bool)

	c.collect(d, f, products, pageURL, result.HTML)

	if d.StoreType == StoreShopify {
		if base, err := url.Parse(pageURL); err == nil {
			f.push(base.ResolveReference(&url.URL{Path: "/collections/all"}).String())
		}
	}

	for len(d.Visited) < limit {
		next, ok := f.pop()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			d.TimedOut = true
			break
		}

		d.Visited = append(d.Visited, next)
		res, err := c.fetcher.Fetch(ctx, next)
		if err != nil {
			if ctx.Err() != nil {
				d.TimedOut = true
				break
			}
			d.FailedListings++
			c.log.WithField("url", next).Warnf("Listing fetch failed, abandoning branch: %v", err)
			continue
		}
		c.collect(d, f, products, next, res.HTML)
	}

	if d.TimedOut {
		c.log.Warn("Crawl timeout reached, keeping what was found")
	}
	c.log.WithFields(logrus.Fields{
		"listings_fetched": len(d.Visited),
		"listings_failed":  d.FailedListings,
		"products":         len(d.Products),
	}).Info("Crawl finished")

	return d, nil
}

// collect classifies the links of one fetched page.
func (c *Crawler) collect(d *Discovery, f *frontier, products map[string]bool, pageURL, html string) {
	links, err := ExtractLinks(html, pageURL)
	if err != nil {
		c.log.WithField("url", pageURL).Warnf("Skipping page links: %v", err)
		return
	}

	for _, link := range links.Links {
		parsed, err := url.Parse(link)
		if err != nil {
			continue
		}
		switch {
		case IsDetailURL(parsed):
			stripped := StripURL(link)
			if !products[stripped] {
				products[stripped] = true
				d.Products = append(d.Products, stripped)
			}
		case IsListingURL(parsed):
			f.push(link)
		}
	}
	for _, next := range links.Next {
		if parsed, err := url.Parse(next); err == nil && IsDetailURL(parsed) {
			continue
		}
		f.push(next)
	}
}
