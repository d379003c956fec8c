// Package extraction pulls loosely typed product fields out of detail-page HTML
// with string and regular-expression matching. No DOM is built.
package extraction

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/site-compiler/internal/fetch"
	"github.com/jonathan/site-compiler/internal/logging"
	"github.com/jonathan/site-compiler/internal/types"
)

// Pool size bounds.
const (
	MinWorkers     = 1
	MaxWorkers     = 8
	DefaultWorkers = 4
)

// Options configures an Extractor.
type Options struct {
	Workers        int  // clamped to [MinWorkers, MaxWorkers]
	KeepRawContent bool // store stripped body text in RawProduct.Content
}

// Stats counts extraction outcomes.
type Stats = types.ExtractionStats

// Extractor fetches detail pages through a bounded pool and extracts a
// RawProduct from each.
type Extractor struct {
	fetcher fetch.Fetcher
	opts    Options
	log     logrus.FieldLogger
}

// New creates an Extractor. A nil logger discards output.
func New(fetcher fetch.Fetcher, opts Options, log logrus.FieldLogger) *Extractor {
	if opts.Workers == 0 {
		opts.Workers = DefaultWorkers
	}
	opts.Workers = max(MinWorkers, min(MaxWorkers, opts.Workers))
	return &Extractor{
		fetcher: fetcher,
		opts:    opts,
		log:     logging.OrDiscard(log).WithField("stage", "extract"),
	}
}

// Extract builds a RawProduct from one page. ok is false when no name-like
// field was found; such pages are not products.
func Extract(page, pageURL string, keepContent bool) (types.RawProduct, bool) {
	names := ExtractName(page)
	raw := types.RawProduct{
		URL:          pageURL,
		Name:         names.Heading,
		ProductName:  names.OGTitle,
		Title:        names.Title,
		Price:        ExtractPrice(page),
		Description:  ExtractDescription(page),
		Images:       ExtractImages(page, pageURL),
		Specs:        ExtractSpecs(page),
		Brand:        ExtractBrand(page),
		Availability: ExtractAvailability(page),
		Category:     ExtractCategory(page),
		Features:     ExtractFeatures(page),
	}

	switch sku, kind := ExtractSKU(page); kind {
	case SKUCode:
		raw.SKU = sku
	case SKUItemNumber:
		raw.ItemNumber = sku
	case SKUProductNumber:
		raw.ProductNumber = sku
	case SKUModelNumber:
		raw.ModelNumber = sku
	}

	if keepContent {
		raw.Content = ExtractContent(page)
	}
	if len(raw.Specs) == 0 {
		raw.Specs = nil
	}
	return raw, names.First() != ""
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeSkipped
	outcomeSuccess
)

// ExtractAll fetches and extracts every URL. Output keeps the input order
// regardless of completion order. Unfetchable pages and pages without a name are
// dropped and counted; neither stops the run. The only error is ctx cancellation.
func (e *Extractor) ExtractAll(ctx context.Context, urls []string) ([]types.RawProduct, Stats, error) {
	products := make([]types.RawProduct, len(urls))
	outcomes := make([]outcome, len(urls))
	var done atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			log := e.log.WithField("url", u)

			result, err := e.fetcher.Fetch(gCtx, u)
			n := done.Add(1)
			if err != nil {
				log.Warnf("Fetch failed, dropping: %v", err)
				outcomes[i] = outcomeFailed
				return nil
			}

			raw, ok := Extract(result.HTML, u, e.opts.KeepRawContent)
			if !ok {
				log.Debug("No product name found, skipping")
				outcomes[i] = outcomeSkipped
				return nil
			}
			products[i] = raw
			outcomes[i] = outcomeSuccess
			log.WithField("progress", n).Debug("Extracted")
			return nil
		})
	}

	err := g.Wait()

	var stats Stats
	ordered := make([]types.RawProduct, 0, len(urls))
	for i := range urls {
		switch outcomes[i] {
		case outcomeSuccess:
			stats.Success++
			ordered = append(ordered, products[i])
		case outcomeSkipped:
			stats.Skipped++
		default:
			stats.Failed++
		}
	}

	e.log.WithFields(logrus.Fields{
		"success": stats.Success,
		"skipped": stats.Skipped,
		"failed":  stats.Failed,
	}).Info("Extraction finished")

	return ordered, stats, err
}
