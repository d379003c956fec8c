// Package fetch - browser.go provides headless browser rendering for script-built storefronts.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/site-compiler/internal/logging"
)

// MinContentLength is the minimum visible text length for a plain HTTP fetch
// to count as rendered. Shorter pages are retried in a browser when enabled.
const MinContentLength = 300

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely rendered by JavaScript.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, log logrus.FieldLogger) (string, error) {
	log = logging.OrDiscard(log).WithField("url", url)
	log.Debug("Starting headless browser")

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Storefront themes hydrate product grids after load
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	log.WithField("bytes", len(html)).Debug("Rendered HTML")
	return html, nil
}

// RenderIfThin returns html unchanged unless its visible text is below
// MinContentLength, in which case the page is rendered in a browser. A browser
// failure is logged and the original html returned.
func RenderIfThin(ctx context.Context, url, html string, timeout time.Duration, log logrus.FieldLogger) string {
	text, err := ExtractMainText(html, DefaultTextSelectors())
	if err == nil && !ShouldUseBrowser(text) {
		return html
	}
	rendered, err := WithBrowser(ctx, url, timeout, log)
	if err != nil {
		logging.OrDiscard(log).WithField("url", url).Warnf("Browser fallback failed, keeping HTTP response: %v", err)
		return html
	}
	return rendered
}
