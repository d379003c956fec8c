package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/jonathan/site-compiler/internal/logging"
)

// ClientConfig configures a polite Client.
type ClientConfig struct {
	Timeout      time.Duration
	UserAgent    string
	RequestDelay time.Duration // minimum spacing between requests to one origin
	MaxInFlight  int           // global cap on concurrent requests
	Retries      int           // extra attempts for retryable failures
}

// Client is a Fetcher that spaces requests per origin, caps global in-flight
// requests and optionally retries transient failures.
type Client struct {
	opts    *Options
	delay   time.Duration
	retries int
	sem     *semaphore.Weighted
	log     logrus.FieldLogger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a Client. A nil logger discards output.
func NewClient(cfg ClientConfig, log logrus.FieldLogger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: cfg.MaxInFlight,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Client{
		opts: &Options{
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
			Client:    httpClient,
		},
		delay:    cfg.RequestDelay,
		retries:  cfg.Retries,
		sem:      semaphore.NewWeighted(int64(cfg.MaxInFlight)),
		log:      logging.OrDiscard(log),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	host := originOf(urlStr)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		result, err := c.fetchOnce(ctx, host, urlStr)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var fetchErr *Error
		if !errors.As(err, &fetchErr) || !fetchErr.Retryable() || attempt == c.retries {
			return result, err
		}
		c.log.WithFields(logrus.Fields{"url": urlStr, "attempt": attempt + 1}).Debugf("Retrying: %v", err)
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, host, urlStr string) (*Result, error) {
	if err := c.limiter(host).Wait(ctx); err != nil {
		return nil, &Error{URL: urlStr, Message: "cancelled while waiting for rate limiter", Cause: err}
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, &Error{URL: urlStr, Message: "cancelled while waiting for a request slot", Cause: err}
	}
	defer c.sem.Release(1)

	start := time.Now()
	result, err := URL(ctx, urlStr, c.opts)
	c.log.WithFields(logrus.Fields{"url": urlStr, "elapsed_ms": time.Since(start).Milliseconds()}).Debug("Fetched")
	return result, err
}

// limiter returns the origin's limiter, creating it on first use.
func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		limit := rate.Inf
		if c.delay > 0 {
			limit = rate.Every(c.delay)
		}
		l = rate.NewLimiter(limit, 1)
		c.limiters[host] = l
	}
	return l
}

func originOf(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

// Func adapts a plain function to Fetcher.
type Func func(ctx context.Context, urlStr string) (*Result, error)

// Fetch implements Fetcher.
func (f Func) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	return f(ctx, urlStr)
}
