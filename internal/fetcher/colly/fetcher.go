// Package collyfetcher implements watch.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/yang208115/annwatch/internal/watch"
)

// Config controls collector behavior.
type Config struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
}

// Fetcher issues a single GET against the configured listing page. It does
// not retry; the daemon owns the backoff policy.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := colly.NewCollector(colly.Async(false))
	// The same page is visited every cycle.
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch executes one HTTP GET and returns the raw markup.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	var (
		body     []byte
		fetchErr error
	)

	collector := f.baseCollector.Clone()
	collector.AllowURLRevisit = true
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnRequest(func(r *colly.Request) {
		for key, value := range f.cfg.Headers {
			r.Headers.Set(key, value)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = f.classify(r, err)
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(f.cfg.URL)
	}()

	select {
	case <-ctx.Done():
		// The visit goroutine may still be driving the callbacks; body and
		// fetchErr must not be touched on this branch.
		return nil, &watch.FetchError{
			Kind: watch.FetchNetwork,
			URL:  f.cfg.URL,
			Err:  fmt.Errorf("fetch canceled: %w", ctx.Err()),
		}
	case visitErr := <-done:
		if fetchErr != nil {
			// OnError fires for HTTP failures and carries the status code;
			// prefer its classification over the bare Visit error.
			return nil, fetchErr
		}
		if visitErr != nil {
			return nil, &watch.FetchError{
				Kind: watch.FetchNetwork,
				URL:  f.cfg.URL,
				Err:  visitErr,
			}
		}
	}

	f.logger.Debug("page fetched",
		zap.String("url", f.cfg.URL),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}

func (f *Fetcher) classify(r *colly.Response, err error) error {
	if r != nil && r.StatusCode > 0 {
		return &watch.FetchError{
			Kind:       watch.FetchHTTPStatus,
			URL:        f.cfg.URL,
			StatusCode: r.StatusCode,
			Err:        err,
		}
	}
	return &watch.FetchError{
		Kind: watch.FetchNetwork,
		URL:  f.cfg.URL,
		Err:  err,
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
}
