package census

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/demography-cli/internal/config"
	"github.com/sells-group/demography-cli/internal/fetcher"
)

// Extractor fetches one dataset response and parses it into a Table.
type Extractor struct {
	fetcher fetcher.Fetcher
	apiKey  string
}

// NewExtractor creates an Extractor. When apiKey is set it is appended to
// request URLs that do not already carry a key.
func NewExtractor(f fetcher.Fetcher, apiKey string) *Extractor {
	return &Extractor{fetcher: f, apiKey: apiKey}
}

// NewFetcher returns an HTTP fetcher tuned for the Census API: a single
// attempt per request, the configured timeout and a host rate limit.
func NewFetcher(cfg config.CensusConfig) *fetcher.HTTPFetcher {
	adaptive := make(map[string]*fetcher.AdaptiveLimiter)
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" && cfg.RatePerSec > 0 {
		burst := int(cfg.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		adaptive[u.Host] = fetcher.NewAdaptiveLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:        cfg.UserAgent,
		Timeout:          time.Duration(cfg.TimeoutSecs) * time.Second,
		MaxRetries:       1,
		AdaptiveLimiters: adaptive,
	})
}

// Extract performs a single GET of rawURL and parses the body. Non-200
// responses and transport faults are returned as *ExtractionError; malformed
// bodies as *ParseError.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Table, error) {
	reqURL := e.withKey(rawURL)
	safeURL := fetcher.Redact(reqURL)

	zap.L().Debug("census: extracting", zap.String("url", safeURL))

	body, err := e.fetcher.Download(ctx, reqURL)
	if err != nil {
		var se *fetcher.StatusError
		if errors.As(err, &se) {
			return nil, &ExtractionError{StatusCode: se.StatusCode, URL: safeURL, Err: err}
		}
		return nil, &ExtractionError{URL: safeURL, Err: err}
	}
	defer body.Close() //nolint:errcheck

	return ParseResponse(ctx, body)
}

func (e *Extractor) withKey(rawURL string) string {
	if e.apiKey == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Get("key") != "" {
		return rawURL
	}
	sep := "?"
	if u.RawQuery != "" {
		sep = "&"
	}
	return rawURL + sep + "key=" + url.QueryEscape(e.apiKey)
}
