package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/symbol/pkg/cache"
	"github.com/matzehuels/symbol/pkg/errors"
)

// MaxDocumentSize bounds the size of a fetched document.
const MaxDocumentSize = 64 << 20

const requestTimeout = 30 * time.Second

// Fetcher downloads documents through a response cache.
type Fetcher struct {
	client *http.Client
	cache  cache.Cache
	ttl    time.Duration
	logger *log.Logger
}

// NewFetcher creates a fetcher that keeps bodies in c for ttl (0 keeps them
// until removed). A nil cache disables caching and a nil logger discards.
func NewFetcher(c cache.Cache, ttl time.Duration, logger *log.Logger) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Fetcher{
		client: &http.Client{Timeout: requestTimeout},
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func cacheKey(rawURL string) string { return "document:" + rawURL }

// Fetch returns the body of rawURL, from the cache when present.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if !IsURL(rawURL) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "not an http(s) URL: %q", rawURL)
	}
	key := cacheKey(rawURL)
	if data, ok, err := f.cache.Get(ctx, key); err != nil {
		f.logger.Warn("cache read failed", "url", rawURL, "error", err)
	} else if ok {
		f.logger.Debug("fetched from cache", "url", rawURL, "bytes", len(data))
		return data, nil
	}

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = f.get(ctx, rawURL)
		if cache.IsRetryable(err) {
			f.logger.Debug("retrying fetch", "url", rawURL, "error", err)
		}
		return err
	})
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "fetch %s", rawURL)
	}

	if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
		f.logger.Warn("cache write failed", "url", rawURL, "error", err)
	}
	f.logger.Debug("fetched", "url", rawURL, "bytes", len(data))
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "%s: %s", rawURL, resp.Status)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return nil, cache.Retryable(fmt.Errorf("%s: %s", rawURL, resp.Status))
	case resp.StatusCode >= 300:
		return nil, errors.New(errors.ErrCodeInternal, "%s: %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, cache.Retryable(err)
	}
	if len(data) > MaxDocumentSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: document exceeds %d bytes", rawURL, MaxDocumentSize)
	}
	return data, nil
}
