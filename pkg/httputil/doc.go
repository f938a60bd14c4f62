// Package httputil fetches graph documents over HTTP.
//
// A [Fetcher] downloads documents with automatic retry for transient
// failures and keeps the bodies in a [cache.Cache], so repeated runs
// against the same URL do not hit the network:
//
//   - Network errors, 5xx responses and 429 rate limits are retried with
//     exponential backoff via [cache.RetryWithBackoff]
//   - 404 responses fail with NOT_FOUND without retrying
//   - Bodies larger than [MaxDocumentSize] are rejected
//
// Usage:
//
//	c, _ := cache.NewFileCache(dir)
//	f := httputil.NewFetcher(c, 24*time.Hour, logger)
//	data, err := f.Fetch(ctx, "https://example.com/graph.yaml")
package httputil
