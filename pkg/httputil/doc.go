// Package httputil provides the HTTP client used to fetch remote tour
// manifests.
//
// # Overview
//
// [Client] wraps net/http with three concerns:
//
//   - Caching: response bodies are stored in a [cache.Cache] under a
//     namespace, so repeated runs do not hit the manifest server.
//   - Retry: network errors, 429 and 5xx responses are wrapped with
//     [cache.Retryable] and retried with exponential backoff.
//   - Observability: every request reports to [observability.HTTP] and every
//     cache lookup to [observability.Cache].
//
// Usage:
//
//	c := httputil.NewClient(fileCache, "manifest", time.Hour, nil)
//	var m tour.ManifestJSON
//	if err := c.Get(ctx, "https://tour.example.com/house/12", false, &m); err != nil {
//	    return err
//	}
//
// A 404 maps to [ErrNotFound]; other failures wrap [ErrNetwork].
package httputil
