package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/vrtour/pkg/cache"
	"github.com/matzehuels/vrtour/pkg/observability"
)

const httpTimeout = 10 * time.Second

// maxBodySize bounds response bodies. Tour manifests are small.
const maxBodySize = 8 << 20

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = cache.ErrNetwork
)

// Client performs GET requests with caching, retry and observability hooks.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client storing responses in c under namespace for ttl.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// WithHTTPClient replaces the underlying HTTP client. It returns c.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Cached returns the cached bytes for key, or calls fetch with retries and
// caches its result. If refresh is true the cache is not read.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	ck := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		data, hit, err := c.cache.Get(ctx, ck)
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, c.namespace)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, c.namespace)
	}

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, ck, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, c.namespace, len(data))
	}
	return data, nil
}

// Get fetches rawURL through the cache and JSON-decodes the body into v.
func (c *Client) Get(ctx context.Context, rawURL string, refresh bool, v any) error {
	data, err := c.GetBytes(ctx, rawURL, refresh)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// GetBytes fetches rawURL through the cache.
func (c *Client) GetBytes(ctx context.Context, rawURL string, refresh bool) ([]byte, error) {
	return c.Cached(ctx, rawURL, refresh, func() ([]byte, error) {
		return c.do(ctx, rawURL)
	})
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	host, path := hostPath(req.URL)

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: reading body: %v", ErrNetwork, err))
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

func hostPath(u *url.URL) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}
