package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/vrtour/pkg/cache"
)

func newTestClient(t *testing.T, server *httptest.Server, headers map[string]string) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return NewClient(c, "test", time.Hour, headers).WithHTTPClient(server.Client())
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "test", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("NewClient(nil) should fall back to a null cache")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Status bool `json:"status"`
	}

	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotHeader = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(response{Status: true})
	}))
	defer server.Close()

	client := newTestClient(t, server, map[string]string{"Accept": "application/json"})

	var resp response
	if err := client.Get(context.Background(), server.URL, false, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !resp.Status {
		t.Error("Get() did not decode body")
	}
	if gotHeader != "application/json" {
		t.Errorf("Accept header = %q", gotHeader)
	}
}

func TestClientGetCachesBody(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"status":true,"data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	ctx := context.Background()

	for range 3 {
		if _, err := client.GetBytes(ctx, server.URL, false); err != nil {
			t.Fatalf("GetBytes() error: %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}

	if _, err := client.GetBytes(ctx, server.URL, true); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("refresh should bypass cache, server hit %d times", got)
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	var resp map[string]any
	err := client.Get(context.Background(), server.URL, false, &resp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(cache.NewNullCache(), "test", time.Hour, nil)

	fetchCount := 0
	_, err := client.Cached(context.Background(), "k", false, func() ([]byte, error) {
		fetchCount++
		return nil, ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
	if fetchCount != 1 {
		t.Errorf("non-retryable error fetched %d times, want 1", fetchCount)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantErr    bool
		wantType   error
		isRetryErr bool
	}{
		{name: "200 OK", code: 200},
		{name: "404 Not Found", code: 404, wantErr: true, wantType: ErrNotFound},
		{name: "429 Too Many Requests", code: 429, wantErr: true, isRetryErr: true},
		{name: "500 Internal Server Error", code: 500, wantErr: true, isRetryErr: true},
		{name: "503 Service Unavailable", code: 503, wantErr: true, isRetryErr: true},
		{name: "400 Bad Request", code: 400, wantErr: true, wantType: ErrNetwork},
		{name: "403 Forbidden", code: 403, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)

			if !tt.wantErr {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("checkStatus() should return error")
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantType)
			}
			if got := cache.IsRetryable(err); got != tt.isRetryErr {
				t.Errorf("IsRetryable = %v, want %v", got, tt.isRetryErr)
			}
		})
	}
}
