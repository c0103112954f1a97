package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
	})
}

func TestFetch_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"features":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	data, err := newTestFetcher().Fetch(context.Background(), Request{URL: srv.URL + "/query"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"features":[]}`, string(data))
}

func TestFetch_PostWithBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "[out:json];node(1);out;", string(body))
		w.Write([]byte(`{"elements":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	data, err := newTestFetcher().Fetch(context.Background(), Request{
		Method:      http.MethodPost,
		URL:         srv.URL + "/api/interpreter",
		Body:        []byte("[out:json];node(1);out;"),
		ContentType: "text/plain",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"elements":[]}`, string(data))
}

func TestFetch_RequestHeadersOverrideUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Wefrigerator Community Fridge Locator", r.Header.Get("User-Agent"))
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), Request{
		URL:     srv.URL,
		Headers: map[string]string{"User-Agent": "Wefrigerator Community Fridge Locator"},
	})
	require.NoError(t, err)
}

func TestFetch_Non2xxDoesNotRetry(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), Request{URL: srv.URL + "/down"})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "status 503")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetch_429SlowsHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	f := NewHTTPFetcher(HTTPOptions{
		RateLimiters: map[string]*AdaptiveLimiter{u.Host: NewAdaptiveLimiter(100, 100)},
	})

	_, err = f.Fetch(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.InDelta(t, 50.0, float64(f.limiterFor(srv.URL).Limit()), 0.1)
}

func TestFetch_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789")) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxBodyBytes: 4})
	_, err := f.Fetch(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 4 bytes")
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().Fetch(ctx, Request{URL: srv.URL})
	require.Error(t, err)
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), Request{URL: addr})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch: GET")
}

func TestNewHTTPFetcher_Defaults(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{})
	assert.Equal(t, "fridge-ingest/1.0", f.opts.UserAgent)
	assert.Equal(t, 60*time.Second, f.opts.Timeout)
	assert.Equal(t, int64(DefaultMaxBodyBytes), f.opts.MaxBodyBytes)
	assert.Contains(t, f.limiters, "overpass-api.de")
}

func TestLimiterFor_UnknownHostGetsDefault(t *testing.T) {
	f := newTestFetcher()
	lim := f.limiterFor("https://unknown-host.example/path")
	require.NotNil(t, lim)
	assert.InDelta(t, 20.0, float64(lim.Limit()), 0.001)
	assert.Same(t, lim, f.limiterFor("https://unknown-host.example/other"))
}

func TestAdaptiveLimiter_OnSuccess_CapsAt2x(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 10)
	lim.OnSuccess()
	assert.InDelta(t, 12.0, float64(lim.Limit()), 0.1)
	for range 20 {
		lim.OnSuccess()
	}
	assert.InDelta(t, 20.0, float64(lim.Limit()), 0.1)
}

func TestAdaptiveLimiter_OnRateLimit_FloorAtQuarter(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 10)
	lim.OnRateLimit()
	assert.InDelta(t, 5.0, float64(lim.Limit()), 0.1)
	for range 10 {
		lim.OnRateLimit()
	}
	assert.InDelta(t, 2.5, float64(lim.Limit()), 0.1)
}

func TestAdaptiveLimiter_Wait_ContextCancelled(t *testing.T) {
	lim := NewAdaptiveLimiter(0.001, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, lim.Wait(ctx))
}
