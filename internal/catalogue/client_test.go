package catalogue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nlb-mcp/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) (*Client, *[]time.Duration) {
	t.Helper()
	var waits []time.Duration
	cfg := config.CatalogueConfig{
		APIKey:    "test-key",
		AppCode:   "test-app",
		BaseURL:   baseURL,
		UserAgent: "nlb-mcp-test",
		TimeoutMS: 1000,
	}
	opts = append([]Option{WithSleep(func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	})}, opts...)
	return NewClient(cfg, opts...), &waits
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 300*time.Millisecond, p.Backoff(0))
	assert.Equal(t, 300*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 600*time.Millisecond, p.Backoff(2))
	assert.Equal(t, 1200*time.Millisecond, p.Backoff(3))
	assert.Equal(t, 2*time.Second, p.Backoff(4))
	assert.Equal(t, 2*time.Second, p.Backoff(10))
}

func TestGetJSON_SendsHeadersAndParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/Catalogue/SearchTitles", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "test-app", r.Header.Get("X-App-Code"))
		assert.Equal(t, "nlb-mcp-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "harry potter", r.URL.Query().Get("Keywords"))
		assert.Equal(t, "20", r.URL.Query().Get("Limit"))
		assert.False(t, r.URL.Query().Has("Source"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalRecords": 12, "titles": []}`))
	}))
	defer srv.Close()

	client, waits := newTestClient(t, srv.URL+"/api/v2/Catalogue/")
	payload, err := client.SearchTitles(context.Background(), SearchTitlesParams{Keywords: "harry potter", Limit: 20})
	require.NoError(t, err)

	m, ok := payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, json.Number("12"), m["totalRecords"])
	assert.Empty(t, *waits)
}

func TestGetJSON_RetriesServerErrorsThenGivesUp(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"statusCode":503,"error":"Service Unavailable","message":"maintenance"}`))
			return
		}
		_, _ = w.Write([]byte(`{"titles": []}`))
	}))
	defer srv.Close()

	client, waits := newTestClient(t, srv.URL)
	_, err := client.GetJSON(context.Background(), PathSearchTitles, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, "maintenance", se.Message)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts), "no fourth attempt")
	assert.Equal(t, []time.Duration{300 * time.Millisecond, 600 * time.Millisecond}, *waits)
}

func TestGetJSON_RecoversAfterTransientFailure(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"items": [{"branchName": "Bedok"}]}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	payload, err := client.GetAvailabilityInfo(context.Background(), AvailabilityParams{BID: "123"})
	require.NoError(t, err)
	assert.NotNil(t, payload)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestGetJSON_ClientErrorIsNotRetried(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"statusCode":401,"error":"Unauthorized","message":"Invalid API key"}`))
	}))
	defer srv.Close()

	client, waits := newTestClient(t, srv.URL)
	_, err := client.GetTitles(context.Background(), GetTitlesParams{Title: "dune"})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.False(t, se.Temporary())
	assert.Contains(t, err.Error(), "Invalid API key")
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	assert.Empty(t, *waits)
}

func TestGetJSON_TransportErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, waits := newTestClient(t, url)
	_, err := client.GetJSON(context.Background(), PathGetTitles, nil)
	require.Error(t, err)

	var se *StatusError
	assert.False(t, errors.As(err, &se))
	assert.Len(t, *waits, 2)
}

func TestGetJSON_TimeoutRetried(t *testing.T) {
	var attempts int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, _ := newTestClient(t, srv.URL, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	_, err := client.GetJSON(context.Background(), PathSearchTitles, nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestGetJSON_InvalidJSONNotRetried(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	_, err := client.GetJSON(context.Background(), PathSearchTitles, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestGetJSON_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	payload, err := client.GetJSON(context.Background(), PathSearchTitles, nil)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestHealth(t *testing.T) {
	client, _ := newTestClient(t, "https://example.test/api/")
	h := client.Health()
	assert.Equal(t, "ok", h["status"])
	assert.Equal(t, "https://example.test/api", h["baseUrl"])
	assert.Equal(t, int64(1000), h["timeoutMs"])
}
