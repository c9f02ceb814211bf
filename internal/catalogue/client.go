// Package catalogue is the HTTP client for the NLB Catalogue REST API: it
// builds per-endpoint query parameters and performs GET requests with a
// bounded, sequential retry policy.
package catalogue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nlb-mcp/internal/config"
	"nlb-mcp/internal/logging"

	"golang.org/x/time/rate"
)

// RetryPolicy bounds the attempts made for one call.
type RetryPolicy struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetryPolicy returns 3 attempts with 0.3s..2s exponential backoff
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		InitialWait: 300 * time.Millisecond,
		MaxWait:     2 * time.Second,
	}
}

// Backoff returns the wait after the given (1-based) failed attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	wait := p.InitialWait
	for i := 1; i < attempt && wait < p.MaxWait; i++ {
		wait *= 2
	}
	if wait < p.InitialWait {
		wait = p.InitialWait
	}
	if wait > p.MaxWait {
		wait = p.MaxWait
	}
	return wait
}

// Client talks to the catalogue API
type Client struct {
	baseURL    string
	apiKey     string
	appCode    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryPolicy
	logger     logging.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetryPolicy overrides the retry policy
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithSleep replaces the backoff wait; tests use it to avoid real delays
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// NewClient creates a catalogue client from configuration
func NewClient(cfg config.CatalogueConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}

	retry := DefaultRetryPolicy()
	if cfg.Retry.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.InitialWait > 0 {
		retry.InitialWait = cfg.Retry.InitialWait
	}
	if cfg.Retry.MaxWait > 0 {
		retry.MaxWait = cfg.Retry.MaxWait
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		appCode:    cfg.AppCode,
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout(),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		limiter:    rate.NewLimiter(limit, 1),
		retry:      retry,
		logger:     logging.NewNoop(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-call budget
func (c *Client) Timeout() time.Duration { return c.timeout }

// GetJSON performs a GET on base+path and decodes the JSON body into generic
// values (numbers as json.Number). Transport errors, timeouts and 5xx answers
// are retried up to the policy's attempt limit; after that the last error is
// returned unchanged. Other non-2xx answers return a *StatusError at once.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values) (interface{}, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.retry.Backoff(attempt-1)); err != nil {
				return nil, lastErr
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		c.logger.Info("nlb request start",
			logging.String("path", path),
			logging.Any("params_keys", logging.SortedKeys(params)),
			logging.Int("attempt", attempt))

		payload, retry, err := c.do(ctx, u, path, attempt)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		if !retry || ctx.Err() != nil {
			return nil, err
		}
		c.logger.Warn("nlb request failed, will retry",
			logging.String("path", path),
			logging.Int("attempt", attempt),
			logging.Err(err))
	}
	return nil, lastErr
}

// do runs a single attempt and reports whether a failure may be retried.
func (c *Client) do(ctx context.Context, u, path string, attempt int) (interface{}, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-App-Code", c.appCode)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// connection errors and timeouts
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode >= 500 {
		return nil, true, newStatusError(resp, body)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, newStatusError(resp, body)
	}

	c.logger.Info("nlb request ok",
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Int("attempt", attempt),
		logging.Any("headers", logging.RedactHeaders(resp.Header)))

	payload, err := decodeJSON(body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return payload, false, nil
}

func decodeJSON(body []byte) (interface{}, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return payload, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports configuration readiness without touching the network
func (c *Client) Health() map[string]interface{} {
	return map[string]interface{}{
		"status":    "ok",
		"baseUrl":   c.baseURL,
		"timeoutMs": c.timeout.Milliseconds(),
	}
}
