package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/Sidd1721986/Elite-App/internal/storage"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultTimeout = 10 * time.Second
)

// API is the call surface the domain services and stores depend on.
type API interface {
	Get(ctx context.Context, endpoint string, bypassCache bool) (json.RawMessage, error)
	Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error)
	Put(ctx context.Context, endpoint string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, endpoint string) (json.RawMessage, error)
	ClearCache()
}

// TokenStore is the read side of the persisted key-value store.
type TokenStore interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
}

// ClientOpts configures a [Client]. Zero values select the defaults.
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Storage    TokenStore
	TTL        time.Duration
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables limiting
	Burst      int
	Logger     *log.Logger
	Now        func() time.Time
}

type cacheEntry struct {
	data      json.RawMessage
	timestamp time.Time
}

// Client is the HTTP cache client. See the package documentation.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	ttl        time.Duration
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *log.Logger
	now        func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry

	inflight singleflight.Group
}

// NewClient creates a [Client] with its own cache and in-flight table.
func NewClient(opts ClientOpts) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tokens:     opts.Storage,
		ttl:        opts.TTL,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		now:        opts.Now,
		cache:      make(map[string]cacheEntry),
	}

	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = shared.NewLogger(nil)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.RateLimit > 0 {
		burst := max(opts.Burst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return c
}

// Get returns the JSON body for endpoint, served from the cache while fresh.
//
// Concurrent calls for the same endpoint share one network call. With
// bypassCache the cache is skipped and any in-flight call is detached so a
// fresh one starts.
func (c *Client) Get(ctx context.Context, endpoint string, bypassCache bool) (json.RawMessage, error) {
	if !bypassCache {
		if data, ok := c.cached(endpoint); ok {
			c.logger.Debug("cache hit", "endpoint", endpoint)
			return data, nil
		}
	} else {
		c.inflight.Forget(endpoint)
	}

	ch := c.inflight.DoChan(endpoint, func() (any, error) {
		data, err := c.call(context.WithoutCancel(ctx), http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		c.store(endpoint, data)
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("joined in-flight request", "endpoint", endpoint)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.(json.RawMessage)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Post sends body as JSON and invalidates related cache entries on success.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPost, endpoint, body)
}

// Put sends body as JSON and invalidates related cache entries on success.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodPut, endpoint, body)
}

// Delete removes the resource and invalidates related cache entries on success.
func (c *Client) Delete(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return c.mutate(ctx, http.MethodDelete, endpoint, nil)
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

func (c *Client) mutate(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var payload []byte
	if method != http.MethodDelete {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode request body: %v", shared.ErrInvalidInput, err)
		}
		payload = b
	}

	type result struct {
		data json.RawMessage
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := c.call(context.WithoutCancel(ctx), method, endpoint, payload)
		done <- result{data, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		c.invalidate(endpoint)
		return r.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// call races a single network round trip against the client timeout.
//
// When the timer wins the round trip keeps running in the background and its
// result is dropped.
func (c *Client) call(ctx context.Context, method, endpoint string, body []byte) (json.RawMessage, error) {
	type result struct {
		data json.RawMessage
		err  error
	}
	done := make(chan result, 1)

	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, c.timeout+time.Second)
		defer cancel()
		data, err := c.fetch(fetchCtx, method, endpoint, body)
		done <- result{data, err}
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.data, r.err
	case <-timer.C:
		c.logger.Error("request timed out", "method", method, "endpoint", endpoint, "timeout", c.timeout)
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, shared.ErrRequestTimeout)
	}
}

func (c *Client) fetch(ctx context.Context, method, endpoint string, body []byte) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit: %w", shared.ErrAPIRequest, err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", shared.ErrAPIRequest, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	c.authorize(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w", method, endpoint, shared.ErrRequestTimeout)
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := newHTTPError(method, endpoint, resp.StatusCode, data)
		c.logger.Error("API error", "method", method, "endpoint", endpoint, "status", resp.StatusCode, "message", herr.Message)
		return nil, herr
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s %s", shared.ErrDecodeResponse, method, endpoint)
	}
	return json.RawMessage(data), nil
}

// authorize attaches the persisted bearer token. A missing or unreadable token never blocks the call.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, ok, err := c.tokens.GetItem(ctx, storage.KeyAuthToken)
	if err != nil {
		c.logger.Warn("failed to read auth token", "error", err)
		return
	}
	if !ok || token == "" {
		return
	}
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
}

func (c *Client) cached(endpoint string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.cache[endpoint]
	if !ok || c.now().Sub(e.timestamp) >= c.ttl {
		return nil, false
	}
	return clone(e.data), true
}

func (c *Client) store(endpoint string, data json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[endpoint] = cacheEntry{data: data, timestamp: c.now()}
}

// invalidate evicts every cached key sharing the endpoint's first two path segments.
func (c *Client) invalidate(endpoint string) {
	prefix := invalidationPrefix(endpoint)

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.cache {
		if strings.HasPrefix(key, prefix) {
			delete(c.cache, key)
		}
	}
}

// invalidationPrefix maps "/jobs/42/assign" to "/jobs".
func invalidationPrefix(endpoint string) string {
	parts := strings.Split(endpoint, "/")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "/")
}

func clone(data json.RawMessage) json.RawMessage {
	if data == nil {
		return nil
	}
	return append(json.RawMessage(nil), data...)
}
