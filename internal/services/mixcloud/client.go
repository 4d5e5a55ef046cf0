package mixcloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"pbrlib/internal/logging"
)

const maxBodyBytes = 4 << 20

// Config describes a Client.
type Config struct {
	Profile     string
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	MinInterval time.Duration
}

// Client fetches show metadata and embed markup from the Mixcloud API. Every
// failure is reported as "no data"; callers never see transport errors.
type Client struct {
	profile     string
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	cache       *Cache
	logger      *slog.Logger
	minInterval time.Duration

	// mu is held for the whole of an uncached request.
	mu          sync.Mutex
	lastRequest time.Time
	now         func() time.Time
	sleep       func(context.Context, time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache enables the on-disk response cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "mixcloud")
	}
}

// WithClock replaces the time source and sleep used by the throttle.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates a Mixcloud client.
func New(cfg Config, opts ...Option) (*Client, error) {
	profile := strings.Trim(strings.TrimSpace(cfg.Profile), "/")
	if profile == "" {
		return nil, errors.New("mixcloud profile required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("mixcloud base url required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	client := &Client{
		profile:     profile,
		baseURL:     baseURL,
		userAgent:   strings.TrimSpace(cfg.UserAgent),
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logging.NewComponentLogger(nil, "mixcloud"),
		minInterval: cfg.MinInterval,
		now:         time.Now,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchShowMetadata returns the cloudcast at path, or false when no usable
// data is available.
func (c *Client) FetchShowMetadata(ctx context.Context, path string) (*ShowPayload, bool) {
	body, ok := c.request(ctx, c.endpoint(path, ""), ShowKey(path))
	if !ok {
		return nil, false
	}
	payload, err := DecodeShowPayload(body)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "mixcloud payload unreadable", "mixcloud_decode_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "show keeps its current metadata"))
		return nil, false
	}
	return payload, true
}

// FetchEmbedMarkup returns the embed HTML for path, or false when no data is
// available.
func (c *Client) FetchEmbedMarkup(ctx context.Context, path string) (string, bool) {
	body, ok := c.request(ctx, c.endpoint(path, "embed-html/"), EmbedKey(path))
	if !ok || len(body) == 0 {
		return "", false
	}
	return UnwrapEmbed(body), true
}

func (c *Client) endpoint(path, suffix string) string {
	return c.baseURL + "/" + c.profile + "/" + strings.Trim(path, "/") + "/" + suffix
}

func (c *Client) request(ctx context.Context, url, cacheKey string) ([]byte, bool) {
	logger := logging.WithContext(ctx, c.logger)
	if body, ok := c.cache.Get(cacheKey); ok {
		logger.Debug("mixcloud cache hit", logging.String("key", cacheKey))
		return body, true
	}

	if err := c.throttle(ctx); err != nil {
		return nil, false
	}
	body, err := c.get(ctx, url)
	c.markDone()
	if err != nil {
		logging.WarnWithContext(logger, "mixcloud request failed", "mixcloud_request_failed",
			logging.String("url", url),
			logging.Error(err),
			logging.String(logging.FieldImpact, "show keeps its current metadata"),
			logging.String(logging.FieldErrorHint, "rerun with --enrich once the API is reachable"))
		return nil, false
	}

	if err := c.cache.Put(cacheKey, body); err != nil {
		logging.WarnWithContext(logger, "mixcloud cache write failed", "mixcloud_cache_write_failed",
			logging.String("key", cacheKey),
			logging.Error(err),
			logging.String(logging.FieldImpact, "next run will request this show again"))
	}
	return body, true
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// throttle takes the request slot and waits until minInterval has passed
// since the previous uncached request finished. The slot is held until
// markDone, so concurrent callers never overlap upstream.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	if c.lastRequest.IsZero() {
		return nil
	}
	if wait := c.lastRequest.Add(c.minInterval).Sub(c.now()); wait > 0 {
		if err := c.sleep(ctx, wait); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	return nil
}

// markDone records the end of a request and releases the slot.
func (c *Client) markDone() {
	c.lastRequest = c.now()
	c.mu.Unlock()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
