// Package steam is a typed client for the Steam store and Steam Web APIs.
//
// The client performs single GET requests with a fixed timeout. It does not retry
// and does not cache; callers decide how to degrade. Outbound calls are throttled
// per host and guarded by a circuit breaker so a failing upstream is not hammered.
package steam

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/gamevault/gamevault-server/internal/ratelimit"
	"github.com/gamevault/gamevault-server/internal/validation"
)

const (
	// Steam tolerates roughly 200 store requests per 5 minutes; stay well under it.
	defaultRPS   = 5.0
	defaultBurst = 10

	defaultTimeout = 10 * time.Second

	// Breaker trips after this many consecutive failures and probes again after the cooldown.
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second

	maxImageBytes = 8 << 20

	userAgent = "GameVault/1.0"
)

// Default endpoints.
const (
	DefaultStoreURL = "https://store.steampowered.com/api"
	DefaultWebURL   = "https://api.steampowered.com"
)

// Config configures a Client. Zero values take the defaults above.
type Config struct {
	StoreURL string
	WebURL   string
	APIKey   string
	Region   string
	Currency string
	Timeout  time.Duration
	RPS      float64
	Burst    int

	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client is a rate-limited Steam API client.
type Client struct {
	http     *http.Client
	limiter  *ratelimit.KeyedRateLimiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	validate *validation.Validator
	cfg      Config
	logger   *slog.Logger
}

// New creates a new Steam client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.StoreURL == "" {
		cfg.StoreURL = DefaultStoreURL
	}
	if cfg.WebURL == "" {
		cfg.WebURL = DefaultWebURL
	}
	if cfg.Region == "" {
		cfg.Region = "us"
	}
	if cfg.Currency == "" {
		cfg.Currency = "1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = defaultBreakerCooldown
	}
	cfg.StoreURL = strings.TrimRight(cfg.StoreURL, "/")
	cfg.WebURL = strings.TrimRight(cfg.WebURL, "/")

	c := &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:  ratelimit.New(cfg.RPS, cfg.Burst),
		validate: validation.New(),
		cfg:      cfg,
		logger:   logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "steam",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("steam circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			// A missing app or a caller giving up says nothing about Steam's health.
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
	})

	return c
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// BreakerState reports the circuit breaker state ("closed", "half-open", "open").
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// doRequest executes a GET with rate limiting, through the circuit breaker.
func (c *Client) doRequest(ctx context.Context, base, path string, query url.Values) ([]byte, error) {
	u, err := url.Parse(base + path)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	u.RawQuery = query.Encode()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, u)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &TransportError{Err: fmt.Errorf("%w: %w", ErrCircuitOpen, err)}
	}
	return body, err
}

func (c *Client) get(ctx context.Context, u *url.URL) ([]byte, error) {
	if err := c.limiter.Wait(ctx, u.Host); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("steam request failed", "path", u.Path, "error", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("steam response",
		"path", u.Path,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: ErrNotFound}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: ErrRateLimited}
	case resp.StatusCode >= 500:
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: ErrServer}
	default:
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", truncate(string(body), 200)),
		}
	}
}

func (c *Client) storeQuery() url.Values {
	q := url.Values{}
	q.Set("cc", c.cfg.Region)
	q.Set("currency", c.cfg.Currency)
	return q
}

// AppDetails fetches a single app's store page data.
// An app Steam reports as unsuccessful yields an error matching ErrNotFound.
func (c *Client) AppDetails(ctx context.Context, appID string) (*AppDetails, error) {
	const op = "appdetails"

	q := c.storeQuery()
	q.Set("appids", appID)

	body, err := c.doRequest(ctx, c.cfg.StoreURL, "/appdetails", q)
	if err != nil {
		return nil, c.fail(op, appID, err)
	}

	var envelopes map[string]appDetailsEnvelope
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, c.fail(op, appID, malformed(op, appID, err))
	}

	env, ok := envelopes[appID]
	if !ok || !env.Success || len(env.Data) == 0 {
		return nil, c.fail(op, appID, &UpstreamError{Op: op, AppID: appID, StatusCode: 200, Err: ErrNotFound})
	}

	var details AppDetails
	if err := json.Unmarshal(env.Data, &details); err != nil {
		return nil, c.fail(op, appID, malformed(op, appID, err))
	}
	if err := c.validate.Validate(details); err != nil {
		return nil, c.fail(op, appID, malformed(op, appID, err))
	}

	return &details, nil
}

// FeaturedCategories fetches the store's category buckets.
func (c *Client) FeaturedCategories(ctx context.Context) (*FeaturedCategories, error) {
	const op = "featuredcategories"

	body, err := c.doRequest(ctx, c.cfg.StoreURL, "/featuredcategories", c.storeQuery())
	if err != nil {
		return nil, c.fail(op, "", err)
	}

	var out FeaturedCategories
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, c.fail(op, "", malformed(op, "", err))
	}
	return &out, nil
}

// Featured fetches the store's featured lists.
func (c *Client) Featured(ctx context.Context) (*Featured, error) {
	const op = "featured"

	body, err := c.doRequest(ctx, c.cfg.StoreURL, "/featured", c.storeQuery())
	if err != nil {
		return nil, c.fail(op, "", err)
	}

	var out Featured
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, c.fail(op, "", malformed(op, "", err))
	}
	return &out, nil
}

// Search runs a store search for term.
func (c *Client) Search(ctx context.Context, term string) (*StoreSearch, error) {
	const op = "storesearch"

	q := url.Values{}
	q.Set("term", term)
	q.Set("l", "english")
	q.Set("cc", c.cfg.Region)

	body, err := c.doRequest(ctx, c.cfg.StoreURL, "/storesearch", q)
	if err != nil {
		return nil, c.fail(op, "", err)
	}

	var out StoreSearch
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, c.fail(op, "", malformed(op, "", err))
	}
	return &out, nil
}

// CurrentPlayers returns the live player count for an app.
func (c *Client) CurrentPlayers(ctx context.Context, appID string) (int, error) {
	const op = "players"

	q := url.Values{}
	q.Set("appid", appID)
	if c.cfg.APIKey != "" {
		q.Set("key", c.cfg.APIKey)
	}

	body, err := c.doRequest(ctx, c.cfg.WebURL, "/ISteamUserStats/GetNumberOfCurrentPlayers/v1/", q)
	if err != nil {
		return 0, c.fail(op, appID, err)
	}

	var out playerCountResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, c.fail(op, appID, malformed(op, appID, err))
	}
	if out.Response.Result != 1 {
		return 0, c.fail(op, appID, &UpstreamError{Op: op, AppID: appID, StatusCode: 200, Err: ErrNotFound})
	}
	return out.Response.PlayerCount, nil
}

// Image downloads an image (header art) for local processing.
// It bypasses the breaker: CDN failures say nothing about the store API.
func (c *Client) Image(ctx context.Context, imageURL string) ([]byte, error) {
	const op = "image"

	u, err := url.Parse(imageURL)
	if err != nil || u.Host == "" {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("invalid image url %q", imageURL)}
	}

	if err := c.limiter.Wait(ctx, u.Host); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: ErrServer}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return data, nil
}

// fail attaches context to err and logs it.
func (c *Client) fail(op, appID string, err error) error {
	err = withContext(op, appID, err)
	if errors.Is(err, ErrNotFound) {
		c.logger.Debug("steam lookup found nothing", "op", op, "app_id", appID)
	} else {
		c.logger.Warn("steam call failed", "op", op, "app_id", appID, "error", err)
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
