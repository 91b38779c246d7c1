// Package musicbrainz provides a rate-limited MusicBrainz client covering
// the ws/2 JSON API, the Cover Art Archive, and release page scraping.
//
// All outbound calls share one pacing limiter. Lookups that find nothing
// return ErrNotFound; callers decide whether that degrades or aborts.
package musicbrainz

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/muzaapp/muza-server/internal/errors"
	"github.com/muzaapp/muza-server/internal/ratelimit"
)

const (
	defaultAPIBaseURL = "https://musicbrainz.org/ws/2"
	defaultTimeout    = 10 * time.Second
	defaultAttempts   = 3
	defaultBaseDelay  = time.Second
	defaultMaxDelay   = 10 * time.Second

	searchLimit = 5
)

// Config holds client settings, typically sourced from the application
// config.
type Config struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// Client is a rate-limited MusicBrainz web service client.
type Client struct {
	http      *http.Client
	limiter   ratelimit.Limiter
	logger    *slog.Logger
	sleeper   Sleeper
	baseURL   string
	userAgent string
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSleeper replaces the retry sleeper. Tests use this to avoid real
// backoff delays.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleeper = s }
}

// New creates a new MusicBrainz client.
func New(cfg Config, limiter ratelimit.Limiter, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		limiter:   limiter,
		logger:    logger,
		sleeper:   realSleeper{},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		attempts:  cfg.RetryAttempts,
		baseDelay: cfg.RetryBaseDelay,
		maxDelay:  cfg.RetryMaxDelay,
	}
	if c.baseURL == "" {
		c.baseURL = defaultAPIBaseURL
	}
	if c.attempts < 1 {
		c.attempts = defaultAttempts
	}
	if c.baseDelay <= 0 {
		c.baseDelay = defaultBaseDelay
	}
	if c.maxDelay <= 0 {
		c.maxDelay = defaultMaxDelay
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c.http = &http.Client{Timeout: timeout}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupRecording fetches a recording by MBID with artist credits,
// releases, and tags.
func (c *Client) LookupRecording(ctx context.Context, mbid string) (*Recording, error) {
	if uuid.Validate(mbid) != nil {
		return nil, wrapError("lookupRecording", mbid, ErrInvalidMBID)
	}

	query := url.Values{}
	query.Set("inc", "artist-credits+releases+tags")

	body, err := c.doRequest(ctx, "/recording/"+mbid, query)
	if err != nil {
		return nil, wrapError("lookupRecording", mbid, err)
	}

	var rec Recording
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, wrapError("lookupRecording", mbid, fmt.Errorf("decode response: %w", err))
	}
	return &rec, nil
}

// SearchRecordings searches recordings by title and artist name, best
// matches first. An empty result is returned as an empty slice, not an
// error.
func (c *Client) SearchRecordings(ctx context.Context, title, artist string) ([]Recording, error) {
	query := url.Values{}
	query.Set("query", luceneQuery(map[string]string{
		"recording": title,
		"artist":    artist,
	}))
	query.Set("limit", fmt.Sprint(searchLimit))

	body, err := c.doRequest(ctx, "/recording", query)
	if err != nil {
		return nil, wrapError("searchRecordings", "", err)
	}

	var resp recordingSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("searchRecordings", "", fmt.Errorf("decode response: %w", err))
	}
	return resp.Recordings, nil
}

// SearchReleases searches releases by artist and release title.
func (c *Client) SearchReleases(ctx context.Context, artist, release string) ([]Release, error) {
	query := url.Values{}
	query.Set("query", luceneQuery(map[string]string{
		"release": release,
		"artist":  artist,
	}))
	query.Set("limit", fmt.Sprint(searchLimit))

	body, err := c.doRequest(ctx, "/release", query)
	if err != nil {
		return nil, wrapError("searchReleases", "", err)
	}

	var resp releaseSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("searchReleases", "", fmt.Errorf("decode response: %w", err))
	}
	return resp.Releases, nil
}

// doRequest executes a paced GET against the web service, retrying
// transient failures with exponential backoff.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	query.Set("fmt", "json")
	reqURL := c.baseURL + path + "?" + query.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			delay := backoffDelay(attempt-1, c.baseDelay, c.maxDelay)
			c.logger.Debug("musicbrainz retry",
				"path", path,
				"attempt", attempt,
				"delay", delay,
			)
			if err := c.sleeper.Sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, err := c.fetch(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		if !isRetriable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, apperrors.ServiceUnavailablef("musicbrainz unavailable after %d attempts", c.attempts).WithCause(lastErr)
}

// fetch performs one paced request.
func (c *Client) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

// luceneQuery builds a fielded Lucene query with quoted, escaped values.
func luceneQuery(fields map[string]string) string {
	// Deterministic field order keeps queries cacheable and testable.
	order := []string{"recording", "release", "artist"}
	var parts []string
	for _, field := range order {
		value, ok := fields[field]
		if !ok || value == "" {
			continue
		}
		escaped := strings.ReplaceAll(value, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		parts = append(parts, field+`:"`+escaped+`"`)
	}
	return strings.Join(parts, " AND ")
}
