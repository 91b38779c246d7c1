package musicbrainz

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/muzaapp/muza-server/internal/ratelimit"
)

const (
	defaultCoverArtBaseURL = "https://coverartarchive.org"

	// Covers larger than this are rejected rather than buffered.
	maxCoverSize = 20 << 20 // 20MB
)

// CoverArtClient fetches release cover images from the Cover Art Archive.
// It shares the outbound pacing limiter with the API client.
type CoverArtClient struct {
	http      *http.Client
	limiter   ratelimit.Limiter
	logger    *slog.Logger
	baseURL   string
	userAgent string
}

// coverArtResponse is the Cover Art Archive release listing.
type coverArtResponse struct {
	Images []coverArtImage `json:"images"`
}

type coverArtImage struct {
	Front      bool              `json:"front"`
	Image      string            `json:"image"`
	Thumbnails map[string]string `json:"thumbnails,omitzero"`
}

// NewCoverArtClient creates a Cover Art Archive client.
func NewCoverArtClient(baseURL, userAgent string, timeout time.Duration, limiter ratelimit.Limiter, logger *slog.Logger) *CoverArtClient {
	if baseURL == "" {
		baseURL = defaultCoverArtBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CoverArtClient{
		http:      &http.Client{Timeout: timeout},
		limiter:   limiter,
		logger:    logger,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

// FrontCoverURL returns the URL of the release's front cover. When no image
// is flagged as front, the first listed image is used. Releases without any
// cover return ErrNotFound.
func (c *CoverArtClient) FrontCoverURL(ctx context.Context, releaseID string) (string, error) {
	if uuid.Validate(releaseID) != nil {
		return "", wrapError("frontCoverURL", releaseID, ErrInvalidMBID)
	}

	body, err := c.get(ctx, c.baseURL+"/release/"+releaseID, "application/json")
	if err != nil {
		return "", wrapError("frontCoverURL", releaseID, err)
	}

	var resp coverArtResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", wrapError("frontCoverURL", releaseID, fmt.Errorf("decode response: %w", err))
	}
	if len(resp.Images) == 0 {
		return "", wrapError("frontCoverURL", releaseID, ErrNotFound)
	}

	for _, img := range resp.Images {
		if img.Front && img.Image != "" {
			return img.Image, nil
		}
	}
	return resp.Images[0].Image, nil
}

// DownloadCover fetches the image bytes at url. Returns the bytes and the
// Content-Type reported by the server.
func (c *CoverArtClient) DownloadCover(ctx context.Context, url string) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxCoverSize {
		return nil, "", fmt.Errorf("cover exceeds %d bytes", maxCoverSize)
	}

	c.logger.Debug("cover downloaded", "url", url, "bytes", len(data))
	return data, resp.Header.Get("Content-Type"), nil
}

// get performs one paced request following Cover Art Archive redirects.
func (c *CoverArtClient) get(ctx context.Context, url, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
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
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
