package musicbrainz

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/muzaapp/muza-server/internal/normalize"
	"github.com/muzaapp/muza-server/internal/ratelimit"
)

const defaultSiteBaseURL = "https://musicbrainz.org"

// TrackCredits holds what a release page yields for one track: the
// performer relationship lines rendered under the track title, plus the
// release annotation when present.
type TrackCredits struct {
	Track        string   // track title as rendered on the page
	Credits      []string // "instrument: performer" lines
	AnnotationMD string   // release annotation converted to Markdown
}

// releaseSearcher is the slice of Client the scraper needs to find
// candidate releases.
type releaseSearcher interface {
	SearchReleases(ctx context.Context, artist, release string) ([]Release, error)
}

// Scraper extracts per-track performer credits from MusicBrainz release
// pages. The web service does not expose these relationships on recording
// lookups, so the rendered page is the only source.
type Scraper struct {
	http      *http.Client
	limiter   ratelimit.Limiter
	logger    *slog.Logger
	search    releaseSearcher
	baseURL   string
	userAgent string
}

// NewScraper creates a release page scraper sharing the outbound limiter.
func NewScraper(siteBaseURL, userAgent string, timeout time.Duration, limiter ratelimit.Limiter, search releaseSearcher, logger *slog.Logger) *Scraper {
	if siteBaseURL == "" {
		siteBaseURL = defaultSiteBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Scraper{
		http:      &http.Client{Timeout: timeout},
		limiter:   limiter,
		logger:    logger,
		search:    search,
		baseURL:   strings.TrimRight(siteBaseURL, "/"),
		userAgent: userAgent,
	}
}

// ScrapeRelease fetches the release page and returns the credits for the
// track whose title matches trackTitle (case and accent insensitive).
// Returns ErrNotFound when the page has no matching track or the track has
// no credit lines.
func (s *Scraper) ScrapeRelease(ctx context.Context, releaseID, trackTitle string) (*TrackCredits, error) {
	if uuid.Validate(releaseID) != nil {
		return nil, wrapError("scrapeRelease", releaseID, ErrInvalidMBID)
	}

	// The disc/1 view renders the relationship lines for every track; the
	// bare release page collapses multi-disc tracklists.
	page, err := s.fetchPage(ctx, s.baseURL+"/release/"+releaseID+"/disc/1")
	if err != nil {
		return nil, wrapError("scrapeRelease", releaseID, err)
	}

	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, wrapError("scrapeRelease", releaseID, fmt.Errorf("parse page: %w", err))
	}

	credits := findTrackCredits(doc, trackTitle)
	if credits == nil {
		return nil, wrapError("scrapeRelease", releaseID,
			fmt.Errorf("%w: no performer credits for track %q", ErrNotFound, trackTitle))
	}

	credits.AnnotationMD = extractAnnotation(doc)
	s.logger.Debug("scraped track credits",
		"release", releaseID,
		"track", credits.Track,
		"credits", len(credits.Credits),
	)
	return credits, nil
}

// ScrapeBySearch finds candidate releases by artist and album title, then
// scrapes them in order until one yields credits for the track. Every
// candidate is tried: release search is fuzzy, and edition-titled releases
// ("... (Legacy Edition)") often carry the credits the plain title lacks.
// Returns ErrNotFound naming the track when no candidate works out.
func (s *Scraper) ScrapeBySearch(ctx context.Context, artist, albumTitle, trackTitle string) (*TrackCredits, error) {
	releases, err := s.search.SearchReleases(ctx, artist, albumTitle)
	if err != nil {
		return nil, wrapError("scrapeBySearch", "", err)
	}

	for _, rel := range releases {
		credits, err := s.ScrapeRelease(ctx, rel.ID, trackTitle)
		if err != nil {
			s.logger.Debug("release page had no usable credits",
				"release", rel.ID,
				"error", err,
			)
			continue
		}
		return credits, nil
	}

	return nil, wrapError("scrapeBySearch", "",
		fmt.Errorf("%w: no performer credits found for track %q", ErrNotFound, trackTitle))
}

// fetchPage performs one paced page request.
func (s *Scraper) fetchPage(ctx context.Context, url string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return string(body), nil
	case http.StatusNotFound:
		return "", ErrNotFound
	default:
		if resp.StatusCode >= 500 {
			return "", ErrServer
		}
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// findTrackCredits walks the tracklist tables looking for the row whose
// title cell matches trackTitle, and collects its relationship lines.
func findTrackCredits(doc *html.Node, trackTitle string) *TrackCredits {
	want := normalize.Key(trackTitle)

	for _, table := range findAll(doc, isElementWithClass("table", "tbl")) {
		for _, row := range findAll(table, isElement("tr")) {
			titleCell := findFirst(row, isElementWithClass("td", "title"))
			if titleCell == nil {
				continue
			}

			title := trackRowTitle(titleCell)
			if title == "" || normalize.Key(title) != want {
				continue
			}

			lines := creditLines(titleCell)
			if len(lines) == 0 {
				continue
			}
			return &TrackCredits{Track: title, Credits: lines}
		}
	}
	return nil
}

// trackRowTitle returns the rendered title of a tracklist row: the text of
// the first <bdi> under the title link.
func trackRowTitle(titleCell *html.Node) string {
	link := findFirst(titleCell, isElement("a"))
	if link == nil {
		return ""
	}
	bdi := findFirst(link, isElement("bdi"))
	if bdi == nil {
		return strings.TrimSpace(nodeText(link))
	}
	return strings.TrimSpace(nodeText(bdi))
}

// creditLines renders each dt/dd pair of the row's relationship list as
// "role: performer, performer".
func creditLines(titleCell *html.Node) []string {
	var lines []string
	for _, dl := range findAll(titleCell, isElementWithClass("dl", "ars")) {
		var role string
		var performers []string
		flush := func() {
			if role != "" && len(performers) > 0 {
				if !strings.HasSuffix(role, ":") {
					role += ":"
				}
				lines = append(lines, role+" "+strings.Join(performers, ", "))
			}
			role, performers = "", nil
		}
		for c := dl.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "dt":
				flush()
				role = strings.TrimSpace(nodeText(c))
			case "dd":
				if p := strings.TrimSpace(nodeText(c)); p != "" {
					performers = append(performers, p)
				}
			}
		}
		flush()
	}
	return lines
}

// extractAnnotation returns the release annotation as Markdown, or "".
func extractAnnotation(doc *html.Node) string {
	node := findFirst(doc, isElementWithClass("div", "annotation-body"))
	if node == nil {
		node = findFirst(doc, isElementWithClass("div", "annotation"))
	}
	if node == nil {
		return ""
	}

	raw := strings.TrimSpace(innerHTML(node))
	if raw == "" {
		return ""
	}
	if !containsHTML(raw) {
		return raw
	}
	md, err := htmltomarkdown.ConvertString(raw)
	if err != nil {
		return strings.TrimSpace(nodeText(node))
	}
	return strings.TrimSpace(md)
}

// containsHTMLRe matches anything that looks like markup worth converting.
var containsHTMLRe = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)

func containsHTML(s string) bool {
	return containsHTMLRe.MatchString(s)
}

// Tree-walk helpers.

type nodeMatcher func(*html.Node) bool

func isElement(name string) nodeMatcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name
	}
}

func isElementWithClass(name, class string) nodeMatcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name && hasClass(n, class)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func findFirst(n *html.Node, match nodeMatcher) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match nodeMatcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
			return // no nested matches inside a match
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseWhitespace(b.String())
}

func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
