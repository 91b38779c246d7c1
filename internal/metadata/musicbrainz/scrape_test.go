package musicbrainz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/muzaapp/muza-server/internal/ratelimit"
)

const releasePage = `<!DOCTYPE html>
<html><body>
<div class="annotation"><div class="annotation-body">Recorded at <b>Columbia 30th Street Studio</b>.</div></div>
<table class="tbl medium">
<tbody>
<tr class="odd">
  <td class="pos">1</td>
  <td class="title">
    <a href="/track/aaa"><bdi>So What</bdi></a>
    <div class="ars-wrapper">
      <dl class="ars">
        <dt>trumpet:</dt><dd><a><bdi>Miles Davis</bdi></a></dd>
        <dt>piano:</dt><dd><a><bdi>Bill Evans</bdi></a></dd>
        <dt>tenor saxophone:</dt>
        <dd><a><bdi>John Coltrane</bdi></a></dd>
        <dd><a><bdi>Cannonball Adderley</bdi></a></dd>
      </dl>
    </div>
  </td>
  <td class="treleases">9:22</td>
</tr>
<tr class="even">
  <td class="pos">2</td>
  <td class="title"><a href="/track/bbb"><bdi>Freddie Freeloader</bdi></a></td>
  <td class="treleases">9:46</td>
</tr>
</tbody>
</table>
</body></html>`

func parsePage(t *testing.T, page string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestFindTrackCredits(t *testing.T) {
	doc := parsePage(t, releasePage)

	credits := findTrackCredits(doc, "so what")
	if credits == nil {
		t.Fatal("findTrackCredits() = nil, want credits for So What")
	}
	if credits.Track != "So What" {
		t.Errorf("Track = %q", credits.Track)
	}

	want := []string{
		"trumpet: Miles Davis",
		"piano: Bill Evans",
		"tenor saxophone: John Coltrane, Cannonball Adderley",
	}
	if len(credits.Credits) != len(want) {
		t.Fatalf("Credits = %v, want %v", credits.Credits, want)
	}
	for i := range want {
		if credits.Credits[i] != want[i] {
			t.Errorf("Credits[%d] = %q, want %q", i, credits.Credits[i], want[i])
		}
	}
}

func TestFindTrackCreditsNoCreditRows(t *testing.T) {
	doc := parsePage(t, releasePage)

	// Freddie Freeloader is listed but has no relationship lines.
	if got := findTrackCredits(doc, "Freddie Freeloader"); got != nil {
		t.Errorf("findTrackCredits() = %+v, want nil", got)
	}
}

func TestFindTrackCreditsUnknownTrack(t *testing.T) {
	doc := parsePage(t, releasePage)
	if got := findTrackCredits(doc, "Blue in Green"); got != nil {
		t.Errorf("findTrackCredits() = %+v, want nil", got)
	}
}

func TestExtractAnnotation(t *testing.T) {
	doc := parsePage(t, releasePage)
	got := extractAnnotation(doc)
	if !strings.Contains(got, "Columbia 30th Street Studio") {
		t.Errorf("annotation = %q", got)
	}
	// The <b> markup converts to Markdown emphasis.
	if !strings.Contains(got, "**Columbia 30th Street Studio**") {
		t.Errorf("annotation not converted to Markdown: %q", got)
	}
}

func newTestScraper(t *testing.T, handler http.Handler, search releaseSearcher) *Scraper {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewScraper(srv.URL, "MuzaServer/test", time.Second, ratelimit.Noop{}, search, testLogger())
}

func TestScrapeRelease(t *testing.T) {
	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/release/f268b8bc-2768-426b-901b-c7966e76de29/disc/1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(releasePage))
	}), nil)

	credits, err := scraper.ScrapeRelease(context.Background(), "f268b8bc-2768-426b-901b-c7966e76de29", "So What")
	if err != nil {
		t.Fatalf("ScrapeRelease() error = %v", err)
	}
	if len(credits.Credits) != 3 {
		t.Errorf("Credits = %v", credits.Credits)
	}
	if credits.AnnotationMD == "" {
		t.Error("AnnotationMD should carry the release annotation")
	}
}

func TestScrapeReleaseNoMatch(t *testing.T) {
	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(releasePage))
	}), nil)

	_, err := scraper.ScrapeRelease(context.Background(), "f268b8bc-2768-426b-901b-c7966e76de29", "Blue in Green")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// fakeSearcher serves canned release search results.
type fakeSearcher struct {
	releases []Release
	err      error
}

func (f *fakeSearcher) SearchReleases(context.Context, string, string) ([]Release, error) {
	return f.releases, f.err
}

func TestScrapeBySearch(t *testing.T) {
	search := &fakeSearcher{releases: []Release{
		{ID: "11111111-1111-4111-8111-111111111111", Title: "Kind of Blue"},
		{ID: "f268b8bc-2768-426b-901b-c7966e76de29", Title: "Kind of Blue"},
	}}

	// The first candidate's page carries no performer data; the second does.
	bareTracklist := `<html><body><table class="tbl"><tbody>
		<tr><td class="pos">1</td><td class="title"><a><bdi>So What</bdi></a></td></tr>
	</tbody></table></body></html>`

	var scrapedPaths []string
	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scrapedPaths = append(scrapedPaths, r.URL.Path)
		if strings.Contains(r.URL.Path, "11111111") {
			w.Write([]byte(bareTracklist))
			return
		}
		w.Write([]byte(releasePage))
	}), search)

	credits, err := scraper.ScrapeBySearch(context.Background(), "Miles Davis", "Kind of Blue", "So What")
	if err != nil {
		t.Fatalf("ScrapeBySearch() error = %v", err)
	}
	if credits.Track != "So What" {
		t.Errorf("Track = %q", credits.Track)
	}
	if len(scrapedPaths) != 2 {
		t.Errorf("scraped paths = %v, want both candidates tried in order", scrapedPaths)
	}
}

func TestScrapeBySearchTriesEditionTitles(t *testing.T) {
	// Release search is fuzzy; an edition-titled candidate must still be
	// scraped rather than skipped on a title mismatch.
	search := &fakeSearcher{releases: []Release{
		{ID: "f268b8bc-2768-426b-901b-c7966e76de29", Title: "Kind of Blue (Legacy Edition)"},
	}}

	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(releasePage))
	}), search)

	credits, err := scraper.ScrapeBySearch(context.Background(), "Miles Davis", "Kind of Blue", "So What")
	if err != nil {
		t.Fatalf("ScrapeBySearch() error = %v", err)
	}
	if len(credits.Credits) != 3 {
		t.Errorf("Credits = %v", credits.Credits)
	}
}

func TestScrapeBySearchNoResults(t *testing.T) {
	scraper := newTestScraper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(releasePage))
	}), &fakeSearcher{})

	_, err := scraper.ScrapeBySearch(context.Background(), "Miles Davis", "Kind of Blue", "Blue in Green")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), `"Blue in Green"`) {
		t.Errorf("error should name the track, got %v", err)
	}
}

func TestHasClass(t *testing.T) {
	doc := parsePage(t, `<table class="tbl medium"></table>`)
	table := findFirst(doc, isElement("table"))
	if table == nil {
		t.Fatal("table not parsed")
	}
	if !hasClass(table, "tbl") {
		t.Error("hasClass(tbl) = false")
	}
	if !hasClass(table, "medium") {
		t.Error("hasClass(medium) = false")
	}
	if hasClass(table, "med") {
		t.Error("hasClass(med) should not match a substring")
	}
}
