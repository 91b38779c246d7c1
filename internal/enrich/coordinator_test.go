package enrich

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/muzaapp/muza-server/internal/domain"
	"github.com/muzaapp/muza-server/internal/metadata/musicbrainz"
	"github.com/muzaapp/muza-server/internal/storage"
)

type fakeSource struct {
	lookupRecording *musicbrainz.Recording
	lookupErr       error
	lookupCalls     int

	searchResults []musicbrainz.Recording
	searchErr     error
	searchCalls   int
}

func (f *fakeSource) LookupRecording(ctx context.Context, mbid string) (*musicbrainz.Recording, error) {
	f.lookupCalls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.lookupRecording, nil
}

func (f *fakeSource) SearchRecordings(ctx context.Context, title, artist string) ([]musicbrainz.Recording, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

type fakeScraper struct {
	credits       *musicbrainz.TrackCredits
	err           error
	releaseCalls  int
	searchCalls   int
	lastReleaseID string
}

func (f *fakeScraper) ScrapeRelease(ctx context.Context, releaseID, trackTitle string) (*musicbrainz.TrackCredits, error) {
	f.releaseCalls++
	f.lastReleaseID = releaseID
	return f.credits, f.err
}

func (f *fakeScraper) ScrapeBySearch(ctx context.Context, artist, albumTitle, trackTitle string) (*musicbrainz.TrackCredits, error) {
	f.searchCalls++
	return f.credits, f.err
}

type fakeCovers struct {
	url           string
	data          []byte
	mime          string
	err           error
	urlCalls      int
	downloadCalls int
}

func (f *fakeCovers) FrontCoverURL(ctx context.Context, releaseID string) (string, error) {
	f.urlCalls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func (f *fakeCovers) DownloadCover(ctx context.Context, url string) ([]byte, string, error) {
	f.downloadCalls++
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.mime, nil
}

type fakeFiles struct {
	saved     []byte
	saveCalls int
	err       error
}

func (f *fakeFiles) SaveCover(ctx context.Context, data []byte, artist, album, mimeType string) (*storage.StoredFile, error) {
	f.saveCalls++
	f.saved = data
	if f.err != nil {
		return nil, f.err
	}
	return &storage.StoredFile{
		Name:    "cover_test.jpg",
		RelPath: "covers/cover_test.jpg",
		URL:     "http://localhost:5002/files/covers/cover_test.jpg",
	}, nil
}

func testRecording() *musicbrainz.Recording {
	return &musicbrainz.Recording{
		ID:               "rec-mbid-1",
		Title:            "So What",
		Length:           545000,
		FirstReleaseDate: "1959-08-17",
		ArtistCredit: []musicbrainz.ArtistCredit{
			{Name: "Miles Davis", Artist: musicbrainz.Artist{ID: "artist-mbid-1", Name: "Miles Davis"}},
		},
		Releases: []musicbrainz.Release{
			{ID: "rel-1", Title: "Kind of Blue", Date: "1959-08-17",
				LabelInfo: []musicbrainz.LabelInfo{{Label: musicbrainz.Label{Name: "Columbia"}}}},
			{ID: "rel-2", Title: "The Essential Miles Davis", Date: "2001-01-01"},
		},
		Tags: []musicbrainz.Tag{{Name: "jazz", Count: 10}},
	}
}

func newCoordinator(source *fakeSource, scraper *fakeScraper, covers *fakeCovers, files *fakeFiles) *Coordinator {
	return NewCoordinator(source, scraper, covers, files, nil, slog.New(slog.DiscardHandler))
}

func TestEnrichLocalWins(t *testing.T) {
	source := &fakeSource{lookupRecording: testRecording()}
	c := newCoordinator(source, &fakeScraper{}, &fakeCovers{err: musicbrainz.ErrNotFound}, &fakeFiles{})

	rec := &domain.TagRecord{
		Title:       "So What (album version)",
		Artist:      "Miles Davis Sextet",
		RecordingID: "rec-mbid-1",
	}
	got := c.Enrich(context.Background(), rec)

	if got.Title != "So What (album version)" {
		t.Errorf("Title = %q, local value should win", got.Title)
	}
	if got.Artist != "Miles Davis Sextet" {
		t.Errorf("Artist = %q, local value should win", got.Artist)
	}
	if got.Album != "Kind of Blue" {
		t.Errorf("Album = %q, want filled from remote", got.Album)
	}
	if got.Label != "Columbia" {
		t.Errorf("Label = %q, want Columbia", got.Label)
	}
	if got.YearRecorded != 1959 {
		t.Errorf("YearRecorded = %d, want 1959", got.YearRecorded)
	}
	if got.Duration != 545 {
		t.Errorf("Duration = %d, want 545", got.Duration)
	}
	if len(got.Genres) != 1 || got.Genres[0] != "jazz" {
		t.Errorf("Genres = %v, want [jazz]", got.Genres)
	}
}

func TestEnrichAlbumFiltersReleases(t *testing.T) {
	source := &fakeSource{lookupRecording: testRecording()}
	scraper := &fakeScraper{}
	c := newCoordinator(source, scraper, &fakeCovers{err: musicbrainz.ErrNotFound}, &fakeFiles{})

	rec := &domain.TagRecord{
		Title:       "So What",
		RecordingID: "rec-mbid-1",
		Album:       "the essential miles davis",
	}
	got := c.Enrich(context.Background(), rec)

	if got.ReleaseID != "rel-2" {
		t.Errorf("ReleaseID = %q, want the release matching the local album title", got.ReleaseID)
	}
	if scraper.lastReleaseID != "rel-2" {
		t.Errorf("scraped release = %q, want rel-2", scraper.lastReleaseID)
	}
}

func TestEnrichAlbumWithNoMatchingRelease(t *testing.T) {
	source := &fakeSource{lookupRecording: testRecording()}
	covers := &fakeCovers{}
	c := newCoordinator(source, &fakeScraper{}, covers, &fakeFiles{})

	rec := &domain.TagRecord{
		Title:       "So What",
		RecordingID: "rec-mbid-1",
		Album:       "Some Bootleg",
	}
	got := c.Enrich(context.Background(), rec)

	if got.ReleaseID != "" {
		t.Errorf("ReleaseID = %q, want empty when no release matches the album", got.ReleaseID)
	}
	if covers.urlCalls != 0 {
		t.Errorf("cover lookups = %d, want 0 without a release id", covers.urlCalls)
	}
}

func TestEnrichFallsBackToSearch(t *testing.T) {
	source := &fakeSource{searchResults: []musicbrainz.Recording{*testRecording()}}
	c := newCoordinator(source, &fakeScraper{}, &fakeCovers{err: musicbrainz.ErrNotFound}, &fakeFiles{})

	rec := &domain.TagRecord{Title: "So What", Artist: "Miles Davis"}
	got := c.Enrich(context.Background(), rec)

	if source.lookupCalls != 0 {
		t.Errorf("lookup calls = %d, want 0 without a recording id", source.lookupCalls)
	}
	if source.searchCalls != 1 {
		t.Errorf("search calls = %d, want 1", source.searchCalls)
	}
	if got.RecordingID != "rec-mbid-1" {
		t.Errorf("RecordingID = %q, want filled from search result", got.RecordingID)
	}
}

func TestEnrichLookupFailureFallsThrough(t *testing.T) {
	source := &fakeSource{
		lookupErr:     errors.New("boom"),
		searchResults: []musicbrainz.Recording{*testRecording()},
	}
	c := newCoordinator(source, &fakeScraper{}, &fakeCovers{err: musicbrainz.ErrNotFound}, &fakeFiles{})

	rec := &domain.TagRecord{Title: "So What", Artist: "Miles Davis", RecordingID: "rec-mbid-1"}
	got := c.Enrich(context.Background(), rec)

	if source.searchCalls != 1 {
		t.Errorf("search calls = %d, want fallback after lookup failure", source.searchCalls)
	}
	if got.Album != "Kind of Blue" {
		t.Errorf("Album = %q, want enrichment from search result", got.Album)
	}
}

func TestEnrichNeverFails(t *testing.T) {
	source := &fakeSource{lookupErr: errors.New("down"), searchErr: errors.New("down")}
	scraper := &fakeScraper{err: errors.New("down")}
	covers := &fakeCovers{err: errors.New("down")}
	c := newCoordinator(source, scraper, covers, &fakeFiles{})

	rec := &domain.TagRecord{Title: "So What", Artist: "Miles Davis", RecordingID: "rec-mbid-1"}
	got := c.Enrich(context.Background(), rec)

	if got.Title != "So What" || got.Artist != "Miles Davis" {
		t.Errorf("record mutated on total failure: %+v", got)
	}
}

func TestEnrichCoverStored(t *testing.T) {
	source := &fakeSource{lookupRecording: testRecording()}
	covers := &fakeCovers{
		url:  "https://coverartarchive.org/release/rel-1/front.jpg",
		data: []byte{0xFF, 0xD8, 0xFF, 0x01},
		mime: "image/jpeg",
	}
	files := &fakeFiles{}
	c := newCoordinator(source, &fakeScraper{}, covers, files)

	rec := &domain.TagRecord{Title: "So What", RecordingID: "rec-mbid-1"}
	got := c.Enrich(context.Background(), rec)

	if covers.urlCalls != 1 || covers.downloadCalls != 1 {
		t.Errorf("cover calls = (%d, %d), want one lookup and one download",
			covers.urlCalls, covers.downloadCalls)
	}
	if files.saveCalls != 1 {
		t.Errorf("cover saves = %d, want 1", files.saveCalls)
	}
	if got.CoverURL != "http://localhost:5002/files/covers/cover_test.jpg" {
		t.Errorf("CoverURL = %q", got.CoverURL)
	}
	if got.CoverMIME != "image/jpeg" {
		t.Errorf("CoverMIME = %q, want image/jpeg", got.CoverMIME)
	}
}

func TestEnrichSkipsCoverWhenEmbedded(t *testing.T) {
	source := &fakeSource{lookupRecording: testRecording()}
	covers := &fakeCovers{}
	c := newCoordinator(source, &fakeScraper{}, covers, &fakeFiles{})

	rec := &domain.TagRecord{
		Title:       "So What",
		RecordingID: "rec-mbid-1",
		CoverData:   []byte{0xFF, 0xD8, 0xFF},
	}
	c.Enrich(context.Background(), rec)

	if covers.urlCalls != 0 || covers.downloadCalls != 0 {
		t.Errorf("cover calls = (%d, %d), want none with an embedded cover",
			covers.urlCalls, covers.downloadCalls)
	}
}

func TestEnrichCreditsFromRelease(t *testing.T) {
	source := &fakeSource{lookupRecording: testRecording()}
	scraper := &fakeScraper{credits: &musicbrainz.TrackCredits{
		Track:        "So What",
		Credits:      []string{"trumpet: Miles Davis", "piano: Bill Evans"},
		AnnotationMD: "Recorded in 1959.",
	}}
	c := newCoordinator(source, scraper, &fakeCovers{err: musicbrainz.ErrNotFound}, &fakeFiles{})

	rec := &domain.TagRecord{Title: "So What", RecordingID: "rec-mbid-1"}
	got := c.Enrich(context.Background(), rec)

	if scraper.releaseCalls != 1 {
		t.Errorf("release scrapes = %d, want 1", scraper.releaseCalls)
	}
	if len(got.Credits) != 2 {
		t.Errorf("Credits = %v, want two lines", got.Credits)
	}
	if got.AnnotationMD != "Recorded in 1959." {
		t.Errorf("AnnotationMD = %q", got.AnnotationMD)
	}
}

func TestEnrichCreditsBySearchWithoutRelease(t *testing.T) {
	scraper := &fakeScraper{credits: &musicbrainz.TrackCredits{
		Track:   "So What",
		Credits: []string{"trumpet: Miles Davis"},
	}}
	c := newCoordinator(&fakeSource{}, scraper, &fakeCovers{}, &fakeFiles{})

	rec := &domain.TagRecord{Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue"}
	got := c.Enrich(context.Background(), rec)

	if scraper.searchCalls != 1 {
		t.Errorf("search scrapes = %d, want 1 when no release id is known", scraper.searchCalls)
	}
	if scraper.releaseCalls != 0 {
		t.Errorf("release scrapes = %d, want 0", scraper.releaseCalls)
	}
	if len(got.Credits) != 1 {
		t.Errorf("Credits = %v", got.Credits)
	}
}
