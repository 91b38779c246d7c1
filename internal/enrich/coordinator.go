// Package enrich fills the gaps in extracted tag metadata from MusicBrainz.
// Enrichment is strictly best-effort: every external failure is logged and
// swallowed, and the caller always gets back a usable record.
package enrich

import (
	"context"
	"log/slog"

	"github.com/muzaapp/muza-server/internal/domain"
	"github.com/muzaapp/muza-server/internal/genre"
	"github.com/muzaapp/muza-server/internal/media/images"
	"github.com/muzaapp/muza-server/internal/metadata/musicbrainz"
	"github.com/muzaapp/muza-server/internal/normalize"
	"github.com/muzaapp/muza-server/internal/storage"
)

// recordingSource is the slice of the MusicBrainz client the coordinator
// uses to identify a recording.
type recordingSource interface {
	LookupRecording(ctx context.Context, mbid string) (*musicbrainz.Recording, error)
	SearchRecordings(ctx context.Context, title, artist string) ([]musicbrainz.Recording, error)
}

// creditsSource recovers per-track performer credits from release pages.
type creditsSource interface {
	ScrapeRelease(ctx context.Context, releaseID, trackTitle string) (*musicbrainz.TrackCredits, error)
	ScrapeBySearch(ctx context.Context, artist, albumTitle, trackTitle string) (*musicbrainz.TrackCredits, error)
}

// coverSource resolves and downloads release cover art.
type coverSource interface {
	FrontCoverURL(ctx context.Context, releaseID string) (string, error)
	DownloadCover(ctx context.Context, url string) ([]byte, string, error)
}

// coverStore persists a downloaded cover and returns its public URL.
type coverStore interface {
	SaveCover(ctx context.Context, data []byte, artist, album, mimeType string) (*storage.StoredFile, error)
}

// metadataCache is an advisory cache over MusicBrainz responses. A nil
// cache disables caching.
type metadataCache interface {
	GetRecording(mbid string, out any) bool
	SetRecording(mbid string, value any)
	GetSearch(terms []string, out any) bool
	SetSearch(terms []string, value any)
	GetCredits(releaseID, trackTitle string, out any) bool
	SetCredits(releaseID, trackTitle string, value any)
}

// Coordinator runs the enrichment chain: identify the recording, scrape
// performer credits, resolve cover art, then merge everything into the
// record under a local-wins policy.
type Coordinator struct {
	source  recordingSource
	scraper creditsSource
	covers  coverSource
	files   coverStore
	cache   metadataCache
	logger  *slog.Logger
}

func NewCoordinator(source recordingSource, scraper creditsSource, covers coverSource,
	files coverStore, cache metadataCache, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		source:  source,
		scraper: scraper,
		covers:  covers,
		files:   files,
		cache:   cache,
		logger:  logger,
	}
}

// strategy attempts to identify the recording behind a record. A nil
// result with a nil error means the strategy does not apply.
type strategy func(ctx context.Context, rec *domain.TagRecord) (*musicbrainz.Recording, error)

// Enrich fills absent fields of rec from MusicBrainz. It never fails: on
// any error the record is returned as far along as enrichment got. Fields
// already present in rec are never overwritten.
func (c *Coordinator) Enrich(ctx context.Context, rec *domain.TagRecord) *domain.TagRecord {
	recording := c.identify(ctx, rec)

	remote := &domain.TagRecord{}
	if recording != nil {
		remote = c.recordFrom(recording, rec)
	}

	// The release to scrape and fetch cover art for: embedded tag wins,
	// then the release matched during identification.
	releaseID := rec.ReleaseID
	if releaseID == "" {
		releaseID = remote.ReleaseID
	}

	c.addCredits(ctx, rec, remote, releaseID)
	c.addCover(ctx, rec, remote, releaseID)

	rec.Merge(remote)
	return rec
}

// identify walks the strategy chain and returns the first recording found.
func (c *Coordinator) identify(ctx context.Context, rec *domain.TagRecord) *musicbrainz.Recording {
	strategies := []strategy{c.lookupByID, c.searchByText}

	for _, s := range strategies {
		recording, err := s(ctx, rec)
		if err != nil {
			c.logger.Warn("recording identification failed",
				"title", rec.Title, "error", err)
			continue
		}
		if recording != nil {
			return recording
		}
	}
	return nil
}

func (c *Coordinator) lookupByID(ctx context.Context, rec *domain.TagRecord) (*musicbrainz.Recording, error) {
	if rec.RecordingID == "" {
		return nil, nil
	}

	var cached musicbrainz.Recording
	if c.cache != nil && c.cache.GetRecording(rec.RecordingID, &cached) {
		return &cached, nil
	}

	recording, err := c.source.LookupRecording(ctx, rec.RecordingID)
	if err != nil {
		if musicbrainz.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if c.cache != nil {
		c.cache.SetRecording(rec.RecordingID, recording)
	}
	return recording, nil
}

func (c *Coordinator) searchByText(ctx context.Context, rec *domain.TagRecord) (*musicbrainz.Recording, error) {
	if rec.Title == "" || rec.Artist == "" {
		return nil, nil
	}

	terms := []string{"recording", rec.Title, rec.Artist}

	var recordings []musicbrainz.Recording
	if c.cache == nil || !c.cache.GetSearch(terms, &recordings) {
		var err error
		recordings, err = c.source.SearchRecordings(ctx, rec.Title, rec.Artist)
		if err != nil {
			if musicbrainz.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		if c.cache != nil {
			c.cache.SetSearch(terms, recordings)
		}
	}

	if len(recordings) == 0 {
		return nil, nil
	}
	return &recordings[0], nil
}

// recordFrom maps a recording onto a TagRecord. When the local record names
// an album, only a release with that exact folded title contributes
// release-level fields; the album qualifier filters candidates rather than
// widening the search.
func (c *Coordinator) recordFrom(recording *musicbrainz.Recording, local *domain.TagRecord) *domain.TagRecord {
	remote := &domain.TagRecord{
		Title:       recording.Title,
		Artist:      recording.CreditedName(),
		RecordingID: recording.ID,
		ArtistMBID:  recording.CreditedArtist().ID,
	}
	if recording.Length > 0 {
		remote.Duration = (recording.Length + 500) / 1000
	}
	if year := yearOfDate(recording.FirstReleaseDate); year > 0 {
		remote.YearRecorded = year
	}
	tagNames := make([]string, 0, len(recording.Tags))
	for _, tag := range recording.Tags {
		tagNames = append(tagNames, tag.Name)
	}
	remote.Genres = genre.Normalize(tagNames)

	if release := pickRelease(recording.Releases, local.Album); release != nil {
		remote.Album = release.Title
		remote.ReleaseID = release.ID
		remote.Label = release.LabelName()
		remote.YearReleased = release.Year()
	}
	return remote
}

// pickRelease selects the release whose title matches the wanted album
// after case folding, or the first release when no album is wanted.
func pickRelease(releases []musicbrainz.Release, wantAlbum string) *musicbrainz.Release {
	if len(releases) == 0 {
		return nil
	}
	if wantAlbum == "" {
		return &releases[0]
	}
	for i := range releases {
		if normalize.EqualFold(releases[i].Title, wantAlbum) {
			return &releases[i]
		}
	}
	return nil
}

// addCredits scrapes performer credits into remote. With a known release ID
// the release page is scraped directly; otherwise a release search drives
// the scrape.
func (c *Coordinator) addCredits(ctx context.Context, rec, remote *domain.TagRecord, releaseID string) {
	if rec.Title == "" || len(rec.Credits) > 0 {
		return
	}

	var credits *musicbrainz.TrackCredits
	var err error

	switch {
	case releaseID != "":
		var cached musicbrainz.TrackCredits
		if c.cache != nil && c.cache.GetCredits(releaseID, rec.Title, &cached) {
			credits = &cached
			break
		}
		credits, err = c.scraper.ScrapeRelease(ctx, releaseID, rec.Title)
		if err == nil && c.cache != nil {
			c.cache.SetCredits(releaseID, rec.Title, credits)
		}
	case rec.Artist != "" && rec.Album != "":
		credits, err = c.scraper.ScrapeBySearch(ctx, rec.Artist, rec.Album, rec.Title)
	default:
		return
	}

	if err != nil {
		c.logger.Warn("credits scrape failed", "title", rec.Title, "error", err)
		return
	}
	if credits == nil {
		return
	}
	remote.Credits = credits.Credits
	remote.AnnotationMD = credits.AnnotationMD
}

// addCover resolves cover art. Skipped entirely when the record already
// carries a cover or no release is known, so at most one cover fetch
// happens per ingestion.
func (c *Coordinator) addCover(ctx context.Context, rec, remote *domain.TagRecord, releaseID string) {
	if rec.HasCover() || releaseID == "" {
		return
	}

	coverURL, err := c.covers.FrontCoverURL(ctx, releaseID)
	if err != nil {
		if !musicbrainz.IsNotFound(err) {
			c.logger.Warn("cover art lookup failed", "release_id", releaseID, "error", err)
		}
		return
	}

	data, mimeType, err := c.covers.DownloadCover(ctx, coverURL)
	if err != nil {
		c.logger.Warn("cover art download failed", "url", coverURL, "error", err)
		return
	}

	artist := rec.Artist
	if artist == "" {
		artist = remote.Artist
	}
	album := rec.Album
	if album == "" {
		album = remote.Album
	}

	stored, err := c.files.SaveCover(ctx, data, artist, album, mimeType)
	if err != nil {
		c.logger.Warn("cover art store failed", "release_id", releaseID, "error", err)
		return
	}
	remote.CoverURL = stored.URL
	remote.CoverName = stored.Name
	remote.CoverMIME = mimeType

	if hash, err := images.ComputeBlurHash(data); err == nil {
		remote.CoverBlurHash = hash
	} else {
		c.logger.Warn("blurhash computation failed", "release_id", releaseID, "error", err)
	}
}

func yearOfDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	if year < 1900 || year > 2100 {
		return 0
	}
	return year
}
