// Package ingest runs the upload pipeline: store audio, extract tags,
// enrich, resolve catalog entities, persist the track.
package ingest

import (
	"context"
	"log/slog"

	"github.com/muzaapp/muza-server/internal/domain"
	apperrors "github.com/muzaapp/muza-server/internal/errors"
	"github.com/muzaapp/muza-server/internal/id"
	"github.com/muzaapp/muza-server/internal/media/images"
	"github.com/muzaapp/muza-server/internal/search"
	"github.com/muzaapp/muza-server/internal/storage"
	"github.com/muzaapp/muza-server/internal/tags"
)

type extractor interface {
	Extract(ctx context.Context, path string) (*domain.TagRecord, error)
}

type enricher interface {
	Enrich(ctx context.Context, rec *domain.TagRecord) *domain.TagRecord
}

type entityResolver interface {
	ResolveArtist(ctx context.Context, name string) (*domain.Artist, error)
	ResolveAlbum(ctx context.Context, rec *domain.TagRecord, artistID string) (*domain.Album, bool, error)
}

type trackStore interface {
	CreateTrack(ctx context.Context, track *domain.Track) error
}

type fileStore interface {
	SaveAudio(ctx context.Context, data []byte, originalName string) (*storage.StoredFile, error)
	SaveCover(ctx context.Context, data []byte, artist, album, mimeType string) (*storage.StoredFile, error)
	LocalPath(relPath string) string
}

type indexer interface {
	IndexDocument(doc *search.Document) error
}

// Result is what a completed ingestion produced.
type Result struct {
	Track    *domain.Track     `json:"track"`
	Artist   *domain.Artist    `json:"artist,omitzero"`
	Album    *domain.Album     `json:"album,omitzero"`
	Metadata *domain.TagRecord `json:"metadata"`
}

// Pipeline ingests FLAC uploads. Steps run in a fixed order; enrichment is
// best-effort while storage, extraction, and persistence failures abort.
type Pipeline struct {
	files     fileStore
	extractor extractor
	enricher  enricher
	resolver  entityResolver
	store     trackStore
	index     indexer
	logger    *slog.Logger
}

func NewPipeline(files fileStore, ex extractor, en enricher, resolver entityResolver,
	store trackStore, index indexer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		files:     files,
		extractor: ex,
		enricher:  en,
		resolver:  resolver,
		store:     store,
		index:     index,
		logger:    logger,
	}
}

// Ingest processes one uploaded file.
//
// A failure after the audio is stored leaves the file behind; there is no
// compensating delete. The orphan is logged and accepted.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, filename string) (*Result, error) {
	if !tags.IsFlac(filename) {
		return nil, apperrors.UnsupportedFileTypef("unsupported file type %q, only FLAC is accepted", filename)
	}

	stored, err := p.files.SaveAudio(ctx, data, filename)
	if err != nil {
		return nil, err
	}

	rec, err := p.extractor.Extract(ctx, p.files.LocalPath(stored.RelPath))
	if err != nil {
		p.logger.Error("tag extraction failed, stored audio is orphaned",
			"file", stored.RelPath, "error", err)
		return nil, err
	}
	rec.SongURL = stored.URL

	rec = p.enricher.Enrich(ctx, rec)
	p.saveEmbeddedCover(ctx, rec)

	artist, err := p.resolver.ResolveArtist(ctx, rec.Artist)
	if err != nil {
		return nil, apperrors.EntityPersistf("resolve artist %q", rec.Artist).WithCause(err)
	}
	artistID := ""
	if artist != nil {
		artistID = artist.ID
	}

	album, albumExisted, err := p.resolver.ResolveAlbum(ctx, rec, artistID)
	if err != nil {
		return nil, apperrors.EntityPersistf("resolve album %q", rec.Album).WithCause(err)
	}
	albumID := ""
	if album != nil {
		albumID = album.ID
	}

	// An existing album keeps its own cover; the upload's art must not
	// shadow it.
	if albumExisted {
		rec.CoverData = nil
		rec.CoverName = ""
		rec.CoverMIME = ""
		rec.CoverURL = ""
		rec.CoverBlurHash = ""
	}

	track := &domain.Track{
		ID:           id.NewTrackID(),
		Title:        rec.Title,
		ArtistID:     artistID,
		AlbumID:      albumID,
		TrackNumber:  rec.TrackNumber,
		DiscNumber:   rec.DiscNumber,
		Duration:     rec.Duration,
		YearRecorded: rec.YearRecorded,
		SongURL:      rec.SongURL,
		Composer:     rec.Composer,
		Genres:       rec.Genres,
		Credits:      rec.Credits,
	}
	if err := p.store.CreateTrack(ctx, track); err != nil {
		return nil, apperrors.EntityPersistf("persist track %q", rec.Title).WithCause(err)
	}

	p.indexEntities(track, artist, album)

	p.logger.Info("ingested track",
		"track_id", track.ID, "title", track.Title,
		"artist_id", artistID, "album_id", albumID)

	return &Result{Track: track, Artist: artist, Album: album, Metadata: rec}, nil
}

// saveEmbeddedCover stores cover bytes carried in the file's own tags. Runs
// after enrichment so a remotely fetched cover, which is stored by the
// coordinator, is not stored twice.
func (p *Pipeline) saveEmbeddedCover(ctx context.Context, rec *domain.TagRecord) {
	if len(rec.CoverData) == 0 || rec.CoverURL != "" {
		return
	}

	stored, err := p.files.SaveCover(ctx, rec.CoverData, rec.Artist, rec.Album, rec.CoverMIME)
	if err != nil {
		p.logger.Warn("embedded cover store failed", "error", err)
		return
	}
	rec.CoverURL = stored.URL
	rec.CoverName = stored.Name

	if hash, err := images.ComputeBlurHash(rec.CoverData); err == nil {
		rec.CoverBlurHash = hash
	}
}

// indexEntities updates the search index best-effort. Indexing replaces by
// ID, so re-indexing an existing artist or album is harmless.
func (p *Pipeline) indexEntities(track *domain.Track, artist *domain.Artist, album *domain.Album) {
	if p.index == nil {
		return
	}

	artistName := ""
	if artist != nil {
		artistName = artist.Name
	}
	albumTitle := ""
	if album != nil {
		albumTitle = album.Title
	}

	if err := p.index.IndexDocument(search.TrackDocument(track, artistName, albumTitle)); err != nil {
		p.logger.Warn("search index update failed", "track_id", track.ID, "error", err)
	}
	if artist != nil {
		if err := p.index.IndexDocument(search.ArtistDocument(artist)); err != nil {
			p.logger.Warn("search index update failed", "artist_id", artist.ID, "error", err)
		}
	}
	if album != nil {
		if err := p.index.IndexDocument(search.AlbumDocument(album, artistName)); err != nil {
			p.logger.Warn("search index update failed", "album_id", album.ID, "error", err)
		}
	}
}
