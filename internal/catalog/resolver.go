package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/muzaapp/muza-server/internal/domain"
	"github.com/muzaapp/muza-server/internal/id"
)

// Resolver finds or creates the artist and album a track belongs to.
//
// Find-or-create is a read followed by an insert without a surrounding
// transaction. Two concurrent ingests of the same new artist can both miss
// the read and create duplicate rows; the store serializes writes, so both
// inserts succeed. Library-scale ingest makes this harmless in practice.
type Resolver struct {
	store  *Store
	logger *slog.Logger
}

func NewResolver(store *Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// ResolveArtist returns the existing artist by case- and accent-insensitive
// name match, creating one if none exists. An empty name resolves to nil.
func (r *Resolver) ResolveArtist(ctx context.Context, name string) (*domain.Artist, error) {
	if name == "" {
		return nil, nil
	}

	artist, err := r.store.GetArtistByName(ctx, name)
	if err == nil {
		return artist, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	artist = &domain.Artist{
		ID:   id.NewArtistID(),
		Name: name,
	}
	if err := r.store.CreateArtist(ctx, artist); err != nil {
		return nil, err
	}
	r.logger.Info("created artist", "artist_id", artist.ID, "name", artist.Name)
	return artist, nil
}

// ResolveAlbum returns the album matching the record's album title under the
// given artist, creating one if none exists. Album-level fields from the
// record — label, years, cover, annotation, MusicBrainz ID — are written only
// when the album is first created; an existing album keeps its values. The
// returned existed flag reports whether the album predated this call.
func (r *Resolver) ResolveAlbum(ctx context.Context, rec *domain.TagRecord, artistID string) (*domain.Album, bool, error) {
	if rec.Album == "" {
		return nil, false, nil
	}

	album, err := r.store.GetAlbumByTitle(ctx, rec.Album, artistID)
	if err == nil {
		return album, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	album = &domain.Album{
		ID:            id.NewAlbumID(),
		Title:         rec.Album,
		ArtistID:      artistID,
		Label:         rec.Label,
		YearReleased:  rec.YearReleased,
		OriginalYear:  rec.YearRecorded,
		CoverURL:      rec.CoverURL,
		CoverBlurHash: rec.CoverBlurHash,
		AnnotationMD:  rec.AnnotationMD,
		MusicBrainzID: rec.ReleaseID,
	}
	if err := r.store.CreateAlbum(ctx, album); err != nil {
		return nil, false, err
	}
	r.logger.Info("created album", "album_id", album.ID, "title", album.Title, "artist_id", artistID)
	return album, false, nil
}
