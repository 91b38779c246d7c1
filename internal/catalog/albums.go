package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/muzaapp/muza-server/internal/domain"
	"github.com/muzaapp/muza-server/internal/normalize"
)

// CreateAlbum inserts a new album. The caller assigns the ID.
func (s *Store) CreateAlbum(ctx context.Context, album *domain.Album) error {
	now := time.Now()
	album.CreatedAt = now
	album.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO albums (id, title, title_key, artist_id, label, year_released,
		                     original_year, cover_url, cover_blurhash, annotation_md,
		                     musicbrainz_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		album.ID, album.Title, normalize.Key(album.Title), nullableString(album.ArtistID),
		album.Label, album.YearReleased, album.OriginalYear, album.CoverURL,
		album.CoverBlurHash, album.AnnotationMD, album.MusicBrainzID,
		formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("insert album %s: %w", album.ID, err)
	}
	return nil
}

// GetAlbum fetches an album by ID.
func (s *Store) GetAlbum(ctx context.Context, albumID string) (*domain.Album, error) {
	row := s.db.QueryRowContext(ctx, selectAlbum+` WHERE id = ?`, albumID)
	return scanAlbum(row)
}

// GetAlbumByTitle fetches an album by title under an artist, case and
// accent insensitive. artistID may be empty for orphan albums.
func (s *Store) GetAlbumByTitle(ctx context.Context, title, artistID string) (*domain.Album, error) {
	row := s.db.QueryRowContext(ctx,
		selectAlbum+` WHERE title_key = ? AND artist_id IS ? LIMIT 1`,
		normalize.Key(title), nullableString(artistID))
	return scanAlbum(row)
}

// ListAlbumsByArtist returns an artist's albums, newest release first.
func (s *Store) ListAlbumsByArtist(ctx context.Context, artistID string) ([]domain.Album, error) {
	rows, err := s.db.QueryContext(ctx,
		selectAlbum+` WHERE artist_id = ? ORDER BY year_released DESC, title_key`, artistID)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []domain.Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, *album)
	}
	return albums, rows.Err()
}

const selectAlbum = `SELECT id, title, artist_id, label, year_released, original_year,
       cover_url, cover_blurhash, annotation_md, musicbrainz_id, created_at, updated_at
  FROM albums`

func scanAlbum(row scanner) (*domain.Album, error) {
	var album domain.Album
	var artistID sql.NullString
	var created, updated string
	err := row.Scan(&album.ID, &album.Title, &artistID, &album.Label,
		&album.YearReleased, &album.OriginalYear, &album.CoverURL,
		&album.CoverBlurHash, &album.AnnotationMD, &album.MusicBrainzID,
		&created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan album: %w", err)
	}
	album.ArtistID = artistID.String
	album.CreatedAt = parseTime(created)
	album.UpdatedAt = parseTime(updated)
	return &album, nil
}

// nullableString maps "" to NULL so optional references stay honest.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
