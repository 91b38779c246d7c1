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

// CreateArtist inserts a new artist. The caller assigns the ID.
func (s *Store) CreateArtist(ctx context.Context, artist *domain.Artist) error {
	now := time.Now()
	artist.CreatedAt = now
	artist.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artists (id, name, name_key, photo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		artist.ID, artist.Name, normalize.Key(artist.Name), artist.PhotoURL,
		formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("insert artist %s: %w", artist.ID, err)
	}
	return nil
}

// GetArtist fetches an artist by ID.
func (s *Store) GetArtist(ctx context.Context, artistID string) (*domain.Artist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, photo_url, created_at, updated_at
		 FROM artists WHERE id = ?`, artistID)
	return scanArtist(row)
}

// GetArtistByName fetches an artist by name, case and accent insensitive.
func (s *Store) GetArtistByName(ctx context.Context, name string) (*domain.Artist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, photo_url, created_at, updated_at
		 FROM artists WHERE name_key = ? LIMIT 1`, normalize.Key(name))
	return scanArtist(row)
}

// ListArtists returns all artists ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]domain.Artist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, photo_url, created_at, updated_at
		 FROM artists ORDER BY name_key`)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	var artists []domain.Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, *artist)
	}
	return artists, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArtist(row scanner) (*domain.Artist, error) {
	var artist domain.Artist
	var created, updated string
	err := row.Scan(&artist.ID, &artist.Name, &artist.PhotoURL, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan artist: %w", err)
	}
	artist.CreatedAt = parseTime(created)
	artist.UpdatedAt = parseTime(updated)
	return &artist, nil
}
