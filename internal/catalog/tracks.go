package catalog

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/muzaapp/muza-server/internal/domain"
)

// CreateTrack inserts a new track. The caller assigns the ID.
func (s *Store) CreateTrack(ctx context.Context, track *domain.Track) error {
	now := time.Now()
	track.CreatedAt = now
	track.UpdatedAt = now

	genres, err := encodeStrings(track.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}
	credits, err := encodeStrings(track.Credits)
	if err != nil {
		return fmt.Errorf("encode credits: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tracks (id, title, artist_id, album_id, track_number, disc_number,
		                     duration, year_recorded, song_url, composer, genres, credits,
		                     created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		track.ID, track.Title, nullableString(track.ArtistID), nullableString(track.AlbumID),
		track.TrackNumber, track.DiscNumber, track.Duration, track.YearRecorded,
		track.SongURL, track.Composer, genres, credits,
		formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("insert track %s: %w", track.ID, err)
	}
	return nil
}

// GetTrack fetches a track by ID.
func (s *Store) GetTrack(ctx context.Context, trackID string) (*domain.Track, error) {
	row := s.db.QueryRowContext(ctx, selectTrack+` WHERE id = ?`, trackID)
	return scanTrack(row)
}

// ListTracksByAlbum returns an album's tracks in playing order.
func (s *Store) ListTracksByAlbum(ctx context.Context, albumID string) ([]domain.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		selectTrack+` WHERE album_id = ? ORDER BY disc_number, track_number, title`, albumID)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

// ListRecentTracks returns the latest ingested tracks, newest first.
func (s *Store) ListRecentTracks(ctx context.Context, limit int) ([]domain.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		selectTrack+` ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent tracks: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

const selectTrack = `SELECT id, title, artist_id, album_id, track_number, disc_number,
       duration, year_recorded, song_url, composer, genres, credits, created_at, updated_at
  FROM tracks`

func collectTracks(rows *sql.Rows) ([]domain.Track, error) {
	var tracks []domain.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *track)
	}
	return tracks, rows.Err()
}

func scanTrack(row scanner) (*domain.Track, error) {
	var track domain.Track
	var artistID, albumID sql.NullString
	var genres, credits string
	var created, updated string
	err := row.Scan(&track.ID, &track.Title, &artistID, &albumID,
		&track.TrackNumber, &track.DiscNumber, &track.Duration, &track.YearRecorded,
		&track.SongURL, &track.Composer, &genres, &credits, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan track: %w", err)
	}
	track.ArtistID = artistID.String
	track.AlbumID = albumID.String
	track.Genres = decodeStrings(genres)
	track.Credits = decodeStrings(credits)
	track.CreatedAt = parseTime(created)
	track.UpdatedAt = parseTime(updated)
	return &track, nil
}

func encodeStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeStrings(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}
