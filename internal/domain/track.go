package domain

import "time"

// Track represents a single stored recording.
//
// ArtistID and AlbumID stay empty when the source file carried no usable
// artist or album tags; orphan tracks are still playable via SongURL.
type Track struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ArtistID     string    `json:"artist_id,omitzero"`
	AlbumID      string    `json:"album_id,omitzero"`
	TrackNumber  int       `json:"track_number,omitzero"`
	DiscNumber   int       `json:"disc_number,omitzero"`
	Duration     int       `json:"duration,omitzero"` // seconds
	YearRecorded int       `json:"year_recorded,omitzero"`
	SongURL      string    `json:"song_url"`
	Composer     string    `json:"composer,omitzero"`
	Genres       []string  `json:"genres,omitzero"`
	Credits      []string  `json:"credits,omitzero"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
