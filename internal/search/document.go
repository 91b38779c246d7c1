// Package search provides full-text search over the music catalog using
// Bleve. Tracks, artists, and albums share one index with type
// discrimination, so a single query covers the whole library.
package search

import (
	"github.com/muzaapp/muza-server/internal/domain"
)

// DocType discriminates the entity kind behind an index document.
type DocType string

const (
	DocTypeTrack  DocType = "track"
	DocTypeArtist DocType = "artist"
	DocTypeAlbum  DocType = "album"
)

// Document is the unified structure indexed by Bleve.
//
// Artist and album names are denormalized into track documents so one query
// matches a track by any of its text, without a join at search time.
type Document struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Name is the primary searchable text: track title, artist name,
	// or album title depending on Type.
	Name string `json:"name"`

	// Track fields, empty for other types.
	Artist   string   `json:"artist,omitempty"`
	Album    string   `json:"album,omitempty"`
	Composer string   `json:"composer,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Credits  []string `json:"credits,omitempty"`
	Duration int      `json:"duration,omitempty"` // seconds
	Year     int      `json:"year,omitempty"`

	// Album fields.
	Label string `json:"label,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names so the
// indexed fields match the mapping. Bleve would otherwise index the Go
// struct field names.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"created_at": d.CreatedAt,
	}
	if d.Artist != "" {
		m["artist"] = d.Artist
	}
	if d.Album != "" {
		m["album"] = d.Album
	}
	if d.Composer != "" {
		m["composer"] = d.Composer
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if len(d.Credits) > 0 {
		m["credits"] = d.Credits
	}
	if d.Duration > 0 {
		m["duration"] = d.Duration
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}
	if d.Label != "" {
		m["label"] = d.Label
	}
	return m
}

// TrackDocument builds the index document for a track. Artist and album
// names are passed in by the caller; the search package does not read the
// catalog.
func TrackDocument(track *domain.Track, artistName, albumTitle string) *Document {
	return &Document{
		ID:        track.ID,
		Type:      DocTypeTrack,
		Name:      track.Title,
		Artist:    artistName,
		Album:     albumTitle,
		Composer:  track.Composer,
		Genres:    track.Genres,
		Credits:   track.Credits,
		Duration:  track.Duration,
		Year:      track.YearRecorded,
		CreatedAt: track.CreatedAt.UnixMilli(),
	}
}

// ArtistDocument builds the index document for an artist.
func ArtistDocument(artist *domain.Artist) *Document {
	return &Document{
		ID:        artist.ID,
		Type:      DocTypeArtist,
		Name:      artist.Name,
		CreatedAt: artist.CreatedAt.UnixMilli(),
	}
}

// AlbumDocument builds the index document for an album.
func AlbumDocument(album *domain.Album, artistName string) *Document {
	return &Document{
		ID:        album.ID,
		Type:      DocTypeAlbum,
		Name:      album.Title,
		Artist:    artistName,
		Label:     album.Label,
		Year:      album.YearReleased,
		CreatedAt: album.CreatedAt.UnixMilli(),
	}
}
