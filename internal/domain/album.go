package domain

import "time"

// Album represents a release grouping tracks under an artist.
type Album struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	ArtistID       string    `json:"artist_id,omitzero"`
	Label          string    `json:"label,omitzero"`
	YearReleased   int       `json:"year_released,omitzero"`
	OriginalYear   int       `json:"original_year,omitzero"`
	CoverURL       string    `json:"cover_url,omitzero"`
	CoverBlurHash  string    `json:"cover_blurhash,omitzero"`
	AnnotationMD   string    `json:"annotation_md,omitzero"`
	MusicBrainzID  string    `json:"musicbrainz_id,omitzero"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
