package domain

// TagRecord is the working metadata record that flows through ingestion.
// It starts from the FLAC tags and is filled in by external enrichment.
//
// The zero value of a field means "absent". Merge never overwrites a
// populated field, so values read from the file always win over values
// fetched from external services.
type TagRecord struct {
	Title       string `json:"title,omitzero"`
	Artist      string `json:"artist,omitzero"`
	Album       string `json:"album,omitzero"`
	AlbumArtist string `json:"album_artist,omitzero"`
	Composer    string `json:"composer,omitzero"`
	Label       string `json:"label,omitzero"`

	TrackNumber int `json:"track_number,omitzero"`
	TrackTotal  int `json:"track_total,omitzero"`
	DiscNumber  int `json:"disc_number,omitzero"`
	DiscTotal   int `json:"disc_total,omitzero"`

	YearRecorded int `json:"year_recorded,omitzero"`
	YearReleased int `json:"year_released,omitzero"`
	Duration     int `json:"duration,omitzero"` // seconds

	Genres  []string `json:"genres,omitzero"`
	Comment string   `json:"comment,omitzero"`
	Lyrics  string   `json:"lyrics,omitzero"`

	// MusicBrainz identifiers, either embedded in the file or resolved
	// during enrichment.
	RecordingID string `json:"musicbrainz_recording_id,omitzero"`
	ReleaseID   string `json:"musicbrainz_release_id,omitzero"`
	ArtistMBID  string `json:"musicbrainz_artist_id,omitzero"`

	// Performer credits scraped from the release page, one line per credit.
	Credits []string `json:"credits,omitzero"`

	// AnnotationMD is the release annotation converted to Markdown.
	AnnotationMD string `json:"annotation_md,omitzero"`

	// Cover image, carried as raw bytes until storage assigns a URL.
	CoverData     []byte `json:"-"`
	CoverName     string `json:"cover_name,omitzero"`
	CoverMIME     string `json:"cover_mime,omitzero"`
	CoverURL      string `json:"cover_url,omitzero"`
	CoverBlurHash string `json:"cover_blurhash,omitzero"`

	// SongURL is set once the audio file has been stored.
	SongURL string `json:"song_url,omitzero"`
}

// Merge fills absent fields of the record from other. Populated fields are
// never replaced, including the cover.
func (r *TagRecord) Merge(other *TagRecord) {
	if other == nil {
		return
	}

	mergeString(&r.Title, other.Title)
	mergeString(&r.Artist, other.Artist)
	mergeString(&r.Album, other.Album)
	mergeString(&r.AlbumArtist, other.AlbumArtist)
	mergeString(&r.Composer, other.Composer)
	mergeString(&r.Label, other.Label)
	mergeString(&r.Comment, other.Comment)
	mergeString(&r.Lyrics, other.Lyrics)
	mergeString(&r.RecordingID, other.RecordingID)
	mergeString(&r.ReleaseID, other.ReleaseID)
	mergeString(&r.ArtistMBID, other.ArtistMBID)
	mergeString(&r.AnnotationMD, other.AnnotationMD)
	mergeString(&r.CoverName, other.CoverName)
	mergeString(&r.CoverMIME, other.CoverMIME)
	mergeString(&r.CoverURL, other.CoverURL)
	mergeString(&r.CoverBlurHash, other.CoverBlurHash)
	mergeString(&r.SongURL, other.SongURL)

	mergeInt(&r.TrackNumber, other.TrackNumber)
	mergeInt(&r.TrackTotal, other.TrackTotal)
	mergeInt(&r.DiscNumber, other.DiscNumber)
	mergeInt(&r.DiscTotal, other.DiscTotal)
	mergeInt(&r.YearRecorded, other.YearRecorded)
	mergeInt(&r.YearReleased, other.YearReleased)
	mergeInt(&r.Duration, other.Duration)

	if len(r.Genres) == 0 && len(other.Genres) > 0 {
		r.Genres = append([]string(nil), other.Genres...)
	}
	if len(r.Credits) == 0 && len(other.Credits) > 0 {
		r.Credits = append([]string(nil), other.Credits...)
	}
	if len(r.CoverData) == 0 && len(other.CoverData) > 0 {
		r.CoverData = append([]byte(nil), other.CoverData...)
	}
}

// HasCover reports whether the record carries cover image bytes or an
// already-resolved cover URL.
func (r *TagRecord) HasCover() bool {
	return len(r.CoverData) > 0 || r.CoverURL != ""
}

func mergeString(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

func mergeInt(dst *int, src int) {
	if *dst == 0 && src != 0 {
		*dst = src
	}
}
