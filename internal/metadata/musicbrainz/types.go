package musicbrainz

// Recording is a MusicBrainz recording with the relations this service
// consumes. Field names follow the ws/2 JSON representation.
type Recording struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Length           int            `json:"length,omitzero"` // milliseconds
	Score            int            `json:"score,omitzero"`  // search relevance, 0-100
	FirstReleaseDate string         `json:"first-release-date,omitzero"`
	ArtistCredit     []ArtistCredit `json:"artist-credit,omitzero"`
	Releases         []Release      `json:"releases,omitzero"`
	Tags             []Tag          `json:"tags,omitzero"`
}

// ArtistCredit is one credited artist on a recording or release.
type ArtistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase,omitzero"`
	Artist     Artist `json:"artist"`
}

// Artist is the credited MusicBrainz artist entity.
type Artist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SortName string `json:"sort-name,omitzero"`
}

// Release is a MusicBrainz release (an album edition).
type Release struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Status       string         `json:"status,omitzero"`
	Date         string         `json:"date,omitzero"`
	Country      string         `json:"country,omitzero"`
	Score        int            `json:"score,omitzero"`
	ArtistCredit []ArtistCredit `json:"artist-credit,omitzero"`
	LabelInfo    []LabelInfo    `json:"label-info,omitzero"`
}

// LabelInfo links a release to its label.
type LabelInfo struct {
	CatalogNumber string `json:"catalog-number,omitzero"`
	Label         Label  `json:"label"`
}

// Label is a record label entity.
type Label struct {
	ID   string `json:"id,omitzero"`
	Name string `json:"name"`
}

// Tag is a folksonomy tag with vote count.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitzero"`
}

// recordingSearchResponse is the envelope of a recording search.
type recordingSearchResponse struct {
	Count      int         `json:"count"`
	Offset     int         `json:"offset"`
	Recordings []Recording `json:"recordings"`
}

// releaseSearchResponse is the envelope of a release search.
type releaseSearchResponse struct {
	Count    int       `json:"count"`
	Offset   int       `json:"offset"`
	Releases []Release `json:"releases"`
}

// CreditedArtist returns the first credited artist, or the zero Artist when
// the credit list is empty.
func (r *Recording) CreditedArtist() Artist {
	if len(r.ArtistCredit) == 0 {
		return Artist{}
	}
	return r.ArtistCredit[0].Artist
}

// CreditedName joins all credited names with their join phrases, matching
// the display form MusicBrainz renders.
func (r *Recording) CreditedName() string {
	var name string
	for _, c := range r.ArtistCredit {
		name += c.Name + c.JoinPhrase
	}
	return name
}

// LabelName returns the first label name on the release, if any.
func (r *Release) LabelName() string {
	if len(r.LabelInfo) == 0 {
		return ""
	}
	return r.LabelInfo[0].Label.Name
}

// Year returns the four-digit year of the release date, or 0 when absent or
// malformed.
func (r *Release) Year() int {
	return yearOf(r.Date)
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}
