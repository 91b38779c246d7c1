// Package tags extracts metadata from uploaded FLAC files.
//
// Typed tag accessors cover the common fields; MusicBrainz identifiers,
// labels, and "n/total" position strings come from the raw Vorbis comment
// map. The stream duration is read natively from the STREAMINFO block.
package tags

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/google/uuid"

	"github.com/muzaapp/muza-server/internal/domain"
	apperrors "github.com/muzaapp/muza-server/internal/errors"
	"github.com/muzaapp/muza-server/internal/normalize"
)

// Years outside this window are treated as tagging mistakes and dropped.
const (
	minYear = 1900
	maxYear = 2100
)

// Extractor reads TagRecords from FLAC payloads.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a tag extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract reads the file at path. The extension must be .flac.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.TagRecord, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from our own storage layer
	if err != nil {
		return nil, apperrors.Storagef("read audio file %s", filepath.Base(path)).WithCause(err)
	}
	return e.ExtractBytes(ctx, data, filepath.Base(path))
}

// ExtractBytes reads tags from an in-memory FLAC payload. filename is used
// only for the extension check and error messages.
func (e *Extractor) ExtractBytes(_ context.Context, data []byte, filename string) (*domain.TagRecord, error) {
	if !IsFlac(filename) {
		return nil, apperrors.UnsupportedFileTypef("unsupported file type %q, only FLAC is accepted", filepath.Ext(filename))
	}

	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.MetadataExtraction("could not parse FLAC metadata").WithCause(err)
	}

	rec := &domain.TagRecord{
		Title:       normalize.Clean(m.Title()),
		Artist:      normalize.Clean(m.Artist()),
		Album:       normalize.Clean(m.Album()),
		AlbumArtist: normalize.Clean(m.AlbumArtist()),
		Composer:    normalize.Clean(m.Composer()),
		Comment:     normalize.Clean(m.Comment()),
		Lyrics:      normalize.Clean(m.Lyrics()),
		Genres:      splitGenres(m.Genre()),
	}

	raw := m.Raw()
	rec.Label = firstRaw(raw, "label", "organization")

	rec.TrackNumber, rec.TrackTotal = positionPair(raw, "tracknumber", "tracktotal", m.Track)
	rec.DiscNumber, rec.DiscTotal = positionPair(raw, "discnumber", "disctotal", m.Disc)

	rec.YearRecorded = parseYear(firstRaw(raw, "date", "year"))
	rec.YearReleased = parseYear(firstRaw(raw, "originaldate", "original_year"))
	if rec.YearReleased == 0 {
		rec.YearReleased = rec.YearRecorded
	}

	rec.RecordingID = validMBID(firstRaw(raw, "musicbrainz_trackid", "musicbrainz_releasetrackid"))
	rec.ReleaseID = validMBID(firstRaw(raw, "musicbrainz_albumid"))
	rec.ArtistMBID = validMBID(firstRaw(raw, "musicbrainz_artistid", "musicbrainz_albumartistid"))

	// CoverName is assigned when the image is actually stored; the file
	// store owns the naming.
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		rec.CoverData = pic.Data
		rec.CoverMIME = pic.MIMEType
	}

	if seconds, err := flacDuration(bytes.NewReader(data)); err == nil {
		rec.Duration = seconds
	} else {
		e.logger.Debug("could not read stream duration", "file", filename, "error", err)
	}

	e.logger.Debug("extracted tags",
		"file", filename,
		"title", rec.Title,
		"artist", rec.Artist,
		"album", rec.Album,
	)
	return rec, nil
}

// IsFlac reports whether the file name carries a FLAC extension.
func IsFlac(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".flac")
}

// firstRaw returns the first non-empty raw Vorbis comment among keys.
func firstRaw(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok {
				if s = normalize.Clean(s); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// positionPair resolves a track or disc position. Raw comments win so that
// "3/12" style values parse with their totals; the typed accessor is the
// fallback.
func positionPair(raw map[string]any, numKey, totalKey string, typed func() (int, int)) (num, total int) {
	num, total = parsePosition(firstRaw(raw, numKey))
	if t := parseIntDefault(firstRaw(raw, totalKey)); t > 0 {
		total = t
	}
	if num == 0 {
		num, _ = typed()
	}
	if total == 0 {
		_, total = typed()
	}
	return num, total
}

// parsePosition parses "3" or "3/12" into number and optional total.
func parsePosition(s string) (num, total int) {
	if s == "" {
		return 0, 0
	}
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		return parseIntDefault(s[:idx]), parseIntDefault(s[idx+1:])
	}
	return parseIntDefault(s), 0
}

func parseIntDefault(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseYear takes the leading four digits of a date value. Implausible
// years are dropped rather than stored.
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year < minYear || year > maxYear {
		return 0
	}
	return year
}

// validMBID returns s when it is a well-formed UUID, else "".
func validMBID(s string) string {
	if uuid.Validate(s) != nil {
		return ""
	}
	return s
}

// splitGenres splits a genre comment on common separators, preserving
// order.
func splitGenres(genre string) []string {
	genre = normalize.Clean(genre)
	if genre == "" {
		return nil
	}
	parts := strings.FieldsFunc(genre, func(r rune) bool {
		return r == ';' || r == '/'
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
