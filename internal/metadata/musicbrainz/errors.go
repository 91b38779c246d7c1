package musicbrainz

import (
	"errors"
	"fmt"
)

// Sentinel errors for MusicBrainz operations.
var (
	ErrNotFound    = errors.New("musicbrainz: not found")
	ErrRateLimited = errors.New("musicbrainz: rate limited by server")
	ErrBadRequest  = errors.New("musicbrainz: bad request")
	ErrServer      = errors.New("musicbrainz: server error")
	ErrInvalidMBID = errors.New("musicbrainz: invalid MBID format")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op   string // Operation: "lookupRecording", "searchRecordings", ...
	MBID string // If applicable
	Err  error
}

func (e *Error) Error() string {
	if e.MBID != "" {
		return fmt.Sprintf("musicbrainz %s [%s]: %v", e.Op, e.MBID, e.Err)
	}
	return fmt.Sprintf("musicbrainz %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, mbid string, err error) error {
	return &Error{Op: op, MBID: mbid, Err: err}
}

// IsNotFound reports whether the error means the entity does not exist on
// MusicBrainz, as opposed to a transport or server failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// isRetriable reports whether another attempt may succeed. Client-side
// mistakes and missing entities never benefit from a retry.
func isRetriable(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidMBID):
		return false
	default:
		return true
	}
}
