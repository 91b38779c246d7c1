// Package cache provides a TTL cache for external metadata lookups.
//
// MusicBrainz allows roughly one call per second, so every avoided lookup
// matters. Entries expire server-side via Badger TTLs; a miss simply falls
// through to the network.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const (
	recordingPrefix = "mb:recording:"
	searchPrefix    = "mb:search:"
	creditsPrefix   = "mb:credits:"

	// Direct MBID lookups are stable; search results and scrapes drift as
	// MusicBrainz is edited.
	recordingTTL = 7 * 24 * time.Hour
	searchTTL    = 24 * time.Hour
	creditsTTL   = 7 * 24 * time.Hour
)

// Cache is a Badger-backed TTL cache. The zero value is not usable; call
// Open.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the cache at dir.
func Open(dir string, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache at %s: %w", dir, err)
	}
	return &Cache{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetRecording returns the cached value for a recording lookup, decoded
// into out. ok is false on a miss.
func (c *Cache) GetRecording(mbid string, out any) (ok bool) {
	return c.get(recordingPrefix+mbid, out)
}

// SetRecording caches a recording lookup result.
func (c *Cache) SetRecording(mbid string, value any) {
	c.set(recordingPrefix+mbid, value, recordingTTL)
}

// GetSearch returns the cached result for a search identified by its terms.
func (c *Cache) GetSearch(terms []string, out any) (ok bool) {
	return c.get(searchPrefix+hashTerms(terms), out)
}

// SetSearch caches a search result.
func (c *Cache) SetSearch(terms []string, value any) {
	c.set(searchPrefix+hashTerms(terms), value, searchTTL)
}

// GetCredits returns cached scraped credits for a release/track pair.
func (c *Cache) GetCredits(releaseID, trackTitle string, out any) (ok bool) {
	return c.get(creditsPrefix+hashTerms([]string{releaseID, trackTitle}), out)
}

// SetCredits caches scraped credits.
func (c *Cache) SetCredits(releaseID, trackTitle string, value any) {
	c.set(creditsPrefix+hashTerms([]string{releaseID, trackTitle}), value, creditsTTL)
}

// get decodes the stored JSON for key into out. Decode failures are treated
// as misses; the entry will be rewritten on the next set.
func (c *Cache) get(key string, out any) bool {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Debug("cache read failed", "key", key, "error", err)
		}
		return false
	}
	return true
}

// set stores value as JSON under key with the given TTL. Failures are
// logged and swallowed; the cache is advisory.
func (c *Cache) set(key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// hashTerms produces a fixed-size key segment from free-form search terms.
func hashTerms(terms []string) string {
	h := sha256.New()
	for _, t := range terms {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
