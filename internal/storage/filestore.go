// Package storage persists uploaded audio and cover images and assigns
// their public URLs.
//
// Audio is always written locally so later pipeline steps can re-read the
// stream. When object storage is configured, files are mirrored there as
// well, and a CDN domain (when set) takes over the public URL.
package storage

import (
	"context"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/muzaapp/muza-server/internal/errors"
	"github.com/muzaapp/muza-server/internal/util"
)

// Stored object key prefixes.
const (
	audioPrefix  = "audio/"
	coversPrefix = "covers/"
)

// StoredFile describes a persisted object.
type StoredFile struct {
	Name    string // file name within its prefix
	RelPath string // prefix + name, the storage key
	URL     string // public URL
}

// FileStore coordinates local and remote backends.
type FileStore struct {
	local     *LocalBackend
	remote    *S3Backend // nil when object storage is not configured
	logger    *slog.Logger
	baseURL   string
	cdnDomain string
}

// NewFileStore creates the store. remote may be nil.
func NewFileStore(local *LocalBackend, remote *S3Backend, baseURL, cdnDomain string, logger *slog.Logger) *FileStore {
	return &FileStore{
		local:     local,
		remote:    remote,
		logger:    logger,
		baseURL:   strings.TrimRight(baseURL, "/"),
		cdnDomain: strings.TrimSuffix(strings.TrimPrefix(cdnDomain, "https://"), "/"),
	}
}

// SaveAudio stores an uploaded audio payload under a fresh UUID name,
// keeping the original extension.
func (s *FileStore) SaveAudio(ctx context.Context, data []byte, originalName string) (*StoredFile, error) {
	ext := strings.ToLower(path.Ext(originalName))
	name := uuid.NewString() + ext
	rel := audioPrefix + name

	if err := s.local.Save(rel, data); err != nil {
		return nil, apperrors.Storagef("store audio file %s", name).WithCause(err)
	}
	s.mirror(ctx, rel, data, mime.TypeByExtension(ext))

	return &StoredFile{Name: name, RelPath: rel, URL: s.fileURL(rel)}, nil
}

// SaveCover stores a cover image named after its artist and album plus a
// fresh UUID. The random token keeps concurrent or repeated ingests of the
// same album from clobbering each other's stored bytes.
func (s *FileStore) SaveCover(ctx context.Context, data []byte, artist, album, mimeType string) (*StoredFile, error) {
	name := util.CoverFilename(artist, album, uuid.NewString(), imageExt(data, mimeType))
	rel := coversPrefix + name

	if err := s.local.Save(rel, data); err != nil {
		return nil, apperrors.Storagef("store cover %s", name).WithCause(err)
	}
	s.mirror(ctx, rel, data, mimeType)

	return &StoredFile{Name: name, RelPath: rel, URL: s.fileURL(rel)}, nil
}

// LocalPath returns the absolute path of a stored file for re-reading.
func (s *FileStore) LocalPath(relPath string) string {
	return s.local.Path(relPath)
}

// LocalRoot returns the directory the HTTP layer serves under /files/.
func (s *FileStore) LocalRoot() string {
	return s.local.Root()
}

// mirror uploads to object storage when configured. Mirror failures are
// logged, not fatal; the local copy remains authoritative.
func (s *FileStore) mirror(ctx context.Context, rel string, data []byte, contentType string) {
	if s.remote == nil {
		return
	}
	if err := s.remote.Save(ctx, rel, data, contentType); err != nil {
		s.logger.Warn("object storage mirror failed", "key", rel, "error", err)
	}
}

// fileURL builds the public URL for a stored object. With a CDN configured,
// keys under the known prefixes map directly under the CDN host; anything
// else falls back to the server's own /files/ route.
func (s *FileStore) fileURL(rel string) string {
	if s.cdnDomain != "" && (strings.HasPrefix(rel, audioPrefix) || strings.HasPrefix(rel, coversPrefix)) {
		return "https://" + s.cdnDomain + "/" + rel
	}
	return s.baseURL + "/files/" + rel
}

// imageExt derives the stored extension for an image, sniffing the payload
// header before trusting the declared MIME type.
func imageExt(data []byte, mimeType string) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpg"
	case len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return "png"
	}
	switch strings.ToLower(mimeType) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}
