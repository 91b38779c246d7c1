package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/muzaapp/muza-server/internal/config"
	"github.com/muzaapp/muza-server/internal/logger"
	"github.com/muzaapp/muza-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.Open(search.Options{
		Path:   cfg.Storage.IndexPath,
		Logger: log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("search index ready", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// ReindexIfEmpty rebuilds the search index from the catalog when the index
// is empty but tracks exist, e.g. after a mapping version bump.
func ReindexIfEmpty(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	tracks, err := storeHandle.ListRecentTracks(ctx, 100000)
	if err != nil || len(tracks) == 0 {
		return
	}

	log.Info("search index is empty but tracks exist, reindexing", "tracks", len(tracks))

	go func() {
		docs := make([]*search.Document, 0, len(tracks))
		for n := range tracks {
			track := &tracks[n]
			artistName, albumTitle := "", ""
			if track.ArtistID != "" {
				if artist, err := storeHandle.GetArtist(ctx, track.ArtistID); err == nil {
					artistName = artist.Name
				}
			}
			if track.AlbumID != "" {
				if album, err := storeHandle.GetAlbum(ctx, track.AlbumID); err == nil {
					albumTitle = album.Title
				}
			}
			docs = append(docs, search.TrackDocument(track, artistName, albumTitle))
		}
		if err := indexHandle.IndexDocuments(docs); err != nil {
			log.Error("search reindex failed", "error", err)
			return
		}
		log.Info("search reindex completed", "documents", len(docs))
	}()
}
