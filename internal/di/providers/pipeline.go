package providers

import (
	"github.com/samber/do/v2"

	"github.com/muzaapp/muza-server/internal/catalog"
	"github.com/muzaapp/muza-server/internal/enrich"
	"github.com/muzaapp/muza-server/internal/ingest"
	"github.com/muzaapp/muza-server/internal/logger"
	"github.com/muzaapp/muza-server/internal/metadata/musicbrainz"
	"github.com/muzaapp/muza-server/internal/storage"
	"github.com/muzaapp/muza-server/internal/tags"
)

// ProvideExtractor provides the FLAC tag extractor.
func ProvideExtractor(i do.Injector) (*tags.Extractor, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return tags.NewExtractor(log.Logger), nil
}

// ProvideCoordinator provides the metadata enrichment coordinator.
func ProvideCoordinator(i do.Injector) (*enrich.Coordinator, error) {
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*musicbrainz.Client](i)
	scraper := do.MustInvoke[*musicbrainz.Scraper](i)
	covers := do.MustInvoke[*musicbrainz.CoverArtClient](i)
	files := do.MustInvoke[*storage.FileStore](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	return enrich.NewCoordinator(client, scraper, covers, files, cacheHandle.Cache, log.Logger), nil
}

// ProvidePipeline provides the ingestion pipeline.
func ProvidePipeline(i do.Injector) (*ingest.Pipeline, error) {
	log := do.MustInvoke[*logger.Logger](i)
	files := do.MustInvoke[*storage.FileStore](i)
	extractor := do.MustInvoke[*tags.Extractor](i)
	coordinator := do.MustInvoke[*enrich.Coordinator](i)
	resolver := do.MustInvoke[*catalog.Resolver](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)

	return ingest.NewPipeline(files, extractor, coordinator, resolver,
		storeHandle.Store, indexHandle.Index, log.Logger), nil
}
