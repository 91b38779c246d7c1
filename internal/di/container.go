// Package di provides dependency injection configuration for the muza server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/muzaapp/muza-server/internal/catalog"
	"github.com/muzaapp/muza-server/internal/config"
	"github.com/muzaapp/muza-server/internal/di/providers"
	"github.com/muzaapp/muza-server/internal/enrich"
	"github.com/muzaapp/muza-server/internal/ingest"
	"github.com/muzaapp/muza-server/internal/logger"
	"github.com/muzaapp/muza-server/internal/metadata/musicbrainz"
	"github.com/muzaapp/muza-server/internal/ratelimit"
	"github.com/muzaapp/muza-server/internal/storage"
	"github.com/muzaapp/muza-server/internal/tags"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Persistence layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideResolver)
	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideFileStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Metadata layer
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideMusicBrainzClient)
	do.Provide(injector, providers.ProvideCoverArtClient)
	do.Provide(injector, providers.ProvideScraper)
	do.Provide(injector, providers.ProvideCoordinator)

	// Ingestion
	do.Provide(injector, providers.ProvideExtractor)
	do.Provide(injector, providers.ProvidePipeline)

	// Workers
	do.Provide(injector, providers.ProvideInboxWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*catalog.Resolver](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[*storage.FileStore](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*ratelimit.IntervalLimiter](injector)
	_ = do.MustInvoke[*musicbrainz.Client](injector)
	_ = do.MustInvoke[*musicbrainz.CoverArtClient](injector)
	_ = do.MustInvoke[*musicbrainz.Scraper](injector)
	_ = do.MustInvoke[*enrich.Coordinator](injector)
	_ = do.MustInvoke[*tags.Extractor](injector)
	_ = do.MustInvoke[*ingest.Pipeline](injector)

	// Workers
	_ = do.MustInvoke[*providers.InboxWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	_ = do.MustInvoke[*providers.MDNSServiceHandle](injector)

	// Repopulate the search index from the catalog after a mapping rebuild
	providers.ReindexIfEmpty(injector)

	return nil
}
