package providers

import (
	"github.com/samber/do/v2"

	"github.com/muzaapp/muza-server/internal/cache"
	"github.com/muzaapp/muza-server/internal/catalog"
	"github.com/muzaapp/muza-server/internal/config"
	"github.com/muzaapp/muza-server/internal/logger"
)

// StoreHandle wraps the catalog store with shutdown capability.
type StoreHandle struct {
	*catalog.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite catalog store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	store, err := catalog.Open(cfg.Storage.DatabasePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("catalog database opened", "path", cfg.Storage.DatabasePath)
	return &StoreHandle{Store: store}, nil
}

// ProvideResolver provides the artist/album find-or-create resolver.
func ProvideResolver(i do.Injector) (*catalog.Resolver, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.NewResolver(storeHandle.Store, log.Logger), nil
}

// CacheHandle wraps the metadata cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the Badger-backed metadata cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := cache.Open(cfg.Storage.CacheDir, log.Logger)
	if err != nil {
		return nil, err
	}

	return &CacheHandle{Cache: c}, nil
}
