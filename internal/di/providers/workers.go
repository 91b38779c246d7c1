package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/muzaapp/muza-server/internal/config"
	"github.com/muzaapp/muza-server/internal/inbox"
	"github.com/muzaapp/muza-server/internal/ingest"
	"github.com/muzaapp/muza-server/internal/logger"
)

// InboxWatcherHandle wraps the inbox watcher with Shutdownable. The watcher
// is optional; when no inbox directory is configured the handle is empty.
type InboxWatcherHandle struct {
	watcher *inbox.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable. Cancelling the context stops the
// watch loop, which closes the underlying fsnotify watcher.
func (h *InboxWatcherHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	return nil
}

// ProvideInboxWatcher provides the drop-directory watcher when configured.
func ProvideInboxWatcher(i do.Injector) (*InboxWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Ingest.InboxDir == "" {
		log.Info("inbox watcher disabled, no inbox directory configured")
		return &InboxWatcherHandle{}, nil
	}

	pipeline := do.MustInvoke[*ingest.Pipeline](i)

	watcher, err := inbox.New(cfg.Ingest.InboxDir, pipeline, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("inbox watcher stopped", "error", err)
		}
	}()

	log.Info("inbox watcher running", "dir", cfg.Ingest.InboxDir)

	return &InboxWatcherHandle{watcher: watcher, cancel: cancel}, nil
}
