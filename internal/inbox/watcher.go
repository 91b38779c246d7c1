// Package inbox watches a drop directory and ingests FLAC files that land
// in it, as an alternative to the HTTP upload endpoint.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/muzaapp/muza-server/internal/ingest"
)

type ingestor interface {
	Ingest(ctx context.Context, data []byte, filename string) (*ingest.Result, error)
}

// Watcher monitors the inbox directory with fsnotify. Writes are debounced:
// a file is ingested only after its size and mtime stop changing, so a
// large FLAC still being copied in is not picked up half-written.
type Watcher struct {
	dir      string
	pipeline ingestor
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	settleDelay time.Duration

	mu       sync.Mutex
	pending  map[string]*pendingFile
	inFlight map[string]bool
}

type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

const defaultSettleDelay = 500 * time.Millisecond

func New(dir string, pipeline ingestor, logger *slog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create inbox dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch inbox dir: %w", err)
	}

	return &Watcher{
		dir:         dir,
		pipeline:    pipeline,
		logger:      logger,
		watcher:     fsw,
		settleDelay: defaultSettleDelay,
		pending:     make(map[string]*pendingFile),
		inFlight:    make(map[string]bool),
	}, nil
}

// Start processes events until the context is cancelled. Files already
// sitting in the inbox at startup are picked up first.
func (w *Watcher) Start(ctx context.Context) error {
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.startSettling(ctx, event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("inbox watch error", "error", err)
		}
	}
}

// sweep ingests files that were dropped while the service was not running.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("inbox sweep failed", "dir", w.dir, "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.startSettling(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

func (w *Watcher) startSettling(ctx context.Context, path string) {
	if !isIngestable(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inFlight[path] {
		return
	}
	if pending, ok := w.pending[path]; ok {
		pending.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		delete(w.pending, path)
		return
	}

	pending := &pendingFile{size: info.Size(), modTime: info.ModTime()}
	pending.timer = time.AfterFunc(w.settleDelay, func() {
		w.checkSettled(ctx, path)
	})
	w.pending[path] = pending
}

func (w *Watcher) checkSettled(ctx context.Context, path string) {
	w.mu.Lock()

	pending, ok := w.pending[path]
	if !ok {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}

	if info.Size() != pending.size || !info.ModTime().Equal(pending.modTime) {
		// Still being written, wait another round.
		pending.size = info.Size()
		pending.modTime = info.ModTime()
		pending.timer = time.AfterFunc(w.settleDelay, func() {
			w.checkSettled(ctx, path)
		})
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	w.inFlight[path] = true
	w.mu.Unlock()

	go w.ingestFile(ctx, path)
}

// ingestFile runs the pipeline on a settled file. The file is removed on
// success and renamed with a .failed suffix on error so the watcher does
// not retry it forever.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	defer func() {
		w.mu.Lock()
		delete(w.inFlight, path)
		w.mu.Unlock()
	}()

	data, err := os.ReadFile(path) //#nosec G304 -- path is inside the configured inbox
	if err != nil {
		w.logger.Warn("inbox file read failed", "path", path, "error", err)
		return
	}

	result, err := w.pipeline.Ingest(ctx, data, filepath.Base(path))
	if err != nil {
		w.logger.Error("inbox ingestion failed", "path", path, "error", err)
		if renameErr := os.Rename(path, path+".failed"); renameErr != nil {
			w.logger.Warn("could not mark failed inbox file", "path", path, "error", renameErr)
		}
		return
	}

	w.logger.Info("ingested inbox file",
		"path", path, "track_id", result.Track.ID, "title", result.Track.Title)

	if err := os.Remove(path); err != nil {
		w.logger.Warn("could not remove ingested inbox file", "path", path, "error", err)
	}
}

func isIngestable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".flac")
}
