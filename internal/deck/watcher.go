package deck

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/memocurve/internal/storage"
)

// Watch starts an fsnotify watcher on the data directory of a
// file-backed deck and reloads the store when the blobs change on disk
// (external edits or another process syncing the files). Events are
// debounced so a burst of writes triggers a single reload; reloads whose
// content matches our own last save are ignored by Store.Reload.
//
// cb, if non-nil, is called after each reload that changed the deck.
func Watch(ctx context.Context, store *Store, fs *storage.FS, logger *slog.Logger, cb func()) error {
	cardsPath, err := fs.BlobPath(KeyCards)
	if err != nil {
		return err
	}
	prefsPath, err := fs.BlobPath(KeyPrefs)
	if err != nil {
		return err
	}
	dataDir := filepath.Dir(cardsPath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dataDir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dataDir))

	// reloadTimer debounces bursts of file events into one reload.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			if store.Reload() {
				logger.Info("watcher: deck reloaded from disk")
				if cb != nil {
					cb()
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Only the deck blobs matter; ignore temp files from our
			// own atomic writes and anything else in the directory.
			name := filepath.Clean(ev.Name)
			if name != cardsPath && name != prefsPath {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			scheduleReload()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
