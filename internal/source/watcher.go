package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period after the last file event before a reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls onChange when the dataset file is written, created or replaced.
// Bursts of events within the debounce window collapse into one call.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(ctx context.Context)
	logger   *logrus.Logger
}

func NewWatcher(path string, debounce time.Duration, onChange func(ctx context.Context), logger *logrus.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
}

// PathOf returns the file behind a file or sqlite source, unwrapping caches.
func PathOf(src Source) (string, bool) {
	switch s := src.(type) {
	case *CachedSource:
		return PathOf(s.Inner())
	case *FileSource:
		return s.Path(), true
	case *SQLiteSource:
		return s.Path(), true
	}
	return "", false
}

// Run blocks until ctx is cancelled. The parent directory is watched so that
// editors which replace the file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	target := filepath.Clean(w.path)
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	w.logger.Infof("Watching dataset file %s for changes", target)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debugf("Dataset file event: %s", event)
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("Dataset watcher error: %v", err)
		case <-timer.C:
			w.logger.Infof("Dataset file %s changed, reloading", target)
			w.onChange(ctx)
		}
	}
}
