package sync

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// AudioFilter reports whether a path looks like a supported audio file;
// satisfied by the metadata extractor.
type AudioFilter interface {
	IsAudioFile(filePath string) bool
}

// Watcher monitors the library roots recursively and turns audio file
// changes into sync triggers. Events are debounced so a bulk copy of an
// album produces one run, not one per file.
type Watcher struct {
	scheduler *Scheduler
	filter    AudioFilter
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	logger    *logrus.Logger
}

func NewWatcher(scheduler *Scheduler, filter AudioFilter, logger *logrus.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		scheduler: scheduler,
		filter:    filter,
		watcher:   fsWatcher,
		debounce:  2 * time.Second,
		logger:    logger,
	}, nil
}

// Start begins watching the given roots. Roots that do not exist are
// skipped with a warning.
func (w *Watcher) Start(roots []string) error {
	go w.watchFiles()

	for _, root := range roots {
		if err := w.addDirectoryToWatcher(root); err != nil {
			w.logger.WithError(err).WithField("root", root).Warn("Failed to watch library root")
			continue
		}
		w.logger.WithField("root", root).Info("File watcher started")
	}
	return nil
}

// addDirectoryToWatcher recursively walks and adds subdirectories to watcher.
func (w *Watcher) addDirectoryToWatcher(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// watchFiles selects on watcher channels and dispatches events.
func (w *Watcher) watchFiles() {
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				pending = time.After(w.debounce)
			}

		case <-pending:
			pending = nil
			w.logger.Debug("Filesystem changes settled, triggering sync")
			w.scheduler.Trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Error("File watcher error")
		}
	}
}

// relevant filters events down to audio file changes and newly created
// directories (which also get added to the watch set).
func (w *Watcher) relevant(event fsnotify.Event) bool {
	// Ignore temporary files and hidden files
	fileName := filepath.Base(event.Name)
	if strings.HasPrefix(fileName, ".") || strings.HasSuffix(fileName, ".tmp") {
		return false
	}

	if w.filter.IsAudioFile(event.Name) {
		return event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
			event.Has(fsnotify.Rename) || event.Has(fsnotify.Write)
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.watcher.Add(event.Name)
			w.logger.WithField("directory", event.Name).Info("Watching new directory")
		}
	}
	return false
}

// Stop closes the watcher (idempotent).
func (w *Watcher) Stop() {
	if w.watcher != nil {
		w.watcher.Close()
	}
}
