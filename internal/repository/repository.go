package repository

import (
	"context"
	"sync"
	"time"

	"arioso/internal/cache"
	"arioso/internal/library"
	"arioso/internal/lyrics"
	"arioso/internal/mediaindex"
	"arioso/internal/metadata"
	"arioso/internal/settings"

	"github.com/sirupsen/logrus"
)

// Repository composes the settings store and the library store into
// permission-filtered views of the music library. It owns no persistent
// state of its own; everything it serves is derived on demand from the two
// stores, re-derived reactively when either changes.
type Repository struct {
	settings     *settings.Store
	lib          *library.Store
	index        mediaindex.Source
	lyricsClient *lyrics.Client
	extractor    *metadata.Extractor
	editor       *metadata.Editor
	lyricsCache  *cache.LyricsCache
	logger       *logrus.Logger

	// Guards directory discovery so concurrent callers share one scan.
	scanMu      sync.Mutex
	scannedDirs []string
	scannedAt   time.Time
}

// New wires a repository over its collaborators. lyricsClient may be nil
// when remote lookup is disabled.
func New(
	settingsStore *settings.Store,
	lib *library.Store,
	index mediaindex.Source,
	lyricsClient *lyrics.Client,
	extractor *metadata.Extractor,
	editor *metadata.Editor,
	logger *logrus.Logger,
) *Repository {
	return &Repository{
		settings:     settingsStore,
		lib:          lib,
		index:        index,
		lyricsClient: lyricsClient,
		extractor:    extractor,
		editor:       editor,
		lyricsCache:  cache.NewLyricsCache(),
		logger:       logger,
	}
}

// filterFor translates a settings snapshot into the store-level filter.
// Before initial setup completes nothing is filtered; afterwards only songs
// under an allowed directory are visible.
func filterFor(snap settings.Snapshot) library.Filter {
	return library.Filter{
		AllowedParentDirs: snap.AllowedDirectories,
		Apply:             snap.InitialSetupDone,
	}
}

// gatedEmpty reports the one policy case that short-circuits without
// touching storage: setup is done but the user has allowed no directories,
// so nothing is permitted.
func gatedEmpty(snap settings.Snapshot) bool {
	return snap.InitialSetupDone && len(snap.AllowedDirectories) == 0
}

// watch runs compute immediately and again after every settings or library
// change. Each recomputation gets its own context that is cancelled as soon
// as a newer change arrives, so in-flight work keyed to stale settings is
// abandoned rather than merged. The channel carries only the latest value.
func watch[T any](
	ctx context.Context,
	r *Repository,
	compute func(ctx context.Context, snap settings.Snapshot) (T, error),
) <-chan T {
	out := make(chan T, 1)

	settingsCh, cancelSettings := r.settings.Subscribe()
	libraryCh, cancelLibrary := r.lib.Subscribe()

	go func() {
		defer close(out)
		defer cancelSettings()
		defer cancelLibrary()

		var generation int
		var genMu sync.Mutex

		launch := func(snap settings.Snapshot, cancelPrev context.CancelFunc) context.CancelFunc {
			if cancelPrev != nil {
				cancelPrev()
			}
			genMu.Lock()
			generation++
			myGen := generation
			genMu.Unlock()

			computeCtx, cancel := context.WithCancel(ctx)
			go func() {
				value, err := compute(computeCtx, snap)
				if err != nil {
					if computeCtx.Err() == nil {
						r.logger.WithError(err).Warn("Reactive query failed, keeping last emission")
					}
					return
				}

				// The staleness check and the publish must be one atomic
				// step: launch bumps generation under the same mutex, so a
				// computation that loses the race here can never overwrite a
				// newer generation's emission.
				genMu.Lock()
				defer genMu.Unlock()
				if myGen != generation || computeCtx.Err() != nil {
					return
				}

				select {
				case <-out:
				default:
				}
				select {
				case out <- value:
				default:
				}
			}()
			return cancel
		}

		cancelCompute := launch(r.settings.Snapshot(), nil)
		defer func() {
			if cancelCompute != nil {
				cancelCompute()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-settingsCh:
				if !ok {
					return
				}
				cancelCompute = launch(snap, cancelCompute)
			case _, ok := <-libraryCh:
				if !ok {
					return
				}
				cancelCompute = launch(r.settings.Snapshot(), cancelCompute)
			}
		}
	}()
	return out
}
