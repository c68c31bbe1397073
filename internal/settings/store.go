package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"arioso/pkg/models"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Snapshot is an immutable view of the persisted user settings. Every read
// and every subscription emission carries a full snapshot so observers never
// see a half-applied update.
type Snapshot struct {
	AllowedDirectories []string
	InitialSetupDone   bool
	MockGenresEnabled  bool
	GlobalTransition   models.TransitionSettings
}

// DirAllowed reports whether the given parent directory is in the allowed set.
func (s Snapshot) DirAllowed(dir string) bool {
	for _, d := range s.AllowedDirectories {
		if d == dir {
			return true
		}
	}
	return false
}

// fileData is the on-disk TOML shape of the settings.
type fileData struct {
	AllowedDirectories []string                  `toml:"allowed_directories"`
	InitialSetupDone   bool                      `toml:"initial_setup_done"`
	MockGenresEnabled  bool                      `toml:"mock_genres_enabled"`
	Transition         models.TransitionSettings `toml:"transition"`
}

// Store is the process-wide persistent settings store. Reads return
// snapshots; writes persist to the TOML file first and then broadcast the new
// snapshot to all subscribers. Safe for concurrent use.
type Store struct {
	path   string
	logger *logrus.Logger

	mu     sync.RWMutex
	data   fileData
	subs   map[int]chan Snapshot
	nextID int
}

// NewStore opens (or creates with defaults) the settings file at the given
// path. Defaults: no allowed directories, initial setup not done, mock genres
// off, and the default global transition settings.
func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
		data: fileData{
			AllowedDirectories: nil,
			InitialSetupDone:   false,
			MockGenresEnabled:  false,
			Transition:         models.DefaultTransitionSettings(),
		},
		subs: make(map[int]chan Snapshot),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.persistLocked(); err != nil {
			return nil, fmt.Errorf("failed to create default settings file: %w", err)
		}
		logger.WithField("path", path).Info("Created default settings file")
		return s, nil
	}

	if _, err := toml.DecodeFile(path, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if s.data.Transition.Mode == "" {
		s.data.Transition = models.DefaultTransitionSettings()
	}
	sort.Strings(s.data.AllowedDirectories)
	return s, nil
}

// Snapshot returns the current settings.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	dirs := make([]string, len(s.data.AllowedDirectories))
	copy(dirs, s.data.AllowedDirectories)
	return Snapshot{
		AllowedDirectories: dirs,
		InitialSetupDone:   s.data.InitialSetupDone,
		MockGenresEnabled:  s.data.MockGenresEnabled,
		GlobalTransition:   s.data.Transition,
	}
}

// Subscribe returns a channel that receives a snapshot after every write.
// The channel holds only the most recent snapshot: a slow consumer observes
// the latest state, not the full history. Call the returned cancel function
// to unsubscribe.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// SetAllowedDirectories replaces the allowed directory set.
func (s *Store) SetAllowedDirectories(dirs []string) error {
	sorted := make([]string, len(dirs))
	copy(sorted, dirs)
	sort.Strings(sorted)

	return s.update(func(d *fileData) {
		d.AllowedDirectories = sorted
	})
}

// SetInitialSetupDone latches the one-time setup flag.
func (s *Store) SetInitialSetupDone(done bool) error {
	return s.update(func(d *fileData) {
		d.InitialSetupDone = done
	})
}

// SetMockGenresEnabled toggles the mock genre source.
func (s *Store) SetMockGenresEnabled(enabled bool) error {
	return s.update(func(d *fileData) {
		d.MockGenresEnabled = enabled
	})
}

// SetGlobalTransitionSettings overwrites the single global transition record.
func (s *Store) SetGlobalTransitionSettings(ts models.TransitionSettings) error {
	return s.update(func(d *fileData) {
		d.Transition = ts
	})
}

// update applies the mutation, persists the file and broadcasts the new
// snapshot while still holding the lock, so emissions are ordered.
func (s *Store) update(mutate func(*fileData)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mutate(&s.data)
	if err := s.persistLocked(); err != nil {
		return err
	}

	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		// Drop the stale pending snapshot, if any, then enqueue the new one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	return nil
}

func (s *Store) persistLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(s.data); err != nil {
		return fmt.Errorf("failed to encode settings to TOML: %w", err)
	}
	return nil
}
