package repository

import (
	"context"
	"path/filepath"
	"sort"
	"time"
)

// DiscoverAudioDirectories scans the media index for the distinct parent
// directories holding music files. Concurrent callers share one scan: the
// mutex serializes them and a fresh result is reused instead of re-walking
// the filesystem. On the first-ever discovery (before initial setup) a
// non-empty result is persisted as the allowed-directories default.
func (r *Repository) DiscoverAudioDirectories(ctx context.Context) ([]string, error) {
	r.scanMu.Lock()
	defer r.scanMu.Unlock()

	if r.scannedDirs != nil && time.Since(r.scannedAt) < 30*time.Second {
		dirs := make([]string, len(r.scannedDirs))
		copy(dirs, r.scannedDirs)
		return dirs, nil
	}

	paths, err := r.index.QueryFilePaths(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	dirs := []string{}
	for _, path := range paths {
		dir := filepath.Dir(path)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	r.scannedDirs = dirs
	r.scannedAt = time.Now()

	if len(dirs) > 0 && !r.settings.Snapshot().InitialSetupDone {
		if err := r.settings.SetAllowedDirectories(dirs); err != nil {
			r.logger.WithError(err).Warn("Failed to persist discovered directories as default")
		}
	}

	result := make([]string, len(dirs))
	copy(result, dirs)
	return result, nil
}
