package mediaindex

import (
	"context"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"arioso/pkg/models"

	"github.com/sirupsen/logrus"
)

// Prober is the part of the metadata extractor the index needs. Injected so
// tests can feed synthetic songs without real audio files on disk.
type Prober interface {
	IsAudioFile(filePath string) bool
	ExtractFromFile(filePath string) (models.Song, error)
}

// FilesystemIndex walks a set of library roots and exposes the audio files
// under them as a Source.
type FilesystemIndex struct {
	roots         []string
	prober        Prober
	minDurationMs int64
	logger        *logrus.Logger
}

// NewFilesystemIndex creates an index over the given roots. Files shorter
// than minDurationSeconds are treated as non-music and dropped.
func NewFilesystemIndex(roots []string, prober Prober, minDurationSeconds int, logger *logrus.Logger) *FilesystemIndex {
	return &FilesystemIndex{
		roots:         roots,
		prober:        prober,
		minDurationMs: int64(minDurationSeconds) * 1000,
		logger:        logger,
	}
}

// QueryMusic scans the library roots, extracts metadata from every supported
// audio file above the duration floor, and returns the songs ordered by
// title. Unreadable files are skipped with a warning rather than failing the
// whole scan.
func (x *FilesystemIndex) QueryMusic(ctx context.Context) ([]models.Song, error) {
	startTime := time.Now()

	paths, err := x.QueryFilePaths(ctx)
	if err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		song, err := x.prober.ExtractFromFile(path)
		if err != nil {
			x.logger.WithError(err).WithField("filePath", path).Warn("Skipping unreadable audio file")
			continue
		}
		if song.DurationMs < x.minDurationMs {
			continue
		}

		song.ID = pathID(path)
		song.ArtistID = hashID(song.Artist)
		song.AlbumID = hashID(song.Album + "\x00" + song.Artist)
		songs = append(songs, song)
	}

	sort.Slice(songs, func(i, j int) bool {
		if songs[i].Title != songs[j].Title {
			return songs[i].Title < songs[j].Title
		}
		return songs[i].FilePath < songs[j].FilePath
	})

	x.logger.WithFields(logrus.Fields{
		"songs":    len(songs),
		"files":    len(paths),
		"duration": time.Since(startTime),
	}).Info("Media index scan complete")
	return songs, nil
}

// QueryFilePaths walks the roots and returns every supported audio file
// path, without opening the files. Missing roots are skipped.
func (x *FilesystemIndex) QueryFilePaths(ctx context.Context) ([]string, error) {
	var paths []string
	for _, root := range x.roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			x.logger.WithField("root", root).Warn("Library root does not exist, skipping")
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				x.logger.WithError(err).WithField("path", path).Warn("Failed to access path during scan")
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() {
				return nil
			}
			if x.prober.IsAudioFile(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// pathID derives a stable positive id from a file path, so a file keeps its
// id across re-scans as long as it does not move.
func pathID(path string) int64 {
	return hashID(path)
}

func hashID(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() & 0x7FFFFFFFFFFFFFFF)
}
