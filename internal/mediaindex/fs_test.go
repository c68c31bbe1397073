package mediaindex

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arioso/pkg/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProber recognizes .mp3 files and fabricates songs from file names,
// so the index can be exercised without real audio data.
type fakeProber struct {
	durations map[string]int64
}

func (p *fakeProber) IsAudioFile(filePath string) bool {
	return strings.HasSuffix(filePath, ".mp3")
}

func (p *fakeProber) ExtractFromFile(filePath string) (models.Song, error) {
	name := strings.TrimSuffix(filepath.Base(filePath), ".mp3")
	durationMs := int64(120000)
	if d, ok := p.durations[name]; ok {
		durationMs = d
	}
	return models.Song{
		Title:      name,
		Artist:     "Tester",
		Album:      "Fixtures",
		DurationMs: durationMs,
		FilePath:   filePath,
		ParentDir:  filepath.Dir(filePath),
		ContentURI: "file://" + filePath,
	}, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func testIndexLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestQueryMusic(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "zebra.mp3"))
	touch(t, filepath.Join(root, "a", "apple.mp3"))
	touch(t, filepath.Join(root, "b", "mango.mp3"))
	touch(t, filepath.Join(root, "b", "notes.txt"))
	touch(t, filepath.Join(root, "b", "jingle.mp3"))

	prober := &fakeProber{durations: map[string]int64{"jingle": 5000}}
	index := NewFilesystemIndex([]string{root}, prober, 10, testIndexLogger())

	songs, err := index.QueryMusic(context.Background())
	require.NoError(t, err)

	// jingle is below the 10s floor, notes.txt is not audio.
	require.Len(t, songs, 3)
	assert.Equal(t, "apple", songs[0].Title)
	assert.Equal(t, "mango", songs[1].Title)
	assert.Equal(t, "zebra", songs[2].Title)

	for _, song := range songs {
		assert.Positive(t, song.ID)
		assert.Positive(t, song.ArtistID)
		assert.Positive(t, song.AlbumID)
	}

	// Same artist and album names hash to the same ids on every row.
	assert.Equal(t, songs[0].ArtistID, songs[1].ArtistID)
	assert.Equal(t, songs[0].AlbumID, songs[2].AlbumID)
}

func TestQueryMusicStableIDs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "apple.mp3"))

	index := NewFilesystemIndex([]string{root}, &fakeProber{}, 10, testIndexLogger())

	first, err := index.QueryMusic(context.Background())
	require.NoError(t, err)
	second, err := index.QueryMusic(context.Background())
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestQueryFilePaths(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "apple.mp3"))
	touch(t, filepath.Join(root, "b", "notes.txt"))

	missing := filepath.Join(root, "does-not-exist")
	index := NewFilesystemIndex([]string{root, missing}, &fakeProber{}, 10, testIndexLogger())

	paths, err := index.QueryFilePaths(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, strings.HasSuffix(paths[0], "apple.mp3"))
}
