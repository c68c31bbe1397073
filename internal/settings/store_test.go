package settings

import (
	"path/filepath"
	"testing"

	"arioso/pkg/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestNewStoreCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	store, err := NewStore(path, testLogger())
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.Empty(t, snap.AllowedDirectories)
	assert.False(t, snap.InitialSetupDone)
	assert.False(t, snap.MockGenresEnabled)
	assert.Equal(t, models.DefaultTransitionSettings(), snap.GlobalTransition)

	assert.FileExists(t, path)
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	store, err := NewStore(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, store.SetAllowedDirectories([]string{"/music/b", "/music/a"}))
	require.NoError(t, store.SetInitialSetupDone(true))
	require.NoError(t, store.SetMockGenresEnabled(true))
	custom := models.TransitionSettings{
		DurationMs: 2500,
		Mode:       models.TransitionCrossfade,
		CurveIn:    models.CurveEaseIn,
		CurveOut:   models.CurveEaseOut,
	}
	require.NoError(t, store.SetGlobalTransitionSettings(custom))

	// A second store over the same file sees everything persisted.
	reopened, err := NewStore(path, testLogger())
	require.NoError(t, err)

	snap := reopened.Snapshot()
	assert.Equal(t, []string{"/music/a", "/music/b"}, snap.AllowedDirectories)
	assert.True(t, snap.InitialSetupDone)
	assert.True(t, snap.MockGenresEnabled)
	assert.Equal(t, custom, snap.GlobalTransition)
}

func TestSubscribeEmitsLatestSnapshot(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "settings.toml"), testLogger())
	require.NoError(t, err)

	ch, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.SetAllowedDirectories([]string{"/music/a"}))
	require.NoError(t, store.SetInitialSetupDone(true))

	// The buffered channel holds only the newest snapshot; a slow consumer
	// skips intermediate states.
	snap := <-ch
	assert.True(t, snap.InitialSetupDone)
	assert.Equal(t, []string{"/music/a"}, snap.AllowedDirectories)
}

func TestDirAllowed(t *testing.T) {
	snap := Snapshot{AllowedDirectories: []string{"/music/a", "/music/b"}}
	assert.True(t, snap.DirAllowed("/music/a"))
	assert.False(t, snap.DirAllowed("/music/c"))
}

func TestSubscribeCancelIdempotent(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "settings.toml"), testLogger())
	require.NoError(t, err)

	_, cancel := store.Subscribe()
	cancel()
	cancel()

	// Writes after unsubscribe must not panic on the closed channel.
	require.NoError(t, store.SetInitialSetupDone(true))
}
