package library

import (
	"context"
	"path/filepath"
	"testing"

	"arioso/pkg/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	store, err := NewStore(filepath.Join(t.TempDir(), "library.db"), 5, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedSongs(t *testing.T, store *Store, songs []models.Song) {
	t.Helper()
	require.NoError(t, store.ReplaceAll(context.Background(), songs, nil, nil))
}

func testSongs() []models.Song {
	return []models.Song{
		{ID: 3, Title: "Alpha", Artist: "Ann", ArtistID: 1, Album: "One", AlbumID: 10,
			DurationMs: 120000, FilePath: "/music/a/alpha.mp3", ParentDir: "/music/a",
			ContentURI: "file:///music/a/alpha.mp3", Genre: "Rock"},
		{ID: 7, Title: "Beta", Artist: "Bob", ArtistID: 2, Album: "Two", AlbumID: 20,
			DurationMs: 180000, FilePath: "/music/b/beta.mp3", ParentDir: "/music/b",
			ContentURI: "file:///music/b/beta.mp3"},
		{ID: 9, Title: "Gamma", Artist: "Ann", ArtistID: 1, Album: "One", AlbumID: 10,
			DurationMs: 90000, FilePath: "/music/a/gamma.mp3", ParentDir: "/music/a",
			ContentURI: "file:///music/a/gamma.mp3", Genre: "Rock"},
	}
}

func TestSongsDirectoryFilter(t *testing.T) {
	store := newTestStore(t)
	seedSongs(t, store, testSongs())
	ctx := context.Background()

	t.Run("unapplied filter returns everything", func(t *testing.T) {
		songs, err := store.Songs(ctx, Unfiltered)
		require.NoError(t, err)
		assert.Len(t, songs, 3)
	})

	t.Run("applied filter scopes to allowed dirs", func(t *testing.T) {
		songs, err := store.Songs(ctx, Filter{AllowedParentDirs: []string{"/music/a"}, Apply: true})
		require.NoError(t, err)
		require.Len(t, songs, 2)
		assert.Equal(t, "Alpha", songs[0].Title)
		assert.Equal(t, "Gamma", songs[1].Title)
	})

	t.Run("applied filter with empty set matches nothing", func(t *testing.T) {
		songs, err := store.Songs(ctx, Filter{Apply: true})
		require.NoError(t, err)
		assert.Empty(t, songs)
	})
}

func TestSongsByIDsPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	seedSongs(t, store, testSongs())
	ctx := context.Background()

	songs, err := store.SongsByIDs(ctx, []int64{9, 3, 7}, Unfiltered)
	require.NoError(t, err)
	require.Len(t, songs, 3)
	assert.Equal(t, int64(9), songs[0].ID)
	assert.Equal(t, int64(3), songs[1].ID)
	assert.Equal(t, int64(7), songs[2].ID)

	// Missing and filtered-out ids are dropped, not padded.
	songs, err = store.SongsByIDs(ctx, []int64{7, 999, 3},
		Filter{AllowedParentDirs: []string{"/music/a"}, Apply: true})
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, int64(3), songs[0].ID)
}

func TestToggleFavorite(t *testing.T) {
	store := newTestStore(t)
	seedSongs(t, store, testSongs())
	ctx := context.Background()

	favorite, err := store.ToggleFavorite(ctx, 7)
	require.NoError(t, err)
	assert.True(t, favorite)

	favorite, err = store.ToggleFavorite(ctx, 7)
	require.NoError(t, err)
	assert.False(t, favorite)

	song, err := store.SongByID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, song)
	assert.False(t, song.Favorite)

	// Unknown id is a no-op returning false.
	favorite, err = store.ToggleFavorite(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, favorite)
}

func TestSearchSongs(t *testing.T) {
	store := newTestStore(t)
	seedSongs(t, store, testSongs())
	ctx := context.Background()

	t.Run("blank query short-circuits", func(t *testing.T) {
		songs, err := store.SearchSongs(ctx, "", Unfiltered)
		require.NoError(t, err)
		assert.Empty(t, songs)
	})

	t.Run("matches title substring case-insensitively", func(t *testing.T) {
		songs, err := store.SearchSongs(ctx, "alph", Unfiltered)
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "Alpha", songs[0].Title)
	})

	t.Run("matches artist name", func(t *testing.T) {
		songs, err := store.SearchSongs(ctx, "ann", Unfiltered)
		require.NoError(t, err)
		assert.Len(t, songs, 2)
	})
}

func TestSearchTreatsWildcardsAsLiterals(t *testing.T) {
	store := newTestStore(t)
	songs := []models.Song{
		{ID: 1, Title: "100% Pure", Artist: "Ann", ArtistID: 1, Album: "One", AlbumID: 10,
			DurationMs: 120000, FilePath: "/music/a/pure.mp3", ParentDir: "/music/a",
			ContentURI: "file:///music/a/pure.mp3"},
		{ID: 2, Title: "100 Proof", Artist: "Ann", ArtistID: 1, Album: "One", AlbumID: 10,
			DurationMs: 120000, FilePath: "/music/a/proof.mp3", ParentDir: "/music/a",
			ContentURI: "file:///music/a/proof.mp3"},
		{ID: 3, Title: "a_b", Artist: "Bob", ArtistID: 2, Album: "Two", AlbumID: 20,
			DurationMs: 120000, FilePath: "/music/a/ab.mp3", ParentDir: "/music/a",
			ContentURI: "file:///music/a/ab.mp3"},
		{ID: 4, Title: "axb", Artist: "Bob", ArtistID: 2, Album: "Two", AlbumID: 20,
			DurationMs: 120000, FilePath: "/music/a/axb.mp3", ParentDir: "/music/a",
			ContentURI: "file:///music/a/axb.mp3"},
	}
	albums := []models.Album{
		{ID: 10, Title: "100 Days", ArtistName: "Ann", ArtistID: 1, SongCount: 2},
		{ID: 20, Title: "Two", ArtistName: "Bob", ArtistID: 2, SongCount: 2},
	}
	artists := []models.Artist{
		{ID: 1, Name: "Ann", TrackCount: 2},
		{ID: 2, Name: "Bob", TrackCount: 2},
	}
	ctx := context.Background()
	require.NoError(t, store.ReplaceAll(ctx, songs, albums, artists))

	t.Run("percent is not a wildcard", func(t *testing.T) {
		songs, err := store.SearchSongs(ctx, "100%", Unfiltered)
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "100% Pure", songs[0].Title)
	})

	t.Run("underscore is not a wildcard", func(t *testing.T) {
		songs, err := store.SearchSongs(ctx, "a_b", Unfiltered)
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "a_b", songs[0].Title)
	})

	t.Run("album and artist search escape too", func(t *testing.T) {
		// "100 Days" contains "100" but not a literal percent sign.
		got, err := store.SearchAlbums(ctx, "100%", Unfiltered)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = store.SearchAlbums(ctx, "100", Unfiltered)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		// An unescaped underscore in "A_n" would match "Ann".
		gotArtists, err := store.SearchArtists(ctx, "A_n", Unfiltered)
		require.NoError(t, err)
		assert.Empty(t, gotArtists)
	})
}

func TestReplaceAllSwapsContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedSongs(t, store, testSongs())

	replacement := []models.Song{
		{ID: 100, Title: "New", Artist: "X", ArtistID: 5, Album: "Y", AlbumID: 50,
			DurationMs: 60000, FilePath: "/music/x/new.mp3", ParentDir: "/music/x",
			ContentURI: "file:///music/x/new.mp3"},
	}
	albums := []models.Album{{ID: 50, Title: "Y", ArtistName: "X", ArtistID: 5, SongCount: 1}}
	artists := []models.Artist{{ID: 5, Name: "X", TrackCount: 1}}
	require.NoError(t, store.ReplaceAll(ctx, replacement, albums, artists))

	songs, err := store.Songs(ctx, Unfiltered)
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, int64(100), songs[0].ID)

	gotAlbums, err := store.Albums(ctx, Unfiltered)
	require.NoError(t, err)
	require.Len(t, gotAlbums, 1)
	assert.Equal(t, 1, gotAlbums[0].SongCount)

	gotArtists, err := store.Artists(ctx, Unfiltered)
	require.NoError(t, err)
	assert.Len(t, gotArtists, 1)
}

func TestAllSongLyrics(t *testing.T) {
	store := newTestStore(t)
	songs := testSongs()
	songs[0].Lyrics = "hello"
	seedSongs(t, store, songs)
	ctx := context.Background()

	lyricsByID, err := store.AllSongLyrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", lyricsByID[3])
	assert.Equal(t, "", lyricsByID[7])
}

func TestSearchHistoryUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertSearchQuery(ctx, "rock", 1000))
	require.NoError(t, store.InsertSearchQuery(ctx, "jazz", 2000))
	require.NoError(t, store.InsertSearchQuery(ctx, "rock", 3000))

	items, err := store.RecentSearches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "rock", items[0].Query)
	assert.Equal(t, int64(3000), items[0].Timestamp)
	assert.Equal(t, "jazz", items[1].Query)

	require.NoError(t, store.DeleteSearchQuery(ctx, "jazz"))
	items, err = store.RecentSearches(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, store.ClearSearchHistory(ctx))
	items, err = store.RecentSearches(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTransitionRuleUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rule := models.TransitionRule{
		PlaylistID:  "pl1",
		FromTrackID: "3",
		ToTrackID:   "7",
		Settings: models.TransitionSettings{
			DurationMs: 2000, Mode: models.TransitionCrossfade,
			CurveIn: models.CurveEaseIn, CurveOut: models.CurveEaseOut,
		},
	}
	firstID, err := store.SaveTransitionRule(ctx, rule)
	require.NoError(t, err)

	// Same key overwrites instead of duplicating.
	rule.Settings.DurationMs = 5000
	secondID, err := store.SaveTransitionRule(ctx, rule)
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	rules, err := store.TransitionRulesForPlaylist(ctx, "pl1")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 5000, rules[0].Settings.DurationMs)

	got, err := store.SpecificTransitionRule(ctx, "pl1", "3", "7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.TransitionCrossfade, got.Settings.Mode)
	assert.Equal(t, firstID, got.ID)

	got, err = store.SpecificTransitionRule(ctx, "pl1", "3", "9")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPlaylistDefaultRule(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	defaultRule := models.TransitionRule{
		PlaylistID: "pl1",
		Settings:   models.TransitionSettings{DurationMs: 3000, Mode: models.TransitionCrossfade, CurveIn: models.CurveLinear, CurveOut: models.CurveLinear},
	}
	_, err := store.SaveTransitionRule(ctx, defaultRule)
	require.NoError(t, err)

	got, err := store.PlaylistDefaultTransitionRule(ctx, "pl1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsPlaylistDefault())

	require.NoError(t, store.DeletePlaylistDefaultRule(ctx, "pl1"))
	got, err = store.PlaylistDefaultTransitionRule(ctx, "pl1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSubscribeTicksOnMutation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedSongs(t, store, testSongs())

	tick, cancel := store.Subscribe()
	defer cancel()

	// Drain any tick from seeding done before subscription.
	select {
	case <-tick:
	default:
	}

	_, err := store.ToggleFavorite(ctx, 3)
	require.NoError(t, err)

	select {
	case <-tick:
	default:
		t.Fatal("expected a change tick after toggle")
	}
}
