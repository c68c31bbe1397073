package sync

import (
	"context"
	"fmt"
	"time"

	"arioso/internal/library"
	"arioso/internal/mediaindex"
	"arioso/pkg/models"

	"github.com/sirupsen/logrus"
)

// albumKey identifies one conceptual album: the same album title under two
// different artists is two albums.
type albumKey struct {
	album  string
	artist string
}

// Engine rebuilds the library store from the media index. A run is
// all-or-nothing: every derivation happens in memory and the destructive
// write is a single transaction, so a failing run leaves the store exactly
// as it was.
type Engine struct {
	source mediaindex.Source
	store  *library.Store
	logger *logrus.Logger
}

func NewEngine(source mediaindex.Source, store *library.Store, logger *logrus.Logger) *Engine {
	return &Engine{
		source: source,
		store:  store,
		logger: logger,
	}
}

// Run performs one full sync. An empty fetch is a successful no-op so a
// transient index hiccup can never wipe the library.
func (e *Engine) Run(ctx context.Context) error {
	startTime := time.Now()

	fetched, err := e.source.QueryMusic(ctx)
	if err != nil {
		return fmt.Errorf("failed to query media index: %w", err)
	}
	if len(fetched) == 0 {
		e.logger.Warn("Media index returned no songs, keeping existing library")
		return nil
	}

	// Snapshot user-authored fields before anything destructive happens.
	preservedLyrics, err := e.store.AllSongLyrics(ctx)
	if err != nil {
		return fmt.Errorf("failed to snapshot lyrics: %w", err)
	}
	preservedFavorites, err := e.store.AllSongFavorites(ctx)
	if err != nil {
		return fmt.Errorf("failed to snapshot favorites: %w", err)
	}

	songs := canonicalize(fetched)
	albums := deriveAlbums(songs)
	artists := deriveArtists(songs)

	for i := range songs {
		if preserved, ok := preservedLyrics[songs[i].ID]; ok && preserved != "" {
			songs[i].Lyrics = preserved
		}
		if preservedFavorites[songs[i].ID] {
			songs[i].Favorite = true
		}
	}

	if err := e.store.ReplaceAll(ctx, songs, albums, artists); err != nil {
		return fmt.Errorf("failed to replace library content: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"songs":    len(songs),
		"albums":   len(albums),
		"artists":  len(artists),
		"duration": time.Since(startTime),
	}).Info("Library sync complete")
	return nil
}

// canonicalize rewrites every row's artist and album ids to the first-seen
// id for that artist name / (album, artist) pair. The index can report
// different ids for the same name across rows; one pass in fetch order picks
// a single winner, which keeps repeated syncs over an unchanged index
// byte-identical.
func canonicalize(fetched []models.Song) []models.Song {
	artistIDs := make(map[string]int64)
	albumIDs := make(map[albumKey]int64)

	songs := make([]models.Song, len(fetched))
	copy(songs, fetched)

	for _, song := range songs {
		if _, seen := artistIDs[song.Artist]; !seen {
			artistIDs[song.Artist] = song.ArtistID
		}
		key := albumKey{album: song.Album, artist: song.Artist}
		if _, seen := albumIDs[key]; !seen {
			albumIDs[key] = song.AlbumID
		}
	}

	for i := range songs {
		songs[i].ArtistID = artistIDs[songs[i].Artist]
		songs[i].AlbumID = albumIDs[albumKey{album: songs[i].Album, artist: songs[i].Artist}]
	}
	return songs
}

// deriveAlbums groups canonicalized songs by album id, the first group
// member acting as representative for title, artist and art.
func deriveAlbums(songs []models.Song) []models.Album {
	byID := make(map[int64]int)
	albums := []models.Album{}

	for _, song := range songs {
		if idx, seen := byID[song.AlbumID]; seen {
			albums[idx].SongCount++
			continue
		}
		byID[song.AlbumID] = len(albums)
		albums = append(albums, models.Album{
			ID:          song.AlbumID,
			Title:       song.Album,
			ArtistName:  song.Artist,
			ArtistID:    song.ArtistID,
			AlbumArtURI: song.AlbumArtURI,
			SongCount:   1,
		})
	}
	return albums
}

// deriveArtists groups canonicalized songs by artist id.
func deriveArtists(songs []models.Song) []models.Artist {
	byID := make(map[int64]int)
	artists := []models.Artist{}

	for _, song := range songs {
		if idx, seen := byID[song.ArtistID]; seen {
			artists[idx].TrackCount++
			continue
		}
		byID[song.ArtistID] = len(artists)
		artists = append(artists, models.Artist{
			ID:         song.ArtistID,
			Name:       song.Artist,
			TrackCount: 1,
		})
	}
	return artists
}
