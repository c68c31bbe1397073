package repository

import (
	"context"
	"strconv"

	"arioso/internal/settings"
	"arioso/pkg/models"
)

// Songs returns the permitted song list, ordered by title.
func (r *Repository) Songs(ctx context.Context) ([]models.Song, error) {
	return r.songsWith(ctx, r.settings.Snapshot())
}

func (r *Repository) songsWith(ctx context.Context, snap settings.Snapshot) ([]models.Song, error) {
	if gatedEmpty(snap) {
		return []models.Song{}, nil
	}
	return r.lib.Songs(ctx, filterFor(snap))
}

// WatchSongs emits the permitted song list now and after every settings or
// library change.
func (r *Repository) WatchSongs(ctx context.Context) <-chan []models.Song {
	return watch(ctx, r, r.songsWith)
}

// Albums returns the permitted album list, ordered by title.
func (r *Repository) Albums(ctx context.Context) ([]models.Album, error) {
	return r.albumsWith(ctx, r.settings.Snapshot())
}

func (r *Repository) albumsWith(ctx context.Context, snap settings.Snapshot) ([]models.Album, error) {
	if gatedEmpty(snap) {
		return []models.Album{}, nil
	}
	return r.lib.Albums(ctx, filterFor(snap))
}

// WatchAlbums emits the permitted album list reactively.
func (r *Repository) WatchAlbums(ctx context.Context) <-chan []models.Album {
	return watch(ctx, r, r.albumsWith)
}

// Artists returns the permitted artist list, ordered by name.
func (r *Repository) Artists(ctx context.Context) ([]models.Artist, error) {
	return r.artistsWith(ctx, r.settings.Snapshot())
}

func (r *Repository) artistsWith(ctx context.Context, snap settings.Snapshot) ([]models.Artist, error) {
	if gatedEmpty(snap) {
		return []models.Artist{}, nil
	}
	return r.lib.Artists(ctx, filterFor(snap))
}

// WatchArtists emits the permitted artist list reactively.
func (r *Repository) WatchArtists(ctx context.Context) <-chan []models.Artist {
	return watch(ctx, r, r.artistsWith)
}

// Song looks up one song by its string id. A malformed or unknown id, or a
// song outside the permitted directories, yields nil without error.
func (r *Repository) Song(ctx context.Context, id string) (*models.Song, error) {
	return r.songWith(ctx, r.settings.Snapshot(), id)
}

func (r *Repository) songWith(ctx context.Context, snap settings.Snapshot, id string) (*models.Song, error) {
	songID, ok := parseSongID(r, id)
	if !ok {
		return nil, nil
	}
	if gatedEmpty(snap) {
		return nil, nil
	}

	song, err := r.lib.SongByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if song == nil {
		return nil, nil
	}
	if snap.InitialSetupDone && !snap.DirAllowed(song.ParentDir) {
		return nil, nil
	}
	return song, nil
}

// WatchSong emits the song (or nil once it becomes unavailable) reactively.
func (r *Repository) WatchSong(ctx context.Context, id string) <-chan *models.Song {
	return watch(ctx, r, func(ctx context.Context, snap settings.Snapshot) (*models.Song, error) {
		return r.songWith(ctx, snap, id)
	})
}

// SongsByIDs resolves a list of string ids into songs, preserving the given
// order. Malformed ids, unknown ids, and filtered-out songs are silently
// dropped.
func (r *Repository) SongsByIDs(ctx context.Context, ids []string) ([]models.Song, error) {
	return r.songsByIDsWith(ctx, r.settings.Snapshot(), ids)
}

func (r *Repository) songsByIDsWith(ctx context.Context, snap settings.Snapshot, ids []string) ([]models.Song, error) {
	if gatedEmpty(snap) {
		return []models.Song{}, nil
	}

	parsed := make([]int64, 0, len(ids))
	for _, id := range ids {
		if songID, ok := parseSongID(r, id); ok {
			parsed = append(parsed, songID)
		}
	}
	return r.lib.SongsByIDs(ctx, parsed, filterFor(snap))
}

// WatchSongsByIDs emits the resolved list reactively, shrinking as songs
// leave the permitted set.
func (r *Repository) WatchSongsByIDs(ctx context.Context, ids []string) <-chan []models.Song {
	return watch(ctx, r, func(ctx context.Context, snap settings.Snapshot) ([]models.Song, error) {
		return r.songsByIDsWith(ctx, snap, ids)
	})
}

// AlbumByID looks up one album. After setup, presence requires at least one
// permitted song: an album whose every track sits outside the allowed
// directories reads as not found, not as an album with zero visible songs.
func (r *Repository) AlbumByID(ctx context.Context, id int64) (*models.Album, error) {
	return r.albumByIDWith(ctx, r.settings.Snapshot(), id)
}

func (r *Repository) albumByIDWith(ctx context.Context, snap settings.Snapshot, id int64) (*models.Album, error) {
	if gatedEmpty(snap) {
		return nil, nil
	}

	album, err := r.lib.AlbumByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, nil
	}
	if !snap.InitialSetupDone {
		return album, nil
	}

	songs, err := r.songsForAlbumWith(ctx, snap, id)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, nil
	}
	return album, nil
}

// WatchAlbumByID emits the album (or nil) reactively.
func (r *Repository) WatchAlbumByID(ctx context.Context, id int64) <-chan *models.Album {
	return watch(ctx, r, func(ctx context.Context, snap settings.Snapshot) (*models.Album, error) {
		return r.albumByIDWith(ctx, snap, id)
	})
}

// ArtistByID mirrors AlbumByID's presence contract for artists.
func (r *Repository) ArtistByID(ctx context.Context, id int64) (*models.Artist, error) {
	return r.artistByIDWith(ctx, r.settings.Snapshot(), id)
}

func (r *Repository) artistByIDWith(ctx context.Context, snap settings.Snapshot, id int64) (*models.Artist, error) {
	if gatedEmpty(snap) {
		return nil, nil
	}

	artist, err := r.lib.ArtistByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if artist == nil {
		return nil, nil
	}
	if !snap.InitialSetupDone {
		return artist, nil
	}

	songs, err := r.songsForArtistWith(ctx, snap, id)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, nil
	}
	return artist, nil
}

// WatchArtistByID emits the artist (or nil) reactively.
func (r *Repository) WatchArtistByID(ctx context.Context, id int64) <-chan *models.Artist {
	return watch(ctx, r, func(ctx context.Context, snap settings.Snapshot) (*models.Artist, error) {
		return r.artistByIDWith(ctx, snap, id)
	})
}

// SongsForAlbum returns the permitted songs of an album in track order.
func (r *Repository) SongsForAlbum(ctx context.Context, albumID int64) ([]models.Song, error) {
	return r.songsForAlbumWith(ctx, r.settings.Snapshot(), albumID)
}

// songsForAlbumWith takes the caller's snapshot so a presence check and its
// song lookup see the same settings state.
func (r *Repository) songsForAlbumWith(ctx context.Context, snap settings.Snapshot, albumID int64) ([]models.Song, error) {
	if gatedEmpty(snap) {
		return []models.Song{}, nil
	}

	songs, err := r.lib.SongsByAlbumID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	return permittedSongs(songs, snap), nil
}

// SongsForArtist returns the permitted songs of an artist.
func (r *Repository) SongsForArtist(ctx context.Context, artistID int64) ([]models.Song, error) {
	return r.songsForArtistWith(ctx, r.settings.Snapshot(), artistID)
}

func (r *Repository) songsForArtistWith(ctx context.Context, snap settings.Snapshot, artistID int64) ([]models.Song, error) {
	if gatedEmpty(snap) {
		return []models.Song{}, nil
	}

	songs, err := r.lib.SongsByArtistID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	return permittedSongs(songs, snap), nil
}

// ToggleFavorite flips a song's favorite flag and returns the new value.
// Malformed ids are a safe no-op returning false.
func (r *Repository) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	songID, ok := parseSongID(r, id)
	if !ok {
		return false, nil
	}
	return r.lib.ToggleFavorite(ctx, songID)
}

// AlbumArtLocators returns the distinct album art locators across the
// permitted song set, in song order.
func (r *Repository) AlbumArtLocators(ctx context.Context) ([]string, error) {
	snap := r.settings.Snapshot()
	if gatedEmpty(snap) {
		return []string{}, nil
	}

	songs, err := r.lib.Songs(ctx, filterFor(snap))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	locators := []string{}
	for _, song := range songs {
		if song.AlbumArtURI == "" || seen[song.AlbumArtURI] {
			continue
		}
		seen[song.AlbumArtURI] = true
		locators = append(locators, song.AlbumArtURI)
	}
	return locators, nil
}

// permittedSongs applies the directory policy to an already-fetched list.
func permittedSongs(songs []models.Song, snap settings.Snapshot) []models.Song {
	if !snap.InitialSetupDone {
		return songs
	}
	kept := make([]models.Song, 0, len(songs))
	for _, song := range songs {
		if snap.DirAllowed(song.ParentDir) {
			kept = append(kept, song)
		}
	}
	return kept
}

// parseSongID parses a string song id, logging and rejecting malformed
// values instead of propagating an error.
func parseSongID(r *Repository, id string) (int64, bool) {
	songID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		r.logger.WithField("song_id", id).Warn("Ignoring malformed song id")
		return 0, false
	}
	return songID, true
}
