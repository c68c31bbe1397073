package library

import (
	"context"
	"database/sql"
	"fmt"

	"arioso/pkg/models"
)

const songSelectColumns = `SELECT id, title, artist_name, artist_id, album_name, album_id, duration_ms,
	file_path, parent_directory_path, content_uri, album_art_uri, genre, track_number, lyrics, favorite`

// Songs returns all songs matching the directory filter, ordered by title to
// match the media index fetch order.
func (s *Store) Songs(ctx context.Context, f Filter) ([]models.Song, error) {
	cond, args := dirFilterClause("parent_directory_path", f)
	query := songSelectColumns + ` FROM songs` + combineWhere(cond) + ` ORDER BY title, id`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSongRows(rows)
}

// SongByID returns a single song or nil when no row exists. The directory
// filter is intentionally not applied here; permission checks on point
// lookups live in the repository, which also needs the unfiltered row.
func (s *Store) SongByID(ctx context.Context, id int64) (*models.Song, error) {
	row := s.getSongByIDStmt.QueryRowContext(ctx, id)
	song, err := scanSongRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song %d: %w", id, err)
	}
	return &song, nil
}

// SongsByIDs returns the songs for the given ids, preserving the
// caller-supplied id ordering. Ids without a matching row, or whose row fails
// the directory filter, are dropped from the result.
func (s *Store) SongsByIDs(ctx context.Context, ids []int64, f Filter) ([]models.Song, error) {
	if len(ids) == 0 {
		return []models.Song{}, nil
	}

	args := make([]interface{}, len(ids))
	placeholders := ""
	for i, id := range ids {
		args[i] = id
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
	}

	cond, dirArgs := dirFilterClause("parent_directory_path", f)
	query := songSelectColumns + ` FROM songs` + combineWhere(fmt.Sprintf("id IN (%s)", placeholders), cond)
	args = append(args, dirArgs...)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fetched, err := scanSongRows(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Song, len(fetched))
	for _, song := range fetched {
		byID[song.ID] = song
	}

	ordered := make([]models.Song, 0, len(ids))
	for _, id := range ids {
		if song, ok := byID[id]; ok {
			ordered = append(ordered, song)
		}
	}
	return ordered, nil
}

// SongsByAlbumID returns all songs of an album, unfiltered, ordered by track
// number then title.
func (s *Store) SongsByAlbumID(ctx context.Context, albumID int64) ([]models.Song, error) {
	query := songSelectColumns + ` FROM songs WHERE album_id = ? ORDER BY track_number, title`
	rows, err := s.conn.QueryContext(ctx, query, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSongRows(rows)
}

// SongsByArtistID returns all songs of an artist, unfiltered, ordered by
// album then track number.
func (s *Store) SongsByArtistID(ctx context.Context, artistID int64) ([]models.Song, error) {
	query := songSelectColumns + ` FROM songs WHERE artist_id = ? ORDER BY album_name, track_number, title`
	rows, err := s.conn.QueryContext(ctx, query, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSongRows(rows)
}

// SearchSongs performs a case-insensitive substring search over title and
// artist name. A blank query returns an empty result without touching
// storage.
func (s *Store) SearchSongs(ctx context.Context, query string, f Filter) ([]models.Song, error) {
	if query == "" {
		return []models.Song{}, nil
	}
	like := "%" + escapeLike(query) + "%"

	cond, dirArgs := dirFilterClause("parent_directory_path", f)
	sqlQuery := songSelectColumns + ` FROM songs` +
		combineWhere(`(title LIKE ? ESCAPE '\' OR artist_name LIKE ? ESCAPE '\')`, cond) + ` ORDER BY title, id`
	args := append([]interface{}{like, like}, dirArgs...)

	rows, err := s.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		s.logger.WithError(err).WithField("query", query).Error("Failed to search songs")
		return nil, err
	}
	defer rows.Close()
	return scanSongRows(rows)
}

// AllSongLyrics returns a map of song id to cached lyrics for every stored
// song, including blank entries. Used by the sync engine to snapshot
// user-authored lyrics before a destructive replace.
func (s *Store) AllSongLyrics(ctx context.Context) (map[int64]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, lyrics FROM songs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lyricsByID := make(map[int64]string)
	for rows.Next() {
		var id int64
		var lyrics sql.NullString
		if err := rows.Scan(&id, &lyrics); err != nil {
			return nil, err
		}
		lyricsByID[id] = lyrics.String
	}
	return lyricsByID, rows.Err()
}

// AllSongFavorites returns the ids of all songs currently marked favorite.
// Like AllSongLyrics, it feeds the sync engine's pre-replace snapshot.
func (s *Store) AllSongFavorites(ctx context.Context) (map[int64]bool, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id FROM songs WHERE favorite`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favorites := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		favorites[id] = true
	}
	return favorites, rows.Err()
}

// ToggleFavorite flips a song's favorite flag and returns the new value. A
// missing song id is a no-op that returns false.
func (s *Store) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE songs SET favorite = NOT favorite WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite for song %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		s.logger.WithField("song_id", id).Warn("Toggle favorite on unknown song")
		return false, nil
	}

	var favorite bool
	if err := tx.QueryRowContext(ctx, `SELECT favorite FROM songs WHERE id = ?`, id).Scan(&favorite); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	s.notify()
	return favorite, nil
}

// UpdateLyrics unconditionally overwrites a song's cached lyrics field.
func (s *Store) UpdateLyrics(ctx context.Context, id int64, lyrics string) error {
	if _, err := s.updateLyricsStmt.ExecContext(ctx, lyrics, id); err != nil {
		return fmt.Errorf("failed to update lyrics for song %d: %w", id, err)
	}
	s.notify()
	return nil
}

// UpdateSongMetadata unconditionally overwrites the editable fields of a
// song row.
func (s *Store) UpdateSongMetadata(ctx context.Context, id int64, title, artist, album, genre, lyrics string, trackNumber int) error {
	_, err := s.conn.ExecContext(ctx, `
		UPDATE songs SET title = ?, artist_name = ?, album_name = ?, genre = ?, lyrics = ?, track_number = ?
		WHERE id = ?`,
		title, artist, album, genre, lyrics, trackNumber, id)
	if err != nil {
		return fmt.Errorf("failed to update metadata for song %d: %w", id, err)
	}
	s.notify()
	return nil
}

// ReplaceAll atomically swaps the entire song/album/artist content for the
// given sets. Readers never observe an empty or partially populated library:
// the clear and all inserts commit as one transaction.
func (s *Store) ReplaceAll(ctx context.Context, songs []models.Song, albums []models.Album, artists []models.Artist) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"songs", "albums", "artists"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	songStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO songs (id, title, artist_name, artist_id, album_name, album_id, duration_ms,
			file_path, parent_directory_path, content_uri, album_art_uri, genre, track_number, lyrics, favorite)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer songStmt.Close()

	for _, song := range songs {
		_, err := songStmt.ExecContext(ctx,
			song.ID, song.Title, song.Artist, song.ArtistID, song.Album, song.AlbumID, song.DurationMs,
			song.FilePath, song.ParentDir, song.ContentURI, nullable(song.AlbumArtURI), nullable(song.Genre),
			song.TrackNumber, nullable(song.Lyrics), song.Favorite)
		if err != nil {
			return fmt.Errorf("failed to insert song %d: %w", song.ID, err)
		}
	}

	albumStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO albums (id, title, artist_name, artist_id, album_art_uri, song_count)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer albumStmt.Close()

	for _, album := range albums {
		_, err := albumStmt.ExecContext(ctx,
			album.ID, album.Title, album.ArtistName, album.ArtistID, nullable(album.AlbumArtURI), album.SongCount)
		if err != nil {
			return fmt.Errorf("failed to insert album %d: %w", album.ID, err)
		}
	}

	artistStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO artists (id, name, track_count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer artistStmt.Close()

	for _, artist := range artists {
		if _, err := artistStmt.ExecContext(ctx, artist.ID, artist.Name, artist.TrackCount); err != nil {
			return fmt.Errorf("failed to insert artist %d: %w", artist.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.notify()
	return nil
}

// nullable maps an empty string to SQL NULL.
func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSongRow(row rowScanner) (models.Song, error) {
	var song models.Song
	var albumArt, genre, lyrics sql.NullString
	err := row.Scan(
		&song.ID, &song.Title, &song.Artist, &song.ArtistID, &song.Album, &song.AlbumID,
		&song.DurationMs, &song.FilePath, &song.ParentDir, &song.ContentURI,
		&albumArt, &genre, &song.TrackNumber, &lyrics, &song.Favorite)
	if err != nil {
		return models.Song{}, err
	}
	song.AlbumArtURI = albumArt.String
	song.Genre = genre.String
	song.Lyrics = lyrics.String
	return song, nil
}

// scanSongRows scans standard song result sets. Callers must have already
// deferred rows.Close().
func scanSongRows(rows *sql.Rows) ([]models.Song, error) {
	songs := []models.Song{}
	for rows.Next() {
		song, err := scanSongRow(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}
