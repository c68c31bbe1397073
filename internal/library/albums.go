package library

import (
	"context"
	"database/sql"
	"fmt"

	"arioso/pkg/models"
)

const albumSelectColumns = `SELECT id, title, artist_name, artist_id, album_art_uri, song_count`

// Albums returns all albums that still have at least one song passing the
// directory filter, ordered by title.
func (s *Store) Albums(ctx context.Context, f Filter) ([]models.Album, error) {
	cond, args := albumDirFilter(f)
	query := albumSelectColumns + ` FROM albums` + combineWhere(cond) + ` ORDER BY title, id`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlbumRows(rows)
}

// AlbumByID returns a single album or nil when no row exists. Unfiltered;
// the repository decides visibility from the album's songs.
func (s *Store) AlbumByID(ctx context.Context, id int64) (*models.Album, error) {
	row := s.conn.QueryRowContext(ctx, albumSelectColumns+` FROM albums WHERE id = ?`, id)
	album, err := scanAlbumRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album %d: %w", id, err)
	}
	return &album, nil
}

// SearchAlbums performs a case-insensitive substring search over album title
// and artist name. A blank query returns an empty result.
func (s *Store) SearchAlbums(ctx context.Context, query string, f Filter) ([]models.Album, error) {
	if query == "" {
		return []models.Album{}, nil
	}
	like := "%" + escapeLike(query) + "%"

	cond, dirArgs := albumDirFilter(f)
	sqlQuery := albumSelectColumns + ` FROM albums` +
		combineWhere(`(title LIKE ? ESCAPE '\' OR artist_name LIKE ? ESCAPE '\')`, cond) + ` ORDER BY title, id`
	args := append([]interface{}{like, like}, dirArgs...)

	rows, err := s.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		s.logger.WithError(err).WithField("query", query).Error("Failed to search albums")
		return nil, err
	}
	defer rows.Close()
	return scanAlbumRows(rows)
}

// Artists returns all artists that still have at least one song passing the
// directory filter, ordered by name.
func (s *Store) Artists(ctx context.Context, f Filter) ([]models.Artist, error) {
	cond, args := artistDirFilter(f)
	query := `SELECT id, name, track_count FROM artists` + combineWhere(cond) + ` ORDER BY name, id`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArtistRows(rows)
}

// ArtistByID returns a single artist or nil when no row exists. Unfiltered;
// the repository decides visibility from the artist's songs.
func (s *Store) ArtistByID(ctx context.Context, id int64) (*models.Artist, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT id, name, track_count FROM artists WHERE id = ?`, id)
	var artist models.Artist
	err := row.Scan(&artist.ID, &artist.Name, &artist.TrackCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist %d: %w", id, err)
	}
	return &artist, nil
}

// SearchArtists performs a case-insensitive substring search over artist
// names. A blank query returns an empty result.
func (s *Store) SearchArtists(ctx context.Context, query string, f Filter) ([]models.Artist, error) {
	if query == "" {
		return []models.Artist{}, nil
	}
	like := "%" + escapeLike(query) + "%"

	cond, dirArgs := artistDirFilter(f)
	sqlQuery := `SELECT id, name, track_count FROM artists` +
		combineWhere(`name LIKE ? ESCAPE '\'`, cond) + ` ORDER BY name, id`
	args := append([]interface{}{like}, dirArgs...)

	rows, err := s.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		s.logger.WithError(err).WithField("query", query).Error("Failed to search artists")
		return nil, err
	}
	defer rows.Close()
	return scanArtistRows(rows)
}

// albumDirFilter scopes albums by the songs that reference them; an album
// with no visible songs disappears along with its songs.
func albumDirFilter(f Filter) (string, []interface{}) {
	cond, args := dirFilterClause("songs.parent_directory_path", f)
	if cond == "" {
		return "", nil
	}
	return "EXISTS (SELECT 1 FROM songs WHERE songs.album_id = albums.id AND " + cond + ")", args
}

// artistDirFilter mirrors albumDirFilter for artists.
func artistDirFilter(f Filter) (string, []interface{}) {
	cond, args := dirFilterClause("songs.parent_directory_path", f)
	if cond == "" {
		return "", nil
	}
	return "EXISTS (SELECT 1 FROM songs WHERE songs.artist_id = artists.id AND " + cond + ")", args
}

func scanAlbumRow(row rowScanner) (models.Album, error) {
	var album models.Album
	var art sql.NullString
	err := row.Scan(&album.ID, &album.Title, &album.ArtistName, &album.ArtistID, &art, &album.SongCount)
	if err != nil {
		return models.Album{}, err
	}
	album.AlbumArtURI = art.String
	return album, nil
}

func scanAlbumRows(rows *sql.Rows) ([]models.Album, error) {
	albums := []models.Album{}
	for rows.Next() {
		album, err := scanAlbumRow(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}
	return albums, rows.Err()
}

func scanArtistRows(rows *sql.Rows) ([]models.Artist, error) {
	artists := []models.Artist{}
	for rows.Next() {
		var artist models.Artist
		if err := rows.Scan(&artist.ID, &artist.Name, &artist.TrackCount); err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}
	return artists, rows.Err()
}
