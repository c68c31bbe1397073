package repository

import (
	"context"
	"time"

	"arioso/pkg/models"
)

// SearchSongs performs a permission-filtered substring search over songs.
func (r *Repository) SearchSongs(ctx context.Context, query string) ([]models.Song, error) {
	snap := r.settings.Snapshot()
	if gatedEmpty(snap) {
		return []models.Song{}, nil
	}
	return r.lib.SearchSongs(ctx, query, filterFor(snap))
}

// SearchAlbums performs a permission-filtered substring search over albums.
func (r *Repository) SearchAlbums(ctx context.Context, query string) ([]models.Album, error) {
	snap := r.settings.Snapshot()
	if gatedEmpty(snap) {
		return []models.Album{}, nil
	}
	return r.lib.SearchAlbums(ctx, query, filterFor(snap))
}

// SearchArtists performs a permission-filtered substring search over artists.
func (r *Repository) SearchArtists(ctx context.Context, query string) ([]models.Artist, error) {
	snap := r.settings.Snapshot()
	if gatedEmpty(snap) {
		return []models.Artist{}, nil
	}
	return r.lib.SearchArtists(ctx, query, filterFor(snap))
}

// SearchPlaylists is a stub until playlists become first-class library
// entities; it always returns an empty match set.
func (r *Repository) SearchPlaylists(ctx context.Context, query string) ([]models.Playlist, error) {
	return []models.Playlist{}, nil
}

// SearchAll fans out to the per-entity searches and concatenates the tagged
// results in a fixed order: songs, then albums, then artists, then
// playlists. A single-type filter returns only that type's results.
func (r *Repository) SearchAll(ctx context.Context, query string, filter models.SearchFilterType) ([]models.SearchResultItem, error) {
	results := []models.SearchResultItem{}

	if filter == models.SearchFilterAll || filter == models.SearchFilterSongs {
		songs, err := r.SearchSongs(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, song := range songs {
			results = append(results, models.SongResult{Song: song})
		}
	}

	if filter == models.SearchFilterAll || filter == models.SearchFilterAlbums {
		albums, err := r.SearchAlbums(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, album := range albums {
			results = append(results, models.AlbumResult{Album: album})
		}
	}

	if filter == models.SearchFilterAll || filter == models.SearchFilterArtists {
		artists, err := r.SearchArtists(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, artist := range artists {
			results = append(results, models.ArtistResult{Artist: artist})
		}
	}

	if filter == models.SearchFilterAll || filter == models.SearchFilterPlaylists {
		playlists, err := r.SearchPlaylists(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, playlist := range playlists {
			results = append(results, models.PlaylistResult{Playlist: playlist})
		}
	}

	return results, nil
}

// AddSearchHistory remembers a query with the current timestamp. Repeats
// refresh the timestamp rather than duplicating the row.
func (r *Repository) AddSearchHistory(ctx context.Context, query string) error {
	if query == "" {
		return nil
	}
	return r.lib.InsertSearchQuery(ctx, query, time.Now().UnixMilli())
}

// RecentSearches returns up to limit remembered queries, newest first.
func (r *Repository) RecentSearches(ctx context.Context, limit int) ([]models.SearchHistoryItem, error) {
	return r.lib.RecentSearches(ctx, limit)
}

// DeleteSearchHistory forgets one remembered query.
func (r *Repository) DeleteSearchHistory(ctx context.Context, query string) error {
	return r.lib.DeleteSearchQuery(ctx, query)
}

// ClearSearchHistory forgets all remembered queries.
func (r *Repository) ClearSearchHistory(ctx context.Context) error {
	return r.lib.ClearSearchHistory(ctx)
}
