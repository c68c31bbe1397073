package models

// SearchFilterType narrows a combined search to a single entity type.
type SearchFilterType string

const (
	SearchFilterAll       SearchFilterType = "all"
	SearchFilterSongs     SearchFilterType = "songs"
	SearchFilterAlbums    SearchFilterType = "albums"
	SearchFilterArtists   SearchFilterType = "artists"
	SearchFilterPlaylists SearchFilterType = "playlists"
)

// SearchResultItem is a tagged union over the entity types a combined search
// can return.
type SearchResultItem interface {
	isSearchResult()
}

// SongResult wraps a song match.
type SongResult struct {
	Song Song `json:"song"`
}

// AlbumResult wraps an album match.
type AlbumResult struct {
	Album Album `json:"album"`
}

// ArtistResult wraps an artist match.
type ArtistResult struct {
	Artist Artist `json:"artist"`
}

// PlaylistResult wraps a playlist match.
type PlaylistResult struct {
	Playlist Playlist `json:"playlist"`
}

func (SongResult) isSearchResult()     {}
func (AlbumResult) isSearchResult()    {}
func (ArtistResult) isSearchResult()   {}
func (PlaylistResult) isSearchResult() {}

// SearchHistoryItem records a past search query. The query text is the
// identity: re-searching the same text refreshes its timestamp instead of
// adding a second row.
type SearchHistoryItem struct {
	Query     string `json:"query"`
	Timestamp int64  `json:"timestamp"` // unix millis of the insertion
}
