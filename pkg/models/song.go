package models

// Song represents a single audio track in the library. Rows are produced by
// the media index during a sync and replaced wholesale on every run; the
// Lyrics and Favorite fields are user-owned and must survive a re-sync.
type Song struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ArtistID    int64  `json:"artistId"`
	Album       string `json:"album"`
	AlbumID     int64  `json:"albumId"`
	DurationMs  int64  `json:"durationMs"`
	FilePath    string `json:"-"` // don't expose file path to client
	ParentDir   string `json:"-"`
	ContentURI  string `json:"contentUri"`
	AlbumArtURI string `json:"albumArtUri,omitempty"`
	Genre       string `json:"genre,omitempty"` // empty means unknown
	TrackNumber int    `json:"trackNumber"`
	Lyrics      string `json:"-"`
	Favorite    bool   `json:"favorite"`
}

// Album is derived from the song set during a sync: one row per canonical
// album id, with the first grouped song as representative.
type Album struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ArtistName  string `json:"artistName"`
	ArtistID    int64  `json:"artistId"`
	AlbumArtURI string `json:"albumArtUri,omitempty"`
	SongCount   int    `json:"songCount"`
}

// Artist is derived from the song set during a sync, one row per canonical
// artist id.
type Artist struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	TrackCount int    `json:"trackCount"`
}

// Playlist represents a user-created playlist.
type Playlist struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"trackCount"`
}
