package repository

import (
	"context"

	"arioso/internal/metadata"
)

// EditSongMetadata overwrites the editable fields of a song. The library row
// is always updated; for formats the tag editor supports, the new tags are
// also written into the file itself so the edit survives a re-sync.
func (r *Repository) EditSongMetadata(ctx context.Context, id string, edit metadata.SongEdit) error {
	songID, ok := parseSongID(r, id)
	if !ok {
		return nil
	}

	song, err := r.lib.SongByID(ctx, songID)
	if err != nil {
		return err
	}
	if song == nil {
		return nil
	}

	if r.editor != nil && r.editor.CanWrite(song.FilePath) {
		if err := r.editor.WriteTags(song.FilePath, edit); err != nil {
			return err
		}
	}

	err = r.lib.UpdateSongMetadata(ctx, songID,
		edit.Title, edit.Artist, edit.Album, edit.Genre, edit.Lyrics, edit.TrackNumber)
	if err != nil {
		return err
	}

	r.lyricsCache.InvalidateLyrics(songID)
	return nil
}
