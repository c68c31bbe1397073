package repository

import (
	"context"
	"strings"

	"arioso/internal/lyrics"
	"arioso/pkg/models"
)

// Lyrics resolves a song's lyrics from local sources only: the cached
// library field first, then the embedded tag of the backing audio file. An
// embedded hit is written back to the library asynchronously so the next
// lookup skips the file read. Returns nil (not an error) when the song has
// no lyrics anywhere locally.
func (r *Repository) Lyrics(ctx context.Context, id string) (*models.Lyrics, error) {
	songID, ok := parseSongID(r, id)
	if !ok {
		return nil, nil
	}

	if cached, hit := r.lyricsCache.GetLyrics(songID); hit {
		return &cached, nil
	}

	song, err := r.lib.SongByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if song == nil {
		return nil, nil
	}

	if strings.TrimSpace(song.Lyrics) != "" {
		parsed := lyrics.Parse(song.Lyrics)
		r.lyricsCache.SetLyrics(songID, parsed)
		return &parsed, nil
	}

	embedded, err := r.extractor.ReadLyrics(song.FilePath)
	if err != nil || strings.TrimSpace(embedded) == "" {
		if err != nil {
			r.logger.WithError(err).WithField("song_id", songID).Debug("Failed to read embedded lyrics")
		}
		return nil, nil
	}

	// Persist the embedded text without holding up the caller.
	go func() {
		if err := r.lib.UpdateLyrics(context.Background(), songID, embedded); err != nil {
			r.logger.WithError(err).WithField("song_id", songID).Warn("Failed to cache embedded lyrics")
		}
	}()

	parsed := lyrics.Parse(embedded)
	r.lyricsCache.SetLyrics(songID, parsed)
	return &parsed, nil
}

// LyricsFromRemote fetches lyrics for a song from the remote service,
// persists the raw text into the library, and returns the parsed value
// together with the raw text that was cached. Synced text wins as the
// persisted value; when the service has only synced text, plain lines are
// derived from it.
func (r *Repository) LyricsFromRemote(ctx context.Context, id string) (*models.Lyrics, string, error) {
	songID, ok := parseSongID(r, id)
	if !ok {
		return nil, "", lyrics.ErrNoLyricsFound
	}
	if r.lyricsClient == nil {
		return nil, "", lyrics.ErrNoLyricsFound
	}

	song, err := r.lib.SongByID(ctx, songID)
	if err != nil {
		return nil, "", err
	}
	if song == nil {
		return nil, "", lyrics.ErrNoLyricsFound
	}

	record, err := r.lyricsClient.Get(ctx, song.Title, song.Artist, song.Album, song.DurationMs/1000)
	if err != nil {
		return nil, "", err
	}

	raw := record.SyncedLyrics
	if raw == "" {
		raw = record.PlainLyrics
	}

	if err := r.lib.UpdateLyrics(ctx, songID, raw); err != nil {
		return nil, "", err
	}

	parsed := lyrics.Parse(raw)
	if record.PlainLyrics != "" && record.SyncedLyrics != "" {
		// Plain lines come from the service's plain rendition, not the
		// tagged LRC lines that were persisted.
		parsed.Plain = strings.Split(record.PlainLyrics, "\n")
	} else if record.PlainLyrics == "" && len(parsed.Synced) > 0 {
		plain := make([]string, len(parsed.Synced))
		for i, line := range parsed.Synced {
			plain[i] = line.Text
		}
		parsed.Plain = plain
	}
	parsed.FromRemote = true

	r.lyricsCache.SetLyrics(songID, parsed)
	return &parsed, raw, nil
}
