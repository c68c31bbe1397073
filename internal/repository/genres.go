package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"arioso/internal/settings"
	"arioso/pkg/models"
)

const unknownGenreName = "Unknown"

// mockGenreNames is a fixed demo genre set for the mock-genre toggle, used
// to exercise genre UIs against libraries with poor tagging.
var mockGenreNames = []string{
	"Ambient", "Classical", "Electronic", "Hip-Hop", "Jazz", "Pop", "Rock",
}

// Genres derives the genre list from the permitted song set: one genre per
// distinct normalized tag, alphabetical with Unknown always last. With the
// mock toggle on, the static mock set is returned instead.
func (r *Repository) Genres(ctx context.Context) ([]models.Genre, error) {
	return r.genresWith(ctx, r.settings.Snapshot())
}

func (r *Repository) genresWith(ctx context.Context, snap settings.Snapshot) ([]models.Genre, error) {
	if snap.MockGenresEnabled {
		genres := make([]models.Genre, len(mockGenreNames))
		for i, name := range mockGenreNames {
			genres[i] = makeGenre(name)
		}
		return genres, nil
	}

	songs, err := r.songsWith(ctx, snap)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	genres := []models.Genre{}
	for _, song := range songs {
		name := normalizeGenreName(song.Genre)
		if seen[name] {
			continue
		}
		seen[name] = true
		genres = append(genres, makeGenre(name))
	}

	sort.Slice(genres, func(i, j int) bool {
		if genres[i].Name == unknownGenreName {
			return false
		}
		if genres[j].Name == unknownGenreName {
			return true
		}
		return genres[i].Name < genres[j].Name
	})
	return genres, nil
}

// WatchGenres emits the derived genre list reactively; it changes together
// with the permitted song set.
func (r *Repository) WatchGenres(ctx context.Context) <-chan []models.Genre {
	return watch(ctx, r, r.genresWith)
}

// SongsByGenre returns the permitted songs carrying the given genre id. The
// "unknown" id matches songs with a blank or absent genre tag. With the mock
// toggle on, songs are spread deterministically across the mock genres.
func (r *Repository) SongsByGenre(ctx context.Context, genreID string) ([]models.Song, error) {
	snap := r.settings.Snapshot()
	songs, err := r.songsWith(ctx, snap)
	if err != nil {
		return nil, err
	}

	if snap.MockGenresEnabled {
		kept := []models.Song{}
		for _, song := range songs {
			mockName := mockGenreNames[int(song.ID%int64(len(mockGenreNames)))]
			if genreIDFor(mockName) == genreID {
				kept = append(kept, song)
			}
		}
		return kept, nil
	}

	kept := []models.Song{}
	for _, song := range songs {
		if genreIDFor(normalizeGenreName(song.Genre)) == genreID {
			kept = append(kept, song)
		}
	}
	return kept, nil
}

// normalizeGenreName trims the tag and maps blanks to the Unknown bucket.
func normalizeGenreName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return unknownGenreName
	}
	return name
}

// genreIDFor derives the stable id of a genre name.
func genreIDFor(name string) string {
	if name == unknownGenreName {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func makeGenre(name string) models.Genre {
	light, dark := genreColors(name)
	return models.Genre{
		ID:              genreIDFor(name),
		Name:            name,
		LightColorHex:   light,
		OnLightColorHex: "#000000",
		DarkColorHex:    dark,
		OnDarkColorHex:  "#FFFFFF",
	}
}

// genreColors derives a deterministic color pair from the genre name: the
// light color is the low 24 bits of a polynomial string hash, the dark
// variant its bitwise complement within those 24 bits. Purely cosmetic;
// collisions between names are acceptable.
func genreColors(name string) (string, string) {
	var h int32
	for _, c := range name {
		h = 31*h + c
	}
	rgb := uint32(h) & 0xFFFFFF
	return fmt.Sprintf("#%06X", rgb), fmt.Sprintf("#%06X", rgb^0xFFFFFF)
}
