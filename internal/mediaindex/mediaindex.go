package mediaindex

import (
	"context"

	"arioso/pkg/models"
)

// Source is the upstream view of music files available to the library.
// QueryMusic returns playable songs only: known audio formats above the
// minimum duration, ordered by title. Songs come back with device-assigned
// ids; canonical artist and album ids are assigned later during a sync.
type Source interface {
	QueryMusic(ctx context.Context) ([]models.Song, error)
	QueryFilePaths(ctx context.Context) ([]string, error)
}
