package transition

import (
	"context"

	"arioso/internal/library"
	"arioso/internal/settings"
	"arioso/pkg/models"

	"github.com/sirupsen/logrus"
)

// Resolver answers "how should playback move from this track to the next"
// by walking a fixed precedence chain: the rule for the exact track pair,
// then the playlist-wide default rule, then the global settings.
type Resolver struct {
	store    *library.Store
	settings *settings.Store
	logger   *logrus.Logger
}

func NewResolver(store *library.Store, settingsStore *settings.Store, logger *logrus.Logger) *Resolver {
	return &Resolver{
		store:    store,
		settings: settingsStore,
		logger:   logger,
	}
}

// Resolve runs the precedence chain once for the given pair. Lookup errors
// degrade to the next layer rather than failing the caller; the chain always
// produces settings.
func (r *Resolver) Resolve(ctx context.Context, playlistID, fromTrackID, toTrackID string) models.TransitionSettings {
	if playlistID != "" {
		rule, err := r.store.SpecificTransitionRule(ctx, playlistID, fromTrackID, toTrackID)
		if err != nil {
			r.logger.WithError(err).Warn("Failed to look up specific transition rule")
		} else if rule != nil {
			return rule.Settings
		}

		rule, err = r.store.PlaylistDefaultTransitionRule(ctx, playlistID)
		if err != nil {
			r.logger.WithError(err).Warn("Failed to look up playlist default transition rule")
		} else if rule != nil {
			return rule.Settings
		}
	}

	return r.settings.Snapshot().GlobalTransition
}

// Watch re-runs the precedence chain whenever a transition rule or the
// global settings change, emitting the freshly resolved settings. The first
// value arrives immediately. Cancel ctx to unsubscribe.
func (r *Resolver) Watch(ctx context.Context, playlistID, fromTrackID, toTrackID string) <-chan models.TransitionSettings {
	out := make(chan models.TransitionSettings, 1)

	rulesTick, cancelRules := r.store.Subscribe()
	settingsTick, cancelSettings := r.settings.Subscribe()

	go func() {
		defer close(out)
		defer cancelRules()
		defer cancelSettings()

		emit := func() {
			resolved := r.Resolve(ctx, playlistID, fromTrackID, toTrackID)
			// Drop the stale pending value, if any, then enqueue.
			select {
			case <-out:
			default:
			}
			select {
			case out <- resolved:
			default:
			}
		}
		emit()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-rulesTick:
				if !ok {
					return
				}
				emit()
			case _, ok := <-settingsTick:
				if !ok {
					return
				}
				emit()
			}
		}
	}()
	return out
}

// SaveRule upserts a rule on its (playlist, from, to) key and returns the
// stored rule with its id populated.
func (r *Resolver) SaveRule(ctx context.Context, rule models.TransitionRule) (models.TransitionRule, error) {
	id, err := r.store.SaveTransitionRule(ctx, rule)
	if err != nil {
		return models.TransitionRule{}, err
	}
	rule.ID = id
	return rule, nil
}

// DeleteRule removes a rule by id.
func (r *Resolver) DeleteRule(ctx context.Context, id int64) error {
	return r.store.DeleteTransitionRule(ctx, id)
}

// DeletePlaylistDefault removes the playlist-wide default rule.
func (r *Resolver) DeletePlaylistDefault(ctx context.Context, playlistID string) error {
	return r.store.DeletePlaylistDefaultRule(ctx, playlistID)
}

// RulesForPlaylist lists every rule bound to a playlist.
func (r *Resolver) RulesForPlaylist(ctx context.Context, playlistID string) ([]models.TransitionRule, error) {
	return r.store.TransitionRulesForPlaylist(ctx, playlistID)
}

// GlobalSettings returns the global fallback settings.
func (r *Resolver) GlobalSettings() models.TransitionSettings {
	return r.settings.Snapshot().GlobalTransition
}

// SaveGlobalSettings overwrites the global fallback settings.
func (r *Resolver) SaveGlobalSettings(ts models.TransitionSettings) error {
	return r.settings.SetGlobalTransitionSettings(ts)
}
