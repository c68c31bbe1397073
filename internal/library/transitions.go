package library

import (
	"context"
	"database/sql"
	"fmt"

	"arioso/pkg/models"
)

const transitionRuleColumns = `SELECT id, playlist_id, from_track_id, to_track_id, duration_ms, mode, curve_in, curve_out`

// SaveTransitionRule inserts or overwrites the rule for the rule's
// (playlist, from, to) key and returns the stored rule id.
func (s *Store) SaveTransitionRule(ctx context.Context, rule models.TransitionRule) (int64, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transition_rules (playlist_id, from_track_id, to_track_id, duration_ms, mode, curve_in, curve_out)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(playlist_id, from_track_id, to_track_id) DO UPDATE SET
			duration_ms = excluded.duration_ms,
			mode = excluded.mode,
			curve_in = excluded.curve_in,
			curve_out = excluded.curve_out`,
		rule.PlaylistID, rule.FromTrackID, rule.ToTrackID,
		rule.Settings.DurationMs, string(rule.Settings.Mode),
		string(rule.Settings.CurveIn), string(rule.Settings.CurveOut))
	if err != nil {
		return 0, fmt.Errorf("failed to save transition rule: %w", err)
	}

	// The upsert path does not report the surviving row id; read it back
	// inside the same transaction so a concurrent delete cannot race it.
	var id int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM transition_rules
		WHERE playlist_id = ? AND from_track_id = ? AND to_track_id = ?`,
		rule.PlaylistID, rule.FromTrackID, rule.ToTrackID).Scan(&id)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transition rule: %w", err)
	}
	s.notify()
	return id, nil
}

// DeleteTransitionRule removes a rule by id. Unknown ids are a no-op.
func (s *Store) DeleteTransitionRule(ctx context.Context, id int64) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM transition_rules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete transition rule %d: %w", id, err)
	}
	s.notify()
	return nil
}

// DeletePlaylistDefaultRule removes the playlist-wide default rule, leaving
// any track-pair rules in place.
func (s *Store) DeletePlaylistDefaultRule(ctx context.Context, playlistID string) error {
	_, err := s.conn.ExecContext(ctx, `
		DELETE FROM transition_rules
		WHERE playlist_id = ? AND from_track_id = '' AND to_track_id = ''`, playlistID)
	if err != nil {
		return fmt.Errorf("failed to delete playlist default rule: %w", err)
	}
	s.notify()
	return nil
}

// TransitionRulesForPlaylist returns every rule bound to a playlist, the
// playlist-wide default first.
func (s *Store) TransitionRulesForPlaylist(ctx context.Context, playlistID string) ([]models.TransitionRule, error) {
	rows, err := s.conn.QueryContext(ctx, transitionRuleColumns+`
		FROM transition_rules WHERE playlist_id = ?
		ORDER BY from_track_id, to_track_id`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []models.TransitionRule{}
	for rows.Next() {
		rule, err := scanTransitionRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// SpecificTransitionRule looks up the rule for one track pair within a
// playlist, or nil when none is stored.
func (s *Store) SpecificTransitionRule(ctx context.Context, playlistID, fromTrackID, toTrackID string) (*models.TransitionRule, error) {
	row := s.conn.QueryRowContext(ctx, transitionRuleColumns+`
		FROM transition_rules
		WHERE playlist_id = ? AND from_track_id = ? AND to_track_id = ?`,
		playlistID, fromTrackID, toTrackID)
	return scanOptionalTransitionRule(row)
}

// PlaylistDefaultTransitionRule returns the playlist-wide default rule, or
// nil when the playlist has none.
func (s *Store) PlaylistDefaultTransitionRule(ctx context.Context, playlistID string) (*models.TransitionRule, error) {
	row := s.conn.QueryRowContext(ctx, transitionRuleColumns+`
		FROM transition_rules
		WHERE playlist_id = ? AND from_track_id = '' AND to_track_id = ''`, playlistID)
	return scanOptionalTransitionRule(row)
}

func scanTransitionRule(row rowScanner) (models.TransitionRule, error) {
	var rule models.TransitionRule
	var mode, curveIn, curveOut string
	err := row.Scan(&rule.ID, &rule.PlaylistID, &rule.FromTrackID, &rule.ToTrackID,
		&rule.Settings.DurationMs, &mode, &curveIn, &curveOut)
	if err != nil {
		return models.TransitionRule{}, err
	}
	rule.Settings.Mode = models.TransitionMode(mode)
	rule.Settings.CurveIn = models.Curve(curveIn)
	rule.Settings.CurveOut = models.Curve(curveOut)
	return rule, nil
}

func scanOptionalTransitionRule(row *sql.Row) (*models.TransitionRule, error) {
	rule, err := scanTransitionRule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
