package models

// TransitionMode selects how playback moves from one track to the next.
type TransitionMode string

const (
	TransitionNone      TransitionMode = "NONE"
	TransitionCrossfade TransitionMode = "CROSSFADE"
)

// Curve shapes the fade envelope on either side of a transition.
type Curve string

const (
	CurveLinear    Curve = "LINEAR"
	CurveEaseIn    Curve = "EASE_IN"
	CurveEaseOut   Curve = "EASE_OUT"
	CurveEaseInOut Curve = "EASE_IN_OUT"
)

// TransitionSettings is the configuration fed to the playback engine for a
// single track-to-track transition.
type TransitionSettings struct {
	DurationMs int            `json:"durationMs" toml:"duration_ms"`
	Mode       TransitionMode `json:"mode" toml:"mode"`
	CurveIn    Curve          `json:"curveIn" toml:"curve_in"`
	CurveOut   Curve          `json:"curveOut" toml:"curve_out"`
}

// DefaultTransitionSettings returns the settings used when nothing has been
// configured: plain track changes with no overlap.
func DefaultTransitionSettings() TransitionSettings {
	return TransitionSettings{
		DurationMs: 4000,
		Mode:       TransitionNone,
		CurveIn:    CurveLinear,
		CurveOut:   CurveLinear,
	}
}

// TransitionRule overrides the global transition settings for one playlist,
// or for one specific pair of consecutive tracks within it. Empty track ids
// mark the playlist-wide default rule. ID zero means the rule has not been
// saved yet; at most one rule exists per (playlist, from, to) triple and
// saving a duplicate key overwrites the stored rule.
type TransitionRule struct {
	ID          int64              `json:"id"`
	PlaylistID  string             `json:"playlistId"`
	FromTrackID string             `json:"fromTrackId,omitempty"`
	ToTrackID   string             `json:"toTrackId,omitempty"`
	Settings    TransitionSettings `json:"settings"`
}

// IsPlaylistDefault reports whether the rule applies to the whole playlist
// rather than a specific track pair.
func (r TransitionRule) IsPlaylistDefault() bool {
	return r.FromTrackID == "" && r.ToTrackID == ""
}
