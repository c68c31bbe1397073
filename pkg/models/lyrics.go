package models

// SyncedLine is a single lyrics line annotated with its playback timestamp.
type SyncedLine struct {
	TimeMs int    `json:"timeMs"`
	Text   string `json:"text"`
}

// Lyrics is a transient value parsed on demand from a song's cached lyrics
// field or a remote lookup; it is never persisted in this shape.
type Lyrics struct {
	Plain      []string     `json:"plain"`
	Synced     []SyncedLine `json:"synced,omitempty"`
	FromRemote bool         `json:"fromRemote"`
}
