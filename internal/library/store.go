package library

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a *sql.DB providing the persistent music library: songs,
// albums, artists, search history and transition rules. It is safe for
// concurrent use because the underlying *sql.DB is concurrency-safe; change
// notification is guarded by its own mutex.
type Store struct {
	conn   *sql.DB
	logger *logrus.Logger

	// Prepared statements for the hot point lookups
	getSongByIDStmt  *sql.Stmt
	updateLyricsStmt *sql.Stmt

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// Filter scopes a list or search query to a set of allowed parent
// directories. When Apply is false results are unfiltered (used before
// initial setup completes).
type Filter struct {
	AllowedParentDirs []string
	Apply             bool
}

// Unfiltered is the passthrough filter.
var Unfiltered = Filter{}

// NewStore opens (or creates) a SQLite database at the provided path and
// ensures all required tables and indices exist. It also applies lightweight
// performance-oriented pragmas (WAL, cache sizing). Caller should Close() it
// when finished.
func NewStore(dbPath string, maxConns int, logger *logrus.Logger) (*Store, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool - SQLite works better with fewer connections
	if maxConns < 1 {
		maxConns = 5
	}
	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(15 * time.Minute)

	// Enable WAL mode for better concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=2000;",
		"PRAGMA temp_store=memory;",
		"PRAGMA foreign_keys=ON;",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			logger.WithError(err).WithField("pragma", pragma).Warn("Failed to set pragma")
		}
	}

	s := &Store{
		conn:   conn,
		logger: logger,
		subs:   make(map[int]chan struct{}),
	}

	if err := s.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := s.prepareStatements(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	logger.WithField("db_path", dbPath).Info("Library store initialized")
	return s, nil
}

// createTables creates tables and indices if they do not already exist. This
// is idempotent and safe to call multiple times.
func (s *Store) createTables() error {
	songsTable := `
	CREATE TABLE IF NOT EXISTS songs (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		artist_name TEXT NOT NULL,
		artist_id INTEGER NOT NULL,
		album_name TEXT NOT NULL,
		album_id INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		file_path TEXT NOT NULL,
		parent_directory_path TEXT NOT NULL,
		content_uri TEXT NOT NULL,
		album_art_uri TEXT,
		genre TEXT,
		track_number INTEGER DEFAULT 0,
		lyrics TEXT,
		favorite BOOLEAN NOT NULL DEFAULT FALSE
	);`

	albumsTable := `
	CREATE TABLE IF NOT EXISTS albums (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		artist_name TEXT NOT NULL,
		artist_id INTEGER NOT NULL,
		album_art_uri TEXT,
		song_count INTEGER NOT NULL DEFAULT 0
	);`

	artistsTable := `
	CREATE TABLE IF NOT EXISTS artists (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		track_count INTEGER NOT NULL DEFAULT 0
	);`

	searchHistoryTable := `
	CREATE TABLE IF NOT EXISTS search_history (
		query TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL
	);`

	transitionRulesTable := `
	CREATE TABLE IF NOT EXISTS transition_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		playlist_id TEXT NOT NULL,
		from_track_id TEXT NOT NULL DEFAULT '',
		to_track_id TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL,
		mode TEXT NOT NULL,
		curve_in TEXT NOT NULL,
		curve_out TEXT NOT NULL,
		UNIQUE(playlist_id, from_track_id, to_track_id)
	);`

	indices := []string{
		"CREATE INDEX IF NOT EXISTS idx_songs_parent_dir ON songs(parent_directory_path);",
		"CREATE INDEX IF NOT EXISTS idx_songs_album ON songs(album_id);",
		"CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs(artist_id);",
		"CREATE INDEX IF NOT EXISTS idx_songs_search ON songs(title, artist_name);",
		"CREATE INDEX IF NOT EXISTS idx_search_history_time ON search_history(timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_transition_rules_playlist ON transition_rules(playlist_id);",
	}

	tables := []string{songsTable, albumsTable, artistsTable, searchHistoryTable, transitionRulesTable}
	for _, table := range tables {
		if _, err := s.conn.Exec(table); err != nil {
			return err
		}
	}

	for _, index := range indices {
		if _, err := s.conn.Exec(index); err != nil {
			return err
		}
	}

	return nil
}

// prepareStatements prepares commonly used SQL statements.
func (s *Store) prepareStatements() error {
	var err error

	s.getSongByIDStmt, err = s.conn.Prepare(songSelectColumns + ` FROM songs WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get song by ID statement: %w", err)
	}

	s.updateLyricsStmt, err = s.conn.Prepare(`UPDATE songs SET lyrics = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare update lyrics statement: %w", err)
	}

	return nil
}

// Subscribe returns a channel that ticks after every committed mutation of
// the music tables. The channel is buffered with depth one and coalesces
// bursts; consumers treat a tick as "re-read whatever you care about". Call
// the returned cancel function to unsubscribe.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// notify wakes all subscribers without blocking.
func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close closes the underlying database connection and prepared statements.
func (s *Store) Close() error {
	statements := []*sql.Stmt{
		s.getSongByIDStmt,
		s.updateLyricsStmt,
	}
	for _, stmt := range statements {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				s.logger.WithError(err).Error("Failed to close prepared statement")
			}
		}
	}

	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// dirFilterClause renders the directory scoping of a Filter as a SQL
// condition on the given column. An applied filter with an empty allowed set
// matches nothing.
func dirFilterClause(column string, f Filter) (string, []interface{}) {
	if !f.Apply {
		return "", nil
	}
	if len(f.AllowedParentDirs) == 0 {
		return "1 = 0", nil
	}
	placeholders := strings.Repeat("?,", len(f.AllowedParentDirs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(f.AllowedParentDirs))
	for i, d := range f.AllowedParentDirs {
		args[i] = d
	}
	return fmt.Sprintf("%s IN (%s)", column, placeholders), args
}

// combineWhere joins non-empty conditions into a WHERE clause.
func combineWhere(conds ...string) string {
	var kept []string
	for _, c := range conds {
		if c != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(kept, " AND ")
}

// escapeLike neutralizes LIKE wildcards in user input so a query such as
// "100%" matches the literal text. Queries built with it must carry an
// ESCAPE '\' clause.
func escapeLike(query string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
}
