package library

import (
	"context"
	"fmt"

	"arioso/pkg/models"
)

// InsertSearchQuery records a search query with the given timestamp. Repeating
// a query refreshes its timestamp instead of creating a duplicate row, so the
// query moves back to the front of the recent list.
func (s *Store) InsertSearchQuery(ctx context.Context, query string, timestampMs int64) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO search_history (query, timestamp) VALUES (?, ?)
		ON CONFLICT(query) DO UPDATE SET timestamp = excluded.timestamp`,
		query, timestampMs)
	if err != nil {
		return fmt.Errorf("failed to insert search query: %w", err)
	}
	return nil
}

// DeleteSearchQuery removes a single remembered query. Unknown queries are a
// no-op.
func (s *Store) DeleteSearchQuery(ctx context.Context, query string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM search_history WHERE query = ?`, query); err != nil {
		return fmt.Errorf("failed to delete search query: %w", err)
	}
	return nil
}

// RecentSearches returns the most recent distinct queries, newest first.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]models.SearchHistoryItem, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT query, timestamp FROM search_history ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.SearchHistoryItem{}
	for rows.Next() {
		var item models.SearchHistoryItem
		if err := rows.Scan(&item.Query, &item.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ClearSearchHistory wipes all remembered queries.
func (s *Store) ClearSearchHistory(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM search_history`); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}
