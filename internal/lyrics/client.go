package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoLyricsFound marks a successful lookup that produced no usable text,
// including 404 responses and records with both text fields blank.
var ErrNoLyricsFound = errors.New("no lyrics found")

// Response is the remote lookup record. Either text field may be blank.
type Response struct {
	ID           int64   `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Client looks up lyrics by track metadata against an LRCLIB-compatible API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Get fetches the lyrics record matching the given track exactly. Duration
// is whole seconds. Returns ErrNoLyricsFound when the service has no match
// or the match carries no text.
func (c *Client) Get(ctx context.Context, trackName, artistName, albumName string, durationSec int64) (*Response, error) {
	params := url.Values{}
	params.Set("track_name", trackName)
	params.Set("artist_name", artistName)
	params.Set("album_name", albumName)
	params.Set("duration", strconv.FormatInt(durationSec, 10))

	reqURL := c.baseURL + "/api/get?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lyrics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoLyricsFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lyrics request failed with status %d", resp.StatusCode)
	}

	var record Response
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode lyrics response: %w", err)
	}

	if record.SyncedLyrics == "" && record.PlainLyrics == "" {
		return nil, ErrNoLyricsFound
	}

	c.logger.WithFields(logrus.Fields{
		"track":  trackName,
		"artist": artistName,
		"synced": record.SyncedLyrics != "",
	}).Debug("Fetched remote lyrics")
	return &record, nil
}
