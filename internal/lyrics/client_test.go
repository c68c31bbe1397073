package lyrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get", r.URL.Path)
		assert.Equal(t, "Karma Police", r.URL.Query().Get("track_name"))
		assert.Equal(t, "Radiohead", r.URL.Query().Get("artist_name"))
		assert.Equal(t, "OK Computer", r.URL.Query().Get("album_name"))
		assert.Equal(t, "261", r.URL.Query().Get("duration"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 42,
			"trackName": "Karma Police",
			"artistName": "Radiohead",
			"albumName": "OK Computer",
			"duration": 261.0,
			"plainLyrics": "first line\nsecond line",
			"syncedLyrics": "[00:01.50]first line\n[00:03.00]second line"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	record, err := client.Get(context.Background(), "Karma Police", "Radiohead", "OK Computer", 261)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, int64(42), record.ID)
	assert.Equal(t, "first line\nsecond line", record.PlainLyrics)
	assert.Contains(t, record.SyncedLyrics, "[00:01.50]")
}

func TestClientGetNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	record, err := client.Get(context.Background(), "Nope", "Nobody", "", 100)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, ErrNoLyricsFound)
}

func TestClientGetEmptyRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 7, "instrumental": true, "plainLyrics": "", "syncedLyrics": ""}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	record, err := client.Get(context.Background(), "Interlude", "Someone", "", 30)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, ErrNoLyricsFound)
}

func TestClientGetServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	record, err := client.Get(context.Background(), "Anything", "Anyone", "", 100)
	assert.Nil(t, record)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoLyricsFound)
}
