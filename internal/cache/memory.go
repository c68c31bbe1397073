package cache

import (
	"fmt"
	"sync"
	"time"

	"arioso/pkg/models"
)

// CacheEntry represents a cached item with expiration
type CacheEntry struct {
	Value      interface{}
	Expiration time.Time
}

// IsExpired checks if the cache entry has expired
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expiration)
}

// MemoryCache implements a simple in-memory cache
type MemoryCache struct {
	items map[string]*CacheEntry
	mutex sync.RWMutex
	ttl   time.Duration
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cache := &MemoryCache{
		items: make(map[string]*CacheEntry),
		mutex: sync.RWMutex{},
		ttl:   ttl,
	}

	// Start cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// Set stores a value in the cache
func (c *MemoryCache) Set(key string, value interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &CacheEntry{
		Value:      value,
		Expiration: time.Now().Add(c.ttl),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.items[key]
	if !exists || entry.IsExpired() {
		return nil, false
	}

	return entry.Value, true
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*CacheEntry)
}

// Size returns the number of items in the cache
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// cleanupExpired removes expired entries periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(time.Minute * 5) // Cleanup every 5 minutes
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		for key, entry := range c.items {
			if entry.IsExpired() {
				delete(c.items, key)
			}
		}
		c.mutex.Unlock()
	}
}

// LyricsCache keeps parsed remote lyrics keyed by song id, so repeated
// lookups for the same song within the TTL skip the network round trip.
type LyricsCache struct {
	*MemoryCache
}

// NewLyricsCache creates a lyrics cache with a one-hour TTL.
func NewLyricsCache() *LyricsCache {
	return &LyricsCache{
		MemoryCache: NewMemoryCache(time.Hour),
	}
}

func lyricsKey(songID int64) string {
	return fmt.Sprintf("lyrics:%d", songID)
}

// SetLyrics caches the parsed lyrics of a song.
func (lc *LyricsCache) SetLyrics(songID int64, lyrics models.Lyrics) {
	lc.Set(lyricsKey(songID), lyrics)
}

// GetLyrics retrieves cached lyrics for a song.
func (lc *LyricsCache) GetLyrics(songID int64) (models.Lyrics, bool) {
	value, exists := lc.Get(lyricsKey(songID))
	if !exists {
		return models.Lyrics{}, false
	}

	lyrics, ok := value.(models.Lyrics)
	return lyrics, ok
}

// InvalidateLyrics drops the cached lyrics for a song, used after a
// metadata edit rewrites the stored text.
func (lc *LyricsCache) InvalidateLyrics(songID int64) {
	lc.Delete(lyricsKey(songID))
}
