// Package storage persists each chat's named feed URLs in a single bbolt
// file. Values are JSON name->url maps; earlier releases stored one bare URL
// string per chat, which is upgraded transparently on read.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var feedsBucket = []byte("feeds")

// DefaultFeedName labels feeds migrated from the legacy single-URL format.
const DefaultFeedName = "RSS Feed"

// DefaultMaxFeeds is the per-chat feed cap applied when none is configured.
const DefaultMaxFeeds = 10

// ErrFeedLimit is returned by SaveFeed when a chat tries to add a feed under
// a new name while already holding the maximum number of feeds.
var ErrFeedLimit = errors.New("feed limit reached")

type Store struct {
	db       *bolt.DB
	maxFeeds int
}

func NewStore(dbPath string, maxFeeds int) (*Store, error) {
	if maxFeeds < 1 {
		maxFeeds = DefaultMaxFeeds
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(feedsBucket)
		return createErr
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Store{db: db, maxFeeds: maxFeeds}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveFeed inserts or overwrites a named feed URL for a chat. Adding a new
// name beyond the per-chat cap fails with ErrFeedLimit.
func (s *Store) SaveFeed(chatID int64, name, url string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(feedsBucket)
		key := chatKey(chatID)

		feeds := decodeFeeds(b.Get(key))
		if _, exists := feeds[name]; !exists && len(feeds) >= s.maxFeeds {
			return ErrFeedLimit
		}
		feeds[name] = url

		data, err := json.Marshal(feeds)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// DeleteFeed removes a named feed. It reports whether the name existed.
// Removing the last feed drops the chat's record entirely.
func (s *Store) DeleteFeed(chatID int64, name string) (bool, error) {
	removed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(feedsBucket)
		key := chatKey(chatID)

		feeds := decodeFeeds(b.Get(key))
		if _, exists := feeds[name]; !exists {
			return nil
		}
		delete(feeds, name)
		removed = true

		if len(feeds) == 0 {
			return b.Delete(key)
		}

		data, err := json.Marshal(feeds)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
	return removed, err
}

// GetFeed returns the URL stored under name for a chat, if any.
func (s *Store) GetFeed(chatID int64, name string) (string, bool) {
	feeds := s.GetAllFeeds(chatID)
	url, ok := feeds[name]
	return url, ok
}

// GetAllFeeds returns the chat's name->url mapping. Read failures degrade to
// an empty map; map iteration order is not stable across reloads.
func (s *Store) GetAllFeeds(chatID int64) map[string]string {
	feeds := map[string]string{}
	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(feedsBucket)
		feeds = decodeFeeds(b.Get(chatKey(chatID)))
		return nil
	})
	return feeds
}

// CountFeeds returns how many feeds a chat has stored.
func (s *Store) CountFeeds(chatID int64) int {
	return len(s.GetAllFeeds(chatID))
}

func chatKey(chatID int64) []byte {
	return []byte(strconv.FormatInt(chatID, 10))
}

// decodeFeeds tolerates three value shapes: the current JSON map, the legacy
// JSON-encoded single URL string, and a bare URL written without encoding.
// Anything else counts as no data rather than an error.
func decodeFeeds(data []byte) map[string]string {
	if len(data) == 0 {
		return map[string]string{}
	}

	var feeds map[string]string
	if err := json.Unmarshal(data, &feeds); err == nil && feeds != nil {
		return feeds
	}

	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil && legacy != "" {
		return map[string]string{DefaultFeedName: legacy}
	}

	if raw := strings.TrimSpace(string(data)); strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return map[string]string{DefaultFeedName: raw}
	}

	return map[string]string{}
}
