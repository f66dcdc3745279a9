package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Tracker Feed</title>
    <link>https://tracker.example/rss</link>
    <item>
      <title>Some Show S01E01 1080p</title>
      <link>https://tracker.example/dl/1.torrent</link>
      <category>Series HD</category>
    </item>
    <item>
      <title>Some Movie 2024</title>
      <link>https://tracker.example/dl/2.torrent</link>
      <category>Peliculas</category>
    </item>
    <item>
      <title>Uncategorized Thing</title>
      <link>https://tracker.example/dl/3.torrent</link>
    </item>
  </channel>
</rss>`

func TestFetch_ParsesEntriesInOrder(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "torrentdrop-test/1.0")
	feed, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Tracker Feed", feed.Title)
	assert.Equal(t, "torrentdrop-test/1.0", gotUA)

	require.Len(t, feed.Entries, 3)
	assert.Equal(t, "Some Show S01E01 1080p", feed.Entries[0].Title)
	assert.Equal(t, "https://tracker.example/dl/1.torrent", feed.Entries[0].Link)
	assert.Equal(t, "Series HD", feed.Entries[0].Category)
	assert.Equal(t, "Peliculas", feed.Entries[1].Category)
	assert.Equal(t, "", feed.Entries[2].Category)
}

func TestFetch_EmptyFeedIsNotAnError(t *testing.T) {
	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(empty))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "torrentdrop-test/1.0")
	feed, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, feed.Entries)
}

func TestFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "torrentdrop-test/1.0")
	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching feed")
}

func TestFetch_UnparseableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "torrentdrop-test/1.0")
	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing feed")
}

func TestFetch_ConnectionRefused(t *testing.T) {
	fetcher := NewFetcher(1*time.Second, "torrentdrop-test/1.0")
	_, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/rss")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching feed")
}

func TestFetch_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	fetcher := NewFetcher(5*time.Second, "torrentdrop-test/1.0")
	_, err := fetcher.Fetch(ctx, server.URL)
	require.Error(t, err)
}
