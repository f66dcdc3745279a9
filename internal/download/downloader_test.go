package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDownloader(t *testing.T) *Downloader {
	t.Helper()
	d, err := NewDownloader(t.TempDir(), 5*time.Second, "torrentdrop-test/1.0")
	require.NoError(t, err)
	return d
}

func TestNewDownloader_CreatesWatchFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "watch")

	d, err := NewDownloader(dir, time.Second, "")
	require.NoError(t, err)

	info, err := os.Stat(d.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveUpload(t *testing.T) {
	d := newTestDownloader(t)
	payload := strings.Repeat("x", 2048)

	name, sizeKB, err := d.SaveUpload("Show.S01E01.torrent", strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "Show.S01E01.torrent", name)
	assert.InDelta(t, 2.0, sizeKB, 0.01)

	data, err := os.ReadFile(filepath.Join(d.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
}

func TestSaveUpload_SanitizesHostileNames(t *testing.T) {
	d := newTestDownloader(t)

	name, _, err := d.SaveUpload("../../etc/passwd", strings.NewReader("data"))
	require.NoError(t, err)

	assert.NotContains(t, name, "/")
	assert.True(t, strings.HasSuffix(name, ".torrent"))

	// The file landed inside the watch folder, nowhere else
	_, err = os.Stat(filepath.Join(d.Dir(), name))
	assert.NoError(t, err)
}

func TestSaveUpload_CollisionGetsDistinctName(t *testing.T) {
	d := newTestDownloader(t)

	first, _, err := d.SaveUpload("dup.torrent", strings.NewReader("first"))
	require.NoError(t, err)

	second, _, err := d.SaveUpload("dup.torrent", strings.NewReader("second"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(second, ".torrent"))

	data, err := os.ReadFile(filepath.Join(d.Dir(), first))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data), "original file untouched")

	data, err = os.ReadFile(filepath.Join(d.Dir(), second))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestFetchLink(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("torrent-bytes"))
	}))
	defer server.Close()

	d := newTestDownloader(t)

	name, sizeKB, err := d.FetchLink(context.Background(), "Some Episode", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Some Episode.torrent", name)
	assert.Greater(t, sizeKB, 0.0)
	assert.Equal(t, "torrentdrop-test/1.0", gotUA)

	data, err := os.ReadFile(filepath.Join(d.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, "torrent-bytes", string(data))
}

func TestFetchLink_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	d := newTestDownloader(t)

	_, _, err := d.FetchLink(context.Background(), "Gone", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")

	// No partial file left behind
	count, err := d.CountTorrents()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFetchLink_ConnectionRefused(t *testing.T) {
	d := newTestDownloader(t)

	_, _, err := d.FetchLink(context.Background(), "Unreachable", "http://127.0.0.1:1/x.torrent")
	assert.Error(t, err)
}

func TestFetchLink_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	d := newTestDownloader(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := d.FetchLink(ctx, "Slow", server.URL)
	assert.Error(t, err)
}

func TestCountTorrents(t *testing.T) {
	d := newTestDownloader(t)

	count, err := d.CountTorrents()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	d.SaveUpload("a.torrent", strings.NewReader("a"))
	d.SaveUpload("b.torrent", strings.NewReader("b"))

	// Non-torrent clutter is not counted
	require.NoError(t, os.WriteFile(filepath.Join(d.Dir(), "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(d.Dir(), "sub"), 0o755))

	count, err = d.CountTorrents()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
