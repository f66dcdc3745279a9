// Package download places torrent payloads into the watch folder, where an
// external torrent client picks them up. It never talks to the torrent
// client itself; dropping the file is the handoff.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/torrentdrop/internal/debuglog"
	"github.com/pders01/torrentdrop/internal/validation"
)

// Downloader writes torrent files into a single watch folder. Safe for
// concurrent use; collisions are resolved at create time with O_EXCL.
type Downloader struct {
	dir       string
	client    *http.Client
	userAgent string
}

// NewDownloader ensures the watch folder exists and returns a downloader
// writing into it.
func NewDownloader(dir string, timeout time.Duration, userAgent string) (*Downloader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating watch folder: %w", err)
	}
	return &Downloader{
		dir:       dir,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}, nil
}

// Dir returns the watch folder path.
func (d *Downloader) Dir() string {
	return d.dir
}

// SaveUpload streams an uploaded document into the watch folder under a
// sanitized version of name. It returns the name actually written and the
// size in KB.
func (d *Downloader) SaveUpload(name string, r io.Reader) (string, float64, error) {
	return d.write(validation.SanitizeTorrentName(name), r)
}

// FetchLink retrieves a feed entry's link and stores it under a sanitized
// version of title. It returns the name actually written and the size in KB.
func (d *Downloader) FetchLink(ctx context.Context, title, url string) (string, float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("building request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("downloading torrent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("downloading torrent: HTTP %d", resp.StatusCode)
	}

	return d.write(validation.SanitizeTorrentName(title), resp.Body)
}

// CountTorrents reports how many .torrent files currently sit in the watch
// folder, i.e. how many the torrent client has not yet consumed.
func (d *Downloader) CountTorrents() (int, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return 0, fmt.Errorf("reading watch folder: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && validation.HasTorrentExtension(entry.Name()) {
			count++
		}
	}
	return count, nil
}

// write streams r into a freshly created file, cleaning up the partial file
// on failure.
func (d *Downloader) write(name string, r io.Reader) (string, float64, error) {
	f, finalName, err := d.create(name)
	if err != nil {
		return "", 0, err
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("writing %s: %w", finalName, err)
	}

	debuglog.Debugf("saved %s (%d bytes) to watch folder", finalName, written)
	return finalName, float64(written) / 1024.0, nil
}

// create opens a new file with O_EXCL so two saves of the same name cannot
// overwrite each other. On a name collision the file gets a short uuid
// fragment before its extension.
func (d *Downloader) create(name string) (*os.File, string, error) {
	f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err == nil {
		return f, name, nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return nil, "", fmt.Errorf("creating %s: %w", name, err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	alt := fmt.Sprintf("%s-%s%s", stem, uuid.NewString()[:8], ext)

	f, err = os.OpenFile(filepath.Join(d.dir, alt), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("creating %s: %w", alt, err)
	}
	return f, alt, nil
}
