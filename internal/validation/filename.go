package validation

import (
	"strings"
)

// TorrentExtension is the only file type the watch folder consumer picks up.
const TorrentExtension = ".torrent"

// maxNameRunes caps the base name written into the watch folder. Long feed
// titles otherwise overflow filesystem name limits once the extension and a
// collision suffix are added.
const maxNameRunes = 100

// HasTorrentExtension reports whether name ends in .torrent, ignoring case.
func HasTorrentExtension(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), TorrentExtension)
}

// SanitizeTorrentName turns an arbitrary title or uploaded file name into a
// single safe watch-folder file name: path separators and control characters
// become underscores, the base name is capped at 100 runes, and a .torrent
// extension is guaranteed. The result never escapes the watch folder.
func SanitizeTorrentName(name string) string {
	base := name
	if HasTorrentExtension(base) {
		base = base[:len(base)-len(TorrentExtension)]
	}

	base = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 32 || r == 0x7f:
			return '_'
		default:
			return r
		}
	}, base)

	base = strings.TrimSpace(base)
	base = strings.Trim(base, ".")

	if r := []rune(base); len(r) > maxNameRunes {
		base = string(r[:maxNameRunes])
	}

	if base == "" {
		base = "unnamed"
	}

	return base + TorrentExtension
}
