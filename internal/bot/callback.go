package bot

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// CallbackKind enumerates the button actions the bot understands.
type CallbackKind int

const (
	CallbackUnknown CallbackKind = iota
	CallbackMenu
	CallbackHelp
	CallbackHowTo
	CallbackStatus
	CallbackChatID
	CallbackBrowse
	CallbackPage
	CallbackToggle
	CallbackPageInfo
	CallbackDownload
	CallbackCancel
)

// Callback is a decoded button press. The wire format is the short string
// stuffed into the button's callback data; it is decoded once at the update
// boundary so handlers never touch raw strings.
type Callback struct {
	Kind  CallbackKind
	Feed  string // CallbackBrowse; empty means "resolve the chat's feed"
	Page  int    // CallbackPage
	Index int    // CallbackToggle, global entry index
}

const (
	cbMenu     = "menu"
	cbHelp     = "help"
	cbHowTo    = "howto"
	cbStatus   = "status"
	cbChatID   = "chatid"
	cbBrowse   = "rss_browse"
	cbPageInfo = "rss_page_info"
	cbDownload = "rss_download_selected"
	cbCancel   = "rss_cancel"

	cbPagePrefix   = "rss_page_"
	cbTogglePrefix = "rss_toggle_"
	cbBrowseSep    = ":"
)

// maxFeedNameBytes caps user feed names so a browse button's callback data
// ("rss_browse:" + name) never exceeds the platform's 64-byte limit; a
// longer payload makes the whole keyboard send fail with BUTTON_DATA_INVALID.
const maxFeedNameBytes = 64 - len(cbBrowse) - len(cbBrowseSep)

// validateFeedName accepts the names that can round-trip through callback
// data: non-empty, a single word, and short enough for a picker button.
func validateFeedName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > maxFeedNameBytes {
		return fmt.Errorf("name too long (max %d characters)", maxFeedNameBytes)
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("name must be a single word")
		}
	}
	return nil
}

// ParseCallback decodes button callback data. Malformed data is an error so
// the caller can answer the query with a toast instead of acting on it.
func ParseCallback(data string) (Callback, error) {
	switch data {
	case cbMenu:
		return Callback{Kind: CallbackMenu}, nil
	case cbHelp:
		return Callback{Kind: CallbackHelp}, nil
	case cbHowTo:
		return Callback{Kind: CallbackHowTo}, nil
	case cbStatus:
		return Callback{Kind: CallbackStatus}, nil
	case cbChatID:
		return Callback{Kind: CallbackChatID}, nil
	case cbBrowse:
		return Callback{Kind: CallbackBrowse}, nil
	case cbPageInfo:
		return Callback{Kind: CallbackPageInfo}, nil
	case cbDownload:
		return Callback{Kind: CallbackDownload}, nil
	case cbCancel:
		return Callback{Kind: CallbackCancel}, nil
	}

	if name, ok := strings.CutPrefix(data, cbBrowse+cbBrowseSep); ok {
		if name == "" {
			return Callback{}, fmt.Errorf("browse callback without feed name")
		}
		return Callback{Kind: CallbackBrowse, Feed: name}, nil
	}

	// cbPageInfo shares the cbPagePrefix prefix; it was matched above.
	if raw, ok := strings.CutPrefix(data, cbPagePrefix); ok {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Callback{}, fmt.Errorf("bad page number %q", raw)
		}
		return Callback{Kind: CallbackPage, Page: page}, nil
	}

	if raw, ok := strings.CutPrefix(data, cbTogglePrefix); ok {
		index, err := strconv.Atoi(raw)
		if err != nil || index < 0 {
			return Callback{}, fmt.Errorf("bad toggle index %q", raw)
		}
		return Callback{Kind: CallbackToggle, Index: index}, nil
	}

	return Callback{}, fmt.Errorf("unknown callback %q", data)
}

// Encode produces the wire form ParseCallback accepts.
func (c Callback) Encode() string {
	switch c.Kind {
	case CallbackMenu:
		return cbMenu
	case CallbackHelp:
		return cbHelp
	case CallbackHowTo:
		return cbHowTo
	case CallbackStatus:
		return cbStatus
	case CallbackChatID:
		return cbChatID
	case CallbackBrowse:
		if c.Feed == "" {
			return cbBrowse
		}
		return cbBrowse + cbBrowseSep + c.Feed
	case CallbackPage:
		return cbPagePrefix + strconv.Itoa(c.Page)
	case CallbackToggle:
		return cbTogglePrefix + strconv.Itoa(c.Index)
	case CallbackPageInfo:
		return cbPageInfo
	case CallbackDownload:
		return cbDownload
	case CallbackCancel:
		return cbCancel
	}
	return ""
}
