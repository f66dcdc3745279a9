package browse

import (
	"errors"
	"sort"
	"sync"

	"github.com/pders01/torrentdrop/internal/feed"
)

// ErrNoSession is returned when a callback references a browse session that
// was never opened or has already been cleared.
var ErrNoSession = errors.New("no active browse session")

// session is one chat's ephemeral browse state. Entries are owned by the
// session and dropped with it.
type session struct {
	feedName  string
	feedTitle string
	entries   []feed.Entry
	page      int
	selected  map[int]struct{}
}

// Sessions owns the per-chat browse sessions. The platform delivers one
// callback at a time per chat, but different chats' events run concurrently,
// so the map itself is mutex-guarded.
type Sessions struct {
	mu       sync.Mutex
	pageSize int
	sessions map[int64]*session
}

func NewSessions(pageSize int) *Sessions {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Sessions{
		pageSize: pageSize,
		sessions: make(map[int64]*session),
	}
}

// Open starts a fresh session for a chat, replacing any previous one, and
// returns the first page.
func (s *Sessions) Open(chatID int64, feedName, feedTitle string, entries []feed.Entry) Model {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &session{
		feedName:  feedName,
		feedTitle: feedTitle,
		entries:   entries,
		page:      0,
		selected:  make(map[int]struct{}),
	}
	s.sessions[chatID] = sess

	return s.render(sess)
}

// Current re-renders the chat's session as it stands.
func (s *Sessions) Current(chatID int64) (Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return Model{}, ErrNoSession
	}
	return s.render(sess), nil
}

// Navigate moves the session to page, clamped into range, and re-renders.
func (s *Sessions) Navigate(chatID int64, page int) (Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return Model{}, ErrNoSession
	}
	sess.page = ClampPage(page, len(sess.entries), s.pageSize)
	return s.render(sess), nil
}

// Toggle flips the selection state of a global entry index and re-renders.
// Out-of-range indices (stale callbacks) leave the selection untouched and
// report selected=false; the caller still gets a valid current view.
func (s *Sessions) Toggle(chatID int64, index int) (Model, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return Model{}, false, ErrNoSession
	}

	selected := false
	if index >= 0 && index < len(sess.entries) {
		selected = Toggle(sess.selected, index)
	}
	return s.render(sess), selected, nil
}

// TakeSelection resolves the selected indices to entries in index order and
// clears the selection unconditionally. Indices that no longer resolve are
// silently skipped.
func (s *Sessions) TakeSelection(chatID int64) ([]feed.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return nil, ErrNoSession
	}

	indices := make([]int, 0, len(sess.selected))
	for idx := range sess.selected {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	sess.selected = make(map[int]struct{})

	entries := make([]feed.Entry, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(sess.entries) {
			entries = append(entries, sess.entries[idx])
		}
	}
	return entries, nil
}

// Cancel discards the chat's session and every entry it owned.
func (s *Sessions) Cancel(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// PageSize returns the configured entries-per-page.
func (s *Sessions) PageSize() int {
	return s.pageSize
}

func (s *Sessions) render(sess *session) Model {
	m := Render(sess.entries, s.pageSize, sess.page, sess.selected)
	m.FeedName = sess.feedName
	m.FeedTitle = sess.feedTitle
	// Render may have clamped further than Navigate did
	sess.page = m.Page
	return m
}
