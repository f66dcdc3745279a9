package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_OpenAndCurrent(t *testing.T) {
	sessions := NewSessions(15)

	m := sessions.Open(42, "tracker", "Tracker Feed", makeEntries(20))
	assert.Equal(t, 0, m.Page)
	assert.Equal(t, 2, m.TotalPages)
	assert.Equal(t, "tracker", m.FeedName)
	assert.Equal(t, "Tracker Feed", m.FeedTitle)
	assert.Equal(t, 20, m.TotalEntries)

	current, err := sessions.Current(42)
	require.NoError(t, err)
	assert.Equal(t, m, current)
}

func TestSessions_NoSession(t *testing.T) {
	sessions := NewSessions(15)

	_, err := sessions.Current(42)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = sessions.Navigate(42, 1)
	assert.ErrorIs(t, err, ErrNoSession)

	_, _, err = sessions.Toggle(42, 0)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = sessions.TakeSelection(42)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessions_NavigateClamps(t *testing.T) {
	sessions := NewSessions(15)
	sessions.Open(42, "tracker", "Tracker Feed", makeEntries(20))

	m, err := sessions.Navigate(42, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Page, "page 5 of a 2-page feed clamps to the last page")

	m, err = sessions.Navigate(42, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Page)
}

func TestSessions_ToggleAcrossPages(t *testing.T) {
	sessions := NewSessions(15)
	sessions.Open(42, "tracker", "Tracker Feed", makeEntries(20))

	// Select an entry on page 0
	m, selected, err := sessions.Toggle(42, 3)
	require.NoError(t, err)
	assert.True(t, selected)
	assert.Equal(t, 1, m.SelectedCount)

	// Selection survives navigation
	_, err = sessions.Navigate(42, 1)
	require.NoError(t, err)

	m, selected, err = sessions.Toggle(42, 17)
	require.NoError(t, err)
	assert.True(t, selected)
	assert.Equal(t, 2, m.SelectedCount)

	// Toggling off
	m, selected, err = sessions.Toggle(42, 17)
	require.NoError(t, err)
	assert.False(t, selected)
	assert.Equal(t, 1, m.SelectedCount)
}

func TestSessions_ToggleOutOfRangeIsIgnored(t *testing.T) {
	sessions := NewSessions(15)
	sessions.Open(42, "tracker", "Tracker Feed", makeEntries(5))

	m, selected, err := sessions.Toggle(42, 99)
	require.NoError(t, err)
	assert.False(t, selected)
	assert.Equal(t, 0, m.SelectedCount, "stale index must not grow the selection")
}

func TestSessions_TakeSelection(t *testing.T) {
	sessions := NewSessions(15)
	sessions.Open(42, "tracker", "Tracker Feed", makeEntries(20))

	sessions.Toggle(42, 8)
	sessions.Toggle(42, 2)
	sessions.Toggle(42, 17)

	entries, err := sessions.TakeSelection(42)
	require.NoError(t, err)

	// Resolved in index order regardless of click order
	require.Len(t, entries, 3)
	assert.Equal(t, "Entry 2", entries[0].Title)
	assert.Equal(t, "Entry 8", entries[1].Title)
	assert.Equal(t, "Entry 17", entries[2].Title)

	// Selection is cleared unconditionally
	m, err := sessions.Current(42)
	require.NoError(t, err)
	assert.Equal(t, 0, m.SelectedCount)

	entries, err = sessions.TakeSelection(42)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSessions_Cancel(t *testing.T) {
	sessions := NewSessions(15)
	sessions.Open(42, "tracker", "Tracker Feed", makeEntries(5))

	sessions.Cancel(42)

	_, err := sessions.Current(42)
	assert.ErrorIs(t, err, ErrNoSession)

	// Cancel of a missing session is a no-op
	sessions.Cancel(42)
}

func TestSessions_OpenReplacesExisting(t *testing.T) {
	sessions := NewSessions(15)
	sessions.Open(42, "old", "Old Feed", makeEntries(20))
	sessions.Toggle(42, 1)
	sessions.Navigate(42, 1)

	m := sessions.Open(42, "new", "New Feed", makeEntries(3))
	assert.Equal(t, "new", m.FeedName)
	assert.Equal(t, 0, m.Page)
	assert.Equal(t, 0, m.SelectedCount, "reopening clears prior selection")
	assert.Equal(t, 3, m.TotalEntries)
}

func TestSessions_IsolatedPerChat(t *testing.T) {
	sessions := NewSessions(15)
	sessions.Open(1, "a", "Feed A", makeEntries(5))
	sessions.Open(2, "b", "Feed B", makeEntries(5))

	sessions.Toggle(1, 0)

	mA, err := sessions.Current(1)
	require.NoError(t, err)
	mB, err := sessions.Current(2)
	require.NoError(t, err)

	assert.Equal(t, 1, mA.SelectedCount)
	assert.Equal(t, 0, mB.SelectedCount)
}
