// Package browse renders paginated multi-select views over a fetched feed
// and owns the per-chat session state behind them. The render side is pure:
// a function of (entries, page size, page, selection).
package browse

import (
	"fmt"
	"strings"

	"github.com/pders01/torrentdrop/internal/feed"
)

// Kind buckets a feed entry by its category text.
type Kind int

const (
	KindOther Kind = iota
	KindSeries
	KindMovie
)

const (
	// TitleBudget is the rune budget for one entry label; platform inline
	// buttons truncate anything longer.
	TitleBudget = 55

	selectedMark   = "✅"
	unselectedMark = "☐"
)

// Classify maps an entry's category text to a Kind. Matching is a
// case-insensitive substring check; "pel" covers the Spanish-language
// movie categories the original trackers use.
func Classify(category string) Kind {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "series"):
		return KindSeries
	case strings.Contains(c, "pel"), strings.Contains(c, "movie"), strings.Contains(c, "film"):
		return KindMovie
	default:
		return KindOther
	}
}

// Marker returns the emoji shown before an entry title.
func (k Kind) Marker() string {
	switch k {
	case KindSeries:
		return "📺"
	case KindMovie:
		return "🎬"
	default:
		return "📦"
	}
}

// EntryView is one renderable row: the entry's global index plus its
// formatted button label.
type EntryView struct {
	Index int
	Label string
}

// Model is everything a view needs to draw one page of a browse session.
type Model struct {
	FeedName      string
	FeedTitle     string
	PageEntries   []EntryView
	Page          int
	TotalPages    int
	TotalEntries  int
	PageLabel     string
	HasPrev       bool
	HasNext       bool
	SelectedCount int
}

// TotalPages returns how many pages n entries occupy, never less than 1 so
// an empty feed still renders a valid page indicator.
func TotalPages(n, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := (n + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage forces page into the valid range for n entries. Stale callbacks
// can request pages that no longer exist; they get the nearest valid page.
func ClampPage(page, n, pageSize int) int {
	last := TotalPages(n, pageSize) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	return page
}

// Toggle flips index in the selection set: symmetric difference on one
// element. It reports whether the index is selected afterwards.
func Toggle(selected map[int]struct{}, index int) bool {
	if _, ok := selected[index]; ok {
		delete(selected, index)
		return false
	}
	selected[index] = struct{}{}
	return true
}

// Render builds the page model for the given state. The page is clamped, so
// out-of-range requests re-render the nearest valid page instead of failing.
// Entries keep fetch order; no re-sorting.
func Render(entries []feed.Entry, pageSize, page int, selected map[int]struct{}) Model {
	if pageSize < 1 {
		pageSize = 1
	}

	n := len(entries)
	totalPages := TotalPages(n, pageSize)
	page = ClampPage(page, n, pageSize)

	start := page * pageSize
	end := start + pageSize
	if end > n {
		end = n
	}

	views := make([]EntryView, 0, end-start)
	for i := start; i < end; i++ {
		views = append(views, EntryView{
			Index: i,
			Label: entryLabel(entries[i], selectedHas(selected, i)),
		})
	}

	var pageLabel string
	if n == 0 {
		pageLabel = "Page 1/1 (0-0)"
	} else {
		pageLabel = fmt.Sprintf("Page %d/%d (%d-%d)", page+1, totalPages, start+1, end)
	}

	return Model{
		PageEntries:   views,
		Page:          page,
		TotalPages:    totalPages,
		TotalEntries:  n,
		PageLabel:     pageLabel,
		HasPrev:       page > 0,
		HasNext:       page < totalPages-1,
		SelectedCount: len(selected),
	}
}

func entryLabel(e feed.Entry, selected bool) string {
	mark := unselectedMark
	if selected {
		mark = selectedMark
	}
	title := e.Title
	if title == "" {
		title = "Unknown"
	}
	return fmt.Sprintf("%s %s %s", mark, Classify(e.Category).Marker(), truncateTitle(title, TitleBudget))
}

func selectedHas(selected map[int]struct{}, index int) bool {
	_, ok := selected[index]
	return ok
}

// truncateTitle shortens s to at most limit runes, replacing the tail with
// "..." when it truncates.
func truncateTitle(s string, limit int) string {
	const ellipsis = "..."
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string(r[:limit])
	}
	return string(r[:limit-len(ellipsis)]) + ellipsis
}
