// Package feed retrieves and parses remote RSS/Atom feeds. Feeds are fetched
// once per browse session; there is no refresh scheduling or conditional-GET
// caching here.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one downloadable item from a feed, in document order.
type Entry struct {
	Title    string
	Link     string
	Category string
}

// Feed is the parsed result of one fetch.
type Feed struct {
	Title   string
	Entries []Entry
}

type Fetcher struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		parser:    gofeed.NewParser(),
		userAgent: userAgent,
	}
}

// Fetch retrieves url and parses it into a Feed. Network and HTTP failures
// come back as "fetching feed" errors, unparseable bodies as "parsing feed"
// errors; a well-formed feed with zero items is not an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching feed: HTTP error: %d", resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, Entry{
			Title:    item.Title,
			Link:     item.Link,
			Category: firstCategory(item),
		})
	}

	return &Feed{Title: parsed.Title, Entries: entries}, nil
}

func firstCategory(item *gofeed.Item) string {
	if len(item.Categories) > 0 {
		return item.Categories[0]
	}
	return ""
}
