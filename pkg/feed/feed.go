// Package feed pulls the portfolio's writing section from RSS/Atom feeds.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
)

// Feed is a named RSS/Atom feed URL.
type Feed struct {
	Name string
	URL  string
}

// Post is one blog entry served on the portfolio.
type Post struct {
	ID          string    `json:"id" db:"id"`
	FeedName    string    `json:"feed_name" db:"feed_name"`
	Title       string    `json:"title" db:"title"`
	URL         string    `json:"url" db:"url"`
	Summary     string    `json:"summary" db:"summary"`
	PublishedAt time.Time `json:"published_at" db:"published_at"`
	FetchedAt   time.Time `json:"fetched_at" db:"fetched_at"`
}

// Fetcher collects posts from configured feeds.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []Feed
	limit  int
}

// NewFetcher creates a fetcher. limit bounds posts kept per feed (0 = 20).
func NewFetcher(feeds []Feed, limit int) *Fetcher {
	if limit <= 0 {
		limit = 20
	}
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
		limit:  limit,
	}
}

// Fetch collects posts from all feeds. A failing feed is logged and
// skipped; the remaining feeds still contribute.
func (f *Fetcher) Fetch(ctx context.Context) ([]Post, error) {
	var all []Post
	for _, fd := range f.feeds {
		posts, err := f.fetchFeed(ctx, fd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  feed %s error: %v\n", fd.Name, err)
			continue
		}
		all = append(all, posts...)
	}
	return all, nil
}

func (f *Fetcher) fetchFeed(ctx context.Context, fd Feed) ([]Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fd.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request %s: %w", fd.Name, err)
	}
	req.Header.Set("User-Agent", "gitfolio/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", fd.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", fd.Name, resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", fd.Name, err)
	}

	now := time.Now().UTC()
	var posts []Post
	for _, entry := range parsed.Items {
		if len(posts) == f.limit {
			break
		}

		published := now
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		id := entry.GUID
		if id == "" {
			id = link
		}

		posts = append(posts, Post{
			ID:          fmt.Sprintf("%s:%s", fd.Name, id),
			FeedName:    fd.Name,
			Title:       entry.Title,
			URL:         link,
			Summary:     truncate(entry.Description, 500),
			PublishedAt: published,
			FetchedAt:   now,
		})
	}
	return posts, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
