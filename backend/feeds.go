package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"
)

// maxEntriesPerFeed caps how many entries of one feed are considered.
const maxEntriesPerFeed = 50

// Aggregator fetches recent articles from RSS/Atom feeds.
type Aggregator struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

// NewAggregator creates a feed aggregator.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

// Fetch collects articles from the given feed URLs, keeping entries
// published after the cutoff. Entries without a title or link are
// skipped; a feed that fails to parse is skipped, not fatal.
func (a *Aggregator) Fetch(ctx context.Context, sources []string, cutoff time.Time) []Article {
	var collected []Article
	for _, src := range sources {
		feed, err := a.parser.ParseURLWithContext(src, ctx)
		if err != nil {
			a.logger.Warn("feed parse failed", "source", src, "error", err)
			continue
		}

		sourceTitle := feed.Title
		if sourceTitle == "" {
			sourceTitle = "Unknown Source"
		}

		entries := feed.Items
		if len(entries) > maxEntriesPerFeed {
			entries = entries[:maxEntriesPerFeed]
		}
		for _, entry := range entries {
			if entry.Title == "" || entry.Link == "" {
				continue
			}

			published, publishedAt := entryPublished(entry)
			if publishedAt != nil && publishedAt.Before(cutoff) {
				continue
			}

			collected = append(collected, Article{
				Title:     entry.Title,
				Link:      entry.Link,
				Summary:   entry.Description,
				Published: published,
				Source:    sourceTitle,
			})
		}
	}
	return collected
}

// entryPublished returns the raw published string and parsed time for a
// feed entry, falling back to the updated timestamp.
func entryPublished(entry *gofeed.Item) (string, *time.Time) {
	if entry.PublishedParsed != nil {
		return entry.Published, entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return entry.Updated, entry.UpdatedParsed
	}
	if entry.Published != "" {
		return entry.Published, nil
	}
	return entry.Updated, nil
}
