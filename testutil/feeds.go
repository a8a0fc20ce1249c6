// Package testutil provides utilities for testing.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// FeedItem describes one entry in a generated RSS document.
type FeedItem struct {
	Title     string
	Link      string
	Summary   string
	Published time.Time
}

// RSSFeed renders a minimal RSS 2.0 document containing the given items.
func RSSFeed(title string, items []FeedItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<rss version=\"2.0\"><channel>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", title)
	for _, item := range items {
		b.WriteString("<item>\n")
		fmt.Fprintf(&b, "<title>%s</title>\n", item.Title)
		fmt.Fprintf(&b, "<link>%s</link>\n", item.Link)
		fmt.Fprintf(&b, "<description>%s</description>\n", item.Summary)
		if !item.Published.IsZero() {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>\n", item.Published.Format(time.RFC1123Z))
		}
		b.WriteString("</item>\n")
	}
	b.WriteString("</channel></rss>\n")
	return b.String()
}

// FeedServer starts a test HTTP server that serves the given RSS document
// at every path. The server is closed when the test ends.
func FeedServer(t *testing.T, rss string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rss)
	}))
	t.Cleanup(srv.Close)

	return srv
}
