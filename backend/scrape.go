package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxContentChars caps scraped article text passed to the model.
const maxContentChars = 4000

const scrapeUserAgent = "Mozilla/5.0 (compatible; newsflow/1.0)"

// Scraper fetches article pages and extracts their main text.
type Scraper struct {
	client *http.Client
}

// NewScraper creates a scraper with a short per-page timeout.
func NewScraper() *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Fetch returns the main text of the page at url, or "" on any failure.
// Scrape failures are expected; callers fall back to the feed summary.
func (s *Scraper) Fetch(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	return extractMainText(doc)
}

// extractMainText pulls readable text from a parsed page, preferring
// <article> and <main> blocks over the full body.
func extractMainText(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer").Remove()

	section := doc.Find("article").First()
	if section.Length() == 0 {
		section = doc.Find("main").First()
	}
	if section.Length() == 0 {
		section = doc.Find("body").First()
	}

	text := collapseWhitespace(section.Text())
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}
	return text
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
