package backend

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// newsletterData feeds the newsletter document template.
type newsletterData struct {
	Date     string
	Featured *Article
	Items    []Article
}

var newsletterTmpl = template.Must(template.New("newsletter").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>AI Weekly - Newsletter</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; background-color: #f4f4f4; color: #333; margin: 0; }
.container { max-width: 600px; margin: 20px auto; background-color: white; box-shadow: 0 0 20px rgba(0,0,0,0.1); }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px 20px; text-align: center; }
.logo { font-size: 28px; font-weight: bold; margin-bottom: 10px; }
.tagline { font-size: 14px; opacity: 0.9; }
.content { padding: 30px 20px; }
.section { margin-bottom: 30px; border-bottom: 1px solid #eee; padding-bottom: 30px; }
.section h2 { color: #667eea; font-size: 22px; margin-bottom: 15px; border-left: 4px solid #667eea; padding-left: 15px; }
.featured-article { background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%); color: white; padding: 25px; border-radius: 10px; }
.featured-article h3 { font-size: 20px; margin-bottom: 10px; }
.btn { display: inline-block; background-color: white; color: #f5576c; padding: 12px 25px; text-decoration: none; border-radius: 25px; font-weight: bold; }
.news-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 20px; margin-top: 20px; }
.news-item { border: 1px solid #eee; border-radius: 8px; padding: 20px; }
.news-item h4 { color: #333; margin-bottom: 10px; font-size: 16px; }
.news-item p { font-size: 14px; color: #666; margin-bottom: 10px; }
.read-more { color: #667eea; text-decoration: none; font-size: 14px; font-weight: bold; }
.footer { background-color: #333; color: white; padding: 30px 20px; text-align: center; font-size: 14px; }
@media (max-width: 600px) { .news-grid { grid-template-columns: 1fr; } .container { margin: 10px; } }
</style>
</head>
<body>
<div class="container">
<div class="header">
<div class="logo">AI Weekly</div>
<div class="tagline">Your weekly dose of AI insights &bull; {{.Date}}</div>
</div>
<div class="content">
{{if .Featured}}<div class="section">
<h2>&#127775; Featured Story</h2>
<div class="featured-article">
<h3>{{.Featured.Title}}</h3>
<p>{{.Featured.Summary}}</p>
<a href="{{.Featured.Link}}" class="btn">Read Full Article</a>
</div>
</div>{{end}}
<div class="section">
<h2>&#128240; Latest AI News</h2>
<div class="news-grid">
{{range .Items}}<div class="news-item">
<h4>{{.Title}}</h4>
<p>{{.Summary}}</p>
<a href="{{.Link}}" class="read-more">Read more &rarr;</a>
</div>
{{end}}</div>
</div>
</div>
<div class="footer">
<p><strong>AI Weekly</strong></p>
<p>Curated with the newsflow generation service</p>
</div>
</div>
</body>
</html>`))

// buildNewsletterHTML assembles the newsletter document. The first
// article with a substantial summary becomes the featured story; up to
// six of the rest fill the news grid.
func buildNewsletterHTML(articles []Article) (string, error) {
	var featured *Article
	var remaining []Article

	limit := articles
	if len(limit) > 8 {
		limit = limit[:8]
	}
	for i := range limit {
		a := limit[i]
		if featured == nil && len(a.Summary) > 100 {
			featured = &a
			continue
		}
		remaining = append(remaining, a)
	}
	if featured == nil && len(limit) > 0 {
		featured = &remaining[0]
		remaining = remaining[1:]
	}
	if featured != nil {
		featured.Summary = truncate(featured.Summary, 200)
	}

	if len(remaining) > 6 {
		remaining = remaining[:6]
	}
	for i := range remaining {
		summary := remaining[i].Summary
		if summary == "" {
			summary = "Click to read more about this story."
		}
		remaining[i].Summary = truncate(summary, 150)
	}

	var buf bytes.Buffer
	err := newsletterTmpl.Execute(&buf, newsletterData{
		Date:     time.Now().Format("January 2, 2006"),
		Featured: featured,
		Items:    remaining,
	})
	if err != nil {
		return "", fmt.Errorf("render newsletter: %w", err)
	}
	return buf.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
