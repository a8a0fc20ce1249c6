package backend

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/newsflowhq/newsflow/testutil"
)

func pageServer(t *testing.T, status int, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, html)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScraperPrefersArticleBlock(t *testing.T) {
	srv := pageServer(t, http.StatusOK, `<html><body>
<nav>Navigation junk</nav>
<article><p>The actual article text.</p></article>
<footer>Footer junk</footer>
</body></html>`)

	got := NewScraper().Fetch(testutil.TestContext(t), srv.URL)

	if got != "The actual article text." {
		t.Errorf("text = %q", got)
	}
}

func TestScraperFallsBackToBody(t *testing.T) {
	srv := pageServer(t, http.StatusOK, `<html><body>
<script>var junk = 1;</script>
<p>Body   text    here.</p>
</body></html>`)

	got := NewScraper().Fetch(testutil.TestContext(t), srv.URL)

	if got != "Body text here." {
		t.Errorf("text = %q (script should be stripped, whitespace collapsed)", got)
	}
}

func TestScraperCapsContent(t *testing.T) {
	long := strings.Repeat("word ", 2000)
	srv := pageServer(t, http.StatusOK, "<html><body><article>"+long+"</article></body></html>")

	got := NewScraper().Fetch(testutil.TestContext(t), srv.URL)

	if len(got) > maxContentChars {
		t.Errorf("content length = %d, exceeds cap", len(got))
	}
	if got == "" {
		t.Error("content is empty")
	}
}

func TestScraperErrorsReturnEmpty(t *testing.T) {
	srv := pageServer(t, http.StatusNotFound, "gone")
	if got := NewScraper().Fetch(testutil.TestContext(t), srv.URL); got != "" {
		t.Errorf("text = %q, want empty on 404", got)
	}

	if got := NewScraper().Fetch(testutil.TestContext(t), "http://127.0.0.1:1"); got != "" {
		t.Errorf("text = %q, want empty on connection failure", got)
	}
}
