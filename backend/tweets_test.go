package backend

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanTweet(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`"quoted tweet"`, "quoted tweet"},
		{"  padded  ", "padded"},
		{`'single quotes'`, "single quotes"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := cleanTweet(tc.in); got != tc.want {
			t.Errorf("cleanTweet(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseTweetEditWithMarker(t *testing.T) {
	response := "Sure, here's a punchier version.\n\nUPDATED TWEET: 🚀 AI breakthrough announced! #AI"

	newTweet, reply := parseTweetEdit(response, "old tweet")

	if newTweet != "🚀 AI breakthrough announced! #AI" {
		t.Errorf("newTweet = %q", newTweet)
	}
	if reply != "Sure, here's a punchier version." {
		t.Errorf("reply = %q", reply)
	}
}

func TestParseTweetEditWithoutMarker(t *testing.T) {
	newTweet, reply := parseTweetEdit("I think the tweet is fine as is.", "old tweet")

	if newTweet != "old tweet" {
		t.Errorf("newTweet = %q, want current tweet kept", newTweet)
	}
	if reply != "I think the tweet is fine as is." {
		t.Errorf("reply = %q", reply)
	}
}

func TestParseTweetEditMarkerOnly(t *testing.T) {
	newTweet, reply := parseTweetEdit("UPDATED TWEET: just the tweet", "old")

	if newTweet != "just the tweet" {
		t.Errorf("newTweet = %q", newTweet)
	}
	if reply == "" {
		t.Error("reply is empty; want default acknowledgement")
	}
}

func TestTruncateTweetShortPassesThrough(t *testing.T) {
	in := "short tweet"
	if got := truncateTweet(in); got != in {
		t.Errorf("truncateTweet(%q) = %q", in, got)
	}
}

func TestTruncateTweetWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 100) // 500 chars
	got := truncateTweet(long)

	if n := utf8.RuneCountInString(got); n > tweetLimit {
		t.Errorf("rune count = %d, exceeds limit", n)
	}
	if strings.HasSuffix(got, " ") {
		t.Error("truncated tweet ends with a space")
	}
	// Cut must land between words, never inside one.
	for _, w := range strings.Fields(got) {
		if w != "word" {
			t.Errorf("word split mid-way: %q", w)
		}
	}
}

func TestTruncateTweetSingleOversizedWord(t *testing.T) {
	long := strings.Repeat("x", 400)
	got := truncateTweet(long)
	if n := utf8.RuneCountInString(got); n != tweetLimit {
		t.Errorf("rune count = %d, want %d", n, tweetLimit)
	}
}

func TestTruncateTweetCountsRunes(t *testing.T) {
	long := strings.Repeat("é ", 300)
	got := truncateTweet(long)
	if n := utf8.RuneCountInString(got); n > tweetLimit {
		t.Errorf("rune count = %d, exceeds limit", n)
	}
}

func TestFallbackTweet(t *testing.T) {
	got := fallbackTweet(Highlight{Title: "Big Model Released"})
	if !strings.Contains(got, "Big Model Released") {
		t.Errorf("fallback = %q, missing title", got)
	}
	if !strings.Contains(got, "#AI") {
		t.Errorf("fallback = %q, missing hashtag", got)
	}

	long := fallbackTweet(Highlight{Title: strings.Repeat("t", 300)})
	if n := utf8.RuneCountInString(long); n > tweetLimit {
		t.Errorf("fallback rune count = %d, exceeds limit", n)
	}
}
