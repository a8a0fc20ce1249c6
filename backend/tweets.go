package backend

import (
	"strings"
	"unicode/utf8"
)

// tweetLimit is the hard character cap for generated tweets.
const tweetLimit = 280

// updatedTweetMarker separates the model's conversational reply from the
// reworked tweet in edit responses.
const updatedTweetMarker = "UPDATED TWEET:"

// cleanTweet strips wrapping quotes and whitespace from model output.
func cleanTweet(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// fallbackTweet is used when tweet generation fails for a highlight.
func fallbackTweet(h Highlight) string {
	title := h.Title
	if utf8.RuneCountInString(title) > 200 {
		title = string([]rune(title)[:200])
	}
	return "🤖 " + title + "... #AI #Tech"
}

// parseTweetEdit splits a tweet-edit model response into the
// conversational reply and the reworked tweet. When the marker is
// missing, the current tweet is kept and the whole response becomes the
// reply.
func parseTweetEdit(response, currentTweet string) (newTweet, reply string) {
	newTweet = currentTweet
	reply = response

	idx := strings.Index(response, updatedTweetMarker)
	if idx < 0 {
		return newTweet, reply
	}

	reply = strings.TrimSpace(response[:idx])
	newTweet = cleanTweet(response[idx+len(updatedTweetMarker):])
	newTweet = truncateTweet(newTweet)
	if reply == "" {
		reply = "I've updated your post based on your request."
	}
	return newTweet, reply
}

// truncateTweet trims a tweet to the character limit at a word boundary.
func truncateTweet(tweet string) string {
	if utf8.RuneCountInString(tweet) <= tweetLimit {
		return tweet
	}

	var b strings.Builder
	used := 0
	for _, word := range strings.Fields(tweet) {
		n := utf8.RuneCountInString(word)
		sep := 0
		if used > 0 {
			sep = 1
		}
		if used+sep+n > tweetLimit {
			break
		}
		if sep == 1 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
		used += sep + n
	}
	if used == 0 {
		return string([]rune(tweet)[:tweetLimit])
	}
	return b.String()
}
