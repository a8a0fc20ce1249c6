package newsflow

import "context"

// EditRequest asks the generation service to edit a text entity (digest
// or newsletter) according to an instruction.
type EditRequest struct {
	SessionID   string
	Text        string
	Instruction string
	History     []ConversationTurn
}

// EditResult is the outcome of an EditText call.
type EditResult struct {
	EditedText string
	History    []ConversationTurn
}

// PostEditRequest asks the generation service to rework a social post
// within its own conversation.
type PostEditRequest struct {
	SessionID       string
	PostID          string
	CurrentText     string
	OriginalSummary string
	UserMessage     string
	History         []ConversationTurn
}

// PostEditResult is the outcome of an EditPost call.
type PostEditResult struct {
	NewText string
	Reply   string
	History []ConversationTurn
}

// Gateway is the sole seam between the session core and the external
// aggregation/generation services. Every method is black-box text-in/
// text-out; the core never interprets service internals.
type Gateway interface {
	// DefaultFeeds returns the named default feed sources.
	DefaultFeeds(ctx context.Context) (map[string]string, error)

	// Aggregate fetches recent articles from the given feed URLs.
	Aggregate(ctx context.Context, sources []string) ([]Article, error)

	// SummarizeSelected generates one highlight per given article.
	SummarizeSelected(ctx context.Context, sessionID string, articles []Article) ([]Highlight, error)

	// GenerateDigest produces combined digest markdown from highlights.
	GenerateDigest(ctx context.Context, sessionID string, highlights []Highlight) (string, error)

	// GeneratePosts produces one social post per highlight.
	GeneratePosts(ctx context.Context, sessionID string, highlights []Highlight) ([]SocialPost, error)

	// GenerateNewsletter assembles the newsletter HTML document.
	GenerateNewsletter(ctx context.Context, sessionID, summaryMarkdown string, articles []Article) (string, error)

	// EditText edits digest or newsletter content conversationally.
	EditText(ctx context.Context, req EditRequest) (EditResult, error)

	// EditPost edits a social post conversationally.
	EditPost(ctx context.Context, req PostEditRequest) (PostEditResult, error)

	// DownloadHTML renders the newsletter HTML as a downloadable document.
	DownloadHTML(ctx context.Context, sessionID, html string) ([]byte, error)
}
