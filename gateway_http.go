package newsflow

import (
	"context"
	"errors"
	"net/http"

	nfhttp "github.com/newsflowhq/newsflow/http"
)

// GatewayConfig configures the HTTP gateway.
type GatewayConfig struct {
	BaseURL string
	Client  *http.Client
}

// HTTPGateway is the JSON-over-HTTP Gateway implementation.
type HTTPGateway struct {
	client *nfhttp.Client
}

var _ Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway creates a gateway targeting the generation service.
func NewHTTPGateway(cfg GatewayConfig) *HTTPGateway {
	return &HTTPGateway{
		client: nfhttp.NewClient(nfhttp.ClientConfig{
			Client:      cfg.Client,
			BaseURL:     cfg.BaseURL,
			ServiceName: "backend",
		}),
	}
}

// =============================================================================
// Wire Types
//
// Field names follow the service's JSON contract (snake_case).
// =============================================================================

type wireTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wirePost struct {
	ID            string `json:"id"`
	Content       string `json:"content"`
	SummaryTitle  string `json:"summary_title"`
	SummaryLink   string `json:"summary_link"`
	SummarySource string `json:"summary_source"`
}

func toWireTurns(turns []ConversationTurn) []wireTurn {
	out := make([]wireTurn, len(turns))
	for i, t := range turns {
		out[i] = wireTurn{Role: t.Role, Content: t.Content}
	}
	return out
}

func fromWireTurns(turns []wireTurn) []ConversationTurn {
	out := make([]ConversationTurn, len(turns))
	for i, t := range turns {
		out[i] = ConversationTurn{Role: t.Role, Content: t.Content}
	}
	return out
}

// highlightArticles reshapes highlights into the article payloads the
// digest and newsletter endpoints expect.
func highlightArticles(highlights []Highlight) []Article {
	out := make([]Article, len(highlights))
	for i, h := range highlights {
		out[i] = Article{Title: h.Title, Link: h.Link, Summary: h.Summary, Source: h.Source}
	}
	return out
}

// gatewayError wraps a failed client call, lifting the HTTP status out
// of a decoded API error. Transport-level failures keep Status zero.
func gatewayError(op, endpoint string, err error) *GatewayError {
	ge := &GatewayError{Op: op, Endpoint: endpoint, Err: err}
	var apiErr *nfhttp.APIError
	if errors.As(err, &apiErr) {
		ge.Status = apiErr.StatusCode
	}
	return ge
}

// =============================================================================
// Gateway Implementation
// =============================================================================

// DefaultFeeds implements Gateway.
func (g *HTTPGateway) DefaultFeeds(ctx context.Context) (map[string]string, error) {
	var feeds map[string]string
	if err := g.client.Get(ctx, "/defaults", &feeds); err != nil {
		return nil, gatewayError("defaults", "/defaults", err)
	}
	return feeds, nil
}

// Aggregate implements Gateway.
func (g *HTTPGateway) Aggregate(ctx context.Context, sources []string) ([]Article, error) {
	req := struct {
		Sources []string `json:"sources"`
	}{Sources: sources}

	var resp struct {
		Articles []Article `json:"articles"`
	}
	if err := g.client.Post(ctx, "/aggregate", req, &resp); err != nil {
		return nil, gatewayError("aggregate", "/aggregate", err)
	}
	return resp.Articles, nil
}

// SummarizeSelected implements Gateway.
func (g *HTTPGateway) SummarizeSelected(ctx context.Context, sessionID string, articles []Article) ([]Highlight, error) {
	req := struct {
		SessionID string    `json:"session_id"`
		Articles  []Article `json:"articles"`
	}{SessionID: sessionID, Articles: articles}

	var resp struct {
		Items []Highlight `json:"items"`
	}
	if err := g.client.Post(ctx, "/summaries_selected", req, &resp); err != nil {
		return nil, gatewayError("summarize_selected", "/summaries_selected", err)
	}
	return resp.Items, nil
}

// GenerateDigest implements Gateway.
func (g *HTTPGateway) GenerateDigest(ctx context.Context, sessionID string, highlights []Highlight) (string, error) {
	req := struct {
		SessionID string    `json:"session_id"`
		Articles  []Article `json:"articles"`
	}{SessionID: sessionID, Articles: highlightArticles(highlights)}

	var resp struct {
		SummaryMarkdown string `json:"summary_markdown"`
	}
	if err := g.client.Post(ctx, "/highlights", req, &resp); err != nil {
		return "", gatewayError("digest", "/highlights", err)
	}
	return resp.SummaryMarkdown, nil
}

// GeneratePosts implements Gateway.
func (g *HTTPGateway) GeneratePosts(ctx context.Context, sessionID string, highlights []Highlight) ([]SocialPost, error) {
	req := struct {
		SessionID string      `json:"session_id"`
		Summaries []Highlight `json:"summaries"`
	}{SessionID: sessionID, Summaries: highlights}

	var resp struct {
		Tweets []wirePost `json:"tweets"`
	}
	if err := g.client.Post(ctx, "/tweets", req, &resp); err != nil {
		return nil, gatewayError("tweets", "/tweets", err)
	}

	posts := make([]SocialPost, len(resp.Tweets))
	for i, t := range resp.Tweets {
		posts[i] = SocialPost{
			ID:          t.ID,
			Content:     t.Content,
			SourceTitle: t.SummaryTitle,
			SourceLink:  t.SummaryLink,
			SourceName:  t.SummarySource,
		}
	}
	return posts, nil
}

// GenerateNewsletter implements Gateway.
func (g *HTTPGateway) GenerateNewsletter(ctx context.Context, sessionID, summaryMarkdown string, articles []Article) (string, error) {
	req := struct {
		SessionID       string    `json:"session_id"`
		SummaryMarkdown string    `json:"summary_markdown"`
		Articles        []Article `json:"articles"`
	}{SessionID: sessionID, SummaryMarkdown: summaryMarkdown, Articles: articles}

	var resp struct {
		HTML string `json:"html"`
	}
	if err := g.client.Post(ctx, "/newsletter", req, &resp); err != nil {
		return "", gatewayError("newsletter", "/newsletter", err)
	}
	return resp.HTML, nil
}

// EditText implements Gateway.
func (g *HTTPGateway) EditText(ctx context.Context, er EditRequest) (EditResult, error) {
	req := struct {
		SessionID    string     `json:"session_id"`
		Text         string     `json:"text"`
		Instruction  string     `json:"instruction"`
		PriorHistory []wireTurn `json:"prior_history,omitempty"`
	}{
		SessionID:    er.SessionID,
		Text:         er.Text,
		Instruction:  er.Instruction,
		PriorHistory: toWireTurns(er.History),
	}

	var resp struct {
		EditedText string     `json:"edited_text"`
		History    []wireTurn `json:"history"`
	}
	if err := g.client.Post(ctx, "/edit", req, &resp); err != nil {
		return EditResult{}, gatewayError("edit", "/edit", err)
	}
	return EditResult{
		EditedText: resp.EditedText,
		History:    fromWireTurns(resp.History),
	}, nil
}

// EditPost implements Gateway.
func (g *HTTPGateway) EditPost(ctx context.Context, pr PostEditRequest) (PostEditResult, error) {
	req := struct {
		SessionID           string     `json:"session_id"`
		TweetID             string     `json:"tweet_id"`
		CurrentTweet        string     `json:"current_tweet"`
		OriginalSummary     string     `json:"original_summary"`
		UserMessage         string     `json:"user_message"`
		ConversationHistory []wireTurn `json:"conversation_history,omitempty"`
	}{
		SessionID:           pr.SessionID,
		TweetID:             pr.PostID,
		CurrentTweet:        pr.CurrentText,
		OriginalSummary:     pr.OriginalSummary,
		UserMessage:         pr.UserMessage,
		ConversationHistory: toWireTurns(pr.History),
	}

	var resp struct {
		NewTweet            string     `json:"new_tweet"`
		AIResponse          string     `json:"ai_response"`
		ConversationHistory []wireTurn `json:"conversation_history"`
	}
	if err := g.client.Post(ctx, "/edit_tweet", req, &resp); err != nil {
		return PostEditResult{}, gatewayError("edit_tweet", "/edit_tweet", err)
	}
	return PostEditResult{
		NewText: resp.NewTweet,
		Reply:   resp.AIResponse,
		History: fromWireTurns(resp.ConversationHistory),
	}, nil
}

// DownloadHTML implements Gateway.
func (g *HTTPGateway) DownloadHTML(ctx context.Context, sessionID, html string) ([]byte, error) {
	req := struct {
		SessionID string `json:"session_id"`
		HTML      string `json:"html"`
	}{SessionID: sessionID, HTML: html}

	data, err := g.client.PostRaw(ctx, "/download_html", req)
	if err != nil {
		return nil, gatewayError("download_html", "/download_html", err)
	}
	return data, nil
}
