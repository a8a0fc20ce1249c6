// Package backend implements the generation service behind the session
// core's Gateway: feed aggregation, per-article summaries, the weekly
// digest, tweet generation, newsletter assembly and conversational edits.
package backend

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/newsflowhq/newsflow/prompt"
)

// maxSummarizeArticles caps how many articles one summaries call covers.
const maxSummarizeArticles = 5

// Server serves the generation endpoints.
type Server struct {
	feeds      map[string]string
	sinceDays  int
	aggregator *Aggregator
	scraper    *Scraper
	chat       Completer
	memory     *MemoryStore
	prompts    *prompt.Loader
	logger     *slog.Logger
}

// ServerConfig configures a Server.
type ServerConfig struct {
	Feeds     map[string]string
	SinceDays int
	Chat      Completer // required
	Prompts   *prompt.Loader
	Logger    *slog.Logger
}

// NewServer creates a generation server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Chat == nil {
		return nil, fmt.Errorf("chat completer required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prompts := cfg.Prompts
	if prompts == nil {
		prompts = prompt.NewLoader()
	}
	sinceDays := cfg.SinceDays
	if sinceDays == 0 {
		sinceDays = 7
	}

	return &Server{
		feeds:      cfg.Feeds,
		sinceDays:  sinceDays,
		aggregator: NewAggregator(logger),
		scraper:    NewScraper(),
		chat:       cfg.Chat,
		memory:     NewMemoryStore(),
		prompts:    prompts,
		logger:     logger,
	}, nil
}

// Router returns the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHealth)
	r.Get("/defaults", s.handleDefaults)
	r.Post("/aggregate", s.handleAggregate)
	r.Post("/summaries_selected", s.handleSummariesSelected)
	r.Post("/highlights", s.handleDigest)
	r.Post("/tweets", s.handleTweets)
	r.Post("/newsletter", s.handleNewsletter)
	r.Post("/edit", s.handleEdit)
	r.Post("/edit_tweet", s.handleEditTweet)
	r.Post("/download_html", s.handleDownloadHTML)
	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDefaults(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.feeds)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sources   []string `json:"sources"`
		SinceDays int      `json:"since_days"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}

	sinceDays := req.SinceDays
	if sinceDays < 1 || sinceDays > 31 {
		sinceDays = s.sinceDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -sinceDays)

	articles := s.aggregator.Fetch(r.Context(), req.Sources, cutoff)
	if articles == nil {
		articles = []Article{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

func (s *Server) handleSummariesSelected(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string    `json:"session_id"`
		Articles  []Article `json:"articles"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}

	articles := req.Articles
	if len(articles) > maxSummarizeArticles {
		articles = articles[:maxSummarizeArticles]
	}

	items := make([]Highlight, 0, len(articles))
	for _, a := range articles {
		items = append(items, Highlight{
			Title:   a.Title,
			Link:    a.Link,
			Source:  a.Source,
			Summary: s.summarizeArticle(r, a),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// summarizeArticle scrapes one article and asks the model for a short
// summary, falling back to the feed summary on any failure.
func (s *Server) summarizeArticle(r *http.Request, a Article) string {
	content := s.scraper.Fetch(r.Context(), a.Link)
	if content == "" {
		content = a.Summary
	}
	if content == "" {
		content = fmt.Sprintf("Title: %s\nRSS Summary: No summary available", a.Title)
	}

	system, err := s.prompts.Load("summarize_article")
	if err != nil {
		s.logger.Warn("prompt load failed", "prompt", "summarize_article", "error", err)
		return a.Summary
	}
	user := fmt.Sprintf("Title: %s\nSource: %s\nURL: %s\n\nContent:\n%s\n\nWrite a clear, concise summary.",
		a.Title, a.Source, a.Link, content)

	summary, err := s.chat.Complete(r.Context(), []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, 0.3)
	if err != nil {
		s.logger.Warn("summary generation failed", "article", a.Link, "error", err)
		if a.Summary != "" {
			return a.Summary
		}
		return "Unable to generate summary for: " + a.Title
	}
	return cleanTweet(summary)
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID    string    `json:"session_id"`
		Articles     []Article `json:"articles"`
		PriorHistory []Turn    `json:"prior_history"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	s.restoreHistory(req.SessionID, req.PriorHistory)

	// Anchor the digest to the current week so the model can't invent dates.
	now := time.Now()
	weekStart := now.AddDate(0, 0, -int((now.Weekday()+6)%7)) // Monday
	weekOf := weekStart.Format("Jan 02, 2006")

	system, err := s.prompts.LoadWithVars("digest", map[string]any{"WeekOf": weekOf})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := ""
	limit := req.Articles
	if len(limit) > 20 {
		limit = limit[:20]
	}
	for _, a := range limit {
		items += fmt.Sprintf("- %s (%s) %s\n%s\n", a.Title, a.Source, a.Link, a.Summary)
	}
	user := fmt.Sprintf("Write a weekly highlights summary based on these items:\n\n%s", items)

	messages := []Message{{Role: "system", Content: system}}
	for _, t := range s.memory.Window(req.SessionID, 6) {
		messages = append(messages, Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, Message{Role: "user", Content: user})

	content, err := s.chat.Complete(r.Context(), messages, 0.3)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	content = ensureWeekHeading(content, weekOf)
	s.memory.Update(req.SessionID, func(m *SessionMemory) {
		m.LastSummary = content
		m.History = append(m.History,
			Turn{Role: "user", Content: user},
			Turn{Role: "assistant", Content: content})
	})
	s.writeJSON(w, http.StatusOK, map[string]string{"summary_markdown": content})
}

func (s *Server) handleTweets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID    string      `json:"session_id"`
		Summaries    []Highlight `json:"summaries"`
		PriorHistory []Turn      `json:"prior_history"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	s.restoreHistory(req.SessionID, req.PriorHistory)

	system, err := s.prompts.Load("tweet")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tweets := make([]Tweet, 0, len(req.Summaries))
	for _, h := range req.Summaries {
		user := fmt.Sprintf(
			"Create a single engaging tweet about this AI news article:\n\n"+
				"Title: %s\nSource: %s\nSummary: %s\n\n"+
				"Include 1-2 relevant emojis and 1-2 hashtags. Keep under 280 characters. "+
				"Return only the tweet text, no JSON formatting.",
			h.Title, h.Source, h.Summary)

		messages := []Message{{Role: "system", Content: system}}
		for _, t := range s.memory.Window(req.SessionID, 4) {
			messages = append(messages, Message{Role: t.Role, Content: t.Content})
		}
		messages = append(messages, Message{Role: "user", Content: user})

		content, err := s.chat.Complete(r.Context(), messages, 0.7)
		if err != nil {
			s.logger.Warn("tweet generation failed", "article", h.Link, "error", err)
			content = fallbackTweet(h)
		} else {
			content = truncateTweet(cleanTweet(content))
		}

		source := h.Source
		if source == "" {
			source = "Unknown"
		}
		tweets = append(tweets, Tweet{
			ID:            nanoid.Must(),
			Content:       content,
			SummaryTitle:  h.Title,
			SummaryLink:   h.Link,
			SummarySource: source,
		})
	}

	s.memory.Update(req.SessionID, func(m *SessionMemory) {
		m.History = append(m.History,
			Turn{Role: "user", Content: fmt.Sprintf("Generated %d tweets from summaries", len(tweets))},
			Turn{Role: "assistant", Content: "Tweets generated successfully"})
	})
	s.writeJSON(w, http.StatusOK, map[string]any{"tweets": tweets})
}

func (s *Server) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID       string    `json:"session_id"`
		SummaryMarkdown string    `json:"summary_markdown"`
		Articles        []Article `json:"articles"`
		PriorHistory    []Turn    `json:"prior_history"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	s.restoreHistory(req.SessionID, req.PriorHistory)

	html, err := buildNewsletterHTML(req.Articles)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.memory.Update(req.SessionID, func(m *SessionMemory) {
		m.LastNewsletterHTML = html
	})
	s.writeJSON(w, http.StatusOK, map[string]string{"html": html})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID    string `json:"session_id"`
		Text         string `json:"text"`
		Instruction  string `json:"instruction"`
		PriorHistory []Turn `json:"prior_history"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	s.restoreHistory(req.SessionID, req.PriorHistory)

	system, err := s.prompts.Load("edit")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	user := fmt.Sprintf("Instruction: %s\n\nText to edit:\n%s", req.Instruction, req.Text)

	messages := []Message{{Role: "system", Content: system}}
	for _, t := range s.memory.Window(req.SessionID, 8) {
		messages = append(messages, Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, Message{Role: "user", Content: user})

	content, err := s.chat.Complete(r.Context(), messages, 0.4)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.memory.Update(req.SessionID, func(m *SessionMemory) {
		m.History = append(m.History,
			Turn{Role: "user", Content: user},
			Turn{Role: "assistant", Content: content})
	})
	s.writeJSON(w, http.StatusOK, map[string]any{
		"edited_text": content,
		"history":     s.memory.Window(req.SessionID, 10),
	})
}

func (s *Server) handleEditTweet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID           string `json:"session_id"`
		TweetID             string `json:"tweet_id"`
		CurrentTweet        string `json:"current_tweet"`
		OriginalSummary     string `json:"original_summary"`
		UserMessage         string `json:"user_message"`
		ConversationHistory []Turn `json:"conversation_history"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}

	// Tweet edits get their own conversation, scoped per tweet.
	memoryKey := fmt.Sprintf("%s_tweet_%s", req.SessionID, req.TweetID)
	s.restoreHistory(memoryKey, req.ConversationHistory)

	system, err := s.prompts.Load("edit_tweet")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	editContext := fmt.Sprintf("Original Article Summary: %s\nCurrent Tweet: %s\nUser Request: %s",
		req.OriginalSummary, req.CurrentTweet, req.UserMessage)

	messages := []Message{{Role: "system", Content: system}}
	for _, t := range s.memory.Window(memoryKey, 6) {
		messages = append(messages, Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, Message{Role: "user", Content: editContext})

	response, err := s.chat.Complete(r.Context(), messages, 0.7)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	newTweet, reply := parseTweetEdit(response, req.CurrentTweet)
	s.memory.Update(memoryKey, func(m *SessionMemory) {
		m.History = append(m.History,
			Turn{Role: "user", Content: req.UserMessage},
			Turn{Role: "assistant", Content: response})
	})
	s.writeJSON(w, http.StatusOK, map[string]any{
		"new_tweet":            newTweet,
		"ai_response":          reply,
		"conversation_history": s.memory.Window(memoryKey, 10),
	})
}

func (s *Server) handleDownloadHTML(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		HTML      string `json:"html"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}

	html := req.HTML
	if html == "" && req.SessionID != "" {
		html = s.memory.Get(req.SessionID).LastNewsletterHTML
	}
	if html == "" {
		s.writeError(w, http.StatusBadRequest, "no HTML provided or found for session")
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Content-Disposition", `attachment; filename=ai_weekly.html`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// =============================================================================
// Helpers
// =============================================================================

// restoreHistory replays client-supplied history into session memory,
// covering serverless-style memory resets between requests.
func (s *Server) restoreHistory(sessionID string, turns []Turn) {
	if len(turns) == 0 {
		return
	}
	if len(turns) > 8 {
		turns = turns[len(turns)-8:]
	}
	s.memory.Update(sessionID, func(m *SessionMemory) {
		m.History = append(m.History, turns...)
	})
}

// ensureWeekHeading prepends the week label when the model left it out.
func ensureWeekHeading(content, weekOf string) string {
	trimmed := strings.TrimLeft(content, "# \n")
	if len(trimmed) >= 7 && strings.EqualFold(trimmed[:7], "week of") {
		return content
	}
	return fmt.Sprintf("## Week of %s\n\n%s", weekOf, content)
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("write response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
