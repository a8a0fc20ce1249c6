package newsflow

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// =============================================================================
// Content Types
// =============================================================================

// Article is one aggregated feed entry. Immutable once fetched; the link
// is the unique key.
type Article struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Summary   string `json:"summary,omitempty"`
	Published string `json:"published,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Highlight is a condensed per-article summary. Link ties it back to the
// article it was derived from.
type Highlight struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source,omitempty"`
	Summary string `json:"summary"`
}

// SocialPost is a short social post generated from one highlight.
type SocialPost struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	SourceTitle string `json:"sourceTitle"`
	SourceLink  string `json:"sourceLink"`
	SourceName  string `json:"sourceName"`
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a per-entity edit conversation.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// =============================================================================
// Editable Entities
// =============================================================================

// EntityID identifies an editable content artifact. The digest and the
// newsletter are singletons; each social post has its own ID with the
// "post-" prefix.
type EntityID string

const (
	EntityDigest     EntityID = "digest"
	EntityNewsletter EntityID = "newsletter"
)

// PostEntityID returns the entity ID for a social post.
func PostEntityID(postID string) EntityID {
	return EntityID("post-" + postID)
}

// PostID extracts the social post ID from an entity ID.
// Returns "" if the entity is not a post.
func (id EntityID) PostID() string {
	const prefix = "post-"
	if len(id) > len(prefix) && id[:len(prefix)] == prefix {
		return string(id[len(prefix):])
	}
	return ""
}

// IsPost reports whether the entity is a social post.
func (id EntityID) IsPost() bool {
	return id.PostID() != ""
}

// Proposal is a staged, not-yet-committed replacement for an entity's
// content. At most one exists per session at any time.
type Proposal struct {
	Target EntityID `json:"target"`
	Text   string   `json:"text"`
}

// =============================================================================
// Pipeline Stages
// =============================================================================

// Stage is one step of the fixed generation pipeline.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageArticlesReady   Stage = "articles_ready"
	StageSummariesReady  Stage = "summaries_ready"
	StagePostsReady      Stage = "posts_ready"
	StageNewsletterReady Stage = "newsletter_ready"
)

// Operation names the pipeline and edit calls guarded by in-flight flags.
type Operation string

const (
	OpFetchArticles      Operation = "fetch_articles"
	OpSummarizeSelected  Operation = "summarize_selected"
	OpGenerateDigest     Operation = "generate_digest"
	OpGeneratePosts      Operation = "generate_posts"
	OpGenerateNewsletter Operation = "generate_newsletter"
	OpSendMessage        Operation = "send_message"
)

// MaxSelectedArticles caps how many articles one summarize call may cover.
const MaxSelectedArticles = 5

// =============================================================================
// SessionState
// =============================================================================

// SessionState is the complete per-session aggregate. All invariants
// (selection ⊆ articles, single active edit target, single pending
// proposal) are enforced by Controller transitions; nothing outside this
// package mutates a SessionState.
type SessionState struct {
	// Identification
	SessionID string `json:"sessionId"`

	// Stage progression
	Stage Stage `json:"stage"`

	// Epoch increments on Reset. Async results stamped with an older
	// epoch are discarded on arrival.
	Epoch int `json:"epoch"`

	// Content
	Articles   []Article    `json:"articles,omitempty"`
	Fetched    bool         `json:"fetched"` // distinguishes an empty fetch from no fetch
	Selection  SelectionSet `json:"selection,omitempty"`
	Highlights []Highlight  `json:"highlights,omitempty"`
	Digest     string       `json:"digest,omitempty"`
	Posts      []SocialPost `json:"posts,omitempty"`
	Newsletter string       `json:"newsletter,omitempty"`

	// Edit protocol
	ActiveEntity EntityID  `json:"activeEntity,omitempty"`
	Proposal     *Proposal `json:"proposal,omitempty"`

	// Presentation cursor over Highlights
	Page Paginator `json:"page"`

	inFlight map[Operation]bool
}

// NewSessionState creates a fresh session aggregate. The session ID is
// generated once and scopes all conversational memory and durable keys.
func NewSessionState() SessionState {
	id, err := nanoid.New()
	if err != nil {
		// nanoid only fails when the OS entropy source does.
		panic(fmt.Sprintf("generate session id: %v", err))
	}
	return SessionState{
		SessionID: id,
		Stage:     StageIdle,
		Selection: NewSelectionSet(),
		inFlight:  make(map[Operation]bool),
	}
}

// NoArticles reports whether a fetch completed with an empty result.
// This is the user-visible "no articles" state, distinct from StageIdle.
func (s SessionState) NoArticles() bool {
	return s.Fetched && len(s.Articles) == 0
}

// InFlight reports whether the operation's guard flag is set.
func (s SessionState) InFlight(op Operation) bool {
	return s.inFlight[op]
}

// Post returns the social post with the given ID, or nil.
func (s *SessionState) Post(postID string) *SocialPost {
	for i := range s.Posts {
		if s.Posts[i].ID == postID {
			return &s.Posts[i]
		}
	}
	return nil
}

// EntityText returns the committed content of an editable entity.
func (s *SessionState) EntityText(id EntityID) (string, error) {
	switch {
	case id == EntityDigest:
		return s.Digest, nil
	case id == EntityNewsletter:
		return s.Newsletter, nil
	case id.IsPost():
		if p := s.Post(id.PostID()); p != nil {
			return p.Content, nil
		}
	}
	return "", ErrUnknownEntity
}

// setEntityText commits text into an entity. Callers have already
// validated the entity exists.
func (s *SessionState) setEntityText(id EntityID, text string) error {
	switch {
	case id == EntityDigest:
		s.Digest = text
	case id == EntityNewsletter:
		s.Newsletter = text
	case id.IsPost():
		p := s.Post(id.PostID())
		if p == nil {
			return ErrUnknownEntity
		}
		p.Content = text
	default:
		return ErrUnknownEntity
	}
	return nil
}

// =============================================================================
// State Validation
// =============================================================================

// StateRequirement defines a precondition for a pipeline operation.
type StateRequirement string

const (
	RequireArticles   StateRequirement = "articles"
	RequireSelection  StateRequirement = "selection"
	RequireHighlights StateRequirement = "highlights"
	RequireProposal   StateRequirement = "proposal"
)

// Validate checks the state against the given requirements, returning the
// matching sentinel error for the first one that fails.
func (s SessionState) Validate(requirements ...StateRequirement) error {
	for _, req := range requirements {
		switch req {
		case RequireArticles:
			if len(s.Articles) == 0 {
				return ErrNoArticles
			}
		case RequireSelection:
			if n := s.Selection.Len(); n < 1 || n > MaxSelectedArticles {
				return ErrSelectionLimitExceeded
			}
		case RequireHighlights:
			if len(s.Highlights) == 0 {
				return ErrNoHighlights
			}
		case RequireProposal:
			if s.Proposal == nil {
				return ErrNoProposal
			}
		default:
			return fmt.Errorf("unknown requirement: %s", req)
		}
	}
	return nil
}

// SelectedArticles returns the selected articles in fetch order.
func (s SessionState) SelectedArticles() []Article {
	selected := make([]Article, 0, s.Selection.Len())
	for _, a := range s.Articles {
		if s.Selection.Contains(a.Link) {
			selected = append(selected, a)
		}
	}
	return selected
}

// Summary returns a human-readable one-line summary of the session.
func (s SessionState) Summary() string {
	return fmt.Sprintf("session %s [%s]: %d articles (%d selected), %d highlights, %d posts",
		s.SessionID, s.Stage, len(s.Articles), s.Selection.Len(), len(s.Highlights), len(s.Posts))
}
