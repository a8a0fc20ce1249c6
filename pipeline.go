package newsflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/newsflowhq/newsflow/notify"
	"github.com/newsflowhq/newsflow/persist"
)

// Controller owns one SessionState aggregate and applies every transition
// to it, so the invariants (selection ⊆ articles, single active edit
// target, single pending proposal) live in one place. Methods are safe
// for concurrent callers; gateway calls run outside the state lock, and
// each response is re-validated against the epoch it was issued under
// before being applied.
type Controller struct {
	mu            sync.Mutex
	state         SessionState
	gateway       Gateway
	conversations *ConversationStore
	notifier      notify.Notifier
	logger        *slog.Logger

	events    chan notify.Event
	done      chan struct{}
	closeOnce sync.Once
}

// eventQueueSize bounds the backlog of undelivered notifier events.
const eventQueueSize = 64

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	Gateway  Gateway       // required
	Persist  persist.Store // defaults to an in-memory store
	Notifier notify.Notifier
	Logger   *slog.Logger
}

// NewController creates a session controller with a fresh session ID.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}

	store := cfg.Persist
	if store == nil {
		store = persist.NewMemoryStore()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	state := NewSessionState()
	c := &Controller{
		state:         state,
		gateway:       cfg.Gateway,
		conversations: NewConversationStore(state.SessionID, store),
		notifier:      notifier,
		logger:        logger,
		events:        make(chan notify.Event, eventQueueSize),
		done:          make(chan struct{}),
	}
	go c.deliverEvents()
	return c, nil
}

// SessionID returns the session identifier.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SessionID
}

// Snapshot returns a copy of the current session state for presentation.
func (c *Controller) Snapshot() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyState()
}

// Conversation returns the ordered edit history for an entity.
func (c *Controller) Conversation(entityID EntityID) []ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversations.History(entityID)
}

// =============================================================================
// Pipeline Operations
// =============================================================================

// FetchArticles aggregates articles from the given feed URLs. On success
// the stage moves to ArticlesReady and every returned article is
// selected. An empty result still advances the stage; NoArticles()
// distinguishes it from "not yet fetched".
func (c *Controller) FetchArticles(ctx context.Context, feedURLs []string) error {
	epoch, err := c.begin(OpFetchArticles)
	if err != nil {
		return err
	}

	articles, err := c.gateway.Aggregate(ctx, feedURLs)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.inFlight[OpFetchArticles] = false
	if err != nil {
		c.fail(OpFetchArticles, err)
		return err
	}
	if c.state.Epoch != epoch {
		return ErrStaleResponse
	}

	c.state.Articles = articles
	c.state.Fetched = true
	c.state.Selection = NewSelectionSet()
	c.state.Selection.SelectAll(articles)
	c.state.Stage = StageArticlesReady
	c.complete(OpFetchArticles, map[string]any{"articles": len(articles)})
	return nil
}

// SummarizeSelected generates one highlight per selected article. The
// selection must contain between 1 and MaxSelectedArticles articles;
// violations fail before any network call. On success the stage moves to
// SummariesReady and the pagination cursor returns to the first item.
func (c *Controller) SummarizeSelected(ctx context.Context) error {
	c.mu.Lock()
	if c.state.InFlight(OpSummarizeSelected) {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.state.Validate(RequireArticles, RequireSelection); err != nil {
		c.mu.Unlock()
		return err
	}
	selected := c.state.SelectedArticles()
	sessionID := c.state.SessionID
	epoch := c.state.Epoch
	c.state.inFlight[OpSummarizeSelected] = true
	c.mu.Unlock()

	highlights, err := c.gateway.SummarizeSelected(ctx, sessionID, selected)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.inFlight[OpSummarizeSelected] = false
	if err != nil {
		c.fail(OpSummarizeSelected, err)
		return err
	}
	if c.state.Epoch != epoch {
		return ErrStaleResponse
	}

	c.state.Highlights = highlights
	c.state.Stage = StageSummariesReady
	c.state.Page.Reset()
	c.complete(OpSummarizeSelected, map[string]any{"highlights": len(highlights)})
	return nil
}

// GenerateDigest produces the combined digest markdown from the current
// highlight list and commits it as the digest entity's content. It does
// not advance the pipeline stage.
func (c *Controller) GenerateDigest(ctx context.Context) error {
	highlights, sessionID, epoch, err := c.beginWithHighlights(OpGenerateDigest)
	if err != nil {
		return err
	}

	digest, err := c.gateway.GenerateDigest(ctx, sessionID, highlights)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.inFlight[OpGenerateDigest] = false
	if err != nil {
		c.fail(OpGenerateDigest, err)
		return err
	}
	if c.state.Epoch != epoch {
		return ErrStaleResponse
	}

	c.state.Digest = digest
	c.complete(OpGenerateDigest, nil)
	return nil
}

// GeneratePosts replaces the social post collection with one post per
// highlight, each carrying a stable ID.
func (c *Controller) GeneratePosts(ctx context.Context) error {
	highlights, sessionID, epoch, err := c.beginWithHighlights(OpGeneratePosts)
	if err != nil {
		return err
	}

	posts, err := c.gateway.GeneratePosts(ctx, sessionID, highlights)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.inFlight[OpGeneratePosts] = false
	if err != nil {
		c.fail(OpGeneratePosts, err)
		return err
	}
	if c.state.Epoch != epoch {
		return ErrStaleResponse
	}

	for i := range posts {
		if posts[i].ID == "" {
			posts[i].ID = nanoid.Must()
		}
	}
	c.state.Posts = posts
	c.state.Stage = StagePostsReady
	c.complete(OpGeneratePosts, map[string]any{"posts": len(posts)})
	return nil
}

// GenerateNewsletter assembles the newsletter document from the current
// digest markdown and the selected articles.
func (c *Controller) GenerateNewsletter(ctx context.Context) error {
	c.mu.Lock()
	if c.state.InFlight(OpGenerateNewsletter) {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.state.Validate(RequireHighlights); err != nil {
		c.mu.Unlock()
		return err
	}
	sessionID := c.state.SessionID
	digest := c.state.Digest
	articles := c.state.SelectedArticles()
	epoch := c.state.Epoch
	c.state.inFlight[OpGenerateNewsletter] = true
	c.mu.Unlock()

	html, err := c.gateway.GenerateNewsletter(ctx, sessionID, digest, articles)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.inFlight[OpGenerateNewsletter] = false
	if err != nil {
		c.fail(OpGenerateNewsletter, err)
		return err
	}
	if c.state.Epoch != epoch {
		return ErrStaleResponse
	}

	c.state.Newsletter = html
	c.state.Stage = StageNewsletterReady
	c.complete(OpGenerateNewsletter, nil)
	return nil
}

// Reset returns the session to Idle: articles, highlights, posts,
// newsletter, digest, selection, conversations, proposal and pagination
// are all cleared. The epoch bump makes any still-outstanding response
// stale. In-flight flags are preserved so a hung request cannot be
// duplicated.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sessionID := c.state.SessionID
	inFlight := c.state.inFlight
	epoch := c.state.Epoch

	c.state = SessionState{
		SessionID: sessionID,
		Stage:     StageIdle,
		Epoch:     epoch + 1,
		Selection: NewSelectionSet(),
		inFlight:  inFlight,
	}

	err := c.conversations.Clear(ctx)
	c.notify(notify.Event{
		Type:      notify.EventSessionReset,
		SessionID: sessionID,
		Message:   "session reset",
		Severity:  notify.SeverityInfo,
	})
	return err
}

// =============================================================================
// Selection and Pagination
// =============================================================================

// ToggleSelection flips the selection state of one article link.
func (c *Controller) ToggleSelection(link string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection.Toggle(link)
	c.state.Selection.Retain(c.state.Articles)
}

// SelectAll selects every fetched article.
func (c *Controller) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection.SelectAll(c.state.Articles)
}

// SelectNone clears the selection.
func (c *Controller) SelectNone() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection.SelectNone()
}

// NextHighlight advances the highlight cursor.
func (c *Controller) NextHighlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Page.Next(len(c.state.Highlights))
	return c.state.Page.Cursor
}

// PreviousHighlight moves the highlight cursor back.
func (c *Controller) PreviousHighlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Page.Previous(len(c.state.Highlights))
	return c.state.Page.Cursor
}

// =============================================================================
// Internals
// =============================================================================

// begin sets the in-flight guard for op and returns the epoch the caller
// must re-validate against when the response arrives.
func (c *Controller) begin(op Operation) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.InFlight(op) {
		return 0, ErrBusy
	}
	c.state.inFlight[op] = true
	return c.state.Epoch, nil
}

// beginWithHighlights is begin plus the non-empty-highlight precondition
// and a snapshot of the highlight list. Retries after a failure reuse
// the identical committed snapshot.
func (c *Controller) beginWithHighlights(op Operation) ([]Highlight, string, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.InFlight(op) {
		return nil, "", 0, ErrBusy
	}
	if err := c.state.Validate(RequireHighlights); err != nil {
		return nil, "", 0, err
	}
	highlights := make([]Highlight, len(c.state.Highlights))
	copy(highlights, c.state.Highlights)
	c.state.inFlight[op] = true
	return highlights, c.state.SessionID, c.state.Epoch, nil
}

func (c *Controller) copyState() SessionState {
	s := c.state

	s.Articles = append([]Article(nil), c.state.Articles...)
	s.Highlights = append([]Highlight(nil), c.state.Highlights...)
	s.Posts = append([]SocialPost(nil), c.state.Posts...)
	s.Selection = NewSelectionSet()
	for link := range c.state.Selection {
		s.Selection[link] = struct{}{}
	}
	if c.state.Proposal != nil {
		p := *c.state.Proposal
		s.Proposal = &p
	}

	flags := make(map[Operation]bool, len(c.state.inFlight))
	for op, v := range c.state.inFlight {
		flags[op] = v
	}
	s.inFlight = flags
	return s
}

// complete logs and notifies a successful operation. Called with c.mu held.
func (c *Controller) complete(op Operation, meta map[string]any) {
	c.logger.Debug("operation completed", "session_id", c.state.SessionID, "operation", op)
	c.notify(notify.Event{
		Type:      notify.EventStageCompleted,
		SessionID: c.state.SessionID,
		Operation: string(op),
		Message:   fmt.Sprintf("%s completed", op),
		Severity:  notify.SeverityInfo,
		Metadata:  meta,
	})
}

// fail logs and notifies a failed operation. Called with c.mu held. The
// failed call leaves prior stage data untouched; only the in-flight flag
// was cleared.
func (c *Controller) fail(op Operation, err error) {
	c.logger.Warn("operation failed", "session_id", c.state.SessionID, "operation", op, "error", err)
	c.notify(notify.Event{
		Type:      notify.EventStageFailed,
		SessionID: c.state.SessionID,
		Operation: string(op),
		Message:   err.Error(),
		Severity:  notify.SeverityError,
	})
}

// notify queues the event for background delivery. Notifier I/O (a
// webhook can retry for seconds) must never run under the state lock,
// so events are handed to a drain goroutine instead. A full queue drops
// the event rather than block a state transition.
func (c *Controller) notify(event notify.Event) {
	event.Timestamp = time.Now()
	select {
	case c.events <- event:
	default:
		c.logger.Warn("event queue full, dropping event", "event_type", event.Type)
	}
}

func (c *Controller) deliverEvents() {
	defer close(c.done)
	for event := range c.events {
		if err := c.notifier.Notify(context.Background(), event); err != nil {
			c.logger.Warn("notify failed", "error", err, "event_type", event.Type)
		}
	}
}

// Close stops background event delivery after draining any queued
// events. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.events)
		<-c.done
	})
}
