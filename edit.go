package newsflow

import (
	"context"
	"unicode/utf8"

	"github.com/newsflowhq/newsflow/notify"
)

// MaxPostLength is the character limit enforced when committing a social
// post proposal.
const MaxPostLength = 280

// BeginEdit makes the entity the sole active edit target and rehydrates
// its conversation from the durable store. If another entity was active,
// its unresolved proposal is discarded without committing.
func (c *Controller) BeginEdit(ctx context.Context, entityID EntityID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.state.EntityText(entityID); err != nil {
		return err
	}

	if c.state.ActiveEntity != "" && c.state.ActiveEntity != entityID {
		c.state.Proposal = nil
	}
	c.state.ActiveEntity = entityID
	return c.conversations.Rehydrate(ctx, entityID)
}

// CloseEdit clears the active-target state and any unresolved proposal
// for the entity without committing. Conversation history is retained.
func (c *Controller) CloseEdit(entityID EntityID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.ActiveEntity != entityID {
		return
	}
	c.state.ActiveEntity = ""
	c.state.Proposal = nil
}

// SendMessage sends an edit instruction for the active entity. The user
// turn is appended (and mirrored) immediately; the assistant turn and the
// resulting proposal are applied only if the entity is still the active
// target under the same epoch when the response arrives. Otherwise the
// response is discarded and ErrStaleResponse is returned.
func (c *Controller) SendMessage(ctx context.Context, entityID EntityID, message string) error {
	c.mu.Lock()
	if c.state.ActiveEntity != entityID {
		c.mu.Unlock()
		return ErrNotActiveTarget
	}
	if c.state.InFlight(OpSendMessage) {
		c.mu.Unlock()
		return ErrBusy
	}
	current, err := c.state.EntityText(entityID)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.state.inFlight[OpSendMessage] = true
	epoch := c.state.Epoch
	sessionID := c.state.SessionID

	// Wire history is captured before the user turn is appended: the
	// current message travels in its own request field, not inside the
	// history, or the service would see it twice.
	history := c.conversations.WireHistory(entityID)
	if err := c.conversations.Append(ctx, entityID, ConversationTurn{Role: RoleUser, Content: message}); err != nil {
		c.state.inFlight[OpSendMessage] = false
		c.mu.Unlock()
		return err
	}
	sourceSummary := c.postSourceSummary(entityID)
	c.mu.Unlock()

	var proposalText, reply string
	var served []ConversationTurn
	if entityID.IsPost() {
		var res PostEditResult
		res, err = c.gateway.EditPost(ctx, PostEditRequest{
			SessionID:       sessionID,
			PostID:          entityID.PostID(),
			CurrentText:     current,
			OriginalSummary: sourceSummary,
			UserMessage:     message,
			History:         history,
		})
		proposalText, reply, served = res.NewText, res.Reply, res.History
	} else {
		var res EditResult
		res, err = c.gateway.EditText(ctx, EditRequest{
			SessionID:   sessionID,
			Text:        current,
			Instruction: message,
			History:     history,
		})
		proposalText, reply, served = res.EditedText, res.EditedText, res.History
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.inFlight[OpSendMessage] = false
	if err != nil {
		c.fail(OpSendMessage, err)
		return err
	}
	if c.state.Epoch != epoch || c.state.ActiveEntity != entityID {
		return ErrStaleResponse
	}

	if err := c.conversations.Append(ctx, entityID, ConversationTurn{Role: RoleAssistant, Content: reply}); err != nil {
		return err
	}
	c.conversations.RecordServed(entityID, served)
	c.state.Proposal = &Proposal{Target: entityID, Text: proposalText}
	c.notify(notify.Event{
		Type:      notify.EventProposalCreated,
		SessionID: sessionID,
		EntityID:  string(entityID),
		Message:   "proposal staged",
		Severity:  notify.SeverityInfo,
	})
	return nil
}

// AcceptProposal commits the pending proposal into the entity's content.
// A social post proposal longer than MaxPostLength is refused with
// ErrLengthViolation and stays pending for the user to re-request a
// shorter edit.
func (c *Controller) AcceptProposal(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.Validate(RequireProposal); err != nil {
		return err
	}

	p := c.state.Proposal
	if p.Target.IsPost() && utf8.RuneCountInString(p.Text) > MaxPostLength {
		return ErrLengthViolation
	}
	if err := c.state.setEntityText(p.Target, p.Text); err != nil {
		return err
	}
	c.state.Proposal = nil
	c.notify(notify.Event{
		Type:      notify.EventProposalAccepted,
		SessionID: c.state.SessionID,
		EntityID:  string(p.Target),
		Message:   "proposal accepted",
		Severity:  notify.SeverityInfo,
	})
	return nil
}

// RejectProposal clears the pending proposal without mutating committed
// content. Conversation history is retained.
func (c *Controller) RejectProposal(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.Validate(RequireProposal); err != nil {
		return err
	}

	target := c.state.Proposal.Target
	c.state.Proposal = nil
	c.notify(notify.Event{
		Type:      notify.EventProposalRejected,
		SessionID: c.state.SessionID,
		EntityID:  string(target),
		Message:   "proposal rejected",
		Severity:  notify.SeverityInfo,
	})
	return nil
}

// postSourceSummary finds the highlight a post was derived from.
// Called with c.mu held.
func (c *Controller) postSourceSummary(entityID EntityID) string {
	if !entityID.IsPost() {
		return ""
	}
	post := c.state.Post(entityID.PostID())
	if post == nil {
		return ""
	}
	for _, h := range c.state.Highlights {
		if h.Link == post.SourceLink {
			return h.Summary
		}
	}
	return ""
}
