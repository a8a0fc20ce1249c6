package newsflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/newsflowhq/newsflow/persist"
)

// historyWindow is how many trailing turns are sent back to the
// generation service with each edit request.
const historyWindow = 8

// ConversationStore keeps the per-entity edit conversations for one
// session, mirroring every mutation to a durable store so a conversation
// survives a reload even when server-side memory does not.
type ConversationStore struct {
	sessionID string
	store     persist.Store
	turns     map[EntityID][]ConversationTurn

	// served holds the history exactly as the generation service
	// returned it on the entity's last exchange. The service appends to
	// its own copy of the conversation, so the next request must carry
	// that copy back verbatim or the two views drift apart.
	served map[EntityID][]ConversationTurn
}

// NewConversationStore creates a conversation store scoped to a session.
func NewConversationStore(sessionID string, store persist.Store) *ConversationStore {
	return &ConversationStore{
		sessionID: sessionID,
		store:     store,
		turns:     make(map[EntityID][]ConversationTurn),
		served:    make(map[EntityID][]ConversationTurn),
	}
}

// History returns a copy of the entity's ordered conversation.
func (c *ConversationStore) History(entityID EntityID) []ConversationTurn {
	turns := c.turns[entityID]
	out := make([]ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// Window returns up to historyWindow trailing turns for the entity.
func (c *ConversationStore) Window(entityID EntityID) []ConversationTurn {
	turns := c.turns[entityID]
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}
	out := make([]ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// WireHistory returns the history to send with the entity's next edit
// request: the service's own copy from the previous exchange, or the
// local trailing window when no exchange has happened yet.
func (c *ConversationStore) WireHistory(entityID EntityID) []ConversationTurn {
	if turns, ok := c.served[entityID]; ok {
		out := make([]ConversationTurn, len(turns))
		copy(out, turns)
		return out
	}
	return c.Window(entityID)
}

// RecordServed stores the history returned by the generation service,
// verbatim, for the entity's next request.
func (c *ConversationStore) RecordServed(entityID EntityID, turns []ConversationTurn) {
	out := make([]ConversationTurn, len(turns))
	copy(out, turns)
	c.served[entityID] = out
}

// Append adds a turn to the entity's conversation and mirrors the full
// history to the durable store.
func (c *ConversationStore) Append(ctx context.Context, entityID EntityID, turn ConversationTurn) error {
	c.turns[entityID] = append(c.turns[entityID], turn)
	return c.mirror(ctx, entityID)
}

// Rehydrate loads the entity's conversation from the durable store,
// replacing the in-memory copy. A missing record yields an empty
// history. The served copy is dropped; server-side memory may not have
// survived whatever made the reload necessary.
func (c *ConversationStore) Rehydrate(ctx context.Context, entityID EntityID) error {
	delete(c.served, entityID)

	data, err := c.store.Get(ctx, c.sessionID, string(entityID))
	if errors.Is(err, persist.ErrNotFound) {
		delete(c.turns, entityID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("rehydrate conversation %s: %w", entityID, err)
	}

	var turns []ConversationTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return fmt.Errorf("decode conversation %s: %w", entityID, err)
	}
	c.turns[entityID] = turns
	return nil
}

// Clear drops every conversation for the session, in memory and durably.
func (c *ConversationStore) Clear(ctx context.Context) error {
	c.turns = make(map[EntityID][]ConversationTurn)
	c.served = make(map[EntityID][]ConversationTurn)
	return c.store.DeleteSession(ctx, c.sessionID)
}

func (c *ConversationStore) mirror(ctx context.Context, entityID EntityID) error {
	data, err := json.Marshal(c.turns[entityID])
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", entityID, err)
	}
	return c.store.Put(ctx, c.sessionID, string(entityID), data)
}
