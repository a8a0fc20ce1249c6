package newsflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/newsflowhq/newsflow/persist"
)

func TestConversationAppendAndHistory(t *testing.T) {
	cs := NewConversationStore("s1", persist.NewMemoryStore())
	ctx := context.Background()

	if err := cs.Append(ctx, EntityDigest, ConversationTurn{Role: RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := cs.Append(ctx, EntityDigest, ConversationTurn{Role: RoleAssistant, Content: "hello"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	turns := cs.History(EntityDigest)
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	if turns[0].Content != "hi" || turns[1].Content != "hello" {
		t.Errorf("turns = %+v", turns)
	}

	// Entities are isolated.
	if got := len(cs.History(EntityNewsletter)); got != 0 {
		t.Errorf("newsletter turns = %d, want 0", got)
	}
}

func TestConversationWindowTrailing(t *testing.T) {
	cs := NewConversationStore("s1", persist.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		turn := ConversationTurn{Role: RoleUser, Content: fmt.Sprintf("m%d", i)}
		if err := cs.Append(ctx, EntityDigest, turn); err != nil {
			t.Fatal(err)
		}
	}

	window := cs.Window(EntityDigest)
	if len(window) != historyWindow {
		t.Fatalf("window = %d, want %d", len(window), historyWindow)
	}
	if window[0].Content != "m4" || window[len(window)-1].Content != "m11" {
		t.Errorf("window = %q .. %q, want m4 .. m11", window[0].Content, window[len(window)-1].Content)
	}
}

func TestConversationRehydrateRoundTrip(t *testing.T) {
	store := persist.NewMemoryStore()
	ctx := context.Background()
	entity := PostEntityID("p1")

	writer := NewConversationStore("s1", store)
	if err := writer.Append(ctx, entity, ConversationTurn{Role: RoleUser, Content: "shorten it"}); err != nil {
		t.Fatal(err)
	}
	if err := writer.Append(ctx, entity, ConversationTurn{Role: RoleAssistant, Content: "done"}); err != nil {
		t.Fatal(err)
	}

	// A fresh store for the same session sees the mirrored history.
	reader := NewConversationStore("s1", store)
	if err := reader.Rehydrate(ctx, entity); err != nil {
		t.Fatalf("Rehydrate failed: %v", err)
	}
	turns := reader.History(entity)
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	if turns[0].Content != "shorten it" || turns[1].Role != RoleAssistant {
		t.Errorf("turns = %+v", turns)
	}

	// A different session shares nothing.
	other := NewConversationStore("s2", store)
	if err := other.Rehydrate(ctx, entity); err != nil {
		t.Fatalf("Rehydrate failed: %v", err)
	}
	if got := len(other.History(entity)); got != 0 {
		t.Errorf("cross-session turns = %d, want 0", got)
	}
}

func TestConversationRehydrateMissingIsEmpty(t *testing.T) {
	cs := NewConversationStore("s1", persist.NewMemoryStore())
	ctx := context.Background()

	cs.turns[EntityDigest] = []ConversationTurn{{Role: RoleUser, Content: "stale"}}
	if err := cs.Rehydrate(ctx, EntityDigest); err != nil {
		t.Fatalf("Rehydrate failed: %v", err)
	}
	if got := len(cs.History(EntityDigest)); got != 0 {
		t.Errorf("turns = %d, want 0 for missing record", got)
	}
}

func TestConversationClear(t *testing.T) {
	store := persist.NewMemoryStore()
	cs := NewConversationStore("s1", store)
	ctx := context.Background()

	if err := cs.Append(ctx, EntityDigest, ConversationTurn{Role: RoleUser, Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	if err := cs.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if got := len(cs.History(EntityDigest)); got != 0 {
		t.Errorf("turns = %d after Clear, want 0", got)
	}
	if err := cs.Rehydrate(ctx, EntityDigest); err != nil {
		t.Fatalf("Rehydrate failed: %v", err)
	}
	if got := len(cs.History(EntityDigest)); got != 0 {
		t.Errorf("durable turns = %d after Clear, want 0", got)
	}
}
