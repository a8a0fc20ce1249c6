// Package notify delivers session lifecycle events to pluggable sinks.
//
// The session core publishes an Event when a pipeline stage completes or
// fails and when a proposal is resolved. Sinks must be non-blocking and
// tolerate failure; a broken sink never breaks the session.
package notify

import (
	"context"
	"time"
)

// EventType represents the type of session event.
type EventType string

// Event type constants.
const (
	EventStageCompleted   EventType = "stage_completed"
	EventStageFailed      EventType = "stage_failed"
	EventProposalCreated  EventType = "proposal_created"
	EventProposalAccepted EventType = "proposal_accepted"
	EventProposalRejected EventType = "proposal_rejected"
	EventSessionReset     EventType = "session_reset"
)

// Severity constants for events.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes a session event for notification.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Operation string         `json:"operation,omitempty"`
	EntityID  string         `json:"entity_id,omitempty"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Notifier sends notifications about session events.
type Notifier interface {
	// Notify sends a notification. Implementations should handle errors
	// gracefully (log, don't crash).
	Notify(ctx context.Context, event Event) error
}
