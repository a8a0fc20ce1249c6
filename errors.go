package newsflow

import "errors"

// Pipeline errors
var (
	// ErrBusy indicates the operation's in-flight guard is already set.
	// The call is dropped; no state is mutated.
	ErrBusy = errors.New("operation already in flight")

	// ErrSelectionLimitExceeded indicates the article selection is empty
	// or larger than MaxSelectedArticles. Raised before any network call.
	ErrSelectionLimitExceeded = errors.New("selection must contain between 1 and 5 articles")

	// ErrNoArticles indicates an operation requires fetched articles.
	ErrNoArticles = errors.New("no articles fetched")

	// ErrNoHighlights indicates an operation requires a non-empty highlight list.
	ErrNoHighlights = errors.New("no highlights generated")

	// ErrStaleResponse indicates an async result arrived after the state it
	// was issued against changed; the result was discarded, not applied.
	ErrStaleResponse = errors.New("stale response discarded")
)

// Edit protocol errors
var (
	// ErrUnknownEntity indicates the entity ID names no editable content.
	ErrUnknownEntity = errors.New("unknown editable entity")

	// ErrNotActiveTarget indicates the entity is not the active edit target.
	ErrNotActiveTarget = errors.New("entity is not the active edit target")

	// ErrNoProposal indicates no unresolved proposal exists for the active entity.
	ErrNoProposal = errors.New("no pending proposal")

	// ErrLengthViolation indicates a social post proposal exceeds the
	// 280-character limit at accept time. The proposal stays pending.
	ErrLengthViolation = errors.New("post exceeds 280 characters")
)

// GatewayError wraps a failed generation-service call with context.
// It corresponds to the TransportFailure condition: the operation's
// in-flight flag is cleared and no stage data is written.
type GatewayError struct {
	Op       string // Operation that failed (e.g., "aggregate", "tweets")
	Endpoint string // Endpoint path that was called
	Status   int    // HTTP status, 0 for transport-level failures
	Err      error  // Underlying error
}

func (e *GatewayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsBusy reports whether the error is a dropped duplicate invocation.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsSelectionLimit reports whether the error is a selection-count violation.
func IsSelectionLimit(err error) bool {
	return errors.Is(err, ErrSelectionLimitExceeded)
}

// IsLengthViolation reports whether the error is a refused post commit.
func IsLengthViolation(err error) bool {
	return errors.Is(err, ErrLengthViolation)
}

// IsTransportFailure reports whether the error came from a gateway call.
func IsTransportFailure(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

// IsStale reports whether the error marks a discarded stale response.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleResponse)
}
