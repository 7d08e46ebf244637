package ledger

import (
	"errors"
	"fmt"
)

// Statuses and duplicate markers the backend is known to emit. Anything
// else is classified as a generic failure rather than trusted.
const (
	StatusOK           = "ok"
	StatusSuccess      = "success"
	StatusUnauthorized = "unauthorized"

	SkippedDuplicateRequestID = "duplicate_requestId"
	SkippedDuplicateContent   = "duplicate_content"
)

// UnknownFailure is the placeholder message when the backend reports neither
// a message nor a status.
const UnknownFailure = "unknown"

type OutcomeKind string

const (
	// OutcomeSuccess: the entry was recorded; the form should reset.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeDuplicateSkipped: the backend recognized the submission as a
	// duplicate and skipped it. Equivalent to success for the caller.
	OutcomeDuplicateSkipped OutcomeKind = "duplicate_skipped"
	// OutcomeUnauthorized: the access key was rejected. Not retried.
	OutcomeUnauthorized OutcomeKind = "unauthorized"
	// OutcomeFailure: any other backend-reported condition.
	OutcomeFailure OutcomeKind = "failure"
)

// Outcome is the classified result of a create request.
type Outcome struct {
	Kind    OutcomeKind
	Status  string // raw backend status
	Message string // backend message; UnknownFailure fallback for failures
	Skipped string // duplicate marker, set only for OutcomeDuplicateSkipped
}

// ResetWorthy reports whether the caller should reset its input state:
// true for success and for the idempotent duplicate skip.
func (o Outcome) ResetWorthy() bool {
	return o.Kind == OutcomeSuccess || o.Kind == OutcomeDuplicateSkipped
}

// Classify maps a raw backend response to an Outcome. Priority order:
// success statuses, duplicate markers, unauthorized, generic failure.
func Classify(status, message, skipped string) Outcome {
	switch {
	case status == StatusOK || status == StatusSuccess:
		return Outcome{Kind: OutcomeSuccess, Status: status, Message: message}
	case skipped == SkippedDuplicateRequestID || skipped == SkippedDuplicateContent:
		return Outcome{Kind: OutcomeDuplicateSkipped, Status: status, Message: message, Skipped: skipped}
	case status == StatusUnauthorized:
		return Outcome{Kind: OutcomeUnauthorized, Status: status, Message: message}
	default:
		msg := message
		if msg == "" {
			msg = status
		}
		if msg == "" {
			msg = UnknownFailure
		}
		return Outcome{Kind: OutcomeFailure, Status: status, Message: msg}
	}
}

// ErrNotConfigured is returned when the endpoint URL or access key is
// missing. Surfaced before any network attempt.
var ErrNotConfigured = errors.New("ledger backend not configured")

// ResponseFormatError reports a backend response body that could not be
// parsed. RawBody carries the original text for diagnostics.
type ResponseFormatError struct {
	RawBody string
	Err     error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("invalid server response: %s", e.RawBody)
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }
