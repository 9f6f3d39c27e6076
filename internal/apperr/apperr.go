// Package apperr defines the error taxonomy shared by all summarization
// components. Every component-level failure carries a Kind so the HTTP
// layer can map it to a status code without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a failure class.
type Kind string

const (
	KindInvalidInput            Kind = "INVALID_INPUT"
	KindUnsupportedFormat       Kind = "UNSUPPORTED_FORMAT"
	KindExtractionFailed        Kind = "EXTRACTION_FAILED"
	KindExtractionEmpty         Kind = "EXTRACTION_EMPTY"
	KindFetchFailed             Kind = "FETCH_FAILED"
	KindInvalidCredentialFormat Kind = "INVALID_CREDENTIAL_FORMAT"
	KindIncompleteServiceConfig Kind = "INCOMPLETE_SERVICE_CONFIG"
	KindNoCredentialAvailable   Kind = "NO_CREDENTIAL_AVAILABLE"
	KindSummaryFailed           Kind = "SUMMARY_GENERATION_FAILED"
	KindFollowUpFailed          Kind = "FOLLOWUP_GENERATION_FAILED"
	KindHistoryWriteFailed      Kind = "HISTORY_WRITE_FAILED"
	KindSearchFailed            Kind = "SEARCH_FAILED"
	KindInternal                Kind = "INTERNAL"
)

// Error is a kinded error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an Error with no cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind from err, or KindInternal when err carries
// no *Error in its chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
