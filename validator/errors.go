package validator

import (
	"errors"

	"github.com/signon-tools/go-jwt-signer/token"
)

// ErrTokenInvalid is matched by every *ValidationError.
var ErrTokenInvalid = errors.New("token invalid")

// ErrorKind is the machine-readable reason a token was rejected.
type ErrorKind string

// Structural kinds mirror the token package.
const (
	WrongSegmentCount   = ErrorKind(token.WrongSegmentCount)
	UnparseableEnvelope = ErrorKind(token.UnparseableEnvelope)
	UnparseablePayload  = ErrorKind(token.UnparseablePayload)
)

const (
	InvalidSignature         ErrorKind = "invalid_signature"
	NoIssueTime              ErrorKind = "no_issue_time"
	NoExpirationTime         ErrorKind = "no_expiration_time"
	TokenUsedTooEarly        ErrorKind = "token_used_too_early"
	TokenUsedTooLate         ErrorKind = "token_used_too_late"
	ExpirationTooFarInFuture ErrorKind = "expiration_too_far_in_future"
	WrongRecipient           ErrorKind = "wrong_recipient"
	InvalidIssuer            ErrorKind = "invalid_issuer"
)

// ValidationError reports why a token was rejected. Rejections are final:
// none of them is transient and none should be retried.
type ValidationError struct {
	// Kind is the machine-readable rejection reason.
	Kind ErrorKind

	// Message is a human-readable message. Operators grep for its prefix,
	// so the wording of each kind is stable.
	Message string

	// Details contains the underlying error, if any.
	Details error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Details
}

// Is allows the error to be compared with ErrTokenInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrTokenInvalid
}

// KindOf returns the kind of a *ValidationError anywhere in err's chain,
// or "" when there is none.
func KindOf(err error) ErrorKind {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Kind
	}
	return ""
}

func newValidationError(kind ErrorKind, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}
