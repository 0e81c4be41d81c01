package token

import "errors"

// ErrMalformed is matched by every *StructureError.
var ErrMalformed = errors.New("malformed token")

// StructureKind classifies a StructureError.
type StructureKind string

const (
	WrongSegmentCount   StructureKind = "wrong_segment_count"
	UnparseableEnvelope StructureKind = "unparseable_envelope"
	UnparseablePayload  StructureKind = "unparseable_payload"
)

// StructureError reports a token that does not have the compact form.
type StructureError struct {
	Kind    StructureKind
	Message string
	Details error
}

// Error implements the error interface.
func (e *StructureError) Error() string {
	return e.Message
}

// Unwrap returns the underlying decoding error, if any.
func (e *StructureError) Unwrap() error {
	return e.Details
}

// Is allows the error to be compared with ErrMalformed.
func (e *StructureError) Is(target error) bool {
	return target == ErrMalformed
}
