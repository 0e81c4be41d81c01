package keys

import "errors"

// Sentinel errors for key bundle loading. A *LoadError matches exactly one
// of them via errors.Is.
var (
	// ErrWrongPassphrase is returned when the bundle's integrity check fails
	// under the supplied passphrase.
	ErrWrongPassphrase = errors.New("wrong passphrase")

	// ErrCorruptBundle is returned when the blob is not a well-formed bundle
	// or holds a key this module cannot sign with.
	ErrCorruptBundle = errors.New("corrupt key bundle")
)

// ErrorKind classifies a LoadError.
type ErrorKind string

const (
	WrongPassphrase ErrorKind = "wrong_passphrase"
	CorruptBundle   ErrorKind = "corrupt_bundle"
)

// LoadError is returned by every loader in this package.
type LoadError struct {
	// Kind is the machine-readable failure class.
	Kind ErrorKind

	// Message is the human-readable message.
	Message string

	// Details contains the underlying error, if any.
	Details error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *LoadError) Unwrap() error {
	return e.Details
}

// Is matches the sentinel for the error's kind.
func (e *LoadError) Is(target error) bool {
	switch e.Kind {
	case WrongPassphrase:
		return target == ErrWrongPassphrase
	case CorruptBundle:
		return target == ErrCorruptBundle
	}
	return false
}

func wrongPassphrase(details error) *LoadError {
	return &LoadError{Kind: WrongPassphrase, Message: "mac verify failure", Details: details}
}

func corruptBundle(details error) *LoadError {
	return &LoadError{Kind: CorruptBundle, Message: "Unable to parse the key bundle", Details: details}
}
