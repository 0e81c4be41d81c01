package validator

import "errors"

// ErrNoUserID is returned by Ticket.UserID when the token named no subject.
var ErrNoUserID = errors.New("no user id in token")

// Attribute bundle keys, as returned by Ticket.Attributes.
const (
	AttributeEnvelope = "envelope"
	AttributePayload  = "payload"
)

// Ticket is the result of a successful verification. Only Verify creates
// tickets; treat the maps as read-only.
type Ticket struct {
	// Subject is the token's sub claim, or the first configured fallback
	// claim that holds a string.
	Subject string

	Envelope map[string]any
	Payload  map[string]any
}

// UserID returns the subject, or ErrNoUserID when the token had none.
func (t *Ticket) UserID() (string, error) {
	if t.Subject == "" {
		return "", ErrNoUserID
	}
	return t.Subject, nil
}

// Attributes returns the decoded header and claims keyed by "envelope" and
// "payload".
func (t *Ticket) Attributes() map[string]map[string]any {
	return map[string]map[string]any{
		AttributeEnvelope: t.Envelope,
		AttributePayload:  t.Payload,
	}
}
