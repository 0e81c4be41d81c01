// Package token encodes and decodes compact signed tokens of the form
// base64url(header) "." base64url(payload) "." base64url(signature),
// without padding.
package token

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/signon-tools/go-jwt-signer/signature"
)

// Header names.
const (
	HeaderType      = "typ"
	HeaderAlgorithm = "alg"
	HeaderKeyID     = "kid"
)

const separator = "."

var encoding = base64.RawURLEncoding

// Compact is a decoded, not yet verified, token.
type Compact struct {
	HeaderSegment    string
	PayloadSegment   string
	SignatureSegment string

	// Header and Payload are the decoded JSON objects. Numbers are kept as
	// json.Number so integer claims round-trip exactly.
	Header  map[string]any
	Payload map[string]any
}

// Encode serialises header and payload, signs them with signer and returns
// the compact token. Keys are written in sorted order, so equal maps give
// equal tokens.
func Encode(header, payload map[string]any, signer signature.Signer) (string, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("could not encode token header: %w", err)
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("could not encode token payload: %w", err)
	}

	signingInput := encoding.EncodeToString(headerJSON) + separator + encoding.EncodeToString(payloadJSON)

	sig, err := signer.Sign([]byte(signingInput))
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}

	return signingInput + separator + encoding.EncodeToString(sig), nil
}

// Decode splits token into its three segments and parses the header and
// payload. The signature segment is not decoded here; see Signature.
func Decode(token string) (*Compact, error) {
	segments := strings.Split(token, separator)
	if len(segments) != 3 {
		return nil, &StructureError{
			Kind:    WrongSegmentCount,
			Message: "Wrong number of segments in token: " + token,
		}
	}

	header, err := decodeObject(segments[0])
	if err != nil {
		return nil, &StructureError{
			Kind:    UnparseableEnvelope,
			Message: "Can't parse token envelope: " + segments[0],
			Details: err,
		}
	}

	payload, err := decodeObject(segments[1])
	if err != nil {
		return nil, &StructureError{
			Kind:    UnparseablePayload,
			Message: "Can't parse token payload: " + segments[1],
			Details: err,
		}
	}

	return &Compact{
		HeaderSegment:    segments[0],
		PayloadSegment:   segments[1],
		SignatureSegment: segments[2],
		Header:           header,
		Payload:          payload,
	}, nil
}

// SigningInput returns the bytes the signature covers.
func (c *Compact) SigningInput() []byte {
	return []byte(c.HeaderSegment + separator + c.PayloadSegment)
}

// Signature decodes the signature segment.
func (c *Compact) Signature() ([]byte, error) {
	return encoding.DecodeString(c.SignatureSegment)
}

// String reassembles the compact form.
func (c *Compact) String() string {
	return c.HeaderSegment + separator + c.PayloadSegment + separator + c.SignatureSegment
}

func decodeObject(segment string) (map[string]any, error) {
	raw, err := encoding.DecodeString(segment)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, errors.New("segment is not valid JSON")
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var object map[string]any
	if err := decoder.Decode(&object); err != nil {
		return nil, err
	}
	if object == nil {
		return nil, errors.New("segment is not a JSON object")
	}
	return object, nil
}
