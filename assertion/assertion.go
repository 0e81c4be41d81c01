// Package assertion builds self-issued bearer assertions: tokens a service
// account signs with its own key and exchanges for an access token.
package assertion

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	signon "github.com/signon-tools/go-jwt-signer"
	"github.com/signon-tools/go-jwt-signer/keys"
	"github.com/signon-tools/go-jwt-signer/signature"
	"github.com/signon-tools/go-jwt-signer/token"
)

const (
	// DefaultAudience is the token-exchange endpoint assertions are
	// addressed to unless WithAudience says otherwise.
	DefaultAudience = "https://accounts.google.com/o/oauth2/token"

	// DefaultLifetime is the default exp - iat.
	DefaultLifetime = time.Hour

	// GrantType is the grant_type callers send alongside the assertion.
	GrantType = "http://oauth.net/grant_type/jwt/1.0/bearer"
)

// Builder produces signed assertions for one issuer and scope. It is
// immutable after New and safe for concurrent use.
type Builder struct {
	issuer    string
	scope     string
	signer    signature.Signer
	audience  string
	lifetime  time.Duration
	subject   string
	principal string
	keyID     string
	clock     func() time.Time

	logger  signon.Logger
	metrics signon.Metrics
}

// New returns a Builder that signs with km's private key.
func New(issuer, scope string, km *keys.KeyMaterial, opts ...Option) (*Builder, error) {
	if issuer == "" {
		return nil, errors.New("issuer is required but was empty")
	}
	if km == nil || km.PrivateKey == nil {
		return nil, errors.New("key material is required but was nil")
	}

	signer, err := signature.NewSigner(km.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("could not create signer: %w", err)
	}

	b := &Builder{
		issuer:   issuer,
		scope:    scope,
		signer:   signer,
		audience: DefaultAudience,
		lifetime: DefaultLifetime,
		clock:    time.Now,
		logger:   signon.NopLogger{},
		metrics:  &signon.NoopMetrics{},
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Scopes joins scopes into the space-delimited form of the scope claim.
func Scopes(scopes ...string) string {
	return strings.Join(scopes, " ")
}

// Claims returns a fresh claim set stamped with the current time.
func (b *Builder) Claims() map[string]any {
	now := b.clock().Unix()

	claims := map[string]any{
		token.ClaimIssuer:   b.issuer,
		token.ClaimScope:    b.scope,
		token.ClaimAudience: b.audience,
		token.ClaimIssuedAt: now,
		token.ClaimExpiry:   now + int64(b.lifetime/time.Second),
	}
	switch {
	case b.subject != "":
		claims[token.ClaimSubject] = b.subject
	case b.principal != "":
		claims[token.ClaimPrincipal] = b.principal
	}
	return claims
}

// Header returns the token header.
func (b *Builder) Header() map[string]any {
	header := map[string]any{
		token.HeaderType:      "JWT",
		token.HeaderAlgorithm: b.signer.Algorithm(),
	}
	if b.keyID != "" {
		header[token.HeaderKeyID] = b.keyID
	}
	return header
}

// Generate signs a new assertion.
func (b *Builder) Generate() (string, error) {
	assertion, err := token.Encode(b.Header(), b.Claims(), b.signer)
	if err != nil {
		b.logger.Errorf("could not generate assertion for %s: %v", b.issuer, err)
		b.metrics.IncCounter(signon.MetricAssertions, map[string]string{"result": "error"})
		return "", err
	}

	b.logger.Debugf("generated assertion for %s (scope %q)", b.issuer, b.scope)
	b.metrics.IncCounter(signon.MetricAssertions, map[string]string{"result": "ok"})
	return assertion, nil
}

// CacheKey identifies the access token an assertion from this Builder
// would be exchanged for. It depends on the issuer, the scope and the
// delegation claim Claims emits, and nothing else: builders that differ
// only in key, audience or lifetime share a key.
func (b *Builder) CacheKey() string {
	principal := b.principal
	if b.subject != "" {
		principal = ""
	}

	var buf []byte
	for _, field := range []string{b.issuer, b.scope, b.subject, principal} {
		buf = binary.AppendUvarint(buf, uint64(len(field)))
		buf = append(buf, field...)
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
