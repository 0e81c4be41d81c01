package validator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	signon "github.com/signon-tools/go-jwt-signer"
	"github.com/signon-tools/go-jwt-signer/certs"
	"github.com/signon-tools/go-jwt-signer/signature"
	"github.com/signon-tools/go-jwt-signer/token"
)

// Validator runs the verification protocol. It holds no per-call state and
// is safe for concurrent use.
type Validator struct {
	clock       func() time.Time
	clockSkew   time.Duration
	maxLifetime time.Duration
	issuers     []string
	subjectKeys []string
	cache       *signature.VerifierCache

	logger  signon.Logger
	metrics signon.Metrics
	tracer  signon.Tracer
}

// New sets up a Validator with the default clock skew and maximum lifetime.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		clock:       time.Now,
		clockSkew:   DefaultClockSkew,
		maxLifetime: DefaultMaxLifetime,
		logger:      signon.NopLogger{},
		metrics:     &signon.NoopMetrics{},
		tracer:      &signon.NoopTracer{},
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// Verify checks tokenString against the candidate certificates and the
// expected audience. Checks run in a fixed order and the first failure is
// returned: structure, signature, iat/exp presence, time window, audience,
// issuer. Every failure is a *ValidationError.
func (v *Validator) Verify(ctx context.Context, tokenString string, candidates certs.Set, audience string) (*Ticket, error) {
	_, span := v.tracer.StartSpan(ctx, "signon.verify")
	defer span.Finish()

	start := time.Now()
	ticket, err := v.verify(tokenString, candidates, audience)

	result := "ok"
	if err != nil {
		result = string(KindOf(err))
		v.logger.Warnf("token rejected: kind=%s: %v", result, err)
		span.SetError(err)
	} else {
		v.logger.Debugf("token verified: sub=%q", ticket.Subject)
	}

	tags := map[string]string{"result": result}
	v.metrics.IncCounter(signon.MetricVerifications, tags)
	v.metrics.ObserveHistogram(signon.MetricVerificationSeconds, time.Since(start).Seconds(), tags)
	span.SetTag("result", result)

	return ticket, err
}

func (v *Validator) verify(tokenString string, candidates certs.Set, audience string) (*Ticket, error) {
	compact, err := token.Decode(tokenString)
	if err != nil {
		var structureErr *token.StructureError
		if errors.As(err, &structureErr) {
			return nil, &ValidationError{
				Kind:    ErrorKind(structureErr.Kind),
				Message: structureErr.Message,
				Details: structureErr,
			}
		}
		return nil, err
	}

	if !v.signatureMatches(compact, candidates) {
		return nil, newValidationError(InvalidSignature, "Invalid token signature")
	}

	claims := compact.Payload

	iat, ok := token.Int64(claims[token.ClaimIssuedAt])
	if !ok {
		return nil, newValidationError(NoIssueTime, "No issue time in token")
	}
	exp, ok := token.Int64(claims[token.ClaimExpiry])
	if !ok {
		return nil, newValidationError(NoExpirationTime, "No expiration time in token")
	}

	now := v.clock().Unix()
	skew := int64(v.clockSkew / time.Second)

	if iat > now+skew {
		return nil, newValidationError(TokenUsedTooEarly,
			fmt.Sprintf("Token used too early, %d > %d", iat, now+skew))
	}
	if exp < now-skew {
		return nil, newValidationError(TokenUsedTooLate,
			fmt.Sprintf("Token used too late, %d < %d", exp, now-skew))
	}
	// exp >= now-skew here, so exp-maxLifetime cannot overflow.
	if maxLifetime := int64(v.maxLifetime / time.Second); exp-maxLifetime > iat {
		return nil, newValidationError(ExpirationTooFarInFuture,
			fmt.Sprintf("Expiration time too far in future: exp %d is more than %ds after iat %d", exp, maxLifetime, iat))
	}

	if aud, _ := token.String(claims[token.ClaimAudience]); aud != audience {
		return nil, newValidationError(WrongRecipient,
			fmt.Sprintf("Wrong recipient, %q != %q", aud, audience))
	}

	if len(v.issuers) > 0 {
		iss, _ := token.String(claims[token.ClaimIssuer])
		if !slices.Contains(v.issuers, iss) {
			return nil, newValidationError(InvalidIssuer,
				fmt.Sprintf("Invalid issuer, %q not in %q", iss, v.issuers))
		}
	}

	return &Ticket{
		Subject:  v.subject(claims),
		Envelope: compact.Header,
		Payload:  claims,
	}, nil
}

// signatureMatches tries the candidates in certs.Set.Candidates order,
// starting with the certificate named by the header's kid. A candidate
// matches only when its algorithm is the one the header declares.
func (v *Validator) signatureMatches(compact *token.Compact, candidates certs.Set) bool {
	sig, err := compact.Signature()
	if err != nil {
		v.logger.Debugf("undecodable token signature: %v", err)
		return false
	}

	alg, _ := token.String(compact.Header[token.HeaderAlgorithm])
	kid, _ := token.String(compact.Header[token.HeaderKeyID])
	input := compact.SigningInput()

	for _, id := range candidates.Candidates(kid) {
		verifier, err := v.verifier(candidates[id])
		if err != nil {
			v.logger.Debugf("skipping certificate %q: %v", id, err)
			continue
		}
		if verifier.Algorithm() != alg {
			continue
		}
		if verifier.Verify(input, sig) {
			return true
		}
	}
	return false
}

func (v *Validator) verifier(pemText string) (signature.Verifier, error) {
	if v.cache != nil {
		return v.cache.Verifier(pemText)
	}
	return signature.NewVerifierFromPEM(pemText)
}

func (v *Validator) subject(claims map[string]any) string {
	if sub, ok := token.String(claims[token.ClaimSubject]); ok && sub != "" {
		return sub
	}
	for _, key := range v.subjectKeys {
		if sub, ok := token.String(claims[key]); ok && sub != "" {
			return sub
		}
	}
	return ""
}
