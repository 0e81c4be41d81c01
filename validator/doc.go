/*
Package validator verifies compact RS256 tokens against a caller-supplied set
of trusted certificates and turns them into Tickets.

# Quick Start

	v, err := validator.New(
	    validator.WithIssuers("accounts.google.com", "https://accounts.google.com"),
	)
	if err != nil {
	    log.Fatal(err)
	}

	ticket, err := v.Verify(ctx, idToken, certSet, "my-client-id")
	if err != nil {
	    // reject the request
	}
	userID, err := ticket.UserID()

# Checks

Checks run in this order, and the first failure ends verification:

  - structure: exactly three segments, header and payload are JSON objects
  - signature: some candidate certificate verifies the RS256 signature
    over "header.payload"; the certificate named by the header's kid is
    tried first, then the rest by ascending key id
  - presence: iat, then exp, must be integer seconds
  - time: iat <= now+skew, exp >= now-skew, exp-iat <= max lifetime
  - audience: aud must equal the expected audience
  - issuer: iss must be in the allow-list, when one is configured

The clock skew defaults to 300 seconds and the maximum lifetime to 86400
seconds. Both boundaries are inclusive.

# Errors

Every rejection is a *ValidationError. Use KindOf or errors.As to read its
Kind; errors.Is(err, ErrTokenInvalid) matches all of them. Structural
failures also unwrap to *token.StructureError.

	switch validator.KindOf(err) {
	case validator.TokenUsedTooLate:
	    // ask the client to refresh
	case validator.InvalidSignature:
	    // maybe the certificate set is stale
	}

# Observability

WithLogger, WithMetrics and WithTracer take the adapters from the root
package. Every call increments signon_verifications_total and observes
signon_verification_seconds, labelled with result=ok or the error kind.
*/
package validator
