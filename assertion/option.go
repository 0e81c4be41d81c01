package assertion

import (
	"errors"
	"time"

	signon "github.com/signon-tools/go-jwt-signer"
)

// Option is how options for the Builder are set up.
type Option func(*Builder) error

// WithAudience overrides DefaultAudience.
func WithAudience(audience string) Option {
	return func(b *Builder) error {
		if audience == "" {
			return errors.New("audience cannot be empty")
		}
		b.audience = audience
		return nil
	}
}

// WithLifetime sets exp - iat. Only whole seconds are significant.
func WithLifetime(lifetime time.Duration) Option {
	return func(b *Builder) error {
		if lifetime < time.Second {
			return errors.New("lifetime must be at least one second")
		}
		b.lifetime = lifetime
		return nil
	}
}

// WithSubject requests a token on behalf of another account (domain-wide
// delegation). It is sent as the sub claim and is part of the cache key.
func WithSubject(subject string) Option {
	return func(b *Builder) error {
		b.subject = subject
		return nil
	}
}

// WithPrincipal sets the legacy prn delegation claim. It is ignored when a
// subject is also set.
func WithPrincipal(principal string) Option {
	return func(b *Builder) error {
		b.principal = principal
		return nil
	}
}

// WithKeyID adds a kid header so verifiers can pick the certificate
// directly.
func WithKeyID(keyID string) Option {
	return func(b *Builder) error {
		b.keyID = keyID
		return nil
	}
}

// WithClock sets the time source for iat and exp.
func WithClock(clock func() time.Time) Option {
	return func(b *Builder) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		b.clock = clock
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger signon.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		b.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics signon.Metrics) Option {
	return func(b *Builder) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		b.metrics = metrics
		return nil
	}
}
