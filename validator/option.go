package validator

import (
	"errors"
	"time"

	signon "github.com/signon-tools/go-jwt-signer"
	"github.com/signon-tools/go-jwt-signer/signature"
)

// Defaults for the temporal checks.
const (
	DefaultClockSkew   = 300 * time.Second
	DefaultMaxLifetime = 86400 * time.Second
)

// Option is how options for the Validator are set up.
// Options return errors to enable validation during construction.
type Option func(*Validator) error

// WithClock sets the time source. Verify reads it once per call.
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		v.clock = clock
		return nil
	}
}

// WithClockSkew sets how far iat may lie in the future and exp in the past.
// Only whole seconds are significant.
func WithClockSkew(skew time.Duration) Option {
	return func(v *Validator) error {
		if skew < 0 {
			return errors.New("clock skew cannot be negative")
		}
		v.clockSkew = skew
		return nil
	}
}

// WithMaxLifetime bounds exp - iat.
func WithMaxLifetime(lifetime time.Duration) Option {
	return func(v *Validator) error {
		if lifetime <= 0 {
			return errors.New("max lifetime must be positive")
		}
		v.maxLifetime = lifetime
		return nil
	}
}

// WithIssuers restricts accepted iss claims to the given values. Without
// it the issuer is not checked.
func WithIssuers(issuers ...string) Option {
	return func(v *Validator) error {
		if len(issuers) == 0 {
			return errors.New("issuers cannot be empty")
		}
		for _, issuer := range issuers {
			if issuer == "" {
				return errors.New("issuer cannot be empty")
			}
		}
		v.issuers = append(v.issuers, issuers...)
		return nil
	}
}

// WithSubjectKeys sets claims consulted, in order, when the token has no
// sub claim.
func WithSubjectKeys(keys ...string) Option {
	return func(v *Validator) error {
		v.subjectKeys = append(v.subjectKeys, keys...)
		return nil
	}
}

// WithVerifierCache reuses parsed certificates across calls.
func WithVerifierCache(cache *signature.VerifierCache) Option {
	return func(v *Validator) error {
		if cache == nil {
			return errors.New("verifier cache cannot be nil")
		}
		v.cache = cache
		return nil
	}
}

// WithLogger sets the logger. Rejections are logged at warn level.
func WithLogger(logger signon.Logger) Option {
	return func(v *Validator) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		v.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics signon.Metrics) Option {
	return func(v *Validator) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		v.metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer signon.Tracer) Option {
	return func(v *Validator) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}
		v.tracer = tracer
		return nil
	}
}
