/*
Package signon issues and verifies RS256 signed tokens for service-account
sign-on.

The work is split across a few packages:

  - keys loads the RSA key and certificate out of a PKCS#12 bundle (or PEM)
  - signature signs and verifies raw bytes with RS256
  - token encodes and decodes the compact header.payload.signature form
  - validator verifies a token against trusted certificates and claims rules
  - assertion builds the bearer assertion a service account exchanges for
    an access token
  - certs parses certificate sets and converts them to and from JWKS

This package holds the pieces those packages share: the Logger, Metrics and
Tracer interfaces plus adapters for logrus, zap, zerolog, Prometheus and
OpenTelemetry. Every component defaults to the no-op implementation.

# Issuing an assertion

	km, err := keys.LoadPKCS12File("service-account.p12", "notasecret")
	if err != nil {
	    log.Fatal(err)
	}

	builder, err := assertion.New(
	    "123-abc@developer.gserviceaccount.com",
	    assertion.Scopes("https://www.googleapis.com/auth/prediction"),
	    km,
	    assertion.WithLogger(signon.NewZapLogger(zap.S())),
	)
	if err != nil {
	    log.Fatal(err)
	}

	signed, err := builder.Generate()

# Verifying a token

	set, err := certs.LoadFile("certs.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	v, err := validator.New(
	    validator.WithMetrics(signon.NewPrometheusMetrics(prometheus.DefaultRegisterer)),
	    validator.WithTracer(signon.NewOpenTelemetryTracer(otel.Tracer("signon"))),
	)
	if err != nil {
	    log.Fatal(err)
	}

	ticket, err := v.Verify(ctx, idToken, set, "my-client-id")
	if err != nil {
	    log.Printf("rejected (%s): %v", validator.KindOf(err), err)
	    return
	}

# Metrics

The Prometheus adapter registers these series on first use:

  - signon_verifications_total{result}
  - signon_verification_seconds{result}
  - signon_assertions_total{result}

result is "ok", the validation failure kind, or "error" for a failed assertion.
*/
package signon
