package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"software.sslmate.com/src/go-pkcs12"

	"github.com/signon-tools/go-jwt-signer/assertion"
	"github.com/signon-tools/go-jwt-signer/internal/testkeys"
)

const issuer = "federated-signon@system.gserviceaccount.com"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--env-file", ""}, args...))

	err := root.Execute()
	return stdout.String(), err
}

func writeFixtures(t *testing.T, passphrase string) (bundlePath, certsPath string) {
	t.Helper()

	pair := testkeys.Get(t, "cli")
	dir := t.TempDir()

	bundle, err := pkcs12.Modern.Encode(pair.Key, pair.Cert, nil, passphrase)
	require.NoError(t, err)
	bundlePath = filepath.Join(dir, "key.p12")
	require.NoError(t, os.WriteFile(bundlePath, bundle, 0o600))

	doc, err := yaml.Marshal(map[string]string{"cli-key": pair.CertPEM})
	require.NoError(t, err)
	certsPath = filepath.Join(dir, "certs.yaml")
	require.NoError(t, os.WriteFile(certsPath, doc, 0o600))

	return bundlePath, certsPath
}

func TestSignAndVerify(t *testing.T) {
	t.Setenv("SIGNON_PASSPHRASE", "s3cret")
	bundlePath, certsPath := writeFixtures(t, "s3cret")

	out, err := run(t, "sign",
		"--bundle", bundlePath,
		"--issuer", issuer,
		"--scope", "https://www.googleapis.com/auth/userinfo.email",
		"--scope", "https://www.googleapis.com/auth/prediction",
		"--kid", "cli-key",
	)
	require.NoError(t, err)

	var signed signOutput
	require.NoError(t, json.Unmarshal([]byte(out), &signed))
	assert.Equal(t, assertion.GrantType, signed.GrantType)
	assert.Len(t, signed.CacheKey, 64)
	require.NotEmpty(t, signed.Assertion)

	t.Run("verifies against the certificate set", func(t *testing.T) {
		out, err := run(t, "verify", "--certs", certsPath, "--audience", assertion.DefaultAudience, signed.Assertion)
		require.NoError(t, err)

		var ticket ticketOutput
		require.NoError(t, json.Unmarshal([]byte(out), &ticket))
		assert.Equal(t, "cli-key", ticket.Envelope["kid"])
		assert.Equal(t, issuer, ticket.Payload["iss"])
		assert.Equal(t,
			"https://www.googleapis.com/auth/userinfo.email https://www.googleapis.com/auth/prediction",
			ticket.Payload["scope"],
		)
	})

	t.Run("issuer allow-list", func(t *testing.T) {
		_, err := run(t, "verify", "--certs", certsPath, "--audience", assertion.DefaultAudience,
			"--issuer", "someone-else@example.com", signed.Assertion)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid_issuer")
	})

	t.Run("wrong audience fails with the kind", func(t *testing.T) {
		_, err := run(t, "verify", "--certs", certsPath, "--audience", "client_id", signed.Assertion)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wrong_recipient")
	})

	t.Run("verifies against an exported JWKS", func(t *testing.T) {
		out, err := run(t, "jwks", "--certs", certsPath)
		require.NoError(t, err)

		jwksPath := filepath.Join(t.TempDir(), "jwks.json")
		require.NoError(t, os.WriteFile(jwksPath, []byte(out), 0o600))

		_, err = run(t, "verify", "--jwks", jwksPath, "--audience", assertion.DefaultAudience, signed.Assertion)
		require.NoError(t, err)
	})
}

func TestSign_WrongPassphrase(t *testing.T) {
	bundlePath, _ := writeFixtures(t, "s3cret")
	t.Setenv("SIGNON_PASSPHRASE", "wrong")

	_, err := run(t, "sign", "--bundle", bundlePath, "--issuer", issuer, "--scope", "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mac verify failure")
}

func TestSign_DefaultPassphrase(t *testing.T) {
	bundlePath, _ := writeFixtures(t, DefaultPassphrase)

	_, err := run(t, "sign", "--bundle", bundlePath, "--issuer", issuer, "--scope", "s")
	require.NoError(t, err)
}

func TestSign_RequiresKey(t *testing.T) {
	_, err := run(t, "sign", "--issuer", issuer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--bundle or --pem")
}

func TestVerify_MaxLifetimeFromEnvironment(t *testing.T) {
	t.Setenv("SIGNON_PASSPHRASE", "s3cret")
	bundlePath, certsPath := writeFixtures(t, "s3cret")

	out, err := run(t, "sign", "--bundle", bundlePath, "--issuer", issuer, "--scope", "s", "--lifetime", "2h")
	require.NoError(t, err)

	var signed signOutput
	require.NoError(t, json.Unmarshal([]byte(out), &signed))

	t.Setenv("SIGNON_MAX_LIFETIME", "1h")
	_, err = run(t, "verify", "--certs", certsPath, "--audience", assertion.DefaultAudience, signed.Assertion)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expiration_too_far_in_future")

	_, err = run(t, "verify", "--max-lifetime", "3h", "--certs", certsPath, "--audience", assertion.DefaultAudience, signed.Assertion)
	require.NoError(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("loud", &bytes.Buffer{})
	assert.Error(t, err)

	var buf bytes.Buffer
	logger, err := newLogger("debug", &buf)
	require.NoError(t, err)
	logger.Debugf("hello %s", "there")
	assert.Contains(t, buf.String(), "hello there")
}
