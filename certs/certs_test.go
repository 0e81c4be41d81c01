package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signon-tools/go-jwt-signer/internal/testkeys"
	"github.com/signon-tools/go-jwt-signer/signature"
)

func TestSet_Candidates(t *testing.T) {
	set := Set{"c": "pem-c", "a": "pem-a", "b": "pem-b"}

	testCases := []struct {
		name      string
		preferred string
		expected  []string
	}{
		{name: "no preference", preferred: "", expected: []string{"a", "b", "c"}},
		{name: "known preference goes first", preferred: "b", expected: []string{"b", "a", "c"}},
		{name: "unknown preference is ignored", preferred: "z", expected: []string{"a", "b", "c"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, set.Candidates(testCase.preferred))
		})
	}

	assert.Empty(t, Set{}.Candidates("a"))
}

func TestParse(t *testing.T) {
	pair := testkeys.Get(t, "certs")

	t.Run("JSON document", func(t *testing.T) {
		doc, err := json.Marshal(map[string]string{"kid-1": pair.CertPEM})
		require.NoError(t, err)

		set, err := Parse(doc)
		require.NoError(t, err)
		assert.Equal(t, Set{"kid-1": pair.CertPEM}, set)
	})

	t.Run("YAML document", func(t *testing.T) {
		doc := "kid-1: |\n  " + strings.ReplaceAll(strings.TrimSpace(pair.CertPEM), "\n", "\n  ") + "\n"

		set, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, pair.CertPEM, set["kid-1"])
	})

	t.Run("empty document", func(t *testing.T) {
		set, err := Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, set)
	})

	t.Run("empty certificate", func(t *testing.T) {
		_, err := Parse([]byte(`{"kid-1": ""}`))
		assert.EqualError(t, err, `certificate "kid-1" is empty`)
	})

	t.Run("not a mapping", func(t *testing.T) {
		_, err := Parse([]byte(`[1, 2, 3]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not parse certificate set")
	})
}

func TestLoadFile(t *testing.T) {
	pair := testkeys.Get(t, "certs")
	dir := t.TempDir()

	path := filepath.Join(dir, "certs.json")
	doc, err := json.Marshal(map[string]string{"kid-1": pair.CertPEM})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, doc, 0o600))

	set, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, set, 1)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestJWKSRoundTrip(t *testing.T) {
	first := testkeys.Get(t, "certs")
	second := testkeys.Get(t, "certs-other")

	set := Set{"kid-1": first.CertPEM, "kid-2": second.CertPEM}

	keySet, err := set.JWKS()
	require.NoError(t, err)
	assert.Equal(t, 2, keySet.Len())

	key, ok := keySet.LookupKeyID("kid-2")
	require.True(t, ok)
	usage, ok := key.KeyUsage()
	require.True(t, ok)
	assert.Equal(t, "sig", usage)

	doc, err := json.Marshal(keySet)
	require.NoError(t, err)

	parsed, err := FromJWKS(doc)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	for id, pair := range map[string]*testkeys.Pair{"kid-1": first, "kid-2": second} {
		pub, err := signature.ParsePublicKeyPEM(parsed[id])
		require.NoError(t, err)
		assert.True(t, pair.Key.PublicKey.Equal(pub), id)
	}
}

func TestJWKSRejectsBrokenCertificates(t *testing.T) {
	_, err := Set{"broken": "not a certificate"}.JWKS()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `certificate "broken"`)
}

func TestFromJWKS(t *testing.T) {
	t.Run("keys without kid are named by position", func(t *testing.T) {
		key, err := jwk.Import(&testkeys.Get(t, "certs").Key.PublicKey)
		require.NoError(t, err)

		keySet := jwk.NewSet()
		require.NoError(t, keySet.AddKey(key))
		doc, err := json.Marshal(keySet)
		require.NoError(t, err)

		set, err := FromJWKS(doc)
		require.NoError(t, err)
		assert.Contains(t, set, "key-0")
	})

	t.Run("non-RSA keys are skipped", func(t *testing.T) {
		ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		key, err := jwk.Import(&ecKey.PublicKey)
		require.NoError(t, err)

		keySet := jwk.NewSet()
		require.NoError(t, keySet.AddKey(key))
		doc, err := json.Marshal(keySet)
		require.NoError(t, err)

		_, err = FromJWKS(doc)
		assert.EqualError(t, err, "JWKS contains no RSA keys")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := FromJWKS([]byte("garbage"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not parse JWKS")
	})
}
