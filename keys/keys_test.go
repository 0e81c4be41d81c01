package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"software.sslmate.com/src/go-pkcs12"

	"github.com/signon-tools/go-jwt-signer/internal/testkeys"
)

const passphrase = "notasecret"

func encodeBundle(t *testing.T, key interface{}, cert *x509.Certificate) []byte {
	t.Helper()

	bundle, err := pkcs12.Modern.Encode(key, cert, nil, passphrase)
	require.NoError(t, err)
	return bundle
}

func TestLoadPKCS12(t *testing.T) {
	pair := testkeys.Get(t, "keys")
	bundle := encodeBundle(t, pair.Key, pair.Cert)

	t.Run("it loads the key and certificate with the right passphrase", func(t *testing.T) {
		km, err := LoadPKCS12(bundle, passphrase)
		require.NoError(t, err)

		assert.True(t, pair.Key.Equal(km.PrivateKey))
		require.NotNil(t, km.Certificate)
		assert.True(t, pair.Cert.Equal(km.Certificate))
	})

	t.Run("it reports a wrong passphrase", func(t *testing.T) {
		km, err := LoadPKCS12(bundle, "not the passphrase")
		assert.Nil(t, km)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, WrongPassphrase, loadErr.Kind)
		assert.Contains(t, err.Error(), "mac verify failure")
		assert.ErrorIs(t, err, ErrWrongPassphrase)
		assert.NotErrorIs(t, err, ErrCorruptBundle)
		assert.ErrorIs(t, err, pkcs12.ErrIncorrectPassword)
	})

	t.Run("it reports trailing garbage as a corrupt bundle", func(t *testing.T) {
		tampered := append(append([]byte{}, bundle...), []byte("garbage")...)

		km, err := LoadPKCS12(tampered, passphrase)
		assert.Nil(t, km)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, CorruptBundle, loadErr.Kind)
		assert.Contains(t, err.Error(), "Unable to parse")
		assert.ErrorIs(t, err, ErrCorruptBundle)
	})

	t.Run("it reports arbitrary bytes as a corrupt bundle", func(t *testing.T) {
		_, err := LoadPKCS12([]byte("this is not a pkcs12 bundle"), passphrase)
		assert.ErrorIs(t, err, ErrCorruptBundle)
	})

	t.Run("it rejects non-RSA keys", func(t *testing.T) {
		ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)

		template := &x509.Certificate{
			SerialNumber: big.NewInt(1),
			Subject:      pkix.Name{CommonName: "ec"},
			NotBefore:    time.Now().Add(-time.Hour),
			NotAfter:     time.Now().Add(time.Hour),
		}
		der, err := x509.CreateCertificate(rand.Reader, template, template, &ecKey.PublicKey, ecKey)
		require.NoError(t, err)
		cert, err := x509.ParseCertificate(der)
		require.NoError(t, err)

		_, err = LoadPKCS12(encodeBundle(t, ecKey, cert), passphrase)
		assert.ErrorIs(t, err, ErrCorruptBundle)
		assert.Contains(t, err.Error(), "unsupported private key type")
	})
}

func TestLoadPKCS12File(t *testing.T) {
	pair := testkeys.Get(t, "keys")
	dir := t.TempDir()

	t.Run("it loads a bundle from disk", func(t *testing.T) {
		path := filepath.Join(dir, "key.p12")
		require.NoError(t, os.WriteFile(path, encodeBundle(t, pair.Key, pair.Cert), 0o600))

		km, err := LoadPKCS12File(path, passphrase)
		require.NoError(t, err)
		assert.True(t, pair.Key.Equal(km.PrivateKey))
	})

	t.Run("it refuses oversized files", func(t *testing.T) {
		path := filepath.Join(dir, "huge.p12")
		require.NoError(t, os.WriteFile(path, make([]byte, MaxBundleSize+1), 0o600))

		_, err := LoadPKCS12File(path, passphrase)
		assert.ErrorIs(t, err, ErrCorruptBundle)
	})

	t.Run("it surfaces a missing file", func(t *testing.T) {
		_, err := LoadPKCS12File(filepath.Join(dir, "missing.p12"), passphrase)
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadPEM(t *testing.T) {
	pair := testkeys.Get(t, "keys")

	testCases := []struct {
		name     string
		input    []byte
		wantCert bool
		wantErr  bool
	}{
		{
			name:  "PKCS#8 key without certificate",
			input: pair.KeyPEM(t),
		},
		{
			name: "PKCS#1 key with certificate",
			input: append(
				pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(pair.Key)}),
				[]byte(pair.CertPEM)...,
			),
			wantCert: true,
		},
		{
			name:     "certificate before key",
			input:    append([]byte(pair.CertPEM), pair.KeyPEM(t)...),
			wantCert: true,
		},
		{
			name:    "certificate only",
			input:   []byte(pair.CertPEM),
			wantErr: true,
		},
		{
			name:    "broken key block",
			input:   pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("nope")}),
			wantErr: true,
		},
		{
			name:    "empty input",
			wantErr: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			km, err := LoadPEM(testCase.input)
			if testCase.wantErr {
				assert.Nil(t, km)
				assert.ErrorIs(t, err, ErrCorruptBundle)
				return
			}

			require.NoError(t, err)
			assert.True(t, pair.Key.Equal(km.PrivateKey))
			if testCase.wantCert {
				assert.NotNil(t, km.Certificate)
			} else {
				assert.Nil(t, km.Certificate)
			}
		})
	}
}
