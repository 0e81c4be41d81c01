// Package testkeys generates RSA keys and self-signed certificates for tests.
// Key generation is slow, so each named key is generated once per test binary.
package testkeys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Pair is an RSA key with a self-signed certificate for its public half.
type Pair struct {
	Key     *rsa.PrivateKey
	Cert    *x509.Certificate
	CertPEM string
}

var (
	mu    sync.Mutex
	pairs = map[string]*Pair{}
)

// Get returns the key pair registered under name, generating it on first use.
func Get(t testing.TB, name string) *Pair {
	t.Helper()

	mu.Lock()
	defer mu.Unlock()

	if p, ok := pairs[name]; ok {
		return p
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: name},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	p := &Pair{
		Key:     key,
		Cert:    cert,
		CertPEM: string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})),
	}
	pairs[name] = p
	return p
}

// KeyPEM returns the private key as a PKCS#8 PEM block.
func (p *Pair) KeyPEM(t testing.TB) []byte {
	t.Helper()

	der, err := x509.MarshalPKCS8PrivateKey(p.Key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}
