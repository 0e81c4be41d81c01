// Package signature provides RS256 signing and verification over raw bytes.
//
// The token codec and the verification protocol depend only on the Signer
// and Verifier interfaces.
package signature

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// RS256 is the JWS name of RSASSA-PKCS1-v1_5 using SHA-256.
const RS256 = "RS256"

var (
	// ErrUnsupportedKey is returned when a key is not an RSA key.
	ErrUnsupportedKey = errors.New("unsupported key type")

	// ErrNoPEMBlock is returned when the input holds no PEM block.
	ErrNoPEMBlock = errors.New("no PEM block found")
)

// Signer produces a signature over arbitrary bytes.
type Signer interface {
	Sign(data []byte) ([]byte, error)
	Algorithm() string
}

// Verifier checks a signature over arbitrary bytes. A mismatch is a false
// result, never an error.
type Verifier interface {
	Verify(data, signature []byte) bool
	Algorithm() string
}

// RSASigner signs with RSASSA-PKCS1-v1_5 and SHA-256. The scheme is
// deterministic: the same key and data always give the same signature.
type RSASigner struct {
	key *rsa.PrivateKey
}

// NewRSASigner returns a Signer for key.
func NewRSASigner(key *rsa.PrivateKey) (*RSASigner, error) {
	if key == nil {
		return nil, errors.New("private key is required but was nil")
	}
	return &RSASigner{key: key}, nil
}

// NewSigner picks a Signer implementation for key.
func NewSigner(key crypto.Signer) (Signer, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return NewRSASigner(k)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}
}

func (s *RSASigner) Sign(data []byte) ([]byte, error) {
	hashed := sha256.Sum256(data)
	return rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, hashed[:])
}

func (s *RSASigner) Algorithm() string { return RS256 }

// Public returns the public half of the signing key.
func (s *RSASigner) Public() *rsa.PublicKey { return &s.key.PublicKey }

// RSAVerifier verifies RSASSA-PKCS1-v1_5 SHA-256 signatures.
type RSAVerifier struct {
	key *rsa.PublicKey
}

// NewRSAVerifier returns a Verifier for key.
func NewRSAVerifier(key *rsa.PublicKey) (*RSAVerifier, error) {
	if key == nil {
		return nil, errors.New("public key is required but was nil")
	}
	return &RSAVerifier{key: key}, nil
}

// NewVerifierFromPEM extracts the public key from the first PEM block of
// pemText, which must be a CERTIFICATE or a PUBLIC KEY. Certificate fields
// other than the key are ignored; there is no chain or validity check.
func NewVerifierFromPEM(pemText string) (Verifier, error) {
	pub, err := ParsePublicKeyPEM(pemText)
	if err != nil {
		return nil, err
	}
	return NewRSAVerifier(pub)
}

// ParsePublicKeyPEM returns the RSA public key carried by pemText.
func ParsePublicKeyPEM(pemText string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, ErrNoPEMBlock
	}

	var pub interface{}
	switch block.Type {
	case "CERTIFICATE":
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("could not parse certificate: %w", err)
		}
		pub = cert.PublicKey
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("could not parse public key: %w", err)
		}
		pub = key
	default:
		return nil, fmt.Errorf("unexpected PEM block type %q", block.Type)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, pub)
	}
	return rsaPub, nil
}

func (v *RSAVerifier) Verify(data, signature []byte) bool {
	hashed := sha256.Sum256(data)
	return rsa.VerifyPKCS1v15(v.key, crypto.SHA256, hashed[:], signature) == nil
}

func (v *RSAVerifier) Algorithm() string { return RS256 }

// Public returns the verification key.
func (v *RSAVerifier) Public() *rsa.PublicKey { return v.key }
