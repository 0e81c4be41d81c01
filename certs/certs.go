// Package certs holds the caller-supplied pool of trusted signing
// certificates a token may be verified against.
package certs

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"gopkg.in/yaml.v3"

	"github.com/signon-tools/go-jwt-signer/signature"
)

// MaxFileSize bounds how much LoadFile reads.
const MaxFileSize = 1 << 20

// Set maps a key identifier to a PEM-encoded certificate (or public key).
// It stands for a rotating set of trusted signing keys, such as the ones an
// identity provider publishes by key id.
type Set map[string]string

// Candidates returns the key ids to try, in order: preferred first when it
// is in the set, then every other id in ascending order.
func (s Set) Candidates(preferred string) []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		if id != preferred {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if _, ok := s[preferred]; ok && preferred != "" {
		ids = append([]string{preferred}, ids...)
	}
	return ids
}

// Parse reads a key-id → PEM mapping from YAML or JSON.
func Parse(data []byte) (Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("could not parse certificate set: %w", err)
	}
	for id, pemText := range set {
		if pemText == "" {
			return nil, fmt.Errorf("certificate %q is empty", id)
		}
	}
	if set == nil {
		set = Set{}
	}
	return set, nil
}

// LoadFile reads at most MaxFileSize bytes from path and passes them to
// Parse.
func LoadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open certificate set: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read certificate set: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("certificate set exceeds %d bytes", MaxFileSize)
	}
	return Parse(data)
}

// JWKS converts the set into a JSON Web Key Set. Every entry becomes an RSA
// key with its kid, alg=RS256 and use=sig.
func (s Set) JWKS() (jwk.Set, error) {
	set := jwk.NewSet()
	for _, id := range s.Candidates("") {
		pub, err := signature.ParsePublicKeyPEM(s[id])
		if err != nil {
			return nil, fmt.Errorf("certificate %q: %w", id, err)
		}

		key, err := jwk.Import(pub)
		if err != nil {
			return nil, fmt.Errorf("certificate %q: %w", id, err)
		}
		if err := key.Set(jwk.KeyIDKey, id); err != nil {
			return nil, err
		}
		if err := key.Set(jwk.AlgorithmKey, jwa.RS256()); err != nil {
			return nil, err
		}
		if err := key.Set(jwk.KeyUsageKey, "sig"); err != nil {
			return nil, err
		}
		if err := set.AddKey(key); err != nil {
			return nil, fmt.Errorf("certificate %q: %w", id, err)
		}
	}
	return set, nil
}

// FromJWKS builds a Set from a JSON Web Key Set document. RSA keys are
// stored as PUBLIC KEY PEM blocks; other key types are skipped. Keys
// without a kid are named by their position in the document.
func FromJWKS(data []byte) (Set, error) {
	keySet, err := jwk.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse JWKS: %w", err)
	}

	set := Set{}
	for i := 0; i < keySet.Len(); i++ {
		key, ok := keySet.Key(i)
		if !ok {
			continue
		}

		var raw any
		if err := jwk.Export(key, &raw); err != nil {
			continue
		}

		var pub *rsa.PublicKey
		switch k := raw.(type) {
		case *rsa.PublicKey:
			pub = k
		case *rsa.PrivateKey:
			pub = &k.PublicKey
		default:
			continue
		}

		der, err := x509.MarshalPKIXPublicKey(pub)
		if err != nil {
			return nil, err
		}

		id, ok := key.KeyID()
		if !ok || id == "" {
			id = "key-" + strconv.Itoa(i)
		}
		set[id] = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	}

	if len(set) == 0 {
		return nil, errors.New("JWKS contains no RSA keys")
	}
	return set, nil
}
