// Package keys loads signing key material from passphrase-protected PKCS#12
// bundles and from PEM files.
package keys

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"

	"software.sslmate.com/src/go-pkcs12"
)

// MaxBundleSize bounds how much LoadPKCS12File reads from disk.
const MaxBundleSize = 1 << 20

// KeyMaterial is a private signing key with the certificate for its public
// half, when the source provided one. It is never modified after a loader
// returns it.
type KeyMaterial struct {
	PrivateKey  crypto.Signer
	Certificate *x509.Certificate
}

// LoadPKCS12 extracts the private key and leaf certificate from a PKCS#12
// bundle. A failed MAC check yields a WrongPassphrase error; any other
// decoding problem yields CorruptBundle.
func LoadPKCS12(bundle []byte, passphrase string) (*KeyMaterial, error) {
	key, cert, _, err := pkcs12.DecodeChain(bundle, passphrase)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, wrongPassphrase(err)
		}
		return nil, corruptBundle(err)
	}

	signer, err := rsaSigner(key)
	if err != nil {
		return nil, corruptBundle(err)
	}

	return &KeyMaterial{PrivateKey: signer, Certificate: cert}, nil
}

// LoadPKCS12File reads at most MaxBundleSize bytes from path and passes
// them to LoadPKCS12. A file larger than that is reported as corrupt.
func LoadPKCS12File(path, passphrase string) (*KeyMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open key bundle: %w", err)
	}
	defer f.Close()

	bundle, err := io.ReadAll(io.LimitReader(f, MaxBundleSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read key bundle: %w", err)
	}
	if len(bundle) > MaxBundleSize {
		return nil, corruptBundle(fmt.Errorf("bundle exceeds %d bytes", MaxBundleSize))
	}

	return LoadPKCS12(bundle, passphrase)
}

// LoadPEM reads an unencrypted RSA private key (PKCS#1 or PKCS#8) and an
// optional CERTIFICATE block from PEM text. Blocks may appear in any order;
// unknown block types are ignored.
func LoadPEM(data []byte) (*KeyMaterial, error) {
	var (
		km   KeyMaterial
		rest = data
	)
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		switch block.Type {
		case "RSA PRIVATE KEY":
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, corruptBundle(err)
			}
			km.PrivateKey = key
		case "PRIVATE KEY":
			key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, corruptBundle(err)
			}
			signer, err := rsaSigner(key)
			if err != nil {
				return nil, corruptBundle(err)
			}
			km.PrivateKey = signer
		case "CERTIFICATE":
			if km.Certificate != nil {
				continue
			}
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, corruptBundle(err)
			}
			km.Certificate = cert
		}
	}

	if km.PrivateKey == nil {
		return nil, corruptBundle(errors.New("no private key found"))
	}

	return &km, nil
}

func rsaSigner(key interface{}) (crypto.Signer, error) {
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type %T", key)
	}
	return rsaKey, nil
}
