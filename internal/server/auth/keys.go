// Package auth implements the token machinery of the service: RSA key
// material and JWKS publishing, RS256 access tokens, HS256 refresh tokens,
// and password hashing.
package auth

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mkravets/auth-service/internal/common"
)

// KeyProvider supplies the RSA private key used for access-token signing.
//
/// The key is loaded lazily and cached after the first successful load: some
// deployments inject the secret after process start, so a missing key is a
// request-time failure (ErrKeyUnavailable), not a boot failure. Failed loads
// are retried on the next call.
type KeyProvider struct {
	pemValue string
	filePath string

	mu  sync.Mutex
	key *rsa.PrivateKey
	kid string
}

// NewKeyProvider builds a provider that reads the key from pemValue if it is
// non-empty, falling back to the PEM file at filePath.
func NewKeyProvider(pemValue, filePath string) *KeyProvider {
	return &KeyProvider{pemValue: pemValue, filePath: filePath}
}

// PrivateKey returns the cached signing key, loading it on first use.
func (p *KeyProvider) PrivateKey() (*rsa.PrivateKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key != nil {
		return p.key, nil
	}

	key, err := p.load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyUnavailable, err)
	}

	p.key = key
	p.kid = keyID(&key.PublicKey)
	return p.key, nil
}

// KeyID returns the kid stamped on issued tokens and published in the JWKS.
func (p *KeyProvider) KeyID() (string, error) {
	if _, err := p.PrivateKey(); err != nil {
		return "", err
	}
	return p.kid, nil
}

// JWKS publishes the public half of the signing key as a JWK set.
func (p *KeyProvider) JWKS() (*JWKSet, error) {
	key, err := p.PrivateKey()
	if err != nil {
		return nil, err
	}
	return NewJWKSet(&key.PublicKey, p.kid), nil
}

func (p *KeyProvider) load() (*rsa.PrivateKey, error) {
	if p.pemValue != "" {
		// deployment secrets often collapse the PEM to one line with
		// literal "\n" sequences
		return parsePrivateKey([]byte(strings.ReplaceAll(p.pemValue, `\n`, "\n")))
	}
	if p.filePath == "" {
		return nil, errors.New("no private key source configured")
	}
	data, err := os.ReadFile(p.filePath)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	return parsePrivateKey(data)
}

func parsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return key, nil
}

// keyID derives a stable identifier from the public modulus.
func keyID(pub *rsa.PublicKey) string {
	sum := sha256.Sum256(pub.N.Bytes())
	return hex.EncodeToString(sum[:8])
}
