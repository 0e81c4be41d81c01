package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultCacheTTL is how long a parsed certificate stays cached when no TTL
// is given to NewVerifierCache.
const DefaultCacheTTL = time.Hour

// VerifierCache memoises NewVerifierFromPEM, keyed by a SHA-256 of the PEM
// text. Parse failures are not cached.
type VerifierCache struct {
	items *cache.Cache
}

// NewVerifierCache returns a cache whose entries expire after ttl.
func NewVerifierCache(ttl time.Duration) *VerifierCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &VerifierCache{items: cache.New(ttl, 2*ttl)}
}

// Verifier returns the cached Verifier for pemText, parsing it on a miss.
func (c *VerifierCache) Verifier(pemText string) (Verifier, error) {
	sum := sha256.Sum256([]byte(pemText))
	key := hex.EncodeToString(sum[:])

	if v, ok := c.items.Get(key); ok {
		return v.(Verifier), nil
	}

	v, err := NewVerifierFromPEM(pemText)
	if err != nil {
		return nil, err
	}
	c.items.Set(key, v, cache.DefaultExpiration)
	return v, nil
}

// Len reports the number of cached verifiers, including expired entries
// that have not been evicted yet.
func (c *VerifierCache) Len() int {
	return c.items.ItemCount()
}
