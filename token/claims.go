package token

import (
	"math"

	"github.com/goccy/go-json"
)

// Registered claim names used by this module.
const (
	ClaimIssuer    = "iss"
	ClaimAudience  = "aud"
	ClaimSubject   = "sub"
	ClaimIssuedAt  = "iat"
	ClaimExpiry    = "exp"
	ClaimScope     = "scope"
	ClaimPrincipal = "prn"
)

// Int64 converts a decoded claim value to whole seconds. Fractional or
// non-numeric values are rejected.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// String returns v when it is a string.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
