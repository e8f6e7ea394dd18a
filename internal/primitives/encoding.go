package primitives

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// ConstantTimeEqual reports whether a and b hold identical bytes, without
// leaking their length-independent contents through timing. It returns
// false immediately (no comparison performed) on a length mismatch, which
// is itself an unavoidable, non-secret signal.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// EncodeHex lowercases and hex-encodes b.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex decodes an even-length hex string, with or without an
// uppercase mix; it does not accept odd-length input.
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("primitives: invalid hex: %w", err)
	}
	return b, nil
}

// base64URLEncoding is unpadded URL-safe base64.
var base64URLEncoding = base64.RawURLEncoding

// EncodeBase64URL encodes b as unpadded URL-safe base64.
func EncodeBase64URL(b []byte) string {
	return base64URLEncoding.EncodeToString(b)
}

// DecodeBase64URL decodes unpadded or padded URL-safe base64.
func DecodeBase64URL(s string) ([]byte, error) {
	if b, err := base64URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	// Tolerate a padded variant from less strict callers.
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("primitives: invalid base64url: %w", err)
	}
	return b, nil
}
