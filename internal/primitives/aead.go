package primitives

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceSize is the ChaCha20-Poly1305 nonce length.
const NonceSize = chacha20poly1305.NonceSize

// ErrBadAuthTag is returned when AEAD decryption fails for any reason
// (tampered ciphertext, nonce, AAD, or wrong key). The specific failure
// reason is never surfaced, to avoid leaking an oracle to an attacker.
var ErrBadAuthTag = errors.New("primitives: bad authentication tag")

// Seal encrypts plaintext with ChaCha20-Poly1305 under key, using a fresh
// random 12-byte nonce, and returns nonce||ciphertext||tag.
func Seal(key, aad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("primitives: init aead: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("primitives: generate nonce: %w", err)
	}
	sealed := aead.Seal(nil, nonce, plaintext, aad)
	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// Open decrypts a nonce||ciphertext||tag blob produced by Seal. Any
// failure (key, nonce, aad, or ciphertext mismatch) is reported as
// ErrBadAuthTag.
func Open(key, aad, sealed []byte) ([]byte, error) {
	if len(sealed) < NonceSize {
		return nil, ErrBadAuthTag
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("primitives: init aead: %w", err)
	}
	nonce, ciphertext := sealed[:NonceSize], sealed[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrBadAuthTag
	}
	return plaintext, nil
}
