// Package primitives implements the low-level cryptographic and encoding
// building blocks the invite protocol is built from: secp256k1
// sign/recover, HKDF-SHA256 key derivation, ChaCha20-Poly1305 AEAD,
// constant-time comparison, hex, and URL-safe base64.
package primitives

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	// PrivateKeySize is the length in bytes of a secp256k1 private key.
	PrivateKeySize = 32
	// CompactSignatureSize is the length of an r||s||v recoverable signature.
	CompactSignatureSize = 65
	// UncompressedPublicKeySize is the length of a 0x04-prefixed public key.
	UncompressedPublicKeySize = 65
	// CompressedPublicKeySize is the length of a 0x02/0x03-prefixed public key.
	CompressedPublicKeySize = 33
)

// ErrInvalidSignatureLength is returned when a recoverable signature is not
// exactly 65 bytes.
var ErrInvalidSignatureLength = errors.New("primitives: signature must be 65 bytes")

// ErrInvalidRecoveryID is returned when the trailing recovery byte is out
// of the valid range.
var ErrInvalidRecoveryID = errors.New("primitives: recovery id must be in 0..3")

// SignRecoverable signs a 32-byte hash with a secp256k1 private key and
// returns a 65-byte r||s||v signature with low-s normalization and a
// recovery id in 0..3.
func SignRecoverable(hash []byte, privateKey []byte) ([]byte, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, fmt.Errorf("primitives: private key must be %d bytes", PrivateKeySize)
	}
	priv := secp256k1.PrivKeyFromBytes(privateKey)
	defer priv.Zero()

	// SignCompact produces [recoveryCode(27+id) || R(32) || S(32)] with S
	// already normalized to the lower half of the curve order.
	compact := ecdsa.SignCompact(priv, hash, false)
	if len(compact) != CompactSignatureSize {
		return nil, fmt.Errorf("primitives: unexpected compact signature length %d", len(compact))
	}

	recoveryID := compact[0] - 27
	if recoveryID > 3 {
		return nil, ErrInvalidRecoveryID
	}

	out := make([]byte, CompactSignatureSize)
	copy(out[0:32], compact[1:33])  // r
	copy(out[32:64], compact[33:65]) // s
	out[64] = recoveryID
	return out, nil
}

// RecoverPublicKey recovers the 65-byte uncompressed public key that
// produced sig over hash. It rejects signatures whose length isn't 65 or
// whose recovery byte is out of range.
func RecoverPublicKey(hash, sig []byte) ([]byte, error) {
	if len(sig) != CompactSignatureSize {
		return nil, ErrInvalidSignatureLength
	}
	recoveryID := sig[64]
	if recoveryID > 3 {
		return nil, ErrInvalidRecoveryID
	}

	compact := make([]byte, CompactSignatureSize)
	compact[0] = 27 + recoveryID
	copy(compact[1:33], sig[0:32])
	copy(compact[33:65], sig[32:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, fmt.Errorf("primitives: recover public key: %w", err)
	}
	return pub.SerializeUncompressed(), nil
}

// GetPublicKey returns the 65-byte uncompressed public key for a private key.
func GetPublicKey(privateKey []byte) ([]byte, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, fmt.Errorf("primitives: private key must be %d bytes", PrivateKeySize)
	}
	priv := secp256k1.PrivKeyFromBytes(privateKey)
	defer priv.Zero()
	return priv.PubKey().SerializeUncompressed(), nil
}

// NormalizeUncompressedPublicKey accepts either a 33-byte compressed or a
// 65-byte uncompressed public key and returns the 65-byte uncompressed
// form. Any other length fails.
func NormalizeUncompressedPublicKey(pub []byte) ([]byte, error) {
	switch len(pub) {
	case UncompressedPublicKeySize, CompressedPublicKeySize:
		parsed, err := secp256k1.ParsePubKey(pub)
		if err != nil {
			return nil, fmt.Errorf("primitives: parse public key: %w", err)
		}
		return parsed.SerializeUncompressed(), nil
	default:
		return nil, fmt.Errorf("primitives: public key must be %d or %d bytes, got %d",
			CompressedPublicKeySize, UncompressedPublicKeySize, len(pub))
	}
}
