package primitives

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// InviteKEKSalt is the fixed HKDF salt used to derive a creator's invite
// key-encryption key. It is a domain separator, not a secret.
const InviteKEKSalt = "ConvosInviteV1"

// DeriveKey runs HKDF-SHA256 over ikm with the given salt and info,
// producing a key of length outLen.
func DeriveKey(ikm, salt, info []byte, outLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, ikm, salt, info)
	out := make([]byte, outLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("primitives: hkdf derive: %w", err)
	}
	return out, nil
}

// DeriveInviteKEK derives the 32-byte key-encryption key for a creator
// identity: HKDF-SHA256(ikm=creatorPrivateKey, salt="ConvosInviteV1",
// info="inbox:"+creatorInboxID, L=32). The result depends only on the
// creator's identity, so it can be cached and is safe to compute
// repeatedly at mint and consume time.
func DeriveInviteKEK(creatorPrivateKey []byte, creatorInboxID string) ([]byte, error) {
	info := append([]byte("inbox:"), []byte(creatorInboxID)...)
	return DeriveKey(creatorPrivateKey, []byte(InviteKEKSalt), info, 32)
}
