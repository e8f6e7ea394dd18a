// Package convtoken implements the AEAD-encrypted conversation token:
// the opaque bytes embedded in an InvitePayload that conceal a
// conversation id from everyone but the invite's creator.
package convtoken

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/xmtplabs/convos-node-sdk/internal/primitives"
)

// Version is the only supported conversation-token version byte.
const Version byte = 0x01

const (
	plaintextTypeUUID   byte = 0x01
	plaintextTypeString byte = 0x02
)

// shortFormStringLimit is the longest string the short-form (1-byte
// length prefix) packing accepts before falling back to the long form.
const shortFormStringLimit = 255

var (
	// ErrUnsupportedVersion is returned when the token's leading byte
	// is not Version.
	ErrUnsupportedVersion = errors.New("convtoken: unsupported token version")
	// ErrMalformedPlaintext is returned when decrypted plaintext does
	// not match any recognized packing.
	ErrMalformedPlaintext = errors.New("convtoken: malformed plaintext")
)

// Encrypt derives the creator's invite KEK, packs conversationID (a
// canonical-form UUID string or an opaque string id) into the typed
// plaintext, and seals it as version(1) ∥ nonce(12) ∥ AEAD output.
func Encrypt(creatorPrivateKey []byte, creatorInboxID, conversationID string) ([]byte, error) {
	key, err := primitives.DeriveInviteKEK(creatorPrivateKey, creatorInboxID)
	if err != nil {
		return nil, fmt.Errorf("convtoken: derive KEK: %w", err)
	}

	plaintext, err := pack(conversationID)
	if err != nil {
		return nil, fmt.Errorf("convtoken: pack plaintext: %w", err)
	}

	aad := []byte(creatorInboxID)
	sealed, err := primitives.Seal(key, aad, plaintext)
	if err != nil {
		return nil, fmt.Errorf("convtoken: seal: %w", err)
	}

	token := make([]byte, 0, 1+len(sealed))
	token = append(token, Version)
	token = append(token, sealed...)
	return token, nil
}

// Decrypt inverts Encrypt. creatorInboxID must be the same identity
// bound into the token at mint time; any mismatch surfaces as
// primitives.ErrBadAuthTag, not as a separate error, so callers cannot
// distinguish "wrong creator" from "tampered ciphertext".
func Decrypt(creatorPrivateKey []byte, creatorInboxID string, token []byte) (string, error) {
	if len(token) < 1 {
		return "", fmt.Errorf("convtoken: %w", ErrUnsupportedVersion)
	}
	if token[0] != Version {
		return "", fmt.Errorf("convtoken: version %#x: %w", token[0], ErrUnsupportedVersion)
	}

	key, err := primitives.DeriveInviteKEK(creatorPrivateKey, creatorInboxID)
	if err != nil {
		return "", fmt.Errorf("convtoken: derive KEK: %w", err)
	}

	aad := []byte(creatorInboxID)
	plaintext, err := primitives.Open(key, aad, token[1:])
	if err != nil {
		return "", err
	}

	return unpack(plaintext)
}

// pack encodes s as a UUID (16 raw bytes) when it parses as one,
// canonicalized to lowercase hyphenated form; otherwise as a
// length-prefixed UTF-8 string.
func pack(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("convtoken: empty conversation id")
	}
	if id, err := uuid.Parse(s); err == nil {
		raw := id[:]
		out := make([]byte, 0, 1+len(raw))
		out = append(out, plaintextTypeUUID)
		out = append(out, raw...)
		return out, nil
	}

	b := []byte(s)
	if len(b) <= shortFormStringLimit {
		out := make([]byte, 0, 2+len(b))
		out = append(out, plaintextTypeString, byte(len(b)))
		out = append(out, b...)
		return out, nil
	}
	if len(b) > 0xFFFF {
		return nil, fmt.Errorf("convtoken: string payload too long (%d bytes)", len(b))
	}
	out := make([]byte, 0, 4+len(b))
	out = append(out, plaintextTypeString, 0x00)
	out = binary.BigEndian.AppendUint16(out, uint16(len(b)))
	out = append(out, b...)
	return out, nil
}

// unpack inverts pack. UUIDs decode to their lowercase canonical
// string form, regardless of what case they were minted with.
func unpack(b []byte) (string, error) {
	if len(b) < 1 {
		return "", fmt.Errorf("convtoken: empty plaintext: %w", ErrMalformedPlaintext)
	}

	switch b[0] {
	case plaintextTypeUUID:
		if len(b) != 1+16 {
			return "", fmt.Errorf("convtoken: uuid plaintext length %d: %w", len(b), ErrMalformedPlaintext)
		}
		id, err := uuid.FromBytes(b[1:])
		if err != nil {
			return "", fmt.Errorf("convtoken: %w: %v", ErrMalformedPlaintext, err)
		}
		return strings.ToLower(id.String()), nil

	case plaintextTypeString:
		if len(b) < 2 {
			return "", fmt.Errorf("convtoken: truncated string plaintext: %w", ErrMalformedPlaintext)
		}
		if b[1] != 0x00 {
			n := int(b[1])
			if len(b) != 2+n {
				return "", fmt.Errorf("convtoken: short-form string length mismatch: %w", ErrMalformedPlaintext)
			}
			return string(b[2 : 2+n]), nil
		}
		if len(b) < 4 {
			return "", fmt.Errorf("convtoken: truncated long-form string plaintext: %w", ErrMalformedPlaintext)
		}
		n := int(binary.BigEndian.Uint16(b[2:4]))
		if len(b) != 4+n {
			return "", fmt.Errorf("convtoken: long-form string length mismatch: %w", ErrMalformedPlaintext)
		}
		return string(b[4 : 4+n]), nil

	default:
		return "", fmt.Errorf("convtoken: plaintext type %#x: %w", b[0], ErrMalformedPlaintext)
	}
}
