// Package metadata implements the conversation metadata codec: the
// protobuf-framed, optionally-compressed, base64url container
// persisted in a conversation's opaque app_data field, carrying the
// current invite tag and per-member display profiles.
package metadata

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"github.com/xmtplabs/convos-node-sdk/internal/framing"
	"github.com/xmtplabs/convos-node-sdk/internal/primitives"
	"github.com/xmtplabs/convos-node-sdk/internal/wire"
)

// tagAlphabet is the character set NewTag draws from.
const tagAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TagLength is the fixed length of a generated invite tag.
const TagLength = 10

// Encode serializes m as protobuf, compresses if smaller, and encodes
// as unpadded URL-safe base64 for storage in app_data.
func Encode(m *wire.ConversationCustomMetadata) (string, error) {
	encoded := wire.EncodeConversationCustomMetadata(m)
	framed, err := framing.CompressIfSmaller(encoded)
	if err != nil {
		return "", fmt.Errorf("metadata: compress: %w", err)
	}
	return primitives.EncodeBase64URL(framed), nil
}

// Decode inverts Encode.
func Decode(s string) (*wire.ConversationCustomMetadata, error) {
	framed, err := primitives.DecodeBase64URL(s)
	if err != nil {
		return nil, fmt.Errorf("metadata: decode base64url: %w", err)
	}
	encoded, err := framing.Decompress(framed)
	if err != nil {
		return nil, fmt.Errorf("metadata: decompress: %w", err)
	}
	m, err := wire.DecodeConversationCustomMetadata(encoded)
	if err != nil {
		return nil, fmt.Errorf("metadata: decode protobuf: %w", err)
	}
	return m, nil
}

// GetInviteTag decodes s and returns its current invite tag.
func GetInviteTag(s string) (string, error) {
	m, err := Decode(s)
	if err != nil {
		return "", err
	}
	return m.Tag, nil
}

// NewTag generates a fresh TagLength-character alphanumeric invite
// tag.
func NewTag() (string, error) {
	buf := make([]byte, TagLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("metadata: generate tag: %w", err)
	}
	out := make([]byte, TagLength)
	for i, b := range buf {
		out[i] = tagAlphabet[int(b)%len(tagAlphabet)]
	}
	return string(out), nil
}

// Fresh returns empty metadata with a newly generated tag.
func Fresh() (*wire.ConversationCustomMetadata, error) {
	tag, err := NewTag()
	if err != nil {
		return nil, err
	}
	return &wire.ConversationCustomMetadata{Tag: tag}, nil
}

// RotateInviteTag returns a copy of current with a freshly generated
// tag; every other field is unchanged. Rotating the tag invalidates
// every invite minted against the old tag.
func RotateInviteTag(current *wire.ConversationCustomMetadata) (*wire.ConversationCustomMetadata, error) {
	tag, err := NewTag()
	if err != nil {
		return nil, err
	}
	next := *current
	next.Tag = tag
	next.Profiles = append([]wire.ConversationProfile(nil), current.Profiles...)
	return &next, nil
}

// UpsertProfile returns a copy of current with profile inserted or, if
// an entry with the same inbox_id already exists, replacing it
// in-place. Lookup is by byte-equal inbox_id.
func UpsertProfile(current *wire.ConversationCustomMetadata, profile wire.ConversationProfile) *wire.ConversationCustomMetadata {
	next := *current
	next.Profiles = append([]wire.ConversationProfile(nil), current.Profiles...)

	for i := range next.Profiles {
		if bytes.Equal(next.Profiles[i].InboxID, profile.InboxID) {
			next.Profiles[i] = profile
			return &next
		}
	}
	next.Profiles = append(next.Profiles, profile)
	return &next
}
