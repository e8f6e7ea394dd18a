package wire

import (
	"bytes"
	"testing"
)

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }

func TestInvitePayloadRoundTrip(t *testing.T) {
	p := &InvitePayload{
		ConversationToken:         []byte{0x01, 0x02, 0x03},
		CreatorInboxID:            []byte{0xAA, 0xBB},
		Tag:                       "v1",
		Name:                      strPtr("Book Club"),
		Description:               strPtr("weekly meetup"),
		ImageURL:                  strPtr("https://example.com/img.png"),
		ConversationExpiresAtUnix: i64Ptr(1893456000),
		ExpiresAtUnix:             i64Ptr(1777777777),
		ExpiresAfterUse:           true,
	}

	encoded := EncodeInvitePayload(p)
	decoded, err := DecodeInvitePayload(encoded)
	if err != nil {
		t.Fatalf("DecodeInvitePayload() error = %v", err)
	}

	if !bytes.Equal(decoded.ConversationToken, p.ConversationToken) {
		t.Errorf("ConversationToken = %x, want %x", decoded.ConversationToken, p.ConversationToken)
	}
	if !bytes.Equal(decoded.CreatorInboxID, p.CreatorInboxID) {
		t.Errorf("CreatorInboxID = %x, want %x", decoded.CreatorInboxID, p.CreatorInboxID)
	}
	if decoded.Tag != p.Tag {
		t.Errorf("Tag = %q, want %q", decoded.Tag, p.Tag)
	}
	if decoded.Name == nil || *decoded.Name != *p.Name {
		t.Errorf("Name = %v, want %v", decoded.Name, p.Name)
	}
	if decoded.Description == nil || *decoded.Description != *p.Description {
		t.Errorf("Description = %v, want %v", decoded.Description, p.Description)
	}
	if decoded.ImageURL == nil || *decoded.ImageURL != *p.ImageURL {
		t.Errorf("ImageURL = %v, want %v", decoded.ImageURL, p.ImageURL)
	}
	if decoded.ConversationExpiresAtUnix == nil || *decoded.ConversationExpiresAtUnix != *p.ConversationExpiresAtUnix {
		t.Errorf("ConversationExpiresAtUnix = %v, want %v", decoded.ConversationExpiresAtUnix, p.ConversationExpiresAtUnix)
	}
	if decoded.ExpiresAtUnix == nil || *decoded.ExpiresAtUnix != *p.ExpiresAtUnix {
		t.Errorf("ExpiresAtUnix = %v, want %v", decoded.ExpiresAtUnix, p.ExpiresAtUnix)
	}
	if decoded.ExpiresAfterUse != p.ExpiresAfterUse {
		t.Errorf("ExpiresAfterUse = %v, want %v", decoded.ExpiresAfterUse, p.ExpiresAfterUse)
	}
}

// TestInvitePayloadOmitsUnsetOptionalFields checks that unset optional
// fields round-trip to nil, and that a false bool is not confused with
// "unset" (proto3 has no such concept for scalar bools).
func TestInvitePayloadOmitsUnsetOptionalFields(t *testing.T) {
	p := &InvitePayload{
		ConversationToken: []byte{0x01},
		CreatorInboxID:    []byte{0x02},
		Tag:               "v1",
	}

	encoded := EncodeInvitePayload(p)
	decoded, err := DecodeInvitePayload(encoded)
	if err != nil {
		t.Fatalf("DecodeInvitePayload() error = %v", err)
	}

	if decoded.Name != nil {
		t.Errorf("Name = %v, want nil", decoded.Name)
	}
	if decoded.Description != nil {
		t.Errorf("Description = %v, want nil", decoded.Description)
	}
	if decoded.ImageURL != nil {
		t.Errorf("ImageURL = %v, want nil", decoded.ImageURL)
	}
	if decoded.ConversationExpiresAtUnix != nil {
		t.Errorf("ConversationExpiresAtUnix = %v, want nil", decoded.ConversationExpiresAtUnix)
	}
	if decoded.ExpiresAtUnix != nil {
		t.Errorf("ExpiresAtUnix = %v, want nil", decoded.ExpiresAtUnix)
	}
	if decoded.ExpiresAfterUse {
		t.Errorf("ExpiresAfterUse = true, want false")
	}
}

// TestInvitePayloadExplicitZeroTimestampDecodesAsUnset exercises the
// writer-compatibility rule directly: a writer that serializes the
// field 8 tag with an explicit wire-level zero (rather than omitting
// the field) must still be read back as "not set".
func TestInvitePayloadExplicitZeroTimestampDecodesAsUnset(t *testing.T) {
	zero := int64(0)
	p := &InvitePayload{
		ConversationToken: []byte{0x01},
		CreatorInboxID:    []byte{0x02},
		Tag:               "v1",
		ExpiresAtUnix:     &zero,
	}

	encoded := EncodeInvitePayload(p)
	decoded, err := DecodeInvitePayload(encoded)
	if err != nil {
		t.Fatalf("DecodeInvitePayload() error = %v", err)
	}
	if decoded.ExpiresAtUnix != nil {
		t.Errorf("ExpiresAtUnix = %v, want nil (wire zero must decode as unset)", decoded.ExpiresAtUnix)
	}
}

func TestSignedInviteRoundTrip(t *testing.T) {
	s := &SignedInvite{
		Payload:   []byte{0x10, 0x20, 0x30},
		Signature: bytes.Repeat([]byte{0x99}, 65),
	}

	encoded := EncodeSignedInvite(s)
	decoded, err := DecodeSignedInvite(encoded)
	if err != nil {
		t.Fatalf("DecodeSignedInvite() error = %v", err)
	}
	if !bytes.Equal(decoded.Payload, s.Payload) {
		t.Errorf("Payload = %x, want %x", decoded.Payload, s.Payload)
	}
	if !bytes.Equal(decoded.Signature, s.Signature) {
		t.Errorf("Signature = %x, want %x", decoded.Signature, s.Signature)
	}
}

func TestConversationCustomMetadataRoundTrip(t *testing.T) {
	m := &ConversationCustomMetadata{
		Tag: "v2",
		Profiles: []ConversationProfile{
			{InboxID: []byte{0x01}, Name: strPtr("alice"), Image: strPtr("alice.png")},
			{InboxID: []byte{0x02}, Name: strPtr("bob")},
		},
		ExpiresAtUnix:      i64Ptr(1700000000),
		ImageEncryptionKey: bytes.Repeat([]byte{0x07}, 32),
	}

	encoded := EncodeConversationCustomMetadata(m)
	decoded, err := DecodeConversationCustomMetadata(encoded)
	if err != nil {
		t.Fatalf("DecodeConversationCustomMetadata() error = %v", err)
	}

	if decoded.Tag != m.Tag {
		t.Errorf("Tag = %q, want %q", decoded.Tag, m.Tag)
	}
	if len(decoded.Profiles) != len(m.Profiles) {
		t.Fatalf("len(Profiles) = %d, want %d", len(decoded.Profiles), len(m.Profiles))
	}
	for i := range m.Profiles {
		if !bytes.Equal(decoded.Profiles[i].InboxID, m.Profiles[i].InboxID) {
			t.Errorf("Profiles[%d].InboxID = %x, want %x", i, decoded.Profiles[i].InboxID, m.Profiles[i].InboxID)
		}
		if decoded.Profiles[i].Name == nil || *decoded.Profiles[i].Name != *m.Profiles[i].Name {
			t.Errorf("Profiles[%d].Name = %v, want %v", i, decoded.Profiles[i].Name, m.Profiles[i].Name)
		}
	}
	if decoded.Profiles[0].Image == nil || *decoded.Profiles[0].Image != *m.Profiles[0].Image {
		t.Errorf("Profiles[0].Image = %v, want %v", decoded.Profiles[0].Image, m.Profiles[0].Image)
	}
	if decoded.Profiles[1].Image != nil {
		t.Errorf("Profiles[1].Image = %v, want nil", decoded.Profiles[1].Image)
	}
	if decoded.ExpiresAtUnix == nil || *decoded.ExpiresAtUnix != *m.ExpiresAtUnix {
		t.Errorf("ExpiresAtUnix = %v, want %v", decoded.ExpiresAtUnix, m.ExpiresAtUnix)
	}
	if !bytes.Equal(decoded.ImageEncryptionKey, m.ImageEncryptionKey) {
		t.Errorf("ImageEncryptionKey = %x, want %x", decoded.ImageEncryptionKey, m.ImageEncryptionKey)
	}
}

func TestDecodeInvitePayloadTruncated(t *testing.T) {
	if _, err := DecodeInvitePayload([]byte{0x08}); err == nil {
		t.Fatal("expected error for truncated message")
	}
}
