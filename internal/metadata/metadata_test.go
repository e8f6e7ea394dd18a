package metadata

import (
	"testing"

	"github.com/xmtplabs/convos-node-sdk/internal/wire"
)

func strPtr(s string) *string { return &s }

// TestEncodeDecodeRoundTrip covers testable property #4.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := &wire.ConversationCustomMetadata{
		Tag: "abcdefghij",
		Profiles: []wire.ConversationProfile{
			{InboxID: []byte{0x01, 0x02}, Name: strPtr("alice")},
		},
	}

	encoded, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.Tag != m.Tag {
		t.Errorf("Tag = %q, want %q", decoded.Tag, m.Tag)
	}
	if len(decoded.Profiles) != 1 || *decoded.Profiles[0].Name != "alice" {
		t.Errorf("Profiles = %+v, want one profile named alice", decoded.Profiles)
	}

	tag, err := GetInviteTag(encoded)
	if err != nil {
		t.Fatalf("GetInviteTag() error = %v", err)
	}
	if tag != m.Tag {
		t.Errorf("GetInviteTag() = %q, want %q", tag, m.Tag)
	}
}

func TestDecodeWithNoProfilesEverSet(t *testing.T) {
	m := &wire.ConversationCustomMetadata{Tag: "zzzzzzzzzz"}
	encoded, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(decoded.Profiles) != 0 {
		t.Errorf("Profiles = %+v, want empty", decoded.Profiles)
	}
}

func TestNewTagLength(t *testing.T) {
	tag, err := NewTag()
	if err != nil {
		t.Fatalf("NewTag() error = %v", err)
	}
	if len(tag) != TagLength {
		t.Errorf("len(tag) = %d, want %d", len(tag), TagLength)
	}
}

func TestRotateInviteTagChangesOnlyTag(t *testing.T) {
	original := &wire.ConversationCustomMetadata{
		Tag:      "oldtag0000",
		Profiles: []wire.ConversationProfile{{InboxID: []byte{0x01}, Name: strPtr("a")}},
	}

	rotated, err := RotateInviteTag(original)
	if err != nil {
		t.Fatalf("RotateInviteTag() error = %v", err)
	}
	if rotated.Tag == original.Tag {
		t.Error("rotated tag equals original tag, want different")
	}
	if len(rotated.Profiles) != len(original.Profiles) {
		t.Errorf("len(Profiles) = %d, want %d", len(rotated.Profiles), len(original.Profiles))
	}
}

// TestUpsertProfileScenario covers scenario S8.
func TestUpsertProfileScenario(t *testing.T) {
	m := &wire.ConversationCustomMetadata{Tag: "tag0000000"}

	inboxID := []byte{0xAA, 0xBB}
	m = UpsertProfile(m, wire.ConversationProfile{InboxID: inboxID, Name: strPtr("A")})
	if len(m.Profiles) != 1 || *m.Profiles[0].Name != "A" {
		t.Fatalf("after first upsert: Profiles = %+v", m.Profiles)
	}

	m = UpsertProfile(m, wire.ConversationProfile{InboxID: inboxID, Name: strPtr("B"), Image: strPtr("u")})
	if len(m.Profiles) != 1 {
		t.Fatalf("len(Profiles) = %d, want 1 (upsert, not append)", len(m.Profiles))
	}
	if *m.Profiles[0].Name != "B" || *m.Profiles[0].Image != "u" {
		t.Fatalf("after second upsert: Profiles[0] = %+v, want name=B image=u", m.Profiles[0])
	}
}

func TestUpsertProfileAppendsForNewInboxID(t *testing.T) {
	m := &wire.ConversationCustomMetadata{Tag: "tag0000000"}
	m = UpsertProfile(m, wire.ConversationProfile{InboxID: []byte{0x01}, Name: strPtr("a")})
	m = UpsertProfile(m, wire.ConversationProfile{InboxID: []byte{0x02}, Name: strPtr("b")})
	if len(m.Profiles) != 2 {
		t.Fatalf("len(Profiles) = %d, want 2", len(m.Profiles))
	}
}
