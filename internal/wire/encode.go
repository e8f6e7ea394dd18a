package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendBytes(b, v)
	return b
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendString(b, v)
	return b
}

// appendOptionalStringField always encodes the tag when v is non-nil, even
// if the pointed-to string is empty, to preserve "explicitly set to empty"
// vs. "unset" for optional string fields.
func appendOptionalStringField(b []byte, num protowire.Number, v *string) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendString(b, *v)
	return b
}

func appendOptionalSFixed64Field(b []byte, num protowire.Number, v *int64) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, uint64(*v))
	return b
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b // proto3 default, omit from the wire
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	return b
}

// EncodeInvitePayload deterministically encodes an InvitePayload. Optional
// string fields are omitted entirely from the wire when unset;
// expires_after_use is omitted when false (proto3 default).
func EncodeInvitePayload(p *InvitePayload) []byte {
	var b []byte
	b = appendBytesField(b, 1, p.ConversationToken)
	b = appendBytesField(b, 2, p.CreatorInboxID)
	b = appendStringField(b, 3, p.Tag)
	b = appendOptionalStringField(b, 4, p.Name)
	b = appendOptionalStringField(b, 5, p.Description)
	b = appendOptionalStringField(b, 6, p.ImageURL)
	b = appendOptionalSFixed64Field(b, 7, p.ConversationExpiresAtUnix)
	b = appendOptionalSFixed64Field(b, 8, p.ExpiresAtUnix)
	b = appendBoolField(b, 9, p.ExpiresAfterUse)
	return b
}

// EncodeSignedInvite deterministically encodes a SignedInvite.
func EncodeSignedInvite(s *SignedInvite) []byte {
	var b []byte
	b = appendBytesField(b, 1, s.Payload)
	b = appendBytesField(b, 2, s.Signature)
	return b
}

// EncodeConversationProfile deterministically encodes a ConversationProfile.
func EncodeConversationProfile(p *ConversationProfile) []byte {
	var b []byte
	b = appendBytesField(b, 1, p.InboxID)
	b = appendOptionalStringField(b, 2, p.Name)
	b = appendOptionalStringField(b, 3, p.Image)
	return b
}

// EncodeConversationCustomMetadata deterministically encodes conversation
// metadata, including each profile as an embedded sub-message.
func EncodeConversationCustomMetadata(m *ConversationCustomMetadata) []byte {
	var b []byte
	b = appendStringField(b, 1, m.Tag)
	for i := range m.Profiles {
		encoded := EncodeConversationProfile(&m.Profiles[i])
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, encoded)
	}
	b = appendOptionalSFixed64Field(b, 3, m.ExpiresAtUnix)
	b = appendBytesField(b, 4, m.ImageEncryptionKey)
	return b
}
