package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrTruncated is returned when a message ends mid-field.
var ErrTruncated = errors.New("wire: truncated message")

// skipUnknownField consumes one field's value of the given wire type,
// for forward compatibility with writers that add fields this decoder
// doesn't know about.
func skipUnknownField(b []byte, typ protowire.Type) (int, error) {
	n := protowire.ConsumeFieldValue(0, typ, b)
	if n < 0 {
		return 0, ErrTruncated
	}
	return n, nil
}

// DecodeInvitePayload parses an encoded InvitePayload, skipping unknown
// fields. A wire-level explicit zero for the sfixed64 timestamp fields
// (7, 8) is treated as "not set" rather than "set to zero", so that
// writers which serialize the proto3 zero value instead of omitting
// the field remain compatible with this decoder.
func DecodeInvitePayload(data []byte) (*InvitePayload, error) {
	p := &InvitePayload{}
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("wire: invite payload: %w", ErrTruncated)
		}
		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invite payload field 1: %w", ErrTruncated)
			}
			p.ConversationToken = append([]byte(nil), v...)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invite payload field 2: %w", ErrTruncated)
			}
			p.CreatorInboxID = append([]byte(nil), v...)
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invite payload field 3: %w", ErrTruncated)
			}
			p.Tag = v
			b = b[n:]
		case 4:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invite payload field 4: %w", ErrTruncated)
			}
			s := v
			p.Name = &s
			b = b[n:]
		case 5:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invite payload field 5: %w", ErrTruncated)
			}
			s := v
			p.Description = &s
			b = b[n:]
		case 6:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invite payload field 6: %w", ErrTruncated)
			}
			s := v
			p.ImageURL = &s
			b = b[n:]
		case 7:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invite payload field 7: %w", ErrTruncated)
			}
			if signed := int64(v); signed != 0 {
				p.ConversationExpiresAtUnix = &signed
			}
			b = b[n:]
		case 8:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invite payload field 8: %w", ErrTruncated)
			}
			if signed := int64(v); signed != 0 {
				p.ExpiresAtUnix = &signed
			}
			b = b[n:]
		case 9:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invite payload field 9: %w", ErrTruncated)
			}
			p.ExpiresAfterUse = v != 0
			b = b[n:]
		default:
			n, err := skipUnknownField(b, typ)
			if err != nil {
				return nil, fmt.Errorf("wire: invite payload field %d: %w", num, err)
			}
			b = b[n:]
		}
	}
	return p, nil
}

// DecodeSignedInvite parses an encoded SignedInvite, skipping unknown
// fields.
func DecodeSignedInvite(data []byte) (*SignedInvite, error) {
	s := &SignedInvite{}
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("wire: signed invite: %w", ErrTruncated)
		}
		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: signed invite field 1: %w", ErrTruncated)
			}
			s.Payload = append([]byte(nil), v...)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: signed invite field 2: %w", ErrTruncated)
			}
			s.Signature = append([]byte(nil), v...)
			b = b[n:]
		default:
			n, err := skipUnknownField(b, typ)
			if err != nil {
				return nil, fmt.Errorf("wire: signed invite field %d: %w", num, err)
			}
			b = b[n:]
		}
	}
	return s, nil
}

// DecodeConversationProfile parses an encoded ConversationProfile,
// skipping unknown fields.
func DecodeConversationProfile(data []byte) (*ConversationProfile, error) {
	p := &ConversationProfile{}
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("wire: conversation profile: %w", ErrTruncated)
		}
		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: conversation profile field 1: %w", ErrTruncated)
			}
			p.InboxID = append([]byte(nil), v...)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: conversation profile field 2: %w", ErrTruncated)
			}
			s := v
			p.Name = &s
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: conversation profile field 3: %w", ErrTruncated)
			}
			s := v
			p.Image = &s
			b = b[n:]
		default:
			n, err := skipUnknownField(b, typ)
			if err != nil {
				return nil, fmt.Errorf("wire: conversation profile field %d: %w", num, err)
			}
			b = b[n:]
		}
	}
	return p, nil
}

// DecodeConversationCustomMetadata parses encoded conversation metadata,
// including embedded profile sub-messages, skipping unknown fields.
// Like DecodeInvitePayload, a wire-level zero for expires_at_unix (field
// 3) decodes to "not set".
func DecodeConversationCustomMetadata(data []byte) (*ConversationCustomMetadata, error) {
	m := &ConversationCustomMetadata{}
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("wire: conversation metadata: %w", ErrTruncated)
		}
		b = b[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: conversation metadata field 1: %w", ErrTruncated)
			}
			m.Tag = v
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: conversation metadata field 2: %w", ErrTruncated)
			}
			profile, err := DecodeConversationProfile(v)
			if err != nil {
				return nil, fmt.Errorf("wire: conversation metadata field 2: %w", err)
			}
			m.Profiles = append(m.Profiles, *profile)
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: conversation metadata field 3: %w", ErrTruncated)
			}
			if signed := int64(v); signed != 0 {
				m.ExpiresAtUnix = &signed
			}
			b = b[n:]
		case 4:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: conversation metadata field 4: %w", ErrTruncated)
			}
			m.ImageEncryptionKey = append([]byte(nil), v...)
			b = b[n:]
		default:
			n, err := skipUnknownField(b, typ)
			if err != nil {
				return nil, fmt.Errorf("wire: conversation metadata field %d: %w", num, err)
			}
			b = b[n:]
		}
	}
	return m, nil
}
