// Package wire implements a deterministic, hand-written protobuf-wire-format
// codec for the invite protocol's three message shapes: InvitePayload,
// SignedInvite, and ConversationCustomMetadata. No .proto/codegen toolchain
// is used; encode/decode are written directly against
// google.golang.org/protobuf/encoding/protowire's field primitives, the
// same primitives generated code itself compiles down to.
package wire

// InvitePayload is the signed body of an invite.
type InvitePayload struct {
	ConversationToken         []byte
	CreatorInboxID            []byte
	Tag                       string
	Name                      *string
	Description               *string
	ImageURL                  *string
	ConversationExpiresAtUnix *int64
	ExpiresAtUnix             *int64
	ExpiresAfterUse           bool
}

// SignedInvite wraps an encoded InvitePayload with its recoverable
// signature.
type SignedInvite struct {
	Payload   []byte
	Signature []byte
}

// ConversationProfile is a single member's display profile.
type ConversationProfile struct {
	InboxID []byte
	Name    *string
	Image   *string
}

// ConversationCustomMetadata is the per-conversation metadata container
// persisted in the substrate group's app_data field.
type ConversationCustomMetadata struct {
	Tag                 string
	Profiles            []ConversationProfile
	ExpiresAtUnix       *int64
	ImageEncryptionKey  []byte
}
