// Package substrate defines the narrow capability interfaces the
// invite protocol consumes from the external end-to-end-encrypted
// messaging substrate (identity, transport, group membership,
// storage, consent list). Nothing in this package implements the
// substrate itself (the only implementation in this module is the
// in-memory one in internal/substrate/fake); the interfaces here exist
// so the middleware engine and group wrapper can be built and tested
// against a fake.
package substrate

import "context"

// MessageContent is a tagged variant over the heterogeneous content
// shapes a substrate delivery might carry, so the middleware never
// needs to know the substrate's concrete message type.
type MessageContent struct {
	kind kind
	text string
	data []byte
}

type kind int

const (
	kindUnknown kind = iota
	kindText
	kindBytes
)

// TextContent wraps a plain-text message body.
func TextContent(s string) MessageContent { return MessageContent{kind: kindText, text: s} }

// BytesContent wraps an opaque binary message body.
func BytesContent(b []byte) MessageContent { return MessageContent{kind: kindBytes, data: b} }

// UnknownContent represents a substrate content shape this module does
// not model.
func UnknownContent() MessageContent { return MessageContent{kind: kindUnknown} }

// ExtractBytes returns the binary body and true if this content is
// opaque bytes, or (nil, false) otherwise.
func (c MessageContent) ExtractBytes() ([]byte, bool) {
	if c.kind != kindBytes {
		return nil, false
	}
	return c.data, true
}

// ExtractText returns the text body and true if this content is
// textual, or ("", false) otherwise.
func (c MessageContent) ExtractText() (string, bool) {
	if c.kind != kindText {
		return "", false
	}
	return c.text, true
}

// Conversation is the capability handle for a single conversation
// (group or DM) on the substrate: the narrow surface the middleware
// and group wrapper need, independent of the substrate's own richer
// conversation type.
type Conversation interface {
	ID() string
	Send(ctx context.Context, content MessageContent) error
	SendText(ctx context.Context, text string) error
	AddMembers(ctx context.Context, inboxIDs []string) error
	AppData() string
	UpdateAppData(ctx context.Context, appData string) error
}

// Conversations is the capability handle for conversation lookup and
// creation.
type Conversations interface {
	GetByID(ctx context.Context, id string) (Conversation, error)
	CreateGroup(ctx context.Context, members []string, opts CreateGroupOptions) (Conversation, error)
	CreateDM(ctx context.Context, inboxID string) (Conversation, error)
	List(ctx context.Context) ([]Conversation, error)
}

// CreateGroupOptions carries the optional fields CreateGroup accepts.
type CreateGroupOptions struct {
	Name        string
	Description string
	AppData     string
}

// Contacts is the capability handle for consent-list management.
type Contacts interface {
	RefreshConsentList(ctx context.Context) error
	Block(ctx context.Context, inboxIDs []string) error
}

// Agent is the full capability surface the middleware and group
// wrapper are built against: identity plus the Conversations and
// Contacts handles. Per the spec's cyclic-ownership note, consumers
// that only need one narrow capability (e.g. the group wrapper only
// needing Conversation) should depend on that interface directly
// rather than on Agent, to keep ownership acyclic.
type Agent interface {
	InboxID() string
	Conversations() Conversations
	Contacts() Contacts
}

// ErrConversationNotFound is returned by Conversations.GetByID when no
// conversation with the given id exists.
var ErrConversationNotFound = errConversationNotFound{}

type errConversationNotFound struct{}

func (errConversationNotFound) Error() string { return "substrate: conversation not found" }
