// Package joinerror implements the structured join-error content type:
// the UTF-8 JSON payload the middleware sends back to a joiner in
// place of a generic chat message when a join request cannot proceed.
package joinerror

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies which condition caused a join request to fail.
type Type string

const (
	ConversationExpired Type = "conversationExpired"
	GenericFailure      Type = "genericFailure"
	Unknown             Type = "unknown"
)

// ContentType identifies this payload on a typed-content-capable
// substrate.
const (
	ContentTypeAuthority = "convos.app"
	ContentTypeID        = "inviteJoinError"
	ContentTypeVersion   = "1.0"
)

// Content is the structured join-error payload addressed to the
// joiner.
type Content struct {
	ErrorType Type
	InviteTag string
	Timestamp time.Time
}

// wireContent mirrors Content's UTF-8 JSON wire shape.
type wireContent struct {
	ErrorType string `json:"errorType"`
	InviteTag string `json:"inviteTag"`
	Timestamp string `json:"timestamp"`
}

// New constructs a join-error Content for errType scoped to inviteTag,
// stamped with the current time.
func New(errType Type, inviteTag string) Content {
	return Content{ErrorType: errType, InviteTag: inviteTag, Timestamp: time.Now().UTC()}
}

// Encode serializes c as the UTF-8 JSON wire form:
// { "errorType": ..., "inviteTag": ..., "timestamp": <ISO-8601 Z> }.
func Encode(c Content) ([]byte, error) {
	b, err := json.Marshal(wireContent{
		ErrorType: string(c.ErrorType),
		InviteTag: c.InviteTag,
		Timestamp: c.Timestamp.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("joinerror: encode: %w", err)
	}
	return b, nil
}

// Decode parses data as a join-error Content. An unrecognized
// errorType string collapses to Unknown rather than failing, to stay
// forward compatible with future variants. A malformed timestamp
// likewise does not fail decoding; Timestamp is left zero.
func Decode(data []byte) (Content, error) {
	var w wireContent
	if err := json.Unmarshal(data, &w); err != nil {
		return Content{}, fmt.Errorf("joinerror: decode: %w", err)
	}

	errType := Type(w.ErrorType)
	switch errType {
	case ConversationExpired, GenericFailure, Unknown:
	default:
		errType = Unknown
	}

	ts, _ := time.Parse(time.RFC3339, w.Timestamp)

	return Content{ErrorType: errType, InviteTag: w.InviteTag, Timestamp: ts}, nil
}

// UserFacingMessage returns the fixed, user-visible string for a
// join-error type. Every variant other than ConversationExpired maps
// to the same generic message.
func UserFacingMessage(t Type) string {
	if t == ConversationExpired {
		return "This conversation is no longer available"
	}
	return "Failed to join conversation"
}
