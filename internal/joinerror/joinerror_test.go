package joinerror

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := New(ConversationExpired, "abcdefghij")

	encoded, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(encoded, &raw); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if raw["errorType"] != "conversationExpired" {
		t.Errorf("errorType = %q, want conversationExpired", raw["errorType"])
	}
	if raw["inviteTag"] != "abcdefghij" {
		t.Errorf("inviteTag = %q, want abcdefghij", raw["inviteTag"])
	}
	if _, err := time.Parse(time.RFC3339, raw["timestamp"]); err != nil {
		t.Errorf("timestamp %q is not RFC3339/ISO-8601: %v", raw["timestamp"], err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.ErrorType != ConversationExpired {
		t.Errorf("ErrorType = %q, want %q", decoded.ErrorType, ConversationExpired)
	}
	if decoded.InviteTag != "abcdefghij" {
		t.Errorf("InviteTag = %q, want abcdefghij", decoded.InviteTag)
	}
}

func TestDecodeUnknownErrorTypeCollapsesToUnknown(t *testing.T) {
	raw := `{"errorType":"somethingFromTheFuture","inviteTag":"tag","timestamp":"2026-01-01T00:00:00Z"}`
	decoded, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.ErrorType != Unknown {
		t.Errorf("ErrorType = %q, want %q", decoded.ErrorType, Unknown)
	}
}

func TestUserFacingMessage(t *testing.T) {
	tests := []struct {
		t    Type
		want string
	}{
		{ConversationExpired, "This conversation is no longer available"},
		{GenericFailure, "Failed to join conversation"},
		{Unknown, "Failed to join conversation"},
	}
	for _, tt := range tests {
		if got := UserFacingMessage(tt.t); got != tt.want {
			t.Errorf("UserFacingMessage(%q) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
