package convtoken

import (
	"strings"
	"testing"

	"github.com/xmtplabs/convos-node-sdk/internal/primitives"
)

var testPrivateKey = mustHex(strings.Repeat("01", 32))

func mustHex(s string) []byte {
	b, err := primitives.DecodeHex(s)
	if err != nil {
		panic(err)
	}
	return b
}

const testInboxID = "abcabcabcabcabcabcabcabcabcabcabcabcabcabcabcabcabcabcabcabcabc"

func TestEncryptDecryptUUIDRoundTrip(t *testing.T) {
	id := "550E8400-E29B-41D4-A716-446655440000"

	token, err := Encrypt(testPrivateKey, testInboxID, id)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if token[0] != Version {
		t.Fatalf("token version = %#x, want %#x", token[0], Version)
	}

	got, err := Decrypt(testPrivateKey, testInboxID, token)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	want := "550e8400-e29b-41d4-a716-446655440000"
	if got != want {
		t.Fatalf("Decrypt() = %q, want %q (lowercase canonical)", got, want)
	}
}

func TestEncryptDecryptShortStringRoundTrip(t *testing.T) {
	token, err := Encrypt(testPrivateKey, testInboxID, "not-a-uuid")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	got, err := Decrypt(testPrivateKey, testInboxID, token)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != "not-a-uuid" {
		t.Fatalf("Decrypt() = %q, want %q", got, "not-a-uuid")
	}
}

func TestEncryptDecryptLongStringRoundTrip(t *testing.T) {
	long := strings.Repeat("x", 400)
	token, err := Encrypt(testPrivateKey, testInboxID, long)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	got, err := Decrypt(testPrivateKey, testInboxID, token)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != long {
		t.Fatalf("Decrypt() mismatch, len(got) = %d, want %d", len(got), len(long))
	}
}

func TestDecryptRejectsWrongVersion(t *testing.T) {
	token, err := Encrypt(testPrivateKey, testInboxID, "conv-id")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	token[0] = 0x02
	if _, err := Decrypt(testPrivateKey, testInboxID, token); err == nil {
		t.Fatal("expected error for bad version")
	}
}

func TestDecryptRejectsWrongCreatorInboxID(t *testing.T) {
	token, err := Encrypt(testPrivateKey, testInboxID, "conv-id")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if _, err := Decrypt(testPrivateKey, "different-inbox-id", token); err != primitives.ErrBadAuthTag {
		t.Fatalf("error = %v, want ErrBadAuthTag", err)
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	token, err := Encrypt(testPrivateKey, testInboxID, "conv-id")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	token[len(token)-1] ^= 0xFF
	if _, err := Decrypt(testPrivateKey, testInboxID, token); err != primitives.ErrBadAuthTag {
		t.Fatalf("error = %v, want ErrBadAuthTag", err)
	}
}
