// Package invite implements the signed-invite credential: building a
// slug from a conversation, parsing it back out of a slug or URL in any
// of its recognized shapes, verifying its signature, and decrypting the
// conversation id it conceals.
package invite

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/xmtplabs/convos-node-sdk/internal/convtoken"
	"github.com/xmtplabs/convos-node-sdk/internal/framing"
	"github.com/xmtplabs/convos-node-sdk/internal/primitives"
	"github.com/xmtplabs/convos-node-sdk/internal/wire"
)

// SlugPattern recognizes text that looks like an invite slug, used by
// the middleware to distinguish "malformed invite" from "unrelated
// text" when parsing fails outright.
var SlugPattern = regexp.MustCompile(`^[A-Za-z0-9_\-*]{50,}$`)

var (
	// ErrEmptySlug is returned when there is no invite content to parse.
	ErrEmptySlug = errors.New("invite: empty slug")
)

// BuildOptions carries the inputs to Build beyond the always-required
// conversation id, tag, creator identity, and signing key.
type BuildOptions struct {
	Name                      *string
	Description               *string
	ImageURL                  *string
	ConversationExpiresAtUnix *int64
	ExpiresAtUnix             *int64
	ExpiresAfterUse           bool
}

// Build mints a signed invite slug for conversationID, scoped to tag
// and signed by creatorPrivateKey on behalf of creatorInboxID.
func Build(creatorPrivateKey []byte, creatorInboxID, conversationID, tag string, opts BuildOptions) (string, error) {
	token, err := convtoken.Encrypt(creatorPrivateKey, creatorInboxID, conversationID)
	if err != nil {
		return "", fmt.Errorf("invite: encrypt conversation token: %w", err)
	}

	payload := &wire.InvitePayload{
		ConversationToken:         token,
		CreatorInboxID:            []byte(creatorInboxID),
		Tag:                       tag,
		Name:                      opts.Name,
		Description:               opts.Description,
		ImageURL:                  opts.ImageURL,
		ConversationExpiresAtUnix: opts.ConversationExpiresAtUnix,
		ExpiresAtUnix:             opts.ExpiresAtUnix,
		ExpiresAfterUse:           opts.ExpiresAfterUse,
	}
	payloadBytes := wire.EncodeInvitePayload(payload)

	hash := sha256.Sum256(payloadBytes)
	signature, err := primitives.SignRecoverable(hash[:], creatorPrivateKey)
	if err != nil {
		return "", fmt.Errorf("invite: sign payload: %w", err)
	}

	signed := &wire.SignedInvite{Payload: payloadBytes, Signature: signature}
	signedBytes := wire.EncodeSignedInvite(signed)

	framed, err := framing.CompressIfSmaller(signedBytes)
	if err != nil {
		return "", fmt.Errorf("invite: frame signed invite: %w", err)
	}

	slug := primitives.EncodeBase64URL(framed)
	return framing.Chunk(slug), nil
}

// Parsed is the result of parsing a slug or URL: the decoded signed
// invite plus its derived expiry flags relative to now.
type Parsed struct {
	Signed                *wire.SignedInvite
	Payload               *wire.InvitePayload
	IsExpired             bool
	IsConversationExpired bool
}

var (
	queryParamRe = regexp.MustCompile(`[?&]i=([^&]+)`)
	legacyCodeRe = regexp.MustCompile(`[?&]code=([^&]+)`)
	appSchemeRe  = regexp.MustCompile(`^convos://join/([^/?]+)`)
	trailingPath = regexp.MustCompile(`/([^/?]+)/?(?:\?.*)?$`)
)

// extractSlug pulls the raw slug out of a URL or raw-slug string,
// recognizing (in order) the "?i=" query parameter, the legacy "?code="
// query parameter, the "convos://join/<code>" app-scheme path, a
// trailing path segment, and finally falling back to treating the
// whole trimmed input as a raw slug.
func extractSlug(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrEmptySlug
	}

	if m := queryParamRe.FindStringSubmatch(s); m != nil {
		if decoded, err := url.QueryUnescape(m[1]); err == nil {
			return decoded, nil
		}
		return m[1], nil
	}
	if m := legacyCodeRe.FindStringSubmatch(s); m != nil {
		if decoded, err := url.QueryUnescape(m[1]); err == nil {
			return decoded, nil
		}
		return m[1], nil
	}
	if m := appSchemeRe.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	if strings.Contains(s, "://") || strings.HasPrefix(s, "/") {
		if m := trailingPath.FindStringSubmatch(s); m != nil {
			return m[1], nil
		}
	}
	return s, nil
}

// Parse accepts a raw slug or any recognized URL shape wrapping one,
// and returns the decoded payload with expiry flags computed against
// the current wall clock.
func Parse(input string) (*Parsed, error) {
	slug, err := extractSlug(input)
	if err != nil {
		return nil, err
	}

	stripped := framing.Unchunk(slug)
	framed, err := primitives.DecodeBase64URL(stripped)
	if err != nil {
		return nil, fmt.Errorf("invite: decode slug: %w", err)
	}

	signedBytes, err := framing.Decompress(framed)
	if err != nil {
		return nil, fmt.Errorf("invite: decompress slug: %w", err)
	}

	signed, err := wire.DecodeSignedInvite(signedBytes)
	if err != nil {
		return nil, fmt.Errorf("invite: decode signed invite: %w", err)
	}
	payload, err := wire.DecodeInvitePayload(signed.Payload)
	if err != nil {
		return nil, fmt.Errorf("invite: decode payload: %w", err)
	}

	now := time.Now().Unix()
	isExpired := payload.ExpiresAtUnix != nil && *payload.ExpiresAtUnix < now
	isConversationExpired := payload.ConversationExpiresAtUnix != nil && *payload.ConversationExpiresAtUnix < now

	return &Parsed{
		Signed:                signed,
		Payload:               payload,
		IsExpired:             isExpired,
		IsConversationExpired: isConversationExpired,
	}, nil
}

// Verify checks that signed was produced by the holder of the private
// key corresponding to expectedPublicKey, comparing normalized
// uncompressed public keys in constant time. It never returns an
// error: any internal failure (malformed signature, bad recovery id,
// unparsable key) is reported as false so callers cannot distinguish
// the reason verification failed.
func Verify(signed *wire.SignedInvite, expectedPublicKey []byte) bool {
	hash := sha256.Sum256(signed.Payload)

	recovered, err := primitives.RecoverPublicKey(hash[:], signed.Signature)
	if err != nil {
		return false
	}
	recoveredNorm, err := primitives.NormalizeUncompressedPublicKey(recovered)
	if err != nil {
		return false
	}
	expectedNorm, err := primitives.NormalizeUncompressedPublicKey(expectedPublicKey)
	if err != nil {
		return false
	}
	return primitives.ConstantTimeEqual(recoveredNorm, expectedNorm)
}

// VerifyWithPrivateKey derives the expected public key from priv and
// delegates to Verify.
func VerifyWithPrivateKey(signed *wire.SignedInvite, priv []byte) bool {
	expected, err := primitives.GetPublicKey(priv)
	if err != nil {
		return false
	}
	return Verify(signed, expected)
}

// DecryptConversationID decrypts the conversation id concealed in
// payload's conversation token, using the creator's private key and
// the creator_inbox_id recorded in the payload itself (not any
// caller-supplied identity). Verify/VerifyWithPrivateKey check only the
// signature; comparing creator_inbox_id with the caller's own identity
// is left to the caller.
func DecryptConversationID(creatorPrivateKey []byte, payload *wire.InvitePayload) (string, error) {
	return convtoken.Decrypt(creatorPrivateKey, string(payload.CreatorInboxID), payload.ConversationToken)
}

// Environment selects the default invite base URL.
type Environment string

const (
	EnvProduction Environment = "production"
	EnvDev        Environment = "dev"
	EnvLocal      Environment = "local"
)

// DefaultBaseURL returns the canonical invite base URL for env.
func DefaultBaseURL(env Environment) string {
	switch env {
	case EnvProduction:
		return "https://popup.convos.org/v2"
	default:
		return "https://dev.convos.org/v2"
	}
}

// URL builds the invite URL for slug against baseURL (as returned by
// DefaultBaseURL or overridden by configuration).
func URL(baseURL, slug string) string {
	return baseURL + "?i=" + url.QueryEscape(slug)
}
