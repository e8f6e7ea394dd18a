// Package join implements the joiner side of the invite protocol:
// parsing an invite URL, validating it is still live, and sending the
// canonical slug back to the creator as a DM join request.
package join

import (
	"context"
	"errors"
	"fmt"

	"github.com/xmtplabs/convos-node-sdk/internal/framing"
	"github.com/xmtplabs/convos-node-sdk/internal/invite"
	"github.com/xmtplabs/convos-node-sdk/internal/primitives"
	"github.com/xmtplabs/convos-node-sdk/internal/substrate"
	"github.com/xmtplabs/convos-node-sdk/internal/wire"
)

var (
	// ErrInviteExpired is returned when the invite or its conversation
	// has already expired.
	ErrInviteExpired = errors.New("join: invite expired")
	// ErrSelfOwnedInvite is returned when the invite's creator is the
	// same identity attempting to join.
	ErrSelfOwnedInvite = errors.New("join: cannot join your own invite")
)

// Result is what Join returns to the caller. ConversationID is always
// empty: the joiner has no private key to decrypt the conversation
// token, so there is no real conversation id to hand back, and
// returning the raw encrypted token bytes as a string would look like
// one without being usable as one. SPEC_FULL.md records this decision.
type Result struct {
	ConversationID string
	CreatorInboxID string
	InviteTag      string
	Name           *string
	Description    *string
}

// Join parses inviteURL, rejects it if already expired or self-owned,
// opens (or reuses) a DM with the creator, and sends the canonical
// slug form as the DM body.
func Join(ctx context.Context, selfInboxID string, conversations substrate.Conversations, inviteURL string) (*Result, error) {
	parsed, err := invite.Parse(inviteURL)
	if err != nil {
		return nil, fmt.Errorf("join: parse invite: %w", err)
	}
	if parsed.IsExpired || parsed.IsConversationExpired {
		return nil, ErrInviteExpired
	}

	creatorInboxID := string(parsed.Payload.CreatorInboxID)
	if creatorInboxID == selfInboxID {
		return nil, ErrSelfOwnedInvite
	}

	dm, err := conversations.CreateDM(ctx, creatorInboxID)
	if err != nil {
		return nil, fmt.Errorf("join: open DM with creator: %w", err)
	}

	slug, err := canonicalSlug(parsed)
	if err != nil {
		return nil, fmt.Errorf("join: re-serialize invite slug: %w", err)
	}
	if err := dm.SendText(ctx, slug); err != nil {
		return nil, fmt.Errorf("join: send join request: %w", err)
	}

	return &Result{
		CreatorInboxID: creatorInboxID,
		InviteTag:      parsed.Payload.Tag,
		Name:           parsed.Payload.Name,
		Description:    parsed.Payload.Description,
	}, nil
}

// canonicalSlug re-serializes the already-signed invite exactly as
// Build would have produced it, without needing the creator's private
// key (which the joiner never holds): re-encode the still-valid
// SignedInvite bytes, reapply compression framing, base64url-encode,
// and chunk-separate.
func canonicalSlug(parsed *invite.Parsed) (string, error) {
	signedBytes := wire.EncodeSignedInvite(parsed.Signed)
	framed, err := framing.CompressIfSmaller(signedBytes)
	if err != nil {
		return "", err
	}
	return framing.Chunk(primitives.EncodeBase64URL(framed)), nil
}
