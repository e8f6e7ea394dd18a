// Package groupwrap wraps a single substrate conversation to provide
// invite issuance and profile management on top of its opaque app_data
// field. It depends only on the narrow substrate.Conversation capability
// handle, not the full substrate.Agent, to keep middleware/group-wrapper
// ownership acyclic.
package groupwrap

import (
	"context"
	"fmt"

	"github.com/xmtplabs/convos-node-sdk/internal/invite"
	"github.com/xmtplabs/convos-node-sdk/internal/metadata"
	"github.com/xmtplabs/convos-node-sdk/internal/substrate"
	"github.com/xmtplabs/convos-node-sdk/internal/wire"
)

// Group wraps a substrate conversation with invite/profile operations.
type Group struct {
	conversation      substrate.Conversation
	creatorInboxID    string
	creatorPrivateKey []byte
	baseURL           string
}

// New constructs a Group wrapper around conversation, minting invites
// and URLs on behalf of creatorInboxID/creatorPrivateKey.
func New(conversation substrate.Conversation, creatorInboxID string, creatorPrivateKey []byte, baseURL string) *Group {
	return &Group{
		conversation:      conversation,
		creatorInboxID:    creatorInboxID,
		creatorPrivateKey: creatorPrivateKey,
		baseURL:           baseURL,
	}
}

// currentOrFreshMetadata reads app_data; if it doesn't decode or
// carries no tag, it lazily materializes fresh metadata rather than
// failing. The second return value reports whether fresh metadata was
// generated, so callers know whether a persist is required.
func (g *Group) currentOrFreshMetadata(ctx context.Context) (*wire.ConversationCustomMetadata, bool, error) {
	appData := g.conversation.AppData()
	if appData != "" {
		if m, err := metadata.Decode(appData); err == nil && m.Tag != "" {
			return m, false, nil
		}
	}
	m, err := metadata.Fresh()
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (g *Group) persist(ctx context.Context, m *wire.ConversationCustomMetadata) error {
	encoded, err := metadata.Encode(m)
	if err != nil {
		return fmt.Errorf("groupwrap: encode metadata: %w", err)
	}
	return g.conversation.UpdateAppData(ctx, encoded)
}

// CreateInviteOptions carries the display fields and timestamps an
// invite may optionally carry.
type CreateInviteOptions struct {
	Name                      *string
	Description               *string
	ImageURL                  *string
	ConversationExpiresAtUnix *int64
	ExpiresAtUnix             *int64
	ExpiresAfterUse           bool
}

// CreateInvite reuses the conversation's current invite tag if one
// exists and is decodable, otherwise lazily generates and persists
// fresh metadata, then mints a signed invite slug scoped to that tag
// and the conversation's own id.
func (g *Group) CreateInvite(ctx context.Context, opts CreateInviteOptions) (string, error) {
	m, fresh, err := g.currentOrFreshMetadata(ctx)
	if err != nil {
		return "", fmt.Errorf("groupwrap: load metadata: %w", err)
	}
	if fresh {
		if err := g.persist(ctx, m); err != nil {
			return "", err
		}
	}

	slug, err := invite.Build(g.creatorPrivateKey, g.creatorInboxID, g.conversation.ID(), m.Tag, invite.BuildOptions{
		Name:                      opts.Name,
		Description:               opts.Description,
		ImageURL:                  opts.ImageURL,
		ConversationExpiresAtUnix: opts.ConversationExpiresAtUnix,
		ExpiresAtUnix:             opts.ExpiresAtUnix,
		ExpiresAfterUse:           opts.ExpiresAfterUse,
	})
	if err != nil {
		return "", fmt.Errorf("groupwrap: build invite: %w", err)
	}
	return slug, nil
}

// InviteURL mints an invite via CreateInvite and wraps it as a full
// URL using the group's configured base URL.
func (g *Group) InviteURL(ctx context.Context, opts CreateInviteOptions) (string, error) {
	slug, err := g.CreateInvite(ctx, opts)
	if err != nil {
		return "", err
	}
	return invite.URL(g.baseURL, slug), nil
}

// RotateInviteTag replaces the conversation's current invite tag with
// a fresh one, invalidating every outstanding invite minted against
// the old tag, and persists the result before returning.
func (g *Group) RotateInviteTag(ctx context.Context) error {
	m, _, err := g.currentOrFreshMetadata(ctx)
	if err != nil {
		return fmt.Errorf("groupwrap: load metadata: %w", err)
	}
	rotated, err := metadata.RotateInviteTag(m)
	if err != nil {
		return fmt.Errorf("groupwrap: rotate tag: %w", err)
	}
	return g.persist(ctx, rotated)
}

// SetConversationProfile upserts profile (keyed by its InboxID) into
// the conversation's metadata and persists the result.
func (g *Group) SetConversationProfile(ctx context.Context, profile wire.ConversationProfile) error {
	m, _, err := g.currentOrFreshMetadata(ctx)
	if err != nil {
		return fmt.Errorf("groupwrap: load metadata: %w", err)
	}
	next := metadata.UpsertProfile(m, profile)
	return g.persist(ctx, next)
}
