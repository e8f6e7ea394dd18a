// Package middleware implements the join-request DM classification
// state machine: the decision procedure that inspects an inbound
// direct message and decides whether to pass it through, block the
// sender, send a structured error, or emit an invite event to
// registered handlers.
package middleware

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"strings"
	"sync"

	"github.com/xmtplabs/convos-node-sdk/internal/appctx"
	"github.com/xmtplabs/convos-node-sdk/internal/invite"
	"github.com/xmtplabs/convos-node-sdk/internal/joinerror"
	"github.com/xmtplabs/convos-node-sdk/internal/logutil"
	"github.com/xmtplabs/convos-node-sdk/internal/substrate"
)

// Outcome is the terminal classification of one DM delivery.
type Outcome int

const (
	OutcomeNotJoinRequest Outcome = iota
	OutcomeBlockSender
	OutcomeSendError
	OutcomeInviteEvent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotJoinRequest:
		return "not_join_request"
	case OutcomeBlockSender:
		return "block_sender"
	case OutcomeSendError:
		return "send_error"
	case OutcomeInviteEvent:
		return "invite_event"
	default:
		return "unknown"
	}
}

// Delivery is the DM delivery context the engine classifies.
type Delivery struct {
	Content       substrate.MessageContent
	SenderInboxID string
	Conversation  substrate.Conversation
}

// InviteEvent is delivered to registered handlers when a DM
// successfully decodes to a live, unexpired invite.
type InviteEvent struct {
	JoinerInboxID  string
	ConversationID string
	InviteTag      string
	Parsed         *invite.Parsed

	engine       *Engine
	ctx          context.Context
	conversation substrate.Conversation
	target       substrate.Conversation
}

// Accept adds the joiner to the invited conversation via the substrate.
func (e *InviteEvent) Accept() error {
	return e.target.AddMembers(e.ctx, []string{e.JoinerInboxID})
}

// Reject sends the error content back in the DM. If errType is the
// zero value, it defaults to joinerror.GenericFailure.
func (e *InviteEvent) Reject(errType joinerror.Type) error {
	if errType == "" {
		errType = joinerror.GenericFailure
	}
	return e.engine.sendError(e.ctx, e.conversation, errType, e.InviteTag)
}

// Handler is invoked for every emitted InviteEvent, in registration
// order.
type Handler func(ctx context.Context, event *InviteEvent)

// ReplayStore records invite payload hashes that have already been
// consumed, for callers that want expires_after_use invites enforced
// as single-use (see DESIGN.md for this package's resolution of that
// behavior). A nil ReplayStore disables enforcement entirely.
type ReplayStore interface {
	MarkUsed(ctx context.Context, payloadHash []byte) (alreadyUsed bool, err error)
}

// AuditLog records the classification outcome of every DM delivery,
// independent of whether a handler ran. A nil AuditLog disables
// auditing.
type AuditLog interface {
	Record(ctx context.Context, outcome Outcome, senderInboxID string, detail string)
}

// Engine is the middleware's stateful core: the creator's identity and
// signing key, the substrate capability handle, and the registered
// invite handlers.
type Engine struct {
	selfInboxID    string
	selfPrivateKey []byte
	conversations  substrate.Conversations
	contacts       substrate.Contacts
	logger         *slog.Logger
	replay         ReplayStore
	audit          AuditLog

	mu       sync.Mutex
	handlers []Handler
}

// Options configures an Engine beyond its required identity and
// substrate handles.
type Options struct {
	Logger *slog.Logger
	Replay ReplayStore
	Audit  AuditLog
}

// NewEngine constructs an Engine for selfInboxID/selfPrivateKey,
// dispatching substrate effects through conversations and contacts.
func NewEngine(selfInboxID string, selfPrivateKey []byte, conversations substrate.Conversations, contacts substrate.Contacts, opts Options) *Engine {
	return &Engine{
		selfInboxID:    selfInboxID,
		selfPrivateKey: selfPrivateKey,
		conversations:  conversations,
		contacts:       contacts,
		logger:         logutil.NoopIfNil(opts.Logger),
		replay:         opts.Replay,
		audit:          opts.Audit,
	}
}

// On registers h to run, in order, for every emitted InviteEvent. It
// is safe to call On concurrently with HandleDelivery; registration
// and dispatch are serialized with respect to each other.
func (e *Engine) On(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, h)
}

// Off removes every handler previously registered via On, resetting
// the handler list to empty.
func (e *Engine) Off() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = nil
}

func (e *Engine) snapshotHandlers() []Handler {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Handler(nil), e.handlers...)
}

func (e *Engine) recordAudit(ctx context.Context, outcome Outcome, senderInboxID, detail string) {
	if e.audit != nil {
		e.audit.Record(ctx, outcome, senderInboxID, detail)
	}
}

// HandleDelivery classifies delivery and drives the resulting terminal
// action. Cryptographic and format errors are consumed locally;
// nothing in the engine propagates a parse/verify error to the caller.
// SubstrateUnavailable-class errors from the conversation lookup are
// the one exception and are returned to the caller.
func (e *Engine) HandleDelivery(ctx context.Context, delivery Delivery) (Outcome, error) {
	baseLogger, ok := appctx.LoggerFromContext(ctx)
	if !ok {
		baseLogger = e.logger
	}
	ctx = appctx.WithDelivery(ctx, baseLogger, appctx.Delivery{JoinerInboxID: delivery.SenderInboxID})
	logger, _ := appctx.LoggerFromContext(ctx)

	text, ok := delivery.Content.ExtractText()
	if !ok {
		return e.classifyNotJoinRequest(ctx, delivery), nil
	}
	if delivery.SenderInboxID == e.selfInboxID {
		return e.classifyNotJoinRequest(ctx, delivery), nil
	}

	parsed, err := invite.Parse(text)
	if err != nil {
		trimmed := strings.TrimSpace(text)
		if invite.SlugPattern.MatchString(trimmed) {
			e.blockSender(ctx, delivery.SenderInboxID)
			e.recordAudit(ctx, OutcomeBlockSender, delivery.SenderInboxID, "malformed invite slug")
			return OutcomeBlockSender, nil
		}
		return e.classifyNotJoinRequest(ctx, delivery), nil
	}

	if string(parsed.Payload.CreatorInboxID) != e.selfInboxID {
		e.blockSender(ctx, delivery.SenderInboxID)
		e.recordAudit(ctx, OutcomeBlockSender, delivery.SenderInboxID, "creator_inbox_id mismatch")
		return OutcomeBlockSender, nil
	}

	if !invite.VerifyWithPrivateKey(parsed.Signed, e.selfPrivateKey) {
		e.blockSender(ctx, delivery.SenderInboxID)
		e.recordAudit(ctx, OutcomeBlockSender, delivery.SenderInboxID, "signature verification failed")
		return OutcomeBlockSender, nil
	}

	ctx = appctx.WithDelivery(ctx, baseLogger, appctx.Delivery{JoinerInboxID: delivery.SenderInboxID, InviteTag: parsed.Payload.Tag})
	logger, _ = appctx.LoggerFromContext(ctx)

	if parsed.IsExpired || parsed.IsConversationExpired {
		e.sendError(ctx, delivery.Conversation, joinerror.ConversationExpired, parsed.Payload.Tag)
		e.recordAudit(ctx, OutcomeSendError, delivery.SenderInboxID, "invite or conversation expired")
		return OutcomeSendError, nil
	}

	conversationID, err := invite.DecryptConversationID(e.selfPrivateKey, parsed.Payload)
	if err != nil {
		e.blockSender(ctx, delivery.SenderInboxID)
		e.recordAudit(ctx, OutcomeBlockSender, delivery.SenderInboxID, "conversation token decrypt failed")
		return OutcomeBlockSender, nil
	}

	ctx = appctx.WithDelivery(ctx, baseLogger, appctx.Delivery{
		JoinerInboxID:  delivery.SenderInboxID,
		InviteTag:      parsed.Payload.Tag,
		ConversationID: conversationID,
	})
	logger, _ = appctx.LoggerFromContext(ctx)

	target, err := e.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if err == substrate.ErrConversationNotFound {
			e.sendError(ctx, delivery.Conversation, joinerror.ConversationExpired, parsed.Payload.Tag)
			e.recordAudit(ctx, OutcomeSendError, delivery.SenderInboxID, "conversation not found")
			return OutcomeSendError, nil
		}
		return OutcomeNotJoinRequest, err
	}

	// expires_after_use is a hint the creator sets on the invite itself;
	// only invites carrying it are subject to single-use enforcement,
	// so multi-use invites must never be marked consumed here.
	if e.replay != nil && parsed.Payload.ExpiresAfterUse {
		hash := sha256.Sum256(parsed.Signed.Payload)
		alreadyUsed, err := e.replay.MarkUsed(ctx, hash[:])
		if err != nil {
			logger.Error("replay store unavailable", "error", err)
		} else if alreadyUsed {
			e.sendError(ctx, delivery.Conversation, joinerror.ConversationExpired, parsed.Payload.Tag)
			e.recordAudit(ctx, OutcomeSendError, delivery.SenderInboxID, "invite already used")
			return OutcomeSendError, nil
		}
	}

	e.recordAudit(ctx, OutcomeInviteEvent, delivery.SenderInboxID, "invite accepted for dispatch")
	e.dispatchInviteEvent(ctx, delivery, parsed, conversationID, target, logger)
	return OutcomeInviteEvent, nil
}

func (e *Engine) classifyNotJoinRequest(ctx context.Context, delivery Delivery) Outcome {
	e.recordAudit(ctx, OutcomeNotJoinRequest, delivery.SenderInboxID, "")
	return OutcomeNotJoinRequest
}

func (e *Engine) dispatchInviteEvent(ctx context.Context, delivery Delivery, parsed *invite.Parsed, conversationID string, target substrate.Conversation, logger *slog.Logger) {
	event := &InviteEvent{
		JoinerInboxID:  delivery.SenderInboxID,
		ConversationID: conversationID,
		InviteTag:      parsed.Payload.Tag,
		Parsed:         parsed,
		engine:         e,
		ctx:            ctx,
		conversation:   delivery.Conversation,
		target:         target,
	}

	for _, h := range e.snapshotHandlers() {
		e.runHandlerSafely(ctx, h, event, logger)
	}
}

// runHandlerSafely invokes h, containing any panic and converting it
// into a GenericFailure error sent back to the joiner.
func (e *Engine) runHandlerSafely(ctx context.Context, h Handler, event *InviteEvent, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("invite handler panicked", "panic", r)
			e.sendError(ctx, event.conversation, joinerror.GenericFailure, event.InviteTag)
		}
	}()
	h(ctx, event)
}

// blockSender refreshes the consent list then blocks senderInboxID.
// Failures of either step are swallowed; this is a fire-and-forget
// action.
func (e *Engine) blockSender(ctx context.Context, senderInboxID string) {
	_ = e.contacts.RefreshConsentList(ctx)
	_ = e.contacts.Block(ctx, []string{senderInboxID})
}

// sendError encodes a join-error Content and delivers it on
// conversation. Failures are swallowed.
func (e *Engine) sendError(ctx context.Context, conversation substrate.Conversation, errType joinerror.Type, inviteTag string) error {
	content := joinerror.New(errType, inviteTag)
	encoded, err := joinerror.Encode(content)
	if err != nil {
		return err
	}
	_ = conversation.Send(ctx, substrate.BytesContent(encoded))
	return nil
}
