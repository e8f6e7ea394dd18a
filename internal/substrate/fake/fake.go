// Package fake provides an in-memory substrate.Agent for tests and the
// demo harness: no network, no persistence beyond process memory.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/xmtplabs/convos-node-sdk/internal/substrate"
)

// Agent is an in-memory substrate.Agent.
type Agent struct {
	inboxID string

	mu            sync.Mutex
	conversations map[string]*Conversation
	blocked       map[string]bool
	consentRefreshes int
}

// NewAgent constructs an Agent whose identity is inboxID.
func NewAgent(inboxID string) *Agent {
	return &Agent{
		inboxID:       inboxID,
		conversations: make(map[string]*Conversation),
		blocked:       make(map[string]bool),
	}
}

func (a *Agent) InboxID() string                         { return a.inboxID }
func (a *Agent) Conversations() substrate.Conversations   { return (*conversationsHandle)(a) }
func (a *Agent) Contacts() substrate.Contacts             { return (*contactsHandle)(a) }

// Seed registers a conversation directly, for tests that need a
// pre-existing conversation with known id and app_data.
func (a *Agent) Seed(c *Conversation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conversations[c.id] = c
}

// IsBlocked reports whether inboxID has been blocked via Contacts.
func (a *Agent) IsBlocked(inboxID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blocked[inboxID]
}

// ConsentRefreshCount reports how many times RefreshConsentList was
// called.
func (a *Agent) ConsentRefreshCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.consentRefreshes
}

type conversationsHandle Agent

func (h *conversationsHandle) GetByID(_ context.Context, id string) (substrate.Conversation, error) {
	a := (*Agent)(h)
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.conversations[id]
	if !ok {
		return nil, substrate.ErrConversationNotFound
	}
	return c, nil
}

func (h *conversationsHandle) CreateGroup(_ context.Context, members []string, opts substrate.CreateGroupOptions) (substrate.Conversation, error) {
	a := (*Agent)(h)
	a.mu.Lock()
	defer a.mu.Unlock()
	id := fmt.Sprintf("group-%d", len(a.conversations)+1)
	c := &Conversation{id: id, members: append([]string(nil), members...), appData: opts.AppData}
	a.conversations[id] = c
	return c, nil
}

func (h *conversationsHandle) CreateDM(_ context.Context, inboxID string) (substrate.Conversation, error) {
	a := (*Agent)(h)
	a.mu.Lock()
	defer a.mu.Unlock()
	id := "dm-" + inboxID
	if c, ok := a.conversations[id]; ok {
		return c, nil
	}
	c := &Conversation{id: id, members: []string{a.inboxID, inboxID}}
	a.conversations[id] = c
	return c, nil
}

func (h *conversationsHandle) List(_ context.Context) ([]substrate.Conversation, error) {
	a := (*Agent)(h)
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]substrate.Conversation, 0, len(a.conversations))
	for _, c := range a.conversations {
		out = append(out, c)
	}
	return out, nil
}

type contactsHandle Agent

func (h *contactsHandle) RefreshConsentList(_ context.Context) error {
	a := (*Agent)(h)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.consentRefreshes++
	return nil
}

func (h *contactsHandle) Block(_ context.Context, inboxIDs []string) error {
	a := (*Agent)(h)
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range inboxIDs {
		a.blocked[id] = true
	}
	return nil
}

// Conversation is an in-memory substrate.Conversation.
type Conversation struct {
	mu      sync.Mutex
	id      string
	members []string
	appData string
	sent    []substrate.MessageContent
}

func (c *Conversation) ID() string { return c.id }

func (c *Conversation) Send(_ context.Context, content substrate.MessageContent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, content)
	return nil
}

func (c *Conversation) SendText(ctx context.Context, text string) error {
	return c.Send(ctx, substrate.TextContent(text))
}

func (c *Conversation) AddMembers(_ context.Context, inboxIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members = append(c.members, inboxIDs...)
	return nil
}

func (c *Conversation) AppData() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appData
}

func (c *Conversation) UpdateAppData(_ context.Context, appData string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appData = appData
	return nil
}

// Members returns a snapshot of the conversation's member inbox ids.
func (c *Conversation) Members() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.members...)
}

// SentMessages returns a snapshot of every message content sent to
// this conversation.
func (c *Conversation) SentMessages() []substrate.MessageContent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]substrate.MessageContent(nil), c.sent...)
}

// NewConversation constructs a standalone fake conversation, useful
// for seeding an Agent directly with a known id and app_data.
func NewConversation(id, appData string, members ...string) *Conversation {
	return &Conversation{id: id, appData: appData, members: members}
}
