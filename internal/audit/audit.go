// Package audit records join-decision outcomes (every invite the
// middleware engine classified, and what it decided) for later
// inspection. It backs middleware.AuditLog.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/xmtplabs/convos-node-sdk/internal/middleware"
)

// Entry is one recorded join decision.
type Entry struct {
	Outcome       middleware.Outcome
	SenderInboxID string
	Detail        string
	RecordedAt    time.Time
}

// MemoryLog is an in-memory audit log, safe for concurrent use.
type MemoryLog struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryLog returns an empty MemoryLog.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Record appends an entry.
func (l *MemoryLog) Record(ctx context.Context, outcome middleware.Outcome, senderInboxID, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{
		Outcome:       outcome,
		SenderInboxID: senderInboxID,
		Detail:        detail,
		RecordedAt:    time.Now(),
	})
}

// Entries returns a copy of all recorded entries, oldest first.
func (l *MemoryLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

var _ middleware.AuditLog = (*MemoryLog)(nil)
