// Package replay provides replay-protection stores for the join
// middleware: once a signed invite's payload hash has been consumed,
// a second delivery of the same bytes is rejected rather than
// re-admitting the joiner or re-running handlers.
package replay

import (
	"context"
	"sync"

	"github.com/xmtplabs/convos-node-sdk/internal/middleware"
)

// MemoryStore is an in-memory replay store, safe for concurrent use.
// It never evicts entries, so it is intended for tests and
// short-lived processes rather than long-running production nodes.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

// MarkUsed reports whether payloadHash was already marked used, and
// marks it used as a side effect if not.
func (s *MemoryStore) MarkUsed(ctx context.Context, payloadHash []byte) (bool, error) {
	key := string(payloadHash)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return true, nil
	}
	s.seen[key] = struct{}{}
	return false, nil
}

var _ middleware.ReplayStore = (*MemoryStore)(nil)
