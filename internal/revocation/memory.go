package revocation

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/spec-kit/shop-service/internal/domain"
)

// MemoryLedger records revoked token ids in process memory. Entries are indexed by their
// token's natural expiry so Sweep can drop them once the token could no longer be honored anyway.
type MemoryLedger struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]*ledgerEntry
	byExp   expiryHeap
}

type ledgerEntry struct {
	token domain.RevokedToken
	index int
}

// NewMemoryLedger builds an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		now:     time.Now,
		entries: make(map[string]*ledgerEntry),
	}
}

// Revoke records tokenID and reports whether this call inserted it. Revoking an id twice
// keeps the first revocation time.
func (l *MemoryLedger) Revoke(_ context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.entries[tokenID]; ok {
		if expiresAt.After(existing.token.ExpiresAt) {
			existing.token.ExpiresAt = expiresAt
			heap.Fix(&l.byExp, existing.index)
		}
		return false, nil
	}

	entry := &ledgerEntry{token: domain.RevokedToken{
		TokenID:   tokenID,
		RevokedAt: l.now(),
		ExpiresAt: expiresAt,
	}}
	l.entries[tokenID] = entry
	heap.Push(&l.byExp, entry)
	return true, nil
}

// IsRevoked reports whether tokenID was revoked.
func (l *MemoryLedger) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.entries[tokenID]
	return ok, nil
}

// Lookup returns the revocation record for tokenID.
func (l *MemoryLedger) Lookup(tokenID string) (domain.RevokedToken, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.entries[tokenID]
	if !ok {
		return domain.RevokedToken{}, false
	}
	return entry.token, true
}

// Sweep removes entries whose token expired before now and returns how many were dropped.
func (l *MemoryLedger) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for l.byExp.Len() > 0 && !l.byExp[0].token.ExpiresAt.After(now) {
		entry := heap.Pop(&l.byExp).(*ledgerEntry)
		delete(l.entries, entry.token.TokenID)
		removed++
	}
	return removed
}

// Len returns the number of tracked revocations.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Ping always succeeds; it lets the ledger take part in readiness checks.
func (l *MemoryLedger) Ping(context.Context) error {
	return nil
}

type expiryHeap []*ledgerEntry

func (h expiryHeap) Len() int { return len(h) }

func (h expiryHeap) Less(i, j int) bool {
	return h[i].token.ExpiresAt.Before(h[j].token.ExpiresAt)
}

func (h expiryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expiryHeap) Push(x any) {
	entry := x.(*ledgerEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*h = old[:n-1]
	return entry
}
