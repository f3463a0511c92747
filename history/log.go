// Package history keeps the ordered record of broadcast messages so that
// late joiners can replay the conversation. Handles ordering only; it does
// not emit events or interact with transports directly.
package history

import (
	"sync"

	"chatline/domain"
)

// Log is an append-only ordered buffer of broadcast entries.
// Growth is unbounded: this design has no eviction policy, matching the
// lifetime of a single chat process.
type Log struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
}

func NewLog() *Log {
	return &Log{entries: nil}
}

// Append records one entry. Entries are never mutated or reordered after
// append; total order follows the broadcast engine's serialization.
func (l *Log) Append(e domain.HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Drain returns a copy of all entries so far, in append order.
// Used once per session at join time for the replay.
func (l *Log) Drain() []domain.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
