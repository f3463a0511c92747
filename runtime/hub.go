// Package runtime wires sessions, fan-out, and supervision together.
// It orchestrates delivery without containing chat or game rules.
package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chatline/contract"
	"chatline/domain"

	"github.com/google/uuid"
)

// Sanitizer rewrites chat text before it is recorded and delivered.
type Sanitizer interface {
	Clean(text string) string
}

// Hub is the broadcast engine. A single mutex serializes history appends
// and fan-out so that two concurrent broadcasts never interleave their
// history entries or their per-session delivery order.
//
// Per-recipient write failures are isolated: the failing session is closed
// and detached, the rest of the fan-out proceeds, and nothing is raised to
// the caller.
type Hub struct {
	mu       sync.Mutex
	log      *slog.Logger
	registry contract.IRegistry
	history  contract.IHistory
	censor   Sanitizer // optional
}

func NewHub(log *slog.Logger, registry contract.IRegistry, history contract.IHistory, censor Sanitizer) *Hub {
	return &Hub{log: log, registry: registry, history: history, censor: censor}
}

// Broadcast appends text to the history exactly once, then delivers it to
// every session in a fresh registry snapshot except the originator.
// uuid.Nil means a server-originated message with no originator.
func (h *Hub) Broadcast(originator uuid.UUID, kind domain.EntryKind, text string) {
	if h.censor != nil && kind == domain.KindChat {
		text = h.censor.Clean(text)
	}

	h.mu.Lock()
	h.history.Append(domain.HistoryEntry{At: time.Now().UTC(), Kind: kind, Text: text})

	var failed []domain.Session
	for _, s := range h.registry.Snapshot() {
		if s.ID() == originator {
			continue
		}
		if err := s.Send(text); err != nil {
			h.log.Warn("Dropping unwritable session",
				"name", s.Name(), "error", err)
			failed = append(failed, s)
		}
	}
	h.mu.Unlock()

	// Cleanup happens outside the fan-out lock: Detach broadcasts the
	// leave notice and takes the same mutex.
	for _, s := range failed {
		_ = s.Close()
		h.Detach(s.ID())
	}
}

// Attach registers a session and announces it. The join notice is excluded
// from the new session's own sink; the joiner catches up via the history
// replay performed by the join handshake.
func (h *Hub) Attach(s domain.Session) error {
	if err := h.registry.Register(s); err != nil {
		return err
	}
	h.Broadcast(s.ID(), domain.KindJoin, fmt.Sprintf("SERVER: %s has joined the chat!", s.Name()))
	return nil
}

// Detach removes a session and announces the departure. Idempotent: a
// second call for the same id is a no-op, so the leave notice is emitted
// exactly once no matter how many paths race to clean the session up.
func (h *Hub) Detach(id uuid.UUID) bool {
	s, ok := h.registry.Unregister(id)
	if !ok {
		return false
	}
	h.Broadcast(uuid.Nil, domain.KindLeave, fmt.Sprintf("SERVER: %s has left the chat.", s.Name()))
	return true
}
