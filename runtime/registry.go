package runtime

import (
	"strings"
	"sync"

	"chatline/domain"
	"chatline/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Registry is the single source of truth for "who is connected".
// It supports concurrent insert, remove, and full-snapshot iteration;
// snapshots are copies and never observe a half-removed session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.Session
	byName   map[string]uuid.UUID // lowercase display name -> session id
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]domain.Session),
		byName:   make(map[string]uuid.UUID),
	}
}

// Register adds a session. A session appears in the registry at most once,
// an empty display name is declined, and display names are unique
// (case-insensitive) so that lookup-by-name and originator exclusion stay
// unambiguous.
func (r *Registry) Register(s domain.Session) error {
	name := strings.TrimSpace(s.Name())
	if name == "" {
		return errors.ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID()]; ok {
		return errors.ErrDuplicateSession
	}
	key := strings.ToLower(name)
	if _, ok := r.byName[key]; ok {
		return errors.ErrNameTaken
	}
	r.sessions[s.ID()] = s
	r.byName[key] = s.ID()
	return nil
}

// Unregister removes a session by id. It is idempotent: the second call for
// the same id is a no-op and reports false. The removed session is returned
// so callers can emit the leave notice exactly once.
func (r *Registry) Unregister(id uuid.UUID) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	delete(r.sessions, id)
	delete(r.byName, strings.ToLower(s.Name()))
	return s, true
}

// Snapshot returns a copy of the live sessions. Order is not specified;
// consumers must rely on it only for fan-out completeness.
func (r *Registry) Snapshot() []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.sessions)
}

// ByName resolves a live session by display name, case-insensitive.
func (r *Registry) ByName(name string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Names returns the display names of all live sessions.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(lo.Values(r.sessions), func(s domain.Session, _ int) string {
		return s.Name()
	})
}
