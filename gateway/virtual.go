package gateway

import (
	"sync/atomic"

	"chatline/errors"

	"github.com/google/uuid"
)

// VirtualSession is the non-owning web participant implementation of
// domain.Session. Web users poll the history over HTTP instead of holding
// a push connection, so Send accepts and discards lines; registering them
// keeps the registry the single source of truth for counts, names, and
// moderation lookups.
type VirtualSession struct {
	id     uuid.UUID
	name   string
	closed atomic.Bool
}

func NewVirtualSession(name string) *VirtualSession {
	return &VirtualSession{id: uuid.New(), name: name}
}

func (v *VirtualSession) ID() uuid.UUID { return v.id }

func (v *VirtualSession) Name() string { return v.name }

// Send succeeds without delivering; the bridge offers no delivery
// guarantees beyond what the web user polls.
func (v *VirtualSession) Send(string) error {
	if v.closed.Load() {
		return errors.ErrSessionClosed
	}
	return nil
}

func (v *VirtualSession) Alive() bool {
	return !v.closed.Load()
}

func (v *VirtualSession) Close() error {
	v.closed.Store(true)
	return nil
}
