package runtime

import (
	"sync"

	"chatline/errors"

	"github.com/google/uuid"
)

// fakeSession records delivered lines; it can be told to fail writes to
// exercise the hub's isolation path.
type fakeSession struct {
	id   uuid.UUID
	name string

	mu     sync.Mutex
	lines  []string
	fail   bool
	closed bool
}

func newFakeSession(name string) *fakeSession {
	return &fakeSession{id: uuid.New(), name: name}
}

func (f *fakeSession) ID() uuid.UUID { return f.id }

func (f *fakeSession) Name() string { return f.name }

func (f *fakeSession) Send(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.ErrSessionClosed
	}
	if f.fail {
		return errors.ErrSlowConsumer
	}
	f.lines = append(f.lines, text)
	return nil
}

func (f *fakeSession) Alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}
