package transport

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"chatline/errors"

	"github.com/google/uuid"
)

// BufferedSession is the socket-backed implementation of domain.Session.
//
// Outbound lines go through a buffered channel drained by a dedicated
// writer goroutine, so a slow transport never stalls the broadcast engine:
// when the buffer is full, Send fails fast and the hub tears the session
// down instead of blocking unrelated deliveries. Per-session write order is
// preserved by the single writer.
type BufferedSession struct {
	id     uuid.UUID
	name   string
	log    *slog.Logger
	conn   LineConn
	out    chan string
	done   chan struct{}
	once   sync.Once
	closed atomic.Bool
}

func NewBufferedSession(log *slog.Logger, name string, conn LineConn, buffer int) *BufferedSession {
	s := &BufferedSession{
		id:   uuid.New(),
		name: name,
		log:  log,
		conn: conn,
		out:  make(chan string, buffer),
		done: make(chan struct{}),
	}
	go s.writePump()
	return s
}

func (s *BufferedSession) ID() uuid.UUID { return s.id }

func (s *BufferedSession) Name() string { return s.name }

// Send queues one line without blocking.
func (s *BufferedSession) Send(text string) error {
	if s.closed.Load() {
		return errors.ErrSessionClosed
	}
	select {
	case s.out <- text:
		return nil
	default:
		return errors.ErrSlowConsumer
	}
}

func (s *BufferedSession) Alive() bool {
	return !s.closed.Load()
}

// Close marks the session dead and closes the transport. Safe to call from
// any goroutine, any number of times.
func (s *BufferedSession) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

func (s *BufferedSession) writePump() {
	for {
		select {
		case <-s.done:
			return
		case text := <-s.out:
			if err := s.conn.WriteLine(text); err != nil {
				s.log.Debug("Write failed, closing session", "name", s.name, "error", err)
				_ = s.Close()
				return
			}
		}
	}
}
