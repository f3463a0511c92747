package transport

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"chatline/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// scriptConn replays a fixed sequence of inbound lines and records every
// outbound line. The gate channel, when set, blocks WriteLine so buffer
// pressure can be produced deterministically.
type scriptConn struct {
	mu      sync.Mutex
	inbound []string
	written []string
	closed  bool
	gate    chan struct{}
}

func newScriptConn(inbound ...string) *scriptConn {
	return &scriptConn{inbound: inbound}
}

func (c *scriptConn) ReadLine() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.inbound) == 0 {
		return "", io.EOF
	}
	line := c.inbound[0]
	c.inbound = c.inbound[1:]
	return line, nil
}

func (c *scriptConn) WriteLine(text string) error {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return io.ErrClosedPipe
	}
	c.written = append(c.written, text)
	return nil
}

func (c *scriptConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *scriptConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *scriptConn) Written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.written))
	copy(out, c.written)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestBufferedSession_Writes_Queued_Lines_In_Order(t *testing.T) {
	req := require.New(t)
	conn := newScriptConn()
	sess := NewBufferedSession(logs.GetLoggerFromLevel(slog.LevelDebug), "alice", conn, 8)
	defer func() { _ = sess.Close() }()

	req.NoError(sess.Send("first"))
	req.NoError(sess.Send("second"))
	req.NoError(sess.Send("third"))

	waitFor(t, func() bool { return len(conn.Written()) == 3 })
	req.Equal([]string{"first", "second", "third"}, conn.Written())
}

func TestBufferedSession_Fails_Fast_When_Buffer_Is_Full(t *testing.T) {
	req := require.New(t)
	conn := newScriptConn()
	conn.gate = make(chan struct{})
	sess := NewBufferedSession(logs.GetLoggerFromLevel(slog.LevelDebug), "alice", conn, 1)
	defer func() { _ = sess.Close() }()

	// The writer goroutine parks on the gated write. At most one line can be
	// in flight and one in the buffer slot, so the third send must refuse.
	var err error
	accepted := 0
	for err == nil && accepted < 10 {
		if err = sess.Send("line"); err == nil {
			accepted++
		}
	}
	req.ErrorIs(err, errors.ErrSlowConsumer)
	req.LessOrEqual(accepted, 2)

	close(conn.gate)
}

func TestBufferedSession_Send_After_Close_Is_Refused(t *testing.T) {
	req := require.New(t)
	conn := newScriptConn()
	sess := NewBufferedSession(logs.GetLoggerFromLevel(slog.LevelDebug), "alice", conn, 8)

	req.True(sess.Alive())
	req.NoError(sess.Close())
	req.False(sess.Alive())

	req.ErrorIs(sess.Send("too late"), errors.ErrSessionClosed)
	req.True(conn.Closed())
}

func TestBufferedSession_Close_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	conn := newScriptConn()
	sess := NewBufferedSession(logs.GetLoggerFromLevel(slog.LevelDebug), "alice", conn, 8)

	req.NoError(sess.Close())
	req.NoError(sess.Close())
}

func TestBufferedSession_Closes_Itself_On_Write_Failure(t *testing.T) {
	req := require.New(t)
	conn := newScriptConn()
	_ = conn.Close()
	sess := NewBufferedSession(logs.GetLoggerFromLevel(slog.LevelDebug), "alice", conn, 8)

	req.NoError(sess.Send("doomed"))

	waitFor(t, func() bool { return !sess.Alive() })
}
