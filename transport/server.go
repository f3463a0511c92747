package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"chatline/auth"
	"chatline/services"
)

const (
	handshakeOK     = "OK"
	handshakeRetry  = "Incorrect password. Please try again."
	promptShakeFail = "SERVER: %v"
)

// Server accepts TCP connections and runs the join handshake and inbound
// loop for each. It implements contract.Worker and is run under the
// supervisor; one misbehaving connection never takes the accept loop down
// (each connection lives in its own goroutine with its own teardown path).
type Server struct {
	log        *slog.Logger
	addr       string
	secretHash string
	svc        services.IChatService
	buffer     int
}

func NewServer(log *slog.Logger, addr, secretHash string, svc services.IChatService, buffer int) *Server {
	return &Server{log: log, addr: addr, secretHash: secretHash, svc: svc, buffer: buffer}
}

// Run listens and accepts until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("chat listener on %s: %w", s.addr, err)
	}
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	s.log.Info("Chat server listening", "address", s.addr)
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.ServeConn(ctx, newTCPConn(conn))
	}
}

// ServeConn drives one connection through handshake, join, and the inbound
// line loop. Shared by the TCP accept loop and the websocket upgrade.
func (s *Server) ServeConn(ctx context.Context, conn LineConn) {
	defer func() { _ = conn.Close() }()

	name, err := s.handshake(conn)
	if err != nil {
		s.log.Debug("Handshake aborted", "error", err)
		return
	}

	sess := NewBufferedSession(s.log, name, conn, s.buffer)
	defer func() { _ = sess.Close() }()

	// Late joiners catch up before being announced.
	s.svc.Replay(sess)

	if err := s.svc.Join(sess); err != nil {
		_ = conn.WriteLine(fmt.Sprintf(promptShakeFail, err))
		return
	}
	defer s.svc.Leave(sess.ID())

	for {
		if ctx.Err() != nil {
			return
		}
		line, err := conn.ReadLine()
		if err != nil {
			// Connection gone; the deferred Leave broadcasts the
			// departure.
			return
		}
		if s.svc.HandleLine(sess, line) {
			return
		}
	}
}

// handshake runs the password gate, then reads the display name. Wrong
// passwords are re-prompted, matching the line protocol the clients speak.
func (s *Server) handshake(conn LineConn) (string, error) {
	for {
		candidate, err := conn.ReadLine()
		if err != nil {
			return "", err
		}
		ok, err := auth.VerifySecret(candidate, s.secretHash)
		if err != nil {
			return "", err
		}
		if ok {
			if err := conn.WriteLine(handshakeOK); err != nil {
				return "", err
			}
			break
		}
		if err := conn.WriteLine(handshakeRetry); err != nil {
			return "", err
		}
	}

	name, err := conn.ReadLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}
