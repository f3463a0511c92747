// Package services exposes the chat core to the transports and the
// gateway as one cohesive surface.
package services

import (
	"fmt"
	"log/slog"
	"strings"

	"chatline/contract"
	"chatline/domain"

	"github.com/google/uuid"
)

// Chat commands recognized in the inbound line stream.
const (
	cmdStartGame = "/startgame"
	cmdStopGame  = "/stopgame"
	cmdStatus    = "/status"
)

type IChatService interface {
	Join(s domain.Session) error
	Leave(id uuid.UUID)
	Replay(s domain.Session)
	HandleLine(s domain.Session, line string) (quit bool)
	Inject(author, text string)
	SessionCount() int
	SessionNames() []string
	Sessions() []domain.Session
	History() []domain.HistoryEntry
	GameStatus() string
}

// ChatService routes each session's inbound lines: the quit sentinel ends
// the session, slash commands drive the game, an active game gets first
// look at every line as a candidate answer, and the rest is broadcast as
// plain chat.
type ChatService struct {
	log      *slog.Logger
	hub      contract.Hub
	registry contract.IRegistry
	history  contract.IHistory
	game     contract.IGame
}

func NewChatService(log *slog.Logger, hub contract.Hub, registry contract.IRegistry,
	history contract.IHistory, game contract.IGame) *ChatService {
	return &ChatService{log: log, hub: hub, registry: registry, history: history, game: game}
}

// Join registers the session and announces it. The caller performs the
// history replay first so the joiner sees the room before being seen.
func (s *ChatService) Join(sess domain.Session) error {
	return s.hub.Attach(sess)
}

// Leave tears a session down through the idempotent detach path.
func (s *ChatService) Leave(id uuid.UUID) {
	s.hub.Detach(id)
}

// Replay writes the full history to one session, in append order.
func (s *ChatService) Replay(sess domain.Session) {
	for _, entry := range s.history.Drain() {
		if err := sess.Send(entry.Text); err != nil {
			s.log.Debug("History replay interrupted", "name", sess.Name(), "error", err)
			return
		}
	}
}

// HandleLine processes one inbound line from a session. It reports whether
// the session asked to quit; the transport loop owns the actual teardown.
func (s *ChatService) HandleLine(sess domain.Session, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.EqualFold(line, domain.QuitSentinel) {
		return true
	}

	switch strings.ToLower(line) {
	case cmdStartGame:
		_ = s.game.Start()
		return false
	case cmdStopGame:
		s.game.Stop()
		return false
	case cmdStatus:
		if err := sess.Send(s.game.Status()); err != nil {
			s.log.Debug("Status not delivered", "name", sess.Name(), "error", err)
		}
		return false
	}

	// An active game gets first look: a correct answer short-circuits the
	// normal chat broadcast.
	if s.game.Active() && s.game.Submit(sess.Name(), line) {
		return false
	}

	s.hub.Broadcast(sess.ID(), domain.KindChat, fmt.Sprintf("%s: %s", sess.Name(), line))
	return false
}

// Inject broadcasts a message on behalf of a non-owning participant such
// as the web bridge. There is no originator to exclude.
func (s *ChatService) Inject(author, text string) {
	s.hub.Broadcast(uuid.Nil, domain.KindChat, fmt.Sprintf("%s: %s", author, text))
}

func (s *ChatService) SessionCount() int { return s.registry.Count() }

func (s *ChatService) SessionNames() []string { return s.registry.Names() }

func (s *ChatService) Sessions() []domain.Session { return s.registry.Snapshot() }

func (s *ChatService) History() []domain.HistoryEntry { return s.history.Drain() }

func (s *ChatService) GameStatus() string { return s.game.Status() }
