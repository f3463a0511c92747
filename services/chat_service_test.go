package services

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"chatline/domain"
	"chatline/mocks"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var errSink = errors.New("sink unavailable")

type scriptedSession struct {
	id   uuid.UUID
	name string

	mu    sync.Mutex
	lines []string
	fail  error
}

func newScriptedSession(name string) *scriptedSession {
	return &scriptedSession{id: uuid.New(), name: name}
}

func (s *scriptedSession) ID() uuid.UUID { return s.id }
func (s *scriptedSession) Name() string  { return s.name }
func (s *scriptedSession) Alive() bool   { return true }
func (s *scriptedSession) Close() error  { return nil }

func (s *scriptedSession) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.lines = append(s.lines, text)
	return nil
}

func (s *scriptedSession) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

type serviceFixture struct {
	svc      *ChatService
	hub      *mocks.MockHub
	registry *mocks.MockIRegistry
	history  *mocks.MockIHistory
	game     *mocks.MockIGame
}

func newServiceFixture(t *testing.T) *serviceFixture {
	ctrl := gomock.NewController(t)
	hub := mocks.NewMockHub(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	history := mocks.NewMockIHistory(ctrl)
	game := mocks.NewMockIGame(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return &serviceFixture{
		svc:      NewChatService(log, hub, registry, history, game),
		hub:      hub,
		registry: registry,
		history:  history,
		game:     game,
	}
}

func TestHandleLine_Quit_Sentinel_Ends_The_Session(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	alice := newScriptedSession("alice")

	req.True(f.svc.HandleLine(alice, "quit"))
	req.True(f.svc.HandleLine(alice, "  QUIT  "))
}

func TestHandleLine_Blank_Lines_Are_Dropped(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	alice := newScriptedSession("alice")

	// No hub or game expectations: a blank line must touch nothing.
	req.False(f.svc.HandleLine(alice, ""))
	req.False(f.svc.HandleLine(alice, "   \t "))
}

func TestHandleLine_Broadcasts_Plain_Chat_With_Author_Prefix(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	alice := newScriptedSession("alice")

	f.game.EXPECT().Active().Return(false)
	f.hub.EXPECT().Broadcast(alice.ID(), domain.KindChat, "alice: hello all").Times(1)

	req.False(f.svc.HandleLine(alice, "hello all"))
}

func TestHandleLine_Correct_Answer_Short_Circuits_Chat(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	alice := newScriptedSession("alice")

	// Given an active game that accepts the line as a correct answer
	f.game.EXPECT().Active().Return(true)
	f.game.EXPECT().Submit("alice", "Paris").Return(true)
	// Then no chat broadcast happens (strict mock asserts this)

	req.False(f.svc.HandleLine(alice, "Paris"))
}

func TestHandleLine_Wrong_Answer_Falls_Through_To_Chat(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	alice := newScriptedSession("alice")

	f.game.EXPECT().Active().Return(true)
	f.game.EXPECT().Submit("alice", "Lyon").Return(false)
	f.hub.EXPECT().Broadcast(alice.ID(), domain.KindChat, "alice: Lyon").Times(1)

	req.False(f.svc.HandleLine(alice, "Lyon"))
}

func TestHandleLine_Commands_Drive_The_Game(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	alice := newScriptedSession("alice")

	f.game.EXPECT().Start().Return(nil)
	req.False(f.svc.HandleLine(alice, "/startgame"))

	f.game.EXPECT().Stop()
	req.False(f.svc.HandleLine(alice, "/STOPGAME"))

	f.game.EXPECT().Status().Return("No game is currently running. Type '/startgame' to start!")
	req.False(f.svc.HandleLine(alice, "/status"))
	req.Equal([]string{"No game is currently running. Type '/startgame' to start!"}, alice.Lines())
}

func TestReplay_Writes_History_In_Append_Order(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	alice := newScriptedSession("alice")

	now := time.Now().UTC()
	f.history.EXPECT().Drain().Return([]domain.HistoryEntry{
		{At: now, Kind: domain.KindJoin, Text: "SERVER: bob has joined the chat!"},
		{At: now, Kind: domain.KindChat, Text: "bob: hi"},
	})

	f.svc.Replay(alice)

	req.Equal([]string{"SERVER: bob has joined the chat!", "bob: hi"}, alice.Lines())
}

func TestReplay_Stops_At_First_Send_Failure(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	alice := newScriptedSession("alice")
	alice.fail = errSink

	now := time.Now().UTC()
	f.history.EXPECT().Drain().Return([]domain.HistoryEntry{
		{At: now, Kind: domain.KindChat, Text: "bob: hi"},
		{At: now, Kind: domain.KindChat, Text: "bob: still there?"},
	})

	f.svc.Replay(alice)

	req.Empty(alice.Lines())
}

func TestInject_Broadcasts_Without_An_Originator(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)

	f.hub.EXPECT().Broadcast(uuid.Nil, domain.KindChat, "webuser: hi from the browser").Times(1)

	f.svc.Inject("webuser", "hi from the browser")
	req.NotNil(f.svc)
}

func TestJoin_And_Leave_Delegate_To_The_Hub(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	alice := newScriptedSession("alice")

	f.hub.EXPECT().Attach(alice).Return(nil)
	req.NoError(f.svc.Join(alice))

	f.hub.EXPECT().Detach(alice.ID()).Return(true)
	f.svc.Leave(alice.ID())
}
