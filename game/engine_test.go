package game

import (
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"chatline/domain"
	"chatline/errors"
	"chatline/mocks"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// broadcastRecorder captures every hub broadcast so assertions can look at
// the emitted lines without caring about call counts.
type broadcastRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *broadcastRecorder) record(_ uuid.UUID, _ domain.EntryKind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
}

func (r *broadcastRecorder) countPrefix(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, line := range r.lines {
		if strings.HasPrefix(line, prefix) {
			count++
		}
	}
	return count
}

func (r *broadcastRecorder) contains(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range r.lines {
		if line == text {
			return true
		}
	}
	return false
}

func singleQuestion() []domain.Question {
	return []domain.Question{{Text: "What is the capital of France?", Answer: "Paris"}}
}

func newEngineFixture(t *testing.T, cfg Config) (*Engine, *broadcastRecorder) {
	t.Helper()
	ctrl := gomock.NewController(t)
	hub := mocks.NewMockBroadcaster(ctrl)
	recorder := &broadcastRecorder{}
	hub.EXPECT().Broadcast(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(recorder.record).AnyTimes()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewEngine(log, hub, singleQuestion(), cfg), recorder
}

func TestEngine_Start_Asks_A_Question(t *testing.T) {
	req := require.New(t)
	engine, recorder := newEngineFixture(t, Config{
		QuestionTimeout: time.Hour, NextDelay: time.Hour, WinningScore: 5,
	})

	req.NoError(engine.Start())

	req.True(engine.Active())
	req.True(recorder.contains("CAPITAL GAME STARTED!"))
	req.Equal(1, recorder.countPrefix("QUESTION: "))
}

func TestEngine_Start_Twice_Rejects_Second(t *testing.T) {
	req := require.New(t)
	engine, recorder := newEngineFixture(t, Config{
		QuestionTimeout: time.Hour, NextDelay: time.Hour, WinningScore: 5,
	})
	req.NoError(engine.Start())

	// When a second start arrives mid-game
	err := engine.Start()

	// Then the running game is untouched and only a notice is produced
	req.ErrorIs(err, errors.ErrGameInProgress)
	req.True(engine.Active())
	req.True(recorder.contains("GAME: A game is already in progress!"))
	req.Equal(1, recorder.countPrefix("QUESTION: "))
}

func TestEngine_Submit_Matches_Trimmed_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	engine, recorder := newEngineFixture(t, Config{
		QuestionTimeout: time.Hour, NextDelay: time.Hour, WinningScore: 5,
	})
	req.NoError(engine.Start())

	req.True(engine.Submit("alice", "  pArIs  "))
	req.True(recorder.contains("CORRECT! alice got it right!"))
	req.True(recorder.contains("GAME: alice now has 1 point(s)!"))
}

func TestEngine_Submit_No_Match_Without_Game(t *testing.T) {
	req := require.New(t)
	engine, _ := newEngineFixture(t, Config{
		QuestionTimeout: time.Hour, NextDelay: time.Hour, WinningScore: 5,
	})

	req.False(engine.Submit("alice", "Paris"))
}

func TestEngine_Submit_Credited_Question_Rejects_Duplicates(t *testing.T) {
	req := require.New(t)
	engine, _ := newEngineFixture(t, Config{
		QuestionTimeout: time.Hour, NextDelay: time.Hour, WinningScore: 5,
	})
	req.NoError(engine.Start())

	req.True(engine.Submit("alice", "Paris"))

	// The answer has already changed; a late duplicate sees no-match
	req.False(engine.Submit("bob", "Paris"))
}

func TestEngine_Concurrent_Submits_Credit_Exactly_One(t *testing.T) {
	req := require.New(t)
	engine, _ := newEngineFixture(t, Config{
		QuestionTimeout: time.Hour, NextDelay: time.Hour, WinningScore: 50,
	})
	req.NoError(engine.Start())

	const racers = 10
	var wg sync.WaitGroup
	results := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- engine.Submit(string(rune('a'+n)), "Paris")
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for matched := range results {
		if matched {
			wins++
		}
	}
	req.Equal(1, wins)
}

func TestEngine_Timeout_Advances_To_Next_Question(t *testing.T) {
	req := require.New(t)
	engine, recorder := newEngineFixture(t, Config{
		QuestionTimeout: 20 * time.Millisecond, NextDelay: time.Hour, WinningScore: 5,
	})
	req.NoError(engine.Start())

	// When nobody answers in time
	time.Sleep(80 * time.Millisecond)

	// Then the timeout was honored and a fresh question asked
	req.True(recorder.contains("TIME'S UP! The answer was: Paris"))
	req.GreaterOrEqual(recorder.countPrefix("QUESTION: "), 2)
	req.True(engine.Active())
}

func TestEngine_Stale_Timer_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	engine, recorder := newEngineFixture(t, Config{
		QuestionTimeout: 30 * time.Millisecond, NextDelay: time.Hour, WinningScore: 5,
	})
	req.NoError(engine.Start())

	// Given the question was answered before its timer fired
	req.True(engine.Submit("alice", "Paris"))

	// When the original timer's deadline passes
	time.Sleep(90 * time.Millisecond)

	// Then the stale timer changed nothing
	req.Equal(0, recorder.countPrefix("TIME'S UP!"))
	req.Equal(1, recorder.countPrefix("QUESTION: "))
}

func TestEngine_Stale_Next_Question_Delay_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	engine, recorder := newEngineFixture(t, Config{
		QuestionTimeout: time.Hour, NextDelay: 50 * time.Millisecond, WinningScore: 5,
	})

	// Given a correct answer armed the next-question delay, and the game
	// was stopped and restarted before that delay fired
	req.NoError(engine.Start())
	req.True(engine.Submit("alice", "Paris"))
	engine.Stop()
	req.NoError(engine.Start())

	// When the first game's delay deadline passes
	time.Sleep(150 * time.Millisecond)

	// Then the second game's question is untouched: one question per start
	req.Equal(2, recorder.countPrefix("QUESTION: "))
	req.True(engine.Active())
}

func TestEngine_Winning_Score_Ends_The_Game(t *testing.T) {
	req := require.New(t)
	engine, recorder := newEngineFixture(t, Config{
		QuestionTimeout: time.Hour, NextDelay: time.Hour, WinningScore: 1,
	})
	req.NoError(engine.Start())

	req.True(engine.Submit("alice", "Paris"))

	req.False(engine.Active())
	req.True(recorder.contains("GAME OVER! alice WINS!"))
	req.True(recorder.contains("GAME: alice: 1 point(s)"))

	// A finished game matches nothing
	req.False(engine.Submit("bob", "Paris"))
}

func TestEngine_Stop_Invalidates_Pending_Timer(t *testing.T) {
	req := require.New(t)
	engine, recorder := newEngineFixture(t, Config{
		QuestionTimeout: 30 * time.Millisecond, NextDelay: time.Hour, WinningScore: 5,
	})
	req.NoError(engine.Start())

	engine.Stop()
	time.Sleep(90 * time.Millisecond)

	req.False(engine.Active())
	req.True(recorder.contains("GAME STOPPED!"))
	req.Equal(0, recorder.countPrefix("TIME'S UP!"))
}

func TestEngine_Stop_While_Idle_Is_A_Notice(t *testing.T) {
	req := require.New(t)
	engine, recorder := newEngineFixture(t, Config{
		QuestionTimeout: time.Hour, NextDelay: time.Hour, WinningScore: 5,
	})

	engine.Stop()

	req.True(recorder.contains("GAME: No game is currently running!"))
	req.False(engine.Active())
}

func TestEngine_Status_Reflects_Phase(t *testing.T) {
	req := require.New(t)
	engine, _ := newEngineFixture(t, Config{
		QuestionTimeout: time.Hour, NextDelay: time.Hour, WinningScore: 5,
	})

	req.Contains(engine.Status(), "No game is currently running")

	req.NoError(engine.Start())
	req.Contains(engine.Status(), "What is the capital of France?")
}
