// Package game implements the trivia mini-game layered on top of the chat
// broadcast path: a timer-driven question/answer/score state machine.
package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"chatline/contract"
	"chatline/domain"
	"chatline/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingAnswer
)

// Config fixes the engine's timings and winning threshold. None of them
// are configurable per call.
type Config struct {
	QuestionTimeout time.Duration
	NextDelay       time.Duration
	WinningScore    int
}

// Engine is the single process-wide game instance.
//
// Every phase, question, scoreboard and token transition happens under one
// mutex so that "check answer and advance" is a single atomic step with
// respect to concurrent submissions and racing timers. Timers are never
// cancelled; a fired callback is honored only if the generation token it
// captured still matches the live question (a stale timer is a no-op).
type Engine struct {
	mu        sync.Mutex
	log       *slog.Logger
	hub       contract.Broadcaster
	questions []domain.Question
	cfg       Config

	phase       Phase
	questionIdx int
	answer      string
	scores      map[string]int
	token       uint64
}

func NewEngine(log *slog.Logger, hub contract.Broadcaster, questions []domain.Question, cfg Config) *Engine {
	return &Engine{
		log:       log,
		hub:       hub,
		questions: questions,
		cfg:       cfg,
		phase:     PhaseIdle,
		scores:    make(map[string]int),
	}
}

// Start begins a new game: clears the scoreboard, announces the rules, and
// asks the first question. Starting while a game is running is rejected
// with a user-visible notice, leaving the running game untouched.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.phase == PhaseAwaitingAnswer {
		e.mu.Unlock()
		e.say("GAME: A game is already in progress!")
		return errors.ErrGameInProgress
	}
	e.phase = PhaseAwaitingAnswer
	e.scores = make(map[string]int)
	question := e.advanceLocked()
	e.mu.Unlock()

	e.say("CAPITAL GAME STARTED!")
	e.say(fmt.Sprintf("GAME: First to %d correct answers wins!", e.cfg.WinningScore))
	e.say("GAME: Type your answer in the chat to participate!")
	e.announce(question)
	return nil
}

// Stop ends the game from any state and shows the final scoreboard.
// Calling it while idle produces only a notice. The token bump invalidates
// any in-flight question timer, so a late firing cannot resurrect a
// question after the stop.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.phase == PhaseIdle {
		e.mu.Unlock()
		e.say("GAME: No game is currently running!")
		return
	}
	e.phase = PhaseIdle
	e.answer = ""
	e.token++
	board := e.scoreboardLocked()
	e.mu.Unlock()

	e.say("GAME STOPPED!")
	for _, line := range board {
		e.say(line)
	}
}

// Submit evaluates text as an answer from displayName. Matching is trimmed
// and case-insensitive. Exactly one submission is credited per question:
// crediting clears the answer and bumps the token inside the critical
// section, so a racing duplicate sees no-match and a racing timeout sees a
// stale token.
func (e *Engine) Submit(displayName, text string) bool {
	e.mu.Lock()
	if e.phase != PhaseAwaitingAnswer || e.answer == "" {
		e.mu.Unlock()
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(text), e.answer) {
		e.mu.Unlock()
		return false
	}

	e.scores[displayName]++
	score := e.scores[displayName]
	e.answer = ""
	e.token++ // the pending question timer is now stale
	token := e.token

	if score >= e.cfg.WinningScore {
		e.phase = PhaseIdle
		board := e.scoreboardLocked()
		e.mu.Unlock()

		e.say(fmt.Sprintf("CORRECT! %s got it right!", displayName))
		e.say(fmt.Sprintf("GAME OVER! %s WINS!", displayName))
		for _, line := range board {
			e.say(line)
		}
		return true
	}
	e.mu.Unlock()

	e.say(fmt.Sprintf("CORRECT! %s got it right!", displayName))
	e.say(fmt.Sprintf("GAME: %s now has %d point(s)!", displayName, score))
	time.AfterFunc(e.cfg.NextDelay, func() { e.next(token) })
	return true
}

func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase == PhaseAwaitingAnswer
}

// Status reports the game state for a single requesting session.
func (e *Engine) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseAwaitingAnswer {
		return "No game is currently running. Type '/startgame' to start!"
	}
	return "Game in progress! Current question: " + e.questions[e.questionIdx].Text
}

// next re-enters question selection after the post-answer delay. Like
// onTimeout it is honored only while the captured token is still current,
// so a delay armed before a stop cannot leak into a later game.
func (e *Engine) next(token uint64) {
	e.mu.Lock()
	if e.phase != PhaseAwaitingAnswer || token != e.token {
		e.mu.Unlock()
		return
	}
	question := e.advanceLocked()
	e.mu.Unlock()
	e.announce(question)
}

// onTimeout runs when a question timer fires. It is honored only while the
// game is awaiting an answer and the captured token is still current.
func (e *Engine) onTimeout(token uint64) {
	e.mu.Lock()
	if e.phase != PhaseAwaitingAnswer || token != e.token {
		e.log.Debug("Ignoring stale question timer", "token", token)
		e.mu.Unlock()
		return
	}
	missed := e.questions[e.questionIdx].Answer
	question := e.advanceLocked()
	e.mu.Unlock()

	e.say("TIME'S UP! The answer was: " + missed)
	e.announce(question)
}

// advanceLocked picks the next question uniformly at random, advances the
// token, and arms the question timer bound to the new token value.
// Caller holds e.mu.
func (e *Engine) advanceLocked() string {
	e.questionIdx = rand.IntN(len(e.questions))
	e.answer = e.questions[e.questionIdx].Answer
	e.token++
	token := e.token
	time.AfterFunc(e.cfg.QuestionTimeout, func() { e.onTimeout(token) })
	return e.questions[e.questionIdx].Text
}

// announce broadcasts the question text and the time limit.
func (e *Engine) announce(question string) {
	e.say("QUESTION: " + question)
	e.say(fmt.Sprintf("GAME: You have %d seconds to answer!", int(e.cfg.QuestionTimeout.Seconds())))
}

// scoreboardLocked renders the scoreboard, best score first. Caller holds e.mu.
func (e *Engine) scoreboardLocked() []string {
	if len(e.scores) == 0 {
		return []string{"GAME: No scores yet!"}
	}
	entries := lo.Entries(e.scores)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Key < entries[j].Key
	})
	lines := []string{"CURRENT SCORES:"}
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("GAME: %s: %d point(s)", entry.Key, entry.Value))
	}
	return lines
}

func (e *Engine) say(text string) {
	e.hub.Broadcast(uuid.Nil, domain.KindSystem, text)
}
