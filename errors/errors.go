package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrEmptyName        = fmt.Errorf("display name is empty")
	ErrNameTaken        = fmt.Errorf("display name already in use")
	ErrDuplicateSession = fmt.Errorf("session id already registered")
	ErrSessionNotFound  = fmt.Errorf("no session with that name")
	ErrSessionClosed    = fmt.Errorf("session closed")
	ErrSlowConsumer     = fmt.Errorf("outbound buffer full")
	ErrGameInProgress   = fmt.Errorf("a game is already in progress")
	ErrNoGameRunning    = fmt.Errorf("no game is currently running")
	ErrEmptyWords       = fmt.Errorf("no censored words have been found")
	ErrBadHashFormat    = fmt.Errorf("invalid password hash format")
)
