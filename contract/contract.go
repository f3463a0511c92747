//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chatline/domain"

	"github.com/google/uuid"
)

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker lifecycle
// events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Broadcaster fans one line out to every registered session but the
// originator. uuid.Nil as originator means a server-originated message
// delivered to everyone.
type Broadcaster interface {
	Broadcast(originator uuid.UUID, kind domain.EntryKind, text string)
}

// Hub is the full broadcast engine surface: fan-out plus session
// attachment. Attach emits the join notice, Detach the leave notice.
// Detach is idempotent.
type Hub interface {
	Broadcaster
	Attach(s domain.Session) error
	Detach(id uuid.UUID) bool
}

type IRegistry interface {
	Register(s domain.Session) error
	Unregister(id uuid.UUID) (domain.Session, bool)
	Snapshot() []domain.Session
	ByName(name string) (domain.Session, bool)
	Count() int
	Names() []string
}

type IHistory interface {
	Append(e domain.HistoryEntry)
	Drain() []domain.HistoryEntry
	Len() int
}

type IGame interface {
	Start() error
	Stop()
	Submit(displayName, text string) bool
	Active() bool
	Status() string
}

type IModerator interface {
	Remove(ctx context.Context, displayName string) error
}
