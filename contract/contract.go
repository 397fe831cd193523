//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"line-chat/domain"
	"net"
	"reflect"
	"time"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
	Err() error
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
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

type IRegistry interface {
	Register(session *domain.Session) uuid.UUID
	Unregister(id uuid.UUID)
	Snapshot() []*domain.Session
	FindByNickname(nickname string) (*domain.Session, bool)
	FindAllByNickname(nickname string) []*domain.Session
	Len() int
}

// IScheduler runs one-shot actions after a delay, on their own goroutine.
type IScheduler interface {
	Schedule(delay time.Duration, action func())
	Pending() int
}

// IBroadcaster delivers a line to every registered session but the excluded ones.
type IBroadcaster interface {
	Broadcast(ctx context.Context, line string, exclude ...uuid.UUID) int
}

type ICensor interface {
	Censor(content string) (string, []string)
}

type ConnHandler interface {
	HandleConn(ctx context.Context, conn net.Conn)
}
