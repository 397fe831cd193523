//go:generate go run go.uber.org/mock/mockgen -source=sink.go -destination=../mocks/mock_sink.go -package=mocks
package domain

import "context"

// Sink is the write side of a connection.
// Send must deliver a whole line or nothing, Close must be idempotent.
type Sink interface {
	Send(ctx context.Context, line string) error
	Close() error
}
