package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
	ErrSinkClosed      = fmt.Errorf("sink is closed")
	ErrDeliveryTimeout = fmt.Errorf("delivery timeout, outbox is full")
	ErrUnknownCommand  = fmt.Errorf("unknown command")
	ErrMissingArgument = fmt.Errorf("command requires an argument")
	ErrInvalidDelay    = fmt.Errorf("delay must be a non-negative number of minutes")
	ErrNotACommand     = fmt.Errorf("line is not a command")

	// ErrFatalWorker stops the supervisor instead of restarting the worker
	ErrFatalWorker    = fmt.Errorf("fatal worker error")
	ErrListenerClosed = fmt.Errorf("%w: listener closed", ErrFatalWorker)
)
