package workers

import (
	"context"
	stderrors "errors"
	"fmt"
	"line-chat/contract"
	"line-chat/errors"
	"log/slog"
	"net"
	"sync"
	"time"
)

const acceptRetryDelay = 50 * time.Millisecond

// ListenerWorker accepts connections and runs each one on its own goroutine.
// A failing connection never stops the accept loop.
type ListenerWorker struct {
	log      *slog.Logger
	listener net.Listener
	handler  contract.ConnHandler
	wg       sync.WaitGroup
}

func NewListenerWorker(log *slog.Logger, listener net.Listener, handler contract.ConnHandler) *ListenerWorker {
	return &ListenerWorker{log: log, listener: listener, handler: handler}
}

func (w *ListenerWorker) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = w.listener.Close() })
	defer stop()
	// Canceled on listener failure so that open connections end too
	handlerCtx, cancelHandlers := context.WithCancel(ctx)
	defer cancelHandlers()

	for {
		conn, err := w.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				// Handlers close their connection on cancellation
				w.wg.Wait()
				w.log.Debug("Listener stopped", "address", w.listener.Addr().String())
				return nil
			}
			if stderrors.Is(err, net.ErrClosed) {
				w.log.Error("Listener closed unexpectedly", "address", w.listener.Addr().String())
				cancelHandlers()
				w.wg.Wait()
				return fmt.Errorf("%w: %s", errors.ErrListenerClosed, w.listener.Addr().String())
			}
			w.log.Warn("Accept failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(acceptRetryDelay):
			}
			continue
		}

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.handler.HandleConn(handlerCtx, conn)
		}()
	}
}
