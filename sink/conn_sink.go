package sink

import (
	"context"
	stderrors "errors"
	"io"
	"line-chat/errors"
	"log/slog"
	"net"
	"sync"
	"time"
)

// ConnSink is the write side of one TCP connection.
// Lines are queued in a buffered outbox and written by a single goroutine,
// so a line is never interleaved with another one and lines queued by the
// same goroutine keep their order.
type ConnSink struct {
	conn            net.Conn
	log             *slog.Logger
	outbox          chan string
	writeTimeout    time.Duration
	deliveryTimeout time.Duration

	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
}

func NewConnSink(log *slog.Logger, conn net.Conn, bufferSize int,
	writeTimeout, deliveryTimeout time.Duration) *ConnSink {
	s := &ConnSink{
		conn:            conn,
		log:             log,
		outbox:          make(chan string, bufferSize),
		writeTimeout:    writeTimeout,
		deliveryTimeout: deliveryTimeout,
		done:            make(chan struct{}),
	}
	go s.run()
	return s
}

// Send queues one line. When the outbox is full it waits at most
// deliveryTimeout, so a slow reader cannot stall the sender's flow.
func (s *ConnSink) Send(ctx context.Context, line string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.ErrSinkClosed
	}

	select {
	case s.outbox <- line:
		return nil
	default:
	}

	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()
	select {
	case s.outbox <- line:
		return nil
	case <-timer.C:
		return errors.ErrDeliveryTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes the queued lines then closes the connection.
// Later calls to Send return ErrSinkClosed.
func (s *ConnSink) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.outbox)
		s.mu.Unlock()

		<-s.done
		if cErr := s.conn.Close(); cErr != nil && !stderrors.Is(cErr, net.ErrClosed) {
			err = cErr
		}
	})
	return err
}

func (s *ConnSink) run() {
	defer close(s.done)
	failed := false
	for line := range s.outbox {
		if failed {
			continue
		}
		if s.writeTimeout > 0 {
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		}
		if _, err := io.WriteString(s.conn, line+"\n"); err != nil {
			failed = true
			s.log.Debug("Write failed, dropping pending lines",
				"remote", s.conn.RemoteAddr().String(), "error", err)
			// Unblocks the read loop waiting on the same connection
			_ = s.conn.Close()
		}
	}
}
