package runtime

import (
	"context"
	"line-chat/domain"
	"line-chat/errors"
	"net"
	"sync"
	"time"
)

// recordingSink keeps every line sent to a session.
type recordingSink struct {
	mu     sync.Mutex
	lines  []string
	closed bool
}

func (s *recordingSink) Send(_ context.Context, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSinkClosed
	}
	s.lines = append(s.lines, line)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// Reset forgets the lines received so far.
func (s *recordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRecordedSession(port int) (*domain.Session, *recordingSink) {
	sink := &recordingSink{}
	addr := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
	return domain.NewSession(addr, sink), sink
}
