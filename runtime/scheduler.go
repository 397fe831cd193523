package runtime

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Scheduler fires one-shot actions after a delay.
// Actions run on their own goroutine and outlive the session that scheduled them.
// There is no cancellation, a scheduled action always fires unless the process exits.
type Scheduler struct {
	log     *slog.Logger
	pending atomic.Int64
}

func NewScheduler(log *slog.Logger) *Scheduler {
	return &Scheduler{log: log}
}

func (s *Scheduler) Schedule(delay time.Duration, action func()) {
	if delay < 0 {
		delay = 0
	}
	s.pending.Add(1)
	time.AfterFunc(delay, func() {
		defer s.pending.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("Scheduled action panicked", "panic", r)
			}
		}()
		action()
	})
	s.log.Debug("Action scheduled", "delay", delay, "pending", s.pending.Load())
}

// Pending returns the number of actions not fired yet.
func (s *Scheduler) Pending() int {
	return int(s.pending.Load())
}
