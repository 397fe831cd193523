// Package domain contains core concepts of the chat system.
// This file defines the Session, the server side state of one connected user.
// A session only knows the peer address, all I/O goes through its Sink.
package domain

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is owned by the flow handling its connection.
// Every mutable field is guarded by mu because /complaint
// handlers running on other connections write to it.
type Session struct {
	ID   uuid.UUID
	IP   string
	Port int
	sink Sink

	mu             sync.Mutex
	nickname       string
	complaintCount int
	bannedAt       time.Time
	firstMessageAt time.Time
	messageCount   int
}

// SessionStats is a point in time copy of the session counters.
type SessionStats struct {
	Nickname       string
	ComplaintCount int
	MessageCount   int
	BannedAt       time.Time
	FirstMessageAt time.Time
}

// NewSession builds a session whose nickname defaults to the remote address.
func NewSession(addr net.Addr, sink Sink) *Session {
	s := &Session{ID: uuid.New(), sink: sink}
	if addr == nil {
		s.nickname = s.ID.String()
		return s
	}
	s.nickname = addr.String()
	if host, port, err := net.SplitHostPort(addr.String()); err == nil {
		s.IP = host
		s.Port, _ = strconv.Atoi(port)
	}
	return s
}

func (s *Session) String() string {
	return s.Nickname() + " " + net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

func (s *Session) Nickname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nickname
}

// Rename sets a new nickname. Uniqueness is not checked.
func (s *Session) Rename(nickname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nickname = nickname
}

func (s *Session) Send(ctx context.Context, line string) error {
	return s.sink.Send(ctx, line)
}

func (s *Session) Close() error {
	return s.sink.Close()
}

// Complain records one complaint against the session.
// It returns true when this complaint reached the ban limit.
func (s *Session) Complain(now time.Time, policy Policy) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaintCount++
	if s.complaintCount == policy.BanLimit {
		s.bannedAt = now
		return true
	}
	return false
}

// Admit runs the policy checks for one chat line and counts it when admitted.
func (s *Session) Admit(now time.Time, policy Policy) Admission {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.messageCount == 0 {
		s.firstMessageAt = now
	}
	if !s.bannedAt.IsZero() && now.Sub(s.bannedAt) >= policy.BanWindow {
		s.complaintCount = 0
		s.bannedAt = time.Time{}
	}
	if !s.firstMessageAt.IsZero() && now.Sub(s.firstMessageAt) >= policy.RateWindow {
		s.messageCount = 0
		s.firstMessageAt = now
	}

	admission := Admission{
		Banned:      s.complaintCount >= policy.BanLimit,
		RateLimited: s.messageCount > policy.MessageLimit,
	}
	if admission.Banned || admission.RateLimited {
		return admission
	}
	admission.Admitted = true
	s.messageCount++
	return admission
}

func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStats{
		Nickname:       s.nickname,
		ComplaintCount: s.complaintCount,
		MessageCount:   s.messageCount,
		BannedAt:       s.bannedAt,
		FirstMessageAt: s.firstMessageAt,
	}
}
