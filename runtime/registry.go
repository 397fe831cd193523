package runtime

import (
	"line-chat/domain"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Registry is the live set of sessions served by the process.
// Iteration follows insertion order so that a nickname shared by several
// sessions always resolves to the oldest one.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Session
	order    []uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*domain.Session),
	}
}

// Register adds the session and returns its handle.
// Registering the same session twice keeps a single entry.
func (r *Registry) Register(session *domain.Session) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		r.order = append(r.order, session.ID)
	}
	r.sessions[session.ID] = session
	return session.ID
}

// Unregister removes the session, absent handles are ignored.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	r.order = slices.DeleteFunc(r.order, func(item uuid.UUID) bool {
		return item == id
	})
}

// Snapshot returns the sessions registered at call time.
// The slice is owned by the caller.
func (r *Registry) Snapshot() []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(id uuid.UUID, _ int) *domain.Session {
		return r.sessions[id]
	})
}

func (r *Registry) FindByNickname(nickname string) (*domain.Session, bool) {
	return lo.Find(r.Snapshot(), func(s *domain.Session) bool {
		return s.Nickname() == nickname
	})
}

func (r *Registry) FindAllByNickname(nickname string) []*domain.Session {
	return lo.Filter(r.Snapshot(), func(s *domain.Session, _ int) bool {
		return s.Nickname() == nickname
	})
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
