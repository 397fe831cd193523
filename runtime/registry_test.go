package runtime

import (
	"line-chat/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndUnregister(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice, _ := newRecordedSession(4001)
	bob, _ := newRecordedSession(4002)

	// Given no session is connected
	req.Zero(registry.Len())
	req.Empty(registry.Snapshot())

	// When two sessions register
	req.Equal(alice.ID, registry.Register(alice))
	registry.Register(bob)

	// Then the snapshot follows registration order
	req.Equal(2, registry.Len())
	req.Equal([]uuid.UUID{alice.ID, bob.ID}, ids(registry.Snapshot()))

	// When alice leaves
	registry.Unregister(alice.ID)

	// Then only bob is left
	req.Equal(1, registry.Len())
	req.Equal(bob.ID, registry.Snapshot()[0].ID)
}

func TestRegistry_RegisterTwiceKeepsOneEntry(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice, _ := newRecordedSession(4001)

	registry.Register(alice)
	registry.Register(alice)

	req.Equal(1, registry.Len())
	req.Len(registry.Snapshot(), 1)
}

func TestRegistry_UnregisterUnknownIsNoop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice, _ := newRecordedSession(4001)
	registry.Register(alice)

	// When removing a handle that was never registered, twice
	registry.Unregister(uuid.New())
	registry.Unregister(alice.ID)
	registry.Unregister(alice.ID)

	req.Zero(registry.Len())
}

func TestRegistry_FindByNicknameReturnsOldest(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first, _ := newRecordedSession(4001)
	second, _ := newRecordedSession(4002)
	other, _ := newRecordedSession(4003)
	first.Rename("alice")
	second.Rename("alice")
	other.Rename("bob")
	registry.Register(first)
	registry.Register(other)
	registry.Register(second)

	// When two sessions share a nickname
	found, ok := registry.FindByNickname("alice")

	// Then lookup returns the first registered one
	req.True(ok)
	req.Equal(first.ID, found.ID)
	req.Equal([]uuid.UUID{first.ID, second.ID}, ids(registry.FindAllByNickname("alice")))

	_, ok = registry.FindByNickname("carol")
	req.False(ok)
	req.Empty(registry.FindAllByNickname("carol"))
}

func TestRegistry_SnapshotIsDetached(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice, _ := newRecordedSession(4001)
	bob, _ := newRecordedSession(4002)
	registry.Register(alice)

	// Given a snapshot taken before bob joins
	snapshot := registry.Snapshot()
	registry.Register(bob)

	// Then the snapshot is not affected
	req.Len(snapshot, 1)
	req.Len(registry.Snapshot(), 2)
}

func ids(sessions []*domain.Session) []uuid.UUID {
	return lo.Map(sessions, func(s *domain.Session, _ int) uuid.UUID { return s.ID })
}
