package workers

import (
	"context"
	"line-chat/domain"
	"line-chat/mocks"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRenderSessions(t *testing.T) {
	req := require.New(t)
	alice := domain.NewSession(&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 6001}, nil)
	alice.Rename("alice")
	bob := domain.NewSession(&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 6002}, nil)
	bob.Rename("bob")
	policy := domain.NewPolicy(1, 20)
	bannedAt := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	bob.Complain(bannedAt, policy)
	alice.Admit(bannedAt, policy)

	table := RenderSessions([]*domain.Session{alice, bob})

	req.Contains(table, "NICKNAME")
	req.Contains(table, "alice")
	req.Contains(table, "127.0.0.1:6001")
	req.Contains(table, "bob")
	req.Contains(table, "10:30:00")
}

func TestHealthMonitoringWorker_ReportsUntilCanceled(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Given a registry and a scheduler sampled at every tick
	registry := mocks.NewMockIRegistry(ctrl)
	scheduler := mocks.NewMockIScheduler(ctrl)
	reported := make(chan struct{}, 16)
	registry.EXPECT().Len().DoAndReturn(func() int {
		select {
		case reported <- struct{}{}:
		default:
		}
		return 2
	}).MinTimes(1)
	registry.EXPECT().Snapshot().Return(nil).AnyTimes()
	scheduler.EXPECT().Pending().Return(1).MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	worker := NewHealthMonitoringWorker(logs.GetLoggerFromLevel(slog.LevelDebug), registry, scheduler, 10*time.Millisecond)
	go func() { done <- worker.Run(ctx) }()

	select {
	case <-reported:
	case <-time.After(time.Second):
		req.Fail("no health report")
	}
	cancel()
	req.NoError(<-done)
}
