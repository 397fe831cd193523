// Package runtime wires sessions, the registry and the dispatcher together.
// It owns the connection lifecycle but holds no protocol rule of its own.
package runtime

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"line-chat/contract"
	"line-chat/domain"
	"line-chat/errors"
	"line-chat/observability"
	"line-chat/runtime/workers"
	"line-chat/sink"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	defaultMaxLineLength   = 4096
	defaultOutboxSize      = 64
	defaultDeliveryTimeout = 2 * time.Second
)

// Settings gathers the tunables of the chat engine.
type Settings struct {
	Policy          domain.Policy
	DelayUnit       time.Duration
	MaxLineLength   int
	OutboxSize      int
	WriteTimeout    time.Duration
	DeliveryTimeout time.Duration
	MetricInterval  time.Duration
	MetricsAddr     string
	Censor          contract.ICensor
	Clock           func() time.Time
}

type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   contract.IRegistry
	scheduler  contract.IScheduler
	monitoring *observability.Monitoring
	dispatcher *Dispatcher
	settings   Settings
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, scheduler contract.IScheduler,
	monitoring *observability.Monitoring, settings Settings) *Orchestrator {
	if settings.Clock == nil {
		settings.Clock = time.Now
	}
	if settings.DelayUnit <= 0 {
		settings.DelayUnit = time.Minute
	}
	if settings.MaxLineLength <= 0 {
		settings.MaxLineLength = defaultMaxLineLength
	}
	if settings.OutboxSize <= 0 {
		settings.OutboxSize = defaultOutboxSize
	}
	if settings.DeliveryTimeout <= 0 {
		settings.DeliveryTimeout = defaultDeliveryTimeout
	}
	o := &Orchestrator{
		log:        log,
		supervisor: supervisor,
		registry:   registry,
		scheduler:  scheduler,
		monitoring: monitoring,
		settings:   settings,
	}
	o.dispatcher = NewDispatcher(log, registry, o, scheduler, monitoring, settings)
	return o
}

// Start registers the supervised workers and blocks until ctx is canceled
// or a worker fails for good, in which case that error is returned.
// The listener is bound by the caller so that a bind failure stays fatal.
func (o *Orchestrator) Start(ctx context.Context, listener net.Listener) error {
	if listener == nil {
		return fmt.Errorf("orchestrator needs a listener")
	}

	o.mu.Lock()
	o.supervisor.Add(workers.NewListenerWorker(o.log, listener, o))
	if o.settings.MetricInterval > 0 {
		o.supervisor.Add(workers.NewHealthMonitoringWorker(o.log, o.registry, o.scheduler, o.settings.MetricInterval))
	}
	if o.settings.MetricsAddr != "" {
		o.supervisor.Add(workers.NewMetricsWorker(o.log, o.settings.MetricsAddr, o.monitoring.Handler()))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "address", listener.Addr().String())
	o.supervisor.Run(ctx)
	return o.supervisor.Err()
}

// Stop cancels the supervised workers, open connections are closed by their handlers.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}

// HandleConn runs the whole life of one connection: join, read loop, leave.
// It returns once the session has been cleaned up.
func (o *Orchestrator) HandleConn(ctx context.Context, conn net.Conn) {
	session := domain.NewSession(conn.RemoteAddr(),
		sink.NewConnSink(o.log, conn, o.settings.OutboxSize, o.settings.WriteTimeout, o.settings.DeliveryTimeout))
	o.Join(ctx, session)

	// Unblocks the read loop on shutdown
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	reason := "eof"
	defer func() {
		if r := recover(); r != nil {
			reason = "panic"
			o.log.Error("Connection handler panicked", "session", session.ID, "panic", r)
		}
		o.Leave(context.WithoutCancel(ctx), session, reason)
	}()

	quit, err := o.readLoop(ctx, session, conn)
	if quit {
		reason = "quit"
	}
	if err != nil {
		reason = "error"
		if ctx.Err() != nil {
			reason = "shutdown"
		} else {
			o.log.Warn("Connection error", "nickname", session.Nickname(), "error", err)
		}
	}
}

// readLoop dispatches one line at a time. A line longer than MaxLineLength is
// cut into chunks and each chunk is handled as a line of its own.
func (o *Orchestrator) readLoop(ctx context.Context, session *domain.Session, conn net.Conn) (bool, error) {
	reader := bufio.NewReaderSize(conn, o.settings.MaxLineLength)
	for {
		chunk, isPrefix, err := reader.ReadLine()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		if isPrefix {
			o.log.Debug("Long line split", "nickname", session.Nickname(), "chunk_size", len(chunk))
		}
		line := string(chunk)
		if line == "" {
			continue
		}
		o.log.Debug("Line received", "nickname", session.Nickname(), "line", line)
		if quit := o.dispatcher.Dispatch(ctx, session, line); quit {
			return true, nil
		}
	}
}

// Join registers the session and greets it.
func (o *Orchestrator) Join(ctx context.Context, session *domain.Session) {
	o.registry.Register(session)
	o.monitoring.Sessions.Inc()
	o.monitoring.ConnectionsTotal.Inc()
	deliver(ctx, o.log, o.monitoring, session, domain.WelcomeNotice)
	o.log.Info("New connection", "ip", session.IP, "port", session.Port, "session", session.ID)
}

// Leave removes the session, tells the others and closes the transport.
// Once unregistered no new broadcast snapshot includes the session.
func (o *Orchestrator) Leave(ctx context.Context, session *domain.Session, reason string) {
	o.registry.Unregister(session.ID)
	o.monitoring.Sessions.Dec()

	nickname := session.Nickname()
	o.Broadcast(ctx, domain.LeftNotice(nickname), session.ID)
	// A broadcast that snapshotted the registry before Unregister may still
	// queue a line after quit, clients stop reading at quit.
	deliver(ctx, o.log, o.monitoring, session, domain.QuitNotice)
	if err := session.Close(); err != nil {
		o.log.Debug("Closing transport failed", "nickname", nickname, "error", err)
	}
	o.log.Info("End connection", "nickname", nickname, "reason", reason)
}

// Broadcast sends the line to a snapshot of the registry and returns how many
// sessions accepted it. Recipients are served one after the other so that two
// broadcasts from the same goroutine reach everyone in the same order.
func (o *Orchestrator) Broadcast(ctx context.Context, line string, exclude ...uuid.UUID) int {
	delivered := 0
	for _, session := range o.registry.Snapshot() {
		if lo.Contains(exclude, session.ID) {
			continue
		}
		if deliver(ctx, o.log, o.monitoring, session, line) {
			delivered++
		}
	}
	return delivered
}

func deliver(ctx context.Context, log *slog.Logger, monitoring *observability.Monitoring,
	session *domain.Session, line string) bool {
	err := session.Send(ctx, line)
	switch {
	case err == nil:
		return true
	case stderrors.Is(err, errors.ErrDeliveryTimeout):
		monitoring.DroppedDeliveries.Inc()
		log.Warn("Outbox full, line dropped", "session", session.ID)
	case stderrors.Is(err, errors.ErrSinkClosed):
		log.Debug("Session already closed", "session", session.ID)
	default:
		log.Debug("Delivery failed", "session", session.ID, "error", err)
	}
	return false
}
