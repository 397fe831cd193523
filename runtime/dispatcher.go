package runtime

import (
	"context"
	"line-chat/contract"
	"line-chat/domain"
	"line-chat/observability"
	"log/slog"
	"strings"
	"time"
)

// Dispatcher turns the lines read from a session into chat actions.
type Dispatcher struct {
	log         *slog.Logger
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	scheduler   contract.IScheduler
	monitoring  *observability.Monitoring
	censor      contract.ICensor
	policy      domain.Policy
	delayUnit   time.Duration
	now         func() time.Time
}

func NewDispatcher(log *slog.Logger, registry contract.IRegistry,
	broadcaster contract.IBroadcaster, scheduler contract.IScheduler,
	monitoring *observability.Monitoring, settings Settings) *Dispatcher {
	now := settings.Clock
	if now == nil {
		now = time.Now
	}
	delayUnit := settings.DelayUnit
	if delayUnit <= 0 {
		delayUnit = time.Minute
	}
	return &Dispatcher{
		log:         log,
		registry:    registry,
		broadcaster: broadcaster,
		scheduler:   scheduler,
		monitoring:  monitoring,
		censor:      settings.Censor,
		policy:      settings.Policy,
		delayUnit:   delayUnit,
		now:         now,
	}
}

// Dispatch handles one line and reports whether the session asked to quit.
func (d *Dispatcher) Dispatch(ctx context.Context, session *domain.Session, line string) bool {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case line == domain.QuitToken:
		return true
	case domain.IsCommand(line):
		d.handleCommand(ctx, session, line)
	default:
		d.handleChat(ctx, session, line)
	}
	return false
}

func (d *Dispatcher) handleCommand(ctx context.Context, session *domain.Session, line string) {
	cmd, err := domain.ParseCommand(line)
	if err != nil {
		d.monitoring.CommandsTotal.WithLabelValues("invalid").Inc()
		d.log.Info("Wrong command", "nickname", session.Nickname(), "line", line, "error", err)
		d.reply(ctx, session, domain.InvalidCommandNotice)
		return
	}
	d.monitoring.CommandsTotal.WithLabelValues(strings.TrimPrefix(string(cmd.Verb), "/")).Inc()

	switch cmd.Verb {
	case domain.Nickname:
		d.rename(ctx, session, cmd)
	case domain.Private:
		d.private(ctx, session, cmd)
	case domain.Delay:
		d.delay(ctx, session, cmd)
	case domain.Complaint:
		d.complain(session, cmd)
	}
}

func (d *Dispatcher) handleChat(ctx context.Context, session *domain.Session, line string) {
	admission := session.Admit(d.now(), d.policy)
	if !admission.Admitted {
		if admission.Banned {
			d.monitoring.RejectedTotal.WithLabelValues(observability.ReasonBanned).Inc()
		}
		if admission.RateLimited {
			d.monitoring.RejectedTotal.WithLabelValues(observability.ReasonRateLimited).Inc()
		}
		for _, notice := range admission.Notices() {
			d.reply(ctx, session, notice)
		}
		d.log.Debug("Line rejected", "nickname", session.Nickname(),
			"banned", admission.Banned, "rate_limited", admission.RateLimited)
		return
	}

	d.monitoring.ChatLinesTotal.Inc()
	d.broadcaster.Broadcast(ctx, domain.ChatLine(session.Nickname(), d.censorText(line)))
}

func (d *Dispatcher) rename(ctx context.Context, session *domain.Session, cmd domain.Command) {
	previous := session.Nickname()
	session.Rename(cmd.Target())
	d.log.Info("Nickname changed", "from", previous, "to", cmd.Target())
	d.reply(ctx, session, domain.NicknameChangedNotice(cmd.Target()))
}

// private delivers to every session using the target nickname.
// Each session of the snapshot that does not match sends one
// "no user" notice back to the sender, including the sender itself.
func (d *Dispatcher) private(ctx context.Context, session *domain.Session, cmd domain.Command) {
	target := cmd.Target()
	sender := session.Nickname()
	if target == sender {
		d.reply(ctx, session, domain.SelfTargetNotice)
	}

	line := domain.PrivateLine(sender, d.censorText(cmd.Text()))
	for _, recipient := range d.registry.Snapshot() {
		if recipient.Nickname() != target {
			d.reply(ctx, session, domain.NoSuchUserNotice(target))
			continue
		}
		if deliver(ctx, d.log, d.monitoring, recipient, line) {
			d.monitoring.PrivateLinesTotal.Inc()
		}
	}
}

// delay schedules a broadcast rendered now with the current nickname.
// It fires even if the sender is gone by then.
func (d *Dispatcher) delay(ctx context.Context, session *domain.Session, cmd domain.Command) {
	minutes, err := cmd.Minutes()
	if err != nil {
		d.log.Info("Wrong delay", "nickname", session.Nickname(), "value", cmd.Target(), "error", err)
		d.reply(ctx, session, domain.InvalidCommandNotice)
		return
	}

	line := domain.ChatLine(session.Nickname(), d.censorText(cmd.Text()))
	delay := time.Duration(minutes) * d.delayUnit
	d.scheduler.Schedule(delay, func() {
		d.monitoring.DelayedFired.Inc()
		recipients := d.broadcaster.Broadcast(context.Background(), line)
		d.log.Debug("Delayed broadcast fired", "recipients", recipients)
	})
	d.monitoring.DelayedScheduled.Inc()
	d.log.Info("Delayed broadcast scheduled", "nickname", session.Nickname(), "delay", delay)
}

// complain never answers, neither to the sender nor to the target.
func (d *Dispatcher) complain(session *domain.Session, cmd domain.Command) {
	target := cmd.Target()
	for _, victim := range d.registry.FindAllByNickname(target) {
		d.monitoring.ComplaintsTotal.Inc()
		if victim.Complain(d.now(), d.policy) {
			d.monitoring.BansTotal.Inc()
			d.log.Info("Session banned", "nickname", target, "session", victim.ID, "by", session.Nickname())
		}
	}
}

func (d *Dispatcher) reply(ctx context.Context, session *domain.Session, line string) {
	deliver(ctx, d.log, d.monitoring, session, line)
}

func (d *Dispatcher) censorText(text string) string {
	if d.censor == nil {
		return text
	}
	censored, words := d.censor.Censor(text)
	if len(words) > 0 {
		d.monitoring.CensoredLinesTotal.Inc()
	}
	return censored
}
