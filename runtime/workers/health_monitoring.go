package workers

import (
	"context"
	"line-chat/contract"
	"line-chat/domain"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/process"
)

// HealthMonitoringWorker periodically logs the process footprint and the chat load.
// At debug level it also dumps the table of connected sessions.
type HealthMonitoringWorker struct {
	log       *slog.Logger
	registry  contract.IRegistry
	scheduler contract.IScheduler
	interval  time.Duration
}

func NewHealthMonitoringWorker(log *slog.Logger, registry contract.IRegistry,
	scheduler contract.IScheduler, interval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{log: log, registry: registry, scheduler: scheduler, interval: interval}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			w.report(ctx, p)
		}
	}
}

func (w *HealthMonitoringWorker) report(ctx context.Context, p *process.Process) {
	stats, err := sampleProcess(p)
	if err != nil {
		w.log.Error("Failed to collect self stats", "err", err)
	}
	w.log.Info("Health",
		"sessions", w.registry.Len(),
		"pending_delayed", w.scheduler.Pending(),
		"status", stats.Status,
		"cpu_percent", stats.CPU,
		"rss_bytes", stats.RSSBytes)

	if w.log.Enabled(ctx, slog.LevelDebug) {
		w.log.Debug("Connected sessions\n" + RenderSessions(w.registry.Snapshot()))
	}
}

// sampleProcess retrieves Memory, CPU and OS status for the given process.
func sampleProcess(p *process.Process) (domain.ProcessStats, error) {
	stats := domain.ProcessStats{PID: p.Pid, Status: domain.UNKNOWN}

	memInfo, err := p.MemoryInfo()
	if err != nil {
		return stats, err
	}
	stats.RSSBytes = memInfo.RSS

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return stats, err
	}
	stats.CPU = cpuPercent

	status, err := p.Status()
	if err != nil {
		return stats, err
	}
	stats.Status = domain.ToStatus(status)
	return stats, nil
}

// RenderSessions formats the sessions as a text table.
func RenderSessions(sessions []*domain.Session) string {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"Nickname", "Address", "Messages", "Complaints", "Banned since"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, s := range sessions {
		stats := s.Stats()
		banned := "-"
		if !stats.BannedAt.IsZero() {
			banned = stats.BannedAt.Format(time.TimeOnly)
		}
		table.Append([]string{
			stats.Nickname,
			s.IP + ":" + strconv.Itoa(s.Port),
			strconv.Itoa(stats.MessageCount),
			strconv.Itoa(stats.ComplaintCount),
			banned,
		})
	}
	table.Render()
	return b.String()
}
