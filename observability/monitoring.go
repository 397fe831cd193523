// Package observability exposes the chat server counters to Prometheus.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chat"

// Rejection reasons used as label values.
const (
	ReasonBanned      = "banned"
	ReasonRateLimited = "rate_limited"
)

// Monitoring owns its own registry so that several servers can live in one
// process, tests included.
type Monitoring struct {
	Registry *prometheus.Registry

	Sessions           prometheus.Gauge
	ConnectionsTotal   prometheus.Counter
	ChatLinesTotal     prometheus.Counter
	PrivateLinesTotal  prometheus.Counter
	RejectedTotal      *prometheus.CounterVec
	CommandsTotal      *prometheus.CounterVec
	ComplaintsTotal    prometheus.Counter
	BansTotal          prometheus.Counter
	DelayedScheduled   prometheus.Counter
	DelayedFired       prometheus.Counter
	DroppedDeliveries  prometheus.Counter
	CensoredLinesTotal prometheus.Counter
}

func NewMonitoring() *Monitoring {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Monitoring{
		Registry: reg,
		Sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sessions",
			Help: "Number of sessions currently registered",
		}),
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "connections_total",
			Help: "Total number of accepted connections",
		}),
		ChatLinesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "chat_lines_total",
			Help: "Chat lines admitted and broadcast",
		}),
		PrivateLinesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "private_lines_total",
			Help: "Private messages delivered",
		}),
		RejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rejected_lines_total",
			Help: "Chat lines rejected by the policy, by reason",
		}, []string{"reason"}),
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "commands_total",
			Help: "Commands received, by verb",
		}, []string{"verb"}),
		ComplaintsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "complaints_total",
			Help: "Complaints recorded against sessions",
		}),
		BansTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bans_total",
			Help: "Sessions that reached the complaint limit",
		}),
		DelayedScheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "delayed_scheduled_total",
			Help: "Delayed broadcasts scheduled",
		}),
		DelayedFired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "delayed_fired_total",
			Help: "Delayed broadcasts fired",
		}),
		DroppedDeliveries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dropped_deliveries_total",
			Help: "Lines dropped because a recipient outbox stayed full",
		}),
		CensoredLinesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "censored_lines_total",
			Help: "Lines where at least one censored word was replaced",
		}),
	}
}

func (m *Monitoring) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
