package domain

import "time"

const (
	DefaultBanWindow  = 240 * time.Minute
	DefaultRateWindow = 60 * time.Minute
)

// Policy holds the abuse control limits applied to every session.
type Policy struct {
	BanLimit     int
	MessageLimit int
	BanWindow    time.Duration
	RateWindow   time.Duration
}

func NewPolicy(banLimit, messageLimit int) Policy {
	return Policy{
		BanLimit:     banLimit,
		MessageLimit: messageLimit,
		BanWindow:    DefaultBanWindow,
		RateWindow:   DefaultRateWindow,
	}
}

func (p Policy) WithWindows(ban, rate time.Duration) Policy {
	p.BanWindow = ban
	p.RateWindow = rate
	return p
}

// Admission is the outcome of the policy check for one chat line.
// Banned and RateLimited can both be set, Admitted excludes both.
type Admission struct {
	Admitted    bool
	Banned      bool
	RateLimited bool
}

// Notices returns the lines the sender must receive for a rejected line.
func (a Admission) Notices() []string {
	var notices []string
	if a.Banned {
		notices = append(notices, BannedNotice)
	}
	if a.RateLimited {
		notices = append(notices, RateLimitNotice)
	}
	return notices
}
