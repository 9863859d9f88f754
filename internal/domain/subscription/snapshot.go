// Package subscription computes the point-in-time subscription snapshot that
// gates quit-plan, progress-log and coaching features.
package subscription

import (
	"math"
	"time"
)

// DefaultExpiringSoonDays 剩余天数不超过该值时提示即将到期
const DefaultExpiringSoonDays = 3

// Period 订阅区间（与持久化模型解耦）
type Period struct {
	StartDate time.Time
	EndDate   time.Time
	Cancelled bool
}

// Snapshot 订阅快照
type Snapshot struct {
	HasActiveSubscription bool
	DaysRemaining         int
	IsExpiringSoon        bool
}

// DaysRemaining returns max(0, ceil((end-now)/1 day)).
func DaysRemaining(end, now time.Time) int {
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Compute derives the snapshot for p at now. A nil period, a cancelled one, or
// one with no whole day left is reported as no subscription.
func Compute(p *Period, now time.Time, expiringSoonDays int) Snapshot {
	if p == nil || p.Cancelled {
		return Snapshot{}
	}
	if expiringSoonDays <= 0 {
		expiringSoonDays = DefaultExpiringSoonDays
	}

	days := DaysRemaining(p.EndDate, now)
	if days <= 0 || now.Before(p.StartDate) {
		return Snapshot{}
	}

	return Snapshot{
		HasActiveSubscription: true,
		DaysRemaining:         days,
		IsExpiringSoon:        days <= expiringSoonDays,
	}
}

// Allows reports whether the snapshot grants access to gated features.
func (s Snapshot) Allows() bool {
	return s.HasActiveSubscription && s.DaysRemaining > 0
}

// Extend returns the new end date when renewing for durationDays. Renewal
// stacks on the current end date while it is still in the future.
func Extend(end, now time.Time, durationDays int) time.Time {
	base := end
	if base.Before(now) {
		base = now
	}
	return base.AddDate(0, 0, durationDays)
}
