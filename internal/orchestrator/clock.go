package orchestrator

import (
	"context"
	"time"
)

// Clock abstracts time so the daily schedule can be tested without
// waiting for wall-clock hours.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in
	// the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// NewClock returns the wall-clock implementation.
func NewClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// jst is the contest site's time zone. All schedule arithmetic happens
// in this zone regardless of the host's locale.
var jst = time.FixedZone("JST", 9*60*60)

// atHourJST returns the instant of hour:00 JST on now's JST calendar day.
func atHourJST(now time.Time, hour int) time.Time {
	n := now.In(jst)
	return time.Date(n.Year(), n.Month(), n.Day(), hour, 0, 0, 0, jst)
}

// ShouldRefreshUserEditorials reports whether t falls on a user
// editorial refresh day. Days are counted from the Unix epoch in JST,
// so any 7 consecutive days contain exactly one refresh day.
func ShouldRefreshUserEditorials(t time.Time) bool {
	n := t.In(jst)
	midnight := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, jst)
	epoch := time.Date(1970, 1, 1, 0, 0, 0, 0, jst)
	days := int64(midnight.Sub(epoch) / (24 * time.Hour))
	return days%7 == 0
}
