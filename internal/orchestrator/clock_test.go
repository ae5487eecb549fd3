package orchestrator

import (
	"context"
	"testing"
	"time"
)

func TestShouldRefreshUserEditorialsExactlyOncePerWeek(t *testing.T) {
	// Any window of 7 consecutive days must contain exactly one refresh
	// day, wherever the window starts.
	for offset := 0; offset < 7; offset++ {
		start := time.Date(2026, 8, 1+offset, 12, 0, 0, 0, jst)
		count := 0
		for d := 0; d < 7; d++ {
			if ShouldRefreshUserEditorials(start.AddDate(0, 0, d)) {
				count++
			}
		}
		if count != 1 {
			t.Errorf("window starting %s: %d refresh days, want 1", start.Format("2006-01-02"), count)
		}
	}
}

func TestShouldRefreshUserEditorialsStableWithinDay(t *testing.T) {
	day := time.Date(2026, 8, 27, 0, 0, 0, 0, jst)
	want := ShouldRefreshUserEditorials(day)
	for _, h := range []int{0, 6, 12, 23} {
		at := day.Add(time.Duration(h) * time.Hour)
		if ShouldRefreshUserEditorials(at) != want {
			t.Errorf("answer changed within the day at %02d:00", h)
		}
	}
}

func TestShouldRefreshUserEditorialsZoneIndependent(t *testing.T) {
	// The same instant must give the same answer regardless of the
	// caller's zone representation.
	instant := time.Date(2026, 8, 27, 15, 0, 0, 0, jst)
	if ShouldRefreshUserEditorials(instant) != ShouldRefreshUserEditorials(instant.UTC()) {
		t.Error("answer depends on the time's zone representation")
	}
}

func TestAtHourJST(t *testing.T) {
	// 2026-08-27 03:00 UTC is 12:00 JST the same day.
	now := time.Date(2026, 8, 27, 3, 0, 0, 0, time.UTC)
	got := atHourJST(now, 20)
	want := time.Date(2026, 8, 27, 20, 0, 0, 0, jst)
	if !got.Equal(want) {
		t.Errorf("atHourJST = %s, want %s", got, want)
	}

	// 2026-08-27 18:00 UTC is already 03:00 JST on the 28th.
	late := time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC)
	got = atHourJST(late, 20)
	want = time.Date(2026, 8, 28, 20, 0, 0, 0, jst)
	if !got.Equal(want) {
		t.Errorf("atHourJST = %s, want %s", got, want)
	}
}

func TestRealClockSleepCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewClock().Sleep(ctx, time.Hour)
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestRealClockSleepZero(t *testing.T) {
	if err := NewClock().Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) = %v", err)
	}
}
