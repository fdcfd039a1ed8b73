package models

import (
	"math"
	"time"
)

// TimerAnchor pins the countdown to wall-clock time so the remaining value
// can be recomputed after the host stops delivering ticks.
type TimerAnchor struct {
	StartTime   time.Time
	DurationMs  int64
	RemainingMs int64
	IsRunning   bool
}

func InitializeTimer(remainingSeconds int, isRunning bool, now time.Time) TimerAnchor {
	ms := int64(remainingSeconds) * 1000
	return TimerAnchor{
		StartTime:   now,
		DurationMs:  ms,
		RemainingMs: ms,
		IsRunning:   isRunning,
	}
}

func (a *TimerAnchor) Initialized() bool {
	return !a.StartTime.IsZero()
}

// Update records the displayed countdown after a tick or a run-state change.
func (a *TimerAnchor) Update(remainingSeconds int, isRunning bool, now time.Time) {
	if !a.Initialized() {
		*a = InitializeTimer(remainingSeconds, isRunning, now)
		return
	}

	ms := int64(remainingSeconds) * 1000
	if a.IsRunning != isRunning {
		if isRunning {
			a.StartTime = now
			a.DurationMs = ms
		}
		a.IsRunning = isRunning
	} else if isRunning {
		a.StartTime = now
	}
	a.RemainingMs = ms
}

// Sync subtracts the wall time elapsed since the last anchor and re-anchors at now.
// It returns the corrected countdown in whole seconds, rounded up, and false when
// no timer is running.
func (a *TimerAnchor) Sync(now time.Time) (int, bool) {
	if !a.Initialized() || !a.IsRunning {
		return 0, false
	}

	elapsed := now.Sub(a.StartTime).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	a.RemainingMs = max(0, a.RemainingMs-elapsed)
	a.StartTime = now

	return int(math.Ceil(float64(a.RemainingMs) / 1000)), true
}
