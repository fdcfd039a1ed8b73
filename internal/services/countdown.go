package services

import (
	"scoreboard/internal/providers"
	"time"
)

const (
	TickInterval = time.Second

	// stallThreshold is the tick gap treated as a host suspension.
	stallThreshold = 2 * TickInterval
)

// Init anchors the countdown once the board has been restored.
func (s *ScoreboardService) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.anchor.Update(s.remaining, s.running, s.clock.Now())
	s.logger.Infof(providers.TypeApp, "Game clock ready at %d:%02d", s.remaining/60, s.remaining%60)
}

// Stop halts the countdown and waits for background work to finish.
func (s *ScoreboardService) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.stopTickerLocked()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *ScoreboardService) ToggleTimer() error {
	return s.apply("", func() error {
		if !s.running && s.remaining == 0 {
			return ErrClockAtZero
		}
		if !s.running && s.stopped {
			return ErrStopped
		}
		s.running = !s.running
		s.anchor.Update(s.remaining, s.running, s.clock.Now())
		if s.running {
			s.startTickerLocked()
		} else {
			s.stopTickerLocked()
		}
		s.logger.Debugf(providers.TypeGame, "Clock running=%t at %d", s.running, s.remaining)
		return nil
	})
}

func (s *ScoreboardService) ResetTimer() error {
	return s.apply("", func() error {
		s.resetClockLocked()
		return nil
	})
}

func (s *ScoreboardService) SetClock(minutes, seconds int) error {
	if minutes < 0 || minutes > MaxMinutes || seconds < 0 || seconds > MaxSeconds {
		return ErrInvalidInput
	}
	return s.apply("", func() error {
		s.setRemainingLocked(minutes*60 + seconds)
		return nil
	})
}

func (s *ScoreboardService) AdjustMinutes(delta int) error {
	return s.apply("", func() error {
		minutes := clamp(s.remaining/60+delta, 0, MaxMinutes)
		s.setRemainingLocked(minutes*60 + s.remaining%60)
		return nil
	})
}

func (s *ScoreboardService) AdjustSeconds(delta int) error {
	return s.apply("", func() error {
		seconds := clamp(s.remaining%60+delta, 0, MaxSeconds)
		s.setRemainingLocked(s.remaining/60*60 + seconds)
		return nil
	})
}

// Tick advances a running clock by one second.
func (s *ScoreboardService) Tick() {
	s.tick(nil)
}

// ResumeVisibility corrects the clock by the wall time that passed while the
// display was hidden. It reports false when the clock is not running.
func (s *ScoreboardService) ResumeVisibility() (int, bool) {
	var (
		corrected int
		ok        bool
	)
	_ = s.apply("", func() error {
		now := s.clock.Now()
		if !s.anchor.Initialized() {
			s.anchor.Update(s.remaining, s.running, now)
			return errNoChange
		}
		corrected, ok = s.anchor.Sync(now)
		if !ok {
			return errNoChange
		}
		s.logger.Debugf(providers.TypeGame, "Display resumed, clock corrected from %d to %d", s.remaining, corrected)
		s.remaining = corrected
		s.persistClockLocked()
		s.checkZeroLocked()
		return nil
	})
	return corrected, ok
}

// tick handles one beat of the ticker identified by stop; nil skips the
// ownership check.
func (s *ScoreboardService) tick(stop chan struct{}) {
	_ = s.apply("", func() error {
		if stop != nil && stop != s.tickerStop {
			return errNoChange
		}
		if !s.running {
			return errNoChange
		}

		now := s.clock.Now()
		gap := now.Sub(s.anchor.StartTime)
		if stop != nil && gap < TickInterval/2 {
			// beat queued behind one that already accounted for it
			return errNoChange
		}
		if gap > stallThreshold {
			corrected, _ := s.anchor.Sync(now)
			s.logger.Warnf(providers.TypeGame, "Ticks stalled for %s, clock corrected from %d to %d", gap, s.remaining, corrected)
			s.remaining = corrected
		} else {
			s.remaining = max(0, s.remaining-1)
			s.anchor.Update(s.remaining, true, now)
		}
		s.persistClockLocked()
		s.checkZeroLocked()
		return nil
	})
}

func (s *ScoreboardService) setRemainingLocked(seconds int) {
	s.remaining = seconds
	s.anchor.Update(s.remaining, s.running, s.clock.Now())
	s.persistClockLocked()
	s.checkZeroLocked()
}

// resetClockLocked pauses and rewinds to a full period.
func (s *ScoreboardService) resetClockLocked() {
	s.running = false
	s.stopTickerLocked()
	s.remaining = s.periodSeconds()
	s.anchor.Update(s.remaining, false, s.clock.Now())
	s.persistClockLocked()
}

// checkZeroLocked pauses a running clock that reached zero and queues the buzzer.
func (s *ScoreboardService) checkZeroLocked() {
	if !s.running || s.remaining > 0 {
		return
	}
	s.running = false
	s.stopTickerLocked()
	s.anchor.Update(0, false, s.clock.Now())
	s.logger.Infof(providers.TypeGame, "Period %d clock expired", s.period)
	if s.sound {
		s.alertPending = true
	}
}

// startTickerLocked replaces any running ticker, so at most one is ever live.
func (s *ScoreboardService) startTickerLocked() {
	s.stopTickerLocked()
	if s.stopped {
		return
	}

	stop := make(chan struct{})
	s.tickerStop = stop
	ticker := s.clock.NewTicker(TickInterval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				s.tick(stop)
			}
		}
	}()
}

func (s *ScoreboardService) stopTickerLocked() {
	if s.tickerStop != nil {
		close(s.tickerStop)
		s.tickerStop = nil
	}
}
