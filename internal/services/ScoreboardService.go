package services

import (
	"bytes"
	"context"
	"errors"
	"scoreboard/internal/models"
	"scoreboard/internal/providers"
	"scoreboard/internal/rotation"
	"scoreboard/internal/services/interfaces"
	"scoreboard/internal/storage"
	"scoreboard/internal/structures"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
)

const (
	MaxMinutes      = 99
	MaxSeconds      = 59
	MaxClockSeconds = MaxMinutes*60 + MaxSeconds
	MaxNameLength   = 64

	// reducedHistory is how many entries survive a full store.
	reducedHistory = 3
)

type ScoreboardServiceInterface interface {
	interfaces.SchedulerInterface

	State() models.BoardState
	Version() uint64

	Goal(teamID int) error
	Timeout() error
	Undo() error
	IncrementPeriod() error
	DecrementPeriod() error

	ToggleTimer() error
	ResetTimer() error
	SetClock(minutes, seconds int) error
	AdjustMinutes(delta int) error
	AdjustSeconds(delta int) error
	Tick()
	ResumeVisibility() (int, bool)
	ToggleSound() error

	BeginEdit(confirm bool) error
	SetScore(teamID, score int) error
	CommitEdit() error
	CancelEdit() error

	RenameTeam(teamID int, name string) error
	SetLogo(teamID int, logo string) error
	UploadLogo(ctx context.Context, teamID int, data []byte) (<-chan error, error)
	ReorderTeams(order []int) error
	MoveTeam(teamID, position int) error
	SwapTeam(teamID, direction int) error

	StartNewGame() error
	ResetTeamDefaults(confirm bool) error
	ResetGame(confirm bool) error
}

type editSnapshot struct {
	teams  models.Roster
	period int
}

// ScoreboardService owns the whole board. Every operation runs under one
// mutex, persists what it changed and publishes the resulting state.
type ScoreboardService struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	persistence *storage.Persistence
	clock       clockwork.Clock
	publisher   PublisherInterface
	alerter     AlerterInterface
	converter   LogoConverterInterface

	mu           sync.Mutex
	version      uint64
	teams        models.Roster
	period       int
	remaining    int
	running      bool
	sound        bool
	history      *models.History
	anchor       models.TimerAnchor
	edit         *editSnapshot
	alertPending bool

	tickerStop chan struct{}
	stopped    bool
	wg         sync.WaitGroup
}

func NewScoreboardService(
	config *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	persistence *storage.Persistence,
	clock clockwork.Clock,
	publisher PublisherInterface,
	alerter AlerterInterface,
	converter LogoConverterInterface,
) ScoreboardServiceInterface {
	return newScoreboardService(config, logger, metrics, persistence, clock, publisher, alerter, converter)
}

func newScoreboardService(
	config *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	persistence *storage.Persistence,
	clock clockwork.Clock,
	publisher PublisherInterface,
	alerter AlerterInterface,
	converter LogoConverterInterface,
) *ScoreboardService {
	s := &ScoreboardService{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		persistence: persistence,
		clock:       clock,
		publisher:   publisher,
		alerter:     alerter,
		converter:   converter,
		teams:       models.DefaultRoster(),
		period:      1,
		sound:       true,
		history:     models.NewHistory(nil),
	}
	s.remaining = s.periodSeconds()
	return s
}

func (s *ScoreboardService) periodSeconds() int {
	return s.config.Game.PeriodMinutes * 60
}

// apply runs fn under the lock and, when it succeeds, bumps the version and
// publishes the new state. errNoChange is swallowed. The state is published
// before the lock is released so displays receive versions in order; the
// publisher must not block.
func (s *ScoreboardService) apply(event string, fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	s.version++
	state := s.stateLocked()
	if event != "" {
		s.metrics.IncGameEvent(event)
	}
	s.metrics.SetPeriod(state.Period)
	s.publisher.Publish(EventState, state)
	alert := s.alertPending
	s.alertPending = false
	s.mu.Unlock()

	if alert {
		s.alerter.Alert()
	}
	return nil
}

func (s *ScoreboardService) State() models.BoardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *ScoreboardService) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *ScoreboardService) stateLocked() models.BoardState {
	return models.BoardState{
		Version:      s.version,
		Teams:        s.teams.Clone(),
		Period:       s.period,
		Minutes:      s.remaining / 60,
		Seconds:      s.remaining % 60,
		Time:         s.remaining,
		IsRunning:    s.running,
		SoundEnabled: s.sound,
		EditMode:     s.edit != nil,
		CanUndo:      s.history.Len() > 0,
		HistorySize:  s.history.Len(),
	}
}

// Scoring

func (s *ScoreboardService) Goal(teamID int) error {
	return s.apply("goal", func() error {
		if s.edit != nil {
			return ErrEditMode
		}
		next, err := rotation.ApplyGoal(s.teams, teamID)
		if err != nil {
			return err
		}
		s.recordHistoryLocked()
		s.teams = next
		s.period++
		s.resetClockLocked()
		s.persistTeamsLocked()
		s.persistPeriodLocked()
		s.logger.Infof(providers.TypeGame, "Goal by team %d, period %d begins", teamID, s.period)
		return nil
	})
}

func (s *ScoreboardService) Timeout() error {
	return s.apply("timeout", func() error {
		if s.edit != nil {
			return ErrEditMode
		}
		next, err := rotation.ApplyTimeout(s.teams)
		if err != nil {
			return err
		}
		s.recordHistoryLocked()
		s.teams = next
		s.period++
		s.resetClockLocked()
		s.persistTeamsLocked()
		s.persistPeriodLocked()
		s.logger.Infof(providers.TypeGame, "Shift timed out, period %d begins", s.period)
		return nil
	})
}

func (s *ScoreboardService) Undo() error {
	return s.apply("undo", func() error {
		entry, ok := s.history.Undo()
		if !ok {
			return ErrNothingToUndo
		}
		s.teams = entry.Teams
		s.period = entry.Period
		s.persistence.Save(storage.KeyHistory, s.history.Entries())
		s.persistTeamsLocked()
		s.persistPeriodLocked()
		s.logger.Infof(providers.TypeGame, "Undo restored period %d, %d snapshots left", s.period, s.history.Len())
		return nil
	})
}

// recordHistoryLocked snapshots the board before a scoring change. A full
// store shrinks the stack; an unencodable one collapses to the current state.
func (s *ScoreboardService) recordHistoryLocked() {
	if !s.history.Record(s.teams, s.period) {
		return
	}

	err := s.persistence.TrySave(storage.KeyHistory, s.history.Entries())
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrStorageFull):
		s.logger.Warnf(providers.TypeStorage, "Storage full, reducing history to %d entries", reducedHistory)
		s.history.Prune(reducedHistory)
		s.persistence.Save(storage.KeyHistory, s.history.Entries())
	case errors.Is(err, storage.ErrSerialization):
		s.logger.Errorf(providers.TypeStorage, "Error saving history, keeping current state only: %s", err)
		s.history.Replace([]models.HistoryEntry{{Teams: s.teams.Clone(), Period: s.period}})
		s.persistence.Save(storage.KeyHistory, s.history.Entries())
	default:
		s.logger.Errorf(providers.TypeStorage, "Error saving history: %s", err)
	}
}

// Period

func (s *ScoreboardService) IncrementPeriod() error {
	return s.apply("period", func() error {
		s.period++
		s.resetClockLocked()
		s.persistPeriodLocked()
		return nil
	})
}

func (s *ScoreboardService) DecrementPeriod() error {
	return s.apply("period", func() error {
		if s.period <= 1 {
			return errNoChange
		}
		s.period--
		s.persistPeriodLocked()
		return nil
	})
}

// Sound

func (s *ScoreboardService) ToggleSound() error {
	return s.apply("", func() error {
		s.sound = !s.sound
		s.persistence.Save(storage.KeySound, s.sound)
		return nil
	})
}

// Score editing

func (s *ScoreboardService) BeginEdit(confirm bool) error {
	return s.apply("", func() error {
		if !confirm {
			return ErrConfirmationRequired
		}
		if s.edit != nil {
			return errNoChange
		}
		s.edit = &editSnapshot{teams: s.teams.Clone(), period: s.period}
		s.logger.Infof(providers.TypeGame, "Score edit started")
		return nil
	})
}

func (s *ScoreboardService) SetScore(teamID, score int) error {
	return s.apply("edit", func() error {
		if s.edit == nil {
			return ErrNotEditing
		}
		if score < 0 {
			return ErrInvalidInput
		}
		idx := s.teams.Find(teamID)
		if idx < 0 {
			return rotation.ErrTeamNotFound
		}
		if s.teams[idx].Score == score {
			return errNoChange
		}
		s.recordHistoryLocked()
		next := s.teams.Clone()
		next[idx].Score = score
		s.teams = next
		s.persistTeamsLocked()
		return nil
	})
}

func (s *ScoreboardService) CommitEdit() error {
	return s.apply("", func() error {
		if s.edit == nil {
			return ErrNotEditing
		}
		s.edit = nil
		s.logger.Infof(providers.TypeGame, "Score edit saved")
		return nil
	})
}

func (s *ScoreboardService) CancelEdit() error {
	return s.apply("", func() error {
		if s.edit == nil {
			return ErrNotEditing
		}
		s.teams = s.edit.teams
		s.period = s.edit.period
		s.edit = nil
		s.persistTeamsLocked()
		s.persistPeriodLocked()
		s.logger.Infof(providers.TypeGame, "Score edit cancelled")
		return nil
	})
}

// Team setup

func (s *ScoreboardService) RenameTeam(teamID int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return ErrInvalidInput
	}
	return s.updateTeam(teamID, func(t *models.Team) { t.Name = name })
}

func (s *ScoreboardService) SetLogo(teamID int, logo string) error {
	if strings.TrimSpace(logo) == "" {
		return ErrInvalidInput
	}
	return s.updateTeam(teamID, func(t *models.Team) { t.Logo = logo })
}

func (s *ScoreboardService) updateTeam(teamID int, fn func(t *models.Team)) error {
	return s.apply("", func() error {
		idx := s.teams.Find(teamID)
		if idx < 0 {
			return rotation.ErrTeamNotFound
		}
		next := s.teams.Clone()
		fn(&next[idx])
		s.teams = next
		s.persistTeamsLocked()
		return nil
	})
}

// UploadLogo converts image bytes off the request path. The returned channel
// receives the outcome once the logo is installed or rejected.
func (s *ScoreboardService) UploadLogo(ctx context.Context, teamID int, data []byte) (<-chan error, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrStopped
	}
	if s.teams.Find(teamID) < 0 {
		s.mu.Unlock()
		return nil, rotation.ErrTeamNotFound
	}
	s.wg.Add(1)
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer s.wg.Done()
		uri, err := s.converter.Convert(ctx, bytes.NewReader(data))
		if err != nil {
			s.logger.Warnf(providers.TypeGame, "Rejected logo for team %d: %s", teamID, err)
			done <- err
			return
		}
		done <- s.SetLogo(teamID, uri)
	}()
	return done, nil
}

func (s *ScoreboardService) ReorderTeams(order []int) error {
	return s.reorder(func(r models.Roster) (models.Roster, error) {
		return rotation.SetInitialOrder(r, order)
	})
}

func (s *ScoreboardService) MoveTeam(teamID, position int) error {
	return s.reorder(func(r models.Roster) (models.Roster, error) {
		return rotation.MoveTo(r, teamID, position)
	})
}

func (s *ScoreboardService) SwapTeam(teamID, direction int) error {
	if direction != -1 && direction != 1 {
		return ErrInvalidInput
	}
	return s.reorder(func(r models.Roster) (models.Roster, error) {
		return rotation.Swap(r, teamID, direction)
	})
}

func (s *ScoreboardService) reorder(fn func(models.Roster) (models.Roster, error)) error {
	return s.apply("reorder", func() error {
		next, err := fn(s.teams)
		if err != nil {
			return err
		}
		s.teams = next
		s.persistTeamsLocked()
		return nil
	})
}

// Game lifecycle

func (s *ScoreboardService) StartNewGame() error {
	return s.apply("new_game", func() error {
		s.teams = rotation.ResetScores(s.teams)
		s.period = 1
		s.edit = nil
		s.history.Clear()
		s.resetClockLocked()
		s.persistTeamsLocked()
		s.persistPeriodLocked()
		s.persistence.Save(storage.KeyHistory, s.history.Entries())
		s.logger.Infof(providers.TypeGame, "New game started")
		return nil
	})
}

func (s *ScoreboardService) ResetTeamDefaults(confirm bool) error {
	return s.apply("", func() error {
		if !confirm {
			return ErrConfirmationRequired
		}
		defaults := models.DefaultRoster()
		next := s.teams.Clone()
		for i := range next {
			if idx := defaults.Find(next[i].ID); idx >= 0 {
				next[i].Name = defaults[idx].Name
				next[i].Logo = defaults[idx].Logo
			}
		}
		s.teams = next
		s.persistTeamsLocked()
		s.logger.Infof(providers.TypeGame, "Team names and logos reset to defaults")
		return nil
	})
}

func (s *ScoreboardService) ResetGame(confirm bool) error {
	return s.apply("reset", func() error {
		if !confirm {
			return ErrConfirmationRequired
		}
		s.persistence.Clear()
		s.teams = models.DefaultRoster()
		s.period = 1
		s.sound = true
		s.edit = nil
		s.history.Clear()
		s.resetClockLocked()
		s.persistAllLocked()
		s.logger.Infof(providers.TypeGame, "Board reset to factory defaults")
		return nil
	})
}

// Persistence

func (s *ScoreboardService) persistTeamsLocked() {
	s.persistence.Save(storage.KeyTeams, s.teams)
}

func (s *ScoreboardService) persistPeriodLocked() {
	s.persistence.Save(storage.KeyPeriod, s.period)
}

func (s *ScoreboardService) persistClockLocked() {
	s.persistence.Save(storage.KeyMinutes, s.remaining/60)
	s.persistence.Save(storage.KeySeconds, s.remaining%60)
	s.persistence.Save(storage.KeyTime, s.remaining)
}

func (s *ScoreboardService) persistAllLocked() {
	s.persistClockLocked()
	s.persistTeamsLocked()
	s.persistPeriodLocked()
	s.persistence.Save(storage.KeySound, s.sound)
	s.persistence.Save(storage.KeyHistory, s.history.Entries())
}

// Restore hydrates the board from the store. Anything missing or corrupt
// falls back to its default.
func (s *ScoreboardService) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.persistence
	minutes := storage.LoadOr(p, storage.KeyMinutes, s.config.Game.PeriodMinutes)
	seconds := storage.LoadOr(p, storage.KeySeconds, 0)
	s.remaining = clamp(storage.LoadOr(p, storage.KeyTime, minutes*60+seconds), 0, MaxClockSeconds)

	s.period = max(1, storage.LoadOr(p, storage.KeyPeriod, 1))
	s.sound = storage.LoadOr(p, storage.KeySound, true)

	teams := storage.LoadOr(p, storage.KeyTeams, models.DefaultRoster())
	if err := rotation.Validate(teams); err != nil {
		s.logger.Warnf(providers.TypeStorage, "Stored roster rejected, using defaults: %s", err)
		teams = models.DefaultRoster()
	}
	s.teams = teams

	stored := storage.LoadOr[[]models.HistoryEntry](p, storage.KeyHistory, nil)
	entries := make([]models.HistoryEntry, 0, len(stored))
	for _, e := range stored {
		if rotation.Validate(e.Teams) != nil || e.Period < 1 {
			continue
		}
		entries = append(entries, e)
	}
	if dropped := len(stored) - len(entries); dropped > 0 {
		s.logger.Warnf(providers.TypeStorage, "Dropped %d invalid history entries", dropped)
	}
	s.history.Replace(entries)

	s.running = false
	s.logger.Infof(providers.TypeApp, "Restored board: period %d, clock %d:%02d, %d undo snapshots",
		s.period, s.remaining/60, s.remaining%60, s.history.Len())
	return nil
}

// Persist writes every key without the best-effort recovery of Save.
func (s *ScoreboardService) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting board...")
	p := s.persistence
	err := errors.Join(
		p.TrySave(storage.KeyMinutes, s.remaining/60),
		p.TrySave(storage.KeySeconds, s.remaining%60),
		p.TrySave(storage.KeyTime, s.remaining),
		p.TrySave(storage.KeyPeriod, s.period),
		p.TrySave(storage.KeySound, s.sound),
		p.TrySave(storage.KeyTeams, s.teams),
		p.TrySave(storage.KeyHistory, s.history.Entries()),
	)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting board: %s", err)
	}
	return err
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// NewScheduler exposes the board's lifecycle to the application.
func NewScheduler(service ScoreboardServiceInterface) interfaces.SchedulerInterface {
	return service
}
