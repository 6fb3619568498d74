// Package activity drives the habit lifecycle: starting, ending and
// scheduling occurrences, and turning completions into character progress.
package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chadspratt/do-again-list/internal/constants"
	apperrors "github.com/chadspratt/do-again-list/internal/errors"
	"github.com/chadspratt/do-again-list/internal/game"
	"github.com/chadspratt/do-again-list/internal/logger"
	"github.com/chadspratt/do-again-list/internal/models"
	"github.com/chadspratt/do-again-list/internal/storage"
	"github.com/chadspratt/do-again-list/internal/validation"
)

// Service serializes work per habit and per owner, and runs every
// read-check-write sequence in one storage transaction. Habit locks are
// always taken before owner locks.
type Service struct {
	store  storage.Provider
	now    func() time.Time
	newID  func() string
	habits *keyedMutex
	owners *keyedMutex
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		habits: newKeyedMutex(),
		owners: newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HabitInput describes a new habit. Nil Value and Repeats take the defaults.
type HabitInput struct {
	Title                string   `json:"title"`
	Ordering             int      `json:"ordering"`
	DefaultDuration      int      `json:"default_duration"`
	MinDuration          string   `json:"min_duration"`
	MaxDuration          string   `json:"max_duration"`
	MinTimeBetweenEvents string   `json:"min_time_between_events"`
	MaxTimeBetweenEvents string   `json:"max_time_between_events"`
	Value                *float64 `json:"value"`
	Repeats              *bool    `json:"repeats"`
}

// SettingsPatch changes the given fields of a habit and leaves the rest.
type SettingsPatch struct {
	Title                *string  `json:"title"`
	Ordering             *int     `json:"ordering"`
	DefaultDuration      *int     `json:"default_duration"`
	MinDuration          *string  `json:"min_duration"`
	MaxDuration          *string  `json:"max_duration"`
	MinTimeBetweenEvents *string  `json:"min_time_between_events"`
	MaxTimeBetweenEvents *string  `json:"max_time_between_events"`
	Value                *float64 `json:"value"`
	Repeats              *bool    `json:"repeats"`
}

func (p SettingsPatch) IsEmpty() bool {
	return p == SettingsPatch{}
}

// EndOptions carries client state that affects the encounter.
type EndOptions struct {
	// KillStreak overrides the stored streak when picking the enemy level.
	KillStreak *int
}

// Outcome is what a lifecycle call did to the habit and the character.
type Outcome struct {
	Habit          models.Habit       `json:"habit"`
	Occurrence     *models.Occurrence `json:"occurrence,omitempty"`
	Effect         game.Effect        `json:"effect"`
	Character      models.Character   `json:"character"`
	Messages       []string           `json:"messages"`
	Encounter      *game.Encounter    `json:"encounter,omitempty"`
	HeroBuffs      []game.StatBuff    `json:"hero_buffs"`
	PendingHeal    bool               `json:"pending_heal"`
	PendingFatigue bool               `json:"pending_fatigue"`
	Verdict        game.Verdict       `json:"verdict"`
	NeverStarted   bool               `json:"never_started"`
}

// CreateHabit stores a new habit and grants the creation reward.
func (s *Service) CreateHabit(ctx context.Context, owner string, in HabitInput) (models.Habit, Outcome, error) {
	owner = ownerOrDefault(owner)
	h := models.NewHabit(s.newID(), owner, strings.TrimSpace(in.Title), s.now())
	h.Ordering = in.Ordering
	h.DefaultDuration = in.DefaultDuration
	h.MinDuration = strings.TrimSpace(in.MinDuration)
	h.MaxDuration = strings.TrimSpace(in.MaxDuration)
	h.MinTimeBetweenEvents = strings.TrimSpace(in.MinTimeBetweenEvents)
	h.MaxTimeBetweenEvents = strings.TrimSpace(in.MaxTimeBetweenEvents)
	if in.Value != nil {
		h.Value = *in.Value
	}
	if in.Repeats != nil {
		h.Repeats = *in.Repeats
	}
	if err := validation.ValidateHabit(h); err != nil {
		return models.Habit{}, Outcome{}, err
	}

	unlock := s.owners.Lock(owner)
	defer unlock()

	var out Outcome
	err := s.transact(ctx, func(repo storage.Repository) error {
		if err := repo.AddHabit(ctx, h); err != nil {
			return fmt.Errorf("failed to add habit: %w", err)
		}
		eff := game.CreateReward(h.Title)
		c, msgs, err := s.applyEffect(ctx, repo, owner, eff)
		if err != nil {
			return err
		}
		out = Outcome{Habit: h, Effect: eff, Character: c, Messages: msgs}
		return nil
	})
	if err != nil {
		return models.Habit{}, Outcome{}, err
	}

	logger.Info("Habit created", "id", h.ID, "title", h.Title, "quality", h.MoralQuality())
	return h, out, nil
}

// UpdateHabitSettings edits a habit's configuration. It never rewards.
func (s *Service) UpdateHabitSettings(ctx context.Context, id string, patch SettingsPatch) (models.Habit, error) {
	if patch.IsEmpty() {
		return models.Habit{}, &apperrors.ValidationError{Msg: "nothing to update"}
	}

	unlock := s.habits.Lock(id)
	defer unlock()

	var h models.Habit
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		if h, err = repo.GetHabit(ctx, id); err != nil {
			return err
		}
		patch.apply(&h)
		if err := validation.ValidateHabit(h); err != nil {
			return err
		}
		return repo.UpdateHabit(ctx, h)
	})
	if err != nil {
		return models.Habit{}, err
	}
	logger.Info("Habit settings updated", "id", id)
	return h, nil
}

func (p SettingsPatch) apply(h *models.Habit) {
	if p.Title != nil {
		h.Title = strings.TrimSpace(*p.Title)
	}
	if p.Ordering != nil {
		h.Ordering = *p.Ordering
	}
	if p.DefaultDuration != nil {
		h.DefaultDuration = *p.DefaultDuration
	}
	if p.MinDuration != nil {
		h.MinDuration = strings.TrimSpace(*p.MinDuration)
	}
	if p.MaxDuration != nil {
		h.MaxDuration = strings.TrimSpace(*p.MaxDuration)
	}
	if p.MinTimeBetweenEvents != nil {
		h.MinTimeBetweenEvents = strings.TrimSpace(*p.MinTimeBetweenEvents)
	}
	if p.MaxTimeBetweenEvents != nil {
		h.MaxTimeBetweenEvents = strings.TrimSpace(*p.MaxTimeBetweenEvents)
	}
	if p.Value != nil {
		h.Value = *p.Value
	}
	if p.Repeats != nil {
		h.Repeats = *p.Repeats
	}
}

// DeleteHabit soft deletes a habit. Its occurrences stay for history.
func (s *Service) DeleteHabit(ctx context.Context, id string) error {
	unlock := s.habits.Lock(id)
	defer unlock()

	if err := s.store.DeleteHabit(ctx, id); err != nil {
		return err
	}
	logger.Info("Habit deleted", "id", id)
	return nil
}

func (s *Service) ListHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	return s.store.GetHabits(ctx, ownerOrDefault(owner), false)
}

func (s *Service) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	return s.store.GetHabit(ctx, id)
}

// History lists a habit's occurrences, newest first.
func (s *Service) History(ctx context.Context, id string, limit int) ([]models.Occurrence, error) {
	if _, err := s.store.GetHabit(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetOccurrences(ctx, id, limit)
}

// StartActivity opens an occurrence at the given time. A zero time means
// now. Starting a scheduled placeholder stamps it; starting one that is
// already running restarts it and costs the streak. Nothing is awarded.
func (s *Service) StartActivity(ctx context.Context, habitID string, at time.Time) (Outcome, error) {
	at = s.resolve(at)

	unlock := s.habits.Lock(habitID)
	defer unlock()

	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return Outcome{}, err
	}
	unlockOwner := s.owners.Lock(h.OwnerID)
	defer unlockOwner()

	var out Outcome
	err = s.transact(ctx, func(repo storage.Repository) error {
		h, err := repo.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}

		var eff game.Effect
		occ, err := repo.GetOpenOccurrence(ctx, habitID)
		switch {
		case err == nil:
			if occ.Started() {
				eff = game.Restarted(h.Title)
			}
			occ.StartTime = &at
			if err := repo.UpdateOccurrence(ctx, occ); err != nil {
				return err
			}
		case errors.Is(err, apperrors.ErrNotFound):
			occ = models.Occurrence{ID: s.newID(), HabitID: habitID, StartTime: &at, CreatedAt: s.now()}
			if err := repo.AddOccurrence(ctx, occ); err != nil {
				return err
			}
		default:
			return err
		}

		h.StartTime = &at
		h.EndTime = nil
		h.NextTime = nil
		if err := repo.UpdateHabit(ctx, h); err != nil {
			return err
		}

		c, msgs, err := s.applyEffect(ctx, repo, h.OwnerID, eff)
		if err != nil {
			return err
		}
		out = Outcome{Habit: h, Occurrence: &occ, Effect: eff, Character: c, Messages: msgs}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	logger.Info("Activity started", "habit", habitID, "at", at, "restarted", out.Effect.ResetStreak)
	return out, nil
}

// EndActivity closes the habit's running occurrence and prices it. A habit
// with nothing running is closed retroactively instead, which earns nothing
// and resets the streak.
func (s *Service) EndActivity(ctx context.Context, habitID string, at time.Time, opts EndOptions) (Outcome, error) {
	at = s.resolve(at)

	unlock := s.habits.Lock(habitID)
	defer unlock()

	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return Outcome{}, err
	}
	unlockOwner := s.owners.Lock(h.OwnerID)
	defer unlockOwner()

	var out Outcome
	err = s.transact(ctx, func(repo storage.Repository) error {
		h, err := repo.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}

		occ, err := repo.GetOpenOccurrence(ctx, habitID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if err != nil || !occ.Started() {
			out, err = s.endNeverStarted(ctx, repo, h, occ, err == nil, at)
			return err
		}
		if at.Before(*occ.StartTime) {
			return apperrors.Validation("at", "end time %s is before start time %s",
				at.Format(constants.DateTimeFormat), occ.StartTime.Format(constants.DateTimeFormat))
		}

		var prevEnd *time.Time
		last, err := repo.GetLastCompletedOccurrence(ctx, habitID)
		switch {
		case err == nil:
			prevEnd = last.EndTime
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		occ.EndTime = &at
		if err := repo.UpdateOccurrence(ctx, occ); err != nil {
			return err
		}
		h.EndTime = &at
		h.NextTime = nil
		if err := repo.UpdateHabit(ctx, h); err != nil {
			return err
		}

		engine, err := s.engine(ctx, repo)
		if err != nil {
			return err
		}
		c, err := s.character(ctx, repo, h.OwnerID)
		if err != nil {
			return err
		}
		streak := c.Streak
		if opts.KillStreak != nil {
			streak = *opts.KillStreak
		}

		res := engine.End(game.EndEvent{
			Quality:  h.MoralQuality(),
			Gap:      game.ClassifyGap(h.GapBounds(), game.GapContext{PreviousEnd: prevEnd, Deadline: occ.NextTime, At: at}),
			Duration: h.DurationBounds(),
			Length:   game.ClassifyDuration(h.DurationBounds(), occ),
			Enemy:    game.EnemyContext{KillStreak: streak, PreviousEnd: prevEnd, At: at},
		})

		c, msgs, err := s.save(ctx, repo, c, res.Effect)
		if err != nil {
			return err
		}
		out = Outcome{
			Habit:          h,
			Occurrence:     &occ,
			Effect:         res.Effect,
			Character:      c,
			Messages:       msgs,
			Encounter:      res.Encounter,
			HeroBuffs:      res.HeroBuffs,
			PendingHeal:    res.PendingHeal,
			PendingFatigue: res.PendingFatigue,
			Verdict:        res.Verdict,
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	logger.Info("Activity ended", "habit", habitID, "at", at, "gold", out.Effect.Gold,
		"never_started", out.NeverStarted, "compliant", out.Verdict.Compliant())
	return out, nil
}

// endNeverStarted records an occurrence backdated by the habit's default
// duration. A scheduled placeholder is closed in place.
func (s *Service) endNeverStarted(ctx context.Context, repo storage.Repository, h models.Habit, occ models.Occurrence, placeholder bool, at time.Time) (Outcome, error) {
	start := at.Add(-h.DefaultDurationOffset())

	if placeholder {
		occ.StartTime = &start
		occ.EndTime = &at
		if err := repo.UpdateOccurrence(ctx, occ); err != nil {
			return Outcome{}, err
		}
	} else {
		occ = models.Occurrence{ID: s.newID(), HabitID: h.ID, StartTime: &start, EndTime: &at, CreatedAt: s.now()}
		if err := repo.AddOccurrence(ctx, occ); err != nil {
			return Outcome{}, err
		}
	}

	h.StartTime = &start
	h.EndTime = &at
	h.NextTime = nil
	if err := repo.UpdateHabit(ctx, h); err != nil {
		return Outcome{}, err
	}

	eff := game.NeverStarted(h.Title)
	c, msgs, err := s.applyEffect(ctx, repo, h.OwnerID, eff)
	if err != nil {
		return Outcome{}, err
	}
	logger.Warn("Activity ended without being started", "habit", h.ID)
	return Outcome{
		Habit:        h,
		Occurrence:   &occ,
		Effect:       eff,
		Character:    c,
		Messages:     msgs,
		Verdict:      game.Verdict{MinOK: true, MaxOK: true},
		NeverStarted: true,
	}, nil
}

// SetNextActivity schedules when the habit should next happen. A habit with
// nothing open gets an unstarted placeholder occurrence anchored at the
// deadline. A nil time clears the schedule and drops the placeholder.
func (s *Service) SetNextActivity(ctx context.Context, habitID string, at *time.Time) (models.Habit, error) {
	unlock := s.habits.Lock(habitID)
	defer unlock()

	var h models.Habit
	err := s.store.WithTx(ctx, func(repo storage.Repository) error {
		var err error
		if h, err = repo.GetHabit(ctx, habitID); err != nil {
			return err
		}

		occ, err := repo.GetOpenOccurrence(ctx, habitID)
		open := err == nil
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		switch {
		case at != nil && open:
			occ.NextTime = at
			err = repo.UpdateOccurrence(ctx, occ)
		case at != nil:
			err = repo.AddOccurrence(ctx, models.Occurrence{ID: s.newID(), HabitID: habitID, NextTime: at, CreatedAt: s.now()})
		case open && !occ.Started():
			err = repo.DeleteOccurrence(ctx, occ.ID)
		case open:
			occ.NextTime = nil
			err = repo.UpdateOccurrence(ctx, occ)
		}
		if err != nil {
			return err
		}

		h.NextTime = at
		return repo.UpdateHabit(ctx, h)
	})
	if err != nil {
		return models.Habit{}, err
	}
	logger.Info("Next activity set", "habit", habitID, "next", at)
	return h, nil
}

// GetCharacter returns the owner's character, creating it on first use.
func (s *Service) GetCharacter(ctx context.Context, owner string) (models.Character, error) {
	owner = ownerOrDefault(owner)
	unlock := s.owners.Lock(owner)
	defer unlock()

	var c models.Character
	err := s.transact(ctx, func(repo storage.Repository) error {
		var err error
		c, err = s.character(ctx, repo, owner)
		return err
	})
	return c, err
}

// ApplyExternalSync merges a battle result reported by a client.
func (s *Service) ApplyExternalSync(ctx context.Context, owner string, in game.SyncInput) (models.Character, []string, error) {
	owner = ownerOrDefault(owner)
	unlock := s.owners.Lock(owner)
	defer unlock()

	var c models.Character
	var msgs []string
	err := s.transact(ctx, func(repo storage.Repository) error {
		cur, err := s.character(ctx, repo, owner)
		if err != nil {
			return err
		}
		next, m := game.Sync(cur, in)
		if c, err = repo.UpdateCharacter(ctx, next); err != nil {
			return err
		}
		msgs = m
		return nil
	})
	if err != nil {
		return models.Character{}, nil, err
	}
	logger.Info("Battle synced", "owner", owner, "gold", in.Gold, "xp", in.XP, "streak", in.Streak)
	return c, msgs, nil
}

// Settings returns the stored game settings.
func (s *Service) Settings(ctx context.Context) (models.Settings, error) {
	return s.store.GetSettings(ctx)
}

// SaveSettings validates and stores game settings.
func (s *Service) SaveSettings(ctx context.Context, settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return apperrors.Validation("settings", "%v", err)
	}
	return s.store.SaveSettings(ctx, settings)
}

// transact runs fn in a transaction, retrying when a character write lost
// a race with another process.
func (s *Service) transact(ctx context.Context, fn func(storage.Repository) error) error {
	var err error
	for attempt := 1; attempt <= constants.MaxCharacterWriteAttempts; attempt++ {
		err = s.store.WithTx(ctx, fn)
		if !errors.Is(err, storage.ErrConflict) {
			return err
		}
		logger.Debug("Character write conflict, retrying", "attempt", attempt)
	}
	return err
}

func (s *Service) engine(ctx context.Context, repo storage.Repository) (*game.Engine, error) {
	settings, err := repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return game.NewEngine(settings)
}

// character gets or creates the owner's character inside repo's transaction.
func (s *Service) character(ctx context.Context, repo storage.Repository, owner string) (models.Character, error) {
	c, err := repo.GetCharacter(ctx, owner)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return models.Character{}, err
	}
	c = models.NewCharacter(s.newID(), owner, s.now())
	if err := repo.AddCharacter(ctx, c); err != nil {
		return models.Character{}, err
	}
	logger.Debug("Character created", "owner", owner)
	return c, nil
}

func (s *Service) applyEffect(ctx context.Context, repo storage.Repository, owner string, eff game.Effect) (models.Character, []string, error) {
	c, err := s.character(ctx, repo, owner)
	if err != nil {
		return models.Character{}, nil, err
	}
	return s.save(ctx, repo, c, eff)
}

func (s *Service) save(ctx context.Context, repo storage.Repository, c models.Character, eff game.Effect) (models.Character, []string, error) {
	next, msgs := game.Apply(c, eff)
	saved, err := repo.UpdateCharacter(ctx, next)
	if err != nil {
		return models.Character{}, nil, err
	}
	return saved, msgs, nil
}

func (s *Service) resolve(at time.Time) time.Time {
	if at.IsZero() {
		return s.now()
	}
	return at
}

func ownerOrDefault(owner string) string {
	if strings.TrimSpace(owner) == "" {
		return constants.DefaultOwner
	}
	return owner
}
